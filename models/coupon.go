package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

type Coupon struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Code        string  `json:"code" gorm:"size:50;uniqueIndex;not null"`
	Description *string `json:"description"`

	DiscountType  DiscountType    `json:"discountType" gorm:"size:20;not null"`
	DiscountValue decimal.Decimal `json:"discountValue" gorm:"type:decimal(10,2);not null"`

	// Constraints
	MinimumOrderAmount decimal.NullDecimal `json:"minimumOrderAmount" gorm:"type:decimal(10,2)"`
	MaxDiscountAmount  decimal.NullDecimal `json:"maxDiscountAmount" gorm:"type:decimal(10,2)"`
	MaxUsesPerUser     int                 `json:"maxUsesPerUser" gorm:"not null;default:1"`
	MaxTotalUses       *int                `json:"maxTotalUses"` // nil = unlimited
	CurrentUses        int                 `json:"currentUses" gorm:"not null;default:0"`

	// Scope: nil = store-wide
	RestaurantID *uint `json:"restaurantId"`

	// Validity window
	ValidFrom  time.Time `json:"validFrom" gorm:"not null"`
	ValidUntil time.Time `json:"validUntil" gorm:"not null"`
	IsActive   bool      `json:"isActive" gorm:"not null;default:true"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
