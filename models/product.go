package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID           uint  `json:"id" gorm:"primaryKey"`
	RestaurantID uint  `json:"restaurantId" gorm:"not null;index"`
	CategoryID   *uint `json:"categoryId" gorm:"index"` // nil after its category is deleted

	Name        string  `json:"name" gorm:"size:255;not null"`
	Slug        string  `json:"slug" gorm:"size:255;not null"`
	Description *string `json:"description"`
	ImageURL    *string `json:"imageUrl"`

	// Price and availability
	Price         decimal.Decimal     `json:"price" gorm:"type:decimal(10,2);not null"`
	OriginalPrice decimal.NullDecimal `json:"originalPrice" gorm:"type:decimal(10,2)"`
	IsAvailable   bool                `json:"isAvailable" gorm:"not null;default:true"`
	Stock         *int                `json:"stock"` // nil = unlimited

	// Metadata
	PreparationTime *int `json:"preparationTime"` // minutes
	Calories        *int `json:"calories"`
	IsVegetarian    bool `json:"isVegetarian" gorm:"default:false"`
	IsVegan         bool `json:"isVegan" gorm:"default:false"`
	IsGlutenFree    bool `json:"isGlutenFree" gorm:"default:false"`
	IsSpicy         bool `json:"isSpicy" gorm:"default:false"`
	SpicyLevel      *int `json:"spicyLevel"` // 1-5

	IsPopular    bool `json:"isPopular" gorm:"default:false"`
	IsFeatured   bool `json:"isFeatured" gorm:"default:false"`
	DisplayOrder int  `json:"displayOrder" gorm:"default:0"`

	// Stats
	TotalOrders   int     `json:"totalOrders" gorm:"default:0"`
	AverageRating float64 `json:"averageRating" gorm:"default:0"`
	TotalReviews  int     `json:"totalReviews" gorm:"default:0"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	OptionGroups []ProductOptionGroup `json:"optionGroups,omitempty" gorm:"foreignKey:ProductID"`
}

// ProductOptionGroup is a named set of selectable modifiers for a product,
// e.g. "Size" (maxSelection=1) or "Extras" (maxSelection>1)
type ProductOptionGroup struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	ProductID    uint      `json:"productId" gorm:"not null;index"`
	Name         string    `json:"name" gorm:"size:100;not null"`
	IsRequired   bool      `json:"isRequired" gorm:"not null;default:false"`
	MinSelection int       `json:"minSelection" gorm:"default:0"`
	MaxSelection int       `json:"maxSelection" gorm:"default:1"`
	DisplayOrder int       `json:"displayOrder" gorm:"default:0"`
	CreatedAt    time.Time `json:"createdAt"`

	Options []ProductOption `json:"options,omitempty" gorm:"foreignKey:GroupID"`
}

type ProductOption struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	GroupID       uint            `json:"groupId" gorm:"not null;index"`
	Name          string          `json:"name" gorm:"size:100;not null"`
	PriceModifier decimal.Decimal `json:"priceModifier" gorm:"type:decimal(10,2);not null;default:0"`
	IsAvailable   bool            `json:"isAvailable" gorm:"not null;default:true"`
	IsDefault     bool            `json:"isDefault" gorm:"default:false"`
	DisplayOrder  int             `json:"displayOrder" gorm:"default:0"`
	CreatedAt     time.Time       `json:"createdAt"`
}
