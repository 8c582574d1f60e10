package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RestaurantStatus represents the operational standing of a restaurant
type RestaurantStatus string

const (
	RestaurantActive    RestaurantStatus = "active"
	RestaurantInactive  RestaurantStatus = "inactive"
	RestaurantSuspended RestaurantStatus = "suspended"
)

type RestaurantCategory struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"size:100;uniqueIndex;not null"`
	Slug         string    `json:"slug" gorm:"size:100;uniqueIndex;not null"`
	Description  *string   `json:"description"`
	IconURL      *string   `json:"iconUrl"`
	IsActive     bool      `json:"isActive" gorm:"not null;default:true"`
	DisplayOrder int       `json:"displayOrder" gorm:"default:0"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type Restaurant struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Name        string  `json:"name" gorm:"size:255;not null"`
	Slug        string  `json:"slug" gorm:"size:255;not null"`
	Description *string `json:"description"`
	LogoURL     *string `json:"logoUrl"`
	BannerURL   *string `json:"bannerUrl"`

	// Location
	Street    string  `json:"street" gorm:"size:255;not null"`
	City      string  `json:"city" gorm:"size:100;not null"`
	State     string  `json:"state" gorm:"size:100;not null"`
	ZipCode   string  `json:"zipCode" gorm:"size:20;not null"`
	Latitude  float64 `json:"latitude" gorm:"not null"`
	Longitude float64 `json:"longitude" gorm:"not null"`

	// Contact
	Phone string  `json:"phone" gorm:"size:20;not null"`
	Email *string `json:"email" gorm:"size:255"`

	// Delivery configuration
	DeliveryFee           decimal.Decimal `json:"deliveryFee" gorm:"type:decimal(10,2);not null;default:0"`
	MinimumOrder          decimal.Decimal `json:"minimumOrder" gorm:"type:decimal(10,2);not null;default:0"`
	DeliveryRadius        float64         `json:"deliveryRadius" gorm:"not null;default:5"` // km
	EstimatedDeliveryTime int             `json:"estimatedDeliveryTime" gorm:"not null;default:30"` // minutes

	// Standing and ratings
	Status        RestaurantStatus `json:"status" gorm:"size:20;not null;default:'active'"`
	IsOpen        bool             `json:"isOpen" gorm:"not null;default:true"`
	AverageRating float64          `json:"averageRating" gorm:"default:0"`
	TotalReviews  int              `json:"totalReviews" gorm:"default:0"`
	TotalOrders   int              `json:"totalOrders" gorm:"default:0"`

	IsFeatured    bool `json:"isFeatured" gorm:"not null;default:false"`
	FeaturedOrder int  `json:"featuredOrder" gorm:"default:0"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Categories        []RestaurantCategoryLink `json:"categories,omitempty" gorm:"foreignKey:RestaurantID"`
	Hours             []RestaurantHours        `json:"hours,omitempty" gorm:"foreignKey:RestaurantID"`
	ProductCategories []ProductCategory        `json:"productCategories,omitempty" gorm:"foreignKey:RestaurantID"`
	Products          []Product                `json:"products,omitempty" gorm:"foreignKey:RestaurantID"`
}

// RestaurantCategoryLink joins restaurants to restaurant categories (many-to-many)
type RestaurantCategoryLink struct {
	ID           uint               `json:"id" gorm:"primaryKey"`
	RestaurantID uint               `json:"restaurantId" gorm:"not null;index"`
	CategoryID   uint               `json:"categoryId" gorm:"not null;index"`
	Category     RestaurantCategory `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	CreatedAt    time.Time          `json:"createdAt"`
}

// RestaurantHours holds one row per day of week, 0 = Sunday through 6 = Saturday
type RestaurantHours struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	RestaurantID uint      `json:"restaurantId" gorm:"not null;index"`
	DayOfWeek    int       `json:"dayOfWeek" gorm:"not null"`
	OpenTime     string    `json:"openTime" gorm:"size:5;not null"`  // "HH:MM"
	CloseTime    string    `json:"closeTime" gorm:"size:5;not null"` // "HH:MM"
	IsClosed     bool      `json:"isClosed" gorm:"not null;default:false"`
	CreatedAt    time.Time `json:"createdAt"`
}

type ProductCategory struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	RestaurantID uint      `json:"restaurantId" gorm:"not null;index"`
	Name         string    `json:"name" gorm:"size:100;not null"`
	Description  *string   `json:"description"`
	DisplayOrder int       `json:"displayOrder" gorm:"default:0"`
	IsActive     bool      `json:"isActive" gorm:"not null;default:true"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
