package models

import "time"

// Review can target any combination of restaurant, product and order
type Review struct {
	ID           uint  `json:"id" gorm:"primaryKey"`
	UserID       uint  `json:"userId" gorm:"not null;index"`
	RestaurantID *uint `json:"restaurantId" gorm:"index"`
	ProductID    *uint `json:"productId" gorm:"index"`
	OrderID      *uint `json:"orderId"`

	Rating  int     `json:"rating" gorm:"not null"` // 1-5
	Comment *string `json:"comment"`

	FoodRating     *int `json:"foodRating"`
	ServiceRating  *int `json:"serviceRating"`
	DeliveryRating *int `json:"deliveryRating"`

	// Computed server-side from delivered orders, never taken from the caller
	IsVerifiedPurchase bool `json:"isVerifiedPurchase" gorm:"default:false"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Favorite references exactly one of a restaurant or a product
type Favorite struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	UserID       uint      `json:"userId" gorm:"not null;index"`
	RestaurantID *uint     `json:"restaurantId"`
	ProductID    *uint     `json:"productId"`
	CreatedAt    time.Time `json:"createdAt"`
}
