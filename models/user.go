package models

import "time"

type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"size:255;not null"`
	Email        string    `json:"email" gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Phone        *string   `json:"phone" gorm:"size:20"`
	ProfileImg   *string   `json:"profileImg"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	Addresses []Address  `json:"addresses,omitempty" gorm:"foreignKey:UserID"`
	Orders    []Order    `json:"orders,omitempty" gorm:"foreignKey:UserID"`
	Reviews   []Review   `json:"reviews,omitempty" gorm:"foreignKey:UserID"`
	Favorites []Favorite `json:"favorites,omitempty" gorm:"foreignKey:UserID"`
}

// AddressType classifies a delivery address
type AddressType string

const (
	AddressHome  AddressType = "home"
	AddressWork  AddressType = "work"
	AddressOther AddressType = "other"
)

type Address struct {
	ID                   uint        `json:"id" gorm:"primaryKey"`
	UserID               uint        `json:"userId" gorm:"not null;index"`
	Street               string      `json:"street" gorm:"size:255;not null"`
	City                 string      `json:"city" gorm:"size:100;not null"`
	State                string      `json:"state" gorm:"size:100;not null"`
	ZipCode              string      `json:"zipCode" gorm:"size:20;not null"`
	Latitude             float64     `json:"latitude" gorm:"not null"`
	Longitude            float64     `json:"longitude" gorm:"not null"`
	ApartmentNumber      *string     `json:"apartmentNumber" gorm:"size:50"`
	DeliveryInstructions *string     `json:"deliveryInstructions"`
	Type                 AddressType `json:"type" gorm:"size:20;not null;default:'other'"`
	IsDefault            bool        `json:"isDefault" gorm:"not null;default:false"`
	CreatedAt            time.Time   `json:"createdAt"`
	UpdatedAt            time.Time   `json:"updatedAt"`
}
