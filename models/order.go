package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents all possible states of an order
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"     // waiting for restaurant confirmation
	StatusConfirmed  OrderStatus = "confirmed"   // accepted by the restaurant
	StatusPreparing  OrderStatus = "preparing"   // being prepared
	StatusReady      OrderStatus = "ready"       // ready for pickup by courier
	StatusOnDelivery OrderStatus = "on_delivery" // on its way
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
	StatusRejected   OrderStatus = "rejected" // refused by the restaurant
)

type PaymentMethod string

const (
	PaymentCash          PaymentMethod = "cash"
	PaymentCard          PaymentMethod = "card"
	PaymentYape          PaymentMethod = "yape"
	PaymentPlin          PaymentMethod = "plin"
	PaymentDigitalWallet PaymentMethod = "digital_wallet"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

type Order struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	OrderNumber string `json:"orderNumber" gorm:"size:50;uniqueIndex;not null"` // e.g. "ORD-20250105-A1B2C3"

	UserID       uint       `json:"userId" gorm:"not null;index"`
	RestaurantID uint       `json:"restaurantId" gorm:"not null;index"`
	Restaurant   Restaurant `json:"restaurant,omitempty" gorm:"foreignKey:RestaurantID"`
	AddressID    uint       `json:"addressId" gorm:"not null"`
	Address      Address    `json:"address,omitempty" gorm:"foreignKey:AddressID"`

	Status OrderStatus `json:"status" gorm:"size:20;not null;default:'pending'"`

	// Monetary breakdown
	Subtotal    decimal.Decimal `json:"subtotal" gorm:"type:decimal(10,2);not null"`
	DeliveryFee decimal.Decimal `json:"deliveryFee" gorm:"type:decimal(10,2);not null;default:0"`
	Discount    decimal.Decimal `json:"discount" gorm:"type:decimal(10,2);not null;default:0"`
	Tax         decimal.Decimal `json:"tax" gorm:"type:decimal(10,2);not null;default:0"`
	Total       decimal.Decimal `json:"total" gorm:"type:decimal(10,2);not null"`

	// Coupon redeemed by this order, if any. Code is snapshotted so the
	// redemption stays legible if the coupon is later edited or removed.
	CouponID   *uint   `json:"couponId"`
	CouponCode *string `json:"couponCode" gorm:"size:50"`

	PaymentMethod PaymentMethod `json:"paymentMethod" gorm:"size:20;not null"`
	PaymentStatus PaymentStatus `json:"paymentStatus" gorm:"size:20;not null;default:'pending'"`

	CustomerNotes      *string `json:"customerNotes"`
	RestaurantNotes    *string `json:"restaurantNotes"`
	CancellationReason *string `json:"cancellationReason"`

	// Lifecycle milestones, each set at most once as the order advances
	EstimatedDeliveryTimeAt *time.Time `json:"estimatedDeliveryTimeAt"`
	ConfirmedAt             *time.Time `json:"confirmedAt"`
	PreparingAt             *time.Time `json:"preparingAt"`
	ReadyAt                 *time.Time `json:"readyAt"`
	OnDeliveryAt            *time.Time `json:"onDeliveryAt"`
	DeliveredAt             *time.Time `json:"deliveredAt"`
	CancelledAt             *time.Time `json:"cancelledAt"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Items []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID"`
}

// OrderItem stores an immutable snapshot of the product at order time; later
// product edits must not alter historical order display
type OrderItem struct {
	ID        uint `json:"id" gorm:"primaryKey"`
	OrderID   uint `json:"orderId" gorm:"not null;index"`
	ProductID uint `json:"productId" gorm:"not null"`

	ProductName  string  `json:"productName" gorm:"size:255;not null"`
	ProductImage *string `json:"productImage"`

	Quantity   int             `json:"quantity" gorm:"not null"`
	UnitPrice  decimal.Decimal `json:"unitPrice" gorm:"type:decimal(10,2);not null"`
	TotalPrice decimal.Decimal `json:"totalPrice" gorm:"type:decimal(10,2);not null"` // unit price x quantity, options excluded

	SpecialInstructions *string `json:"specialInstructions"`

	CreatedAt time.Time `json:"createdAt"`

	Options []OrderItemOption `json:"options,omitempty" gorm:"foreignKey:OrderItemID"`
}

type OrderItemOption struct {
	ID          uint `json:"id" gorm:"primaryKey"`
	OrderItemID uint `json:"orderItemId" gorm:"not null;index"`
	OptionID    uint `json:"optionId" gorm:"not null"`

	OptionName    string          `json:"optionName" gorm:"size:100;not null"`
	PriceModifier decimal.Decimal `json:"priceModifier" gorm:"type:decimal(10,2);not null"`

	CreatedAt time.Time `json:"createdAt"`
}
