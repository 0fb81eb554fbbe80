package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wittyvishnu/starfashion-backend/pkg/enums"
)

// PaymentDetails captures the money breakdown frozen at order creation.
// Subtotal + tax always equals total; shipping and processing are carried for
// the storefront receipt and are zero today.
type PaymentDetails struct {
	Subtotal   decimal.Decimal `gorm:"column:subtotal;type:numeric(10,2);not null"`
	Tax        decimal.Decimal `gorm:"column:tax;type:numeric(10,2);not null"`
	Shipping   decimal.Decimal `gorm:"column:shipping;type:numeric(10,2);not null;default:0"`
	Processing decimal.Decimal `gorm:"column:processing;type:numeric(10,2);not null;default:0"`
	TotalPrice decimal.Decimal `gorm:"column:total_price;type:numeric(10,2);not null"`
}

// Order is the immutable purchase record created once from either the COD
// path or a consumed Reservation. Only per-item status fields mutate after
// creation.
type Order struct {
	ID                uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID            uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	ShippingAddressID uuid.UUID           `gorm:"column:shipping_address_id;type:uuid;not null"`
	PaymentMethod     enums.PaymentMethod `gorm:"column:payment_method;not null"`
	PaymentDetails    PaymentDetails      `gorm:"embedded;embeddedPrefix:payment_"`
	GatewayOrderID    *string             `gorm:"column:gateway_order_id;uniqueIndex"`
	GatewayPaymentID  *string             `gorm:"column:gateway_payment_id"`
	GatewaySignature  *string             `gorm:"column:gateway_signature"`
	Currency          string              `gorm:"column:currency;not null;default:'INR'"`
	Items             []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderItem carries one product line with its price snapshot and the
// independently mutable payment/fulfillment statuses.
type OrderItem struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID       uuid.UUID           `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID     uuid.UUID           `gorm:"column:product_id;type:uuid;not null"`
	Quantity      int                 `gorm:"column:quantity;not null"`
	Price         decimal.Decimal     `gorm:"column:price;type:numeric(10,2);not null"`
	PaymentStatus enums.PaymentStatus `gorm:"column:payment_status;not null;default:'Pending'"`
	OrderStatus   enums.OrderStatus   `gorm:"column:order_status;not null;default:'Processing'"`
	TrackingID    *string             `gorm:"column:tracking_id"`
	Product       *Product            `gorm:"foreignKey:ProductID"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
