package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Reservation is a time-boxed hold on stock awaiting online payment
// confirmation. Exactly one exists per gateway order id, and it is consumed
// at most once: by a confirmation handler converting it into an Order, or by
// the sweeper restoring the stock.
type Reservation struct {
	ID             uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID         uuid.UUID         `gorm:"column:user_id;type:uuid;not null"`
	AddressID      uuid.UUID         `gorm:"column:address_id;type:uuid;not null"`
	GatewayOrderID string            `gorm:"column:gateway_order_id;not null;uniqueIndex"`
	Subtotal       decimal.Decimal   `gorm:"column:subtotal;type:numeric(10,2);not null"`
	Tax            decimal.Decimal   `gorm:"column:tax;type:numeric(10,2);not null"`
	TotalAmount    decimal.Decimal   `gorm:"column:total_amount;type:numeric(10,2);not null"`
	ExpiresAt      time.Time         `gorm:"column:expires_at;not null;index"`
	Items          []ReservationItem `gorm:"foreignKey:ReservationID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// ReservationItem snapshots the reserved quantity and quoted price for one
// product inside a reservation.
type ReservationItem struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ReservationID uuid.UUID       `gorm:"column:reservation_id;type:uuid;not null;index"`
	ProductID     uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	ReservedQty   int             `gorm:"column:reserved_qty;not null"`
	ReservedPrice decimal.Decimal `gorm:"column:reserved_price;type:numeric(10,2);not null"`
}
