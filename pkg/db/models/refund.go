package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wittyvishnu/starfashion-backend/pkg/enums"
)

// Refund tracks one cancelled paid item's money trail. At most one active
// refund exists per (order, product) pair; the gateway's async webhook drives
// the status transitions.
type Refund struct {
	ID              uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID         uuid.UUID          `gorm:"column:order_id;type:uuid;not null;uniqueIndex:idx_refunds_order_product"`
	ProductID       uuid.UUID          `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_refunds_order_product"`
	UserID          uuid.UUID          `gorm:"column:user_id;type:uuid;not null"`
	GatewayRefundID string             `gorm:"column:gateway_refund_id;not null;index"`
	Amount          decimal.Decimal    `gorm:"column:amount;type:numeric(10,2);not null"`
	Reason          string             `gorm:"column:reason"`
	Status          enums.RefundStatus `gorm:"column:status;not null;default:'Processing'"`
	ProcessedAt     time.Time          `gorm:"column:processed_at;not null"`
	CreditedAt      *time.Time         `gorm:"column:credited_at"`
	FailedAt        *time.Time         `gorm:"column:failed_at"`
	CreatedAt       time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
