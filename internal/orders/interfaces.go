package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wittyvishnu/starfashion-backend/pkg/db/models"
	"github.com/wittyvishnu/starfashion-backend/pkg/enums"
	"github.com/wittyvishnu/starfashion-backend/pkg/pagination"
)

// Repository persists orders and their item status transitions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.Order, error)
	FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Order, string, error)

	// CancelItemIfActive flips one item to Cancelled with the given payment
	// status, guarded so an already-cancelled item reports zero rows.
	CancelItemIfActive(ctx context.Context, orderID, productID uuid.UUID, paymentStatus enums.PaymentStatus) (int64, error)
	UpdateItemPaymentStatus(ctx context.Context, orderID, productID uuid.UUID, status enums.PaymentStatus) error
	UpdateItemTracking(ctx context.Context, orderID, productID uuid.UUID, status enums.OrderStatus, trackingID *string) error
}

// RefundRepository persists refund records keyed by gateway refund id.
type RefundRepository interface {
	WithTx(tx *gorm.DB) RefundRepository

	Create(ctx context.Context, refund *models.Refund) (*models.Refund, error)
	FindByGatewayRefundID(ctx context.Context, gatewayRefundID string) (*models.Refund, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.RefundStatus, at time.Time) error
}
