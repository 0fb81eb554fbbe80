package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wittyvishnu/starfashion-backend/pkg/db/models"
	"github.com/wittyvishnu/starfashion-backend/pkg/enums"
)

type refundRepository struct {
	db *gorm.DB
}

// NewRefundRepository builds a refund repository bound to the provided DB.
func NewRefundRepository(db *gorm.DB) RefundRepository {
	return &refundRepository{db: db}
}

func (r *refundRepository) WithTx(tx *gorm.DB) RefundRepository {
	if tx == nil {
		return r
	}
	return &refundRepository{db: tx}
}

func (r *refundRepository) Create(ctx context.Context, refund *models.Refund) (*models.Refund, error) {
	if err := r.db.WithContext(ctx).Create(refund).Error; err != nil {
		return nil, err
	}
	return refund, nil
}

func (r *refundRepository) FindByGatewayRefundID(ctx context.Context, gatewayRefundID string) (*models.Refund, error) {
	var refund models.Refund
	err := r.db.WithContext(ctx).
		Where("gateway_refund_id = ?", gatewayRefundID).
		First(&refund).Error
	if err != nil {
		return nil, err
	}
	return &refund, nil
}

func (r *refundRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.RefundStatus, at time.Time) error {
	updates := map[string]any{"status": status}
	switch status {
	case enums.RefundStatusCredited:
		updates["credited_at"] = at
	case enums.RefundStatusFailed:
		updates["failed_at"] = at
	}
	return r.db.WithContext(ctx).
		Model(&models.Refund{}).
		Where("id = ?", id).
		Updates(updates).Error
}
