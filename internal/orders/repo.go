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

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Product").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Product").
		Where("id = ? AND user_id = ?", id, userID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("gateway_order_id = ?", gatewayOrderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Order, string, error) {
	limit := pagination.LimitWithBuffer(params.Limit)

	query := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Product").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, "", err
	}

	nextCursor := ""
	pageSize := pagination.NormalizeLimit(params.Limit)
	if len(orders) > pageSize {
		orders = orders[:pageSize]
		last := orders[len(orders)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return orders, nextCursor, nil
}

func (r *repository) CancelItemIfActive(ctx context.Context, orderID, productID uuid.UUID, paymentStatus enums.PaymentStatus) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Where("order_id = ? AND product_id = ? AND order_status <> ?", orderID, productID, enums.OrderStatusCancelled).
		Updates(map[string]any{
			"order_status":   enums.OrderStatusCancelled,
			"payment_status": paymentStatus,
			"updated_at":     time.Now().UTC(),
		})
	return res.RowsAffected, res.Error
}

func (r *repository) UpdateItemPaymentStatus(ctx context.Context, orderID, productID uuid.UUID, status enums.PaymentStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Where("order_id = ? AND product_id = ?", orderID, productID).
		Update("payment_status", status).Error
}

func (r *repository) UpdateItemTracking(ctx context.Context, orderID, productID uuid.UUID, status enums.OrderStatus, trackingID *string) error {
	updates := map[string]any{"order_status": status}
	if trackingID != nil {
		updates["tracking_id"] = *trackingID
	}
	return r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Where("order_id = ? AND product_id = ?", orderID, productID).
		Updates(updates).Error
}
