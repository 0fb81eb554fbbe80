package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wittyvishnu/starfashion-backend/pkg/db/models"
)

// Repository persists the per-user cart and its lines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	FindByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	UpsertItem(ctx context.Context, cartID, productID uuid.UUID, quantity int) error
	SetItemQuantity(ctx context.Context, cartID, productID uuid.UUID, quantity int) (int64, error)
	RemoveItem(ctx context.Context, cartID, productID uuid.UUID) (int64, error)
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Product").
		Where("user_id = ?", userID).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *repository) GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart, err := r.FindByUser(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	created := &models.Cart{ID: uuid.New(), UserID: userID}
	if err := r.db.WithContext(ctx).Create(created).Error; err != nil {
		return nil, err
	}
	return created, nil
}

func (r *repository) UpsertItem(ctx context.Context, cartID, productID uuid.UUID, quantity int) error {
	var existing models.CartItem
	err := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		First(&existing).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		item := &models.CartItem{
			ID:        uuid.New(),
			CartID:    cartID,
			ProductID: productID,
			Quantity:  quantity,
		}
		return r.db.WithContext(ctx).Create(item).Error
	}
	return r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", existing.ID).
		Update("quantity", gorm.Expr("quantity + ?", quantity)).Error
}

func (r *repository) SetItemQuantity(ctx context.Context, cartID, productID uuid.UUID, quantity int) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Update("quantity", quantity)
	return res.RowsAffected, res.Error
}

func (r *repository) RemoveItem(ctx context.Context, cartID, productID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Delete(&models.CartItem{})
	return res.RowsAffected, res.Error
}

func (r *repository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&cart).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if err := r.db.WithContext(ctx).
		Where("cart_id = ?", cart.ID).
		Delete(&models.CartItem{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Delete(&cart).Error
}
