package reservation

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wittyvishnu/starfashion-backend/pkg/db/models"
	pkgerrors "github.com/wittyvishnu/starfashion-backend/pkg/errors"
)

// StockRequest asks for qty units of a product to be taken out of open stock.
type StockRequest struct {
	ProductID uuid.UUID
	Qty       int
}

// StockRestore returns qty units of a product to open stock.
type StockRestore struct {
	ProductID uuid.UUID
	Qty       int
}

// ReserveStock decrements product stock for every request inside the given transaction.
// The decrement is conditional on sufficient stock, so two competing checkouts for the
// last unit cannot both succeed. The first product that cannot cover its quantity fails
// the whole batch with a conflict error and the transaction is expected to roll back.
func ReserveStock(ctx context.Context, tx *gorm.DB, requests []StockRequest) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "transaction is required")
	}
	for _, req := range requests {
		if req.Qty <= 0 {
			return pkgerrors.Newf(pkgerrors.CodeValidation, "quantity must be positive for product %s", req.ProductID)
		}
	}

	for _, req := range requests {
		res := tx.WithContext(ctx).
			Model(&models.Product{}).
			Where("id = ? AND stock >= ?", req.ProductID, req.Qty).
			UpdateColumn("stock", gorm.Expr("stock - ?", req.Qty))
		if res.Error != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "decrementing stock")
		}
		if res.RowsAffected == 0 {
			return insufficientStockError(ctx, tx, req)
		}
	}
	return nil
}

// RestoreStock adds the given quantities back to product stock inside the transaction.
func RestoreStock(ctx context.Context, tx *gorm.DB, restores []StockRestore) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "transaction is required")
	}
	for _, item := range restores {
		if item.Qty <= 0 {
			continue
		}
		res := tx.WithContext(ctx).
			Model(&models.Product{}).
			Where("id = ?", item.ProductID).
			UpdateColumn("stock", gorm.Expr("stock + ?", item.Qty))
		if res.Error != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "restoring stock")
		}
	}
	return nil
}

// ClaimReservation atomically consumes a reservation row. Exactly one caller wins:
// the conditional delete reports a row only for the first claimant, so the payment
// finalizer and the expiry sweeper can race safely. Returns false when the
// reservation was already claimed or released.
func ClaimReservation(ctx context.Context, tx *gorm.DB, reservationID uuid.UUID) (bool, error) {
	if tx == nil {
		return false, pkgerrors.New(pkgerrors.CodeInternal, "transaction is required")
	}

	res := tx.WithContext(ctx).
		Where("id = ?", reservationID).
		Delete(&models.Reservation{})
	if res.Error != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "claiming reservation")
	}
	if res.RowsAffected == 0 {
		return false, nil
	}

	// sqlite has no cascading delete through gorm constraints here
	if err := tx.WithContext(ctx).
		Where("reservation_id = ?", reservationID).
		Delete(&models.ReservationItem{}).Error; err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting reservation items")
	}
	return true, nil
}

func insufficientStockError(ctx context.Context, tx *gorm.DB, req StockRequest) error {
	var product models.Product
	err := tx.WithContext(ctx).
		Select("name", "stock").
		First(&product, "id = ?", req.ProductID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Newf(pkgerrors.CodeNotFound, "product %s not found", req.ProductID)
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product for stock check")
	}
	return pkgerrors.New(
		pkgerrors.CodeConflict,
		fmt.Sprintf("%s has only %d left", product.Name, product.Stock),
	)
}
