package refunds

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/wittyvishnu/starfashion-backend/internal/checkout/helpers"
	"github.com/wittyvishnu/starfashion-backend/internal/checkout/reservation"
	"github.com/wittyvishnu/starfashion-backend/internal/orders"
	"github.com/wittyvishnu/starfashion-backend/pkg/db/models"
	"github.com/wittyvishnu/starfashion-backend/pkg/enums"
	pkgerrors "github.com/wittyvishnu/starfashion-backend/pkg/errors"
	"github.com/wittyvishnu/starfashion-backend/pkg/razorpay"
)

const defaultReason = "Customer cancelled"

// Refunded cancelled items get the unit price plus its tax share back.
var taxMultiplier = decimal.NewFromFloat(1.05)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type refundGateway interface {
	RefundPayment(ctx context.Context, params razorpay.RefundCreateParams) (*razorpay.GatewayRefund, error)
}

type stockRestorer interface {
	Restore(ctx context.Context, tx *gorm.DB, restores []reservation.StockRestore) error
}

type restoreEngine struct{}

func (restoreEngine) Restore(ctx context.Context, tx *gorm.DB, restores []reservation.StockRestore) error {
	return reservation.RestoreStock(ctx, tx, restores)
}

// CancelResult reports the outcome of an item cancellation.
type CancelResult struct {
	OrderID         uuid.UUID       `json:"order_id"`
	ProductID       uuid.UUID       `json:"product_id"`
	RefundAmount    decimal.Decimal `json:"refund_amount"`
	GatewayRefundID string          `json:"gateway_refund_id,omitempty"`
}

// Service cancels order items and orchestrates the money trail: immediate
// for cash on delivery, via a gateway refund for online payments.
type Service interface {
	CancelItem(ctx context.Context, userID, orderID, productID uuid.UUID, reason string) (*CancelResult, error)
}

// ServiceParams configure the refunds service.
type ServiceParams struct {
	Tx         txRunner
	OrdersRepo orders.Repository
	RefundRepo orders.RefundRepository
	Gateway    refundGateway
	Restorer   stockRestorer
	Now        func() time.Time
}

type service struct {
	tx         txRunner
	ordersRepo orders.Repository
	refundRepo orders.RefundRepository
	gateway    refundGateway
	restorer   stockRestorer
	now        func() time.Time
}

// NewService builds the refunds service.
func NewService(params ServiceParams) (Service, error) {
	if params.Tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.OrdersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.RefundRepo == nil {
		return nil, fmt.Errorf("refund repository required")
	}
	if params.Gateway == nil {
		return nil, fmt.Errorf("refund gateway required")
	}
	restorer := params.Restorer
	if restorer == nil {
		restorer = restoreEngine{}
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		tx:         params.Tx,
		ordersRepo: params.OrdersRepo,
		refundRepo: params.RefundRepo,
		gateway:    params.Gateway,
		restorer:   restorer,
		now:        now,
	}, nil
}

func (s *service) CancelItem(ctx context.Context, userID, orderID, productID uuid.UUID, reason string) (*CancelResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user required")
	}
	if orderID == uuid.Nil || productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id and product id required")
	}
	if reason == "" {
		reason = defaultReason
	}

	order, err := s.ordersRepo.FindByIDForUser(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}

	item := findItem(order, productID)
	if item == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found in order")
	}
	if item.OrderStatus == enums.OrderStatusCancelled {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "item is already cancelled")
	}
	if item.OrderStatus == enums.OrderStatusDelivered {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "delivered items cannot be cancelled")
	}

	refundAmount := item.Price.Mul(taxMultiplier).Round(2)

	if order.PaymentMethod == enums.PaymentMethodCOD {
		if err := s.cancelInTx(ctx, order, item, enums.PaymentStatusRefunded, nil, refundAmount, reason); err != nil {
			return nil, err
		}
		return &CancelResult{OrderID: orderID, ProductID: productID, RefundAmount: refundAmount}, nil
	}

	if order.GatewayPaymentID == nil || *order.GatewayPaymentID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order has no captured payment to refund")
	}

	// The gateway refund goes out before any local mutation. If it fails,
	// nothing changed and the shopper can retry; the reverse ordering would
	// strand a cancelled item with no refund.
	gatewayRefund, err := s.gateway.RefundPayment(ctx, razorpay.RefundCreateParams{
		PaymentID:   *order.GatewayPaymentID,
		AmountMinor: helpers.MinorUnits(refundAmount),
		Notes: map[string]string{
			"order_id":   orderID.String(),
			"product_id": productID.String(),
			"reason":     reason,
		},
	})
	if err != nil {
		return nil, err
	}

	if err := s.cancelInTx(ctx, order, item, enums.PaymentStatusRefunded, gatewayRefund, refundAmount, reason); err != nil {
		return nil, err
	}
	return &CancelResult{
		OrderID:         orderID,
		ProductID:       productID,
		RefundAmount:    refundAmount,
		GatewayRefundID: gatewayRefund.ID,
	}, nil
}

func (s *service) cancelInTx(ctx context.Context, order *models.Order, item *models.OrderItem, paymentStatus enums.PaymentStatus, gatewayRefund *razorpay.GatewayRefund, refundAmount decimal.Decimal, reason string) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		restores := []reservation.StockRestore{{ProductID: item.ProductID, Qty: item.Quantity}}
		if err := s.restorer.Restore(ctx, tx, restores); err != nil {
			return err
		}

		affected, err := s.ordersRepo.WithTx(tx).CancelItemIfActive(ctx, order.ID, item.ProductID, paymentStatus)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "cancelling item")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "item is already cancelled")
		}

		if gatewayRefund == nil {
			return nil
		}
		refund := &models.Refund{
			ID:              uuid.New(),
			OrderID:         order.ID,
			ProductID:       item.ProductID,
			UserID:          order.UserID,
			GatewayRefundID: gatewayRefund.ID,
			Amount:          refundAmount,
			Reason:          reason,
			Status:          enums.RefundStatusProcessing,
			ProcessedAt:     s.now().UTC(),
		}
		if _, err := s.refundRepo.WithTx(tx).Create(ctx, refund); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording refund")
		}
		return nil
	})
}

func findItem(order *models.Order, productID uuid.UUID) *models.OrderItem {
	for i := range order.Items {
		if order.Items[i].ProductID == productID {
			return &order.Items[i]
		}
	}
	return nil
}
