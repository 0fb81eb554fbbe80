package rzpwebhook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/wittyvishnu/starfashion-backend/internal/orders"
	"github.com/wittyvishnu/starfashion-backend/internal/payments"
	"github.com/wittyvishnu/starfashion-backend/pkg/enums"
	pkgerrors "github.com/wittyvishnu/starfashion-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type captureFinalizer interface {
	FinalizeCapture(ctx context.Context, gatewayOrderID, gatewayPaymentID, signature string) (*payments.CaptureResult, error)
}

// Event is the subset of the Razorpay webhook envelope the platform consumes.
type Event struct {
	Event   string  `json:"event"`
	Payload Payload `json:"payload"`
}

type Payload struct {
	Payment *PaymentWrapper `json:"payment,omitempty"`
	Refund  *RefundWrapper  `json:"refund,omitempty"`
}

type PaymentWrapper struct {
	Entity PaymentEntity `json:"entity"`
}

type PaymentEntity struct {
	ID      string `json:"id"`
	OrderID string `json:"order_id"`
}

type RefundWrapper struct {
	Entity RefundEntity `json:"entity"`
}

type RefundEntity struct {
	ID string `json:"id"`
}

// ServiceParams configure the webhook service.
type ServiceParams struct {
	Tx         txRunner
	Payments   captureFinalizer
	OrdersRepo orders.Repository
	RefundRepo orders.RefundRepository
	Now        func() time.Time
}

// Service applies Razorpay webhook events. Handlers return an error only for
// infrastructure failures worth a gateway retry; business no-ops such as an
// already converted reservation or an unknown refund id acknowledge silently.
type Service struct {
	tx         txRunner
	payments   captureFinalizer
	ordersRepo orders.Repository
	refundRepo orders.RefundRepository
	now        func() time.Time
}

// NewService builds the webhook service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.Payments == nil {
		return nil, fmt.Errorf("payments service required")
	}
	if params.OrdersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.RefundRepo == nil {
		return nil, fmt.Errorf("refund repository required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		tx:         params.Tx,
		payments:   params.Payments,
		ordersRepo: params.OrdersRepo,
		refundRepo: params.RefundRepo,
		now:        now,
	}, nil
}

// HandleEvent dispatches one verified webhook event.
func (s *Service) HandleEvent(ctx context.Context, event *Event) error {
	if event == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "event required")
	}

	switch event.Event {
	case "payment.captured":
		return s.handlePaymentCaptured(ctx, event)
	case "refund.processed":
		return s.handleRefundSettled(ctx, event, enums.RefundStatusCredited)
	case "refund.failed":
		return s.handleRefundSettled(ctx, event, enums.RefundStatusFailed)
	default:
		return nil
	}
}

func (s *Service) handlePaymentCaptured(ctx context.Context, event *Event) error {
	if event.Payload.Payment == nil || event.Payload.Payment.Entity.OrderID == "" {
		return nil
	}
	entity := event.Payload.Payment.Entity

	_, err := s.payments.FinalizeCapture(ctx, entity.OrderID, entity.ID, "")
	if err != nil {
		// The reservation already expired and was swept; the shopper's money
		// comes back through the gateway's auto refund, nothing to do here.
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeStateConflict {
			return nil
		}
		return err
	}
	return nil
}

func (s *Service) handleRefundSettled(ctx context.Context, event *Event, status enums.RefundStatus) error {
	if event.Payload.Refund == nil || event.Payload.Refund.Entity.ID == "" {
		return nil
	}
	gatewayRefundID := event.Payload.Refund.Entity.ID

	refund, err := s.refundRepo.FindByGatewayRefundID(ctx, gatewayRefundID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading refund")
	}
	if refund.Status != enums.RefundStatusProcessing {
		return nil
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.refundRepo.WithTx(tx).UpdateStatus(ctx, refund.ID, status, s.now().UTC()); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating refund status")
		}
		if status != enums.RefundStatusCredited {
			return nil
		}
		if err := s.ordersRepo.WithTx(tx).UpdateItemPaymentStatus(ctx, refund.OrderID, refund.ProductID, enums.PaymentStatusRefundCredited); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating item payment status")
		}
		return nil
	})
}
