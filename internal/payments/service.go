package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wittyvishnu/starfashion-backend/internal/cart"
	"github.com/wittyvishnu/starfashion-backend/internal/checkout"
	"github.com/wittyvishnu/starfashion-backend/internal/checkout/reservation"
	"github.com/wittyvishnu/starfashion-backend/internal/orders"
	"github.com/wittyvishnu/starfashion-backend/pkg/db/models"
	"github.com/wittyvishnu/starfashion-backend/pkg/enums"
	pkgerrors "github.com/wittyvishnu/starfashion-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type signatureVerifier interface {
	VerifyPaymentSignature(gatewayOrderID, gatewayPaymentID, signature string) bool
}

type reservationClaimer interface {
	Claim(ctx context.Context, tx *gorm.DB, reservationID uuid.UUID) (bool, error)
}

type claimEngine struct{}

func (claimEngine) Claim(ctx context.Context, tx *gorm.DB, reservationID uuid.UUID) (bool, error) {
	return reservation.ClaimReservation(ctx, tx, reservationID)
}

// VerifyInput is the client-side payment confirmation payload.
type VerifyInput struct {
	GatewayOrderID   string
	GatewayPaymentID string
	Signature        string
}

// CaptureResult reports the order a confirmed payment resolved to.
type CaptureResult struct {
	OrderID          uuid.UUID `json:"order_id"`
	AlreadyProcessed bool      `json:"already_processed"`
}

// Service converts confirmed online payments into orders. Both confirmation
// entry points, the client verify call and the gateway webhook, funnel into
// FinalizeCapture so only one of them ever creates the order.
type Service interface {
	VerifyAndCapture(ctx context.Context, input VerifyInput) (*CaptureResult, error)
	FinalizeCapture(ctx context.Context, gatewayOrderID, gatewayPaymentID, signature string) (*CaptureResult, error)
}

// ServiceParams configure the payments service.
type ServiceParams struct {
	Tx              txRunner
	OrdersRepo      orders.Repository
	ReservationRepo checkout.ReservationRepository
	CartRepo        cart.Repository
	Verifier        signatureVerifier
	Claimer         reservationClaimer
}

type service struct {
	tx              txRunner
	ordersRepo      orders.Repository
	reservationRepo checkout.ReservationRepository
	cartRepo        cart.Repository
	verifier        signatureVerifier
	claimer         reservationClaimer
}

// NewService builds the payments service.
func NewService(params ServiceParams) (Service, error) {
	if params.Tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.OrdersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.ReservationRepo == nil {
		return nil, fmt.Errorf("reservation repository required")
	}
	if params.CartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.Verifier == nil {
		return nil, fmt.Errorf("signature verifier required")
	}
	claimer := params.Claimer
	if claimer == nil {
		claimer = claimEngine{}
	}
	return &service{
		tx:              params.Tx,
		ordersRepo:      params.OrdersRepo,
		reservationRepo: params.ReservationRepo,
		cartRepo:        params.CartRepo,
		verifier:        params.Verifier,
		claimer:         claimer,
	}, nil
}

func (s *service) VerifyAndCapture(ctx context.Context, input VerifyInput) (*CaptureResult, error) {
	if input.GatewayOrderID == "" || input.GatewayPaymentID == "" || input.Signature == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id, payment id and signature required")
	}
	if !s.verifier.VerifyPaymentSignature(input.GatewayOrderID, input.GatewayPaymentID, input.Signature) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment signature mismatch")
	}
	return s.FinalizeCapture(ctx, input.GatewayOrderID, input.GatewayPaymentID, input.Signature)
}

// FinalizeCapture resolves a confirmed payment for a gateway order into an
// order row. Callers must have authenticated the confirmation already; this
// method decides only who wins the reservation.
func (s *service) FinalizeCapture(ctx context.Context, gatewayOrderID, gatewayPaymentID, signature string) (*CaptureResult, error) {
	if existing, err := s.findOrder(ctx, gatewayOrderID); err != nil {
		return nil, err
	} else if existing != nil {
		return &CaptureResult{OrderID: existing.ID, AlreadyProcessed: true}, nil
	}

	res, err := s.reservationRepo.FindByGatewayOrderID(ctx, gatewayOrderID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading reservation")
		}
		// No reservation left: either a racing confirmer already converted
		// it, or the sweeper released it after expiry.
		return s.resolveMissingReservation(ctx, gatewayOrderID)
	}

	var orderID uuid.UUID
	won := false
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		claimed, err := s.claimer.Claim(ctx, tx, res.ID)
		if err != nil {
			return err
		}
		if !claimed {
			return nil
		}
		won = true

		order := orderFromReservation(res, gatewayOrderID, gatewayPaymentID, signature)
		if _, err := s.ordersRepo.WithTx(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating order")
		}
		orderID = order.ID

		return s.cartRepo.WithTx(tx).DeleteByUser(ctx, res.UserID)
	})
	if err != nil {
		return nil, err
	}
	if won {
		return &CaptureResult{OrderID: orderID}, nil
	}
	return s.resolveMissingReservation(ctx, gatewayOrderID)
}

func (s *service) findOrder(ctx context.Context, gatewayOrderID string) (*models.Order, error) {
	order, err := s.ordersRepo.FindByGatewayOrderID(ctx, gatewayOrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	return order, nil
}

func (s *service) resolveMissingReservation(ctx context.Context, gatewayOrderID string) (*CaptureResult, error) {
	order, err := s.findOrder(ctx, gatewayOrderID)
	if err != nil {
		return nil, err
	}
	if order != nil {
		return &CaptureResult{OrderID: order.ID, AlreadyProcessed: true}, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "reservation expired before payment was confirmed")
}

func orderFromReservation(res *models.Reservation, gatewayOrderID, gatewayPaymentID, signature string) *models.Order {
	items := make([]models.OrderItem, 0, len(res.Items))
	for _, item := range res.Items {
		items = append(items, models.OrderItem{
			ID:            uuid.New(),
			ProductID:     item.ProductID,
			Quantity:      item.ReservedQty,
			Price:         item.ReservedPrice,
			PaymentStatus: enums.PaymentStatusPaid,
			OrderStatus:   enums.OrderStatusProcessing,
		})
	}
	order := &models.Order{
		ID:                uuid.New(),
		UserID:            res.UserID,
		ShippingAddressID: res.AddressID,
		PaymentMethod:     enums.PaymentMethodRazorpay,
		PaymentDetails: models.PaymentDetails{
			Subtotal:   res.Subtotal,
			Tax:        res.Tax,
			TotalPrice: res.TotalAmount,
		},
		GatewayOrderID: &gatewayOrderID,
		Currency:       "INR",
		Items:          items,
	}
	if gatewayPaymentID != "" {
		order.GatewayPaymentID = &gatewayPaymentID
	}
	if signature != "" {
		order.GatewaySignature = &signature
	}
	return order
}
