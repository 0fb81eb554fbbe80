package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/wittyvishnu/starfashion-backend/internal/cart"
	"github.com/wittyvishnu/starfashion-backend/internal/checkout/helpers"
	"github.com/wittyvishnu/starfashion-backend/internal/checkout/reservation"
	"github.com/wittyvishnu/starfashion-backend/internal/orders"
	"github.com/wittyvishnu/starfashion-backend/pkg/db/models"
	"github.com/wittyvishnu/starfashion-backend/pkg/enums"
	pkgerrors "github.com/wittyvishnu/starfashion-backend/pkg/errors"
	"github.com/wittyvishnu/starfashion-backend/pkg/razorpay"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type paymentGateway interface {
	CreateOrder(ctx context.Context, params razorpay.OrderCreateParams) (*razorpay.GatewayOrder, error)
	KeyID() string
	Currency() string
}

type stockReserver interface {
	Reserve(ctx context.Context, tx *gorm.DB, requests []reservation.StockRequest) error
}

type stockEngine struct{}

func (stockEngine) Reserve(ctx context.Context, tx *gorm.DB, requests []reservation.StockRequest) error {
	return reservation.ReserveStock(ctx, tx, requests)
}

// Input captures one checkout request.
type Input struct {
	AddressID     uuid.UUID
	PaymentMethod enums.PaymentMethod
	QuotedTotal   decimal.Decimal
}

// Prefill carries shopper contact data for the payment widget.
type Prefill struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Contact string `json:"contact"`
}

// GatewayCheckout is returned for the deferred-capture path.
type GatewayCheckout struct {
	OrderID     string   `json:"order_id"`
	AmountMinor int64    `json:"amount"`
	Currency    string   `json:"currency"`
	KeyID       string   `json:"key_id"`
	Prefill     *Prefill `json:"prefill,omitempty"`
}

// Result is the outcome of a checkout: exactly one branch is set.
type Result struct {
	OrderID  *uuid.UUID       `json:"order_id,omitempty"`
	Razorpay *GatewayCheckout `json:"razorpay,omitempty"`
}

// Service executes checkout orchestration.
type Service interface {
	Execute(ctx context.Context, userID uuid.UUID, input Input) (*Result, error)
}

// ServiceParams configure the checkout service.
type ServiceParams struct {
	Tx              txRunner
	CartRepo        cart.Repository
	OrdersRepo      orders.Repository
	ReservationRepo ReservationRepository
	Contacts        ContactReader
	Gateway         paymentGateway
	Reserver        stockReserver
	ReservationTTL  time.Duration
	Now             func() time.Time
}

type service struct {
	tx              txRunner
	cartRepo        cart.Repository
	ordersRepo      orders.Repository
	reservationRepo ReservationRepository
	contacts        ContactReader
	gateway         paymentGateway
	reserver        stockReserver
	reservationTTL  time.Duration
	now             func() time.Time
}

// NewService builds the checkout service.
func NewService(params ServiceParams) (Service, error) {
	if params.Tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.CartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.OrdersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.ReservationRepo == nil {
		return nil, fmt.Errorf("reservation repository required")
	}
	if params.Contacts == nil {
		return nil, fmt.Errorf("contact reader required")
	}
	if params.Gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	reserver := params.Reserver
	if reserver == nil {
		reserver = stockEngine{}
	}
	ttl := params.ReservationTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		tx:              params.Tx,
		cartRepo:        params.CartRepo,
		ordersRepo:      params.OrdersRepo,
		reservationRepo: params.ReservationRepo,
		contacts:        params.Contacts,
		gateway:         params.Gateway,
		reserver:        reserver,
		reservationTTL:  ttl,
		now:             now,
	}, nil
}

func (s *service) Execute(ctx context.Context, userID uuid.UUID, input Input) (*Result, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user required")
	}
	if input.AddressID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "address id required")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "unsupported payment method %q", input.PaymentMethod)
	}

	if _, err := s.contacts.FindAddressForUser(ctx, input.AddressID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading address")
	}

	switch input.PaymentMethod {
	case enums.PaymentMethodCOD:
		return s.executeCOD(ctx, userID, input)
	default:
		return s.executeRazorpay(ctx, userID, input)
	}
}

func (s *service) executeCOD(ctx context.Context, userID uuid.UUID, input Input) (*Result, error) {
	var orderID uuid.UUID
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		record, totals, err := s.loadAndPrice(ctx, tx, userID, input.QuotedTotal)
		if err != nil {
			return err
		}
		if err := s.reserveCart(ctx, tx, record); err != nil {
			return err
		}

		order := buildOrder(userID, input.AddressID, enums.PaymentMethodCOD, record.Items, totals)
		if _, err := s.ordersRepo.WithTx(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating order")
		}
		orderID = order.ID

		return s.cartRepo.WithTx(tx).DeleteByUser(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	return &Result{OrderID: &orderID}, nil
}

func (s *service) executeRazorpay(ctx context.Context, userID uuid.UUID, input Input) (*Result, error) {
	var gatewayOrder *razorpay.GatewayOrder
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		record, totals, err := s.loadAndPrice(ctx, tx, userID, input.QuotedTotal)
		if err != nil {
			return err
		}
		if err := s.reserveCart(ctx, tx, record); err != nil {
			return err
		}

		// The gateway call happens inside the transaction on purpose: if the
		// provider is down, the stock decrement above must roll back.
		gatewayOrder, err = s.gateway.CreateOrder(ctx, razorpay.OrderCreateParams{
			AmountMinor: helpers.MinorUnits(totals.Total),
			Currency:    s.gateway.Currency(),
			Receipt:     "rcpt_" + userID.String(),
		})
		if err != nil {
			return err
		}

		items := make([]models.ReservationItem, 0, len(record.Items))
		for _, item := range record.Items {
			items = append(items, models.ReservationItem{
				ID:            uuid.New(),
				ProductID:     item.ProductID,
				ReservedQty:   item.Quantity,
				ReservedPrice: item.Product.Price,
			})
		}
		res := &models.Reservation{
			ID:             uuid.New(),
			UserID:         userID,
			AddressID:      input.AddressID,
			GatewayOrderID: gatewayOrder.ID,
			Subtotal:       totals.Subtotal,
			Tax:            totals.Tax,
			TotalAmount:    totals.Total,
			ExpiresAt:      s.now().UTC().Add(s.reservationTTL),
			Items:          items,
		}
		if _, err := s.reservationRepo.WithTx(tx).Create(ctx, res); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating reservation")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	checkout := &GatewayCheckout{
		OrderID:     gatewayOrder.ID,
		AmountMinor: gatewayOrder.AmountMinor,
		Currency:    gatewayOrder.Currency,
		KeyID:       s.gateway.KeyID(),
	}
	// Prefill is best effort; a missing profile must not fail the checkout.
	if user, err := s.contacts.FindUser(ctx, userID); err == nil {
		checkout.Prefill = &Prefill{Name: user.Name, Email: user.Email, Contact: user.Phone}
	}
	return &Result{Razorpay: checkout}, nil
}

func (s *service) loadAndPrice(ctx context.Context, tx *gorm.DB, userID uuid.UUID, quotedTotal decimal.Decimal) (*models.Cart, helpers.Totals, error) {
	record, err := s.cartRepo.WithTx(tx).FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, helpers.Totals{}, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}
		return nil, helpers.Totals{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
	}
	if len(record.Items) == 0 {
		return nil, helpers.Totals{}, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	totals, err := helpers.ComputeTotals(record.Items)
	if err != nil {
		return nil, helpers.Totals{}, err
	}
	if err := helpers.ValidateQuotedTotal(quotedTotal, totals.Total); err != nil {
		return nil, helpers.Totals{}, err
	}
	return record, totals, nil
}

func (s *service) reserveCart(ctx context.Context, tx *gorm.DB, record *models.Cart) error {
	requests := make([]reservation.StockRequest, 0, len(record.Items))
	for _, item := range record.Items {
		requests = append(requests, reservation.StockRequest{
			ProductID: item.ProductID,
			Qty:       item.Quantity,
		})
	}
	return s.reserver.Reserve(ctx, tx, requests)
}

func buildOrder(userID, addressID uuid.UUID, method enums.PaymentMethod, items []models.CartItem, totals helpers.Totals) *models.Order {
	orderItems := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		orderItems = append(orderItems, models.OrderItem{
			ID:            uuid.New(),
			ProductID:     item.ProductID,
			Quantity:      item.Quantity,
			Price:         item.Product.Price,
			PaymentStatus: enums.PaymentStatusPaid,
			OrderStatus:   enums.OrderStatusProcessing,
		})
	}
	return &models.Order{
		ID:                uuid.New(),
		UserID:            userID,
		ShippingAddressID: addressID,
		PaymentMethod:     method,
		PaymentDetails: models.PaymentDetails{
			Subtotal:   totals.Subtotal,
			Tax:        totals.Tax,
			Shipping:   decimal.Zero,
			Processing: decimal.Zero,
			TotalPrice: totals.Total,
		},
		Currency: "INR",
		Items:    orderItems,
	}
}
