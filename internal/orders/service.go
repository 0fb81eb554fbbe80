package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wittyvishnu/starfashion-backend/pkg/enums"
	pkgerrors "github.com/wittyvishnu/starfashion-backend/pkg/errors"
	"github.com/wittyvishnu/starfashion-backend/pkg/pagination"
)

// Service exposes order reads and fulfillment status updates.
type Service interface {
	GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*OrderSummary, error)
	ListOrders(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderList, error)
	UpdateItemStatus(ctx context.Context, input ItemStatusInput) error
}

// ItemStatusInput carries a fulfillment transition for a single order item.
type ItemStatusInput struct {
	OrderID    uuid.UUID
	ProductID  uuid.UUID
	Status     enums.OrderStatus
	TrackingID *string
}

type service struct {
	repo Repository
}

// NewService builds the orders service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*OrderSummary, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindByIDForUser(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	summary := ToOrderSummary(order)
	return &summary, nil
}

func (s *service) ListOrders(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderList, error) {
	records, nextCursor, err := s.repo.ListByUser(ctx, userID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing orders")
	}
	list := &OrderList{
		Orders:     make([]OrderSummary, 0, len(records)),
		NextCursor: nextCursor,
	}
	for i := range records {
		list.Orders = append(list.Orders, ToOrderSummary(&records[i]))
	}
	return list, nil
}

func (s *service) UpdateItemStatus(ctx context.Context, input ItemStatusInput) error {
	if input.OrderID == uuid.Nil || input.ProductID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id and product id required")
	}
	if !input.Status.IsValid() {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "invalid order status %q", input.Status)
	}
	if input.Status == enums.OrderStatusCancelled {
		return pkgerrors.New(pkgerrors.CodeValidation, "cancellation goes through the refund flow")
	}

	order, err := s.repo.FindByID(ctx, input.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}

	var current *enums.OrderStatus
	for i := range order.Items {
		if order.Items[i].ProductID == input.ProductID {
			current = &order.Items[i].OrderStatus
			break
		}
	}
	if current == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order item not found")
	}
	if !transitionAllowed(*current, input.Status) {
		return pkgerrors.Newf(pkgerrors.CodeStateConflict, "cannot move item from %s to %s", *current, input.Status)
	}

	if err := s.repo.UpdateItemTracking(ctx, input.OrderID, input.ProductID, input.Status, input.TrackingID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating item status")
	}
	return nil
}

func transitionAllowed(from, to enums.OrderStatus) bool {
	switch from {
	case enums.OrderStatusProcessing:
		return to == enums.OrderStatusShipped || to == enums.OrderStatusDelivered
	case enums.OrderStatusShipped:
		return to == enums.OrderStatusDelivered
	default:
		return false
	}
}
