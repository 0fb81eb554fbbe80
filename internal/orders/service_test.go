package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/wittyvishnu/starfashion-backend/pkg/enums"
	pkgerrors "github.com/wittyvishnu/starfashion-backend/pkg/errors"
)

func TestGetOrderScopedToUser(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	owner := uuid.New()
	order := seedOrder(t, db, owner, enums.PaymentMethodCOD, time.Now().UTC())

	summary, err := svc.GetOrder(context.Background(), owner, order.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if summary.ID != order.ID || len(summary.Items) != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	_, err = svc.GetOrder(context.Background(), uuid.New(), order.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for other user, got %v", err)
	}
}

func TestUpdateItemStatusTransitions(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()

	order := seedOrder(t, db, uuid.New(), enums.PaymentMethodCOD, time.Now().UTC())
	productID := order.Items[0].ProductID
	tracking := "TRK-1001"

	if err := svc.UpdateItemStatus(ctx, ItemStatusInput{
		OrderID:    order.ID,
		ProductID:  productID,
		Status:     enums.OrderStatusShipped,
		TrackingID: &tracking,
	}); err != nil {
		t.Fatalf("ship item: %v", err)
	}

	if err := svc.UpdateItemStatus(ctx, ItemStatusInput{
		OrderID:   order.ID,
		ProductID: productID,
		Status:    enums.OrderStatusDelivered,
	}); err != nil {
		t.Fatalf("deliver item: %v", err)
	}

	// delivered is terminal
	err = svc.UpdateItemStatus(ctx, ItemStatusInput{
		OrderID:   order.ID,
		ProductID: productID,
		Status:    enums.OrderStatusShipped,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestUpdateItemStatusRejectsCancelled(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	order := seedOrder(t, db, uuid.New(), enums.PaymentMethodCOD, time.Now().UTC())
	err = svc.UpdateItemStatus(context.Background(), ItemStatusInput{
		OrderID:   order.ID,
		ProductID: order.Items[0].ProductID,
		Status:    enums.OrderStatusCancelled,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
