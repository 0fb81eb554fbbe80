package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/wittyvishnu/starfashion-backend/pkg/db/models"
	"github.com/wittyvishnu/starfashion-backend/pkg/enums"
	"github.com/wittyvishnu/starfashion-backend/pkg/pagination"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:orders_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}, &models.Order{}, &models.OrderItem{}, &models.Refund{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedOrder(t *testing.T, db *gorm.DB, userID uuid.UUID, method enums.PaymentMethod, createdAt time.Time) *models.Order {
	t.Helper()
	gatewayOrderID := "order_" + uuid.NewString()
	order := &models.Order{
		ID:                uuid.New(),
		UserID:            userID,
		ShippingAddressID: uuid.New(),
		PaymentMethod:     method,
		PaymentDetails: models.PaymentDetails{
			Subtotal:   decimal.NewFromFloat(499.00),
			Tax:        decimal.NewFromFloat(24.95),
			TotalPrice: decimal.NewFromFloat(523.95),
		},
		Currency:  "INR",
		CreatedAt: createdAt,
		Items: []models.OrderItem{
			{
				ID:            uuid.New(),
				ProductID:     uuid.New(),
				Quantity:      1,
				Price:         decimal.NewFromFloat(499.00),
				PaymentStatus: enums.PaymentStatusPaid,
				OrderStatus:   enums.OrderStatusProcessing,
			},
		},
	}
	if method == enums.PaymentMethodRazorpay {
		order.GatewayOrderID = &gatewayOrderID
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return order
}

func TestFindByGatewayOrderID(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	order := seedOrder(t, db, uuid.New(), enums.PaymentMethodRazorpay, time.Now().UTC())

	found, err := repo.FindByGatewayOrderID(context.Background(), *order.GatewayOrderID)
	if err != nil {
		t.Fatalf("find by gateway order id: %v", err)
	}
	if found.ID != order.ID {
		t.Fatalf("expected order %s, got %s", order.ID, found.ID)
	}
	if len(found.Items) != 1 {
		t.Fatalf("expected items preloaded, got %d", len(found.Items))
	}
}

func TestListByUserPaginates(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	userID := uuid.New()
	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		seedOrder(t, db, userID, enums.PaymentMethodCOD, base.Add(time.Duration(i)*time.Minute))
	}
	seedOrder(t, db, uuid.New(), enums.PaymentMethodCOD, base)

	page1, cursor, err := repo.ListByUser(context.Background(), userID, pagination.Params{Limit: 2})
	if err != nil {
		t.Fatalf("list page 1: %v", err)
	}
	if len(page1) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(page1))
	}
	if cursor == "" {
		t.Fatal("expected next cursor")
	}
	if !page1[0].CreatedAt.After(page1[1].CreatedAt) {
		t.Fatal("expected newest-first ordering")
	}

	page2, cursor2, err := repo.ListByUser(context.Background(), userID, pagination.Params{Limit: 2, Cursor: cursor})
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}
	if len(page2) != 1 {
		t.Fatalf("expected 1 order on last page, got %d", len(page2))
	}
	if cursor2 != "" {
		t.Fatalf("expected empty cursor on last page, got %q", cursor2)
	}
}

func TestCancelItemIfActiveIsGuarded(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	order := seedOrder(t, db, uuid.New(), enums.PaymentMethodRazorpay, time.Now().UTC())
	productID := order.Items[0].ProductID

	rows, err := repo.CancelItemIfActive(context.Background(), order.ID, productID, enums.PaymentStatusRefunded)
	if err != nil {
		t.Fatalf("cancel item: %v", err)
	}
	if rows != 1 {
		t.Fatalf("expected 1 row, got %d", rows)
	}

	// second cancel is a no-op
	rows, err = repo.CancelItemIfActive(context.Background(), order.ID, productID, enums.PaymentStatusRefunded)
	if err != nil {
		t.Fatalf("cancel item again: %v", err)
	}
	if rows != 0 {
		t.Fatalf("expected 0 rows on repeat cancel, got %d", rows)
	}

	var item models.OrderItem
	if err := db.Where("order_id = ? AND product_id = ?", order.ID, productID).First(&item).Error; err != nil {
		t.Fatalf("load item: %v", err)
	}
	if item.OrderStatus != enums.OrderStatusCancelled || item.PaymentStatus != enums.PaymentStatusRefunded {
		t.Fatalf("unexpected item state: %+v", item)
	}
}

func TestRefundRepositoryLifecycle(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRefundRepository(db)
	ctx := context.Background()

	refund := &models.Refund{
		ID:              uuid.New(),
		OrderID:         uuid.New(),
		ProductID:       uuid.New(),
		UserID:          uuid.New(),
		GatewayRefundID: "rfnd_" + uuid.NewString(),
		Amount:          decimal.NewFromFloat(523.95),
		Status:          enums.RefundStatusProcessing,
		ProcessedAt:     time.Now().UTC(),
	}
	if _, err := repo.Create(ctx, refund); err != nil {
		t.Fatalf("create refund: %v", err)
	}

	found, err := repo.FindByGatewayRefundID(ctx, refund.GatewayRefundID)
	if err != nil {
		t.Fatalf("find refund: %v", err)
	}
	if found.ID != refund.ID {
		t.Fatalf("expected refund %s, got %s", refund.ID, found.ID)
	}

	creditedAt := time.Now().UTC()
	if err := repo.UpdateStatus(ctx, refund.ID, enums.RefundStatusCredited, creditedAt); err != nil {
		t.Fatalf("update status: %v", err)
	}
	found, err = repo.FindByGatewayRefundID(ctx, refund.GatewayRefundID)
	if err != nil {
		t.Fatalf("reload refund: %v", err)
	}
	if found.Status != enums.RefundStatusCredited || found.CreditedAt == nil {
		t.Fatalf("unexpected refund state: %+v", found)
	}
}
