package cron

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/wittyvishnu/starfashion-backend/internal/checkout"
	"github.com/wittyvishnu/starfashion-backend/pkg/db/models"
	"github.com/wittyvishnu/starfashion-backend/pkg/logger"
)

type testTxRunner struct {
	db *gorm.DB
}

func (r testTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func newSweepDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:cron_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}, &models.Reservation{}, &models.ReservationItem{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedExpiredReservation(t *testing.T, db *gorm.DB, productID uuid.UUID, qty int, expiresAt time.Time) *models.Reservation {
	t.Helper()
	res := &models.Reservation{
		ID:             uuid.New(),
		UserID:         uuid.New(),
		AddressID:      uuid.New(),
		GatewayOrderID: "order_" + uuid.NewString(),
		Subtotal:       decimal.NewFromFloat(400.00),
		Tax:            decimal.NewFromFloat(20.00),
		TotalAmount:    decimal.NewFromFloat(420.00),
		ExpiresAt:      expiresAt,
		Items: []models.ReservationItem{
			{
				ID:            uuid.New(),
				ProductID:     productID,
				ReservedQty:   qty,
				ReservedPrice: decimal.NewFromFloat(400.00),
			},
		},
	}
	if err := db.Create(res).Error; err != nil {
		t.Fatalf("seed reservation: %v", err)
	}
	return res
}

func TestReservationSweepReleasesExpiredOnly(t *testing.T) {
	db := newSweepDB(t)
	logg := logger.New(logger.Options{ServiceName: "cron-test"})
	now := time.Now().UTC()

	product := &models.Product{ID: uuid.New(), Name: "Linen Kurta", Price: decimal.NewFromFloat(400.00), Stock: 1, IsActive: true}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}

	expired := seedExpiredReservation(t, db, product.ID, 2, now.Add(-time.Minute))
	live := seedExpiredReservation(t, db, product.ID, 1, now.Add(9*time.Minute))

	job, err := NewReservationSweepJob(ReservationSweepJobParams{
		Logger:       logg,
		DB:           testTxRunner{db: db},
		Reservations: checkout.NewReservationRepository(db),
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	var updated models.Product
	if err := db.First(&updated, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	if updated.Stock != 3 {
		t.Fatalf("stock = %d, want 3", updated.Stock)
	}

	var remaining []models.Reservation
	if err := db.Find(&remaining).Error; err != nil {
		t.Fatalf("list reservations: %v", err)
	}
	if len(remaining) != 1 || remaining[0].ID != live.ID {
		t.Fatalf("remaining = %+v, want only the live reservation", remaining)
	}
	var itemCount int64
	db.Model(&models.ReservationItem{}).Where("reservation_id = ?", expired.ID).Count(&itemCount)
	if itemCount != 0 {
		t.Fatalf("expired reservation items = %d, want 0", itemCount)
	}
}

func TestReservationSweepNoExpired(t *testing.T) {
	db := newSweepDB(t)
	logg := logger.New(logger.Options{ServiceName: "cron-test"})

	job, err := NewReservationSweepJob(ReservationSweepJobParams{
		Logger:       logg,
		DB:           testTxRunner{db: db},
		Reservations: checkout.NewReservationRepository(db),
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestReservationSweepLostClaimLeavesStock(t *testing.T) {
	db := newSweepDB(t)
	logg := logger.New(logger.Options{ServiceName: "cron-test"})
	now := time.Now().UTC()

	product := &models.Product{ID: uuid.New(), Name: "Silk Scarf", Price: decimal.NewFromFloat(250.00), Stock: 4, IsActive: true}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	res := seedExpiredReservation(t, db, product.ID, 2, now.Add(-time.Minute))

	// A payment confirmation converts the reservation between the sweep's
	// read and its claim.
	job, err := NewReservationSweepJob(ReservationSweepJobParams{
		Logger:       logg,
		DB:           testTxRunner{db: db},
		Reservations: staleReader{reservations: []models.Reservation{*res}},
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if err := db.Where("id = ?", res.ID).Delete(&models.Reservation{}).Error; err != nil {
		t.Fatalf("convert reservation: %v", err)
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	var updated models.Product
	db.First(&updated, "id = ?", product.ID)
	if updated.Stock != 4 {
		t.Fatalf("stock = %d, want 4 untouched", updated.Stock)
	}
}

type staleReader struct {
	reservations []models.Reservation
}

func (r staleReader) ListExpired(context.Context, time.Time, int) ([]models.Reservation, error) {
	return r.reservations, nil
}
