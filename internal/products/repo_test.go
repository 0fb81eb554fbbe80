package products

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/wittyvishnu/starfashion-backend/pkg/db/models"
	"github.com/wittyvishnu/starfashion-backend/pkg/pagination"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:products_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seed(t *testing.T, db *gorm.DB, name, gender string, active bool, createdAt time.Time) uuid.UUID {
	t.Helper()
	product := models.Product{
		ID:        uuid.New(),
		Name:      name,
		Brand:     "Starfashion",
		Gender:    gender,
		Price:     decimal.NewFromFloat(499.00),
		Stock:     10,
		IsActive:  active,
		CreatedAt: createdAt,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product.ID
}

func TestListFiltersAndPaginates(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	base := time.Now().UTC().Add(-time.Hour)

	seed(t, db, "Denim Jacket", "men", true, base.Add(1*time.Minute))
	seed(t, db, "Silk Scarf", "women", true, base.Add(2*time.Minute))
	seed(t, db, "Linen Shirt", "men", true, base.Add(3*time.Minute))
	seed(t, db, "Retired Coat", "men", false, base.Add(4*time.Minute))

	items, cursor, err := repo.List(context.Background(), Filters{Gender: "men"}, pagination.Params{Limit: 1})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Linen Shirt" {
		t.Fatalf("unexpected first page: %+v", items)
	}
	if cursor == "" {
		t.Fatal("expected next cursor")
	}

	items, cursor, err = repo.List(context.Background(), Filters{Gender: "men"}, pagination.Params{Limit: 1, Cursor: cursor})
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Denim Jacket" {
		t.Fatalf("unexpected second page: %+v", items)
	}
	if cursor != "" {
		t.Fatalf("expected final page, got cursor %q", cursor)
	}
}

func TestListQueryMatchesNameAndBrand(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	now := time.Now().UTC()
	seed(t, db, "Denim Jacket", "men", true, now)
	seed(t, db, "Silk Scarf", "women", true, now.Add(time.Second))

	items, _, err := repo.List(context.Background(), Filters{Query: "denim"}, pagination.Params{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Denim Jacket" {
		t.Fatalf("unexpected results: %+v", items)
	}
}
