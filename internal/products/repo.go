package products

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wittyvishnu/starfashion-backend/pkg/db/models"
	"github.com/wittyvishnu/starfashion-backend/pkg/pagination"
)

// Filters narrow the catalog listing.
type Filters struct {
	Gender     string
	CategoryID *uuid.UUID
	Query      string
}

// Repository reads the product catalog.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, filters Filters, params pagination.Params) ([]models.Product, string, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a product repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) List(ctx context.Context, filters Filters, params pagination.Params) ([]models.Product, string, error) {
	limit := pagination.LimitWithBuffer(params.Limit)

	query := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC, id DESC").
		Limit(limit)

	if gender := strings.TrimSpace(filters.Gender); gender != "" {
		query = query.Where("gender = ?", strings.ToLower(gender))
	}
	if filters.CategoryID != nil {
		query = query.Where("category_id = ?", *filters.CategoryID)
	}
	if q := strings.TrimSpace(filters.Query); q != "" {
		pattern := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(brand) LIKE ?", pattern, pattern)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var items []models.Product
	if err := query.Find(&items).Error; err != nil {
		return nil, "", err
	}

	nextCursor := ""
	pageSize := pagination.NormalizeLimit(params.Limit)
	if len(items) > pageSize {
		items = items[:pageSize]
		last := items[len(items)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return items, nextCursor, nil
}
