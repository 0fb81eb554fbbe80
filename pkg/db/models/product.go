package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Product represents a catalog listing whose stock is the contended resource
// at checkout time. Stock never goes below zero after a committed operation.
type Product struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string          `gorm:"column:name;not null"`
	Description string          `gorm:"column:description"`
	Brand       string          `gorm:"column:brand;not null"`
	Gender      string          `gorm:"column:gender;not null;default:'unisex'"`
	CategoryID  *uuid.UUID      `gorm:"column:category_id;type:uuid"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	Stock       int             `gorm:"column:stock;not null;default:0"`
	Thumbnail   string          `gorm:"column:thumbnail"`
	OtherImages pq.StringArray  `gorm:"column:other_images;type:text[]"`
	Sizes       pq.StringArray  `gorm:"column:sizes;type:text[]"`
	Colors      pq.StringArray  `gorm:"column:colors;type:text[]"`
	Cloth       *string         `gorm:"column:cloth"`
	IsActive    bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
