package models

import (
	"time"

	"github.com/google/uuid"
)

// Address is the shipping destination referenced by orders and reservations.
type Address struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID       uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	FullName     string    `gorm:"column:full_name;not null"`
	ContactPhone string    `gorm:"column:contact_phone"`
	Street       string    `gorm:"column:street;not null"`
	City         string    `gorm:"column:city;not null"`
	State        string    `gorm:"column:state;not null"`
	Country      string    `gorm:"column:country;not null"`
	ZipCode      string    `gorm:"column:zip_code;not null"`
	Email        string    `gorm:"column:email"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
