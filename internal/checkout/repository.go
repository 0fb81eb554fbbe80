package checkout

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wittyvishnu/starfashion-backend/pkg/db/models"
)

// ReservationRepository persists pending-payment stock holds.
type ReservationRepository interface {
	WithTx(tx *gorm.DB) ReservationRepository

	Create(ctx context.Context, res *models.Reservation) (*models.Reservation, error)
	FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.Reservation, error)
	ListExpired(ctx context.Context, cutoff time.Time, limit int) ([]models.Reservation, error)
}

type reservationRepository struct {
	db *gorm.DB
}

// NewReservationRepository builds a reservation repository bound to the provided DB.
func NewReservationRepository(db *gorm.DB) ReservationRepository {
	return &reservationRepository{db: db}
}

func (r *reservationRepository) WithTx(tx *gorm.DB) ReservationRepository {
	if tx == nil {
		return r
	}
	return &reservationRepository{db: tx}
}

func (r *reservationRepository) Create(ctx context.Context, res *models.Reservation) (*models.Reservation, error) {
	if err := r.db.WithContext(ctx).Create(res).Error; err != nil {
		return nil, err
	}
	return res, nil
}

func (r *reservationRepository) FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.Reservation, error) {
	var res models.Reservation
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("gateway_order_id = ?", gatewayOrderID).
		First(&res).Error
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *reservationRepository) ListExpired(ctx context.Context, cutoff time.Time, limit int) ([]models.Reservation, error) {
	query := r.db.WithContext(ctx).
		Preload("Items").
		Where("expires_at <= ?", cutoff).
		Order("expires_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var reservations []models.Reservation
	if err := query.Find(&reservations).Error; err != nil {
		return nil, err
	}
	return reservations, nil
}

// ContactReader loads the shopper data used for the payment widget prefill.
type ContactReader interface {
	FindUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindAddressForUser(ctx context.Context, addressID, userID uuid.UUID) (*models.Address, error)
}

type contactReader struct {
	db *gorm.DB
}

// NewContactReader builds a contact reader bound to the provided DB.
func NewContactReader(db *gorm.DB) ContactReader {
	return &contactReader{db: db}
}

func (r *contactReader) FindUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *contactReader) FindAddressForUser(ctx context.Context, addressID, userID uuid.UUID) (*models.Address, error) {
	var address models.Address
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", addressID, userID).
		First(&address).Error
	if err != nil {
		return nil, err
	}
	return &address, nil
}
