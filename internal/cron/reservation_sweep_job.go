package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/wittyvishnu/starfashion-backend/internal/checkout/reservation"
	"github.com/wittyvishnu/starfashion-backend/pkg/db/models"
	"github.com/wittyvishnu/starfashion-backend/pkg/logger"
	"github.com/wittyvishnu/starfashion-backend/pkg/metrics"
)

const sweepBatchSize = 100

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type expiredReservationReader interface {
	ListExpired(ctx context.Context, cutoff time.Time, limit int) ([]models.Reservation, error)
}

type reservationReleaser interface {
	Claim(ctx context.Context, tx *gorm.DB, reservationID uuid.UUID) (bool, error)
	Restore(ctx context.Context, tx *gorm.DB, restores []reservation.StockRestore) error
}

type releaseEngine struct{}

func (releaseEngine) Claim(ctx context.Context, tx *gorm.DB, reservationID uuid.UUID) (bool, error) {
	return reservation.ClaimReservation(ctx, tx, reservationID)
}

func (releaseEngine) Restore(ctx context.Context, tx *gorm.DB, restores []reservation.StockRestore) error {
	return reservation.RestoreStock(ctx, tx, restores)
}

// ReservationSweepJobParams configure the expired reservation sweeper.
type ReservationSweepJobParams struct {
	Logger       *logger.Logger
	DB           txRunner
	Reservations expiredReservationReader
	Releaser     reservationReleaser
	Metrics      *metrics.CronJobMetrics
	BatchSize    int
}

// NewReservationSweepJob builds the cron job that releases stock held by
// reservations whose payment window lapsed.
func NewReservationSweepJob(params ReservationSweepJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Reservations == nil {
		return nil, fmt.Errorf("reservation reader required")
	}
	releaser := params.Releaser
	if releaser == nil {
		releaser = releaseEngine{}
	}
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = sweepBatchSize
	}
	return &reservationSweepJob{
		logg:         params.Logger,
		db:           params.DB,
		reservations: params.Reservations,
		releaser:     releaser,
		metrics:      params.Metrics,
		batchSize:    batchSize,
		now:          time.Now,
	}, nil
}

type reservationSweepJob struct {
	logg         *logger.Logger
	db           txRunner
	reservations expiredReservationReader
	releaser     reservationReleaser
	metrics      *metrics.CronJobMetrics
	batchSize    int
	now          func() time.Time
}

func (j *reservationSweepJob) Name() string { return "reservation-sweep" }

func (j *reservationSweepJob) Run(ctx context.Context) error {
	expired, err := j.reservations.ListExpired(ctx, j.now().UTC(), j.batchSize)
	if err != nil {
		return fmt.Errorf("query expired reservations: %w", err)
	}
	if len(expired) == 0 {
		return nil
	}

	var errs []error
	released := 0
	for _, res := range expired {
		ok, err := j.releaseReservation(ctx, res)
		if err != nil {
			errs = append(errs, fmt.Errorf("release reservation %s: %w", res.ID, err))
			continue
		}
		if ok {
			released++
		}
	}

	if released > 0 {
		runCtx := j.logg.WithField(ctx, "released", released)
		j.logg.Info(runCtx, "expired reservations released")
		if j.metrics != nil {
			j.metrics.AddReleased(j.Name(), released)
		}
	}
	return multierr.Combine(errs...)
}

// releaseReservation claims one expired reservation and puts its stock back.
// A false return means a payment confirmation won the claim first, which is
// not an error: the reservation became an order instead.
func (j *reservationSweepJob) releaseReservation(ctx context.Context, res models.Reservation) (bool, error) {
	released := false
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		claimed, err := j.releaser.Claim(ctx, tx, res.ID)
		if err != nil {
			return err
		}
		if !claimed {
			return nil
		}

		restores := make([]reservation.StockRestore, 0, len(res.Items))
		for _, item := range res.Items {
			restores = append(restores, reservation.StockRestore{
				ProductID: item.ProductID,
				Qty:       item.ReservedQty,
			})
		}
		if err := j.releaser.Restore(ctx, tx, restores); err != nil {
			return err
		}
		released = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return released, nil
}
