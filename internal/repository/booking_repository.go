package repository

import (
	"context"
	"errors"
	"time"

	"github.com/chachabrian/homefix-backend/internal/apperror"
	"github.com/chachabrian/homefix-backend/internal/models"
	"gorm.io/gorm"
)

var (
	ErrBookingNotFound  = apperror.NotFound("booking not found")
	ErrOrderAlreadyPaid = apperror.Conflict("order already paid with a different payment")
)

// Guard describes the row state a conditional update expects to find.
// A nil WorkerID means the booking must be unassigned.
type Guard struct {
	Status       models.BookingStatus
	WorkerID     *uint
	CreatedAfter *time.Time
}

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// CreateFromPayment inserts b unless its payment has already been reconciled,
// in which case the stored booking is returned with created=false.
func (r *BookingRepository) CreateFromPayment(ctx context.Context, b *models.Booking) (*models.Booking, bool, error) {
	var stored models.Booking
	created := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("payment_id = ?", b.PaymentID).Take(&stored).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		var count int64
		if err := tx.Model(&models.Booking{}).Where("order_id = ?", b.OrderID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrOrderAlreadyPaid
		}

		if err := tx.Create(b).Error; err != nil {
			return err
		}
		stored = *b
		created = true
		return nil
	})
	if err == nil {
		return &stored, created, nil
	}

	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return nil, false, err
	}

	// A concurrent request may have won the unique index race.
	existing, lookupErr := r.FindByPaymentID(ctx, b.PaymentID)
	if lookupErr == nil {
		return existing, false, nil
	}
	var count int64
	if r.db.WithContext(ctx).Model(&models.Booking{}).Where("order_id = ?", b.OrderID).Count(&count).Error == nil && count > 0 {
		return nil, false, ErrOrderAlreadyPaid
	}
	return nil, false, err
}

func (r *BookingRepository) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	var b models.Booking
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepository) FindByPaymentID(ctx context.Context, paymentID string) (*models.Booking, error) {
	var b models.Booking
	if err := r.db.WithContext(ctx).Where("payment_id = ?", paymentID).Take(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &b, nil
}

// UpdateIf applies updates in a single conditional UPDATE and reports whether
// the row still matched g.
func (r *BookingRepository) UpdateIf(ctx context.Context, id string, g Guard, updates map[string]interface{}) (bool, error) {
	q := r.db.WithContext(ctx).Model(&models.Booking{}).Where("id = ? AND status = ?", id, g.Status)
	if g.WorkerID == nil {
		q = q.Where("worker_id IS NULL")
	} else {
		q = q.Where("worker_id = ?", *g.WorkerID)
	}
	if g.CreatedAfter != nil {
		q = q.Where("created_at >= ?", *g.CreatedAfter)
	}

	res := q.Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Rate stores a rating on a completed, unrated booking.
func (r *BookingRepository) Rate(ctx context.Context, id string, rating int, review string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Booking{}).
		Where("id = ? AND status = ? AND rating IS NULL", id, models.BookingStatusCompleted).
		Updates(map[string]interface{}{
			"rating":   rating,
			"review":   review,
			"rated_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *BookingRepository) ListByCustomer(ctx context.Context, customerID uint) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&bookings).Error
	return bookings, err
}

// ListOpen returns unassigned pending bookings created at or after since.
func (r *BookingRepository) ListOpen(ctx context.Context, since time.Time) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.WithContext(ctx).
		Where("status = ? AND worker_id IS NULL AND created_at >= ?", models.BookingStatusPending, since).
		Order("created_at ASC").
		Find(&bookings).Error
	return bookings, err
}

// ListWorkedBy returns every booking workerID held, including the ones
// cancelled while assigned to them.
func (r *BookingRepository) ListWorkedBy(ctx context.Context, workerID uint) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.WithContext(ctx).
		Where("worker_id = ? OR cancelled_worker_id = ?", workerID, workerID).
		Order("created_at DESC").
		Find(&bookings).Error
	return bookings, err
}

// ListByWorker returns the worker's bookings, optionally filtered by status.
func (r *BookingRepository) ListByWorker(ctx context.Context, workerID uint, status models.BookingStatus) ([]models.Booking, error) {
	q := r.db.WithContext(ctx).Where("worker_id = ?", workerID)
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var bookings []models.Booking
	err := q.Order("created_at DESC").Find(&bookings).Error
	return bookings, err
}
