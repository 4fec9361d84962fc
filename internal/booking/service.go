// Package booking implements the booking lifecycle: payment reconciliation,
// status transitions, ratings and worker analytics.
package booking

import (
	"context"
	"log/slog"
	"time"

	"github.com/chachabrian/homefix-backend/internal/models"
	"github.com/chachabrian/homefix-backend/internal/repository"
)

// DefaultExpiry is how long a pending booking may wait for a worker.
const DefaultExpiry = 24 * time.Hour

type Store interface {
	CreateFromPayment(ctx context.Context, b *models.Booking) (*models.Booking, bool, error)
	FindByID(ctx context.Context, id string) (*models.Booking, error)
	FindByPaymentID(ctx context.Context, paymentID string) (*models.Booking, error)
	UpdateIf(ctx context.Context, id string, g repository.Guard, updates map[string]interface{}) (bool, error)
	Rate(ctx context.Context, id string, rating int, review string, at time.Time) (bool, error)
	ListByCustomer(ctx context.Context, customerID uint) ([]models.Booking, error)
	ListOpen(ctx context.Context, since time.Time) ([]models.Booking, error)
	ListByWorker(ctx context.Context, workerID uint, status models.BookingStatus) ([]models.Booking, error)
	ListWorkedBy(ctx context.Context, workerID uint) ([]models.Booking, error)
}

// OrderStore keeps drafts between order creation and payment verification.
// Fetch returns a nil draft when the order is unknown or has expired.
type OrderStore interface {
	Create(ctx context.Context, draft *models.OrderDraft) (string, error)
	Fetch(ctx context.Context, orderID string) (*models.OrderDraft, error)
}

// Catalog resolves service ids. GetService returns nil when the id is unknown.
type Catalog interface {
	GetService(ctx context.Context, id uint) (*models.ServiceItem, error)
}

// Notifier accepts events without blocking the caller.
type Notifier interface {
	Notify(event models.BookingEvent)
}

type Options struct {
	PaymentSecret string
	Currency      string
	Expiry        time.Duration
	Now           func() time.Time
	Logger        *slog.Logger
}

type Service struct {
	store    Store
	orders   OrderStore
	catalog  Catalog
	notifier Notifier

	secret   string
	currency string
	expiry   time.Duration
	now      func() time.Time
	log      *slog.Logger
}

func NewService(store Store, orders OrderStore, catalog Catalog, notifier Notifier, opts Options) *Service {
	s := &Service{
		store:    store,
		orders:   orders,
		catalog:  catalog,
		notifier: notifier,
		secret:   opts.PaymentSecret,
		currency: opts.Currency,
		expiry:   opts.Expiry,
		now:      opts.Now,
		log:      opts.Logger,
	}
	if s.expiry <= 0 {
		s.expiry = DefaultExpiry
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	return s
}

func (s *Service) expired(b *models.Booking, now time.Time) bool {
	return b.Status == models.BookingStatusPending && now.Sub(b.CreatedAt) > s.expiry
}

func (s *Service) emit(e models.BookingEvent) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(e)
}
