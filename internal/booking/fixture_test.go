package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/chachabrian/homefix-backend/internal/logger"
	"github.com/chachabrian/homefix-backend/internal/models"
	"github.com/chachabrian/homefix-backend/internal/repository"
	"github.com/chachabrian/homefix-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const testSecret = "test_secret"

type memoryOrders struct {
	mu     sync.Mutex
	seq    int
	drafts map[string]models.OrderDraft
	err    error
}

func (m *memoryOrders) Create(_ context.Context, d *models.OrderDraft) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	m.seq++
	id := fmt.Sprintf("order_%d", m.seq)
	stored := *d
	stored.OrderID = id
	m.drafts[id] = stored
	return id, nil
}

func (m *memoryOrders) Fetch(_ context.Context, id string) (*models.OrderDraft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	d, ok := m.drafts[id]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

type memoryCatalog struct {
	mu    sync.Mutex
	items map[uint]models.ServiceItem
	err   error
}

func (c *memoryCatalog) GetService(_ context.Context, id uint) (*models.ServiceItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	item, ok := c.items[id]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

func (c *memoryCatalog) rename(id uint, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item := c.items[id]
	item.Name = name
	c.items[id] = item
}

type recorder struct {
	mu     sync.Mutex
	events []models.BookingEvent
}

func (r *recorder) Notify(e models.BookingEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) types() []models.BookingEventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.BookingEventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	svc     *Service
	repo    *repository.BookingRepository
	orders  *memoryOrders
	catalog *memoryCatalog
	events  *recorder
	now     time.Time
}

var (
	customer = models.Actor{ID: 100, Role: models.RoleCustomer}
	workerA  = models.Actor{ID: 201, Role: models.RoleWorker}
	workerB  = models.Actor{ID: 202, Role: models.RoleWorker}
	admin    = models.Actor{ID: 1, Role: models.RoleAdmin}
)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:   repository.NewBookingRepository(testutil.NewDB(t)),
		orders: &memoryOrders{drafts: map[string]models.OrderDraft{}},
		catalog: &memoryCatalog{items: map[uint]models.ServiceItem{
			1: {Name: "Deep Cleaning", Category: "cleaning", Price: 499},
			2: {Name: "Pipe Repair", Category: "plumbing", Price: 799},
		}},
		events: &recorder{},
		now:    time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC),
	}
	f.svc = NewService(f.repo, f.orders, f.catalog, f.events, Options{
		PaymentSecret: testSecret,
		Currency:      "INR",
		Now:           func() time.Time { return f.now },
		Logger:        logger.Discard(),
	})
	return f
}

// seed stores a pending booking created age ago, then applies mutate.
func (f *fixture) seed(t *testing.T, age time.Duration, mutate func(*models.Booking)) *models.Booking {
	t.Helper()
	id := uuid.NewString()
	b := &models.Booking{
		ID:              id,
		CustomerID:      customer.ID,
		ServiceID:       1,
		ServiceName:     "Deep Cleaning",
		ServiceCategory: "cleaning",
		Date:            "2026-10-20",
		Time:            "09:30",
		Location:        "12 Elm St",
		ContactMobile:   "+15550001",
		Amount:          499,
		Currency:        "INR",
		OrderID:         "order_" + id,
		PaymentID:       "pay_" + id,
		PaymentStatus:   models.PaymentStatusPaid,
		Status:          models.BookingStatusPending,
		CreatedAt:       f.now.Add(-age),
	}
	if mutate != nil {
		mutate(b)
	}
	stored, created, err := f.repo.CreateFromPayment(context.Background(), b)
	require.NoError(t, err)
	require.True(t, created)
	return stored
}

func assigned(worker models.Actor, status models.BookingStatus) func(*models.Booking) {
	return func(b *models.Booking) {
		id := worker.ID
		b.WorkerID = &id
		b.Status = status
	}
}

var errUnavailable = errors.New("connection refused")
