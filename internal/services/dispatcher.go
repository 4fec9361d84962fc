package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chachabrian/homefix-backend/internal/models"
)

// Channel delivers a booking event to one destination.
type Channel interface {
	Name() string
	Deliver(ctx context.Context, e models.BookingEvent) error
}

// Dispatcher queues booking events and delivers them to every channel from
// a fixed pool of workers. Delivery failures are logged and never reach the
// request that produced the event.
type Dispatcher struct {
	channels []Channel
	queue    chan models.BookingEvent
	workers  int
	timeout  time.Duration
	log      *slog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(log *slog.Logger, workers, queueSize int, channels ...Channel) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Dispatcher{
		channels: channels,
		queue:    make(chan models.BookingEvent, queueSize),
		workers:  workers,
		timeout:  15 * time.Second,
		log:      log,
	}
}

func (d *Dispatcher) Start() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.run()
	}
}

// Notify enqueues e. When the queue is full the event is dropped.
func (d *Dispatcher) Notify(e models.BookingEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}
	select {
	case d.queue <- e:
	default:
		d.log.Warn("notification queue full, dropping event", "type", e.Type, "bookingId", e.Booking.ID)
	}
}

// Shutdown stops accepting events and waits for queued ones to drain.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for e := range d.queue {
		for _, ch := range d.channels {
			if err := d.deliver(ch, e); err != nil {
				d.log.Error("notification delivery failed",
					"channel", ch.Name(), "type", e.Type, "bookingId", e.Booking.ID, "error", err)
			}
		}
	}
}

func (d *Dispatcher) deliver(ch Channel, e models.BookingEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	return ch.Deliver(ctx, e)
}
