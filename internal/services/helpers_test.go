package services

import (
	"context"
	"sync"
	"time"

	"github.com/chachabrian/homefix-backend/internal/models"
)

type staticPrefs map[uint]*models.NotificationPreference

func (p staticPrefs) Get(_ context.Context, userID uint) (*models.NotificationPreference, error) {
	if prefs, ok := p[userID]; ok {
		return prefs, nil
	}
	return models.DefaultPreferences(userID), nil
}

func uintPtr(v uint) *uint { return &v }

func sampleEvent(t models.BookingEventType) models.BookingEvent {
	completedAt := time.Date(2026, 10, 14, 16, 0, 0, 0, time.UTC)
	return models.BookingEvent{
		Type: t,
		Booking: models.Booking{
			ID:              "b-1",
			CustomerID:      100,
			WorkerID:        uintPtr(201),
			ServiceName:     "Deep Cleaning",
			ServiceCategory: "cleaning",
			Date:            "2026-10-14",
			Time:            "09:30",
			Location:        "12 Elm St",
			ContactMobile:   "+15550001",
			ContactEmail:    "jane@example.com",
			ContactName:     "Jane",
			Amount:          499,
			Currency:        "INR",
			OrderID:         "order_1",
			PaymentID:       "pay_1",
			PaymentStatus:   models.PaymentStatusPaid,
			Status:          models.BookingStatusCompleted,
			CompletedAt:     &completedAt,
		},
		ActorID: 201,
		At:      completedAt,
	}
}

type recordingChannel struct {
	name string
	err  error
	mu   sync.Mutex
	got  []models.BookingEvent
}

func (c *recordingChannel) Name() string { return c.name }

func (c *recordingChannel) Deliver(_ context.Context, e models.BookingEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.got = append(c.got, e)
	return c.err
}

func (c *recordingChannel) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.got)
}
