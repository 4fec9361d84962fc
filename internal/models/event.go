package models

import "time"

type BookingEventType string

const (
	EventBookingCreated   BookingEventType = "booking.created"
	EventBookingConfirmed BookingEventType = "booking.confirmed"
	EventBookingStarted   BookingEventType = "booking.started"
	EventBookingCompleted BookingEventType = "booking.completed"
	EventBookingCancelled BookingEventType = "booking.cancelled"
	EventBookingRated     BookingEventType = "booking.rated"
)

// BookingEvent is emitted after a booking change has been persisted.
type BookingEvent struct {
	Type    BookingEventType `json:"type"`
	Booking Booking          `json:"booking"`
	ActorID uint             `json:"actorId"`
	At      time.Time        `json:"at"`
	// PreviousWorkerID is the worker assigned before the change. Cancelling
	// clears the booking's worker, so this is how they are reached.
	PreviousWorkerID *uint `json:"previousWorkerId,omitempty"`
}

// Recipients returns the users that should hear about the event.
func (e BookingEvent) Recipients() []uint {
	ids := []uint{e.Booking.CustomerID}
	if w := e.WorkerID(); w != nil && *w != e.Booking.CustomerID {
		ids = append(ids, *w)
	}
	return ids
}

// WorkerID returns the worker involved in the event.
func (e BookingEvent) WorkerID() *uint {
	if e.Booking.WorkerID != nil {
		return e.Booking.WorkerID
	}
	return e.PreviousWorkerID
}
