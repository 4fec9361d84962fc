package booking

import (
	"github.com/chachabrian/homefix-backend/internal/models"
)

type action string

const (
	actionClaim  action = "claim"
	actionStart  action = "start"
	actionFinish action = "finish"
	actionCancel action = "cancel"
)

// transitions lists every legal (from, action) pair. Anything missing is
// rejected; completed and cancelled have no entries.
var transitions = map[models.BookingStatus]map[action]models.BookingStatus{
	models.BookingStatusPending: {
		actionClaim:  models.BookingStatusConfirmed,
		actionStart:  models.BookingStatusInProgress,
		actionCancel: models.BookingStatusCancelled,
	},
	models.BookingStatusConfirmed: {
		actionStart:  models.BookingStatusInProgress,
		actionCancel: models.BookingStatusCancelled,
	},
	models.BookingStatusInProgress: {
		actionFinish: models.BookingStatusCompleted,
		actionCancel: models.BookingStatusCancelled,
	},
}

// actionFor maps a requested target status to the action that produces it.
func actionFor(target models.BookingStatus) (action, bool) {
	switch target {
	case models.BookingStatusConfirmed:
		return actionClaim, true
	case models.BookingStatusInProgress:
		return actionStart, true
	case models.BookingStatusCompleted:
		return actionFinish, true
	case models.BookingStatusCancelled:
		return actionCancel, true
	}
	return "", false
}

func next(from models.BookingStatus, a action) (models.BookingStatus, bool) {
	to, ok := transitions[from][a]
	return to, ok
}

func eventFor(to models.BookingStatus) models.BookingEventType {
	switch to {
	case models.BookingStatusConfirmed:
		return models.EventBookingConfirmed
	case models.BookingStatusInProgress:
		return models.EventBookingStarted
	case models.BookingStatusCompleted:
		return models.EventBookingCompleted
	default:
		return models.EventBookingCancelled
	}
}
