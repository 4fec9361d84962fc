package services

import (
	"fmt"

	"github.com/chachabrian/homefix-backend/internal/models"
)

type message struct {
	Title string
	Body  string
}

// customerMessage is the text sent to the booking's customer, if any.
func customerMessage(e models.BookingEvent) (message, bool) {
	b := e.Booking
	when := fmt.Sprintf("%s at %s", b.Date, b.Time)
	switch e.Type {
	case models.EventBookingCreated:
		return message{"Booking Confirmed", fmt.Sprintf("Your %s booking for %s is paid (%s %.2f). We are finding a professional for you.", b.ServiceName, when, b.Currency, b.Amount)}, true
	case models.EventBookingConfirmed:
		return message{"Professional Assigned", fmt.Sprintf("A professional has accepted your %s booking for %s.", b.ServiceName, when)}, true
	case models.EventBookingStarted:
		return message{"Service Started", fmt.Sprintf("Your %s service has started.", b.ServiceName)}, true
	case models.EventBookingCompleted:
		return message{"Service Completed", fmt.Sprintf("Your %s service is complete. Tell us how it went by rating your booking.", b.ServiceName)}, true
	case models.EventBookingCancelled:
		return message{"Booking Cancelled", fmt.Sprintf("Your %s booking for %s has been cancelled.", b.ServiceName, when)}, true
	}
	return message{}, false
}

// workerMessage is the text sent to the assigned worker, if any.
func workerMessage(e models.BookingEvent) (message, bool) {
	b := e.Booking
	switch e.Type {
	case models.EventBookingCancelled:
		if e.ActorID != b.CustomerID {
			return message{}, false
		}
		return message{"Booking Cancelled", fmt.Sprintf("The customer cancelled the %s booking on %s at %s.", b.ServiceName, b.Date, b.Time)}, true
	case models.EventBookingRated:
		if b.Rating == nil {
			return message{}, false
		}
		return message{"New Rating", fmt.Sprintf("You received %d/5 for %s.", *b.Rating, b.ServiceName)}, true
	}
	return message{}, false
}
