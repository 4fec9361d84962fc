package services

import (
	"context"
	"fmt"

	"github.com/chachabrian/homefix-backend/internal/models"
)

type EmailSender interface {
	SendBookingEmail(to, name, title, message, bookingID string) error
}

type SMSSender interface {
	Send(ctx context.Context, message string, recipients []string) error
}

// EmailNotifier emails the contact address captured on the booking.
type EmailNotifier struct {
	mailer EmailSender
	prefs  PreferenceSource
}

func NewEmailNotifier(mailer EmailSender, prefs PreferenceSource) *EmailNotifier {
	return &EmailNotifier{mailer: mailer, prefs: prefs}
}

func (n *EmailNotifier) Name() string { return "email" }

func (n *EmailNotifier) Deliver(ctx context.Context, e models.BookingEvent) error {
	if e.Booking.ContactEmail == "" || e.Type == models.EventBookingStarted {
		return nil
	}
	msg, ok := customerMessage(e)
	if !ok {
		return nil
	}
	prefs, err := n.prefs.Get(ctx, e.Booking.CustomerID)
	if err != nil {
		return fmt.Errorf("load preferences: %w", err)
	}
	if !prefs.EmailEnabled {
		return nil
	}
	return n.mailer.SendBookingEmail(e.Booking.ContactEmail, e.Booking.ContactName, msg.Title, msg.Body, e.Booking.ID)
}

// SMSNotifier texts the booking's contact mobile for the events a customer
// must not miss.
type SMSNotifier struct {
	sender SMSSender
	prefs  PreferenceSource
}

func NewSMSNotifier(sender SMSSender, prefs PreferenceSource) *SMSNotifier {
	return &SMSNotifier{sender: sender, prefs: prefs}
}

func (n *SMSNotifier) Name() string { return "sms" }

func (n *SMSNotifier) Deliver(ctx context.Context, e models.BookingEvent) error {
	switch e.Type {
	case models.EventBookingCreated, models.EventBookingConfirmed, models.EventBookingCancelled:
	default:
		return nil
	}
	if e.Booking.ContactMobile == "" {
		return nil
	}
	msg, ok := customerMessage(e)
	if !ok {
		return nil
	}
	prefs, err := n.prefs.Get(ctx, e.Booking.CustomerID)
	if err != nil {
		return fmt.Errorf("load preferences: %w", err)
	}
	if !prefs.SMSEnabled {
		return nil
	}
	return n.sender.Send(ctx, msg.Body, []string{e.Booking.ContactMobile})
}
