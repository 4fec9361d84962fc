package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chachabrian/homefix-backend/internal/apperror"
	"github.com/chachabrian/homefix-backend/internal/models"
	"github.com/chachabrian/homefix-backend/internal/repository"
	"github.com/chachabrian/homefix-backend/pkg/utils"
	"github.com/google/uuid"
)

type OrderRequest struct {
	Amount    float64
	ServiceID uint
	Date      string
	Time      string
	Location  string
	Mobile    string
	Email     string
	FullName  string
}

func (r OrderRequest) missing() []string {
	var fields []string
	if r.Amount <= 0 {
		fields = append(fields, "amount")
	}
	if r.ServiceID == 0 {
		fields = append(fields, "serviceId")
	}
	if strings.TrimSpace(r.Date) == "" {
		fields = append(fields, "date")
	}
	if strings.TrimSpace(r.Time) == "" {
		fields = append(fields, "time")
	}
	if strings.TrimSpace(r.Location) == "" {
		fields = append(fields, "location")
	}
	if strings.TrimSpace(r.Mobile) == "" {
		fields = append(fields, "mobile")
	}
	return fields
}

// CreateOrder records a booking draft for customerID and returns it with the
// order id the client pays against. No booking exists until the payment is
// verified.
func (s *Service) CreateOrder(ctx context.Context, customerID uint, req OrderRequest) (*models.OrderDraft, error) {
	if missing := req.missing(); len(missing) > 0 {
		return nil, apperror.Validation("missing required fields: " + strings.Join(missing, ", "))
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return nil, apperror.Validation("date must be YYYY-MM-DD")
	}
	if _, err := time.Parse("15:04", req.Time); err != nil {
		return nil, apperror.Validation("time must be HH:MM")
	}

	svc, err := s.catalog.GetService(ctx, req.ServiceID)
	if err != nil {
		return nil, apperror.DependencyFailure("service catalog unavailable", err)
	}
	if svc == nil {
		return nil, apperror.NotFound("service not found")
	}

	draft := &models.OrderDraft{
		CustomerID:      customerID,
		ServiceID:       req.ServiceID,
		ServiceName:     svc.Name,
		ServiceCategory: svc.Category,
		Amount:          req.Amount,
		Currency:        s.currency,
		Date:            req.Date,
		Time:            req.Time,
		Location:        strings.TrimSpace(req.Location),
		Mobile:          strings.TrimSpace(req.Mobile),
		Email:           strings.TrimSpace(req.Email),
		FullName:        strings.TrimSpace(req.FullName),
		CreatedAt:       s.now(),
	}
	orderID, err := s.orders.Create(ctx, draft)
	if err != nil {
		return nil, apperror.DependencyFailure("order store unavailable", err)
	}
	draft.OrderID = orderID

	s.log.Info("order created", "orderId", orderID, "customerId", customerID, "serviceId", req.ServiceID, "amount", req.Amount)
	return draft, nil
}

// VerifyAndCreateBooking turns a signed payment into a booking exactly once.
// created is false when the payment had already been reconciled and the
// existing booking is returned. Only the customer who placed the order may
// verify or replay it.
func (s *Service) VerifyAndCreateBooking(ctx context.Context, customerID uint, orderID, paymentID, signature string) (b *models.Booking, created bool, err error) {
	if orderID == "" || paymentID == "" || signature == "" {
		return nil, false, apperror.Validation("orderId, paymentId and signature are required")
	}
	if !utils.VerifyPaymentSignature(orderID, paymentID, signature, s.secret) {
		s.log.Warn("payment signature mismatch", "orderId", orderID, "paymentId", paymentID)
		return nil, false, apperror.Unauthorized("invalid payment signature")
	}

	existing, err := s.store.FindByPaymentID(ctx, paymentID)
	if err == nil {
		if existing.CustomerID != customerID {
			return nil, false, apperror.Forbidden("payment belongs to another customer")
		}
		if existing.OrderID != orderID {
			return nil, false, apperror.Conflict("payment already applied to another order")
		}
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrBookingNotFound) {
		return nil, false, fmt.Errorf("lookup payment %s: %w", paymentID, err)
	}

	draft, err := s.orders.Fetch(ctx, orderID)
	if err != nil {
		return nil, false, apperror.DependencyFailure("order store unavailable", err)
	}
	if draft == nil {
		return nil, false, apperror.InvalidState("order not found or expired")
	}
	if draft.CustomerID != customerID {
		return nil, false, apperror.Forbidden("order belongs to another customer")
	}
	if !draft.Complete() {
		return nil, false, apperror.InvalidState("order details are incomplete")
	}

	now := s.now()
	booking := &models.Booking{
		ID:              uuid.NewString(),
		CustomerID:      draft.CustomerID,
		ServiceID:       draft.ServiceID,
		ServiceName:     draft.ServiceName,
		ServiceCategory: draft.ServiceCategory,
		Date:            draft.Date,
		Time:            draft.Time,
		Location:        draft.Location,
		ContactMobile:   draft.Mobile,
		ContactEmail:    draft.Email,
		ContactName:     draft.FullName,
		Amount:          draft.Amount,
		Currency:        draft.Currency,
		OrderID:         orderID,
		PaymentID:       paymentID,
		PaymentStatus:   models.PaymentStatusPaid,
		Status:          models.BookingStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if booking.Currency == "" {
		booking.Currency = s.currency
	}

	stored, created, err := s.store.CreateFromPayment(ctx, booking)
	if err != nil {
		return nil, false, err
	}
	if stored.CustomerID != customerID {
		return nil, false, apperror.Forbidden("payment belongs to another customer")
	}
	if created {
		s.log.Info("booking created from payment", "bookingId", stored.ID, "orderId", orderID, "paymentId", paymentID)
		s.emit(models.BookingEvent{Type: models.EventBookingCreated, Booking: *stored, ActorID: stored.CustomerID, At: now})
	}
	return stored, created, nil
}
