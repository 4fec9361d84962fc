package booking

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/chachabrian/homefix-backend/internal/apperror"
	"github.com/chachabrian/homefix-backend/internal/models"
)

const maxReviewLength = 2000

// SubmitRating records the customer's one-shot rating of a completed booking.
func (s *Service) SubmitRating(ctx context.Context, actor models.Actor, id string, rating int, review string) (*models.Booking, error) {
	b, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.CustomerID != actor.ID {
		return nil, apperror.Forbidden("only the customer can rate this booking")
	}
	if b.Status != models.BookingStatusCompleted {
		return nil, apperror.InvalidState("only completed bookings can be rated")
	}
	if b.Rating != nil {
		return nil, apperror.Conflict("booking already rated")
	}
	if rating < 1 || rating > 5 {
		return nil, apperror.Validation("rating must be between 1 and 5")
	}
	review = strings.TrimSpace(review)
	if utf8.RuneCountInString(review) > maxReviewLength {
		return nil, apperror.Validation(fmt.Sprintf("review must be at most %d characters", maxReviewLength))
	}

	now := s.now()
	applied, err := s.store.Rate(ctx, id, rating, review, now)
	if err != nil {
		return nil, fmt.Errorf("rate booking %s: %w", id, err)
	}
	if !applied {
		return nil, apperror.Conflict("booking already rated")
	}

	updated, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.emit(models.BookingEvent{Type: models.EventBookingRated, Booking: *updated, ActorID: actor.ID, At: now})
	return updated, nil
}
