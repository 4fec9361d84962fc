package booking

import (
	"context"
	"fmt"

	"github.com/chachabrian/homefix-backend/internal/apperror"
	"github.com/chachabrian/homefix-backend/internal/models"
	"github.com/chachabrian/homefix-backend/internal/repository"
)

// UpdateStatus moves a booking to target on behalf of actor. Every write is
// a conditional update against the state that was read, so concurrent
// actors cannot overwrite each other.
func (s *Service) UpdateStatus(ctx context.Context, actor models.Actor, id string, target models.BookingStatus) (*models.Booking, error) {
	if !target.Valid() {
		return nil, apperror.Validation(fmt.Sprintf("invalid status %q", target))
	}
	act, ok := actionFor(target)
	if !ok {
		return nil, apperror.InvalidState("a booking cannot be moved back to pending")
	}
	if act != actionCancel && actor.Role != models.RoleWorker {
		return nil, apperror.Forbidden("only workers can " + string(act) + " bookings")
	}

	b, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if act == actionCancel && !canCancel(b, actor) {
		return nil, apperror.Forbidden("not allowed to cancel this booking")
	}

	now := s.now()
	if s.expired(b, now) {
		return nil, apperror.Expired("booking request has expired")
	}

	to, ok := next(b.Status, act)
	if !ok {
		if act == actionClaim && b.WorkerID != nil && !b.Status.Terminal() {
			if b.IsAssignedTo(actor.ID) {
				return nil, apperror.InvalidState("booking is already assigned to you")
			}
			return nil, apperror.Conflict("booking already claimed by another worker")
		}
		return nil, apperror.InvalidState(fmt.Sprintf("cannot %s a %s booking", act, b.Status))
	}
	if (act == actionStart || act == actionFinish) && b.Status != models.BookingStatusPending && !b.IsAssignedTo(actor.ID) {
		return nil, apperror.Conflict("booking is assigned to another worker")
	}

	guard := repository.Guard{Status: b.Status, WorkerID: b.WorkerID}
	if b.Status == models.BookingStatusPending {
		cutoff := now.Add(-s.expiry)
		guard.CreatedAfter = &cutoff
	}

	updates := map[string]interface{}{"status": to}
	switch act {
	case actionClaim:
		updates["worker_id"] = actor.ID
		updates["accepted_at"] = now
	case actionStart:
		if b.Status == models.BookingStatusPending {
			updates["worker_id"] = actor.ID
		}
		updates["started_at"] = now
	case actionFinish:
		updates["completed_at"] = now
	case actionCancel:
		updates["worker_id"] = nil
		updates["cancelled_at"] = now
		updates["cancelled_by"] = actor.ID
		if b.WorkerID != nil {
			updates["cancelled_worker_id"] = *b.WorkerID
		}
	}

	applied, err := s.store.UpdateIf(ctx, id, guard, updates)
	if err != nil {
		return nil, fmt.Errorf("update booking %s: %w", id, err)
	}
	if !applied {
		return nil, s.lostRace(ctx, id, act)
	}

	updated, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.log.Info("booking status changed",
		"bookingId", id, "from", b.Status, "to", to, "actorId", actor.ID, "role", actor.Role)
	s.emit(models.BookingEvent{
		Type:             eventFor(to),
		Booking:          *updated,
		ActorID:          actor.ID,
		At:               now,
		PreviousWorkerID: b.WorkerID,
	})
	return updated, nil
}

// lostRace explains why a conditional update matched no row.
func (s *Service) lostRace(ctx context.Context, id string, act action) error {
	current, err := s.store.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if s.expired(current, s.now()) {
		return apperror.Expired("booking request has expired")
	}
	if (act == actionClaim || act == actionStart) && current.WorkerID != nil {
		return apperror.Conflict("booking already claimed by another worker")
	}
	return apperror.Conflict("booking was modified concurrently")
}

func canCancel(b *models.Booking, actor models.Actor) bool {
	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleCustomer:
		return b.CustomerID == actor.ID
	case models.RoleWorker:
		return b.IsAssignedTo(actor.ID)
	}
	return false
}

// Get returns a booking visible to actor: its customer, its worker, an
// admin, or any worker while the booking is still open.
func (s *Service) Get(ctx context.Context, actor models.Actor, id string) (*models.Booking, error) {
	b, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(b, actor) {
		return nil, apperror.Forbidden("not allowed to view this booking")
	}
	return b, nil
}

func canView(b *models.Booking, actor models.Actor) bool {
	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleCustomer:
		return b.CustomerID == actor.ID
	case models.RoleWorker:
		return b.IsAssignedTo(actor.ID) || (b.Status == models.BookingStatusPending && b.WorkerID == nil)
	}
	return false
}

func (s *Service) ListForCustomer(ctx context.Context, customerID uint) ([]models.Booking, error) {
	bookings, err := s.store.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("list customer bookings: %w", err)
	}
	return bookings, nil
}

// ListForWorker returns the open queue for status pending, otherwise the
// worker's own bookings in that status. An empty status lists all of them.
func (s *Service) ListForWorker(ctx context.Context, workerID uint, status models.BookingStatus) ([]models.Booking, error) {
	var (
		bookings []models.Booking
		err      error
	)
	switch status {
	case models.BookingStatusPending:
		bookings, err = s.store.ListOpen(ctx, s.now().Add(-s.expiry))
	case "", models.BookingStatusConfirmed, models.BookingStatusInProgress, models.BookingStatusCompleted:
		bookings, err = s.store.ListByWorker(ctx, workerID, status)
	default:
		return nil, apperror.Validation(fmt.Sprintf("invalid status filter %q", status))
	}
	if err != nil {
		return nil, fmt.Errorf("list worker bookings: %w", err)
	}
	return bookings, nil
}
