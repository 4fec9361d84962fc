package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/chachabrian/homefix-backend/internal/apperror"
	"github.com/chachabrian/homefix-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimAssignsWorker(t *testing.T) {
	f := newFixture(t)
	b := f.seed(t, time.Hour, nil)

	got, err := f.svc.UpdateStatus(context.Background(), workerA, b.ID, models.BookingStatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, got.Status)
	require.NotNil(t, got.WorkerID)
	assert.Equal(t, workerA.ID, *got.WorkerID)
	require.NotNil(t, got.AcceptedAt)
	assert.True(t, got.AcceptedAt.Equal(f.now))
	assert.Equal(t, []models.BookingEventType{models.EventBookingConfirmed}, f.events.types())
}

func TestStartDirectlyFromPending(t *testing.T) {
	f := newFixture(t)
	b := f.seed(t, time.Hour, nil)

	got, err := f.svc.UpdateStatus(context.Background(), workerA, b.ID, models.BookingStatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusInProgress, got.Status)
	require.NotNil(t, got.WorkerID)
	assert.Equal(t, workerA.ID, *got.WorkerID)
	assert.Nil(t, got.AcceptedAt)
	assert.NotNil(t, got.StartedAt)
}

func TestFullLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.seed(t, time.Hour, nil)

	_, err := f.svc.UpdateStatus(ctx, workerA, b.ID, models.BookingStatusConfirmed)
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(ctx, workerA, b.ID, models.BookingStatusInProgress)
	require.NoError(t, err)
	got, err := f.svc.UpdateStatus(ctx, workerA, b.ID, models.BookingStatusCompleted)
	require.NoError(t, err)

	assert.Equal(t, models.BookingStatusCompleted, got.Status)
	require.NotNil(t, got.CompletedAt)
	assert.NotNil(t, got.WorkerID)
	assert.Equal(t, []models.BookingEventType{
		models.EventBookingConfirmed, models.EventBookingStarted, models.EventBookingCompleted,
	}, f.events.types())
}

func TestPendingExpiry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	fresh := f.seed(t, 23*time.Hour, nil)
	_, err := f.svc.UpdateStatus(ctx, workerA, fresh.ID, models.BookingStatusConfirmed)
	assert.NoError(t, err)

	stale := f.seed(t, 25*time.Hour, nil)
	for _, tc := range []struct {
		actor  models.Actor
		target models.BookingStatus
	}{
		{workerA, models.BookingStatusConfirmed},
		{workerA, models.BookingStatusInProgress},
		{workerA, models.BookingStatusCompleted},
		{customer, models.BookingStatusCancelled},
	} {
		_, err := f.svc.UpdateStatus(ctx, tc.actor, stale.ID, tc.target)
		assert.Equal(t, apperror.KindExpired, apperror.KindOf(err), tc.target)
	}

	stored, err := f.repo.FindByID(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusPending, stored.Status)
	assert.Nil(t, stored.WorkerID)
}

func TestClaimedByAnotherWorker(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.seed(t, time.Hour, assigned(workerA, models.BookingStatusConfirmed))

	_, err := f.svc.UpdateStatus(ctx, workerB, b.ID, models.BookingStatusConfirmed)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))

	_, err = f.svc.UpdateStatus(ctx, workerB, b.ID, models.BookingStatusInProgress)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))

	stored, err := f.repo.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, workerA.ID, *stored.WorkerID)
	assert.Equal(t, models.BookingStatusConfirmed, stored.Status)
}

func TestClaimOwnBookingAgainIsInvalidState(t *testing.T) {
	f := newFixture(t)
	b := f.seed(t, time.Hour, assigned(workerA, models.BookingStatusConfirmed))

	_, err := f.svc.UpdateStatus(context.Background(), workerA, b.ID, models.BookingStatusConfirmed)
	assert.Equal(t, apperror.KindInvalidState, apperror.KindOf(err))
	assert.Equal(t, "booking is already assigned to you", err.Error())
	assert.Empty(t, f.events.types())
}

func TestFinishByOtherWorkerConflicts(t *testing.T) {
	f := newFixture(t)
	b := f.seed(t, time.Hour, assigned(workerA, models.BookingStatusInProgress))

	_, err := f.svc.UpdateStatus(context.Background(), workerB, b.ID, models.BookingStatusCompleted)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
}

func TestInvalidTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pending := f.seed(t, time.Hour, nil)
	_, err := f.svc.UpdateStatus(ctx, workerA, pending.ID, models.BookingStatusCompleted)
	assert.Equal(t, apperror.KindInvalidState, apperror.KindOf(err))

	_, err = f.svc.UpdateStatus(ctx, workerA, pending.ID, models.BookingStatusPending)
	assert.Equal(t, apperror.KindInvalidState, apperror.KindOf(err))

	_, err = f.svc.UpdateStatus(ctx, workerA, pending.ID, models.BookingStatus("archived"))
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	done := f.seed(t, time.Hour, assigned(workerA, models.BookingStatusCompleted))
	for _, target := range []models.BookingStatus{
		models.BookingStatusConfirmed, models.BookingStatusInProgress, models.BookingStatusCompleted,
	} {
		_, err := f.svc.UpdateStatus(ctx, workerA, done.ID, target)
		assert.Equal(t, apperror.KindInvalidState, apperror.KindOf(err), target)
	}
	_, err = f.svc.UpdateStatus(ctx, admin, done.ID, models.BookingStatusCancelled)
	assert.Equal(t, apperror.KindInvalidState, apperror.KindOf(err))

	cancelled := f.seed(t, time.Hour, func(b *models.Booking) { b.Status = models.BookingStatusCancelled })
	_, err = f.svc.UpdateStatus(ctx, workerA, cancelled.ID, models.BookingStatusConfirmed)
	assert.Equal(t, apperror.KindInvalidState, apperror.KindOf(err))

	_, err = f.svc.UpdateStatus(ctx, workerA, "missing", models.BookingStatusConfirmed)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestOnlyWorkersProgressBookings(t *testing.T) {
	f := newFixture(t)
	b := f.seed(t, time.Hour, nil)

	_, err := f.svc.UpdateStatus(context.Background(), customer, b.ID, models.BookingStatusConfirmed)
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))
}

func TestCancelClearsWorker(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.seed(t, time.Hour, assigned(workerA, models.BookingStatusConfirmed))

	got, err := f.svc.UpdateStatus(ctx, customer, b.ID, models.BookingStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, got.Status)
	assert.Nil(t, got.WorkerID)
	require.NotNil(t, got.CancelledBy)
	assert.Equal(t, customer.ID, *got.CancelledBy)
	assert.NotNil(t, got.CancelledAt)
	require.NotNil(t, got.CancelledWorkerID)
	assert.Equal(t, workerA.ID, *got.CancelledWorkerID)

	require.Len(t, f.events.events, 1)
	e := f.events.events[0]
	assert.Equal(t, models.EventBookingCancelled, e.Type)
	require.NotNil(t, e.PreviousWorkerID)
	assert.Equal(t, workerA.ID, *e.PreviousWorkerID)
	assert.Equal(t, []uint{customer.ID, workerA.ID}, e.Recipients())
}

func TestCancelPermissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b := f.seed(t, time.Hour, assigned(workerA, models.BookingStatusInProgress))
	stranger := models.Actor{ID: 999, Role: models.RoleCustomer}
	_, err := f.svc.UpdateStatus(ctx, stranger, b.ID, models.BookingStatusCancelled)
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))
	_, err = f.svc.UpdateStatus(ctx, workerB, b.ID, models.BookingStatusCancelled)
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))

	_, err = f.svc.UpdateStatus(ctx, workerA, b.ID, models.BookingStatusCancelled)
	assert.NoError(t, err)

	other := f.seed(t, time.Hour, nil)
	_, err = f.svc.UpdateStatus(ctx, admin, other.ID, models.BookingStatusCancelled)
	assert.NoError(t, err)
}

func TestConcurrentClaimsExactlyOneWins(t *testing.T) {
	f := newFixture(t)
	b := f.seed(t, time.Hour, nil)

	const n = 10
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w := models.Actor{ID: uint(300 + i), Role: models.RoleWorker}
			_, errs[i] = f.svc.UpdateStatus(context.Background(), w, b.ID, models.BookingStatusConfirmed)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
	}
	assert.Equal(t, 1, wins)

	stored, err := f.repo.FindByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, stored.Status)
	require.NotNil(t, stored.WorkerID)
}

func TestWorkerAssignmentInvariant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.seed(t, time.Hour, nil)

	check := func() {
		stored, err := f.repo.FindByID(ctx, b.ID)
		require.NoError(t, err)
		switch stored.Status {
		case models.BookingStatusConfirmed, models.BookingStatusInProgress, models.BookingStatusCompleted:
			assert.NotNil(t, stored.WorkerID, stored.Status)
		default:
			assert.Nil(t, stored.WorkerID, stored.Status)
		}
		assert.Equal(t, stored.Status == models.BookingStatusCompleted, stored.CompletedAt != nil)
	}

	check()
	_, err := f.svc.UpdateStatus(ctx, workerA, b.ID, models.BookingStatusConfirmed)
	require.NoError(t, err)
	check()
	_, err = f.svc.UpdateStatus(ctx, workerA, b.ID, models.BookingStatusInProgress)
	require.NoError(t, err)
	check()
	_, err = f.svc.UpdateStatus(ctx, customer, b.ID, models.BookingStatusCancelled)
	require.NoError(t, err)
	check()
}

func TestListForWorker(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	open := f.seed(t, time.Hour, nil)
	f.seed(t, 30*time.Hour, nil)
	mine := f.seed(t, time.Hour, assigned(workerA, models.BookingStatusConfirmed))
	f.seed(t, time.Hour, assigned(workerB, models.BookingStatusConfirmed))

	queue, err := f.svc.ListForWorker(ctx, workerA.ID, models.BookingStatusPending)
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, open.ID, queue[0].ID)

	own, err := f.svc.ListForWorker(ctx, workerA.ID, models.BookingStatusConfirmed)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, mine.ID, own[0].ID)

	_, err = f.svc.ListForWorker(ctx, workerA.ID, models.BookingStatusCancelled)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestGetVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.seed(t, time.Hour, assigned(workerA, models.BookingStatusConfirmed))

	_, err := f.svc.Get(ctx, customer, b.ID)
	assert.NoError(t, err)
	_, err = f.svc.Get(ctx, workerA, b.ID)
	assert.NoError(t, err)
	_, err = f.svc.Get(ctx, admin, b.ID)
	assert.NoError(t, err)
	_, err = f.svc.Get(ctx, workerB, b.ID)
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))
	_, err = f.svc.Get(ctx, models.Actor{ID: 5, Role: models.RoleCustomer}, b.ID)
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))
}
