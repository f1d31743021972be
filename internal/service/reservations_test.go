package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bookhaven/library-app/internal/errs"
	"github.com/bookhaven/library-app/internal/model"
	"github.com/bookhaven/library-app/internal/service"
)

// fakeRepo mirrors the repository contract in memory: conditional decrement
// on create, one active reservation per (book, user), terminal-only finish.
type fakeRepo struct {
	books        map[int]*model.Book
	reservations map[int]*model.Reservation
	nextID       int
}

func newFakeRepo(books ...model.Book) *fakeRepo {
	f := &fakeRepo{
		books:        map[int]*model.Book{},
		reservations: map[int]*model.Reservation{},
	}
	for i := range books {
		b := books[i]
		f.books[b.ID] = &b
	}
	return f
}

func (f *fakeRepo) CreateReservation(_ context.Context, bookID, userID int) (model.Reservation, error) {
	book, ok := f.books[bookID]
	if !ok {
		return model.Reservation{}, errs.ErrNotFound
	}
	if book.AvailableCopies <= 0 {
		return model.Reservation{}, errs.ErrBookUnavailable
	}
	for _, r := range f.reservations {
		if r.BookID == bookID && r.UserID == userID && r.Status == model.StatusActive {
			return model.Reservation{}, errs.ErrDuplicateReservation
		}
	}
	book.AvailableCopies--
	f.nextID++
	now := time.Now()
	r := &model.Reservation{
		ID:              f.nextID,
		BookID:          bookID,
		UserID:          userID,
		ReservationDate: now,
		ExpiryDate:      now.Add(14 * 24 * time.Hour),
		Status:          model.StatusActive,
	}
	f.reservations[r.ID] = r
	return *r, nil
}

func (f *fakeRepo) FinishReservation(_ context.Context, id int, status model.ReservationStatus) (model.Reservation, error) {
	r, ok := f.reservations[id]
	if !ok {
		return model.Reservation{}, errs.ErrNotFound
	}
	if r.Status != model.StatusActive {
		return model.Reservation{}, errs.ErrReservationFinished
	}
	r.Status = status
	if status == model.StatusCompleted {
		now := time.Now()
		r.ReturnDate = &now
	}
	if book, ok := f.books[r.BookID]; ok && book.AvailableCopies < book.TotalCopies {
		book.AvailableCopies++
	}
	return *r, nil
}

func (f *fakeRepo) GetReservation(_ context.Context, id int) (model.Reservation, error) {
	r, ok := f.reservations[id]
	if !ok {
		return model.Reservation{}, errs.ErrNotFound
	}
	return *r, nil
}

func (f *fakeRepo) ListUserReservations(_ context.Context, userID int) ([]model.Reservation, error) {
	var out []model.Reservation
	for _, r := range f.reservations {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListReservations(_ context.Context) ([]model.Reservation, error) {
	var out []model.Reservation
	for _, r := range f.reservations {
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeRepo) CountReservations(_ context.Context) (int, error) {
	return len(f.reservations), nil
}

func newSvc(repo *fakeRepo) *service.Reservations {
	return service.NewReservations(repo, zap.NewNop())
}

func TestReservations_CreateDecrementsCounter(t *testing.T) {
	repo := newFakeRepo(model.Book{ID: 1, TotalCopies: 3, AvailableCopies: 3})
	svc := newSvc(repo)

	r, err := svc.Create(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Equal(t, model.StatusActive, r.Status)
	require.Equal(t, 2, repo.books[1].AvailableCopies)
	require.WithinDuration(t, r.ReservationDate.Add(14*24*time.Hour), r.ExpiryDate, time.Second)
}

func TestReservations_CreateUnavailable(t *testing.T) {
	repo := newFakeRepo(model.Book{ID: 1, TotalCopies: 1, AvailableCopies: 0})
	svc := newSvc(repo)

	_, err := svc.Create(context.Background(), 1, 10)
	require.ErrorIs(t, err, errs.ErrBookUnavailable)
	// the counter must not move on a failed create
	require.Equal(t, 0, repo.books[1].AvailableCopies)

	_, err = svc.Create(context.Background(), 99, 10)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestReservations_DuplicateActive(t *testing.T) {
	repo := newFakeRepo(model.Book{ID: 1, TotalCopies: 5, AvailableCopies: 5})
	svc := newSvc(repo)

	_, err := svc.Create(context.Background(), 1, 10)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), 1, 10)
	require.ErrorIs(t, err, errs.ErrDuplicateReservation)
	require.Equal(t, 4, repo.books[1].AvailableCopies)
}

func TestReservations_CancelOnlyOnce(t *testing.T) {
	repo := newFakeRepo(model.Book{ID: 1, TotalCopies: 2, AvailableCopies: 2})
	svc := newSvc(repo)
	owner := service.Actor{UserID: 10}

	r, err := svc.Create(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Equal(t, 1, repo.books[1].AvailableCopies)

	cancelled, err := svc.Cancel(context.Background(), r.ID, owner)
	require.NoError(t, err)
	require.Equal(t, model.StatusCancelled, cancelled.Status)
	require.Equal(t, 2, repo.books[1].AvailableCopies)

	// a second cancel must be rejected, not re-increment
	_, err = svc.Cancel(context.Background(), r.ID, owner)
	require.ErrorIs(t, err, errs.ErrReservationFinished)
	require.Equal(t, 2, repo.books[1].AvailableCopies)
}

func TestReservations_CompleteSetsReturnDate(t *testing.T) {
	repo := newFakeRepo(model.Book{ID: 1, TotalCopies: 1, AvailableCopies: 1})
	svc := newSvc(repo)
	owner := service.Actor{UserID: 10}

	r, err := svc.Create(context.Background(), 1, 10)
	require.NoError(t, err)

	done, err := svc.Complete(context.Background(), r.ID, owner)
	require.NoError(t, err)
	require.Equal(t, model.StatusCompleted, done.Status)
	require.NotNil(t, done.ReturnDate)

	_, err = svc.Complete(context.Background(), r.ID, owner)
	require.ErrorIs(t, err, errs.ErrReservationFinished)
}

func TestReservations_OwnershipEnforced(t *testing.T) {
	repo := newFakeRepo(model.Book{ID: 1, TotalCopies: 2, AvailableCopies: 2})
	svc := newSvc(repo)

	r, err := svc.Create(context.Background(), 1, 10)
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), r.ID, service.Actor{UserID: 11})
	require.ErrorIs(t, err, errs.ErrForbidden)
	require.Equal(t, 1, repo.books[1].AvailableCopies)

	// admins may act on any reservation
	_, err = svc.Cancel(context.Background(), r.ID, service.Actor{UserID: 11, Admin: true})
	require.NoError(t, err)
}

func TestReservations_SetStatus(t *testing.T) {
	repo := newFakeRepo(model.Book{ID: 1, TotalCopies: 1, AvailableCopies: 1})
	svc := newSvc(repo)
	admin := service.Actor{UserID: 1, Admin: true}

	r, err := svc.Create(context.Background(), 1, 10)
	require.NoError(t, err)

	// a malformed status is rejected before the state machine runs
	_, err = svc.SetStatus(context.Background(), r.ID, model.ReservationStatus("returned"), admin)
	require.ErrorIs(t, err, errs.ErrInvalidStatus)
	require.Equal(t, 0, repo.books[1].AvailableCopies)

	// same status is a no-op, no counter change
	same, err := svc.SetStatus(context.Background(), r.ID, model.StatusActive, admin)
	require.NoError(t, err)
	require.Equal(t, model.StatusActive, same.Status)
	require.Equal(t, 0, repo.books[1].AvailableCopies)

	done, err := svc.SetStatus(context.Background(), r.ID, model.StatusCompleted, admin)
	require.NoError(t, err)
	require.Equal(t, model.StatusCompleted, done.Status)
	require.Equal(t, 1, repo.books[1].AvailableCopies)

	// a finished reservation cannot be re-activated
	_, err = svc.SetStatus(context.Background(), r.ID, model.StatusActive, admin)
	require.ErrorIs(t, err, errs.ErrReservationFinished)
}

func TestReservations_FullScenario(t *testing.T) {
	repo := newFakeRepo(model.Book{ID: 1, TotalCopies: 2, AvailableCopies: 2})
	svc := newSvc(repo)
	ctx := context.Background()

	first, err := svc.Create(ctx, 1, 10)
	require.NoError(t, err)
	second, err := svc.Create(ctx, 1, 11)
	require.NoError(t, err)
	require.Equal(t, 0, repo.books[1].AvailableCopies)

	_, err = svc.Create(ctx, 1, 12)
	require.ErrorIs(t, err, errs.ErrBookUnavailable)

	_, err = svc.Cancel(ctx, first.ID, service.Actor{UserID: 10})
	require.NoError(t, err)
	require.Equal(t, 1, repo.books[1].AvailableCopies)

	_, err = svc.Complete(ctx, second.ID, service.Actor{UserID: 11})
	require.NoError(t, err)
	require.Equal(t, 2, repo.books[1].AvailableCopies)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	for _, r := range all {
		require.True(t, r.Status.Terminal())
	}
	require.LessOrEqual(t, repo.books[1].AvailableCopies, repo.books[1].TotalCopies)
}
