package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/bookhaven/library-app/internal/errs"
	"github.com/bookhaven/library-app/internal/model"
	"github.com/bookhaven/library-app/internal/repository"
)

// Actor identifies who is driving a reservation transition. Admins may act
// on any reservation; readers only on their own.
type Actor struct {
	UserID int
	Admin  bool
}

// Reservations is the single owner of the reservation state machine. Every
// caller (JSON API, web pages, admin back-office) goes through it, so the
// copy counter is only ever touched inside the repository transactions.
type Reservations struct {
	repo repository.Reservations
	log  *zap.Logger
}

func NewReservations(repo repository.Reservations, log *zap.Logger) *Reservations {
	return &Reservations{
		repo: repo,
		log:  log.Named("reservations"),
	}
}

func (s *Reservations) Create(ctx context.Context, bookID, userID int) (model.Reservation, error) {
	reservation, err := s.repo.CreateReservation(ctx, bookID, userID)
	if err != nil {
		return model.Reservation{}, err
	}
	s.log.Info("reservation created",
		zap.Int("reservation_id", reservation.ID),
		zap.Int("book_id", bookID),
		zap.Int("user_id", userID))
	return reservation, nil
}

func (s *Reservations) Cancel(ctx context.Context, id int, actor Actor) (model.Reservation, error) {
	return s.finish(ctx, id, model.StatusCancelled, actor)
}

func (s *Reservations) Complete(ctx context.Context, id int, actor Actor) (model.Reservation, error) {
	return s.finish(ctx, id, model.StatusCompleted, actor)
}

func (s *Reservations) finish(ctx context.Context, id int, status model.ReservationStatus, actor Actor) (model.Reservation, error) {
	reservation, err := s.repo.GetReservation(ctx, id)
	if err != nil {
		return model.Reservation{}, err
	}
	if !actor.Admin && reservation.UserID != actor.UserID {
		return model.Reservation{}, errs.ErrForbidden
	}
	finished, err := s.repo.FinishReservation(ctx, id, status)
	if err != nil {
		return model.Reservation{}, err
	}
	s.log.Info("reservation finished",
		zap.Int("reservation_id", id),
		zap.String("status", string(status)))
	return finished, nil
}

// SetStatus backs the admin edit form. Terminal targets run through the
// state machine; re-activating a finished reservation is rejected rather
// than silently re-applying counter changes.
func (s *Reservations) SetStatus(ctx context.Context, id int, status model.ReservationStatus, actor Actor) (model.Reservation, error) {
	if !status.Valid() {
		return model.Reservation{}, errs.ErrInvalidStatus
	}
	reservation, err := s.repo.GetReservation(ctx, id)
	if err != nil {
		return model.Reservation{}, err
	}
	if reservation.Status == status {
		return reservation, nil
	}
	if status == model.StatusActive {
		return model.Reservation{}, errs.ErrReservationFinished
	}
	return s.finish(ctx, id, status, actor)
}

func (s *Reservations) Get(ctx context.Context, id int) (model.Reservation, error) {
	return s.repo.GetReservation(ctx, id)
}

func (s *Reservations) ListForUser(ctx context.Context, userID int) ([]model.Reservation, error) {
	return s.repo.ListUserReservations(ctx, userID)
}

func (s *Reservations) List(ctx context.Context) ([]model.Reservation, error) {
	return s.repo.ListReservations(ctx)
}
