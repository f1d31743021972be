package repository

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/bookhaven/library-app/internal/errs"
	"github.com/bookhaven/library-app/internal/model"
)

var reservationColumns = []string{
	"id", "book_id", "user_id", "reservation_date", "expiry_date",
	"return_date", "status", "created_at",
}

// CreateReservation claims a copy and inserts the reservation in one
// transaction. The conditional decrement is the guard against concurrent
// double-booking: zero affected rows means no copy was left (or the book
// does not exist), and the transaction never inserts.
func (r *repository) CreateReservation(ctx context.Context, bookID, userID int) (model.Reservation, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.Reservation{}, err
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx, `
update books
    set available_copies = available_copies - 1
where id = $1 and available_copies > 0`, bookID)
	if err != nil {
		return model.Reservation{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`select exists(select 1 from books where id = $1)`, bookID).Scan(&exists); err != nil {
			return model.Reservation{}, err
		}
		if !exists {
			return model.Reservation{}, errs.ErrNotFound
		}
		return model.Reservation{}, errs.ErrBookUnavailable
	}

	query, args, err := qb.Insert(reservationsTableName).
		Columns("book_id", "user_id").
		Values(bookID, userID).
		Suffix("returning " + joinColumns(reservationColumns)).
		ToSql()
	if err != nil {
		return model.Reservation{}, err
	}
	var reservation model.Reservation
	if err := tx.GetContext(ctx, &reservation, query, args...); err != nil {
		// the partial unique index rejects a second active claim
		if isUniqueViolation(err) {
			return model.Reservation{}, errs.ErrDuplicateReservation
		}
		r.log.Error("CreateReservation", zap.String("q", query), zap.Error(err))
		return model.Reservation{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Reservation{}, err
	}
	return reservation, nil
}

// FinishReservation moves an active reservation to a terminal status and
// returns the copy to the pool, all in one transaction. Non-active rows are
// rejected so the counter can never be incremented twice.
func (r *repository) FinishReservation(ctx context.Context, id int, status model.ReservationStatus) (model.Reservation, error) {
	if !status.Terminal() {
		return model.Reservation{}, errors.Errorf("not a terminal status: %s", status)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.Reservation{}, err
	}
	defer tx.Rollback() //nolint:errcheck

	var reservation model.Reservation
	err = tx.GetContext(ctx, &reservation, `
update book_reservations
    set status = $2,
        return_date = case when $2 = 'completed' then now() else return_date end
where id = $1 and status = 'active'
returning `+joinColumns(reservationColumns), id, status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			var exists bool
			if err := tx.QueryRowContext(ctx,
				`select exists(select 1 from book_reservations where id = $1)`, id).Scan(&exists); err != nil {
				return model.Reservation{}, err
			}
			if !exists {
				return model.Reservation{}, errs.ErrNotFound
			}
			return model.Reservation{}, errs.ErrReservationFinished
		}
		return model.Reservation{}, err
	}

	if _, err := tx.ExecContext(ctx, `
update books
    set available_copies = least(available_copies + 1, total_copies)
where id = $1`, reservation.BookID); err != nil {
		return model.Reservation{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Reservation{}, err
	}
	return reservation, nil
}

func (r *repository) GetReservation(ctx context.Context, id int) (model.Reservation, error) {
	query, args, err := qb.Select(reservationColumns...).
		From(reservationsTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return model.Reservation{}, err
	}
	var reservation model.Reservation
	if err := r.db.GetContext(ctx, &reservation, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Reservation{}, errs.ErrNotFound
		}
		return model.Reservation{}, err
	}
	reservations := []model.Reservation{reservation}
	if err := r.attachReservationRelations(ctx, reservations); err != nil {
		return model.Reservation{}, err
	}
	return reservations[0], nil
}

func (r *repository) ListUserReservations(ctx context.Context, userID int) ([]model.Reservation, error) {
	return r.listReservations(ctx, sq.Eq{"user_id": userID})
}

func (r *repository) ListReservations(ctx context.Context) ([]model.Reservation, error) {
	return r.listReservations(ctx, nil)
}

func (r *repository) listReservations(ctx context.Context, where sq.Eq) ([]model.Reservation, error) {
	q := qb.Select(reservationColumns...).
		From(reservationsTableName).
		OrderBy("created_at desc")
	if where != nil {
		q = q.Where(where)
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	reservations := []model.Reservation{}
	if err := r.db.SelectContext(ctx, &reservations, query, args...); err != nil {
		return nil, err
	}
	if err := r.attachReservationRelations(ctx, reservations); err != nil {
		return nil, err
	}
	return reservations, nil
}

func (r *repository) attachReservationRelations(ctx context.Context, reservations []model.Reservation) error {
	for i := range reservations {
		book, err := r.GetBook(ctx, reservations[i].BookID)
		if err != nil && !errors.Is(err, errs.ErrNotFound) {
			return err
		}
		if err == nil {
			reservations[i].Book = &book
		}
		user, err := r.GetUser(ctx, reservations[i].UserID)
		if err != nil && !errors.Is(err, errs.ErrNotFound) {
			return err
		}
		if err == nil {
			reservations[i].User = &user
		}
	}
	return nil
}
