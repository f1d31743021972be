package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/bookhaven/library-app/internal/model"
)

type Books interface {
	ListBooks(ctx context.Context, page, perPage int) (model.BookList, error)
	GetBook(ctx context.Context, id int) (model.Book, error)
	CreateBook(ctx context.Context, req model.CreateBookRequest) (model.Book, error)
	UpdateBook(ctx context.Context, id int, req model.UpdateBookRequest) (model.Book, error)
	DeleteBook(ctx context.Context, id int) error
	SearchBooks(ctx context.Context, query string) (model.SearchResult, error)
	SetBookAvailability(ctx context.Context, id, available int) error
	CountBooks(ctx context.Context) (int, error)
}

type Directory interface {
	ListAuthors(ctx context.Context) ([]model.Author, error)
	GetAuthor(ctx context.Context, id int) (model.Author, error)
	CreateAuthor(ctx context.Context, req model.CreateAuthorRequest) (model.Author, error)
	UpdateAuthor(ctx context.Context, id int, req model.UpdateAuthorRequest) (model.Author, error)
	DeleteAuthor(ctx context.Context, id int) error
	CountAuthors(ctx context.Context) (int, error)

	ListGenres(ctx context.Context) ([]model.Genre, error)
	GetGenre(ctx context.Context, id int) (model.Genre, error)
	CreateGenre(ctx context.Context, req model.CreateGenreRequest) (model.Genre, error)
	UpdateGenre(ctx context.Context, id int, req model.UpdateGenreRequest) (model.Genre, error)
	DeleteGenre(ctx context.Context, id int) error
	CountGenres(ctx context.Context) (int, error)
}

type Users interface {
	ListUsers(ctx context.Context) ([]model.User, error)
	GetUser(ctx context.Context, id int) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	CreateUser(ctx context.Context, user model.User) (model.User, error)
	UpdateUser(ctx context.Context, id int, role model.Role, membership string) (model.User, error)
	CountUsers(ctx context.Context) (int, error)
}

type Reservations interface {
	CreateReservation(ctx context.Context, bookID, userID int) (model.Reservation, error)
	GetReservation(ctx context.Context, id int) (model.Reservation, error)
	ListUserReservations(ctx context.Context, userID int) ([]model.Reservation, error)
	ListReservations(ctx context.Context) ([]model.Reservation, error)
	FinishReservation(ctx context.Context, id int, status model.ReservationStatus) (model.Reservation, error)
	CountReservations(ctx context.Context) (int, error)
}

type Repository interface {
	Books
	Directory
	Users
	Reservations
}

type repository struct {
	db  *sqlx.DB
	log *zap.Logger
}

func NewRepository(db *sqlx.DB, log *zap.Logger) (*repository, error) {
	return &repository{
		db:  db,
		log: log.Named("repo"),
	}, nil
}

const (
	usersTableName        = `users`
	booksTableName        = `books`
	authorsTableName      = `authors`
	genresTableName       = `genres`
	bookAuthorsTableName  = `book_authors`
	bookGenresTableName   = `book_genres`
	reservationsTableName = `book_reservations`
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

func (r *repository) count(ctx context.Context, table string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `select count(*) from `+table).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *repository) CountBooks(ctx context.Context) (int, error) {
	return r.count(ctx, booksTableName)
}

func (r *repository) CountAuthors(ctx context.Context) (int, error) {
	return r.count(ctx, authorsTableName)
}

func (r *repository) CountGenres(ctx context.Context) (int, error) {
	return r.count(ctx, genresTableName)
}

func (r *repository) CountUsers(ctx context.Context) (int, error) {
	return r.count(ctx, usersTableName)
}

func (r *repository) CountReservations(ctx context.Context) (int, error) {
	return r.count(ctx, reservationsTableName)
}
