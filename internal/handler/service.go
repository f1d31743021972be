package handler

import (
	"context"

	"github.com/bookhaven/library-app/internal/model"
	"github.com/bookhaven/library-app/internal/service"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type CatalogService interface {
	ListBooks(ctx context.Context, page, perPage int) (model.BookList, error)
	GetBook(ctx context.Context, id int) (model.Book, error)
	CreateBook(ctx context.Context, req model.CreateBookRequest) (model.Book, error)
	UpdateBook(ctx context.Context, id int, req model.UpdateBookRequest) (model.Book, error)
	DeleteBook(ctx context.Context, id int) error
	SearchBooks(ctx context.Context, query string) (model.SearchResult, error)
	SetBookAvailability(ctx context.Context, id, available int) error

	ListAuthors(ctx context.Context) ([]model.Author, error)
	GetAuthor(ctx context.Context, id int) (model.Author, error)
	CreateAuthor(ctx context.Context, req model.CreateAuthorRequest) (model.Author, error)
	UpdateAuthor(ctx context.Context, id int, req model.UpdateAuthorRequest) (model.Author, error)
	DeleteAuthor(ctx context.Context, id int) error

	ListGenres(ctx context.Context) ([]model.Genre, error)
	GetGenre(ctx context.Context, id int) (model.Genre, error)
	CreateGenre(ctx context.Context, req model.CreateGenreRequest) (model.Genre, error)
	UpdateGenre(ctx context.Context, id int, req model.UpdateGenreRequest) (model.Genre, error)
	DeleteGenre(ctx context.Context, id int) error

	Counts(ctx context.Context) (model.Counts, error)
}

type UserService interface {
	Register(ctx context.Context, req model.RegisterRequest) (model.User, error)
	Login(ctx context.Context, email, password string) (model.User, error)
	LookupByEmail(ctx context.Context, email string) (model.User, error)
	Get(ctx context.Context, id int) (model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, id int, role model.Role, membership string) (model.User, error)
}

type ReservationService interface {
	Create(ctx context.Context, bookID, userID int) (model.Reservation, error)
	Cancel(ctx context.Context, id int, actor service.Actor) (model.Reservation, error)
	Complete(ctx context.Context, id int, actor service.Actor) (model.Reservation, error)
	SetStatus(ctx context.Context, id int, status model.ReservationStatus, actor service.Actor) (model.Reservation, error)
	Get(ctx context.Context, id int) (model.Reservation, error)
	ListForUser(ctx context.Context, userID int) ([]model.Reservation, error)
	List(ctx context.Context) ([]model.Reservation, error)
}

var _ CatalogService = (*service.Catalog)(nil)
var _ UserService = (*service.Users)(nil)
var _ ReservationService = (*service.Reservations)(nil)
