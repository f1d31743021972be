package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bookhaven/library-app/internal/errs"
	"github.com/bookhaven/library-app/internal/model"
	"github.com/bookhaven/library-app/internal/repository"
)

// Catalog covers books, authors and genres, plus the admin dashboard counts.
type Catalog struct {
	repo repository.Repository
	log  *zap.Logger
}

func NewCatalog(repo repository.Repository, log *zap.Logger) *Catalog {
	return &Catalog{
		repo: repo,
		log:  log.Named("catalog"),
	}
}

func (s *Catalog) ListBooks(ctx context.Context, page, perPage int) (model.BookList, error) {
	return s.repo.ListBooks(ctx, page, perPage)
}

func (s *Catalog) GetBook(ctx context.Context, id int) (model.Book, error) {
	return s.repo.GetBook(ctx, id)
}

func (s *Catalog) CreateBook(ctx context.Context, req model.CreateBookRequest) (model.Book, error) {
	if err := validateMetadata(req.Metadata); err != nil {
		return model.Book{}, err
	}
	return s.repo.CreateBook(ctx, req)
}

func (s *Catalog) UpdateBook(ctx context.Context, id int, req model.UpdateBookRequest) (model.Book, error) {
	if err := validateMetadata(req.Metadata); err != nil {
		return model.Book{}, err
	}
	return s.repo.UpdateBook(ctx, id, req)
}

func (s *Catalog) DeleteBook(ctx context.Context, id int) error {
	return s.repo.DeleteBook(ctx, id)
}

func (s *Catalog) SearchBooks(ctx context.Context, query string) (model.SearchResult, error) {
	if query == "" {
		return model.SearchResult{Books: []model.Book{}}, nil
	}
	return s.repo.SearchBooks(ctx, query)
}

// SetBookAvailability serves the admin counter edit; the repository clamps
// the value into [0, total_copies].
func (s *Catalog) SetBookAvailability(ctx context.Context, id, available int) error {
	return s.repo.SetBookAvailability(ctx, id, available)
}

func (s *Catalog) ListAuthors(ctx context.Context) ([]model.Author, error) {
	return s.repo.ListAuthors(ctx)
}

func (s *Catalog) GetAuthor(ctx context.Context, id int) (model.Author, error) {
	return s.repo.GetAuthor(ctx, id)
}

func (s *Catalog) CreateAuthor(ctx context.Context, req model.CreateAuthorRequest) (model.Author, error) {
	return s.repo.CreateAuthor(ctx, req)
}

func (s *Catalog) UpdateAuthor(ctx context.Context, id int, req model.UpdateAuthorRequest) (model.Author, error) {
	return s.repo.UpdateAuthor(ctx, id, req)
}

func (s *Catalog) DeleteAuthor(ctx context.Context, id int) error {
	return s.repo.DeleteAuthor(ctx, id)
}

func (s *Catalog) ListGenres(ctx context.Context) ([]model.Genre, error) {
	return s.repo.ListGenres(ctx)
}

func (s *Catalog) GetGenre(ctx context.Context, id int) (model.Genre, error) {
	return s.repo.GetGenre(ctx, id)
}

func (s *Catalog) CreateGenre(ctx context.Context, req model.CreateGenreRequest) (model.Genre, error) {
	return s.repo.CreateGenre(ctx, req)
}

func (s *Catalog) UpdateGenre(ctx context.Context, id int, req model.UpdateGenreRequest) (model.Genre, error) {
	return s.repo.UpdateGenre(ctx, id, req)
}

func (s *Catalog) DeleteGenre(ctx context.Context, id int) error {
	return s.repo.DeleteGenre(ctx, id)
}

// Counts gathers per-entity totals for the admin dashboard.
func (s *Catalog) Counts(ctx context.Context) (model.Counts, error) {
	var counts model.Counts
	gg, ctx := errgroup.WithContext(ctx)
	gg.Go(func() (err error) {
		counts.Books, err = s.repo.CountBooks(ctx)
		return err
	})
	gg.Go(func() (err error) {
		counts.Authors, err = s.repo.CountAuthors(ctx)
		return err
	})
	gg.Go(func() (err error) {
		counts.Genres, err = s.repo.CountGenres(ctx)
		return err
	})
	gg.Go(func() (err error) {
		counts.Users, err = s.repo.CountUsers(ctx)
		return err
	})
	gg.Go(func() (err error) {
		counts.Reservations, err = s.repo.CountReservations(ctx)
		return err
	})
	if err := gg.Wait(); err != nil {
		return model.Counts{}, err
	}
	return counts, nil
}

func validateMetadata(raw json.RawMessage) error {
	if len(raw) == 0 {
		return nil
	}
	if !json.Valid(raw) {
		return errs.ErrInvalidMetadata
	}
	return nil
}
