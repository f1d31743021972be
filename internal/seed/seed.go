package seed

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/bookhaven/library-app/internal/model"
	"github.com/bookhaven/library-app/internal/repository"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

// Apply loads a small starter catalog. It is idempotent at the dataset
// level: a non-empty books table means the seed already ran.
func Apply(ctx context.Context, repo repository.Repository, log *zap.Logger) error {
	n, err := repo.CountBooks(ctx)
	if err != nil {
		return errors.Wrap(err, "count books")
	}
	if n > 0 {
		log.Info("seed skipped, catalog is not empty", zap.Int("books", n))
		return nil
	}

	genres := []model.CreateGenreRequest{
		{Name: "Science Fiction", Description: strPtr("Speculative futures and technology")},
		{Name: "Fantasy", Description: strPtr("Magic, myth and invented worlds")},
		{Name: "Classic", Description: strPtr("Time-tested literature")},
	}
	genreIDs := make(map[string]int, len(genres))
	for _, g := range genres {
		created, err := repo.CreateGenre(ctx, g)
		if err != nil {
			return errors.Wrapf(err, "create genre %q", g.Name)
		}
		genreIDs[g.Name] = created.ID
	}

	authors := []model.CreateAuthorRequest{
		{FirstName: "Frank", LastName: "Herbert", Biography: strPtr("American science fiction writer")},
		{FirstName: "Ursula", LastName: "Le Guin", Biography: strPtr("American author of speculative fiction")},
		{FirstName: "Mikhail", LastName: "Bulgakov", Biography: strPtr("Russian novelist and playwright")},
	}
	authorIDs := make(map[string]int, len(authors))
	for _, a := range authors {
		created, err := repo.CreateAuthor(ctx, a)
		if err != nil {
			return errors.Wrapf(err, "create author %q", a.LastName)
		}
		authorIDs[a.LastName] = created.ID
	}

	books := []model.CreateBookRequest{
		{
			Title:           "Dune",
			Description:     strPtr("A desert planet, a noble house and a spice that bends fate."),
			PublicationYear: intPtr(1965),
			ISBN:            strPtr("978-0441172719"),
			TotalCopies:     intPtr(3),
			AvailableCopies: intPtr(3),
			AuthorIDs:       []int{authorIDs["Herbert"]},
			GenreIDs:        []int{genreIDs["Science Fiction"]},
		},
		{
			Title:           "The Left Hand of Darkness",
			Description:     strPtr("An envoy on a winter world where gender is fluid."),
			PublicationYear: intPtr(1969),
			ISBN:            strPtr("978-0441478125"),
			TotalCopies:     intPtr(2),
			AvailableCopies: intPtr(2),
			AuthorIDs:       []int{authorIDs["Le Guin"]},
			GenreIDs:        []int{genreIDs["Science Fiction"], genreIDs["Fantasy"]},
		},
		{
			Title:           "The Master and Margarita",
			Description:     strPtr("The devil visits Soviet Moscow."),
			PublicationYear: intPtr(1967),
			ISBN:            strPtr("978-0141180144"),
			TotalCopies:     intPtr(2),
			AvailableCopies: intPtr(2),
			AuthorIDs:       []int{authorIDs["Bulgakov"]},
			GenreIDs:        []int{genreIDs["Classic"], genreIDs["Fantasy"]},
		},
	}
	for _, b := range books {
		if _, err := repo.CreateBook(ctx, b); err != nil {
			return errors.Wrapf(err, "create book %q", b.Title)
		}
	}

	log.Info("seed applied",
		zap.Int("genres", len(genres)),
		zap.Int("authors", len(authors)),
		zap.Int("books", len(books)))
	return nil
}
