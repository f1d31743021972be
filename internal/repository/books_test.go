package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bookhaven/library-app/internal/model"
	"github.com/bookhaven/library-app/internal/repository"
)

func newMockRepository(t *testing.T) (repository.Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	repo, err := repository.NewRepository(sqlx.NewDb(db, "sqlmock"), zap.NewNop())
	require.NoError(t, err)
	return repo, mock
}

var bookCols = []string{
	"id", "title", "description", "publication_year", "isbn",
	"file_stub_metadata", "total_copies", "available_copies", "created_at",
}

// CreateBook must hand back the same author and genre id sets on fetch no
// matter in which order the request listed them. The join rewrite inserts
// ids in request order; the relation fetch orders by referenced id.
func TestRepository_CreateBookRelationRoundTrip(t *testing.T) {
	t.Parallel()

	var tests = []struct {
		name      string
		authorIDs []int
		genreIDs  []int
	}{
		{name: "ascending ids", authorIDs: []int{1, 2}, genreIDs: []int{3, 4}},
		{name: "descending ids", authorIDs: []int{2, 1}, genreIDs: []int{4, 3}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			repo, mock := newMockRepository(t)
			now := time.Now()

			mock.ExpectBegin()
			mock.ExpectQuery(`INSERT INTO books`).
				WillReturnRows(sqlmock.NewRows(bookCols).
					AddRow(7, "Dune", nil, nil, nil, nil, 2, 2, now))
			mock.ExpectExec(`DELETE FROM book_authors WHERE book_id = \$1`).
				WithArgs(7).
				WillReturnResult(sqlmock.NewResult(0, 0))
			mock.ExpectExec(`INSERT INTO book_authors \(book_id,author_id\) VALUES \(\$1,\$2\),\(\$3,\$4\)`).
				WithArgs(7, tt.authorIDs[0], 7, tt.authorIDs[1]).
				WillReturnResult(sqlmock.NewResult(0, 2))
			mock.ExpectExec(`DELETE FROM book_genres WHERE book_id = \$1`).
				WithArgs(7).
				WillReturnResult(sqlmock.NewResult(0, 0))
			mock.ExpectExec(`INSERT INTO book_genres \(book_id,genre_id\) VALUES \(\$1,\$2\),\(\$3,\$4\)`).
				WithArgs(7, tt.genreIDs[0], 7, tt.genreIDs[1]).
				WillReturnResult(sqlmock.NewResult(0, 2))
			mock.ExpectCommit()

			mock.ExpectQuery(`SELECT (.+) FROM books WHERE id = \$1`).
				WithArgs(7).
				WillReturnRows(sqlmock.NewRows(bookCols).
					AddRow(7, "Dune", nil, nil, nil, nil, 2, 2, now))
			mock.ExpectQuery(`FROM authors a JOIN book_authors ba on a\.id = ba\.author_id WHERE ba\.book_id IN \(\$1\) ORDER BY a\.id`).
				WithArgs(7).
				WillReturnRows(sqlmock.
					NewRows([]string{"book_id", "id", "first_name", "last_name", "biography", "birth_date", "created_at"}).
					AddRow(7, 1, "Frank", "Herbert", nil, nil, now).
					AddRow(7, 2, "Brian", "Herbert", nil, nil, now))
			mock.ExpectQuery(`FROM genres g JOIN book_genres bg on g\.id = bg\.genre_id WHERE bg\.book_id IN \(\$1\) ORDER BY g\.id`).
				WithArgs(7).
				WillReturnRows(sqlmock.
					NewRows([]string{"book_id", "id", "name", "description", "created_at"}).
					AddRow(7, 3, "Science Fiction", nil, now).
					AddRow(7, 4, "Classics", nil, now))

			book, err := repo.CreateBook(context.Background(), model.CreateBookRequest{
				Title:     "Dune",
				AuthorIDs: tt.authorIDs,
				GenreIDs:  tt.genreIDs,
			})
			require.NoError(t, err)
			require.NoError(t, mock.ExpectationsWereMet())

			gotAuthors := make([]int, 0, len(book.Authors))
			for _, a := range book.Authors {
				gotAuthors = append(gotAuthors, a.ID)
			}
			gotGenres := make([]int, 0, len(book.Genres))
			for _, g := range book.Genres {
				gotGenres = append(gotGenres, g.ID)
			}
			require.Equal(t, []int{1, 2}, gotAuthors)
			require.Equal(t, []int{3, 4}, gotGenres)
		})
	}
}
