package repository

import (
	"context"
	"database/sql"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/bookhaven/library-app/internal/errs"
	"github.com/bookhaven/library-app/internal/model"
)

var bookColumns = []string{
	"id", "title", "description", "publication_year", "isbn",
	"file_stub_metadata", "total_copies", "available_copies", "created_at",
}

func (r *repository) ListBooks(ctx context.Context, page, perPage int) (model.BookList, error) {
	total, err := r.CountBooks(ctx)
	if err != nil {
		return model.BookList{}, err
	}

	q := qb.Select(bookColumns...).
		From(booksTableName).
		OrderBy("id")
	if page > 0 && perPage > 0 {
		q = q.Limit(uint64(perPage)).Offset(uint64((page - 1) * perPage))
	}
	query, args, err := q.ToSql()
	if err != nil {
		return model.BookList{}, err
	}

	var books []model.Book
	if err := r.db.SelectContext(ctx, &books, query, args...); err != nil {
		return model.BookList{}, err
	}
	if err := r.attachRelations(ctx, books); err != nil {
		return model.BookList{}, err
	}

	pages := 0
	if perPage > 0 {
		pages = (total + perPage - 1) / perPage
	}
	return model.BookList{
		Books:       books,
		Total:       total,
		Pages:       pages,
		CurrentPage: page,
	}, nil
}

func (r *repository) GetBook(ctx context.Context, id int) (model.Book, error) {
	query, args, err := qb.Select(bookColumns...).
		From(booksTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}

	var book model.Book
	if err := r.db.GetContext(ctx, &book, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Book{}, errs.ErrNotFound
		}
		return model.Book{}, err
	}
	books := []model.Book{book}
	if err := r.attachRelations(ctx, books); err != nil {
		return model.Book{}, err
	}
	return books[0], nil
}

func (r *repository) CreateBook(ctx context.Context, req model.CreateBookRequest) (model.Book, error) {
	totalCopies := 1
	if req.TotalCopies != nil {
		totalCopies = *req.TotalCopies
	}
	availableCopies := totalCopies
	if req.AvailableCopies != nil {
		availableCopies = *req.AvailableCopies
	}
	var meta *string
	if len(req.Metadata) > 0 {
		s := string(req.Metadata)
		meta = &s
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.Book{}, err
	}
	defer tx.Rollback() //nolint:errcheck

	query, args, err := qb.Insert(booksTableName).
		Columns("title", "description", "publication_year", "isbn",
			"file_stub_metadata", "total_copies", "available_copies").
		Values(req.Title, req.Description, req.PublicationYear, req.ISBN,
			meta, totalCopies, availableCopies).
		Suffix("returning " + joinColumns(bookColumns)).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}

	var book model.Book
	if err := tx.GetContext(ctx, &book, query, args...); err != nil {
		r.log.Error("CreateBook", zap.String("q", query), zap.Error(err))
		return model.Book{}, err
	}

	if err := r.replaceJoins(ctx, tx, bookAuthorsTableName, "author_id", book.ID, req.AuthorIDs); err != nil {
		return model.Book{}, err
	}
	if err := r.replaceJoins(ctx, tx, bookGenresTableName, "genre_id", book.ID, req.GenreIDs); err != nil {
		return model.Book{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Book{}, err
	}
	return r.GetBook(ctx, book.ID)
}

func (r *repository) UpdateBook(ctx context.Context, id int, req model.UpdateBookRequest) (model.Book, error) {
	upd := qb.Update(booksTableName).Where(sq.Eq{"id": id})
	changed := false
	if req.Title != nil {
		upd, changed = upd.Set("title", *req.Title), true
	}
	if req.Description != nil {
		upd, changed = upd.Set("description", *req.Description), true
	}
	if req.PublicationYear != nil {
		upd, changed = upd.Set("publication_year", *req.PublicationYear), true
	}
	if req.ISBN != nil {
		upd, changed = upd.Set("isbn", *req.ISBN), true
	}
	if len(req.Metadata) > 0 {
		upd, changed = upd.Set("file_stub_metadata", string(req.Metadata)), true
	}
	if req.TotalCopies != nil {
		upd, changed = upd.Set("total_copies", *req.TotalCopies), true
	}
	if req.AvailableCopies != nil {
		upd, changed = upd.Set("available_copies", *req.AvailableCopies), true
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.Book{}, err
	}
	defer tx.Rollback() //nolint:errcheck

	if changed {
		query, args, err := upd.ToSql()
		if err != nil {
			return model.Book{}, err
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return model.Book{}, err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return model.Book{}, errs.ErrNotFound
		}
	} else {
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`select exists(select 1 from books where id = $1)`, id).Scan(&exists); err != nil {
			return model.Book{}, err
		}
		if !exists {
			return model.Book{}, errs.ErrNotFound
		}
	}

	if req.AuthorIDs != nil {
		if err := r.replaceJoins(ctx, tx, bookAuthorsTableName, "author_id", id, *req.AuthorIDs); err != nil {
			return model.Book{}, err
		}
	}
	if req.GenreIDs != nil {
		if err := r.replaceJoins(ctx, tx, bookGenresTableName, "genre_id", id, *req.GenreIDs); err != nil {
			return model.Book{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return model.Book{}, err
	}
	return r.GetBook(ctx, id)
}

func (r *repository) DeleteBook(ctx context.Context, id int) error {
	query, args, err := qb.Delete(booksTableName).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *repository) SearchBooks(ctx context.Context, query string) (model.SearchResult, error) {
	pattern := "%" + query + "%"
	q, args, err := qb.Select(bookColumns...).
		From(booksTableName).
		Where(sq.Or{
			sq.ILike{"title": pattern},
			sq.ILike{"description": pattern},
		}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return model.SearchResult{}, err
	}

	var books []model.Book
	if err := r.db.SelectContext(ctx, &books, q, args...); err != nil {
		return model.SearchResult{}, err
	}
	if err := r.attachRelations(ctx, books); err != nil {
		return model.SearchResult{}, err
	}
	return model.SearchResult{Books: books, Total: len(books)}, nil
}

// SetBookAvailability sets the counter directly (admin surface), clamped to
// [0, total_copies].
func (r *repository) SetBookAvailability(ctx context.Context, id, available int) error {
	res, err := r.db.ExecContext(ctx, `
update books
    set available_copies = greatest(0, least($2, total_copies))
where id = $1`, id, available)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *repository) replaceJoins(ctx context.Context, tx *sqlx.Tx, table, refColumn string, bookID int, ids []int) error {
	query, args, err := qb.Delete(table).Where(sq.Eq{"book_id": bookID}).ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	ins := qb.Insert(table).Columns("book_id", refColumn)
	for _, id := range ids {
		ins = ins.Values(bookID, id)
	}
	query, args, err = ins.ToSql()
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, query, args...)
	return err
}

type bookAuthorRow struct {
	BookID int `db:"book_id"`
	model.Author
}

type bookGenreRow struct {
	BookID int `db:"book_id"`
	model.Genre
}

// attachRelations loads authors and genres for the given books in two batch
// queries and fills the slices in place (never nil, so JSON stays []).
func (r *repository) attachRelations(ctx context.Context, books []model.Book) error {
	ids := make([]int, 0, len(books))
	byID := make(map[int]*model.Book, len(books))
	for i := range books {
		books[i].Authors = []model.Author{}
		books[i].Genres = []model.Genre{}
		ids = append(ids, books[i].ID)
		byID[books[i].ID] = &books[i]
	}
	if len(ids) == 0 {
		return nil
	}

	query, args, err := qb.Select("ba.book_id", "a.id", "a.first_name", "a.last_name", "a.biography", "a.birth_date", "a.created_at").
		From(authorsTableName + " a").
		Join(bookAuthorsTableName + " ba on a.id = ba.author_id").
		Where(sq.Eq{"ba.book_id": ids}).
		OrderBy("a.id").
		ToSql()
	if err != nil {
		return err
	}
	var authorRows []bookAuthorRow
	if err := r.db.SelectContext(ctx, &authorRows, query, args...); err != nil {
		return err
	}
	for _, row := range authorRows {
		b := byID[row.BookID]
		b.Authors = append(b.Authors, row.Author)
	}

	query, args, err = qb.Select("bg.book_id", "g.id", "g.name", "g.description", "g.created_at").
		From(genresTableName + " g").
		Join(bookGenresTableName + " bg on g.id = bg.genre_id").
		Where(sq.Eq{"bg.book_id": ids}).
		OrderBy("g.id").
		ToSql()
	if err != nil {
		return err
	}
	var genreRows []bookGenreRow
	if err := r.db.SelectContext(ctx, &genreRows, query, args...); err != nil {
		return err
	}
	for _, row := range genreRows {
		b := byID[row.BookID]
		b.Genres = append(b.Genres, row.Genre)
	}
	return nil
}

func joinColumns(cols []string) string {
	return strings.Join(cols, ", ")
}
