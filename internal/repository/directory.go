package repository

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/bookhaven/library-app/internal/errs"
	"github.com/bookhaven/library-app/internal/model"
)

var (
	authorColumns = []string{"id", "first_name", "last_name", "biography", "birth_date", "created_at"}
	genreColumns  = []string{"id", "name", "description", "created_at"}
)

func (r *repository) ListAuthors(ctx context.Context) ([]model.Author, error) {
	query, args, err := qb.Select(authorColumns...).From(authorsTableName).OrderBy("id").ToSql()
	if err != nil {
		return nil, err
	}
	authors := []model.Author{}
	if err := r.db.SelectContext(ctx, &authors, query, args...); err != nil {
		return nil, err
	}
	return authors, nil
}

func (r *repository) GetAuthor(ctx context.Context, id int) (model.Author, error) {
	query, args, err := qb.Select(authorColumns...).
		From(authorsTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return model.Author{}, err
	}
	var author model.Author
	if err := r.db.GetContext(ctx, &author, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Author{}, errs.ErrNotFound
		}
		return model.Author{}, err
	}
	return author, nil
}

func (r *repository) CreateAuthor(ctx context.Context, req model.CreateAuthorRequest) (model.Author, error) {
	query, args, err := qb.Insert(authorsTableName).
		Columns("first_name", "last_name", "biography", "birth_date").
		Values(req.FirstName, req.LastName, req.Biography, req.BirthDate).
		Suffix("returning " + joinColumns(authorColumns)).
		ToSql()
	if err != nil {
		return model.Author{}, err
	}
	var author model.Author
	if err := r.db.GetContext(ctx, &author, query, args...); err != nil {
		return model.Author{}, err
	}
	return author, nil
}

func (r *repository) UpdateAuthor(ctx context.Context, id int, req model.UpdateAuthorRequest) (model.Author, error) {
	upd := qb.Update(authorsTableName).Where(sq.Eq{"id": id})
	changed := false
	if req.FirstName != nil {
		upd, changed = upd.Set("first_name", *req.FirstName), true
	}
	if req.LastName != nil {
		upd, changed = upd.Set("last_name", *req.LastName), true
	}
	if req.Biography != nil {
		upd, changed = upd.Set("biography", *req.Biography), true
	}
	if req.BirthDate != nil {
		upd, changed = upd.Set("birth_date", *req.BirthDate), true
	}
	if !changed {
		return r.GetAuthor(ctx, id)
	}
	query, args, err := upd.Suffix("returning " + joinColumns(authorColumns)).ToSql()
	if err != nil {
		return model.Author{}, err
	}
	var author model.Author
	if err := r.db.GetContext(ctx, &author, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Author{}, errs.ErrNotFound
		}
		return model.Author{}, err
	}
	return author, nil
}

func (r *repository) DeleteAuthor(ctx context.Context, id int) error {
	query, args, err := qb.Delete(authorsTableName).Where(sq.Eq{"id": id}).ToSql()
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

func (r *repository) ListGenres(ctx context.Context) ([]model.Genre, error) {
	query, args, err := qb.Select(genreColumns...).From(genresTableName).OrderBy("id").ToSql()
	if err != nil {
		return nil, err
	}
	genres := []model.Genre{}
	if err := r.db.SelectContext(ctx, &genres, query, args...); err != nil {
		return nil, err
	}
	return genres, nil
}

func (r *repository) GetGenre(ctx context.Context, id int) (model.Genre, error) {
	query, args, err := qb.Select(genreColumns...).
		From(genresTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return model.Genre{}, err
	}
	var genre model.Genre
	if err := r.db.GetContext(ctx, &genre, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Genre{}, errs.ErrNotFound
		}
		return model.Genre{}, err
	}
	return genre, nil
}

func (r *repository) CreateGenre(ctx context.Context, req model.CreateGenreRequest) (model.Genre, error) {
	query, args, err := qb.Insert(genresTableName).
		Columns("name", "description").
		Values(req.Name, req.Description).
		Suffix("returning " + joinColumns(genreColumns)).
		ToSql()
	if err != nil {
		return model.Genre{}, err
	}
	var genre model.Genre
	if err := r.db.GetContext(ctx, &genre, query, args...); err != nil {
		if isUniqueViolation(err) {
			return model.Genre{}, errs.ErrGenreExists
		}
		return model.Genre{}, err
	}
	return genre, nil
}

func (r *repository) UpdateGenre(ctx context.Context, id int, req model.UpdateGenreRequest) (model.Genre, error) {
	upd := qb.Update(genresTableName).Where(sq.Eq{"id": id})
	changed := false
	if req.Name != nil {
		upd, changed = upd.Set("name", *req.Name), true
	}
	if req.Description != nil {
		upd, changed = upd.Set("description", *req.Description), true
	}
	if !changed {
		return r.GetGenre(ctx, id)
	}
	query, args, err := upd.Suffix("returning " + joinColumns(genreColumns)).ToSql()
	if err != nil {
		return model.Genre{}, err
	}
	var genre model.Genre
	if err := r.db.GetContext(ctx, &genre, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Genre{}, errs.ErrNotFound
		}
		return model.Genre{}, err
	}
	return genre, nil
}

func (r *repository) DeleteGenre(ctx context.Context, id int) error {
	query, args, err := qb.Delete(genresTableName).Where(sq.Eq{"id": id}).ToSql()
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
