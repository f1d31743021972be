package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/bookhaven/library-app/internal/errs"
	"github.com/bookhaven/library-app/internal/model"
)

func pathID(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func queryInt(c echo.Context, name string, def int) int {
	v, err := strconv.Atoi(c.QueryParam(name))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

// ListBooks godoc
//
//	@Summary	paginated book catalog
//	@Tags		books
//	@Produce	json
//	@Param		page		query		int	false	"page number"
//	@Param		per_page	query		int	false	"page size"
//	@Success	200			{object}	model.BookList
//	@Router		/api/books [get]
func (h *Handler) ListBooks(c echo.Context) error {
	page := queryInt(c, "page", 1)
	perPage := queryInt(c, "per_page", 10)

	list, err := h.catalogSvc.ListBooks(c.Request().Context(), page, perPage)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, list)
}

// GetBook godoc
//
//	@Summary	book by id with authors and genres
//	@Tags		books
//	@Produce	json
//	@Param		id	path		int	true	"book id"
//	@Success	200	{object}	model.Book
//	@Failure	404	{object}	errs.ErrorResponse
//	@Router		/api/books/{id} [get]
func (h *Handler) GetBook(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	book, err := h.catalogSvc.GetBook(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "book not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, book)
}

// CreateBook godoc
//
//	@Summary	create a book
//	@Tags		books
//	@Accept		json
//	@Produce	json
//	@Success	201	{object}	model.Book
//	@Failure	400	{object}	errs.ErrorResponse
//	@Router		/api/books [post]
func (h *Handler) CreateBook(c echo.Context) error {
	var req model.CreateBookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	book, err := h.catalogSvc.CreateBook(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, errs.ErrInvalidMetadata) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, book)
}

// UpdateBook godoc
//
//	@Summary	partial book update
//	@Tags		books
//	@Accept		json
//	@Produce	json
//	@Param		id	path		int	true	"book id"
//	@Success	200	{object}	model.Book
//	@Failure	404	{object}	errs.ErrorResponse
//	@Router		/api/books/{id} [put]
func (h *Handler) UpdateBook(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req model.UpdateBookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	book, err := h.catalogSvc.UpdateBook(c.Request().Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "book not found")
		case errors.Is(err, errs.ErrInvalidMetadata):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, book)
}

// DeleteBook godoc
//
//	@Summary	delete a book
//	@Tags		books
//	@Param		id	path	int	true	"book id"
//	@Success	204
//	@Failure	404	{object}	errs.ErrorResponse
//	@Router		/api/books/{id} [delete]
func (h *Handler) DeleteBook(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.catalogSvc.DeleteBook(c.Request().Context(), id); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "book not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// SearchBooks godoc
//
//	@Summary	title/description search
//	@Tags		books
//	@Produce	json
//	@Param		q	query		string	true	"search query"
//	@Success	200	{object}	model.SearchResult
//	@Router		/api/books/search [get]
func (h *Handler) SearchBooks(c echo.Context) error {
	res, err := h.catalogSvc.SearchBooks(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, res)
}
