package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/bookhaven/library-app/internal/errs"
	"github.com/bookhaven/library-app/internal/model"
	"github.com/bookhaven/library-app/internal/service"
)

func formString(c echo.Context, name string) *string {
	v := strings.TrimSpace(c.FormValue(name))
	if v == "" {
		return nil
	}
	return &v
}

func formInt(c echo.Context, name string) *int {
	v, err := strconv.Atoi(c.FormValue(name))
	if err != nil {
		return nil
	}
	return &v
}

func formIDs(c echo.Context, name string) []int {
	form, err := c.FormParams()
	if err != nil {
		return nil
	}
	ids := make([]int, 0, len(form[name]))
	for _, raw := range form[name] {
		if id, err := strconv.Atoi(raw); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

func adminActor(c echo.Context) service.Actor {
	profile, _ := profileFrom(c)
	return service.Actor{UserID: profile.ID, Admin: true}
}

func (h *Handler) AdminDashboard(c echo.Context) error {
	counts, err := h.catalogSvc.Counts(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.Render(http.StatusOK, "admin_dashboard.html", h.page(c, echo.Map{
		"Counts": counts,
	}))
}

func (h *Handler) AdminBooks(c echo.Context) error {
	page := queryInt(c, "page", 1)
	list, err := h.catalogSvc.ListBooks(c.Request().Context(), page, 50)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.Render(http.StatusOK, "admin_books.html", h.page(c, echo.Map{
		"Books":       list.Books,
		"Pages":       list.Pages,
		"CurrentPage": list.CurrentPage,
	}))
}

func (h *Handler) AdminBookNew(c echo.Context) error {
	authors, genres, err := h.directory(c)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "admin_book_form.html", h.page(c, echo.Map{
		"Authors": authors,
		"Genres":  genres,
		"Action":  "/admin/books",
	}))
}

func (h *Handler) AdminBookCreate(c echo.Context) error {
	req := model.CreateBookRequest{
		Title:           c.FormValue("title"),
		Description:     formString(c, "description"),
		PublicationYear: formInt(c, "publication_year"),
		ISBN:            formString(c, "isbn"),
		TotalCopies:     formInt(c, "total_copies"),
		AvailableCopies: formInt(c, "available_copies"),
		AuthorIDs:       formIDs(c, "author_ids"),
		GenreIDs:        formIDs(c, "genre_ids"),
	}
	if meta := strings.TrimSpace(c.FormValue("file_stub_metadata")); meta != "" {
		req.Metadata = json.RawMessage(meta)
	}
	clampCopies(req.TotalCopies, req.AvailableCopies)
	if err := c.Validate(req); err != nil {
		setFlash(c, "Please fill in the book form correctly")
		return c.Redirect(http.StatusSeeOther, "/admin/books/new")
	}
	book, err := h.catalogSvc.CreateBook(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, errs.ErrInvalidMetadata) {
			setFlash(c, "Metadata must be valid JSON")
			return c.Redirect(http.StatusSeeOther, "/admin/books/new")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	setFlash(c, "Book created")
	return c.Redirect(http.StatusSeeOther, "/admin/books/"+strconv.Itoa(book.ID))
}

func (h *Handler) AdminBookEdit(c echo.Context) error {
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
	authors, genres, err := h.directory(c)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "admin_book_form.html", h.page(c, echo.Map{
		"Book":    book,
		"Authors": authors,
		"Genres":  genres,
		"Action":  "/admin/books/" + strconv.Itoa(book.ID),
	}))
}

func (h *Handler) AdminBookUpdate(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	authorIDs := formIDs(c, "author_ids")
	genreIDs := formIDs(c, "genre_ids")
	req := model.UpdateBookRequest{
		Title:           formString(c, "title"),
		Description:     formString(c, "description"),
		PublicationYear: formInt(c, "publication_year"),
		ISBN:            formString(c, "isbn"),
		TotalCopies:     formInt(c, "total_copies"),
		AvailableCopies: formInt(c, "available_copies"),
		AuthorIDs:       &authorIDs,
		GenreIDs:        &genreIDs,
	}
	if meta := strings.TrimSpace(c.FormValue("file_stub_metadata")); meta != "" {
		req.Metadata = json.RawMessage(meta)
	}
	clampCopies(req.TotalCopies, req.AvailableCopies)
	if _, err := h.catalogSvc.UpdateBook(c.Request().Context(), id, req); err != nil {
		switch {
		case errors.Is(err, errs.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "book not found")
		case errors.Is(err, errs.ErrInvalidMetadata):
			setFlash(c, "Metadata must be valid JSON")
			return c.Redirect(http.StatusSeeOther, "/admin/books/"+strconv.Itoa(id))
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	setFlash(c, "Book saved")
	return c.Redirect(http.StatusSeeOther, "/admin/books/"+strconv.Itoa(id))
}

func (h *Handler) AdminBookDelete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.catalogSvc.DeleteBook(c.Request().Context(), id); err != nil && !errors.Is(err, errs.ErrNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	setFlash(c, "Book deleted")
	return c.Redirect(http.StatusSeeOther, "/admin/books")
}

func (h *Handler) AdminAuthors(c echo.Context) error {
	authors, err := h.catalogSvc.ListAuthors(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.Render(http.StatusOK, "admin_authors.html", h.page(c, echo.Map{
		"Authors": authors,
	}))
}

func (h *Handler) AdminAuthorCreate(c echo.Context) error {
	req := model.CreateAuthorRequest{
		FirstName: c.FormValue("first_name"),
		LastName:  c.FormValue("last_name"),
		Biography: formString(c, "biography"),
	}
	if err := c.Validate(req); err != nil {
		setFlash(c, "First and last name are required")
		return c.Redirect(http.StatusSeeOther, "/admin/authors")
	}
	if _, err := h.catalogSvc.CreateAuthor(c.Request().Context(), req); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	setFlash(c, "Author created")
	return c.Redirect(http.StatusSeeOther, "/admin/authors")
}

func (h *Handler) AdminAuthorUpdate(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	req := model.UpdateAuthorRequest{
		FirstName: formString(c, "first_name"),
		LastName:  formString(c, "last_name"),
		Biography: formString(c, "biography"),
	}
	if _, err := h.catalogSvc.UpdateAuthor(c.Request().Context(), id, req); err != nil && !errors.Is(err, errs.ErrNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	setFlash(c, "Author saved")
	return c.Redirect(http.StatusSeeOther, "/admin/authors")
}

func (h *Handler) AdminAuthorDelete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.catalogSvc.DeleteAuthor(c.Request().Context(), id); err != nil && !errors.Is(err, errs.ErrNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	setFlash(c, "Author deleted")
	return c.Redirect(http.StatusSeeOther, "/admin/authors")
}

func (h *Handler) AdminGenres(c echo.Context) error {
	genres, err := h.catalogSvc.ListGenres(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.Render(http.StatusOK, "admin_genres.html", h.page(c, echo.Map{
		"Genres": genres,
	}))
}

func (h *Handler) AdminGenreCreate(c echo.Context) error {
	req := model.CreateGenreRequest{
		Name:        c.FormValue("name"),
		Description: formString(c, "description"),
	}
	if err := c.Validate(req); err != nil {
		setFlash(c, "Genre name is required")
		return c.Redirect(http.StatusSeeOther, "/admin/genres")
	}
	if _, err := h.catalogSvc.CreateGenre(c.Request().Context(), req); err != nil {
		if errors.Is(err, errs.ErrGenreExists) {
			setFlash(c, "A genre with this name already exists")
			return c.Redirect(http.StatusSeeOther, "/admin/genres")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	setFlash(c, "Genre created")
	return c.Redirect(http.StatusSeeOther, "/admin/genres")
}

func (h *Handler) AdminGenreUpdate(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	req := model.UpdateGenreRequest{
		Name:        formString(c, "name"),
		Description: formString(c, "description"),
	}
	if _, err := h.catalogSvc.UpdateGenre(c.Request().Context(), id, req); err != nil {
		if errors.Is(err, errs.ErrGenreExists) {
			setFlash(c, "A genre with this name already exists")
			return c.Redirect(http.StatusSeeOther, "/admin/genres")
		}
		if !errors.Is(err, errs.ErrNotFound) {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	setFlash(c, "Genre saved")
	return c.Redirect(http.StatusSeeOther, "/admin/genres")
}

func (h *Handler) AdminGenreDelete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.catalogSvc.DeleteGenre(c.Request().Context(), id); err != nil && !errors.Is(err, errs.ErrNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	setFlash(c, "Genre deleted")
	return c.Redirect(http.StatusSeeOther, "/admin/genres")
}

func (h *Handler) AdminUsers(c echo.Context) error {
	users, err := h.userSvc.List(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.Render(http.StatusOK, "admin_users.html", h.page(c, echo.Map{
		"Users": users,
	}))
}

func (h *Handler) AdminUserUpdate(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	role := model.Role(c.FormValue("role"))
	if role != model.RoleReader && role != model.RoleAdmin {
		setFlash(c, "Unknown role")
		return c.Redirect(http.StatusSeeOther, "/admin/users")
	}
	membership := c.FormValue("membership_status")
	if _, err := h.userSvc.Update(c.Request().Context(), id, role, membership); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	setFlash(c, "User saved")
	return c.Redirect(http.StatusSeeOther, "/admin/users")
}

func (h *Handler) AdminReservations(c echo.Context) error {
	rsvs, err := h.reservationSvc.List(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.Render(http.StatusOK, "admin_reservations.html", h.page(c, echo.Map{
		"Reservations": rsvs,
	}))
}

func (h *Handler) AdminReservationStatus(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	status := model.ReservationStatus(c.FormValue("status"))
	_, err = h.reservationSvc.SetStatus(c.Request().Context(), id, status, adminActor(c))
	switch {
	case err == nil:
		setFlash(c, "Reservation updated")
	case errors.Is(err, errs.ErrInvalidStatus):
		setFlash(c, "Unknown reservation status")
	case errors.Is(err, errs.ErrReservationFinished):
		setFlash(c, "Only active reservations can change status")
	case errors.Is(err, errs.ErrNotFound):
		setFlash(c, "Reservation not found")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.Redirect(http.StatusSeeOther, "/admin/reservations")
}

func (h *Handler) directory(c echo.Context) ([]model.Author, []model.Genre, error) {
	authors, err := h.catalogSvc.ListAuthors(c.Request().Context())
	if err != nil {
		return nil, nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	genres, err := h.catalogSvc.ListGenres(c.Request().Context())
	if err != nil {
		return nil, nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return authors, genres, nil
}

// clampCopies keeps the available counter inside [0, total] on admin saves.
func clampCopies(total, available *int) {
	if total == nil || available == nil {
		return
	}
	if *available > *total {
		*available = *total
	}
	if *available < 0 {
		*available = 0
	}
}
