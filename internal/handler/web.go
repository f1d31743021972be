package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/bookhaven/library-app/internal/errs"
	"github.com/bookhaven/library-app/internal/model"
	"github.com/bookhaven/library-app/internal/service"
	"github.com/bookhaven/library-app/pkg/auth"
)

const booksPerPage = 12

// page assembles the common template payload: the optional signed-in
// profile and a one-shot flash message.
func (h *Handler) page(c echo.Context, data echo.Map) echo.Map {
	if data == nil {
		data = echo.Map{}
	}
	if profile, ok := profileFrom(c); ok {
		data["Profile"] = profile
	}
	if flash := takeFlash(c); flash != "" {
		data["Flash"] = flash
	}
	return data
}

func webActor(profile auth.Profile) service.Actor {
	return service.Actor{
		UserID: profile.ID,
		Admin:  profile.Role == string(model.RoleAdmin),
	}
}

func (h *Handler) IndexPage(c echo.Context) error {
	list, err := h.catalogSvc.ListBooks(c.Request().Context(), 1, 10)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.Render(http.StatusOK, "index.html", h.page(c, echo.Map{
		"Books": list.Books,
		"Total": list.Total,
	}))
}

func (h *Handler) BooksPage(c echo.Context) error {
	page := queryInt(c, "page", 1)
	list, err := h.catalogSvc.ListBooks(c.Request().Context(), page, booksPerPage)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.Render(http.StatusOK, "books.html", h.page(c, echo.Map{
		"Books":       list.Books,
		"Pages":       list.Pages,
		"CurrentPage": list.CurrentPage,
		"PrevPage":    list.CurrentPage - 1,
		"NextPage":    list.CurrentPage + 1,
	}))
}

func (h *Handler) BookPage(c echo.Context) error {
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
	return c.Render(http.StatusOK, "book.html", h.page(c, echo.Map{
		"Book": book,
	}))
}

func (h *Handler) RegisterPage(c echo.Context) error {
	return c.Render(http.StatusOK, "register.html", h.page(c, echo.Map{
		"CaptchaEnabled": h.captcha.Enabled(),
		"CaptchaKey":     h.captcha.ClientKey(),
	}))
}

func (h *Handler) RegisterForm(c echo.Context) error {
	if !h.verifyCaptcha(c) {
		setFlash(c, "Captcha verification failed, please try again")
		return c.Redirect(http.StatusSeeOther, "/register")
	}
	req := model.RegisterRequest{
		Email:     c.FormValue("email"),
		Password:  c.FormValue("password"),
		FirstName: c.FormValue("first_name"),
		LastName:  c.FormValue("last_name"),
	}
	if err := c.Validate(req); err != nil {
		setFlash(c, "Please fill in all fields correctly")
		return c.Redirect(http.StatusSeeOther, "/register")
	}
	user, err := h.userSvc.Register(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, errs.ErrEmailExists) {
			setFlash(c, "An account with this email already exists")
			return c.Redirect(http.StatusSeeOther, "/register")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.signIn(c, user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	setFlash(c, "Welcome, "+user.FirstName+"!")
	return c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) LoginPage(c echo.Context) error {
	return c.Render(http.StatusOK, "login.html", h.page(c, echo.Map{
		"CaptchaEnabled": h.captcha.Enabled(),
		"CaptchaKey":     h.captcha.ClientKey(),
	}))
}

func (h *Handler) LoginForm(c echo.Context) error {
	if !h.verifyCaptcha(c) {
		setFlash(c, "Captcha verification failed, please try again")
		return c.Redirect(http.StatusSeeOther, "/login")
	}
	user, err := h.userSvc.Login(c.Request().Context(), c.FormValue("email"), c.FormValue("password"))
	if err != nil {
		if errors.Is(err, errs.ErrInvalidCredentials) {
			setFlash(c, "Invalid email or password")
			return c.Redirect(http.StatusSeeOther, "/login")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.signIn(c, user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) Logout(c echo.Context) error {
	c.SetCookie(h.sessions.ExpiredCookie())
	return c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) ProfilePage(c echo.Context) error {
	profile, _ := profileFrom(c)
	user, err := h.userSvc.Get(c.Request().Context(), profile.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	rsvs, err := h.reservationSvc.ListForUser(c.Request().Context(), profile.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.Render(http.StatusOK, "profile.html", h.page(c, echo.Map{
		"User":         user,
		"Reservations": rsvs,
	}))
}

func (h *Handler) ReserveForm(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	profile, _ := profileFrom(c)
	_, err = h.reservationSvc.Create(c.Request().Context(), id, profile.ID)
	switch {
	case err == nil:
		setFlash(c, "Book reserved, enjoy your reading!")
	case errors.Is(err, errs.ErrBookUnavailable):
		setFlash(c, "No copies of this book are available right now")
	case errors.Is(err, errs.ErrDuplicateReservation):
		setFlash(c, "You already have an active reservation for this book")
	case errors.Is(err, errs.ErrNotFound):
		setFlash(c, "Book not found")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.Redirect(http.StatusSeeOther, "/books/"+strconv.Itoa(id))
}

func (h *Handler) CancelForm(c echo.Context) error {
	return h.finishForm(c, func(ctx echo.Context, id int, actor service.Actor) error {
		_, err := h.reservationSvc.Cancel(ctx.Request().Context(), id, actor)
		return err
	}, "Reservation cancelled")
}

func (h *Handler) ReturnForm(c echo.Context) error {
	return h.finishForm(c, func(ctx echo.Context, id int, actor service.Actor) error {
		_, err := h.reservationSvc.Complete(ctx.Request().Context(), id, actor)
		return err
	}, "Book returned, thank you!")
}

func (h *Handler) finishForm(c echo.Context, fn func(echo.Context, int, service.Actor) error, okMsg string) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	profile, _ := profileFrom(c)
	err = fn(c, id, webActor(profile))
	switch {
	case err == nil:
		setFlash(c, okMsg)
	case errors.Is(err, errs.ErrReservationFinished):
		setFlash(c, "This reservation is already finished")
	case errors.Is(err, errs.ErrForbidden):
		setFlash(c, "This reservation belongs to another reader")
	case errors.Is(err, errs.ErrNotFound):
		setFlash(c, "Reservation not found")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.Redirect(http.StatusSeeOther, "/profile")
}

func (h *Handler) signIn(c echo.Context, user model.User) error {
	token, expires, err := h.sessions.Issue(auth.Profile{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		Role:      string(user.Role),
	})
	if err != nil {
		return err
	}
	c.SetCookie(h.sessions.NewCookie(token, expires))
	return nil
}

// verifyCaptcha gates a form post on the captcha service. An unconfigured
// verifier always passes.
func (h *Handler) verifyCaptcha(c echo.Context) bool {
	if !h.captcha.Enabled() {
		return true
	}
	token := c.FormValue("smart-token")
	result := h.captcha.Verify(c.Request().Context(), token, c.RealIP())
	return result.Success
}
