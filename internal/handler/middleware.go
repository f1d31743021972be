package handler

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/bookhaven/library-app/internal/model"
	"github.com/bookhaven/library-app/pkg/auth"
)

const (
	profileKey  = "session-profile"
	flashCookie = "library_flash"
)

// withSession extracts the signed session cookie when present. Pages render
// both for guests and signed-in users, so a missing or invalid session is
// not an error here.
func (h *Handler) withSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if profile, err := h.sessions.FromRequest(c.Request()); err == nil {
			c.Set(profileKey, profile)
		}
		return next(c)
	}
}

func profileFrom(c echo.Context) (auth.Profile, bool) {
	profile, ok := c.Get(profileKey).(auth.Profile)
	return profile, ok
}

func (h *Handler) requireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := profileFrom(c); !ok {
			setFlash(c, "Please sign in first")
			return c.Redirect(http.StatusSeeOther, "/login")
		}
		return next(c)
	}
}

// requireAdmin re-reads the role from the users table on every request, so
// a demoted admin loses access immediately instead of at token expiry.
func (h *Handler) requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		profile, ok := profileFrom(c)
		if !ok {
			setFlash(c, "Please sign in first")
			return c.Redirect(http.StatusSeeOther, "/login")
		}
		user, err := h.userSvc.Get(c.Request().Context(), profile.ID)
		if err != nil || !user.IsAdmin() {
			setFlash(c, "Admin access required")
			return c.Redirect(http.StatusSeeOther, "/")
		}
		c.Set(profileKey, auth.Profile{
			ID:        user.ID,
			Email:     user.Email,
			FirstName: user.FirstName,
			Role:      string(model.RoleAdmin),
		})
		return next(c)
	}
}

func setFlash(c echo.Context, msg string) {
	c.SetCookie(&http.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(msg),
		Path:     "/",
		HttpOnly: true,
	})
}

func takeFlash(c echo.Context) string {
	cookie, err := c.Cookie(flashCookie)
	if err != nil || cookie.Value == "" {
		return ""
	}
	c.SetCookie(&http.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	msg, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return ""
	}
	return msg
}
