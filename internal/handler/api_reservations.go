package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/bookhaven/library-app/internal/errs"
	"github.com/bookhaven/library-app/internal/model"
	"github.com/bookhaven/library-app/internal/service"
)

// apiActor resolves the acting user for reservation mutations. The JSON API
// is a trusted surface without its own authentication, so a request with no
// session cookie acts with full privileges; a session narrows it down to
// the signed-in user.
func (h *Handler) apiActor(c echo.Context) service.Actor {
	profile, err := h.sessions.FromRequest(c.Request())
	if err != nil {
		return service.Actor{Admin: true}
	}
	return service.Actor{
		UserID: profile.ID,
		Admin:  profile.Role == string(model.RoleAdmin),
	}
}

// CreateReservation godoc
//
//	@Summary	reserve a book copy
//	@Tags		reservations
//	@Accept		json
//	@Produce	json
//	@Success	201	{object}	model.Reservation
//	@Failure	400	{object}	errs.ErrorResponse
//	@Router		/api/reservations [post]
func (h *Handler) CreateReservation(c echo.Context) error {
	var req model.CreateReservationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	rsv, err := h.reservationSvc.Create(c.Request().Context(), req.BookID, req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "book not found")
		case errors.Is(err, errs.ErrBookUnavailable),
			errors.Is(err, errs.ErrDuplicateReservation):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, rsv)
}

// CancelReservation godoc
//
//	@Summary	cancel an active reservation
//	@Tags		reservations
//	@Param		id	path	int	true	"reservation id"
//	@Success	204
//	@Failure	400	{object}	errs.ErrorResponse
//	@Router		/api/reservations/{id} [delete]
func (h *Handler) CancelReservation(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if _, err := h.reservationSvc.Cancel(c.Request().Context(), id, h.apiActor(c)); err != nil {
		switch {
		case errors.Is(err, errs.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "reservation not found")
		case errors.Is(err, errs.ErrReservationFinished):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, errs.ErrForbidden):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// ReturnReservation godoc
//
//	@Summary	complete an active reservation
//	@Tags		reservations
//	@Produce	json
//	@Param		id	path		int	true	"reservation id"
//	@Success	200	{object}	model.Reservation
//	@Failure	400	{object}	errs.ErrorResponse
//	@Router		/api/reservations/{id}/return [post]
func (h *Handler) ReturnReservation(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	rsv, err := h.reservationSvc.Complete(c.Request().Context(), id, h.apiActor(c))
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "reservation not found")
		case errors.Is(err, errs.ErrReservationFinished):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, errs.ErrForbidden):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, rsv)
}

// UserReservations godoc
//
//	@Summary	reservations for a user, newest first
//	@Tags		reservations
//	@Produce	json
//	@Param		id	path	int	true	"user id"
//	@Success	200	{array}	model.Reservation
//	@Router		/api/reservations/user/{id} [get]
func (h *Handler) UserReservations(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	rsvs, err := h.reservationSvc.ListForUser(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, rsvs)
}
