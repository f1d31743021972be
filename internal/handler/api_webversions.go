package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/bookhaven/library-app/internal/errs"
)

func (h *Handler) gatewayUnavailable(c echo.Context) error {
	return c.JSON(http.StatusServiceUnavailable, map[string]interface{}{
		"success":           false,
		"service_available": false,
		"error":             "book metadata gateway is not configured",
	})
}

// BookWebVersions searches the metadata gateway for online editions of a
// catalog book, keyed by its title.
func (h *Handler) BookWebVersions(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if !h.openLibrary.Available() {
		return h.gatewayUnavailable(c)
	}
	book, err := h.catalogSvc.GetBook(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "book not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	res := h.openLibrary.SearchByTitle(c.Request().Context(), book.Title, c.QueryParam("sort"))
	res["service_available"] = true
	res["book_id"] = book.ID
	res["book_title"] = book.Title
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) SearchWebVersions(c echo.Context) error {
	if !h.openLibrary.Available() {
		return h.gatewayUnavailable(c)
	}
	title := c.QueryParam("title")
	if title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title is required")
	}
	res := h.openLibrary.SearchByTitle(c.Request().Context(), title, c.QueryParam("sort"))
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) WebVersionSortOptions(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":      true,
		"sort_options": h.openLibrary.SortOptions(),
	})
}

func (h *Handler) WebVersionStatus(c echo.Context) error {
	if !h.openLibrary.Available() {
		return h.gatewayUnavailable(c)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":           true,
		"service_available": true,
		"gateway_url":       h.openLibrary.GatewayURL(),
	})
}

// GatewayStatus reports configuration without probing the gateway.
func (h *Handler) GatewayStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":           true,
		"service_available": h.openLibrary.Available(),
		"gateway_url":       h.openLibrary.GatewayURL(),
	})
}

// GatewayTest actively probes the gateway health endpoint.
func (h *Handler) GatewayTest(c echo.Context) error {
	if !h.openLibrary.Available() {
		return h.gatewayUnavailable(c)
	}
	healthy := h.openLibrary.HealthCheck(c.Request().Context())
	code := http.StatusOK
	if !healthy {
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, map[string]interface{}{
		"success":           healthy,
		"service_available": healthy,
		"gateway_url":       h.openLibrary.GatewayURL(),
	})
}
