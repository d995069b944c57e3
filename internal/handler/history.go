package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/unrumbo/ride-reservation/internal/middleware"
	"github.com/unrumbo/ride-reservation/internal/service"
)

// HistoryHandler exposes the reservation audit trail.
type HistoryHandler struct {
	History *service.HistoryRecorder
}

// NewHistoryHandler constructs a HistoryHandler.
func NewHistoryHandler(history *service.HistoryRecorder) *HistoryHandler {
	if history == nil {
		panic("nil service passed to NewHistoryHandler")
	}
	return &HistoryHandler{History: history}
}

// ForReservation handles GET /v1/reservations/:id/history.  Visible to
// the reservation's traveler and the trip's driver.
func (h *HistoryHandler) ForReservation(c echo.Context) error {
	callerID := middleware.CallerID(c)
	if callerID == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	entries, err := h.History.ForReservation(c.Request().Context(), id, callerID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, entries)
}

// ForTrip handles GET /v1/trips/:id/history.  Driver only.
func (h *HistoryHandler) ForTrip(c echo.Context) error {
	callerID := middleware.CallerID(c)
	if callerID == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid trip id"})
	}
	entries, err := h.History.ForTrip(c.Request().Context(), id, callerID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, entries)
}
