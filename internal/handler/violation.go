package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/unrumbo/ride-reservation/internal/middleware"
	"github.com/unrumbo/ride-reservation/internal/service"
)

// ViolationHandler lets drivers inspect their own infraction record.
type ViolationHandler struct {
	Violations *service.ViolationTracker
}

// NewViolationHandler constructs a ViolationHandler.
func NewViolationHandler(violations *service.ViolationTracker) *ViolationHandler {
	if violations == nil {
		panic("nil service passed to NewViolationHandler")
	}
	return &ViolationHandler{Violations: violations}
}

// ListMine handles GET /v1/violations.  Driver only; includes expired
// entries so the full record is visible.
func (h *ViolationHandler) ListMine(c echo.Context) error {
	driverID := middleware.CallerID(c)
	if driverID == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	list, err := h.Violations.ListForDriver(c.Request().Context(), driverID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// StrikeScore handles GET /v1/violations/score.  Driver only; returns
// the weighted sum of active violations.
func (h *ViolationHandler) StrikeScore(c echo.Context) error {
	driverID := middleware.CallerID(c)
	if driverID == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	score, err := h.Violations.StrikeScore(c.Request().Context(), driverID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"score": score})
}
