package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/unrumbo/ride-reservation/internal/middleware"
	"github.com/unrumbo/ride-reservation/internal/service"
)

// ReservationHandler exposes the reservation state machine to travelers
// and drivers.
type ReservationHandler struct {
	Reservations *service.ReservationManager
}

// NewReservationHandler constructs a ReservationHandler.
func NewReservationHandler(reservations *service.ReservationManager) *ReservationHandler {
	if reservations == nil {
		panic("nil service passed to NewReservationHandler")
	}
	return &ReservationHandler{Reservations: reservations}
}

// Request handles POST /v1/trips/:id/reservations.  Traveler only.
func (h *ReservationHandler) Request(c echo.Context) error {
	travelerID := middleware.CallerID(c)
	if travelerID == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	tripID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid trip id"})
	}
	res, err := h.Reservations.Request(c.Request().Context(), tripID, travelerID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

// Confirm handles POST /v1/reservations/:id/confirm.  Driver only.
func (h *ReservationHandler) Confirm(c echo.Context) error {
	driverID := middleware.CallerID(c)
	if driverID == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	if err := h.Reservations.Confirm(c.Request().Context(), id, driverID); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Reject handles POST /v1/reservations/:id/reject.  Driver only; a
// reason is mandatory.
func (h *ReservationHandler) Reject(c echo.Context) error {
	driverID := middleware.CallerID(c)
	if driverID == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var body struct {
		Reason string `json:"reason"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := h.Reservations.Reject(c.Request().Context(), id, driverID, body.Reason); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Cancel handles POST /v1/reservations/:id/cancel.  The reservation's
// traveler and the trip's driver may both cancel.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	actorID := middleware.CallerID(c)
	if actorID == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	if err := h.Reservations.Cancel(c.Request().Context(), id, actorID); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListForTrip handles GET /v1/trips/:id/reservations.  Driver only.
func (h *ReservationHandler) ListForTrip(c echo.Context) error {
	driverID := middleware.CallerID(c)
	if driverID == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	tripID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid trip id"})
	}
	list, err := h.Reservations.ForTrip(c.Request().Context(), tripID, driverID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// Manifest handles GET /v1/trips/:id/manifest, the confirmed traveler
// list a driver departs with.  Driver only.
func (h *ReservationHandler) Manifest(c echo.Context) error {
	driverID := middleware.CallerID(c)
	if driverID == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	tripID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid trip id"})
	}
	list, err := h.Reservations.ManifestForTrip(c.Request().Context(), tripID, driverID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// ListMine handles GET /v1/reservations.  Traveler only; returns the
// full record newest first.
func (h *ReservationHandler) ListMine(c echo.Context) error {
	travelerID := middleware.CallerID(c)
	if travelerID == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	list, err := h.Reservations.ForTraveler(c.Request().Context(), travelerID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// ListActive handles GET /v1/reservations/active.  Traveler only;
// returns pending, confirmed and rejected reservations ordered by the
// trip's departure.
func (h *ReservationHandler) ListActive(c echo.Context) error {
	travelerID := middleware.CallerID(c)
	if travelerID == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	list, err := h.Reservations.ActiveForTraveler(c.Request().Context(), travelerID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}
