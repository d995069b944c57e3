// Package handler exposes the lifecycle engine over HTTP.  Handlers
// stay thin: they parse the request, delegate to a service and map the
// sentinel error back to a status code.  All business rules live in the
// service layer.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/unrumbo/ride-reservation/internal/repository"
	"github.com/unrumbo/ride-reservation/internal/service"
)

// fail maps a service or repository error onto an HTTP response.
func fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrMissingRequiredData),
		errors.Is(err, service.ErrInvalidRating):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrAlreadyReserved),
		errors.Is(err, service.ErrNoSeatsAvailable),
		errors.Is(err, service.ErrTripAlreadyStarted),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrDuplicateTrip),
		errors.Is(err, service.ErrTripNotFinished),
		errors.Is(err, service.ErrAlreadyRated):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrTripNotFound),
		errors.Is(err, repository.ErrReservationNotFound),
		errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrVehicleNotFound),
		errors.Is(err, repository.ErrViolationNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	default:
		c.Logger().Errorf("internal error: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
