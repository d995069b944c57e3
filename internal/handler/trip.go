package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/unrumbo/ride-reservation/internal/middleware"
	"github.com/unrumbo/ride-reservation/internal/model"
	"github.com/unrumbo/ride-reservation/internal/repository"
	"github.com/unrumbo/ride-reservation/internal/service"
)

// TripHandler exposes the trip lifecycle: publish, search and the
// driver's manual start/finish/cancel transitions.
type TripHandler struct {
	Trips *service.TripService
}

// NewTripHandler constructs a TripHandler.
func NewTripHandler(trips *service.TripService) *TripHandler {
	if trips == nil {
		panic("nil service passed to NewTripHandler")
	}
	return &TripHandler{Trips: trips}
}

type locationBody struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (b locationBody) location() model.Location {
	return model.Location{Name: b.Name, Latitude: b.Latitude, Longitude: b.Longitude}
}

// Publish handles POST /v1/trips.  Driver only.
func (h *TripHandler) Publish(c echo.Context) error {
	driverID := middleware.CallerID(c)
	if driverID == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		VehicleID   uint64         `json:"vehicle_id"`
		Origin      locationBody   `json:"origin"`
		Destination locationBody   `json:"destination"`
		Stops       []locationBody `json:"stops"`
		DepartsAt   time.Time      `json:"departs_at"`
		Price       float64        `json:"price"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	stops := make([]model.Stop, 0, len(body.Stops))
	for i, s := range body.Stops {
		stops = append(stops, model.Stop{Position: uint32(i), Place: s.location()})
	}
	trip, err := h.Trips.Publish(c.Request().Context(), service.PublishInput{
		DriverID:    driverID,
		VehicleID:   body.VehicleID,
		Origin:      body.Origin.location(),
		Destination: body.Destination.location(),
		Stops:       stops,
		DepartsAt:   body.DepartsAt,
		Price:       body.Price,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, trip)
}

// Get handles GET /v1/trips/:id.
func (h *TripHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid trip id"})
	}
	trip, err := h.Trips.GetByID(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, trip)
}

// Search handles GET /v1/trips.  Origin and destination coordinates are
// required; departure and price bounds are optional.
func (h *TripHandler) Search(c echo.Context) error {
	f := repository.TripSearchFilter{
		Origin: model.Location{
			Latitude:  queryFloat(c, "origin_lat"),
			Longitude: queryFloat(c, "origin_lng"),
		},
		Destination: model.Location{
			Latitude:  queryFloat(c, "destination_lat"),
			Longitude: queryFloat(c, "destination_lng"),
		},
		PriceMin: queryFloat(c, "price_min"),
		PriceMax: queryFloat(c, "price_max"),
	}
	if raw := c.QueryParam("departs_after"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid departs_after"})
		}
		f.DepartsAfter = t
	}
	trips, err := h.Trips.Search(c.Request().Context(), f)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, trips)
}

// ListMine handles GET /v1/trips/mine.  Driver only.
func (h *TripHandler) ListMine(c echo.Context) error {
	driverID := middleware.CallerID(c)
	if driverID == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	trips, err := h.Trips.ListByDriver(c.Request().Context(), driverID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, trips)
}

// Start handles POST /v1/trips/:id/start.  Driver only.
func (h *TripHandler) Start(c echo.Context) error {
	return h.transition(c, h.Trips.Start)
}

// Finish handles POST /v1/trips/:id/finish.  Driver only.
func (h *TripHandler) Finish(c echo.Context) error {
	return h.transition(c, h.Trips.Finish)
}

// Cancel handles POST /v1/trips/:id/cancel.  Driver only.
func (h *TripHandler) Cancel(c echo.Context) error {
	return h.transition(c, h.Trips.Cancel)
}

func (h *TripHandler) transition(c echo.Context, fn func(ctx context.Context, tripID, driverID uint64) error) error {
	driverID := middleware.CallerID(c)
	if driverID == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid trip id"})
	}
	if err := fn(c.Request().Context(), id, driverID); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func queryFloat(c echo.Context, name string) float64 {
	v, _ := strconv.ParseFloat(c.QueryParam(name), 64)
	return v
}
