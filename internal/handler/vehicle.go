package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/unrumbo/ride-reservation/internal/middleware"
	"github.com/unrumbo/ride-reservation/internal/model"
	"github.com/unrumbo/ride-reservation/internal/repository"
)

// VehicleHandler manages a driver's vehicles.  A vehicle fixes the seat
// capacity trips are published with.
type VehicleHandler struct {
	Vehicles *repository.VehicleRepo
}

// NewVehicleHandler constructs a VehicleHandler.
func NewVehicleHandler(vehicles *repository.VehicleRepo) *VehicleHandler {
	if vehicles == nil {
		panic("nil repository passed to NewVehicleHandler")
	}
	return &VehicleHandler{Vehicles: vehicles}
}

// Register handles POST /v1/vehicles.  Driver only.
func (h *VehicleHandler) Register(c echo.Context) error {
	driverID := middleware.CallerID(c)
	if driverID == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		Plate string `json:"plate"`
		Brand string `json:"brand"`
		Model string `json:"model"`
		Seats uint32 `json:"seats"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Plate == "" || body.Seats == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "plate and seats are required"})
	}
	v := &model.Vehicle{
		DriverID:  driverID,
		Plate:     body.Plate,
		Brand:     body.Brand,
		ModelName: body.Model,
		Seats:     body.Seats,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.Vehicles.Create(c.Request().Context(), v); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, v)
}

// ListMine handles GET /v1/vehicles.  Driver only.
func (h *VehicleHandler) ListMine(c echo.Context) error {
	driverID := middleware.CallerID(c)
	if driverID == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	vehicles, err := h.Vehicles.ListByDriver(c.Request().Context(), driverID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, vehicles)
}
