package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/unrumbo/ride-reservation/internal/model"
	"github.com/unrumbo/ride-reservation/internal/repository"
	"github.com/unrumbo/ride-reservation/internal/utils"
)

// AccountHandler registers driver and traveler accounts.  Session
// issuing lives in the identity service; this engine only needs
// accounts to exist so trips and reservations can reference them.
type AccountHandler struct {
	Users      *repository.UserRepo
	BcryptCost int
}

// NewAccountHandler constructs an AccountHandler.
func NewAccountHandler(users *repository.UserRepo, bcryptCost int) *AccountHandler {
	if users == nil {
		panic("nil repository passed to NewAccountHandler")
	}
	return &AccountHandler{Users: users, BcryptCost: bcryptCost}
}

type registerRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	LicenseNumber string `json:"license_number"` // drivers only
	Phone         string `json:"phone"`          // travelers only
}

// RegisterDriver handles POST /v1/accounts/drivers.
func (h *AccountHandler) RegisterDriver(c echo.Context) error {
	return h.register(c, model.RoleDriver)
}

// RegisterTraveler handles POST /v1/accounts/travelers.
func (h *AccountHandler) RegisterTraveler(c echo.Context) error {
	return h.register(c, model.RoleTraveler)
}

func (h *AccountHandler) register(c echo.Context, role model.Role) error {
	var body registerRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Name == "" || body.Email == "" || body.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, email and password are required"})
	}
	if role == model.RoleDriver && body.LicenseNumber == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "license_number is required"})
	}

	ctx := c.Request().Context()
	if _, err := h.Users.GetByEmail(ctx, body.Email); err == nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return fail(c, err)
	}

	hash, err := utils.HashPassword(body.Password, h.BcryptCost)
	if err != nil {
		return fail(c, err)
	}
	u := &model.User{
		Person: model.Person{
			Name:         body.Name,
			Email:        body.Email,
			PasswordHash: hash,
			CreatedAt:    time.Now().UTC(),
		},
		Role: role,
	}
	switch role {
	case model.RoleDriver:
		u.Driver = &model.DriverProfile{LicenseNumber: body.LicenseNumber}
	case model.RoleTraveler:
		u.Traveler = &model.TravelerProfile{Phone: body.Phone}
	}
	if err := h.Users.Create(ctx, u); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"id":    u.ID,
		"name":  u.Name,
		"email": u.Email,
		"role":  u.Role,
	})
}
