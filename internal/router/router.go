// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/unrumbo/ride-reservation/internal/handler"
	"github.com/unrumbo/ride-reservation/internal/middleware"
	"github.com/unrumbo/ride-reservation/internal/model"
)

// Handlers bundles every handler the router wires up.
type Handlers struct {
	Accounts      *handler.AccountHandler
	Vehicles      *handler.VehicleHandler
	Trips         *handler.TripHandler
	Reservations  *handler.ReservationHandler
	History       *handler.HistoryHandler
	Violations    *handler.ViolationHandler
	Notifications *handler.NotificationHandler
	Ratings       *handler.RatingHandler
}

// RegisterPublic registers routes that require no authentication: the
// health check, account registration and the open trip search.
func RegisterPublic(e *echo.Echo, h Handlers) {
	e.GET("/healthz", handler.Health)

	e.POST("/v1/accounts/drivers", h.Accounts.RegisterDriver)
	e.POST("/v1/accounts/travelers", h.Accounts.RegisterTraveler)

	// Guests may browse trips before registering.
	e.GET("/v1/trips", h.Trips.Search)
	e.GET("/v1/trips/:id", h.Trips.Get)
}

// RegisterDriver registers driver-scoped endpoints under /v1.  All
// routes require a valid JWT and the DRIVER role.
func RegisterDriver(e *echo.Echo, h Handlers, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(string(model.RoleDriver)),
	)
	g.POST("/vehicles", h.Vehicles.Register)
	g.GET("/vehicles", h.Vehicles.ListMine)

	g.POST("/trips", h.Trips.Publish)
	g.GET("/trips/mine", h.Trips.ListMine)
	g.POST("/trips/:id/start", h.Trips.Start)
	g.POST("/trips/:id/finish", h.Trips.Finish)
	g.POST("/trips/:id/cancel", h.Trips.Cancel)

	g.GET("/trips/:id/reservations", h.Reservations.ListForTrip)
	g.GET("/trips/:id/manifest", h.Reservations.Manifest)
	g.POST("/reservations/:id/confirm", h.Reservations.Confirm)
	g.POST("/reservations/:id/reject", h.Reservations.Reject)
	g.GET("/trips/:id/history", h.History.ForTrip)

	g.GET("/violations", h.Violations.ListMine)
	g.GET("/violations/score", h.Violations.StrikeScore)
}

// RegisterTraveler registers traveler-scoped endpoints under /v1.  All
// routes require a valid JWT and the TRAVELER role.
func RegisterTraveler(e *echo.Echo, h Handlers, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(string(model.RoleTraveler)),
	)
	g.POST("/trips/:id/reservations", h.Reservations.Request)
	g.GET("/reservations", h.Reservations.ListMine)
	g.GET("/reservations/active", h.Reservations.ListActive)
}

// RegisterShared registers endpoints open to both roles: cancelling a
// reservation, reading its history, post-trip ratings and the
// notification inbox.
func RegisterShared(e *echo.Echo, h Handlers, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(string(model.RoleDriver), string(model.RoleTraveler)),
	)
	g.POST("/reservations/:id/cancel", h.Reservations.Cancel)
	g.GET("/reservations/:id/history", h.History.ForReservation)

	g.POST("/trips/:id/ratings", h.Ratings.Create)
	g.GET("/users/:id/ratings", h.Ratings.ListForUser)
	g.GET("/users/:id/ratings/average", h.Ratings.Average)

	g.GET("/notifications", h.Notifications.ListMine)
	g.POST("/notifications/:id/read", h.Notifications.MarkRead)
}
