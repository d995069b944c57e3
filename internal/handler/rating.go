package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/unrumbo/ride-reservation/internal/middleware"
	"github.com/unrumbo/ride-reservation/internal/service"
)

// RatingHandler exposes post-trip ratings.
type RatingHandler struct {
	Ratings *service.RatingService
}

// NewRatingHandler constructs a RatingHandler.
func NewRatingHandler(ratings *service.RatingService) *RatingHandler {
	if ratings == nil {
		panic("nil service passed to NewRatingHandler")
	}
	return &RatingHandler{Ratings: ratings}
}

type ratingRequest struct {
	RateeID uint64 `json:"ratee_id"`
	Score   int    `json:"score"`
	Comment string `json:"comment"`
}

// Create handles POST /v1/trips/:id/ratings.  The caller rates another
// participant of a finished trip.
func (h *RatingHandler) Create(c echo.Context) error {
	tripID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid trip id"})
	}
	raterID := middleware.CallerID(c)
	if raterID == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req ratingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	rating, err := h.Ratings.Rate(c.Request().Context(), tripID, raterID, req.RateeID, req.Score, req.Comment)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, rating)
}

// ListForUser handles GET /v1/users/:id/ratings.
func (h *RatingHandler) ListForUser(c echo.Context) error {
	userID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	list, err := h.Ratings.ForUser(c.Request().Context(), userID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// Average handles GET /v1/users/:id/ratings/average.
func (h *RatingHandler) Average(c echo.Context) error {
	userID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	avg, err := h.Ratings.AverageForUser(c.Request().Context(), userID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"average": avg})
}
