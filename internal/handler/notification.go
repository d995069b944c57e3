package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/unrumbo/ride-reservation/internal/middleware"
	"github.com/unrumbo/ride-reservation/internal/repository"
)

// NotificationHandler serves a user's stored notifications.
type NotificationHandler struct {
	Notifications *repository.NotificationRepo
}

// NewNotificationHandler constructs a NotificationHandler.
func NewNotificationHandler(notifications *repository.NotificationRepo) *NotificationHandler {
	if notifications == nil {
		panic("nil repository passed to NewNotificationHandler")
	}
	return &NotificationHandler{Notifications: notifications}
}

// ListMine handles GET /v1/notifications.
func (h *NotificationHandler) ListMine(c echo.Context) error {
	userID := middleware.CallerID(c)
	if userID == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	list, err := h.Notifications.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// MarkRead handles POST /v1/notifications/:id/read.  Marking another
// user's notification is a silent no-op because the update is filtered
// by owner.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	userID := middleware.CallerID(c)
	if userID == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid notification id"})
	}
	if err := h.Notifications.MarkRead(c.Request().Context(), userID, id); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
