package model

import "time"

// NotificationKind names the event that produced a notification.
type NotificationKind string

const (
	NotificationReservationRequested NotificationKind = "RESERVATION_REQUESTED"
	NotificationReservationApproved  NotificationKind = "RESERVATION_APPROVED"
	NotificationReservationRejected  NotificationKind = "RESERVATION_REJECTED"
	NotificationReservationCancelled NotificationKind = "RESERVATION_CANCELLED"
	NotificationTripStarted          NotificationKind = "TRIP_STARTED"
	NotificationTripFinished         NotificationKind = "TRIP_FINISHED"
	NotificationTripCancelled        NotificationKind = "TRIP_CANCELLED"
)

// Notification is a stored message for a user, with a deep link back
// into the application.  Delivery beyond persistence and the message
// queue is out of scope for this service.
type Notification struct {
	ID        uint64           // notifications.id
	UserID    uint64           // notifications.user_id
	Kind      NotificationKind // notifications.kind
	Message   string           // notifications.message
	TargetURL string           // notifications.target_url
	Read      bool             // notifications.is_read
	CreatedAt time.Time        // notifications.created_at
}
