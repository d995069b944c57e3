// Package queue defines message payloads exchanged over the message broker
// and the publisher and consumer that move them.
package queue

// NotificationEvent is published whenever the engine stores a user
// notification. It carries the full message so downstream consumers can
// deliver or log it without querying the primary database.
type NotificationEvent struct {
	NotificationID uint64 `json:"notification_id"`
	UserID         uint64 `json:"user_id"`
	Kind           string `json:"kind"`
	Message        string `json:"message"`
	TargetURL      string `json:"target_url"`
	CreatedAt      string `json:"created_at"`
}
