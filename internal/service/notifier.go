package service

import (
	"context"
	"log"
	"time"

	"github.com/unrumbo/ride-reservation/internal/model"
	"github.com/unrumbo/ride-reservation/internal/queue"
)

// Notifier informs a user about a lifecycle event with a deep link back
// into the application.  Implementations must never block or fail the
// triggering operation; errors are for logging only.
type Notifier interface {
	Notify(ctx context.Context, userID uint64, kind model.NotificationKind, message, targetURL string) error
}

// DispatchNotifier persists every notification and mirrors it to the
// message queue.  Queue publication is best effort: a broker outage is
// logged and the stored row still reaches the user through the list
// endpoint.
type DispatchNotifier struct {
	store NotificationStore
}

// NewDispatchNotifier returns a notifier over the given store.
func NewDispatchNotifier(store NotificationStore) *DispatchNotifier {
	return &DispatchNotifier{store: store}
}

// Notify stores the notification and publishes a queue event.  Only the
// store failure is returned; callers log and continue either way.
func (d *DispatchNotifier) Notify(ctx context.Context, userID uint64, kind model.NotificationKind, message, targetURL string) error {
	n := &model.Notification{
		UserID:    userID,
		Kind:      kind,
		Message:   message,
		TargetURL: targetURL,
		CreatedAt: time.Now().UTC(),
	}
	if err := d.store.Create(ctx, n); err != nil {
		return err
	}
	ev := queue.NotificationEvent{
		NotificationID: n.ID,
		UserID:         userID,
		Kind:           string(kind),
		Message:        message,
		TargetURL:      targetURL,
		CreatedAt:      n.CreatedAt.Format(time.RFC3339),
	}
	if err := queue.PublishNotification(ctx, ev); err != nil {
		log.Printf("notifier: queue publish failed: %v", err)
	}
	return nil
}
