package service

import (
	"context"
	"log"
	"time"

	"github.com/unrumbo/ride-reservation/internal/model"
)

// ViolationTracker records driver infractions and expires them after a
// fixed window.  Expired violations are deactivated, never deleted, so
// the historical record stays queryable.
type ViolationTracker struct {
	store ViolationStore
	ttl   time.Duration
	now   func() time.Time
}

// NewViolationTracker returns a tracker whose violations stop counting
// ttl after they are recorded.
func NewViolationTracker(store ViolationStore, ttl time.Duration) *ViolationTracker {
	return &ViolationTracker{
		store: store,
		ttl:   ttl,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Record creates an active violation with an expiration ttl in the
// future.  tripID and delayMinutes are nil for infractions that are not
// tied to a trip or have no measurable delay.
func (t *ViolationTracker) Record(ctx context.Context, driverID uint64, tripID *uint64, kind model.ViolationKind, delayMinutes *int, description string) (*model.Violation, error) {
	now := t.now()
	v := &model.Violation{
		DriverID:     driverID,
		TripID:       tripID,
		Kind:         kind,
		OccurredAt:   now,
		DelayMinutes: delayMinutes,
		Active:       true,
		ExpiresAt:    now.Add(t.ttl),
		Description:  description,
	}
	if err := t.store.Create(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// ExpireDue deactivates every active violation whose expiration has
// passed.  A failure on one row is logged and the sweep continues; the
// next run picks up whatever was left.  It returns the number of
// violations deactivated.
func (t *ViolationTracker) ExpireDue(ctx context.Context, now time.Time) (int, error) {
	due, err := t.store.ListActiveExpiringBefore(ctx, now)
	if err != nil {
		return 0, err
	}
	expired := 0
	for _, v := range due {
		if err := t.store.Deactivate(ctx, v.ID); err != nil {
			log.Printf("violations: deactivate %d failed: %v", v.ID, err)
			continue
		}
		expired++
	}
	return expired, nil
}

// CountActive returns the number of currently active violations of one
// kind for a driver.
func (t *ViolationTracker) CountActive(ctx context.Context, driverID uint64, kind model.ViolationKind) (int, error) {
	return t.store.CountActiveByKind(ctx, driverID, kind)
}

// StrikeScore sums the strike weights of a driver's active violations.
// Enforcement policy outside this core compares the score against
// suspension thresholds.
func (t *ViolationTracker) StrikeScore(ctx context.Context, driverID uint64) (int, error) {
	active, err := t.store.ListActiveByDriver(ctx, driverID)
	if err != nil {
		return 0, err
	}
	score := 0
	for _, v := range active {
		score += v.Kind.StrikeWeight()
	}
	return score, nil
}

// ListForDriver returns a driver's full violation record, newest first,
// including expired entries.
func (t *ViolationTracker) ListForDriver(ctx context.Context, driverID uint64) ([]model.Violation, error) {
	return t.store.ListByDriver(ctx, driverID)
}
