// Package scheduler drives the background sweeps that keep the trip
// lifecycle moving when drivers forget to: auto-starting late trips,
// auto-closing forgotten ones and expiring violations.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/unrumbo/ride-reservation/internal/service"
)

const (
	autoStartEvery = 5 * time.Minute
	expireEvery    = time.Hour
	lockTTL        = 4 * time.Minute
)

// Scheduler owns the sweep goroutines.  Every sweep is idempotent on
// the service side, so overlapping runs across replicas are harmless;
// the optional Redis lock only avoids redundant work.  A nil Redis
// client disables locking and the sweeps run on every replica.
type Scheduler struct {
	trips      *service.TripService
	violations *service.ViolationTracker
	rdb        *redis.Client
	now        func() time.Time
}

// New returns a scheduler over the given services.  rdb may be nil.
func New(trips *service.TripService, violations *service.ViolationTracker, rdb *redis.Client) *Scheduler {
	return &Scheduler{
		trips:      trips,
		violations: violations,
		rdb:        rdb,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Start launches the sweep goroutines and returns immediately.  They
// run until ctx is cancelled.  Auto-start fires every five minutes,
// auto-close on every half hour boundary and violation expiry hourly.
func (s *Scheduler) Start(ctx context.Context) {
	go s.every(ctx, autoStartEvery, "auto-start", s.runAutoStart)
	go s.onHalfHour(ctx, "auto-close", s.runAutoClose)
	go s.every(ctx, expireEvery, "expire-violations", s.runExpire)
}

// every runs fn on a fixed ticker.  The first run happens after one
// full interval so a restart does not immediately re-sweep.
func (s *Scheduler) every(ctx context.Context, interval time.Duration, name string, fn func(context.Context) error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.run(ctx, name, fn)
		}
	}
}

// onHalfHour runs fn at every :00 and :30 wall clock boundary.
func (s *Scheduler) onHalfHour(ctx context.Context, name string, fn func(context.Context) error) {
	for {
		wait := nextHalfHour(s.now()).Sub(s.now())
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			s.run(ctx, name, fn)
		}
	}
}

// nextHalfHour returns the first :00 or :30 boundary strictly after t.
func nextHalfHour(t time.Time) time.Time {
	truncated := t.Truncate(30 * time.Minute)
	return truncated.Add(30 * time.Minute)
}

// run executes one sweep behind the Redis lock, recovering panics so a
// bad sweep never takes the server down.
func (s *Scheduler) run(ctx context.Context, name string, fn func(context.Context) error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("scheduler: %s panicked: %v", name, r)
		}
	}()
	if !s.acquireLock(ctx, name) {
		return
	}
	if err := fn(ctx); err != nil {
		log.Printf("scheduler: %s sweep failed: %v", name, err)
	}
}

// acquireLock takes a short-lived SETNX lock so only one replica runs a
// given sweep per tick.  The lock is never released explicitly; it
// expires on its own, which also throttles retries after a crash.
func (s *Scheduler) acquireLock(ctx context.Context, name string) bool {
	if s.rdb == nil {
		return true
	}
	ok, err := s.rdb.SetNX(ctx, "sched:lock:"+name, s.now().Format(time.RFC3339), lockTTL).Result()
	if err != nil {
		log.Printf("scheduler: %s lock check failed, running unlocked: %v", name, err)
		return true
	}
	return ok
}

func (s *Scheduler) runAutoStart(ctx context.Context) error {
	n, err := s.trips.AutoStartLateTrips(ctx, s.now())
	if err != nil {
		return err
	}
	if n > 0 {
		log.Printf("scheduler: auto-started %d late trips", n)
	}
	return nil
}

func (s *Scheduler) runAutoClose(ctx context.Context) error {
	n, err := s.trips.AutoCloseForgottenTrips(ctx, s.now())
	if err != nil {
		return err
	}
	if n > 0 {
		log.Printf("scheduler: auto-closed %d forgotten trips", n)
	}
	return nil
}

func (s *Scheduler) runExpire(ctx context.Context) error {
	n, err := s.violations.ExpireDue(ctx, s.now())
	if err != nil {
		return err
	}
	if n > 0 {
		log.Printf("scheduler: expired %d violations", n)
	}
	return nil
}
