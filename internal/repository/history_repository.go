package repository

import (
	"context"
	"database/sql"

	"github.com/unrumbo/ride-reservation/internal/model"
)

// HistoryRepo is the append-only store for reservation audit records.
// Rows are written once and never updated or deleted; event_at is the
// ordering key within a reservation's history.
type HistoryRepo struct {
	db *sql.DB
}

// NewHistoryRepo returns a new HistoryRepo bound to the given database.
func NewHistoryRepo(db *sql.DB) *HistoryRepo { return &HistoryRepo{db: db} }

// Append writes one audit record and populates its generated ID.
func (r *HistoryRepo) Append(ctx context.Context, e *model.HistoryEntry) error {
	const q = `INSERT INTO reservation_history
	           (reservation_id, trip_id, traveler_id, actor_id, previous_state, new_state, event_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q,
		e.ReservationID, e.TripID, e.TravelerID, e.ActorID,
		string(e.PreviousState), string(e.NewState), e.EventAt.UTC())
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	return nil
}

// ListByReservation returns a reservation's audit trail in event order.
// Ties on event_at fall back to insertion order so the logical
// transition sequence is preserved.
func (r *HistoryRepo) ListByReservation(ctx context.Context, reservationID uint64) ([]model.HistoryEntry, error) {
	const q = `SELECT id, reservation_id, trip_id, traveler_id, actor_id, previous_state, new_state, event_at
	           FROM reservation_history WHERE reservation_id = ? ORDER BY event_at ASC, id ASC`
	return r.queryEntries(ctx, q, reservationID)
}

// ListByTrip returns every audit record touching a trip, oldest first.
func (r *HistoryRepo) ListByTrip(ctx context.Context, tripID uint64) ([]model.HistoryEntry, error) {
	const q = `SELECT id, reservation_id, trip_id, traveler_id, actor_id, previous_state, new_state, event_at
	           FROM reservation_history WHERE trip_id = ? ORDER BY event_at ASC, id ASC`
	return r.queryEntries(ctx, q, tripID)
}

func (r *HistoryRepo) queryEntries(ctx context.Context, q string, args ...interface{}) ([]model.HistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := make([]model.HistoryEntry, 0)
	for rows.Next() {
		var e model.HistoryEntry
		var prev, next string
		if err := rows.Scan(&e.ID, &e.ReservationID, &e.TripID, &e.TravelerID, &e.ActorID, &prev, &next, &e.EventAt); err != nil {
			return nil, err
		}
		e.PreviousState = model.ReservationState(prev)
		e.NewState = model.ReservationState(next)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
