package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/unrumbo/ride-reservation/internal/model"
)

// ReservationRepo provides persistence for reservations.  State
// transitions go through UpdateState, a conditional UPDATE carrying the
// expected current state, so two actors racing on the same reservation
// see exactly one winner.  All timestamps are stored in UTC.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationColumns = `id, trip_id, traveler_id, state, rejection_reason, requested_at, updated_at`

func scanReservation(row interface{ Scan(...interface{}) error }) (*model.Reservation, error) {
	var res model.Reservation
	var state string
	var reason sql.NullString
	err := row.Scan(&res.ID, &res.TripID, &res.TravelerID, &state, &reason, &res.RequestedAt, &res.UpdatedAt)
	if err != nil {
		return nil, err
	}
	res.State = model.ReservationState(state)
	if reason.Valid {
		v := reason.String
		res.RejectionReason = &v
	}
	return &res, nil
}

// Create inserts a new reservation and populates its generated ID.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	const q = `INSERT INTO reservations (trip_id, traveler_id, state, requested_at, updated_at)
	           VALUES (?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q,
		res.TripID, res.TravelerID, string(res.State), res.RequestedAt.UTC(), res.UpdatedAt.UTC())
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	return nil
}

// GetByID returns a reservation or ErrReservationNotFound.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	res, err := scanReservation(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, ErrReservationNotFound
	}
	return res, err
}

// FindLiveByTripAndTraveler returns the traveler's PENDING or CONFIRMED
// reservation on the trip, or nil when none exists.  The invariant of
// at most one live reservation per (trip, traveler) pair makes a single
// row sufficient.
func (r *ReservationRepo) FindLiveByTripAndTraveler(ctx context.Context, tripID, travelerID uint64) (*model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations
	           WHERE trip_id = ? AND traveler_id = ? AND state IN ('PENDING', 'CONFIRMED')
	           LIMIT 1`
	res, err := scanReservation(r.db.QueryRowContext(ctx, q, tripID, travelerID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return res, err
}

// UpdateState flips a reservation from one state to another, optionally
// recording a rejection reason.  The update applies only while the
// reservation is still in the expected state and reports whether it
// took effect; callers treat false as a lost optimistic race.
func (r *ReservationRepo) UpdateState(ctx context.Context, id uint64, from, to model.ReservationState, reason *string) (bool, error) {
	const q = `UPDATE reservations
	           SET state = ?, rejection_reason = COALESCE(?, rejection_reason), updated_at = ?
	           WHERE id = ? AND state = ?`
	result, err := r.db.ExecContext(ctx, q, string(to), reason, time.Now().UTC(), id, string(from))
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListByTrip returns every reservation on a trip ordered by request
// time ascending, the order drivers review them in.
func (r *ReservationRepo) ListByTrip(ctx context.Context, tripID uint64) ([]model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations
	           WHERE trip_id = ? ORDER BY requested_at ASC`
	return r.queryReservations(ctx, q, tripID)
}

// ListByTraveler returns a traveler's reservations newest request first.
func (r *ReservationRepo) ListByTraveler(ctx context.Context, travelerID uint64) ([]model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations
	           WHERE traveler_id = ? ORDER BY requested_at DESC`
	return r.queryReservations(ctx, q, travelerID)
}

// ListByTravelerInStates returns a traveler's reservations restricted
// to the given states, ordered by the referenced trip's departure
// ascending so upcoming items surface chronologically rather than by
// request order.
func (r *ReservationRepo) ListByTravelerInStates(ctx context.Context, travelerID uint64, states []model.ReservationState) ([]model.Reservation, error) {
	if len(states) == 0 {
		return []model.Reservation{}, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(states)), ",")
	q := `SELECT r.id, r.trip_id, r.traveler_id, r.state, r.rejection_reason, r.requested_at, r.updated_at
	      FROM reservations r
	      JOIN trips t ON t.id = r.trip_id
	      WHERE r.traveler_id = ? AND r.state IN (` + placeholders + `)
	      ORDER BY t.departs_at ASC`
	args := []interface{}{travelerID}
	for _, s := range states {
		args = append(args, string(s))
	}
	return r.queryReservations(ctx, q, args...)
}

// ListConfirmedByTrip returns the traveler manifest: every CONFIRMED
// reservation on the trip, ordered by request time ascending.
func (r *ReservationRepo) ListConfirmedByTrip(ctx context.Context, tripID uint64) ([]model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations
	           WHERE trip_id = ? AND state = 'CONFIRMED' ORDER BY requested_at ASC`
	return r.queryReservations(ctx, q, tripID)
}

// ListLiveByTrip returns the PENDING and CONFIRMED reservations on a
// trip.  The lifecycle cascades (finish, cancel, auto-close) walk this
// list to settle every outstanding claim.
func (r *ReservationRepo) ListLiveByTrip(ctx context.Context, tripID uint64) ([]model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations
	           WHERE trip_id = ? AND state IN ('PENDING', 'CONFIRMED') ORDER BY requested_at ASC`
	return r.queryReservations(ctx, q, tripID)
}

func (r *ReservationRepo) queryReservations(ctx context.Context, q string, args ...interface{}) ([]model.Reservation, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}
