package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/unrumbo/ride-reservation/internal/model"
)

// TripRepo provides CRUD and lifecycle queries for trips and their stop
// sequences.  All timestamps are stored in UTC.  Seat-counter mutations
// go exclusively through OccupySeats/ReleaseSeats, which are single
// conditional UPDATE statements so concurrent callers racing for the
// last seat are serialized by the database row lock.
type TripRepo struct {
	db *sql.DB
}

// NewTripRepo returns a new TripRepo bound to the given database.
func NewTripRepo(db *sql.DB) *TripRepo { return &TripRepo{db: db} }

// DB exposes the underlying handle so services can open transactions
// spanning multiple repositories.
func (r *TripRepo) DB() *sql.DB { return r.db }

const tripColumns = `id, driver_id, vehicle_id,
       origin_name, origin_lat, origin_lng,
       destination_name, destination_lat, destination_lng,
       departs_at, price, total_seats, available_seats, state, created_at`

func scanTrip(row interface{ Scan(...interface{}) error }) (*model.Trip, error) {
	var t model.Trip
	var state string
	err := row.Scan(
		&t.ID, &t.DriverID, &t.VehicleID,
		&t.Origin.Name, &t.Origin.Latitude, &t.Origin.Longitude,
		&t.Destination.Name, &t.Destination.Latitude, &t.Destination.Longitude,
		&t.DepartsAt, &t.Price, &t.TotalSeats, &t.AvailableSeats, &state, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.State = model.TripState(state)
	return &t, nil
}

// Create inserts a trip and its stop sequence in one transaction.  The
// generated trip ID is populated on the passed value, and each stop
// receives its trip reference and generated ID.
func (r *TripRepo) Create(ctx context.Context, trip *model.Trip) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	const q = `INSERT INTO trips (driver_id, vehicle_id,
	             origin_name, origin_lat, origin_lng,
	             destination_name, destination_lat, destination_lng,
	             departs_at, price, total_seats, available_seats, state, created_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q,
		trip.DriverID, trip.VehicleID,
		trip.Origin.Name, trip.Origin.Latitude, trip.Origin.Longitude,
		trip.Destination.Name, trip.Destination.Latitude, trip.Destination.Longitude,
		trip.DepartsAt.UTC(), trip.Price, trip.TotalSeats, trip.AvailableSeats,
		string(trip.State), trip.CreatedAt.UTC(),
	)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	trip.ID = uint64(id)
	if len(trip.Stops) > 0 {
		query := `INSERT INTO trip_stops (trip_id, position, name, lat, lng) VALUES `
		args := make([]interface{}, 0, len(trip.Stops)*5)
		for i := range trip.Stops {
			if i > 0 {
				query += ","
			}
			query += "(?, ?, ?, ?, ?)"
			trip.Stops[i].TripID = trip.ID
			trip.Stops[i].Position = uint32(i)
			s := trip.Stops[i]
			args = append(args, s.TripID, s.Position, s.Place.Name, s.Place.Latitude, s.Place.Longitude)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByID returns a trip with its ordered stop sequence.  It returns
// ErrTripNotFound when no trip with the given id exists.
func (r *TripRepo) GetByID(ctx context.Context, id uint64) (*model.Trip, error) {
	const q = `SELECT ` + tripColumns + ` FROM trips WHERE id = ?`
	trip, err := scanTrip(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, ErrTripNotFound
	}
	if err != nil {
		return nil, err
	}
	stops, err := r.listStops(ctx, id)
	if err != nil {
		return nil, err
	}
	trip.Stops = stops
	return trip, nil
}

func (r *TripRepo) listStops(ctx context.Context, tripID uint64) ([]model.Stop, error) {
	const q = `SELECT id, trip_id, position, name, lat, lng
	           FROM trip_stops WHERE trip_id = ? ORDER BY position ASC`
	rows, err := r.db.QueryContext(ctx, q, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var stops []model.Stop
	for rows.Next() {
		var s model.Stop
		if err := rows.Scan(&s.ID, &s.TripID, &s.Position, &s.Place.Name, &s.Place.Latitude, &s.Place.Longitude); err != nil {
			return nil, err
		}
		stops = append(stops, s)
	}
	return stops, rows.Err()
}

// ListByDriver returns every trip published by a driver, newest
// departure first.  Stop sequences are not loaded.
func (r *TripRepo) ListByDriver(ctx context.Context, driverID uint64) ([]model.Trip, error) {
	const q = `SELECT ` + tripColumns + ` FROM trips WHERE driver_id = ? ORDER BY departs_at DESC`
	return r.queryTrips(ctx, q, driverID)
}

// FindByRouteAndDriverInStates returns the driver's trips on the exact
// origin/destination coordinate pair whose state is in the given set.
// The publish flow uses it as a duplicate guard.
func (r *TripRepo) FindByRouteAndDriverInStates(ctx context.Context, origin, destination model.Location, driverID uint64, states []model.TripState) ([]model.Trip, error) {
	if len(states) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(states)), ",")
	q := `SELECT ` + tripColumns + ` FROM trips
	      WHERE driver_id = ? AND origin_lat = ? AND origin_lng = ?
	        AND destination_lat = ? AND destination_lng = ?
	        AND state IN (` + placeholders + `)`
	args := []interface{}{driverID, origin.Latitude, origin.Longitude, destination.Latitude, destination.Longitude}
	for _, s := range states {
		args = append(args, string(s))
	}
	return r.queryTrips(ctx, q, args...)
}

// TripSearchFilter narrows the public trip search.  Zero values are
// skipped, except Origin/Destination which are always required.
type TripSearchFilter struct {
	Origin       model.Location
	Destination  model.Location
	DepartsAfter time.Time
	PriceMin     float64
	PriceMax     float64
}

// Search returns OPEN trips matching the filter, ordered by departure
// ascending.  Matching is by coordinate pair, not place name.
func (r *TripRepo) Search(ctx context.Context, f TripSearchFilter) ([]model.Trip, error) {
	q := `SELECT ` + tripColumns + ` FROM trips
	      WHERE origin_lat = ? AND origin_lng = ?
	        AND destination_lat = ? AND destination_lng = ?
	        AND state = 'OPEN' AND available_seats > 0`
	args := []interface{}{f.Origin.Latitude, f.Origin.Longitude, f.Destination.Latitude, f.Destination.Longitude}
	if !f.DepartsAfter.IsZero() {
		q += ` AND departs_at >= ?`
		args = append(args, f.DepartsAfter.UTC())
	}
	if f.PriceMin > 0 {
		q += ` AND price >= ?`
		args = append(args, f.PriceMin)
	}
	if f.PriceMax > 0 {
		q += ` AND price <= ?`
		args = append(args, f.PriceMax)
	}
	q += ` ORDER BY departs_at ASC`
	return r.queryTrips(ctx, q, args...)
}

// ListOpenPastDeparture returns OPEN trips whose scheduled departure is
// at or before the cutoff.  The auto-start sweep feeds on it.
func (r *TripRepo) ListOpenPastDeparture(ctx context.Context, cutoff time.Time) ([]model.Trip, error) {
	const q = `SELECT ` + tripColumns + ` FROM trips
	           WHERE state = 'OPEN' AND departs_at <= ? ORDER BY departs_at ASC`
	return r.queryTrips(ctx, q, cutoff.UTC())
}

// ListStartedBefore returns STARTED trips whose scheduled departure is
// at or before the cutoff.  The auto-close sweep feeds on it.
func (r *TripRepo) ListStartedBefore(ctx context.Context, cutoff time.Time) ([]model.Trip, error) {
	const q = `SELECT ` + tripColumns + ` FROM trips
	           WHERE state = 'STARTED' AND departs_at <= ? ORDER BY departs_at ASC`
	return r.queryTrips(ctx, q, cutoff.UTC())
}

func (r *TripRepo) queryTrips(ctx context.Context, q string, args ...interface{}) ([]model.Trip, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	trips := make([]model.Trip, 0)
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, *t)
	}
	return trips, rows.Err()
}

// UpdateState moves a trip from one state to another.  The transition
// only applies when the trip is still in the expected state, which is
// the optimistic precondition preventing double-processing between a
// scheduler sweep and a concurrent manual action.  It reports whether
// the transition took effect.
func (r *TripRepo) UpdateState(ctx context.Context, tripID uint64, from, to model.TripState) (bool, error) {
	const q = `UPDATE trips SET state = ? WHERE id = ? AND state = ?`
	result, err := r.db.ExecContext(ctx, q, string(to), tripID, string(from))
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// OccupySeats atomically takes count seats from an OPEN trip.  The
// decrement happens only when enough seats remain and the trip has not
// left OPEN, so exactly one of any set of racing callers wins the last
// seat and a confirmation racing an auto-start loses cleanly.  It
// reports whether the seats were taken; on false the caller decides
// between "no seats" and "trip already started" by re-reading the trip.
func (r *TripRepo) OccupySeats(ctx context.Context, tripID uint64, count uint32) (bool, error) {
	const q = `UPDATE trips SET available_seats = available_seats - ?
	           WHERE id = ? AND state = 'OPEN' AND available_seats >= ?`
	result, err := r.db.ExecContext(ctx, q, count, tripID, count)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ReleaseSeats atomically returns count seats to a trip, clamped so the
// counter never exceeds total_seats.  Callers issue it only when
// reversing a prior successful OccupySeats.
func (r *TripRepo) ReleaseSeats(ctx context.Context, tripID uint64, count uint32) error {
	const q = `UPDATE trips SET available_seats = LEAST(available_seats + ?, total_seats)
	           WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, count, tripID)
	return err
}
