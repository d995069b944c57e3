package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/unrumbo/ride-reservation/internal/model"
)

// ViolationRepo stores driver infractions.  Violations are never
// deleted; expiry flips the active flag off so the historical record
// survives for support queries.
type ViolationRepo struct {
	db *sql.DB
}

// NewViolationRepo returns a new ViolationRepo bound to the given database.
func NewViolationRepo(db *sql.DB) *ViolationRepo { return &ViolationRepo{db: db} }

const violationColumns = `id, driver_id, trip_id, kind, occurred_at, delay_minutes, active, expires_at, description`

func scanViolation(row interface{ Scan(...interface{}) error }) (*model.Violation, error) {
	var v model.Violation
	var kind string
	var tripID sql.NullInt64
	var delay sql.NullInt64
	err := row.Scan(&v.ID, &v.DriverID, &tripID, &kind, &v.OccurredAt, &delay, &v.Active, &v.ExpiresAt, &v.Description)
	if err != nil {
		return nil, err
	}
	v.Kind = model.ViolationKind(kind)
	if tripID.Valid {
		id := uint64(tripID.Int64)
		v.TripID = &id
	}
	if delay.Valid {
		d := int(delay.Int64)
		v.DelayMinutes = &d
	}
	return &v, nil
}

// Create inserts a violation and populates its generated ID.
func (r *ViolationRepo) Create(ctx context.Context, v *model.Violation) error {
	const q = `INSERT INTO driver_violations
	           (driver_id, trip_id, kind, occurred_at, delay_minutes, active, expires_at, description)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q,
		v.DriverID, v.TripID, string(v.Kind), v.OccurredAt.UTC(), v.DelayMinutes,
		v.Active, v.ExpiresAt.UTC(), v.Description)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	v.ID = uint64(id)
	return nil
}

// GetByID returns a violation or ErrViolationNotFound.
func (r *ViolationRepo) GetByID(ctx context.Context, id uint64) (*model.Violation, error) {
	const q = `SELECT ` + violationColumns + ` FROM driver_violations WHERE id = ?`
	v, err := scanViolation(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, ErrViolationNotFound
	}
	return v, err
}

// ListActiveByDriver returns the driver's violations that still count
// toward enforcement.
func (r *ViolationRepo) ListActiveByDriver(ctx context.Context, driverID uint64) ([]model.Violation, error) {
	const q = `SELECT ` + violationColumns + ` FROM driver_violations
	           WHERE driver_id = ? AND active = TRUE`
	return r.queryViolations(ctx, q, driverID)
}

// ListActiveExpiringBefore returns active violations whose expiration
// has passed the given instant.  The expiry sweep deactivates them.
func (r *ViolationRepo) ListActiveExpiringBefore(ctx context.Context, cutoff time.Time) ([]model.Violation, error) {
	const q = `SELECT ` + violationColumns + ` FROM driver_violations
	           WHERE active = TRUE AND expires_at < ?`
	return r.queryViolations(ctx, q, cutoff.UTC())
}

// CountActiveByKind returns how many active violations of one kind a
// driver has.  Enforcement policy outside this core compares it to
// suspension thresholds.
func (r *ViolationRepo) CountActiveByKind(ctx context.Context, driverID uint64, kind model.ViolationKind) (int, error) {
	const q = `SELECT COUNT(*) FROM driver_violations
	           WHERE driver_id = ? AND kind = ? AND active = TRUE`
	var n int
	err := r.db.QueryRowContext(ctx, q, driverID, string(kind)).Scan(&n)
	return n, err
}

// ListByDriver returns a driver's full violation record, newest first,
// including expired entries.
func (r *ViolationRepo) ListByDriver(ctx context.Context, driverID uint64) ([]model.Violation, error) {
	const q = `SELECT ` + violationColumns + ` FROM driver_violations
	           WHERE driver_id = ? ORDER BY occurred_at DESC`
	return r.queryViolations(ctx, q, driverID)
}

// Deactivate flips a violation's active flag off.  The row itself is
// preserved.
func (r *ViolationRepo) Deactivate(ctx context.Context, id uint64) error {
	const q = `UPDATE driver_violations SET active = FALSE WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}

func (r *ViolationRepo) queryViolations(ctx context.Context, q string, args ...interface{}) ([]model.Violation, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Violation, 0)
	for rows.Next() {
		v, err := scanViolation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}
