package repository

import (
	"context"
	"database/sql"

	"github.com/unrumbo/ride-reservation/internal/model"
)

// VehicleRepo stores driver vehicles.  A trip copies its seat capacity
// from here at publish time; later edits to a vehicle never reach
// already-published trips.
type VehicleRepo struct {
	db *sql.DB
}

// NewVehicleRepo returns a new VehicleRepo bound to the given database.
func NewVehicleRepo(db *sql.DB) *VehicleRepo { return &VehicleRepo{db: db} }

// Create inserts a vehicle and populates its generated ID.
func (r *VehicleRepo) Create(ctx context.Context, v *model.Vehicle) error {
	const q = `INSERT INTO vehicles (driver_id, plate, brand, model, seats, created_at)
	           VALUES (?, ?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q,
		v.DriverID, v.Plate, v.Brand, v.ModelName, v.Seats, v.CreatedAt.UTC())
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

// GetByID returns a vehicle or ErrVehicleNotFound.
func (r *VehicleRepo) GetByID(ctx context.Context, id uint64) (*model.Vehicle, error) {
	const q = `SELECT id, driver_id, plate, brand, model, seats, created_at
	           FROM vehicles WHERE id = ?`
	var v model.Vehicle
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&v.ID, &v.DriverID, &v.Plate, &v.Brand, &v.ModelName, &v.Seats, &v.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrVehicleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ListByDriver returns a driver's registered vehicles.
func (r *VehicleRepo) ListByDriver(ctx context.Context, driverID uint64) ([]model.Vehicle, error) {
	const q = `SELECT id, driver_id, plate, brand, model, seats, created_at
	           FROM vehicles WHERE driver_id = ? ORDER BY created_at ASC`
	rows, err := r.db.QueryContext(ctx, q, driverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Vehicle, 0)
	for rows.Next() {
		var v model.Vehicle
		if err := rows.Scan(&v.ID, &v.DriverID, &v.Plate, &v.Brand, &v.ModelName, &v.Seats, &v.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
