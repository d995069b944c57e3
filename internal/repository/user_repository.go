package repository

import (
	"context"
	"database/sql"

	"github.com/unrumbo/ride-reservation/internal/model"
)

// UserRepo stores driver and traveler accounts in a single table with a
// role tag and nullable role-specific columns.  Scanning dispatches on
// the tag to build the matching payload variant.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo returns a new UserRepo bound to the given database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

const userColumns = `id, name, email, password_hash, role, license_number, phone, created_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*model.User, error) {
	var u model.User
	var role string
	var license, phone sql.NullString
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &license, &phone, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	u.Role = model.Role(role)
	switch u.Role {
	case model.RoleDriver:
		u.Driver = &model.DriverProfile{LicenseNumber: license.String}
	case model.RoleTraveler:
		u.Traveler = &model.TravelerProfile{Phone: phone.String}
	}
	return &u, nil
}

// Create inserts a user with its role payload and populates the
// generated ID.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	var license, phone *string
	if u.Driver != nil {
		license = &u.Driver.LicenseNumber
	}
	if u.Traveler != nil {
		phone = &u.Traveler.Phone
	}
	const q = `INSERT INTO users (name, email, password_hash, role, license_number, phone, created_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q,
		u.Name, u.Email, u.PasswordHash, string(u.Role), license, phone, u.CreatedAt.UTC())
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	return nil
}

// GetByID returns a user or ErrUserNotFound.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	u, err := scanUser(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	return u, err
}

// GetByEmail returns a user or ErrUserNotFound.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	u, err := scanUser(r.db.QueryRowContext(ctx, q, email))
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	return u, err
}

// GetDriver returns the user only when the role tag is DRIVER;
// otherwise ErrUserNotFound, so callers cannot accidentally treat a
// traveler as a trip owner.
func (r *UserRepo) GetDriver(ctx context.Context, id uint64) (*model.User, error) {
	u, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !u.IsDriver() {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// GetTraveler returns the user only when the role tag is TRAVELER.
func (r *UserRepo) GetTraveler(ctx context.Context, id uint64) (*model.User, error) {
	u, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !u.IsTraveler() {
		return nil, ErrUserNotFound
	}
	return u, nil
}
