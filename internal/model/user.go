package model

import "time"

// Role tags a user as either a driver or a traveler.  Driver and
// traveler records share the same identity and credential fields; the
// role-specific payload hangs off the tagged User value instead of a
// joined subclass table, and lookups dispatch on the tag.
type Role string

const (
	RoleDriver   Role = "DRIVER"
	RoleTraveler Role = "TRAVELER"
)

// Person holds the identity fields common to every account.
//
// Fields:
//  ID           – primary key identifier.
//  Name         – display name.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  CreatedAt    – timestamp of creation.
type Person struct {
	ID           uint64    // users.id
	Name         string    // users.name
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	CreatedAt    time.Time // users.created_at
}

// DriverProfile is the driver-specific payload.
type DriverProfile struct {
	LicenseNumber string // users.license_number
}

// TravelerProfile is the traveler-specific payload.  Phone is used by
// drivers to coordinate pickup.
type TravelerProfile struct {
	Phone string // users.phone
}

// User is the sum type over Person plus a role payload.  Exactly one
// of Driver or Traveler is non-nil, matching Role.
type User struct {
	Person
	Role     Role             // users.role, the dispatch tag
	Driver   *DriverProfile   // set when Role == RoleDriver
	Traveler *TravelerProfile // set when Role == RoleTraveler
}

// IsDriver reports whether the user may publish trips and decide
// reservations.
func (u *User) IsDriver() bool { return u.Role == RoleDriver }

// IsTraveler reports whether the user may request seats.
func (u *User) IsTraveler() bool { return u.Role == RoleTraveler }
