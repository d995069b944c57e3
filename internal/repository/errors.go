// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// services and handlers to distinguish between different failure
// scenarios without inspecting SQL driver errors.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own, such as a driver confirming a reservation
// on someone else's trip.
var ErrForbidden = errors.New("forbidden")

// ErrTripNotFound is returned when a trip lookup by id yields no row.
var ErrTripNotFound = errors.New("trip not found")

// ErrReservationNotFound is returned when a reservation lookup by id
// yields no row.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrUserNotFound is returned when a user lookup yields no row.
var ErrUserNotFound = errors.New("user not found")

// ErrVehicleNotFound is returned when a vehicle lookup yields no row.
var ErrVehicleNotFound = errors.New("vehicle not found")

// ErrViolationNotFound is returned when a violation lookup yields no row.
var ErrViolationNotFound = errors.New("violation not found")
