package model

import "time"

// ReservationState describes a traveler's claim on a trip.  PENDING is
// the only non-terminal entry state; every other state is final once
// reached.
type ReservationState string

const (
	ReservationPending   ReservationState = "PENDING"   // awaiting driver decision
	ReservationConfirmed ReservationState = "CONFIRMED" // seat occupied
	ReservationRejected  ReservationState = "REJECTED"  // driver declined (terminal)
	ReservationCancelled ReservationState = "CANCELLED" // traveler/driver/system cancelled (terminal)
	ReservationCompleted ReservationState = "COMPLETED" // trip finished normally (terminal)
)

// Live reports whether the reservation can still move.  PENDING and
// CONFIRMED are the two live states; at most one live reservation may
// exist per (trip, traveler) pair.
func (s ReservationState) Live() bool {
	return s == ReservationPending || s == ReservationConfirmed
}

// Reservation is one traveler's claim on one trip.  A PENDING
// reservation does not hold a seat; capacity is consumed only at
// confirmation time.
//
// Fields:
//  ID              – primary key identifier.
//  TripID          – trip being reserved.
//  TravelerID      – traveler requesting the seat.
//  State           – reservation state machine position.
//  RejectionReason – set only when State is REJECTED.
//  RequestedAt     – when the traveler asked for the seat.
//  UpdatedAt       – last state change timestamp.
type Reservation struct {
	ID              uint64           // reservations.id
	TripID          uint64           // reservations.trip_id
	TravelerID      uint64           // reservations.traveler_id
	State           ReservationState // reservations.state
	RejectionReason *string          // reservations.rejection_reason (nullable)
	RequestedAt     time.Time        // reservations.requested_at
	UpdatedAt       time.Time        // reservations.updated_at
}
