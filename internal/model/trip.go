package model

import "time"

// TripState describes where a trip is in its lifecycle.  A trip is
// published OPEN, departs into STARTED and ends in one of the two
// terminal states.  CANCELLED is reachable from both OPEN and STARTED.
type TripState string

const (
	TripOpen      TripState = "OPEN"      // accepting reservation requests
	TripStarted   TripState = "STARTED"   // departed; no new requests
	TripFinished  TripState = "FINISHED"  // completed normally (terminal)
	TripCancelled TripState = "CANCELLED" // aborted by driver or system (terminal)
)

// Terminal reports whether the state admits no further transitions.
func (s TripState) Terminal() bool {
	return s == TripFinished || s == TripCancelled
}

// Trip represents a driver-published ride as stored in the `trips`
// table.  TotalSeats is copied from the assigned vehicle at publish
// time and never changes afterwards, even if the vehicle record is
// later edited.  AvailableSeats is the only field mutated under
// concurrency; every change to it goes through the seat ledger's
// conditional updates so that 0 <= AvailableSeats <= TotalSeats holds
// at all times.
//
// Fields:
//  ID             – primary key identifier.
//  DriverID       – user who published the trip.
//  VehicleID      – vehicle assigned at publish time.
//  Origin         – departure location.
//  Destination    – arrival location.
//  DepartsAt      – scheduled departure timestamp (UTC).
//  Price          – price per seat.
//  TotalSeats     – seat capacity, immutable after publish.
//  AvailableSeats – seats still open for confirmation.
//  State          – lifecycle state.
//  CreatedAt      – creation timestamp.
type Trip struct {
	ID             uint64    // trips.id
	DriverID       uint64    // trips.driver_id
	VehicleID      uint64    // trips.vehicle_id
	Origin         Location  // trips.origin_* columns
	Destination    Location  // trips.destination_* columns
	Stops          []Stop    // trip_stops rows, ordered by position
	DepartsAt      time.Time // trips.departs_at
	Price          float64   // trips.price
	TotalSeats     uint32    // trips.total_seats
	AvailableSeats uint32    // trips.available_seats
	State          TripState // trips.state
	CreatedAt      time.Time // trips.created_at
}
