package model

import "time"

// SystemActorID marks history entries produced by the background
// sweeps rather than a person (auto-start, auto-close).
const SystemActorID uint64 = 0

// HistoryEntry is an immutable audit record written on every
// reservation state change.  Entries are never updated or deleted;
// EventAt is the ordering key within a single reservation's history.
//
// Fields:
//  ID            – primary key identifier.
//  ReservationID – reservation whose state changed.
//  TripID        – trip the reservation belongs to.
//  TravelerID    – traveler on the reservation.
//  ActorID       – user who caused the change (SystemActorID for sweeps).
//  PreviousState – state before the transition (empty on creation).
//  NewState      – state after the transition.
//  EventAt       – when the transition happened.
type HistoryEntry struct {
	ID            uint64           // reservation_history.id
	ReservationID uint64           // reservation_history.reservation_id
	TripID        uint64           // reservation_history.trip_id
	TravelerID    uint64           // reservation_history.traveler_id
	ActorID       uint64           // reservation_history.actor_id
	PreviousState ReservationState // reservation_history.previous_state (empty on first entry)
	NewState      ReservationState // reservation_history.new_state
	EventAt       time.Time        // reservation_history.event_at
}
