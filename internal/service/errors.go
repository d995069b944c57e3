// Package service implements the trip and reservation lifecycle engine.
// Services validate inputs, enforce the state machines and orchestrate
// repository calls; no SQL lives here.  Business failures are sentinel
// errors so handlers can map them to responses with errors.Is.
package service

import "errors"

// ErrAlreadyReserved is returned when a traveler already holds a
// PENDING or CONFIRMED reservation on the trip.
var ErrAlreadyReserved = errors.New("traveler already has an active reservation on this trip")

// ErrNoSeatsAvailable is returned when the seat ledger denies an
// occupation at confirmation time.
var ErrNoSeatsAvailable = errors.New("no seats available on this trip")

// ErrTripAlreadyStarted is returned when a booking or confirmation is
// attempted after the trip left the OPEN state.
var ErrTripAlreadyStarted = errors.New("trip has already started")

// ErrMissingRequiredData is returned when a required reference or field
// is absent on a request.
var ErrMissingRequiredData = errors.New("missing required data")

// ErrInvalidTransition is returned when a reservation or trip is not in
// a state that admits the requested transition, including when an
// optimistic precondition check loses a race.
var ErrInvalidTransition = errors.New("state does not admit this transition")

// ErrDuplicateTrip is returned when a driver publishes a second active
// trip on the same origin/destination pair.
var ErrDuplicateTrip = errors.New("driver already has an active trip on this route")

// ErrInvalidRating is returned when a rating's score is out of range or
// a user tries to rate themselves.
var ErrInvalidRating = errors.New("rating must target another user with a score from 1 to 5")

// ErrTripNotFinished is returned when a rating is submitted before the
// trip reaches FINISHED.
var ErrTripNotFinished = errors.New("trip is not finished yet")

// ErrAlreadyRated is returned when a user rates the same counterpart a
// second time for one trip.
var ErrAlreadyRated = errors.New("counterpart already rated for this trip")
