package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/unrumbo/ride-reservation/internal/model"
	"github.com/unrumbo/ride-reservation/internal/repository"
)

// ReservationManager runs the reservation state machine:
//
//	PENDING --confirm--> CONFIRMED --trip finishes--> COMPLETED
//	PENDING --reject----> REJECTED
//	PENDING|CONFIRMED --cancel--> CANCELLED
//
// Seat capacity is consumed at confirmation, not at request, so a
// PENDING reservation does not guarantee a seat.  Every transition
// appends a history entry and notifies the counterpart; notification
// failures are logged and never block the transition.
type ReservationManager struct {
	trips        TripStore
	reservations ReservationStore
	users        UserStore
	ledger       *SeatLedger
	history      *HistoryRecorder
	notifier     Notifier
	now          func() time.Time
}

// NewReservationManager wires the manager with its collaborators.
func NewReservationManager(trips TripStore, reservations ReservationStore, users UserStore, ledger *SeatLedger, history *HistoryRecorder, notifier Notifier) *ReservationManager {
	return &ReservationManager{
		trips:        trips,
		reservations: reservations,
		users:        users,
		ledger:       ledger,
		history:      history,
		notifier:     notifier,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Request creates a PENDING reservation for the traveler on the trip.
// It fails with ErrMissingRequiredData when either reference is absent,
// ErrTripAlreadyStarted when the trip has left OPEN, and
// ErrAlreadyReserved when the traveler already holds a live reservation
// on the trip.  No seat is consumed here.
func (m *ReservationManager) Request(ctx context.Context, tripID, travelerID uint64) (*model.Reservation, error) {
	if tripID == 0 || travelerID == 0 {
		return nil, ErrMissingRequiredData
	}
	traveler, err := m.users.GetTraveler(ctx, travelerID)
	if err != nil {
		return nil, err
	}
	trip, err := m.trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if trip.State != model.TripOpen {
		return nil, ErrTripAlreadyStarted
	}
	existing, err := m.reservations.FindLiveByTripAndTraveler(ctx, tripID, travelerID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyReserved
	}
	now := m.now()
	res := &model.Reservation{
		TripID:      tripID,
		TravelerID:  travelerID,
		State:       model.ReservationPending,
		RequestedAt: now,
		UpdatedAt:   now,
	}
	if err := m.reservations.Create(ctx, res); err != nil {
		return nil, err
	}
	if err := m.history.Record(ctx, res, "", travelerID); err != nil {
		return nil, err
	}
	m.notify(ctx, trip.DriverID, model.NotificationReservationRequested,
		fmt.Sprintf("%s requested a seat on your trip to %s", traveler.Name, trip.Destination.Name),
		fmt.Sprintf("/trips/%d/reservations", trip.ID))
	return res, nil
}

// Confirm moves a PENDING reservation to CONFIRMED, occupying one seat.
// Only the trip's driver may confirm.  It fails with
// ErrTripAlreadyStarted when the trip has left OPEN (including losing
// the race against an auto-start) and ErrNoSeatsAvailable when the
// ledger denies the occupation.
func (m *ReservationManager) Confirm(ctx context.Context, reservationID, driverID uint64) error {
	res, err := m.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return err
	}
	trip, err := m.trips.GetByID(ctx, res.TripID)
	if err != nil {
		return err
	}
	if trip.DriverID != driverID {
		return repository.ErrForbidden
	}
	if res.State != model.ReservationPending {
		return ErrInvalidTransition
	}
	if trip.State != model.TripOpen {
		return ErrTripAlreadyStarted
	}
	occupied, err := m.ledger.TryOccupy(ctx, trip.ID, 1)
	if err != nil {
		return err
	}
	if !occupied {
		// The conditional update rejected us: either the seats ran out
		// or the trip left OPEN between our read and the update.
		current, err := m.trips.GetByID(ctx, trip.ID)
		if err != nil {
			return err
		}
		if current.State != model.TripOpen {
			return ErrTripAlreadyStarted
		}
		return ErrNoSeatsAvailable
	}
	ok, err := m.reservations.UpdateState(ctx, res.ID, model.ReservationPending, model.ReservationConfirmed, nil)
	if err == nil && !ok {
		err = ErrInvalidTransition
	}
	if err != nil {
		// Reverse the occupation so the seat is not stranded.
		if relErr := m.ledger.Release(ctx, trip.ID, 1); relErr != nil {
			log.Printf("reservations: release after failed confirm on trip %d: %v", trip.ID, relErr)
		}
		return err
	}
	prev := res.State
	res.State = model.ReservationConfirmed
	if err := m.history.Record(ctx, res, prev, driverID); err != nil {
		return err
	}
	m.notify(ctx, res.TravelerID, model.NotificationReservationApproved,
		fmt.Sprintf("Your reservation for the trip to %s was approved", trip.Destination.Name),
		"/reservations/upcoming")
	return nil
}

// Reject declines a live reservation with a mandatory reason.  Only the
// trip's driver may reject.  A CONFIRMED reservation gives its seat
// back.
func (m *ReservationManager) Reject(ctx context.Context, reservationID, driverID uint64, reason string) error {
	if reason == "" {
		return ErrMissingRequiredData
	}
	return m.close(ctx, reservationID, driverID, model.ReservationRejected, &reason, driverOnly)
}

// Cancel voids a live reservation.  The reservation's traveler and the
// trip's driver may both cancel; no reason is required.
func (m *ReservationManager) Cancel(ctx context.Context, reservationID, actorID uint64) error {
	return m.close(ctx, reservationID, actorID, model.ReservationCancelled, nil, travelerOrDriver)
}

type closePermission int

const (
	driverOnly closePermission = iota
	travelerOrDriver
)

// close is the shared path for reject and cancel: both are valid only
// from PENDING or CONFIRMED, and a CONFIRMED reservation releases its
// seat exactly once.
func (m *ReservationManager) close(ctx context.Context, reservationID, actorID uint64, to model.ReservationState, reason *string, perm closePermission) error {
	res, err := m.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return err
	}
	trip, err := m.trips.GetByID(ctx, res.TripID)
	if err != nil {
		return err
	}
	switch perm {
	case driverOnly:
		if actorID != trip.DriverID {
			return repository.ErrForbidden
		}
	case travelerOrDriver:
		if actorID != trip.DriverID && actorID != res.TravelerID {
			return repository.ErrForbidden
		}
	}
	if !res.State.Live() {
		return ErrInvalidTransition
	}
	prev := res.State
	// A CONFIRMED seat goes back to the ledger before the state flips;
	// a failed release leaves the reservation CONFIRMED and retryable
	// rather than terminal with the seat still occupied.
	if prev == model.ReservationConfirmed {
		if err := m.ledger.Release(ctx, trip.ID, 1); err != nil {
			return err
		}
	}
	ok, err := m.reservations.UpdateState(ctx, res.ID, prev, to, reason)
	if err == nil && !ok {
		err = ErrInvalidTransition
	}
	if err != nil {
		if prev == model.ReservationConfirmed {
			// Lost the flip after releasing: take the seat back.  A
			// refusal here means the trip left OPEN, where the counter
			// no longer gates anything.
			if occupied, occErr := m.ledger.TryOccupy(ctx, trip.ID, 1); occErr != nil || !occupied {
				log.Printf("reservations: reoccupy after failed close of reservation %d: %v", res.ID, occErr)
			}
		}
		return err
	}
	res.State = to
	res.RejectionReason = reason
	if err := m.history.Record(ctx, res, prev, actorID); err != nil {
		return err
	}
	m.notifyClose(ctx, res, trip, actorID, reason)
	return nil
}

func (m *ReservationManager) notifyClose(ctx context.Context, res *model.Reservation, trip *model.Trip, actorID uint64, reason *string) {
	switch {
	case res.State == model.ReservationRejected:
		m.notify(ctx, res.TravelerID, model.NotificationReservationRejected,
			fmt.Sprintf("Your reservation for the trip to %s was rejected: %s", trip.Destination.Name, *reason),
			"/reservations/active")
	case actorID == res.TravelerID:
		m.notify(ctx, trip.DriverID, model.NotificationReservationCancelled,
			fmt.Sprintf("A traveler cancelled their reservation on your trip to %s", trip.Destination.Name),
			fmt.Sprintf("/trips/%d/reservations", trip.ID))
	default:
		m.notify(ctx, res.TravelerID, model.NotificationReservationCancelled,
			fmt.Sprintf("Your reservation for the trip to %s was cancelled", trip.Destination.Name),
			"/reservations/active")
	}
}

// confirmedForTrip exposes the confirmed list to the trip lifecycle
// without handing it the whole store.
func (m *ReservationManager) confirmedForTrip(ctx context.Context, tripID uint64) ([]model.Reservation, error) {
	return m.reservations.ListConfirmedByTrip(ctx, tripID)
}

// CompleteForTrip flips every CONFIRMED reservation on the trip to
// COMPLETED.  The trip lifecycle calls it when a trip finishes
// normally; seats are not released because the trip is over.
func (m *ReservationManager) CompleteForTrip(ctx context.Context, trip *model.Trip, actorID uint64) error {
	confirmed, err := m.reservations.ListConfirmedByTrip(ctx, trip.ID)
	if err != nil {
		return err
	}
	for i := range confirmed {
		res := &confirmed[i]
		ok, err := m.reservations.UpdateState(ctx, res.ID, model.ReservationConfirmed, model.ReservationCompleted, nil)
		if err != nil {
			return err
		}
		if !ok {
			continue // settled concurrently
		}
		prev := res.State
		res.State = model.ReservationCompleted
		if err := m.history.Record(ctx, res, prev, actorID); err != nil {
			return err
		}
		m.notify(ctx, res.TravelerID, model.NotificationTripFinished,
			fmt.Sprintf("Your trip to %s is complete", trip.Destination.Name),
			"/reservations/history")
	}
	return nil
}

// CancelLiveForTrip cancels every PENDING and CONFIRMED reservation on
// the trip, releasing seats held by CONFIRMED ones.  The trip lifecycle
// calls it when a trip is cancelled or auto-closed; actorID is
// model.SystemActorID for scheduler-initiated sweeps.
func (m *ReservationManager) CancelLiveForTrip(ctx context.Context, trip *model.Trip, actorID uint64, kind model.NotificationKind) error {
	live, err := m.reservations.ListLiveByTrip(ctx, trip.ID)
	if err != nil {
		return err
	}
	for i := range live {
		res := &live[i]
		prev := res.State
		ok, err := m.reservations.UpdateState(ctx, res.ID, prev, model.ReservationCancelled, nil)
		if err != nil {
			return err
		}
		if !ok {
			continue // settled concurrently
		}
		if prev == model.ReservationConfirmed {
			if err := m.ledger.Release(ctx, trip.ID, 1); err != nil {
				return err
			}
		}
		res.State = model.ReservationCancelled
		if err := m.history.Record(ctx, res, prev, actorID); err != nil {
			return err
		}
		m.notify(ctx, res.TravelerID, kind,
			fmt.Sprintf("Your reservation for the trip to %s was cancelled", trip.Destination.Name),
			"/reservations/active")
	}
	return nil
}

// ForTrip returns every reservation on the trip ordered by request time
// ascending.  Driver only.
func (m *ReservationManager) ForTrip(ctx context.Context, tripID, driverID uint64) ([]model.Reservation, error) {
	trip, err := m.trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if trip.DriverID != driverID {
		return nil, repository.ErrForbidden
	}
	return m.reservations.ListByTrip(ctx, tripID)
}

// ForTraveler returns the traveler's reservations newest request first.
func (m *ReservationManager) ForTraveler(ctx context.Context, travelerID uint64) ([]model.Reservation, error) {
	return m.reservations.ListByTraveler(ctx, travelerID)
}

// ActiveForTraveler returns the traveler's PENDING, CONFIRMED and
// REJECTED reservations ordered by the trip's departure ascending, so
// upcoming items surface chronologically rather than by request order.
func (m *ReservationManager) ActiveForTraveler(ctx context.Context, travelerID uint64) ([]model.Reservation, error) {
	return m.reservations.ListByTravelerInStates(ctx, travelerID, []model.ReservationState{
		model.ReservationPending,
		model.ReservationConfirmed,
		model.ReservationRejected,
	})
}

// ManifestForTrip returns the CONFIRMED reservations on the trip, the
// traveler manifest the driver departs with.  Driver only.
func (m *ReservationManager) ManifestForTrip(ctx context.Context, tripID, driverID uint64) ([]model.Reservation, error) {
	trip, err := m.trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if trip.DriverID != driverID {
		return nil, repository.ErrForbidden
	}
	return m.reservations.ListConfirmedByTrip(ctx, tripID)
}

func (m *ReservationManager) notify(ctx context.Context, userID uint64, kind model.NotificationKind, message, targetURL string) {
	if m.notifier == nil {
		return
	}
	if err := m.notifier.Notify(ctx, userID, kind, message, targetURL); err != nil {
		log.Printf("reservations: notify user %d failed: %v", userID, err)
	}
}
