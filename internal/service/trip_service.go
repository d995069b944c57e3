package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/unrumbo/ride-reservation/internal/model"
	"github.com/unrumbo/ride-reservation/internal/repository"
)

// TripService runs the trip lifecycle:
//
//	OPEN --start--> STARTED --finish--> FINISHED
//	OPEN|STARTED --cancel--> CANCELLED
//
// Drivers drive the transitions manually; the scheduler calls
// AutoStartLateTrips and AutoCloseForgottenTrips to move trips whose
// driver forgot to.  All state changes are conditional updates keyed on
// the expected current state, so concurrent manual and scheduled
// transitions cannot double-fire.
type TripService struct {
	trips        TripStore
	users        UserStore
	vehicles     VehicleStore
	reservations *ReservationManager
	violations   *ViolationTracker
	notifier     Notifier

	autoStartGrace time.Duration
	forgottenAfter time.Duration
	now            func() time.Time
}

// NewTripService wires the lifecycle with its collaborators.
// autoStartGrace is how long past departure an OPEN trip may sit before
// the sweep starts it; forgottenAfter is how long a STARTED trip may
// run before the sweep closes it.
func NewTripService(trips TripStore, users UserStore, vehicles VehicleStore, reservations *ReservationManager, violations *ViolationTracker, notifier Notifier, autoStartGrace, forgottenAfter time.Duration) *TripService {
	return &TripService{
		trips:          trips,
		users:          users,
		vehicles:       vehicles,
		reservations:   reservations,
		violations:     violations,
		notifier:       notifier,
		autoStartGrace: autoStartGrace,
		forgottenAfter: forgottenAfter,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// PublishInput carries everything needed to publish a trip.
type PublishInput struct {
	DriverID    uint64
	VehicleID   uint64
	Origin      model.Location
	Destination model.Location
	Stops       []model.Stop
	DepartsAt   time.Time
	Price       float64
}

// Publish creates an OPEN trip.  Seat capacity is copied from the
// vehicle at this moment and never re-read.  A driver may not hold two
// OPEN or STARTED trips on the same origin/destination pair.
func (s *TripService) Publish(ctx context.Context, in PublishInput) (*model.Trip, error) {
	if in.DriverID == 0 || in.VehicleID == 0 || in.DepartsAt.IsZero() {
		return nil, ErrMissingRequiredData
	}
	if in.Origin.Name == "" || in.Destination.Name == "" {
		return nil, ErrMissingRequiredData
	}
	if in.Price < 0 {
		return nil, ErrMissingRequiredData
	}
	if _, err := s.users.GetDriver(ctx, in.DriverID); err != nil {
		return nil, err
	}
	vehicle, err := s.vehicles.GetByID(ctx, in.VehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle.DriverID != in.DriverID {
		return nil, repository.ErrForbidden
	}
	dupes, err := s.trips.FindByRouteAndDriverInStates(ctx, in.Origin, in.Destination, in.DriverID,
		[]model.TripState{model.TripOpen, model.TripStarted})
	if err != nil {
		return nil, err
	}
	if len(dupes) > 0 {
		return nil, ErrDuplicateTrip
	}
	trip := &model.Trip{
		DriverID:       in.DriverID,
		VehicleID:      in.VehicleID,
		Origin:         in.Origin,
		Destination:    in.Destination,
		Stops:          in.Stops,
		DepartsAt:      in.DepartsAt.UTC(),
		Price:          in.Price,
		TotalSeats:     vehicle.Seats,
		AvailableSeats: vehicle.Seats,
		State:          model.TripOpen,
		CreatedAt:      s.now(),
	}
	if err := s.trips.Create(ctx, trip); err != nil {
		return nil, err
	}
	return trip, nil
}

// GetByID returns one trip with its stops.
func (s *TripService) GetByID(ctx context.Context, id uint64) (*model.Trip, error) {
	return s.trips.GetByID(ctx, id)
}

// Search returns OPEN trips with free seats matching the filter.
func (s *TripService) Search(ctx context.Context, f repository.TripSearchFilter) ([]model.Trip, error) {
	return s.trips.Search(ctx, f)
}

// ListByDriver returns a driver's trips, newest departure first.
func (s *TripService) ListByDriver(ctx context.Context, driverID uint64) ([]model.Trip, error) {
	return s.trips.ListByDriver(ctx, driverID)
}

// Start marks the trip departed.  Only the driver may start it, and
// only from OPEN.  Starting 10 to 15 minutes after the scheduled
// departure records a minor lateness violation; beyond that window the
// sweep has normally taken over already.
func (s *TripService) Start(ctx context.Context, tripID, driverID uint64) error {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return err
	}
	if trip.DriverID != driverID {
		return repository.ErrForbidden
	}
	ok, err := s.trips.UpdateState(ctx, tripID, model.TripOpen, model.TripStarted)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidTransition
	}
	late := s.now().Sub(trip.DepartsAt)
	if late >= 10*time.Minute && late < s.autoStartGrace {
		minutes := int(late / time.Minute)
		if _, err := s.violations.Record(ctx, driverID, &trip.ID, model.ViolationLateStartMinor, &minutes,
			fmt.Sprintf("trip to %s started %d minutes late", trip.Destination.Name, minutes)); err != nil {
			log.Printf("trips: record lateness on trip %d: %v", trip.ID, err)
		}
	}
	s.notifyConfirmed(ctx, trip, model.NotificationTripStarted,
		fmt.Sprintf("Your trip to %s has departed", trip.Destination.Name))
	return nil
}

// Finish closes a STARTED trip normally, completing every CONFIRMED
// reservation and cancelling the PENDING ones that were never answered.
// Driver only.
func (s *TripService) Finish(ctx context.Context, tripID, driverID uint64) error {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return err
	}
	if trip.DriverID != driverID {
		return repository.ErrForbidden
	}
	ok, err := s.trips.UpdateState(ctx, tripID, model.TripStarted, model.TripFinished)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidTransition
	}
	if err := s.reservations.CompleteForTrip(ctx, trip, driverID); err != nil {
		return err
	}
	// PENDING requests the driver never answered die with the trip.
	return s.reservations.CancelLiveForTrip(ctx, trip, driverID, model.NotificationReservationCancelled)
}

// Cancel aborts a trip from OPEN or STARTED, cancelling every live
// reservation and releasing held seats.  Driver only.
func (s *TripService) Cancel(ctx context.Context, tripID, driverID uint64) error {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return err
	}
	if trip.DriverID != driverID {
		return repository.ErrForbidden
	}
	if trip.State.Terminal() {
		return ErrInvalidTransition
	}
	ok, err := s.trips.UpdateState(ctx, tripID, trip.State, model.TripCancelled)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidTransition
	}
	return s.reservations.CancelLiveForTrip(ctx, trip, driverID, model.NotificationTripCancelled)
}

// AutoStartLateTrips starts every OPEN trip whose departure is more
// than the grace window in the past, recording a major lateness
// violation against the driver.  A failure on one trip is logged and
// the sweep continues.  The conditional update makes the sweep
// idempotent: a trip already moved, by the driver or by a concurrent
// sweep, is skipped without a second violation.  It returns the number
// of trips started.
func (s *TripService) AutoStartLateTrips(ctx context.Context, now time.Time) (int, error) {
	cutoff := now.Add(-s.autoStartGrace)
	due, err := s.trips.ListOpenPastDeparture(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	started := 0
	for i := range due {
		trip := &due[i]
		ok, err := s.trips.UpdateState(ctx, trip.ID, model.TripOpen, model.TripStarted)
		if err != nil {
			log.Printf("trips: auto-start trip %d: %v", trip.ID, err)
			continue
		}
		if !ok {
			continue
		}
		started++
		minutes := int(now.Sub(trip.DepartsAt) / time.Minute)
		if _, err := s.violations.Record(ctx, trip.DriverID, &trip.ID, model.ViolationLateStartMajor, &minutes,
			fmt.Sprintf("trip to %s auto-started %d minutes after scheduled departure", trip.Destination.Name, minutes)); err != nil {
			log.Printf("trips: record auto-start violation on trip %d: %v", trip.ID, err)
		}
		s.notifyConfirmed(ctx, trip, model.NotificationTripStarted,
			fmt.Sprintf("Your trip to %s has departed", trip.Destination.Name))
	}
	return started, nil
}

// AutoCloseForgottenTrips closes every STARTED trip running longer than
// the forgotten window.  A trip that carried confirmed travelers is
// presumed to have happened and is FINISHED with a forgotten-close
// violation; one that never had a confirmed traveler is CANCELLED with
// a no-show violation.  Reservations settle accordingly under the
// system actor.  Per-trip failures are logged and skipped.  It returns
// the number of trips closed.
func (s *TripService) AutoCloseForgottenTrips(ctx context.Context, now time.Time) (int, error) {
	cutoff := now.Add(-s.forgottenAfter)
	due, err := s.trips.ListStartedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	closed := 0
	for i := range due {
		trip := &due[i]
		if err := s.autoClose(ctx, trip, now); err != nil {
			log.Printf("trips: auto-close trip %d: %v", trip.ID, err)
			continue
		}
		closed++
	}
	return closed, nil
}

func (s *TripService) autoClose(ctx context.Context, trip *model.Trip, now time.Time) error {
	confirmed, err := s.reservations.confirmedForTrip(ctx, trip.ID)
	if err != nil {
		return err
	}
	to := model.TripFinished
	kind := model.ViolationForgottenClose
	desc := fmt.Sprintf("trip to %s was never marked finished", trip.Destination.Name)
	if len(confirmed) == 0 {
		to = model.TripCancelled
		kind = model.ViolationNoShow
		desc = fmt.Sprintf("trip to %s departed with no confirmed travelers and was never closed", trip.Destination.Name)
	}
	ok, err := s.trips.UpdateState(ctx, trip.ID, model.TripStarted, to)
	if err != nil {
		return err
	}
	if !ok {
		return nil // driver beat the sweep to it
	}
	if to == model.TripFinished {
		if err := s.reservations.CompleteForTrip(ctx, trip, model.SystemActorID); err != nil {
			return err
		}
	}
	if err := s.reservations.CancelLiveForTrip(ctx, trip, model.SystemActorID, model.NotificationTripCancelled); err != nil {
		return err
	}
	if _, err := s.violations.Record(ctx, trip.DriverID, &trip.ID, kind, nil, desc); err != nil {
		log.Printf("trips: record auto-close violation on trip %d: %v", trip.ID, err)
	}
	return nil
}

// notifyConfirmed fans a message out to every confirmed traveler on the
// trip.  Failures are logged; notifications never block a transition.
func (s *TripService) notifyConfirmed(ctx context.Context, trip *model.Trip, kind model.NotificationKind, message string) {
	if s.notifier == nil {
		return
	}
	confirmed, err := s.reservations.confirmedForTrip(ctx, trip.ID)
	if err != nil {
		log.Printf("trips: list confirmed on trip %d: %v", trip.ID, err)
		return
	}
	for _, res := range confirmed {
		if err := s.notifier.Notify(ctx, res.TravelerID, kind, message, fmt.Sprintf("/trips/%d", trip.ID)); err != nil {
			log.Printf("trips: notify traveler %d: %v", res.TravelerID, err)
		}
	}
}
