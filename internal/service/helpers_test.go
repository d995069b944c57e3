package service

import (
	"time"

	"github.com/unrumbo/ride-reservation/internal/model"
)

// testClock is the frozen "now" every service under test runs on.
var testClock = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

const (
	testDriverID   = 1
	testTravelerID = 10
)

// engine bundles fully wired services over the in-memory fakes.
type engine struct {
	trips        *fakeTripStore
	reservations *fakeReservationStore
	history      *fakeHistoryStore
	violations   *fakeViolationStore
	users        *fakeUserStore
	vehicles     *fakeVehicleStore
	ratings      *fakeRatingStore
	notifier     *recordingNotifier

	ledger    *SeatLedger
	recorder  *HistoryRecorder
	tracker   *ViolationTracker
	manager   *ReservationManager
	lifecycle *TripService
	rater     *RatingService
}

func newEngine(users ...*model.User) *engine {
	if len(users) == 0 {
		users = []*model.User{
			driverUser(testDriverID),
			travelerUser(testTravelerID),
		}
	}
	trips := newFakeTripStore()
	e := &engine{
		trips:        trips,
		reservations: newFakeReservationStore(trips),
		history:      &fakeHistoryStore{},
		violations:   newFakeViolationStore(),
		users:        newFakeUserStore(users...),
		vehicles:     newFakeVehicleStore(&model.Vehicle{ID: 1, DriverID: testDriverID, Plate: "AB123CD", Seats: 3}),
		ratings:      &fakeRatingStore{},
		notifier:     &recordingNotifier{},
	}
	e.ledger = NewSeatLedger(e.trips)
	e.recorder = NewHistoryRecorder(e.history, e.reservations, e.trips)
	e.recorder.now = func() time.Time { return testClock }
	e.tracker = NewViolationTracker(e.violations, 90*24*time.Hour)
	e.tracker.now = func() time.Time { return testClock }
	e.manager = NewReservationManager(e.trips, e.reservations, e.users, e.ledger, e.recorder, e.notifier)
	e.manager.now = func() time.Time { return testClock }
	e.lifecycle = NewTripService(e.trips, e.users, e.vehicles, e.manager, e.tracker, e.notifier,
		15*time.Minute, 6*time.Hour)
	e.lifecycle.now = func() time.Time { return testClock }
	e.rater = NewRatingService(e.ratings, e.trips, e.users, e.reservations)
	e.rater.now = func() time.Time { return testClock }
	return e
}

// openTrip seeds an OPEN trip for the default driver with the given
// seat count, departing one hour after the test clock.
func (e *engine) openTrip(seats uint32) *model.Trip {
	trip := &model.Trip{
		DriverID:       testDriverID,
		VehicleID:      1,
		Origin:         model.Location{Name: "Buenos Aires", Latitude: -34.6037, Longitude: -58.3816},
		Destination:    model.Location{Name: "Rosario", Latitude: -32.9442, Longitude: -60.6505},
		DepartsAt:      testClock.Add(time.Hour),
		Price:          1500,
		TotalSeats:     seats,
		AvailableSeats: seats,
		State:          model.TripOpen,
		CreatedAt:      testClock,
	}
	_ = e.trips.Create(nil, trip)
	return trip
}

func driverUser(id uint64) *model.User {
	return &model.User{
		Person: model.Person{ID: id, Name: "Ana", Email: "ana@example.com"},
		Role:   model.RoleDriver,
		Driver: &model.DriverProfile{LicenseNumber: "D-1001"},
	}
}

func travelerUser(id uint64) *model.User {
	return &model.User{
		Person:   model.Person{ID: id, Name: "Bruno", Email: "bruno@example.com"},
		Role:     model.RoleTraveler,
		Traveler: &model.TravelerProfile{Phone: "+54 11 5555 0001"},
	}
}
