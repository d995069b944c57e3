package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unrumbo/ride-reservation/internal/model"
	"github.com/unrumbo/ride-reservation/internal/repository"
)

func TestPublishCopiesVehicleCapacity(t *testing.T) {
	e := newEngine()

	trip, err := e.lifecycle.Publish(context.Background(), PublishInput{
		DriverID:    testDriverID,
		VehicleID:   1,
		Origin:      model.Location{Name: "Buenos Aires", Latitude: -34.6037, Longitude: -58.3816},
		Destination: model.Location{Name: "Rosario", Latitude: -32.9442, Longitude: -60.6505},
		DepartsAt:   testClock.Add(2 * time.Hour),
		Price:       1200,
	})
	require.NoError(t, err)
	assert.Equal(t, uint32(3), trip.TotalSeats)
	assert.Equal(t, uint32(3), trip.AvailableSeats)
	assert.Equal(t, model.TripOpen, trip.State)
}

func TestPublishRejectsForeignVehicle(t *testing.T) {
	otherDriver := driverUser(2)
	e := newEngine(driverUser(testDriverID), otherDriver, travelerUser(testTravelerID))

	_, err := e.lifecycle.Publish(context.Background(), PublishInput{
		DriverID:    otherDriver.ID,
		VehicleID:   1, // belongs to driver 1
		Origin:      model.Location{Name: "Buenos Aires", Latitude: -34.6037, Longitude: -58.3816},
		Destination: model.Location{Name: "Rosario", Latitude: -32.9442, Longitude: -60.6505},
		DepartsAt:   testClock.Add(2 * time.Hour),
		Price:       1200,
	})
	assert.ErrorIs(t, err, repository.ErrForbidden)
}

func TestPublishRejectsDuplicateRoute(t *testing.T) {
	e := newEngine()
	e.openTrip(3)

	_, err := e.lifecycle.Publish(context.Background(), PublishInput{
		DriverID:    testDriverID,
		VehicleID:   1,
		Origin:      model.Location{Name: "CABA", Latitude: -34.6037, Longitude: -58.3816},
		Destination: model.Location{Name: "Rosario Centro", Latitude: -32.9442, Longitude: -60.6505},
		DepartsAt:   testClock.Add(3 * time.Hour),
		Price:       1800,
	})
	assert.ErrorIs(t, err, ErrDuplicateTrip, "same coordinates are the same route regardless of names")
}

func TestPublishMissingData(t *testing.T) {
	e := newEngine()
	_, err := e.lifecycle.Publish(context.Background(), PublishInput{DriverID: testDriverID})
	assert.ErrorIs(t, err, ErrMissingRequiredData)
}

func TestStartOnTime(t *testing.T) {
	e := newEngine()
	trip := e.openTrip(3)
	e.trips.trips[trip.ID].DepartsAt = testClock // departing right now

	require.NoError(t, e.lifecycle.Start(context.Background(), trip.ID, testDriverID))

	got, err := e.trips.GetByID(context.Background(), trip.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TripStarted, got.State)

	record, err := e.tracker.ListForDriver(context.Background(), testDriverID)
	require.NoError(t, err)
	assert.Empty(t, record, "a punctual start must not raise a violation")
}

func TestStartTwelveMinutesLateRecordsMinorViolation(t *testing.T) {
	e := newEngine()
	trip := e.openTrip(3)
	e.trips.trips[trip.ID].DepartsAt = testClock.Add(-12 * time.Minute)

	require.NoError(t, e.lifecycle.Start(context.Background(), trip.ID, testDriverID))

	record, err := e.tracker.ListForDriver(context.Background(), testDriverID)
	require.NoError(t, err)
	require.Len(t, record, 1)
	assert.Equal(t, model.ViolationLateStartMinor, record[0].Kind)
	require.NotNil(t, record[0].DelayMinutes)
	assert.Equal(t, 12, *record[0].DelayMinutes)
	assert.True(t, record[0].Active)
}

func TestStartByNonDriverForbidden(t *testing.T) {
	e := newEngine()
	trip := e.openTrip(3)
	err := e.lifecycle.Start(context.Background(), trip.ID, testTravelerID)
	assert.ErrorIs(t, err, repository.ErrForbidden)
}

func TestStartNonOpenTrip(t *testing.T) {
	e := newEngine()
	trip := e.openTrip(3)
	require.NoError(t, e.lifecycle.Start(context.Background(), trip.ID, testDriverID))

	err := e.lifecycle.Start(context.Background(), trip.ID, testDriverID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestFinishSettlesReservations(t *testing.T) {
	second := travelerUser(11)
	e := newEngine(driverUser(testDriverID), travelerUser(testTravelerID), second)
	trip := e.openTrip(3)
	ctx := context.Background()

	confirmed, err := e.manager.Request(ctx, trip.ID, testTravelerID)
	require.NoError(t, err)
	require.NoError(t, e.manager.Confirm(ctx, confirmed.ID, testDriverID))
	pending, err := e.manager.Request(ctx, trip.ID, second.ID)
	require.NoError(t, err)

	require.NoError(t, e.lifecycle.Start(ctx, trip.ID, testDriverID))
	require.NoError(t, e.lifecycle.Finish(ctx, trip.ID, testDriverID))

	got, err := e.trips.GetByID(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TripFinished, got.State)

	r1, err := e.reservations.GetByID(ctx, confirmed.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationCompleted, r1.State)

	r2, err := e.reservations.GetByID(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationCancelled, r2.State)
}

func TestFinishRequiresStartedTrip(t *testing.T) {
	e := newEngine()
	trip := e.openTrip(3)
	err := e.lifecycle.Finish(context.Background(), trip.ID, testDriverID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCancelOpenTripCancelsLiveReservations(t *testing.T) {
	e := newEngine()
	trip := e.openTrip(3)
	ctx := context.Background()

	res, err := e.manager.Request(ctx, trip.ID, testTravelerID)
	require.NoError(t, err)
	require.NoError(t, e.manager.Confirm(ctx, res.ID, testDriverID))

	require.NoError(t, e.lifecycle.Cancel(ctx, trip.ID, testDriverID))

	got, err := e.trips.GetByID(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TripCancelled, got.State)
	assert.Equal(t, uint32(3), got.AvailableSeats, "cancelling the trip releases held seats")

	updated, err := e.reservations.GetByID(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationCancelled, updated.State)
}

func TestCancelFinishedTrip(t *testing.T) {
	e := newEngine()
	trip := e.openTrip(3)
	ctx := context.Background()
	require.NoError(t, e.lifecycle.Start(ctx, trip.ID, testDriverID))
	require.NoError(t, e.lifecycle.Finish(ctx, trip.ID, testDriverID))

	err := e.lifecycle.Cancel(ctx, trip.ID, testDriverID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestAutoStartSweepsOnlyPastGraceWindow(t *testing.T) {
	e := newEngine()
	late := e.openTrip(3)
	e.trips.trips[late.ID].DepartsAt = testClock.Add(-16 * time.Minute)

	fresh := e.openTrip(3)
	e.trips.trips[fresh.ID].Origin.Latitude = -31.4 // different route
	e.trips.trips[fresh.ID].DepartsAt = testClock.Add(-10 * time.Minute)

	started, err := e.lifecycle.AutoStartLateTrips(context.Background(), testClock)
	require.NoError(t, err)
	assert.Equal(t, 1, started)

	gotLate, _ := e.trips.GetByID(context.Background(), late.ID)
	assert.Equal(t, model.TripStarted, gotLate.State)
	gotFresh, _ := e.trips.GetByID(context.Background(), fresh.ID)
	assert.Equal(t, model.TripOpen, gotFresh.State, "ten minutes late is inside the grace window")

	record, err := e.tracker.ListForDriver(context.Background(), testDriverID)
	require.NoError(t, err)
	require.Len(t, record, 1)
	assert.Equal(t, model.ViolationLateStartMajor, record[0].Kind)
	require.NotNil(t, record[0].DelayMinutes)
	assert.Equal(t, 16, *record[0].DelayMinutes)
}

func TestAutoStartIsIdempotent(t *testing.T) {
	e := newEngine()
	late := e.openTrip(3)
	e.trips.trips[late.ID].DepartsAt = testClock.Add(-20 * time.Minute)

	started, err := e.lifecycle.AutoStartLateTrips(context.Background(), testClock)
	require.NoError(t, err)
	assert.Equal(t, 1, started)

	started, err = e.lifecycle.AutoStartLateTrips(context.Background(), testClock)
	require.NoError(t, err)
	assert.Equal(t, 0, started)

	record, err := e.tracker.ListForDriver(context.Background(), testDriverID)
	require.NoError(t, err)
	assert.Len(t, record, 1, "a second sweep must not double the violation")
}

func TestAutoCloseFinishesTripWithConfirmedTravelers(t *testing.T) {
	second := travelerUser(11)
	e := newEngine(driverUser(testDriverID), travelerUser(testTravelerID), second)
	trip := e.openTrip(3)
	ctx := context.Background()

	confirmed, err := e.manager.Request(ctx, trip.ID, testTravelerID)
	require.NoError(t, err)
	require.NoError(t, e.manager.Confirm(ctx, confirmed.ID, testDriverID))
	pending, err := e.manager.Request(ctx, trip.ID, second.ID)
	require.NoError(t, err)

	require.NoError(t, e.lifecycle.Start(ctx, trip.ID, testDriverID))
	e.trips.trips[trip.ID].DepartsAt = testClock.Add(-7 * time.Hour)

	closed, err := e.lifecycle.AutoCloseForgottenTrips(ctx, testClock)
	require.NoError(t, err)
	assert.Equal(t, 1, closed)

	got, err := e.trips.GetByID(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TripFinished, got.State)

	r1, err := e.reservations.GetByID(ctx, confirmed.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationCompleted, r1.State)
	r2, err := e.reservations.GetByID(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationCancelled, r2.State)

	// Scheduler transitions are attributed to the system actor.
	entries, err := e.history.ListByReservation(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SystemActorID, entries[len(entries)-1].ActorID)

	record, err := e.tracker.ListForDriver(ctx, testDriverID)
	require.NoError(t, err)
	require.Len(t, record, 1)
	assert.Equal(t, model.ViolationForgottenClose, record[0].Kind)
}

func TestAutoCloseCancelsTripWithoutConfirmedTravelers(t *testing.T) {
	e := newEngine()
	trip := e.openTrip(3)
	ctx := context.Background()

	pending, err := e.manager.Request(ctx, trip.ID, testTravelerID)
	require.NoError(t, err)

	require.NoError(t, e.lifecycle.Start(ctx, trip.ID, testDriverID))
	e.trips.trips[trip.ID].DepartsAt = testClock.Add(-8 * time.Hour)

	closed, err := e.lifecycle.AutoCloseForgottenTrips(ctx, testClock)
	require.NoError(t, err)
	assert.Equal(t, 1, closed)

	got, err := e.trips.GetByID(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TripCancelled, got.State)

	r, err := e.reservations.GetByID(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationCancelled, r.State)

	record, err := e.tracker.ListForDriver(ctx, testDriverID)
	require.NoError(t, err)
	require.Len(t, record, 1)
	assert.Equal(t, model.ViolationNoShow, record[0].Kind)
}

func TestAutoCloseSkipsRecentTrips(t *testing.T) {
	e := newEngine()
	trip := e.openTrip(3)
	ctx := context.Background()
	require.NoError(t, e.lifecycle.Start(ctx, trip.ID, testDriverID))
	e.trips.trips[trip.ID].DepartsAt = testClock.Add(-2 * time.Hour)

	closed, err := e.lifecycle.AutoCloseForgottenTrips(ctx, testClock)
	require.NoError(t, err)
	assert.Equal(t, 0, closed)
}
