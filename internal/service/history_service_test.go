package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unrumbo/ride-reservation/internal/model"
	"github.com/unrumbo/ride-reservation/internal/repository"
)

func TestHistoryVisibleToParticipantsOnly(t *testing.T) {
	stranger := travelerUser(99)
	e := newEngine(driverUser(testDriverID), travelerUser(testTravelerID), stranger)
	trip := e.openTrip(2)
	ctx := context.Background()

	res, err := e.manager.Request(ctx, trip.ID, testTravelerID)
	require.NoError(t, err)
	require.NoError(t, e.manager.Confirm(ctx, res.ID, testDriverID))

	for _, caller := range []uint64{testTravelerID, testDriverID} {
		entries, err := e.recorder.ForReservation(ctx, res.ID, caller)
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	}

	_, err = e.recorder.ForReservation(ctx, res.ID, stranger.ID)
	assert.ErrorIs(t, err, repository.ErrForbidden)
}

func TestHistoryPreservesTransitionOrder(t *testing.T) {
	e := newEngine()
	trip := e.openTrip(2)
	ctx := context.Background()

	res, err := e.manager.Request(ctx, trip.ID, testTravelerID)
	require.NoError(t, err)
	require.NoError(t, e.manager.Confirm(ctx, res.ID, testDriverID))
	require.NoError(t, e.manager.Cancel(ctx, res.ID, testTravelerID))

	entries, err := e.recorder.ForReservation(ctx, res.ID, testTravelerID)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Each entry's previous state chains to the one before it.
	assert.Equal(t, model.ReservationState(""), entries[0].PreviousState)
	for i := 1; i < len(entries); i++ {
		assert.Equal(t, entries[i-1].NewState, entries[i].PreviousState)
	}
	assert.Equal(t, model.ReservationCancelled, entries[2].NewState)
}

func TestTripHistoryDriverOnly(t *testing.T) {
	e := newEngine()
	trip := e.openTrip(2)
	ctx := context.Background()

	_, err := e.manager.Request(ctx, trip.ID, testTravelerID)
	require.NoError(t, err)

	entries, err := e.recorder.ForTrip(ctx, trip.ID, testDriverID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	_, err = e.recorder.ForTrip(ctx, trip.ID, testTravelerID)
	assert.ErrorIs(t, err, repository.ErrForbidden)
}
