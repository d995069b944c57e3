package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocationEqualIgnoresName(t *testing.T) {
	a := Location{Name: "Rosario", Latitude: -32.9442, Longitude: -60.6505}
	b := Location{Name: "Rosario Centro", Latitude: -32.9442, Longitude: -60.6505}
	c := Location{Name: "Rosario", Latitude: -32.9442, Longitude: -60.6400}

	assert.True(t, a.Equal(b), "same coordinates are the same place regardless of name")
	assert.False(t, a.Equal(c))
}

func TestTripStateTerminal(t *testing.T) {
	assert.False(t, TripOpen.Terminal())
	assert.False(t, TripStarted.Terminal())
	assert.True(t, TripFinished.Terminal())
	assert.True(t, TripCancelled.Terminal())
}

func TestReservationStateLive(t *testing.T) {
	assert.True(t, ReservationPending.Live())
	assert.True(t, ReservationConfirmed.Live())
	assert.False(t, ReservationRejected.Live())
	assert.False(t, ReservationCancelled.Live())
	assert.False(t, ReservationCompleted.Live())
}

func TestViolationStrikeWeights(t *testing.T) {
	assert.Equal(t, 1, ViolationLateStartMinor.StrikeWeight())
	assert.Equal(t, 2, ViolationLateStartMajor.StrikeWeight())
	assert.Equal(t, 1, ViolationForgottenClose.StrikeWeight())
	assert.Equal(t, 2, ViolationNoShow.StrikeWeight())
}
