package service

import (
	"context"
	"time"

	"github.com/unrumbo/ride-reservation/internal/model"
	"github.com/unrumbo/ride-reservation/internal/repository"
)

// HistoryRecorder appends an immutable audit entry for every
// reservation state change and answers history queries.  Write order
// matches the logical transition order for a given reservation because
// every transition appends synchronously before the triggering
// operation returns.
type HistoryRecorder struct {
	history      HistoryStore
	reservations ReservationStore
	trips        TripStore
	now          func() time.Time
}

// NewHistoryRecorder returns a recorder over the given stores.
func NewHistoryRecorder(history HistoryStore, reservations ReservationStore, trips TripStore) *HistoryRecorder {
	return &HistoryRecorder{
		history:      history,
		reservations: reservations,
		trips:        trips,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Record appends an audit entry for a reservation transition.  Pass
// model.SystemActorID as actor for scheduler-initiated changes and an
// empty previous state for the creating entry.
func (h *HistoryRecorder) Record(ctx context.Context, res *model.Reservation, previous model.ReservationState, actorID uint64) error {
	return h.history.Append(ctx, &model.HistoryEntry{
		ReservationID: res.ID,
		TripID:        res.TripID,
		TravelerID:    res.TravelerID,
		ActorID:       actorID,
		PreviousState: previous,
		NewState:      res.State,
		EventAt:       h.now(),
	})
}

// ForReservation returns a reservation's audit trail in transition
// order.  Only the trip's driver and the reservation's traveler may
// read it; anyone else gets repository.ErrForbidden.
func (h *HistoryRecorder) ForReservation(ctx context.Context, reservationID, callerID uint64) ([]model.HistoryEntry, error) {
	res, err := h.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	trip, err := h.trips.GetByID(ctx, res.TripID)
	if err != nil {
		return nil, err
	}
	if callerID != trip.DriverID && callerID != res.TravelerID {
		return nil, repository.ErrForbidden
	}
	return h.history.ListByReservation(ctx, reservationID)
}

// ForTrip returns every audit record on a trip.  Driver only.
func (h *HistoryRecorder) ForTrip(ctx context.Context, tripID, callerID uint64) ([]model.HistoryEntry, error) {
	trip, err := h.trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if callerID != trip.DriverID {
		return nil, repository.ErrForbidden
	}
	return h.history.ListByTrip(ctx, tripID)
}
