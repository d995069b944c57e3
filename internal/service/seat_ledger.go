package service

import "context"

// SeatLedger is the only path through which a trip's available-seat
// counter changes.  Both operations are single conditional UPDATEs in
// the trip store, so they are linearizable per trip: of N callers
// racing for the last seat exactly one TryOccupy succeeds.  Callers
// pair a successful TryOccupy with the matching reservation transition
// and issue Release only when reversing a prior successful TryOccupy.
type SeatLedger struct {
	trips TripStore
}

// NewSeatLedger returns a ledger over the given trip store.
func NewSeatLedger(trips TripStore) *SeatLedger {
	return &SeatLedger{trips: trips}
}

// TryOccupy decrements the trip's available seats by count iff the
// result stays >= 0 and the trip is still OPEN.  The OPEN guard doubles
// as the optimistic precondition against a concurrent auto-start: a
// confirmation racing the sweep loses here instead of occupying a seat
// on a departed trip.  It reports whether the seats were taken; on
// false nothing was mutated.
func (l *SeatLedger) TryOccupy(ctx context.Context, tripID uint64, count uint32) (bool, error) {
	return l.trips.OccupySeats(ctx, tripID, count)
}

// Release increments the trip's available seats by count, clamped so
// the counter never exceeds the trip's total capacity.
func (l *SeatLedger) Release(ctx context.Context, tripID uint64, count uint32) error {
	return l.trips.ReleaseSeats(ctx, tripID, count)
}
