package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/unrumbo/ride-reservation/internal/model"
	"github.com/unrumbo/ride-reservation/internal/repository"
)

// The fakes below are mutex-guarded in-memory stores.  The seat and
// state updates mirror the conditional semantics of the SQL layer so
// concurrency tests exercise the same races the real repositories see.

type fakeTripStore struct {
	mu         sync.Mutex
	nextID     uint64
	trips      map[uint64]*model.Trip
	releaseErr error // when set, ReleaseSeats fails with it
}

func newFakeTripStore() *fakeTripStore {
	return &fakeTripStore{trips: make(map[uint64]*model.Trip)}
}

func (s *fakeTripStore) Create(_ context.Context, trip *model.Trip) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	trip.ID = s.nextID
	cp := *trip
	s.trips[trip.ID] = &cp
	return nil
}

func (s *fakeTripStore) GetByID(_ context.Context, id uint64) (*model.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.trips[id]
	if !ok {
		return nil, repository.ErrTripNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *fakeTripStore) ListByDriver(_ context.Context, driverID uint64) ([]model.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Trip
	for _, t := range s.trips {
		if t.DriverID == driverID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DepartsAt.After(out[j].DepartsAt) })
	return out, nil
}

func (s *fakeTripStore) FindByRouteAndDriverInStates(_ context.Context, origin, destination model.Location, driverID uint64, states []model.TripState) ([]model.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Trip
	for _, t := range s.trips {
		if t.DriverID != driverID || !t.Origin.Equal(origin) || !t.Destination.Equal(destination) {
			continue
		}
		for _, st := range states {
			if t.State == st {
				out = append(out, *t)
				break
			}
		}
	}
	return out, nil
}

func (s *fakeTripStore) Search(_ context.Context, f repository.TripSearchFilter) ([]model.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Trip
	for _, t := range s.trips {
		if t.State != model.TripOpen || t.AvailableSeats == 0 {
			continue
		}
		if !t.Origin.Equal(f.Origin) || !t.Destination.Equal(f.Destination) {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DepartsAt.Before(out[j].DepartsAt) })
	return out, nil
}

func (s *fakeTripStore) ListOpenPastDeparture(_ context.Context, cutoff time.Time) ([]model.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Trip
	for _, t := range s.trips {
		if t.State == model.TripOpen && !t.DepartsAt.After(cutoff) {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (s *fakeTripStore) ListStartedBefore(_ context.Context, cutoff time.Time) ([]model.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Trip
	for _, t := range s.trips {
		if t.State == model.TripStarted && !t.DepartsAt.After(cutoff) {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (s *fakeTripStore) UpdateState(_ context.Context, tripID uint64, from, to model.TripState) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.trips[tripID]
	if !ok || t.State != from {
		return false, nil
	}
	t.State = to
	return true, nil
}

func (s *fakeTripStore) OccupySeats(_ context.Context, tripID uint64, count uint32) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.trips[tripID]
	if !ok || t.State != model.TripOpen || t.AvailableSeats < count {
		return false, nil
	}
	t.AvailableSeats -= count
	return true, nil
}

func (s *fakeTripStore) ReleaseSeats(_ context.Context, tripID uint64, count uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.releaseErr != nil {
		return s.releaseErr
	}
	t, ok := s.trips[tripID]
	if !ok {
		return repository.ErrTripNotFound
	}
	t.AvailableSeats += count
	if t.AvailableSeats > t.TotalSeats {
		t.AvailableSeats = t.TotalSeats
	}
	return nil
}

type fakeReservationStore struct {
	mu     sync.Mutex
	nextID uint64
	rows   map[uint64]*model.Reservation
	trips  *fakeTripStore

	// beforeUpdate runs once ahead of the next UpdateState, outside the
	// lock, so a test can interleave a concurrent transition.
	beforeUpdate func()
}

func newFakeReservationStore(trips *fakeTripStore) *fakeReservationStore {
	return &fakeReservationStore{rows: make(map[uint64]*model.Reservation), trips: trips}
}

func (s *fakeReservationStore) Create(_ context.Context, res *model.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	res.ID = s.nextID
	cp := *res
	s.rows[res.ID] = &cp
	return nil
}

func (s *fakeReservationStore) GetByID(_ context.Context, id uint64) (*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok {
		return nil, repository.ErrReservationNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *fakeReservationStore) FindLiveByTripAndTraveler(_ context.Context, tripID, travelerID uint64) (*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rows {
		if r.TripID == tripID && r.TravelerID == travelerID && r.State.Live() {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *fakeReservationStore) UpdateState(_ context.Context, id uint64, from, to model.ReservationState, reason *string) (bool, error) {
	if hook := s.takeUpdateHook(); hook != nil {
		hook()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok || r.State != from {
		return false, nil
	}
	r.State = to
	if reason != nil {
		r.RejectionReason = reason
	}
	return true, nil
}

func (s *fakeReservationStore) takeUpdateHook() func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	hook := s.beforeUpdate
	s.beforeUpdate = nil
	return hook
}

func (s *fakeReservationStore) listWhere(keep func(*model.Reservation) bool) []model.Reservation {
	var out []model.Reservation
	for _, r := range s.rows {
		if keep(r) {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *fakeReservationStore) ListByTrip(_ context.Context, tripID uint64) ([]model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listWhere(func(r *model.Reservation) bool { return r.TripID == tripID }), nil
}

func (s *fakeReservationStore) ListByTraveler(_ context.Context, travelerID uint64) ([]model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listWhere(func(r *model.Reservation) bool { return r.TravelerID == travelerID }), nil
}

func (s *fakeReservationStore) ListByTravelerInStates(ctx context.Context, travelerID uint64, states []model.ReservationState) ([]model.Reservation, error) {
	s.mu.Lock()
	out := s.listWhere(func(r *model.Reservation) bool {
		if r.TravelerID != travelerID {
			return false
		}
		for _, st := range states {
			if r.State == st {
				return true
			}
		}
		return false
	})
	s.mu.Unlock()
	// Mirrors the SQL join ordering by the referenced trip's departure.
	sort.SliceStable(out, func(i, j int) bool {
		return s.departureOf(ctx, out[i].TripID).Before(s.departureOf(ctx, out[j].TripID))
	})
	return out, nil
}

func (s *fakeReservationStore) departureOf(ctx context.Context, tripID uint64) time.Time {
	t, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return time.Time{}
	}
	return t.DepartsAt
}

func (s *fakeReservationStore) ListConfirmedByTrip(_ context.Context, tripID uint64) ([]model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listWhere(func(r *model.Reservation) bool {
		return r.TripID == tripID && r.State == model.ReservationConfirmed
	}), nil
}

func (s *fakeReservationStore) ListLiveByTrip(_ context.Context, tripID uint64) ([]model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listWhere(func(r *model.Reservation) bool {
		return r.TripID == tripID && r.State.Live()
	}), nil
}

type fakeHistoryStore struct {
	mu      sync.Mutex
	entries []model.HistoryEntry
}

func (s *fakeHistoryStore) Append(_ context.Context, e *model.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = uint64(len(s.entries) + 1)
	s.entries = append(s.entries, *e)
	return nil
}

func (s *fakeHistoryStore) ListByReservation(_ context.Context, reservationID uint64) ([]model.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.HistoryEntry
	for _, e := range s.entries {
		if e.ReservationID == reservationID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *fakeHistoryStore) ListByTrip(_ context.Context, tripID uint64) ([]model.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.HistoryEntry
	for _, e := range s.entries {
		if e.TripID == tripID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeViolationStore struct {
	mu     sync.Mutex
	nextID uint64
	rows   map[uint64]*model.Violation
}

func newFakeViolationStore() *fakeViolationStore {
	return &fakeViolationStore{rows: make(map[uint64]*model.Violation)}
}

func (s *fakeViolationStore) Create(_ context.Context, v *model.Violation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	v.ID = s.nextID
	cp := *v
	s.rows[v.ID] = &cp
	return nil
}

func (s *fakeViolationStore) GetByID(_ context.Context, id uint64) (*model.Violation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.rows[id]
	if !ok {
		return nil, repository.ErrViolationNotFound
	}
	cp := *v
	return &cp, nil
}

func (s *fakeViolationStore) ListActiveByDriver(_ context.Context, driverID uint64) ([]model.Violation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Violation
	for _, v := range s.rows {
		if v.DriverID == driverID && v.Active {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (s *fakeViolationStore) ListActiveExpiringBefore(_ context.Context, cutoff time.Time) ([]model.Violation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Violation
	for _, v := range s.rows {
		if v.Active && v.ExpiresAt.Before(cutoff) {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (s *fakeViolationStore) CountActiveByKind(_ context.Context, driverID uint64, kind model.ViolationKind) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, v := range s.rows {
		if v.DriverID == driverID && v.Active && v.Kind == kind {
			n++
		}
	}
	return n, nil
}

func (s *fakeViolationStore) ListByDriver(_ context.Context, driverID uint64) ([]model.Violation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Violation
	for _, v := range s.rows {
		if v.DriverID == driverID {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (s *fakeViolationStore) Deactivate(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.rows[id]
	if !ok {
		return repository.ErrViolationNotFound
	}
	v.Active = false
	return nil
}

type fakeUserStore struct {
	users map[uint64]*model.User
}

func newFakeUserStore(users ...*model.User) *fakeUserStore {
	s := &fakeUserStore{users: make(map[uint64]*model.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeUserStore) GetByID(_ context.Context, id uint64) (*model.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return u, nil
}

func (s *fakeUserStore) GetDriver(_ context.Context, id uint64) (*model.User, error) {
	u, ok := s.users[id]
	if !ok || !u.IsDriver() {
		return nil, repository.ErrUserNotFound
	}
	return u, nil
}

func (s *fakeUserStore) GetTraveler(_ context.Context, id uint64) (*model.User, error) {
	u, ok := s.users[id]
	if !ok || !u.IsTraveler() {
		return nil, repository.ErrUserNotFound
	}
	return u, nil
}

type fakeVehicleStore struct {
	vehicles map[uint64]*model.Vehicle
}

func newFakeVehicleStore(vehicles ...*model.Vehicle) *fakeVehicleStore {
	s := &fakeVehicleStore{vehicles: make(map[uint64]*model.Vehicle)}
	for _, v := range vehicles {
		s.vehicles[v.ID] = v
	}
	return s
}

func (s *fakeVehicleStore) GetByID(_ context.Context, id uint64) (*model.Vehicle, error) {
	v, ok := s.vehicles[id]
	if !ok {
		return nil, repository.ErrVehicleNotFound
	}
	return v, nil
}

type fakeRatingStore struct {
	mu     sync.Mutex
	nextID uint64
	rows   []model.Rating
}

func (s *fakeRatingStore) Create(_ context.Context, v *model.Rating) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	v.ID = s.nextID
	s.rows = append(s.rows, *v)
	return nil
}

func (s *fakeRatingStore) ExistsForTrip(_ context.Context, tripID, raterID, rateeID uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.rows {
		if v.TripID == tripID && v.RaterID == raterID && v.RateeID == rateeID {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeRatingStore) ListByRatee(_ context.Context, rateeID uint64) ([]model.Rating, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Rating
	for _, v := range s.rows {
		if v.RateeID == rateeID {
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *fakeRatingStore) AverageForUser(_ context.Context, rateeID uint64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum, n := 0, 0
	for _, v := range s.rows {
		if v.RateeID == rateeID {
			sum += v.Score
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return float64(sum) / float64(n), nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []model.Notification
}

func (n *recordingNotifier) Notify(_ context.Context, userID uint64, kind model.NotificationKind, message, targetURL string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, model.Notification{UserID: userID, Kind: kind, Message: message, TargetURL: targetURL})
	return nil
}
