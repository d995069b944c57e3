package service

import (
	"context"
	"time"

	"github.com/unrumbo/ride-reservation/internal/model"
	"github.com/unrumbo/ride-reservation/internal/repository"
)

// The services depend on these store interfaces rather than the
// concrete repositories so tests can substitute in-memory fakes.  The
// repository package satisfies every one of them.

// TripStore is the persistence boundary for trips and the seat counter.
type TripStore interface {
	Create(ctx context.Context, trip *model.Trip) error
	GetByID(ctx context.Context, id uint64) (*model.Trip, error)
	ListByDriver(ctx context.Context, driverID uint64) ([]model.Trip, error)
	FindByRouteAndDriverInStates(ctx context.Context, origin, destination model.Location, driverID uint64, states []model.TripState) ([]model.Trip, error)
	Search(ctx context.Context, f repository.TripSearchFilter) ([]model.Trip, error)
	ListOpenPastDeparture(ctx context.Context, cutoff time.Time) ([]model.Trip, error)
	ListStartedBefore(ctx context.Context, cutoff time.Time) ([]model.Trip, error)
	UpdateState(ctx context.Context, tripID uint64, from, to model.TripState) (bool, error)
	OccupySeats(ctx context.Context, tripID uint64, count uint32) (bool, error)
	ReleaseSeats(ctx context.Context, tripID uint64, count uint32) error
}

// ReservationStore is the persistence boundary for reservations.
type ReservationStore interface {
	Create(ctx context.Context, res *model.Reservation) error
	GetByID(ctx context.Context, id uint64) (*model.Reservation, error)
	FindLiveByTripAndTraveler(ctx context.Context, tripID, travelerID uint64) (*model.Reservation, error)
	UpdateState(ctx context.Context, id uint64, from, to model.ReservationState, reason *string) (bool, error)
	ListByTrip(ctx context.Context, tripID uint64) ([]model.Reservation, error)
	ListByTraveler(ctx context.Context, travelerID uint64) ([]model.Reservation, error)
	ListByTravelerInStates(ctx context.Context, travelerID uint64, states []model.ReservationState) ([]model.Reservation, error)
	ListConfirmedByTrip(ctx context.Context, tripID uint64) ([]model.Reservation, error)
	ListLiveByTrip(ctx context.Context, tripID uint64) ([]model.Reservation, error)
}

// HistoryStore is the append-only audit boundary.
type HistoryStore interface {
	Append(ctx context.Context, e *model.HistoryEntry) error
	ListByReservation(ctx context.Context, reservationID uint64) ([]model.HistoryEntry, error)
	ListByTrip(ctx context.Context, tripID uint64) ([]model.HistoryEntry, error)
}

// ViolationStore is the persistence boundary for driver infractions.
type ViolationStore interface {
	Create(ctx context.Context, v *model.Violation) error
	GetByID(ctx context.Context, id uint64) (*model.Violation, error)
	ListActiveByDriver(ctx context.Context, driverID uint64) ([]model.Violation, error)
	ListActiveExpiringBefore(ctx context.Context, cutoff time.Time) ([]model.Violation, error)
	CountActiveByKind(ctx context.Context, driverID uint64, kind model.ViolationKind) (int, error)
	ListByDriver(ctx context.Context, driverID uint64) ([]model.Violation, error)
	Deactivate(ctx context.Context, id uint64) error
}

// UserStore resolves driver and traveler accounts.
type UserStore interface {
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	GetDriver(ctx context.Context, id uint64) (*model.User, error)
	GetTraveler(ctx context.Context, id uint64) (*model.User, error)
}

// VehicleStore resolves vehicles for capacity lookup at publish time.
type VehicleStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Vehicle, error)
}

// RatingStore is the persistence boundary for post-trip ratings.
type RatingStore interface {
	Create(ctx context.Context, rating *model.Rating) error
	ExistsForTrip(ctx context.Context, tripID, raterID, rateeID uint64) (bool, error)
	ListByRatee(ctx context.Context, rateeID uint64) ([]model.Rating, error)
	AverageForUser(ctx context.Context, rateeID uint64) (float64, error)
}

// NotificationStore persists notifications alongside queue publication.
type NotificationStore interface {
	Create(ctx context.Context, n *model.Notification) error
}
