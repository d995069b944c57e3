package service

import (
	"context"
	"time"

	"github.com/unrumbo/ride-reservation/internal/model"
	"github.com/unrumbo/ride-reservation/internal/repository"
)

// RatingService lets trip participants score each other once the trip
// is FINISHED: the driver rates travelers who completed the ride and
// those travelers rate the driver.  Each pair is rated at most once per
// trip.
type RatingService struct {
	ratings      RatingStore
	trips        TripStore
	users        UserStore
	reservations ReservationStore
	now          func() time.Time
}

// NewRatingService wires the rating rules over their stores.
func NewRatingService(ratings RatingStore, trips TripStore, users UserStore, reservations ReservationStore) *RatingService {
	return &RatingService{
		ratings:      ratings,
		trips:        trips,
		users:        users,
		reservations: reservations,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Rate records raterID's score for rateeID on the given trip.  It fails
// with ErrInvalidRating on a self-rating or an out-of-range score,
// ErrTripNotFinished before the trip closes, repository.ErrForbidden
// when either party was not on the trip, and ErrAlreadyRated on a
// duplicate.
func (s *RatingService) Rate(ctx context.Context, tripID, raterID, rateeID uint64, score int, comment string) (*model.Rating, error) {
	if tripID == 0 || raterID == 0 || rateeID == 0 {
		return nil, ErrMissingRequiredData
	}
	if raterID == rateeID || score < 1 || score > 5 {
		return nil, ErrInvalidRating
	}
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if trip.State != model.TripFinished {
		return nil, ErrTripNotFinished
	}
	if _, err := s.users.GetByID(ctx, rateeID); err != nil {
		return nil, err
	}
	for _, id := range []uint64{raterID, rateeID} {
		ok, err := s.participated(ctx, trip, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, repository.ErrForbidden
		}
	}
	exists, err := s.ratings.ExistsForTrip(ctx, tripID, raterID, rateeID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyRated
	}
	rating := &model.Rating{
		TripID:    tripID,
		RaterID:   raterID,
		RateeID:   rateeID,
		Score:     score,
		Comment:   comment,
		CreatedAt: s.now(),
	}
	if err := s.ratings.Create(ctx, rating); err != nil {
		return nil, err
	}
	return rating, nil
}

// participated reports whether the user was on the trip: its driver, or
// a traveler whose reservation completed with it.
func (s *RatingService) participated(ctx context.Context, trip *model.Trip, userID uint64) (bool, error) {
	if userID == trip.DriverID {
		return true, nil
	}
	all, err := s.reservations.ListByTrip(ctx, trip.ID)
	if err != nil {
		return false, err
	}
	for _, r := range all {
		if r.TravelerID == userID && r.State == model.ReservationCompleted {
			return true, nil
		}
	}
	return false, nil
}

// ForUser returns the ratings a user has received, newest first.
func (s *RatingService) ForUser(ctx context.Context, userID uint64) ([]model.Rating, error) {
	return s.ratings.ListByRatee(ctx, userID)
}

// AverageForUser returns the user's mean received score, zero when the
// user has no ratings yet.
func (s *RatingService) AverageForUser(ctx context.Context, userID uint64) (float64, error) {
	return s.ratings.AverageForUser(ctx, userID)
}
