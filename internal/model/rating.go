package model

import "time"

// Rating is a post-trip score one participant gives another.  Ratings
// open up once the trip is FINISHED, and a user may rate a given
// counterpart at most once per trip.
type Rating struct {
	ID        uint64    // ratings.id
	TripID    uint64    // ratings.trip_id
	RaterID   uint64    // ratings.rater_id
	RateeID   uint64    // ratings.ratee_id
	Score     int       // ratings.score, 1 to 5
	Comment   string    // ratings.comment
	CreatedAt time.Time // ratings.created_at
}
