package repository

import (
	"context"
	"database/sql"

	"github.com/unrumbo/ride-reservation/internal/model"
)

// RatingRepo stores the scores trip participants give each other after
// a trip finishes.
type RatingRepo struct {
	db *sql.DB
}

// NewRatingRepo returns a new RatingRepo bound to the given database.
func NewRatingRepo(db *sql.DB) *RatingRepo { return &RatingRepo{db: db} }

const ratingColumns = `id, trip_id, rater_id, ratee_id, score, comment, created_at`

func scanRating(row interface{ Scan(...interface{}) error }) (*model.Rating, error) {
	var v model.Rating
	err := row.Scan(&v.ID, &v.TripID, &v.RaterID, &v.RateeID, &v.Score, &v.Comment, &v.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Create inserts a rating and populates its generated ID.
func (r *RatingRepo) Create(ctx context.Context, v *model.Rating) error {
	const q = `INSERT INTO ratings (trip_id, rater_id, ratee_id, score, comment, created_at)
	           VALUES (?, ?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q,
		v.TripID, v.RaterID, v.RateeID, v.Score, v.Comment, v.CreatedAt.UTC())
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	v.ID = uint64(id)
	return nil
}

// ExistsForTrip reports whether rater already rated ratee on the trip.
func (r *RatingRepo) ExistsForTrip(ctx context.Context, tripID, raterID, rateeID uint64) (bool, error) {
	const q = `SELECT COUNT(*) FROM ratings WHERE trip_id = ? AND rater_id = ? AND ratee_id = ?`
	var n int
	if err := r.db.QueryRowContext(ctx, q, tripID, raterID, rateeID).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListByRatee returns the ratings a user has received, newest first.
func (r *RatingRepo) ListByRatee(ctx context.Context, rateeID uint64) ([]model.Rating, error) {
	q := `SELECT ` + ratingColumns + ` FROM ratings WHERE ratee_id = ? ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, rateeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Rating
	for rows.Next() {
		v, err := scanRating(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}

// AverageForUser returns the mean score a user has received, zero when
// the user is unrated.
func (r *RatingRepo) AverageForUser(ctx context.Context, rateeID uint64) (float64, error) {
	const q = `SELECT COALESCE(AVG(score), 0) FROM ratings WHERE ratee_id = ?`
	var avg float64
	err := r.db.QueryRowContext(ctx, q, rateeID).Scan(&avg)
	return avg, err
}
