package ratings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/versebattle/engine/internal/repos/ratings"
)

var _ ratings.Ratings = (*ratingsRepo)(nil)

type ratingsRepo struct{ db *sql.DB }

func New(db *sql.DB) *ratingsRepo {
	return &ratingsRepo{db: db}
}

func (r *ratingsRepo) Get(ctx context.Context, userID uuid.UUID) (int, error) {
	var rating int

	err := r.db.QueryRowContext(ctx, `
		SELECT rating
		FROM skill_ratings
		WHERE user_id = $1
	`, userID).Scan(&rating)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ratings.DefaultRating, nil
		}

		return 0, fmt.Errorf("get skill rating: %w", err)
	}

	return rating, nil
}

func (r *ratingsRepo) GetTx(tx *sql.Tx, userID uuid.UUID) (int, error) {
	var rating int

	err := tx.QueryRow(`
		SELECT rating
		FROM skill_ratings
		WHERE user_id = $1
	`, userID).Scan(&rating)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ratings.DefaultRating, nil
		}

		return 0, fmt.Errorf("get skill rating: %w", err)
	}

	return rating, nil
}

func (r *ratingsRepo) Upsert(tx *sql.Tx, userID uuid.UUID, rating int) error {
	_, err := tx.Exec(`
		INSERT INTO skill_ratings (user_id, rating)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET rating = EXCLUDED.rating
	`, userID, rating)
	if err != nil {
		return fmt.Errorf("upsert skill rating: %w", err)
	}

	return nil
}
