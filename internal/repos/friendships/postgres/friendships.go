package friendships

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/versebattle/engine/internal/repos/friendships"
)

var _ friendships.Friendships = (*friendshipsRepo)(nil)

type friendshipsRepo struct{ db *sql.DB }

func New(db *sql.DB) *friendshipsRepo {
	return &friendshipsRepo{db: db}
}

func (r *friendshipsRepo) Accepted(ctx context.Context, userID, friendID uuid.UUID) (bool, error) {
	var accepted bool

	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM friendships
			WHERE status = 'accepted'
			  AND ((user_id = $1 AND friend_id = $2) OR (user_id = $2 AND friend_id = $1))
		)
	`, userID, friendID).Scan(&accepted)
	if err != nil {
		return false, fmt.Errorf("check friendship: %w", err)
	}

	return accepted, nil
}
