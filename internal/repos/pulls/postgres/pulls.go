package pulls

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/versebattle/engine/internal/repos/pulls"
)

var _ pulls.Pulls = (*pullsRepo)(nil)

type pullsRepo struct{ db *sql.DB }

func New(db *sql.DB) *pullsRepo {
	return &pullsRepo{db: db}
}

func (r *pullsRepo) Insert(tx *sql.Tx, p pulls.Pull) error {
	_, err := tx.Exec(`
		INSERT INTO pull_history (id, user_id, banner_id, cosmetic_id, rarity,
		                          was_pity, was_rate_up, pull_type, pull_number, gems_spent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, p.ID, p.UserID, p.BannerID, p.CosmeticID, p.Rarity,
		p.WasPity, p.WasRateUp, p.PullType, p.PullNumber, p.GemsSpent)
	if err != nil {
		return fmt.Errorf("insert pull record: %w", err)
	}

	return nil
}

func (r *pullsRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]pulls.Pull, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, banner_id, cosmetic_id, rarity,
		       was_pity, was_rate_up, pull_type, pull_number, gems_spent, created_at
		FROM pull_history
		WHERE user_id = $1
		ORDER BY created_at DESC, pull_number DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list pull history: %w", err)
	}
	defer rows.Close()

	var out []pulls.Pull

	for rows.Next() {
		var p pulls.Pull

		err := rows.Scan(&p.ID, &p.UserID, &p.BannerID, &p.CosmeticID, &p.Rarity,
			&p.WasPity, &p.WasRateUp, &p.PullType, &p.PullNumber, &p.GemsSpent, &p.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan pull record: %w", err)
		}

		out = append(out, p)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate pull history: %w", err)
	}

	return out, nil
}
