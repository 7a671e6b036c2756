package cosmetics

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/versebattle/engine/internal/repos/cosmetics"
)

var _ cosmetics.Cosmetics = (*cosmeticsRepo)(nil)

type cosmeticsRepo struct{ db *sql.DB }

func New(db *sql.DB) *cosmeticsRepo {
	return &cosmeticsRepo{db: db}
}

func (r *cosmeticsRepo) ListByRarity(tx *sql.Tx, rarity cosmetics.Rarity) ([]cosmetics.Cosmetic, error) {
	rows, err := tx.Query(`
		SELECT id, name, rarity
		FROM cosmetics
		WHERE rarity = $1
		ORDER BY id
	`, rarity)
	if err != nil {
		return nil, fmt.Errorf("list cosmetics by rarity: %w", err)
	}

	return scanCosmetics(rows)
}

func (r *cosmeticsRepo) ListByRarityIn(tx *sql.Tx, rarity cosmetics.Rarity, ids []uuid.UUID) ([]cosmetics.Cosmetic, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	idStrs := make([]string, len(ids))
	for i, id := range ids {
		idStrs[i] = id.String()
	}

	rows, err := tx.Query(`
		SELECT id, name, rarity
		FROM cosmetics
		WHERE rarity = $1
		  AND id = ANY($2::uuid[])
		ORDER BY id
	`, rarity, idStrs)
	if err != nil {
		return nil, fmt.Errorf("list cosmetics by rarity in set: %w", err)
	}

	return scanCosmetics(rows)
}

func (r *cosmeticsRepo) Owns(tx *sql.Tx, userID, cosmeticID uuid.UUID) (bool, error) {
	var owns bool

	err := tx.QueryRow(`
		SELECT EXISTS (
			SELECT 1 FROM user_cosmetics
			WHERE user_id = $1 AND cosmetic_id = $2
		)
	`, userID, cosmeticID).Scan(&owns)
	if err != nil {
		return false, fmt.Errorf("check cosmetic ownership: %w", err)
	}

	return owns, nil
}

func (r *cosmeticsRepo) Grant(tx *sql.Tx, userID, cosmeticID uuid.UUID, acquiredFrom string) error {
	_, err := tx.Exec(`
		INSERT INTO user_cosmetics (user_id, cosmetic_id, acquired_from)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, cosmetic_id) DO NOTHING
	`, userID, cosmeticID, acquiredFrom)
	if err != nil {
		return fmt.Errorf("grant cosmetic: %w", err)
	}

	return nil
}

func scanCosmetics(rows *sql.Rows) ([]cosmetics.Cosmetic, error) {
	defer rows.Close()

	var out []cosmetics.Cosmetic

	for rows.Next() {
		var c cosmetics.Cosmetic

		err := rows.Scan(&c.ID, &c.Name, &c.Rarity)
		if err != nil {
			return nil, fmt.Errorf("scan cosmetic: %w", err)
		}

		out = append(out, c)
	}

	err := rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate cosmetics: %w", err)
	}

	return out, nil
}
