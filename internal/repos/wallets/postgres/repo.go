package wallets

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/versebattle/engine/internal/repos/wallets"
)

var _ wallets.Wallets = (*walletsRepo)(nil)

type walletsRepo struct{ db *sql.DB }

func New(db *sql.DB) *walletsRepo {
	return &walletsRepo{db: db}
}

func (r *walletsRepo) Ensure(tx *sql.Tx, userID uuid.UUID) (bool, error) {
	res, err := tx.Exec(`
		INSERT INTO balances (user_id, coins, gems, lifetime_coins_earned, lifetime_gems_earned)
		VALUES ($1, $2, $3, $2, $3)
		ON CONFLICT (user_id) DO NOTHING
	`, userID, wallets.StartingCoins, wallets.StartingGems)
	if err != nil {
		return false, fmt.Errorf("ensure balance: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}

	return affected == 1, nil
}
