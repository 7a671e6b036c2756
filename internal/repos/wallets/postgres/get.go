package wallets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/versebattle/engine/internal/repos/wallets"
)

const getQuery = `
	SELECT user_id, coins, gems, lifetime_coins_earned, lifetime_gems_earned, created_at
	FROM balances
	WHERE user_id = $1
`

func (r *walletsRepo) Get(ctx context.Context, userID uuid.UUID) (*wallets.Balance, error) {
	return scanBalance(r.db.QueryRowContext(ctx, getQuery, userID))
}

func (r *walletsRepo) GetTx(tx *sql.Tx, userID uuid.UUID) (*wallets.Balance, error) {
	return scanBalance(tx.QueryRow(getQuery, userID))
}

func scanBalance(row *sql.Row) (*wallets.Balance, error) {
	var b wallets.Balance

	err := row.Scan(
		&b.UserID,
		&b.Coins,
		&b.Gems,
		&b.LifetimeCoinsEarned,
		&b.LifetimeGemsEarned,
		&b.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, wallets.ErrWalletNotFound
		}

		return nil, fmt.Errorf("get balance: %w", err)
	}

	return &b, nil
}
