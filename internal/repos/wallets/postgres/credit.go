package wallets

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/versebattle/engine/internal/repos/wallets"
)

const (
	creditCoinsQuery = `
		UPDATE balances
		SET coins = coins + $2,
		    lifetime_coins_earned = lifetime_coins_earned + $2
		WHERE user_id = $1
		RETURNING coins
	`
	creditGemsQuery = `
		UPDATE balances
		SET gems = gems + $2,
		    lifetime_gems_earned = lifetime_gems_earned + $2
		WHERE user_id = $1
		RETURNING gems
	`
)

func (r *walletsRepo) Credit(tx *sql.Tx, userID uuid.UUID, currency wallets.Currency, amount int64) (int64, error) {
	var query string

	switch currency {
	case wallets.CurrencyCoins:
		query = creditCoinsQuery
	case wallets.CurrencyGems:
		query = creditGemsQuery
	default:
		return 0, wallets.ErrUnknownCurrency
	}

	var after int64

	err := tx.QueryRow(query, userID, amount).Scan(&after)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, wallets.ErrWalletNotFound
		}

		return 0, fmt.Errorf("credit balance: %w", err)
	}

	return after, nil
}
