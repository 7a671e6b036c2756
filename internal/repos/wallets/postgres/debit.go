package wallets

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/versebattle/engine/internal/repos/wallets"
)

// The amount guard and the decrement are one conditional UPDATE so two
// concurrent debits can never both pass a stale balance check.
const (
	debitCoinsQuery = `
		UPDATE balances
		SET coins = coins - $2
		WHERE user_id = $1
		  AND coins >= $2
		RETURNING coins
	`
	debitGemsQuery = `
		UPDATE balances
		SET gems = gems - $2
		WHERE user_id = $1
		  AND gems >= $2
		RETURNING gems
	`
)

func (r *walletsRepo) Debit(tx *sql.Tx, userID uuid.UUID, currency wallets.Currency, amount int64) (int64, error) {
	var query string

	switch currency {
	case wallets.CurrencyCoins:
		query = debitCoinsQuery
	case wallets.CurrencyGems:
		query = debitGemsQuery
	default:
		return 0, wallets.ErrUnknownCurrency
	}

	var after int64

	err := tx.QueryRow(query, userID, amount).Scan(&after)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Either the row is missing or the guard rejected it; callers
			// run Ensure first, so this is an insufficient balance.
			return 0, wallets.ErrInsufficientFunds
		}

		return 0, fmt.Errorf("debit balance: %w", err)
	}

	return after, nil
}
