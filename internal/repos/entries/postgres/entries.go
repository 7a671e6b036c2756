package entries

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/versebattle/engine/internal/repos/entries"
	"github.com/versebattle/engine/internal/repos/wallets"
)

var _ entries.Entries = (*entriesRepo)(nil)

type entriesRepo struct{ db *sql.DB }

func New(db *sql.DB) *entriesRepo {
	return &entriesRepo{db: db}
}

func (r *entriesRepo) Insert(tx *sql.Tx, e entries.Entry) error {
	_, err := tx.Exec(`
		INSERT INTO ledger_entries (id, user_id, currency, amount, balance_after, kind, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, e.ID, e.UserID, e.Currency, e.Amount, e.BalanceAfter, e.Kind, e.Source)
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}

	return nil
}

func (r *entriesRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]entries.Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, currency, amount, balance_after, kind, source, created_at
		FROM ledger_entries
		WHERE user_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	var out []entries.Entry

	for rows.Next() {
		var e entries.Entry

		err := rows.Scan(&e.ID, &e.UserID, &e.Currency, &e.Amount, &e.BalanceAfter, &e.Kind, &e.Source, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}

		out = append(out, e)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate ledger entries: %w", err)
	}

	return out, nil
}

func (r *entriesRepo) SumByUser(ctx context.Context, userID uuid.UUID) (int64, int64, error) {
	var coins, gems int64

	err := r.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE currency = $2), 0),
			COALESCE(SUM(amount) FILTER (WHERE currency = $3), 0)
		FROM ledger_entries
		WHERE user_id = $1
	`, userID, wallets.CurrencyCoins, wallets.CurrencyGems).Scan(&coins, &gems)
	if err != nil {
		return 0, 0, fmt.Errorf("sum ledger entries: %w", err)
	}

	return coins, gems, nil
}
