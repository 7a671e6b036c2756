package entries

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/versebattle/engine/internal/repos/wallets"
)

// Kind is the direction of a ledger entry.
type Kind string

const (
	KindCredit Kind = "credit"
	KindDebit  Kind = "debit"
)

// Entry is one immutable row of the append-only ledger. Amount is signed:
// negative for debits, positive for credits. BalanceAfter is the balance of
// the entry's currency right after the mutation, so the log can be audited
// against the balances table.
type Entry struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Currency     wallets.Currency
	Amount       int64
	BalanceAfter int64
	Kind         Kind
	Source       string
	CreatedAt    time.Time
}

type Entries interface {
	Insert(tx *sql.Tx, e Entry) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]Entry, error)
	// SumByUser returns the per-currency sum of all entry amounts for a user.
	// Starting grants are logged too, so the sums must equal the current
	// balances at all times.
	SumByUser(ctx context.Context, userID uuid.UUID) (coins, gems int64, err error)
}
