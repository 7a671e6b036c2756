package wallets

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrWalletNotFound    = errors.New("wallet not found")
	ErrUnknownCurrency   = errors.New("unknown currency")
)

type Currency string

const (
	CurrencyCoins Currency = "coins"
	CurrencyGems  Currency = "gems"
)

func (c Currency) Valid() bool {
	return c == CurrencyCoins || c == CurrencyGems
}

// Starting grant applied when a balance row is lazily created.
const (
	StartingCoins int64 = 100
	StartingGems  int64 = 10
)

type Balance struct {
	UserID              uuid.UUID
	Coins               int64
	Gems                int64
	LifetimeCoinsEarned int64
	LifetimeGemsEarned  int64
	CreatedAt           time.Time
}

// Amount returns the current amount of the given currency.
func (b *Balance) Amount(c Currency) int64 {
	if c == CurrencyGems {
		return b.Gems
	}

	return b.Coins
}

type Wallets interface {
	// Ensure creates the balance row with the starting grant if absent. It
	// reports whether a row was created so the caller can log the grant.
	Ensure(tx *sql.Tx, userID uuid.UUID) (created bool, err error)
	Get(ctx context.Context, userID uuid.UUID) (*Balance, error)
	GetTx(tx *sql.Tx, userID uuid.UUID) (*Balance, error)
	// Credit adds amount and bumps the lifetime-earned counter, returning the
	// resulting balance of that currency.
	Credit(tx *sql.Tx, userID uuid.UUID, currency Currency, amount int64) (int64, error)
	// Debit subtracts amount guarded by `balance >= amount` in a single
	// conditional UPDATE; it returns ErrInsufficientFunds when the guard
	// rejects the row.
	Debit(tx *sql.Tx, userID uuid.UUID, currency Currency, amount int64) (int64, error)
}
