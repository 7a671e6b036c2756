// Package ledger owns coin and gem balances and the append-only transaction
// log. Every other component mutates money only through this service, and
// every mutation is a conditionally-guarded UPDATE paired with a log entry in
// the same database transaction.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/versebattle/engine/internal/infra/pgutils"
	"github.com/versebattle/engine/internal/repos/entries"
	pgentries "github.com/versebattle/engine/internal/repos/entries/postgres"
	"github.com/versebattle/engine/internal/repos/wallets"
	pgwallets "github.com/versebattle/engine/internal/repos/wallets/postgres"
)

var ErrInvalidAmount = errors.New("invalid amount")

// GemToCoinRate is the coins received per gem on conversion.
const GemToCoinRate = 10

type Service struct {
	db      *sql.DB
	wallets wallets.Wallets
	entries entries.Entries
}

func New(db *sql.DB) *Service {
	return &Service{
		db:      db,
		wallets: pgwallets.New(db),
		entries: pgentries.New(db),
	}
}

// GetBalance returns the user's balance, lazily creating it with the starting
// grant on first access.
func (s *Service) GetBalance(ctx context.Context, userID uuid.UUID) (*wallets.Balance, error) {
	var bal *wallets.Balance

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		err := s.EnsureTx(tx, userID)
		if err != nil {
			return err
		}

		bal, err = s.wallets.GetTx(tx, userID)
		if err != nil {
			return err
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get balance: %w", err)
	}

	return bal, nil
}

// EnsureTx lazily creates the balance row and, when it does, logs the
// starting grant so the ledger sums stay equal to the balance.
func (s *Service) EnsureTx(tx *sql.Tx, userID uuid.UUID) error {
	created, err := s.wallets.Ensure(tx, userID)
	if err != nil {
		return err
	}

	if !created {
		return nil
	}

	grants := []entries.Entry{
		{
			ID:           uuid.New(),
			UserID:       userID,
			Currency:     wallets.CurrencyCoins,
			Amount:       wallets.StartingCoins,
			BalanceAfter: wallets.StartingCoins,
			Kind:         entries.KindCredit,
			Source:       "starting_grant",
		},
		{
			ID:           uuid.New(),
			UserID:       userID,
			Currency:     wallets.CurrencyGems,
			Amount:       wallets.StartingGems,
			BalanceAfter: wallets.StartingGems,
			Kind:         entries.KindCredit,
			Source:       "starting_grant",
		},
	}

	for _, e := range grants {
		err := s.entries.Insert(tx, e)
		if err != nil {
			return err
		}
	}

	return nil
}

// Credit adds amount to the user's balance and logs it.
func (s *Service) Credit(ctx context.Context, userID uuid.UUID, currency wallets.Currency, amount int64, source string) (int64, error) {
	var after int64

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		after, err = s.CreditTx(tx, userID, currency, amount, source)

		return err
	})
	if err != nil {
		return 0, fmt.Errorf("credit: %w", err)
	}

	return after, nil
}

// CreditTx is Credit within a caller-owned transaction; the gacha and battle
// services use it to keep payouts atomic with their own writes.
func (s *Service) CreditTx(tx *sql.Tx, userID uuid.UUID, currency wallets.Currency, amount int64, source string) (int64, error) {
	err := validate(currency, amount)
	if err != nil {
		return 0, err
	}

	err = s.EnsureTx(tx, userID)
	if err != nil {
		return 0, err
	}

	after, err := s.wallets.Credit(tx, userID, currency, amount)
	if err != nil {
		return 0, err
	}

	err = s.entries.Insert(tx, entries.Entry{
		ID:           uuid.New(),
		UserID:       userID,
		Currency:     currency,
		Amount:       amount,
		BalanceAfter: after,
		Kind:         entries.KindCredit,
		Source:       source,
	})
	if err != nil {
		return 0, err
	}

	return after, nil
}

// Debit removes amount from the user's balance and logs it. It fails with
// wallets.ErrInsufficientFunds, leaving state unchanged, when the balance is
// short.
func (s *Service) Debit(ctx context.Context, userID uuid.UUID, currency wallets.Currency, amount int64, reason string) (int64, error) {
	var after int64

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		after, err = s.DebitTx(tx, userID, currency, amount, reason)

		return err
	})
	if err != nil {
		return 0, fmt.Errorf("debit: %w", err)
	}

	return after, nil
}

// DebitTx is Debit within a caller-owned transaction.
func (s *Service) DebitTx(tx *sql.Tx, userID uuid.UUID, currency wallets.Currency, amount int64, reason string) (int64, error) {
	err := validate(currency, amount)
	if err != nil {
		return 0, err
	}

	err = s.EnsureTx(tx, userID)
	if err != nil {
		return 0, err
	}

	after, err := s.wallets.Debit(tx, userID, currency, amount)
	if err != nil {
		return 0, err
	}

	err = s.entries.Insert(tx, entries.Entry{
		ID:           uuid.New(),
		UserID:       userID,
		Currency:     currency,
		Amount:       -amount,
		BalanceAfter: after,
		Kind:         entries.KindDebit,
		Source:       reason,
	})
	if err != nil {
		return 0, err
	}

	return after, nil
}

// CanAfford is a read-only affordability check for combined coin/gem costs.
func (s *Service) CanAfford(ctx context.Context, userID uuid.UUID, costCoins, costGems int64) (bool, error) {
	bal, err := s.GetBalance(ctx, userID)
	if err != nil {
		return false, err
	}

	return bal.Coins >= costCoins && bal.Gems >= costGems, nil
}

// Transfer moves amount between users. Both legs run in one database
// transaction, so a failed credit rolls the debit back instead of stranding
// funds.
func (s *Service) Transfer(ctx context.Context, fromID, toID uuid.UUID, currency wallets.Currency, amount int64, source string) error {
	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		_, err := s.DebitTx(tx, fromID, currency, amount, source+"_to_"+toID.String())
		if err != nil {
			return err
		}

		_, err = s.CreditTx(tx, toID, currency, amount, source+"_from_"+fromID.String())

		return err
	})
	if err != nil {
		return fmt.Errorf("transfer: %w", err)
	}

	return nil
}

// ConvertGems exchanges gems for coins at GemToCoinRate, atomically.
func (s *Service) ConvertGems(ctx context.Context, userID uuid.UUID, gems int64) (*wallets.Balance, error) {
	var bal *wallets.Balance

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		_, err := s.DebitTx(tx, userID, wallets.CurrencyGems, gems, "conversion_to_coins")
		if err != nil {
			return err
		}

		_, err = s.CreditTx(tx, userID, wallets.CurrencyCoins, gems*GemToCoinRate, "conversion_from_gems")
		if err != nil {
			return err
		}

		bal, err = s.wallets.GetTx(tx, userID)

		return err
	})
	if err != nil {
		return nil, fmt.Errorf("convert gems: %w", err)
	}

	return bal, nil
}

// History returns the user's most recent ledger entries.
func (s *Service) History(ctx context.Context, userID uuid.UUID, limit int) ([]entries.Entry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	list, err := s.entries.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}

	return list, nil
}

func validate(currency wallets.Currency, amount int64) error {
	if !currency.Valid() {
		return wallets.ErrUnknownCurrency
	}

	if amount <= 0 {
		return ErrInvalidAmount
	}

	return nil
}
