// Package matchmaking pairs waiting players by skill proximity within a
// (battle type, bet tier) partition and escrows both wagers at match time.
package matchmaking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/versebattle/engine/internal/infra/pgutils"
	"github.com/versebattle/engine/internal/repos/battles"
	pgbattles "github.com/versebattle/engine/internal/repos/battles/postgres"
	"github.com/versebattle/engine/internal/repos/queue"
	redisqueue "github.com/versebattle/engine/internal/repos/queue/redis"
	"github.com/versebattle/engine/internal/repos/ratings"
	pgratings "github.com/versebattle/engine/internal/repos/ratings/postgres"
	"github.com/versebattle/engine/internal/repos/wallets"
	"github.com/versebattle/engine/internal/services/ledger"
)

var ErrInvalidBattleType = errors.New("invalid battle type for matchmaking")

const (
	// SkillRange is the maximum skill distance between matched players.
	SkillRange = 200
	// QueueTTL bounds how long an abandoned entry can block a partition.
	QueueTTL = 60 * time.Second
)

type Service struct {
	db      *sql.DB
	ledger  *ledger.Service
	queue   queue.Queue
	ratings ratings.Ratings
	battles battles.Battles
}

func New(db *sql.DB, client *redis.Client, ledgerSvc *ledger.Service) *Service {
	return &Service{
		db:      db,
		ledger:  ledgerSvc,
		queue:   redisqueue.New(client),
		ratings: pgratings.New(db),
		battles: pgbattles.New(db),
	}
}

// JoinResult reports either the created battle or that the caller is waiting.
type JoinResult struct {
	BattleID *uuid.UUID
	Waiting  bool
}

// JoinQueue tries to match the caller against a waiting player in the same
// partition, escrowing both wagers on success; otherwise the caller is
// queued. The candidate pop is a single atomic operation, so two concurrent
// joiners can never claim the same waiting entry.
func (s *Service) JoinQueue(ctx context.Context, userID uuid.UUID, battleType battles.Type, betCoins, betGems int64) (*JoinResult, error) {
	if battleType != battles.TypeRanked && battleType != battles.TypeCasual {
		return nil, ErrInvalidBattleType
	}

	if betCoins < 0 || betGems < 0 {
		return nil, ledger.ErrInvalidAmount
	}

	affordable, err := s.ledger.CanAfford(ctx, userID, betCoins, betGems)
	if err != nil {
		return nil, fmt.Errorf("join queue: %w", err)
	}

	if !affordable {
		return nil, wallets.ErrInsufficientFunds
	}

	skill, err := s.resolveSkill(ctx, userID, battleType)
	if err != nil {
		return nil, fmt.Errorf("join queue: %w", err)
	}

	partition := queue.Partition{BattleType: battleType, BetCoins: betCoins, BetGems: betGems}

	opponentID, opponentSkill, found, err := s.queue.PopInRange(ctx, partition, skill-SkillRange, skill+SkillRange, userID)
	if err != nil {
		return nil, fmt.Errorf("join queue: %w", err)
	}

	if !found {
		err = s.queue.Add(ctx, partition, userID, skill, QueueTTL)
		if err != nil {
			return nil, fmt.Errorf("join queue: %w", err)
		}

		return &JoinResult{Waiting: true}, nil
	}

	return s.createMatch(ctx, partition, userID, skill, opponentID, opponentSkill)
}

// createMatch creates the battle and escrows both wagers in one database
// transaction. If an escrow debit fails the transaction rolls back and the
// innocently popped side is restored, so no partial state survives.
func (s *Service) createMatch(ctx context.Context, partition queue.Partition, userID uuid.UUID, skill int, opponentID uuid.UUID, opponentSkill int) (*JoinResult, error) {
	battle := &battles.Battle{
		ID:        uuid.New(),
		Player1ID: opponentID,
		Player2ID: userID,
		Type:      partition.BattleType,
		Status:    battles.StatusMatched,
		BetCoins:  partition.BetCoins,
		BetGems:   partition.BetGems,
	}

	callerDebited := false

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		err := s.battles.Create(tx, battle)
		if err != nil {
			return err
		}

		err = s.escrow(tx, userID, battle)
		if err != nil {
			return err
		}

		callerDebited = true

		return s.escrow(tx, opponentID, battle)
	})
	if err == nil {
		return &JoinResult{BattleID: &battle.ID}, nil
	}

	if !errors.Is(err, wallets.ErrInsufficientFunds) {
		return nil, fmt.Errorf("create match: %w", err)
	}

	if !callerDebited {
		// The caller raced their own balance down: put the opponent back so
		// they keep waiting, and report the failure.
		addErr := s.queue.Add(ctx, partition, opponentID, opponentSkill, QueueTTL)
		if addErr != nil {
			return nil, fmt.Errorf("requeue opponent: %w", errors.Join(err, addErr))
		}

		return nil, wallets.ErrInsufficientFunds
	}

	// The opponent spent their wager while waiting: drop them and queue the
	// caller instead.
	addErr := s.queue.Add(ctx, partition, userID, skill, QueueTTL)
	if addErr != nil && !errors.Is(addErr, queue.ErrAlreadyInQueue) {
		return nil, fmt.Errorf("requeue caller: %w", addErr)
	}

	return &JoinResult{Waiting: true}, nil
}

func (s *Service) escrow(tx *sql.Tx, userID uuid.UUID, battle *battles.Battle) error {
	reason := "battle_bet_" + battle.ID.String()

	if battle.BetCoins > 0 {
		_, err := s.ledger.DebitTx(tx, userID, wallets.CurrencyCoins, battle.BetCoins, reason)
		if err != nil {
			return err
		}
	}

	if battle.BetGems > 0 {
		_, err := s.ledger.DebitTx(tx, userID, wallets.CurrencyGems, battle.BetGems, reason)
		if err != nil {
			return err
		}
	}

	return nil
}

// LeaveQueue removes the caller from a partition; repeated calls are no-ops.
func (s *Service) LeaveQueue(ctx context.Context, userID uuid.UUID, battleType battles.Type, betCoins, betGems int64) (bool, error) {
	if battleType != battles.TypeRanked && battleType != battles.TypeCasual {
		return false, ErrInvalidBattleType
	}

	partition := queue.Partition{BattleType: battleType, BetCoins: betCoins, BetGems: betGems}

	removed, err := s.queue.Remove(ctx, partition, userID)
	if err != nil {
		return false, fmt.Errorf("leave queue: %w", err)
	}

	return removed, nil
}

func (s *Service) resolveSkill(ctx context.Context, userID uuid.UUID, battleType battles.Type) (int, error) {
	if battleType != battles.TypeRanked {
		return ratings.DefaultRating, nil
	}

	return s.ratings.Get(ctx, userID)
}
