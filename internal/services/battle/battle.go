// Package battle drives a paired battle from matched state through verse
// rounds and community voting to a settled outcome, paying out or refunding
// wagers through the ledger.
package battle

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/versebattle/engine/internal/infra/pgutils"
	"github.com/versebattle/engine/internal/repos/battles"
	pgbattles "github.com/versebattle/engine/internal/repos/battles/postgres"
	"github.com/versebattle/engine/internal/repos/friendships"
	pgfriendships "github.com/versebattle/engine/internal/repos/friendships/postgres"
	"github.com/versebattle/engine/internal/repos/ratings"
	pgratings "github.com/versebattle/engine/internal/repos/ratings/postgres"
	"github.com/versebattle/engine/internal/repos/wallets"
	"github.com/versebattle/engine/internal/services/ledger"
)

var (
	ErrNotParticipant     = errors.New("user is not a battle participant")
	ErrFriendshipRequired = errors.New("friendly battles require an accepted friendship")
	ErrInvalidVerse       = errors.New("invalid verse")
	ErrInvalidVoteTarget  = errors.New("vote target is not a battle participant")
	ErrSelfBattle         = errors.New("cannot battle yourself")
)

type Service struct {
	db          *sql.DB
	ledger      *ledger.Service
	battles     battles.Battles
	friendships friendships.Friendships
	ratings     ratings.Ratings
}

func New(db *sql.DB, ledgerSvc *ledger.Service) *Service {
	return &Service{
		db:          db,
		ledger:      ledgerSvc,
		battles:     pgbattles.New(db),
		friendships: pgfriendships.New(db),
		ratings:     pgratings.New(db),
	}
}

// Detail is a battle with its rounds, for read endpoints.
type Detail struct {
	Battle *battles.Battle
	Rounds []battles.Round
}

// CreateFriendly starts a zero-wager battle between two accepted friends.
// Friendly battles bypass matchmaking and carry no bets.
func (s *Service) CreateFriendly(ctx context.Context, userID, friendID uuid.UUID) (*battles.Battle, error) {
	if userID == friendID {
		return nil, ErrSelfBattle
	}

	accepted, err := s.friendships.Accepted(ctx, userID, friendID)
	if err != nil {
		return nil, fmt.Errorf("create friendly battle: %w", err)
	}

	if !accepted {
		return nil, ErrFriendshipRequired
	}

	battle := &battles.Battle{
		ID:        uuid.New(),
		Player1ID: userID,
		Player2ID: friendID,
		Type:      battles.TypeFriendly,
		Status:    battles.StatusMatched,
	}

	err = pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		return s.battles.Create(tx, battle)
	})
	if err != nil {
		return nil, fmt.Errorf("create friendly battle: %w", err)
	}

	return battle, nil
}

// Start advances the battle from matched to in progress. Calling it on a
// battle that already started is a no-op; it reports whether this call did
// the transition.
func (s *Service) Start(ctx context.Context, battleID uuid.UUID) (bool, error) {
	started, err := s.battles.MarkStarted(ctx, battleID)
	if err != nil {
		return false, fmt.Errorf("start battle: %w", err)
	}

	if !started {
		// Distinguish an already running battle from a missing one.
		_, err = s.battles.Get(ctx, battleID)
		if err != nil {
			return false, fmt.Errorf("start battle: %w", err)
		}
	}

	return started, nil
}

// SubmitVerse records the caller's verse for a round, overwriting any
// previous text for their seat.
func (s *Service) SubmitVerse(ctx context.Context, battleID, playerID uuid.UUID, roundNumber int, verse string) error {
	if roundNumber < 1 || verse == "" {
		return ErrInvalidVerse
	}

	battle, err := s.battles.Get(ctx, battleID)
	if err != nil {
		return fmt.Errorf("submit verse: %w", err)
	}

	if battle.Status != battles.StatusInProgress {
		return battles.ErrInvalidState
	}

	seat := battle.Seat(playerID)
	if seat == 0 {
		return ErrNotParticipant
	}

	err = s.battles.UpsertVerse(ctx, battleID, roundNumber, seat, verse)
	if err != nil {
		return fmt.Errorf("submit verse: %w", err)
	}

	return nil
}

// VoteRound records one voter's pick for a round and recomputes both seats'
// tallies. A voter gets exactly one vote per round; repeats fail with
// ErrDuplicateVote.
func (s *Service) VoteRound(ctx context.Context, battleID, voterID, votedFor uuid.UUID, roundNumber int) error {
	battle, err := s.battles.Get(ctx, battleID)
	if err != nil {
		return fmt.Errorf("vote round: %w", err)
	}

	if battle.Status != battles.StatusInProgress {
		return battles.ErrInvalidState
	}

	if battle.Seat(votedFor) == 0 {
		return ErrInvalidVoteTarget
	}

	err = pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		err := s.battles.InsertVote(tx, battleID, roundNumber, voterID, votedFor)
		if err != nil {
			return err
		}

		return s.battles.RecountVotes(tx, battleID, roundNumber, battle.Player1ID, battle.Player2ID)
	})
	if err != nil {
		if errors.Is(err, battles.ErrDuplicateVote) {
			return battles.ErrDuplicateVote
		}

		return fmt.Errorf("vote round: %w", err)
	}

	return nil
}

// Finalize settles an in-progress battle from its round tallies. The seat
// winning strictly more rounds takes 2x each wagered currency; an exact tie
// in round wins refunds both players their own wager. The status flip is a
// conditional update, so concurrent finalize calls settle at most once.
func (s *Service) Finalize(ctx context.Context, battleID uuid.UUID) (*battles.Battle, error) {
	var settled *battles.Battle

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		battle, err := s.battles.LockAndGet(tx, battleID)
		if err != nil {
			return err
		}

		if battle.Status != battles.StatusInProgress {
			return battles.ErrInvalidState
		}

		rounds, err := s.battles.ListRoundsTx(tx, battleID)
		if err != nil {
			return err
		}

		seat1Wins, seat2Wins := countRoundWins(rounds)

		battle.Player1Score = seat1Wins
		battle.Player2Score = seat2Wins

		switch {
		case seat1Wins > seat2Wins:
			battle.WinnerID = &battle.Player1ID
			battle.LoserID = &battle.Player2ID
		case seat2Wins > seat1Wins:
			battle.WinnerID = &battle.Player2ID
			battle.LoserID = &battle.Player1ID
		}

		err = s.battles.Complete(tx, battleID, battle.WinnerID, battle.LoserID, seat1Wins, seat2Wins)
		if err != nil {
			return err
		}

		err = s.settle(tx, battle)
		if err != nil {
			return err
		}

		err = s.adjustRatings(tx, battle)
		if err != nil {
			return err
		}

		settled = battle

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("finalize battle: %w", err)
	}

	return settled, nil
}

// settle pays out the winner 2x each wagered currency, or refunds both
// players' own wagers on a tie. Friendly battles wager nothing, so this is a
// no-op for them.
func (s *Service) settle(tx *sql.Tx, battle *battles.Battle) error {
	if battle.BetCoins == 0 && battle.BetGems == 0 {
		return nil
	}

	if battle.WinnerID == nil {
		refund := "battle_refund_" + battle.ID.String()

		err := s.payout(tx, battle.Player1ID, battle.BetCoins, battle.BetGems, refund)
		if err != nil {
			return err
		}

		return s.payout(tx, battle.Player2ID, battle.BetCoins, battle.BetGems, refund)
	}

	reason := "battle_win_" + battle.ID.String()

	return s.payout(tx, *battle.WinnerID, battle.BetCoins*2, battle.BetGems*2, reason)
}

// adjustRatings applies the battle's outcome to both players' skill ratings.
// Only ranked battles move ratings; casual and friendly battles leave them
// untouched.
func (s *Service) adjustRatings(tx *sql.Tx, battle *battles.Battle) error {
	if battle.Type != battles.TypeRanked {
		return nil
	}

	rating1, err := s.ratings.GetTx(tx, battle.Player1ID)
	if err != nil {
		return err
	}

	rating2, err := s.ratings.GetTx(tx, battle.Player2ID)
	if err != nil {
		return err
	}

	score1 := 0.5
	if battle.WinnerID != nil {
		if *battle.WinnerID == battle.Player1ID {
			score1 = 1
		} else {
			score1 = 0
		}
	}

	rating1, rating2 = eloAdjust(rating1, rating2, score1)

	err = s.ratings.Upsert(tx, battle.Player1ID, rating1)
	if err != nil {
		return err
	}

	return s.ratings.Upsert(tx, battle.Player2ID, rating2)
}

func (s *Service) payout(tx *sql.Tx, userID uuid.UUID, coins, gems int64, reason string) error {
	if coins > 0 {
		_, err := s.ledger.CreditTx(tx, userID, wallets.CurrencyCoins, coins, reason)
		if err != nil {
			return err
		}
	}

	if gems > 0 {
		_, err := s.ledger.CreditTx(tx, userID, wallets.CurrencyGems, gems, reason)
		if err != nil {
			return err
		}
	}

	return nil
}

// Detail returns a battle with its rounds.
func (s *Service) Detail(ctx context.Context, battleID uuid.UUID) (*Detail, error) {
	battle, err := s.battles.Get(ctx, battleID)
	if err != nil {
		return nil, fmt.Errorf("battle detail: %w", err)
	}

	rounds, err := s.battles.ListRounds(ctx, battleID)
	if err != nil {
		return nil, fmt.Errorf("battle detail: %w", err)
	}

	return &Detail{Battle: battle, Rounds: rounds}, nil
}
