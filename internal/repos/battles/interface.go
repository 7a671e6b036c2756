package battles

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrBattleNotFound = errors.New("battle not found")
	ErrDuplicateVote  = errors.New("duplicate vote")
	ErrInvalidState   = errors.New("invalid battle state")
)

type Status string

const (
	StatusMatched    Status = "matched"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

type Type string

const (
	TypeRanked   Type = "ranked"
	TypeCasual   Type = "casual"
	TypeFriendly Type = "friendly"
)

func (t Type) Valid() bool {
	return t == TypeRanked || t == TypeCasual || t == TypeFriendly
}

// Battle is a paired 1v1 wager. It is created in matched state and becomes
// terminal at completion; it is never reopened.
type Battle struct {
	ID           uuid.UUID
	Player1ID    uuid.UUID
	Player2ID    uuid.UUID
	Type         Type
	Status       Status
	BetCoins     int64
	BetGems      int64
	Player1Score int
	Player2Score int
	WinnerID     *uuid.UUID
	LoserID      *uuid.UUID
	MatchedAt    time.Time
	StartedAt    *time.Time
	CompletedAt  *time.Time
}

// Seat returns which seat the player occupies (1 or 2), or 0 for
// non-participants.
func (b *Battle) Seat(playerID uuid.UUID) int {
	switch playerID {
	case b.Player1ID:
		return 1
	case b.Player2ID:
		return 2
	default:
		return 0
	}
}

type Round struct {
	BattleID     uuid.UUID
	RoundNumber  int
	Player1Verse string
	Player2Verse string
	Player1Votes int
	Player2Votes int
}

type Battles interface {
	Create(tx *sql.Tx, b *Battle) error
	Get(ctx context.Context, id uuid.UUID) (*Battle, error)
	// LockAndGet reads the battle row FOR UPDATE, serializing settlement.
	LockAndGet(tx *sql.Tx, id uuid.UUID) (*Battle, error)
	// MarkStarted flips matched -> in_progress; it reports whether the row
	// transitioned (false means the battle had already advanced).
	MarkStarted(ctx context.Context, id uuid.UUID) (bool, error)
	// Complete flips in_progress -> completed with the final scores. It is a
	// conditional UPDATE; ErrInvalidState when the battle is not in progress.
	Complete(tx *sql.Tx, id uuid.UUID, winnerID, loserID *uuid.UUID, p1Score, p2Score int) error

	UpsertVerse(ctx context.Context, battleID uuid.UUID, roundNumber, seat int, verse string) error
	// InsertVote appends a vote; the (battle, round, voter) uniqueness
	// constraint turns repeats into ErrDuplicateVote.
	InsertVote(tx *sql.Tx, battleID uuid.UUID, roundNumber int, voterID, votedFor uuid.UUID) error
	// RecountVotes recomputes both seats' tallies for a round in one UPDATE.
	RecountVotes(tx *sql.Tx, battleID uuid.UUID, roundNumber int, player1ID, player2ID uuid.UUID) error
	ListRounds(ctx context.Context, battleID uuid.UUID) ([]Round, error)
	ListRoundsTx(tx *sql.Tx, battleID uuid.UUID) ([]Round, error)
}
