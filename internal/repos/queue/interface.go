package queue

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/versebattle/engine/internal/repos/battles"
)

var ErrAlreadyInQueue = errors.New("already in queue")

// Partition identifies one matchmaking pool. Entries never match across
// different partitions, so a bet tier can never intercept another tier's
// match.
type Partition struct {
	BattleType battles.Type
	BetCoins   int64
	BetGems    int64
}

type Queue interface {
	// PopInRange atomically finds and removes one waiting user whose skill
	// lies in [minSkill, maxSkill], returning the user and their queued
	// skill. The excluded user is never returned, so a joiner cannot claim
	// their own entry. The find-and-remove is a single atomic operation so
	// two concurrent joiners cannot claim the same entry.
	PopInRange(ctx context.Context, p Partition, minSkill, maxSkill int, exclude uuid.UUID) (uuid.UUID, int, bool, error)
	// Add inserts the user keyed by skill and refreshes the partition's TTL;
	// ErrAlreadyInQueue when the user is already waiting in this partition.
	Add(ctx context.Context, p Partition, userID uuid.UUID, skill int, ttl time.Duration) error
	// Remove is idempotent; it reports whether the user was present.
	Remove(ctx context.Context, p Partition, userID uuid.UUID) (bool, error)
}
