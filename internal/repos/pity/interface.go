package pity

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/versebattle/engine/internal/repos/cosmetics"
)

var ErrInsufficientSparks = errors.New("insufficient sparks")

// Tracker is the per-(user,banner) pity and spark state. It is created lazily
// on first use and persists for the lifetime of the banner and beyond.
type Tracker struct {
	UserID                  uuid.UUID
	BannerID                uuid.UUID
	PullsSinceLastLegendary int
	PullsSinceLastEpic      int
	TotalPulls              int
	SparkTokens             int64
	TotalLegendary          int
	TotalEpic               int
	TotalRare               int
	LastPullAt              *time.Time
}

// Apply records one pull against the in-memory state. Legendary and epic
// counters reset independently; every pull earns a spark token.
func (t *Tracker) Apply(rarity cosmetics.Rarity) {
	if rarity == cosmetics.RarityLegendary {
		t.PullsSinceLastLegendary = 0
		t.TotalLegendary++
	} else {
		t.PullsSinceLastLegendary++
	}

	if rarity == cosmetics.RarityEpic {
		t.PullsSinceLastEpic = 0
		t.TotalEpic++
	} else {
		t.PullsSinceLastEpic++
	}

	if rarity == cosmetics.RarityRare {
		t.TotalRare++
	}

	t.TotalPulls++
	t.SparkTokens++
}

type Trackers interface {
	Ensure(tx *sql.Tx, userID, bannerID uuid.UUID) error
	Get(ctx context.Context, userID, bannerID uuid.UUID) (*Tracker, error)
	// LockAndGet reads the tracker row FOR UPDATE, serializing concurrent
	// pulls on the same (user, banner).
	LockAndGet(tx *sql.Tx, userID, bannerID uuid.UUID) (*Tracker, error)
	// Flush persists counters previously advanced in memory via Apply.
	Flush(tx *sql.Tx, t *Tracker) error
	// SpendSparks debits spark tokens guarded by `spark_tokens >= cost` in a
	// single conditional UPDATE.
	SpendSparks(tx *sql.Tx, userID, bannerID uuid.UUID, cost int64) error
}
