package pulls

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/versebattle/engine/internal/repos/cosmetics"
)

type PullType string

const (
	PullTypeSingle PullType = "single"
	PullTypeMulti  PullType = "multi"
)

// Pull is one immutable row of the pull history.
type Pull struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	BannerID   uuid.UUID
	CosmeticID uuid.UUID
	Rarity     cosmetics.Rarity
	WasPity    bool
	WasRateUp  bool
	PullType   PullType
	PullNumber int
	GemsSpent  int64
	CreatedAt  time.Time
}

type Pulls interface {
	Insert(tx *sql.Tx, p Pull) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]Pull, error)
}
