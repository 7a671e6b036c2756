package sparkshop

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrItemUnavailable = errors.New("spark shop item unavailable")
	ErrExchangeLimit   = errors.New("spark shop exchange limit reached")
)

// Item is one exchangeable entry of a banner's spark shop.
type Item struct {
	ID             uuid.UUID
	BannerID       uuid.UUID
	CosmeticID     uuid.UUID
	SparkCost      int64
	MaxExchanges   int
	TimesExchanged int
	IsAvailable    bool
}

type Shop interface {
	List(ctx context.Context, bannerID uuid.UUID) ([]Item, error)
	// GetItem returns the available entry for (banner, cosmetic), or
	// ErrItemUnavailable.
	GetItem(tx *sql.Tx, bannerID, cosmeticID uuid.UUID) (*Item, error)
	// IncrementExchanged bumps the exchange counter guarded by
	// `times_exchanged < max_exchanges`; ErrExchangeLimit when exhausted.
	IncrementExchanged(tx *sql.Tx, itemID uuid.UUID) error
	// RecordExchange appends to the immutable exchange history.
	RecordExchange(tx *sql.Tx, userID, bannerID, cosmeticID uuid.UUID, sparksSpent int64) error
}
