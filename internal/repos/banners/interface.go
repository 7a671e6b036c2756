package banners

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/versebattle/engine/internal/repos/cosmetics"
)

var ErrBannerNotFound = errors.New("banner not found")

// Banner is the configuration of one gacha banner.
type Banner struct {
	ID                   uuid.UUID
	Name                 string
	CostGems             int64
	PityThreshold        int
	RateUpMultiplier     float64
	GuaranteedRarity     cosmetics.Rarity
	MultiPullDiscountPct int
	FeaturedCosmeticIDs  []uuid.UUID
	StartsAt             time.Time
	EndsAt               time.Time
	IsActive             bool
}

// ActiveAt reports whether the banner accepts pulls at the given time.
func (b *Banner) ActiveAt(now time.Time) bool {
	return b.IsActive && !now.Before(b.StartsAt) && !now.After(b.EndsAt)
}

type Banners interface {
	Get(ctx context.Context, id uuid.UUID) (*Banner, error)
	ListActive(ctx context.Context, now time.Time) ([]Banner, error)
}
