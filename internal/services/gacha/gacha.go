// Package gacha implements the weighted randomized-reward engine: banner
// pulls with pity and rate-up guarantees, duplicate conversion, and the spark
// shop.
package gacha

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/versebattle/engine/internal/infra/pgutils"
	"github.com/versebattle/engine/internal/repos/banners"
	pgbanners "github.com/versebattle/engine/internal/repos/banners/postgres"
	"github.com/versebattle/engine/internal/repos/cosmetics"
	pgcosmetics "github.com/versebattle/engine/internal/repos/cosmetics/postgres"
	"github.com/versebattle/engine/internal/repos/pity"
	pgpity "github.com/versebattle/engine/internal/repos/pity/postgres"
	"github.com/versebattle/engine/internal/repos/pulls"
	pgpulls "github.com/versebattle/engine/internal/repos/pulls/postgres"
	"github.com/versebattle/engine/internal/repos/sparkshop"
	pgsparkshop "github.com/versebattle/engine/internal/repos/sparkshop/postgres"
	"github.com/versebattle/engine/internal/services/ledger"
)

var (
	ErrBannerInactive = errors.New("banner inactive")
	ErrPoolEmpty      = errors.New("gacha pool empty")
)

const multiPullSize = 10

type Service struct {
	db        *sql.DB
	ledger    *ledger.Service
	banners   banners.Banners
	trackers  pity.Trackers
	cosmetics cosmetics.Cosmetics
	pulls     pulls.Pulls
	shop      sparkshop.Shop
	rng       RandomSource
}

func New(db *sql.DB, ledgerSvc *ledger.Service, rng RandomSource) *Service {
	if rng == nil {
		rng = DefaultSource()
	}

	return &Service{
		db:        db,
		ledger:    ledgerSvc,
		banners:   pgbanners.New(db),
		trackers:  pgpity.New(db),
		cosmetics: pgcosmetics.New(db),
		pulls:     pgpulls.New(db),
		shop:      pgsparkshop.New(db),
		rng:       rng,
	}
}

// PullResult is the outcome of one draw.
type PullResult struct {
	Cosmetic       cosmetics.Cosmetic
	WasPity        bool
	WasRateUp      bool
	Duplicate      bool
	DuplicateCoins int64
}

// ListActiveBanners returns banners currently inside their active window.
func (s *Service) ListActiveBanners(ctx context.Context) ([]banners.Banner, error) {
	list, err := s.banners.ListActive(ctx, time.Now())
	if err != nil {
		return nil, fmt.Errorf("list banners: %w", err)
	}

	return list, nil
}

// PityStatus returns the user's pity tracker for a banner, creating it lazily.
func (s *Service) PityStatus(ctx context.Context, userID, bannerID uuid.UUID) (*pity.Tracker, error) {
	_, err := s.banners.Get(ctx, bannerID)
	if err != nil {
		return nil, fmt.Errorf("pity status: %w", err)
	}

	err = pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		return s.trackers.Ensure(tx, userID, bannerID)
	})
	if err != nil {
		return nil, fmt.Errorf("pity status: %w", err)
	}

	t, err := s.trackers.Get(ctx, userID, bannerID)
	if err != nil {
		return nil, fmt.Errorf("pity status: %w", err)
	}

	return t, nil
}

// PullHistory returns the user's most recent pulls.
func (s *Service) PullHistory(ctx context.Context, userID uuid.UUID, limit int) ([]pulls.Pull, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	list, err := s.pulls.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("pull history: %w", err)
	}

	return list, nil
}

// SparkShop lists the exchangeable cosmetics of a banner.
func (s *Service) SparkShop(ctx context.Context, bannerID uuid.UUID) ([]sparkshop.Item, error) {
	items, err := s.shop.List(ctx, bannerID)
	if err != nil {
		return nil, fmt.Errorf("spark shop: %w", err)
	}

	return items, nil
}

func (s *Service) activeBanner(ctx context.Context, bannerID uuid.UUID) (*banners.Banner, error) {
	b, err := s.banners.Get(ctx, bannerID)
	if err != nil {
		return nil, err
	}

	if !b.ActiveAt(time.Now()) {
		return nil, ErrBannerInactive
	}

	return b, nil
}
