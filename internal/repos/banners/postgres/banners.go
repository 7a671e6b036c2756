package banners

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/versebattle/engine/internal/repos/banners"
)

var _ banners.Banners = (*bannersRepo)(nil)

type bannersRepo struct{ db *sql.DB }

func New(db *sql.DB) *bannersRepo {
	return &bannersRepo{db: db}
}

const bannerColumns = `
	id, name, cost_gems, pity_threshold, rate_up_multiplier,
	guaranteed_rarity, multi_pull_discount_pct, starts_at, ends_at, is_active
`

func (r *bannersRepo) Get(ctx context.Context, id uuid.UUID) (*banners.Banner, error) {
	var b banners.Banner

	err := r.db.QueryRowContext(ctx, `
		SELECT `+bannerColumns+`
		FROM banners
		WHERE id = $1
	`, id).Scan(
		&b.ID, &b.Name, &b.CostGems, &b.PityThreshold, &b.RateUpMultiplier,
		&b.GuaranteedRarity, &b.MultiPullDiscountPct, &b.StartsAt, &b.EndsAt, &b.IsActive,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, banners.ErrBannerNotFound
		}

		return nil, fmt.Errorf("get banner: %w", err)
	}

	b.FeaturedCosmeticIDs, err = r.featuredIDs(ctx, b.ID)
	if err != nil {
		return nil, err
	}

	return &b, nil
}

func (r *bannersRepo) ListActive(ctx context.Context, now time.Time) ([]banners.Banner, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+bannerColumns+`
		FROM banners
		WHERE is_active
		  AND starts_at <= $1
		  AND ends_at >= $1
		ORDER BY starts_at DESC
	`, now)
	if err != nil {
		return nil, fmt.Errorf("list active banners: %w", err)
	}
	defer rows.Close()

	var out []banners.Banner

	for rows.Next() {
		var b banners.Banner

		err := rows.Scan(
			&b.ID, &b.Name, &b.CostGems, &b.PityThreshold, &b.RateUpMultiplier,
			&b.GuaranteedRarity, &b.MultiPullDiscountPct, &b.StartsAt, &b.EndsAt, &b.IsActive,
		)
		if err != nil {
			return nil, fmt.Errorf("scan banner: %w", err)
		}

		out = append(out, b)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate banners: %w", err)
	}

	for i := range out {
		out[i].FeaturedCosmeticIDs, err = r.featuredIDs(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
	}

	return out, nil
}

func (r *bannersRepo) featuredIDs(ctx context.Context, bannerID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT cosmetic_id
		FROM banner_featured
		WHERE banner_id = $1
		ORDER BY cosmetic_id
	`, bannerID)
	if err != nil {
		return nil, fmt.Errorf("list featured cosmetics: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID

	for rows.Next() {
		var id uuid.UUID

		err := rows.Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("scan featured cosmetic id: %w", err)
		}

		ids = append(ids, id)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate featured cosmetics: %w", err)
	}

	return ids, nil
}
