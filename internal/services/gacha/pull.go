package gacha

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/versebattle/engine/internal/infra/pgutils"
	"github.com/versebattle/engine/internal/repos/banners"
	"github.com/versebattle/engine/internal/repos/cosmetics"
	"github.com/versebattle/engine/internal/repos/pity"
	"github.com/versebattle/engine/internal/repos/pulls"
	"github.com/versebattle/engine/internal/repos/wallets"
)

// PullSingle performs one paid draw against a banner. The gem debit, the
// grant (or duplicate conversion), the pity bookkeeping, and the history
// record all commit in one database transaction.
func (s *Service) PullSingle(ctx context.Context, userID, bannerID uuid.UUID) (*PullResult, error) {
	banner, err := s.activeBanner(ctx, bannerID)
	if err != nil {
		return nil, fmt.Errorf("pull single: %w", err)
	}

	var result *PullResult

	err = pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		_, err := s.ledger.DebitTx(tx, userID, wallets.CurrencyGems, banner.CostGems, "gacha_pull_"+bannerID.String())
		if err != nil {
			return err
		}

		tracker, err := s.lockTracker(tx, userID, bannerID)
		if err != nil {
			return err
		}

		result, err = s.draw(tx, userID, banner, tracker)
		if err != nil {
			return err
		}

		err = s.trackers.Flush(tx, tracker)
		if err != nil {
			return err
		}

		return s.pulls.Insert(tx, pulls.Pull{
			ID:         uuid.New(),
			UserID:     userID,
			BannerID:   bannerID,
			CosmeticID: result.Cosmetic.ID,
			Rarity:     result.Cosmetic.Rarity,
			WasPity:    result.WasPity,
			WasRateUp:  result.WasRateUp,
			PullType:   pulls.PullTypeSingle,
			PullNumber: 1,
			GemsSpent:  banner.CostGems,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("pull single: %w", err)
	}

	return result, nil
}

// PullMulti performs ten draws billed once up front at the discounted batch
// price. Pity state advances against an in-memory working copy so a pity
// trigger mid-batch is honored by later draws, and is persisted once at the
// end; the whole batch shares one database transaction with the debit.
func (s *Service) PullMulti(ctx context.Context, userID, bannerID uuid.UUID) ([]PullResult, error) {
	banner, err := s.activeBanner(ctx, bannerID)
	if err != nil {
		return nil, fmt.Errorf("pull multi: %w", err)
	}

	totalCost := multiPullCost(banner)
	results := make([]PullResult, 0, multiPullSize)

	err = pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		_, err := s.ledger.DebitTx(tx, userID, wallets.CurrencyGems, totalCost, "gacha_multi_pull_"+bannerID.String())
		if err != nil {
			return err
		}

		tracker, err := s.lockTracker(tx, userID, bannerID)
		if err != nil {
			return err
		}

		for i := 1; i <= multiPullSize; i++ {
			result, err := s.draw(tx, userID, banner, tracker)
			if err != nil {
				return err
			}

			results = append(results, *result)

			err = s.pulls.Insert(tx, pulls.Pull{
				ID:         uuid.New(),
				UserID:     userID,
				BannerID:   bannerID,
				CosmeticID: result.Cosmetic.ID,
				Rarity:     result.Cosmetic.Rarity,
				WasPity:    result.WasPity,
				WasRateUp:  result.WasRateUp,
				PullType:   pulls.PullTypeMulti,
				PullNumber: i,
				GemsSpent:  totalCost / multiPullSize,
			})
			if err != nil {
				return err
			}
		}

		return s.trackers.Flush(tx, tracker)
	})
	if err != nil {
		return nil, fmt.Errorf("pull multi: %w", err)
	}

	return results, nil
}

// lockTracker lazily creates and then row-locks the pity tracker,
// serializing concurrent pulls on the same (user, banner).
func (s *Service) lockTracker(tx *sql.Tx, userID, bannerID uuid.UUID) (*pity.Tracker, error) {
	err := s.trackers.Ensure(tx, userID, bannerID)
	if err != nil {
		return nil, err
	}

	return s.trackers.LockAndGet(tx, userID, bannerID)
}

// draw resolves one pull: pity check, rarity roll, cosmetic pick, grant or
// duplicate conversion. It advances the tracker in memory; the caller
// flushes.
func (s *Service) draw(tx *sql.Tx, userID uuid.UUID, banner *banners.Banner, tracker *pity.Tracker) (*PullResult, error) {
	isPity := tracker.PullsSinceLastLegendary >= banner.PityThreshold

	var rarity cosmetics.Rarity
	if isPity {
		rarity = banner.GuaranteedRarity
	} else {
		rarity = rollRarity(banner, s.rng)
	}

	chosen, wasRateUp, err := s.pickCosmetic(tx, banner, rarity)
	if err != nil {
		return nil, err
	}

	result := &PullResult{
		Cosmetic:  *chosen,
		WasPity:   isPity,
		WasRateUp: wasRateUp,
	}

	owns, err := s.cosmetics.Owns(tx, userID, chosen.ID)
	if err != nil {
		return nil, err
	}

	if owns {
		result.Duplicate = true
		result.DuplicateCoins = duplicateReward[rarity]

		_, err = s.ledger.CreditTx(tx, userID, wallets.CurrencyCoins, result.DuplicateCoins, "gacha_duplicate_"+chosen.ID.String())
		if err != nil {
			return nil, err
		}
	} else {
		err = s.cosmetics.Grant(tx, userID, chosen.ID, "gacha")
		if err != nil {
			return nil, err
		}
	}

	tracker.Apply(rarity)

	return result, nil
}

// pickCosmetic selects the granted cosmetic: with a non-empty featured pool
// there is a 50% chance to restrict the pick to featured items of the rolled
// rarity, falling back to the general pool when that subset is empty.
func (s *Service) pickCosmetic(tx *sql.Tx, banner *banners.Banner, rarity cosmetics.Rarity) (*cosmetics.Cosmetic, bool, error) {
	if len(banner.FeaturedCosmeticIDs) > 0 && s.rng.Float64() < 0.5 {
		featured, err := s.cosmetics.ListByRarityIn(tx, rarity, banner.FeaturedCosmeticIDs)
		if err != nil {
			return nil, false, err
		}

		if len(featured) > 0 {
			return &featured[pickIndex(s.rng, len(featured))], true, nil
		}
	}

	pool, err := s.cosmetics.ListByRarity(tx, rarity)
	if err != nil {
		return nil, false, err
	}

	if len(pool) == 0 {
		return nil, false, ErrPoolEmpty
	}

	return &pool[pickIndex(s.rng, len(pool))], false, nil
}
