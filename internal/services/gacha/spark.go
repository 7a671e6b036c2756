package gacha

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/versebattle/engine/internal/infra/pgutils"
)

// SparkExchange trades spark tokens for a guaranteed cosmetic from the
// banner's spark shop. The grant is idempotent for already-owned cosmetics.
func (s *Service) SparkExchange(ctx context.Context, userID, bannerID, cosmeticID uuid.UUID) error {
	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		item, err := s.shop.GetItem(tx, bannerID, cosmeticID)
		if err != nil {
			return err
		}

		err = s.shop.IncrementExchanged(tx, item.ID)
		if err != nil {
			return err
		}

		err = s.trackers.Ensure(tx, userID, bannerID)
		if err != nil {
			return err
		}

		err = s.trackers.SpendSparks(tx, userID, bannerID, item.SparkCost)
		if err != nil {
			return err
		}

		err = s.cosmetics.Grant(tx, userID, cosmeticID, "spark_exchange")
		if err != nil {
			return err
		}

		return s.shop.RecordExchange(tx, userID, bannerID, cosmeticID, item.SparkCost)
	})
	if err != nil {
		return fmt.Errorf("spark exchange: %w", err)
	}

	return nil
}
