package sparkshop

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/versebattle/engine/internal/repos/sparkshop"
)

var _ sparkshop.Shop = (*shopRepo)(nil)

type shopRepo struct{ db *sql.DB }

func New(db *sql.DB) *shopRepo {
	return &shopRepo{db: db}
}

func (r *shopRepo) List(ctx context.Context, bannerID uuid.UUID) ([]sparkshop.Item, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, banner_id, cosmetic_id, spark_cost, max_exchanges, times_exchanged, is_available
		FROM spark_shop
		WHERE banner_id = $1
		  AND is_available
		ORDER BY spark_cost
	`, bannerID)
	if err != nil {
		return nil, fmt.Errorf("list spark shop: %w", err)
	}
	defer rows.Close()

	var out []sparkshop.Item

	for rows.Next() {
		var it sparkshop.Item

		err := rows.Scan(&it.ID, &it.BannerID, &it.CosmeticID, &it.SparkCost,
			&it.MaxExchanges, &it.TimesExchanged, &it.IsAvailable)
		if err != nil {
			return nil, fmt.Errorf("scan spark shop item: %w", err)
		}

		out = append(out, it)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate spark shop: %w", err)
	}

	return out, nil
}

func (r *shopRepo) GetItem(tx *sql.Tx, bannerID, cosmeticID uuid.UUID) (*sparkshop.Item, error) {
	var it sparkshop.Item

	err := tx.QueryRow(`
		SELECT id, banner_id, cosmetic_id, spark_cost, max_exchanges, times_exchanged, is_available
		FROM spark_shop
		WHERE banner_id = $1
		  AND cosmetic_id = $2
		  AND is_available
	`, bannerID, cosmeticID).Scan(&it.ID, &it.BannerID, &it.CosmeticID, &it.SparkCost,
		&it.MaxExchanges, &it.TimesExchanged, &it.IsAvailable)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sparkshop.ErrItemUnavailable
		}

		return nil, fmt.Errorf("get spark shop item: %w", err)
	}

	return &it, nil
}

func (r *shopRepo) IncrementExchanged(tx *sql.Tx, itemID uuid.UUID) error {
	res, err := tx.Exec(`
		UPDATE spark_shop
		SET times_exchanged = times_exchanged + 1
		WHERE id = $1
		  AND times_exchanged < max_exchanges
	`, itemID)
	if err != nil {
		return fmt.Errorf("increment exchange counter: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return sparkshop.ErrExchangeLimit
	}

	return nil
}

func (r *shopRepo) RecordExchange(tx *sql.Tx, userID, bannerID, cosmeticID uuid.UUID, sparksSpent int64) error {
	_, err := tx.Exec(`
		INSERT INTO spark_exchanges (user_id, banner_id, cosmetic_id, sparks_spent)
		VALUES ($1, $2, $3, $4)
	`, userID, bannerID, cosmeticID, sparksSpent)
	if err != nil {
		return fmt.Errorf("record spark exchange: %w", err)
	}

	return nil
}
