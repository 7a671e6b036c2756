package pity

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/versebattle/engine/internal/repos/pity"
)

var _ pity.Trackers = (*trackersRepo)(nil)

type trackersRepo struct{ db *sql.DB }

func New(db *sql.DB) *trackersRepo {
	return &trackersRepo{db: db}
}

func (r *trackersRepo) Ensure(tx *sql.Tx, userID, bannerID uuid.UUID) error {
	_, err := tx.Exec(`
		INSERT INTO pity_trackers (user_id, banner_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, banner_id) DO NOTHING
	`, userID, bannerID)
	if err != nil {
		return fmt.Errorf("ensure pity tracker: %w", err)
	}

	return nil
}

const trackerQuery = `
	SELECT user_id, banner_id, pulls_since_last_legendary, pulls_since_last_epic,
	       total_pulls, spark_tokens, total_legendary, total_epic, total_rare, last_pull_at
	FROM pity_trackers
	WHERE user_id = $1 AND banner_id = $2
`

func (r *trackersRepo) Get(ctx context.Context, userID, bannerID uuid.UUID) (*pity.Tracker, error) {
	return scanTracker(r.db.QueryRowContext(ctx, trackerQuery, userID, bannerID))
}

func (r *trackersRepo) LockAndGet(tx *sql.Tx, userID, bannerID uuid.UUID) (*pity.Tracker, error) {
	return scanTracker(tx.QueryRow(trackerQuery+` FOR UPDATE`, userID, bannerID))
}

func (r *trackersRepo) Flush(tx *sql.Tx, t *pity.Tracker) error {
	_, err := tx.Exec(`
		UPDATE pity_trackers
		SET pulls_since_last_legendary = $3,
		    pulls_since_last_epic = $4,
		    total_pulls = $5,
		    spark_tokens = $6,
		    total_legendary = $7,
		    total_epic = $8,
		    total_rare = $9,
		    last_pull_at = now()
		WHERE user_id = $1 AND banner_id = $2
	`, t.UserID, t.BannerID, t.PullsSinceLastLegendary, t.PullsSinceLastEpic,
		t.TotalPulls, t.SparkTokens, t.TotalLegendary, t.TotalEpic, t.TotalRare)
	if err != nil {
		return fmt.Errorf("flush pity tracker: %w", err)
	}

	return nil
}

func (r *trackersRepo) SpendSparks(tx *sql.Tx, userID, bannerID uuid.UUID, cost int64) error {
	res, err := tx.Exec(`
		UPDATE pity_trackers
		SET spark_tokens = spark_tokens - $3
		WHERE user_id = $1
		  AND banner_id = $2
		  AND spark_tokens >= $3
	`, userID, bannerID, cost)
	if err != nil {
		return fmt.Errorf("spend sparks: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return pity.ErrInsufficientSparks
	}

	return nil
}

func scanTracker(row *sql.Row) (*pity.Tracker, error) {
	var (
		t          pity.Tracker
		lastPullAt sql.NullTime
	)

	err := row.Scan(
		&t.UserID, &t.BannerID, &t.PullsSinceLastLegendary, &t.PullsSinceLastEpic,
		&t.TotalPulls, &t.SparkTokens, &t.TotalLegendary, &t.TotalEpic, &t.TotalRare, &lastPullAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan pity tracker: %w", err)
	}

	if lastPullAt.Valid {
		t.LastPullAt = &lastPullAt.Time
	}

	return &t, nil
}
