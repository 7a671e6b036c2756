package battles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/versebattle/engine/internal/repos/battles"
)

var _ battles.Battles = (*battlesRepo)(nil)

type battlesRepo struct{ db *sql.DB }

func New(db *sql.DB) *battlesRepo {
	return &battlesRepo{db: db}
}

func (r *battlesRepo) Create(tx *sql.Tx, b *battles.Battle) error {
	_, err := tx.Exec(`
		INSERT INTO battles (id, player1_id, player2_id, battle_type, status, bet_coins, bet_gems)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, b.ID, b.Player1ID, b.Player2ID, b.Type, b.Status, b.BetCoins, b.BetGems)
	if err != nil {
		return fmt.Errorf("create battle: %w", err)
	}

	return nil
}

const battleQuery = `
	SELECT id, player1_id, player2_id, battle_type, status, bet_coins, bet_gems,
	       player1_score, player2_score, winner_id, loser_id,
	       matched_at, started_at, completed_at
	FROM battles
	WHERE id = $1
`

func (r *battlesRepo) Get(ctx context.Context, id uuid.UUID) (*battles.Battle, error) {
	return scanBattle(r.db.QueryRowContext(ctx, battleQuery, id))
}

func (r *battlesRepo) LockAndGet(tx *sql.Tx, id uuid.UUID) (*battles.Battle, error) {
	return scanBattle(tx.QueryRow(battleQuery+` FOR UPDATE`, id))
}

func (r *battlesRepo) MarkStarted(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE battles
		SET status = $2, started_at = now()
		WHERE id = $1
		  AND status = $3
	`, id, battles.StatusInProgress, battles.StatusMatched)
	if err != nil {
		return false, fmt.Errorf("mark battle started: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}

	return affected == 1, nil
}

func (r *battlesRepo) Complete(tx *sql.Tx, id uuid.UUID, winnerID, loserID *uuid.UUID, p1Score, p2Score int) error {
	res, err := tx.Exec(`
		UPDATE battles
		SET status = $2,
		    winner_id = $3,
		    loser_id = $4,
		    player1_score = $5,
		    player2_score = $6,
		    completed_at = now()
		WHERE id = $1
		  AND status = $7
	`, id, battles.StatusCompleted, winnerID, loserID, p1Score, p2Score, battles.StatusInProgress)
	if err != nil {
		return fmt.Errorf("complete battle: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return battles.ErrInvalidState
	}

	return nil
}

func scanBattle(row *sql.Row) (*battles.Battle, error) {
	var (
		b                    battles.Battle
		winnerID, loserID    uuid.NullUUID
		startedAt, completed sql.NullTime
	)

	err := row.Scan(
		&b.ID, &b.Player1ID, &b.Player2ID, &b.Type, &b.Status, &b.BetCoins, &b.BetGems,
		&b.Player1Score, &b.Player2Score, &winnerID, &loserID,
		&b.MatchedAt, &startedAt, &completed,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, battles.ErrBattleNotFound
		}

		return nil, fmt.Errorf("get battle: %w", err)
	}

	if winnerID.Valid {
		b.WinnerID = &winnerID.UUID
	}
	if loserID.Valid {
		b.LoserID = &loserID.UUID
	}
	if startedAt.Valid {
		b.StartedAt = &startedAt.Time
	}
	if completed.Valid {
		b.CompletedAt = &completed.Time
	}

	return &b, nil
}
