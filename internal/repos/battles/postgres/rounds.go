package battles

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/versebattle/engine/internal/infra/pgutils"
	"github.com/versebattle/engine/internal/repos/battles"
)

func (r *battlesRepo) UpsertVerse(ctx context.Context, battleID uuid.UUID, roundNumber, seat int, verse string) error {
	var query string

	if seat == 1 {
		query = `
			INSERT INTO battle_rounds (battle_id, round_number, player1_verse)
			VALUES ($1, $2, $3)
			ON CONFLICT (battle_id, round_number)
			DO UPDATE SET player1_verse = EXCLUDED.player1_verse
		`
	} else {
		query = `
			INSERT INTO battle_rounds (battle_id, round_number, player2_verse)
			VALUES ($1, $2, $3)
			ON CONFLICT (battle_id, round_number)
			DO UPDATE SET player2_verse = EXCLUDED.player2_verse
		`
	}

	_, err := r.db.ExecContext(ctx, query, battleID, roundNumber, verse)
	if err != nil {
		return fmt.Errorf("upsert verse: %w", err)
	}

	return nil
}

func (r *battlesRepo) InsertVote(tx *sql.Tx, battleID uuid.UUID, roundNumber int, voterID, votedFor uuid.UUID) error {
	_, err := tx.Exec(`
		INSERT INTO battle_votes (battle_id, round_number, voter_id, voted_for)
		VALUES ($1, $2, $3, $4)
	`, battleID, roundNumber, voterID, votedFor)
	if err != nil {
		if pgutils.IsUniqueViolation(err) {
			return battles.ErrDuplicateVote
		}

		return fmt.Errorf("insert vote: %w", err)
	}

	return nil
}

func (r *battlesRepo) RecountVotes(tx *sql.Tx, battleID uuid.UUID, roundNumber int, player1ID, player2ID uuid.UUID) error {
	// Upsert so votes on a round with no verses yet still land in a row.
	_, err := tx.Exec(`
		INSERT INTO battle_rounds (battle_id, round_number, player1_votes, player2_votes)
		VALUES ($1, $2,
			(SELECT count(*) FROM battle_votes
			 WHERE battle_id = $1 AND round_number = $2 AND voted_for = $3),
			(SELECT count(*) FROM battle_votes
			 WHERE battle_id = $1 AND round_number = $2 AND voted_for = $4))
		ON CONFLICT (battle_id, round_number)
		DO UPDATE SET player1_votes = EXCLUDED.player1_votes,
		              player2_votes = EXCLUDED.player2_votes
	`, battleID, roundNumber, player1ID, player2ID)
	if err != nil {
		return fmt.Errorf("recount votes: %w", err)
	}

	return nil
}

const roundsQuery = `
	SELECT battle_id, round_number, player1_verse, player2_verse, player1_votes, player2_votes
	FROM battle_rounds
	WHERE battle_id = $1
	ORDER BY round_number
`

func (r *battlesRepo) ListRounds(ctx context.Context, battleID uuid.UUID) ([]battles.Round, error) {
	rows, err := r.db.QueryContext(ctx, roundsQuery, battleID)
	if err != nil {
		return nil, fmt.Errorf("list rounds: %w", err)
	}

	return scanRounds(rows)
}

func (r *battlesRepo) ListRoundsTx(tx *sql.Tx, battleID uuid.UUID) ([]battles.Round, error) {
	rows, err := tx.Query(roundsQuery, battleID)
	if err != nil {
		return nil, fmt.Errorf("list rounds: %w", err)
	}

	return scanRounds(rows)
}

func scanRounds(rows *sql.Rows) ([]battles.Round, error) {
	defer rows.Close()

	var out []battles.Round

	for rows.Next() {
		var rd battles.Round

		err := rows.Scan(&rd.BattleID, &rd.RoundNumber,
			&rd.Player1Verse, &rd.Player2Verse, &rd.Player1Votes, &rd.Player2Votes)
		if err != nil {
			return nil, fmt.Errorf("scan round: %w", err)
		}

		out = append(out, rd)
	}

	err := rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate rounds: %w", err)
	}

	return out, nil
}
