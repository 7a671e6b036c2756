package ratings

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

// DefaultRating is the rating assumed for players without a stored one, and
// the fixed skill used for casual matchmaking.
const DefaultRating = 1200

type Ratings interface {
	// Get returns the user's stored skill rating, or DefaultRating if none.
	Get(ctx context.Context, userID uuid.UUID) (int, error)

	// GetTx is Get inside a transaction.
	GetTx(tx *sql.Tx, userID uuid.UUID) (int, error)

	// Upsert stores the user's rating, creating the row on first write.
	Upsert(tx *sql.Tx, userID uuid.UUID, rating int) error
}
