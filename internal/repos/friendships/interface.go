package friendships

import (
	"context"

	"github.com/google/uuid"
)

type Friendships interface {
	// Accepted reports whether an accepted friendship edge exists between the
	// two users, in either direction.
	Accepted(ctx context.Context, userID, friendID uuid.UUID) (bool, error)
}
