package cosmetics

import (
	"database/sql"

	"github.com/google/uuid"
)

type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

func (r Rarity) Valid() bool {
	switch r {
	case RarityCommon, RarityRare, RarityEpic, RarityLegendary:
		return true
	default:
		return false
	}
}

type Cosmetic struct {
	ID     uuid.UUID
	Name   string
	Rarity Rarity
}

type Cosmetics interface {
	// ListByRarity returns the general pool of a rarity.
	ListByRarity(tx *sql.Tx, rarity Rarity) ([]Cosmetic, error)
	// ListByRarityIn returns the subset of ids that have the given rarity.
	ListByRarityIn(tx *sql.Tx, rarity Rarity, ids []uuid.UUID) ([]Cosmetic, error)
	// Owns reports whether the user already owns the cosmetic.
	Owns(tx *sql.Tx, userID, cosmeticID uuid.UUID) (bool, error)
	// Grant records ownership; granting an owned cosmetic is a no-op.
	Grant(tx *sql.Tx, userID, cosmeticID uuid.UUID, acquiredFrom string) error
}
