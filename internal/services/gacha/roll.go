package gacha

import (
	"github.com/versebattle/engine/internal/repos/banners"
	"github.com/versebattle/engine/internal/repos/cosmetics"
)

type rarityWeight struct {
	Rarity cosmetics.Rarity
	Weight float64
}

// Base drop rates without any rate-up, in roll order.
var baseWeights = []rarityWeight{
	{cosmetics.RarityLegendary, 0.01},
	{cosmetics.RarityEpic, 0.05},
	{cosmetics.RarityRare, 0.20},
	{cosmetics.RarityCommon, 0.74},
}

// rarityWeights returns the banner's effective weights. A non-empty featured
// pool multiplies the legendary and epic weights by the banner's rate-up
// multiplier; the four weights are then renormalized to sum to 1.
func rarityWeights(b *banners.Banner) []rarityWeight {
	multiplier := 1.0
	if len(b.FeaturedCosmeticIDs) > 0 {
		multiplier = b.RateUpMultiplier
	}

	weights := make([]rarityWeight, len(baseWeights))
	total := 0.0

	for i, w := range baseWeights {
		if w.Rarity == cosmetics.RarityLegendary || w.Rarity == cosmetics.RarityEpic {
			w.Weight *= multiplier
		}

		weights[i] = w
		total += w.Weight
	}

	for i := range weights {
		weights[i].Weight /= total
	}

	return weights
}

// rollRarity draws one rarity against the banner's cumulative weights.
func rollRarity(b *banners.Banner, rng RandomSource) cosmetics.Rarity {
	roll := rng.Float64()
	cumulative := 0.0

	for _, w := range rarityWeights(b) {
		cumulative += w.Weight
		if roll <= cumulative {
			return w.Rarity
		}
	}

	return cosmetics.RarityCommon
}

// duplicateReward is the coin credit granted instead of a second copy.
var duplicateReward = map[cosmetics.Rarity]int64{
	cosmetics.RarityCommon:    5,
	cosmetics.RarityRare:      25,
	cosmetics.RarityEpic:      100,
	cosmetics.RarityLegendary: 500,
}

// multiPullCost is the up-front price of a ten-pull:
// floor(cost * 10 * (1 - discount_pct/100)).
func multiPullCost(b *banners.Banner) int64 {
	base := b.CostGems * 10

	return base * int64(100-b.MultiPullDiscountPct) / 100
}
