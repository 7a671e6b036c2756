package battle

import "math"

// eloK is the maximum rating swing of a single battle.
const eloK = 32

// eloAdjust returns both players' new ratings given player1's actual score
// (1 win, 0.5 tie, 0 loss). The adjustment is zero-sum.
func eloAdjust(rating1, rating2 int, score1 float64) (int, int) {
	expected1 := 1 / (1 + math.Pow(10, float64(rating2-rating1)/400))

	delta := int(math.Round(eloK * (score1 - expected1)))

	return rating1 + delta, rating2 - delta
}
