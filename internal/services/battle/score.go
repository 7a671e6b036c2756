package battle

import "github.com/versebattle/engine/internal/repos/battles"

// countRoundWins tallies rounds where one seat strictly out-votes the other.
// Rounds with equal votes count for neither seat.
func countRoundWins(rounds []battles.Round) (seat1Wins, seat2Wins int) {
	for _, r := range rounds {
		switch {
		case r.Player1Votes > r.Player2Votes:
			seat1Wins++
		case r.Player2Votes > r.Player1Votes:
			seat2Wins++
		}
	}

	return seat1Wins, seat2Wins
}
