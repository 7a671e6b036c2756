package battle

import (
	"testing"

	"github.com/versebattle/engine/internal/repos/battles"
)

func TestCountRoundWins(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		votes     [][2]int
		wantSeat1 int
		wantSeat2 int
	}{
		{
			name:      "clean_sweep",
			votes:     [][2]int{{3, 1}, {5, 0}, {2, 1}},
			wantSeat1: 3,
			wantSeat2: 0,
		},
		{
			name:      "split_decision",
			votes:     [][2]int{{3, 1}, {0, 4}, {2, 5}},
			wantSeat1: 1,
			wantSeat2: 2,
		},
		{
			name:      "tied_round_counts_for_neither",
			votes:     [][2]int{{2, 2}, {3, 1}},
			wantSeat1: 1,
			wantSeat2: 0,
		},
		{
			name:      "all_tied",
			votes:     [][2]int{{0, 0}, {1, 1}, {4, 4}},
			wantSeat1: 0,
			wantSeat2: 0,
		},
		{
			name:      "no_rounds",
			votes:     nil,
			wantSeat1: 0,
			wantSeat2: 0,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rounds := make([]battles.Round, 0, len(tt.votes))
			for i, v := range tt.votes {
				rounds = append(rounds, battles.Round{
					RoundNumber:  i + 1,
					Player1Votes: v[0],
					Player2Votes: v[1],
				})
			}

			seat1, seat2 := countRoundWins(rounds)
			if seat1 != tt.wantSeat1 || seat2 != tt.wantSeat2 {
				t.Fatalf("want %d/%d, got %d/%d", tt.wantSeat1, tt.wantSeat2, seat1, seat2)
			}
		})
	}
}
