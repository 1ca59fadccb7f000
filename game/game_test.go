package game

import (
	"testing"

	"ipd/meta"
	"ipd/utils"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestPayoff(t *testing.T) {
	t.Run("matching the fixed table", func(t *testing.T) {
		cases := []struct {
			mine, theirs   Move
			reward, oppRew int
		}{
			{Cooperate, Cooperate, 3, 3},
			{Cooperate, Defect, 0, 5},
			{Defect, Cooperate, 5, 0},
			{Defect, Defect, 1, 1},
		}
		for _, c := range cases {
			r1, r2 := Payoff(c.mine, c.theirs)
			require.Equal(t, c.reward, r1, "reward for %v against %v", c.mine, c.theirs)
			require.Equal(t, c.oppRew, r2, "opponent reward for %v against %v", c.mine, c.theirs)
		}
	})

	t.Run("symmetric under role swap", func(t *testing.T) {
		for _, m1 := range Moves {
			for _, m2 := range Moves {
				a1, a2 := Payoff(m1, m2)
				b1, b2 := Payoff(m2, m1)
				require.Equal(t, a1, b2)
				require.Equal(t, a2, b1)
			}
		}
	})

	t.Run("reward sums", func(t *testing.T) {
		sum := func(m1, m2 Move) int {
			r1, r2 := Payoff(m1, m2)
			return r1 + r2
		}
		require.Equal(t, 6, sum(Cooperate, Cooperate), "Mutual cooperation should sum to 6")
		require.Equal(t, 2, sum(Defect, Defect), "Mutual defection should sum to 2")
		require.Equal(t, 5, sum(Cooperate, Defect), "Mixed moves should sum to 5")
		require.Equal(t, 5, sum(Defect, Cooperate), "Mixed moves should sum to 5")
	})

	t.Run("panics on invalid moves", func(t *testing.T) {
		require.Panics(t, func() { Payoff(Move(0), Cooperate) })
		require.Panics(t, func() { Payoff(Cooperate, Move(7)) })
	})
}

func TestParseMove(t *testing.T) {
	m, err := ParseMove("C")
	require.NoError(t, err)
	require.Equal(t, Cooperate, m)

	m, err = ParseMove("D")
	require.NoError(t, err)
	require.Equal(t, Defect, m)

	for _, token := range []string{"", "X", "c", "CD", " C"} {
		_, err := ParseMove(token)
		require.Error(t, err, "Token %q should be rejected", token)
	}

	require.Equal(t, "C", Cooperate.String())
	require.Equal(t, "D", Defect.String())
	require.Equal(t, Defect, Cooperate.Opposite())
	require.Equal(t, Cooperate, Defect.Opposite())
	require.False(t, Move(0).Valid(), "Zero value should not be a valid move")
}

func TestDrawLength(t *testing.T) {
	t.Run("always within bounds", func(t *testing.T) {
		r := rand.New(rand.NewSource(1))
		for i := 0; i < 10000; i++ {
			n := DrawLength(r)
			require.GreaterOrEqual(t, n, meta.MIN_MOVES)
			require.LessOrEqual(t, n, meta.MAX_MOVES)
		}
	})

	t.Run("reproducible with the same seed", func(t *testing.T) {
		r1 := rand.New(rand.NewSource(42))
		r2 := rand.New(rand.NewSource(42))
		for i := 0; i < 100; i++ {
			require.Equal(t, DrawLength(r1), DrawLength(r2))
		}
	})

	t.Run("mean is near the clamped geometric mean", func(t *testing.T) {
		// E[min(K, 400)] for p = 0.00346 is about 216.
		r := rand.New(rand.NewSource(7))
		total := 0
		const draws = 20000
		for i := 0; i < draws; i++ {
			total += DrawLength(r)
		}
		mean := float64(total) / draws
		require.InDelta(t, 216, mean, 10)
	})
}

func TestNewGameWithLength(t *testing.T) {
	require.Equal(t, 3, NewGameWithLength(3).TotalMoves)
	require.Equal(t, meta.MIN_MOVES, NewGameWithLength(0).TotalMoves, "Zero-length games should be clamped")
	require.Equal(t, meta.MAX_MOVES, NewGameWithLength(10000).TotalMoves, "Long games should be clamped")
}

func TestGamePlayMove(t *testing.T) {
	t.Run("keeps ledger invariants after every round", func(t *testing.T) {
		g := NewGameWithLength(50)
		r := rand.New(rand.NewSource(3))
		for i := 1; i <= g.TotalMoves; i++ {
			m1, m2 := Moves[r.Intn(2)], Moves[r.Intn(2)]
			r1, r2 := g.PlayMove(m1, m2)
			e1, e2 := Payoff(m1, m2)

			require.Equal(t, e1, r1)
			require.Equal(t, e2, r2)
			require.Equal(t, i, len(g.Moves1))
			require.Equal(t, i, len(g.Moves2))
			require.Equal(t, i, len(g.Rewards1))
			require.Equal(t, i, len(g.Rewards2))
			require.Equal(t, utils.Sum(g.Rewards1), g.Score1)
			require.Equal(t, utils.Sum(g.Rewards2), g.Score2)
		}
		require.True(t, g.Over())
	})

	t.Run("panics after the last round", func(t *testing.T) {
		g := NewGameWithLength(1)
		g.PlayMove(Cooperate, Defect)
		require.Panics(t, func() { g.PlayMove(Cooperate, Cooperate) })
	})

	t.Run("rejects invalid moves without touching the ledger", func(t *testing.T) {
		g := NewGameWithLength(5)
		require.Panics(t, func() { g.PlayMove(Move(9), Cooperate) })
		require.Equal(t, 0, g.Round(), "Ledger should not change on invalid moves")
		require.Equal(t, 0, g.Score1)
	})
}
