package game

import (
	"math"

	"ipd/meta"

	"golang.org/x/exp/rand"
)

// Game is the ledger of one match between two players. It is created per match and
// discarded after the last round.
type Game struct {
	Rules      Rules
	Score1     int
	Score2     int
	Moves1     []Move
	Moves2     []Move
	Rewards1   []int
	Rewards2   []int
	TotalMoves int // Fixed at creation
}

// NewGame creates a game whose length is drawn from r.
func NewGame(r *rand.Rand) *Game {
	return NewGameWithLength(DrawLength(r))
}

// NewGameWithLength creates a game with a known number of rounds, clamped into
// [MIN_MOVES, MAX_MOVES].
func NewGameWithLength(totalMoves int) *Game {
	totalMoves = max(meta.MIN_MOVES, min(totalMoves, meta.MAX_MOVES))
	return &Game{
		Rules:      standard,
		Moves1:     make([]Move, 0, totalMoves),
		Moves2:     make([]Move, 0, totalMoves),
		Rewards1:   make([]int, 0, totalMoves),
		Rewards2:   make([]int, 0, totalMoves),
		TotalMoves: totalMoves,
	}
}

// DrawLength samples a geometric number of rounds (support starting at 1) and clamps
// it into [MIN_MOVES, MAX_MOVES].
func DrawLength(r *rand.Rand) int {
	u := 1 - r.Float64() // (0, 1]
	k := math.Ceil(math.Log(u) / math.Log1p(-meta.CONTINUATION_P))
	if k < meta.MIN_MOVES {
		return meta.MIN_MOVES
	}
	if k > meta.MAX_MOVES {
		return meta.MAX_MOVES
	}
	return int(k)
}

// PlayMove plays a single round and returns the resulting rewards.
func (g *Game) PlayMove(move1, move2 Move) (int, int) {
	if g.Over() {
		panic("game is over - no moves allowed")
	}
	reward1, reward2 := g.Rules.Payoff(move1, move2)

	g.Moves1 = append(g.Moves1, move1)
	g.Moves2 = append(g.Moves2, move2)

	g.Rewards1 = append(g.Rewards1, reward1)
	g.Rewards2 = append(g.Rewards2, reward2)

	g.Score1 += reward1
	g.Score2 += reward2

	return reward1, reward2
}

// Round returns the number of completed rounds.
func (g *Game) Round() int {
	return len(g.Moves1)
}

func (g *Game) Over() bool {
	return g.Round() >= g.TotalMoves
}
