package agent

import (
	"ipd/game"

	"golang.org/x/exp/rand"
)

// AllC always cooperates.
type AllC struct{ Record }

func NewAllC() *AllC { return &AllC{} }

func (a *AllC) PlayMove(opponent History) game.Move {
	return game.Cooperate
}

// AllD always defects.
type AllD struct{ Record }

func NewAllD() *AllD { return &AllD{} }

func (a *AllD) PlayMove(opponent History) game.Move {
	return game.Defect
}

// TitForTat cooperates first, then matches the opponent's previous move.
type TitForTat struct{ Record }

func NewTitForTat() *TitForTat { return &TitForTat{} }

func (a *TitForTat) PlayMove(opponent History) game.Move {
	last, ok := lastMove(opponent)
	if !ok {
		return game.Cooperate
	}
	return last
}

// ReverseTitForTat cooperates first, then plays the opposite of the opponent's
// previous move.
type ReverseTitForTat struct{ Record }

func NewReverseTitForTat() *ReverseTitForTat { return &ReverseTitForTat{} }

func (a *ReverseTitForTat) PlayMove(opponent History) game.Move {
	last, ok := lastMove(opponent)
	if !ok {
		return game.Cooperate
	}
	return last.Opposite()
}

// Random cooperates or defects uniformly at random.
type Random struct {
	Record
	rand *rand.Rand
}

func NewRandom(r *rand.Rand) *Random {
	return &Random{rand: r}
}

func (a *Random) PlayMove(opponent History) game.Move {
	return game.Moves[a.rand.Intn(len(game.Moves))]
}

// RandomDefect cooperates but defects with a fixed probability.
type RandomDefect struct {
	Record
	rand        *rand.Rand
	probability float64
}

func NewRandomDefect(r *rand.Rand, probability float64) *RandomDefect {
	if probability < 0 || probability > 1 {
		panic("defect probability must be in [0, 1]")
	}
	return &RandomDefect{rand: r, probability: probability}
}

func (a *RandomDefect) PlayMove(opponent History) game.Move {
	if a.rand.Float64() < a.probability {
		return game.Defect
	}
	return game.Cooperate
}
