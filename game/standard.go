package game

import "fmt"

var standard = NewStandardRules()

// StandardRules is the classic table: temptation 5, reward 3, punishment 1, sucker 0.
type StandardRules struct {
	table [2][2][2]int
}

func NewStandardRules() *StandardRules {
	return &StandardRules{
		table: [2][2][2]int{
			{{3, 3}, {0, 5}}, // C vs C, C vs D
			{{5, 0}, {1, 1}}, // D vs C, D vs D
		},
	}
}

func (sr *StandardRules) Payoff(mine, theirs Move) (int, int) {
	if !mine.Valid() || !theirs.Valid() {
		panic(fmt.Sprintf("no payoff for moves (%v, %v)", mine, theirs))
	}
	rewards := sr.table[mine.Index()][theirs.Index()]
	return rewards[0], rewards[1]
}
