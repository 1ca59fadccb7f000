package engine

import "ipd/game"

// Round is the outcome of one round: its 1-based index, the moves of both players and
// the rewards they earned.
type Round struct {
	Index   int
	Moves   [2]game.Move
	Rewards [2]int
}

// Result summarises a finished match.
type Result struct {
	Scores     [2]int
	TotalMoves int
	Rounds     []Round
}

// Winner returns 1 or 2 for the higher scorer, or 0 on a draw.
func (r Result) Winner() int {
	switch {
	case r.Scores[0] > r.Scores[1]:
		return 1
	case r.Scores[1] > r.Scores[0]:
		return 2
	default:
		return 0
	}
}
