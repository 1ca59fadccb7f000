package agent

import (
	"fmt"

	"ipd/game"
)

// History is the read-only view of a player that strategies get of their opponent.
type History interface {
	Score() int
	Moves() []game.Move
	Rewards() []int
}

// Agent plays the iterated prisoner's dilemma. Both the local engine and the protocol
// runner drive agents through PlayMove and Update only.
type Agent interface {
	History
	// PlayMove returns the next move given the opponent's history. It must not assume
	// the opponent has already moved this round.
	PlayMove(opponent History) game.Move
	// Update records the move just played and the reward it earned.
	Update(move game.Move, reward int)
}

// Record holds a player's score, moves and rewards. Strategies embed it to satisfy
// History and get Update for free.
type Record struct {
	score   int
	moves   []game.Move
	rewards []int
}

func NewRecord() *Record {
	return &Record{}
}

func (r *Record) Update(move game.Move, reward int) {
	if !move.Valid() {
		panic(fmt.Sprintf("cannot record invalid move %v", move))
	}
	r.score += reward
	r.moves = append(r.moves, move)
	r.rewards = append(r.rewards, reward)
}

func (r *Record) Score() int {
	return r.score
}

// Moves returns the live move history; callers must not modify it.
func (r *Record) Moves() []game.Move {
	return r.moves
}

func (r *Record) Rewards() []int {
	return r.rewards
}

// lastMove returns the most recent move of h, if any.
func lastMove(h History) (game.Move, bool) {
	moves := h.Moves()
	if len(moves) == 0 {
		return 0, false
	}
	return moves[len(moves)-1], true
}
