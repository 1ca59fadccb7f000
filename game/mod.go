package game

import "fmt"

// Move is a single round's choice. The zero value is not a valid move.
type Move int

const (
	Cooperate Move = iota + 1
	Defect
)

// Moves lists every valid move in table order.
var Moves = []Move{Cooperate, Defect}

func (m Move) Valid() bool {
	return m == Cooperate || m == Defect
}

// String returns the protocol token of the move.
func (m Move) String() string {
	switch m {
	case Cooperate:
		return "C"
	case Defect:
		return "D"
	default:
		return fmt.Sprintf("Move(%d)", int(m))
	}
}

// Index maps Cooperate to 0 and Defect to 1.
func (m Move) Index() int {
	if !m.Valid() {
		panic(fmt.Sprintf("invalid move %v", m))
	}
	return int(m) - 1
}

// Opposite returns the other move.
func (m Move) Opposite() Move {
	if m == Cooperate {
		return Defect
	}
	return Cooperate
}

// ParseMove parses a protocol token ("C" or "D").
func ParseMove(token string) (Move, error) {
	switch token {
	case "C":
		return Cooperate, nil
	case "D":
		return Defect, nil
	default:
		return 0, fmt.Errorf("invalid move token %q", token)
	}
}

// MustValid panics when an agent hands back something that is not a move.
func MustValid(m Move) Move {
	if !m.Valid() {
		panic(fmt.Sprintf("agent returned invalid move %v", m))
	}
	return m
}
