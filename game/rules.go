package game

// Rules maps a pair of moves to a pair of rewards (mine, opponent's).
type Rules interface {
	Payoff(mine, theirs Move) (int, int)
}

// Payoff applies the standard rules.
func Payoff(mine, theirs Move) (int, int) {
	return standard.Payoff(mine, theirs)
}
