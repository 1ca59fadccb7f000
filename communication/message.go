package communication

import (
	"fmt"
	"strconv"
	"strings"

	"ipd/game"

	"github.com/pkg/errors"
)

var ErrMalformed = errors.New("malformed update")

// Update is the judge's report of the previous round from the receiving player's
// point of view.
type Update struct {
	Move           game.Move
	Reward         int
	OpponentMove   game.Move
	OpponentReward int
}

// ParseUpdate parses "<move> <reward> <opp_move> <opp_reward>".
func ParseUpdate(line string) (Update, error) {
	fields := strings.Fields(line)
	if len(fields) != 4 {
		return Update{}, errors.Wrapf(ErrMalformed, "want 4 fields, got %d in %q", len(fields), line)
	}

	move, err := game.ParseMove(fields[0])
	if err != nil {
		return Update{}, errors.Wrapf(ErrMalformed, "%v in %q", err, line)
	}
	reward, err := strconv.Atoi(fields[1])
	if err != nil {
		return Update{}, errors.Wrapf(ErrMalformed, "reward %q is not an integer", fields[1])
	}
	opponentMove, err := game.ParseMove(fields[2])
	if err != nil {
		return Update{}, errors.Wrapf(ErrMalformed, "opponent %v in %q", err, line)
	}
	opponentReward, err := strconv.Atoi(fields[3])
	if err != nil {
		return Update{}, errors.Wrapf(ErrMalformed, "opponent reward %q is not an integer", fields[3])
	}

	return Update{
		Move:           move,
		Reward:         reward,
		OpponentMove:   opponentMove,
		OpponentReward: opponentReward,
	}, nil
}

func (u Update) String() string {
	return fmt.Sprintf("%v %d %v %d", u.Move, u.Reward, u.OpponentMove, u.OpponentReward)
}
