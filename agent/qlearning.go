package agent

import (
	"fmt"

	"ipd/game"

	"github.com/rs/zerolog/log"
	"github.com/sbinet/npyio/npz"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// QTableKey is the npz entry holding the Q-table, named the way numpy.savez does.
const QTableKey = "q_table.npy"

const (
	numStates  = 4 // (own last move, opponent last move)
	numActions = 2
)

type QOption func(q *QLearning)

// QLearning is a tabular Q-learning agent with epsilon-greedy exploration. Its state is
// the previous moves of both players, so it cooperates on the first round.
type QLearning struct {
	Record
	rand    *rand.Rand
	epsilon float64
	alpha   float64 // 0 disables learning
	gamma   float64
	table   *mat.Dense
	pending *transition
}

type transition struct {
	state  int
	action game.Move
}

func WithEpsilon(epsilon float64) QOption {
	return func(q *QLearning) {
		if epsilon >= 0 && epsilon <= 1 {
			q.epsilon = epsilon
		}
	}
}

func WithLearningRate(alpha float64) QOption {
	return func(q *QLearning) {
		if alpha >= 0 && alpha <= 1 {
			q.alpha = alpha
		}
	}
}

func WithDiscount(gamma float64) QOption {
	return func(q *QLearning) {
		if gamma >= 0 && gamma <= 1 {
			q.gamma = gamma
		}
	}
}

// WithQTable starts from a copy of table, which must be 4x2.
func WithQTable(table *mat.Dense) QOption {
	return func(q *QLearning) {
		if r, c := table.Dims(); r != numStates || c != numActions {
			panic(fmt.Sprintf("q-table must be %dx%d, got %dx%d", numStates, numActions, r, c))
		}
		q.table = mat.DenseCopyOf(table)
	}
}

func NewQLearning(r *rand.Rand, options ...QOption) *QLearning {
	q := &QLearning{ // Default values
		rand:  r,
		gamma: 0.9,
		table: mat.NewDense(numStates, numActions, nil),
	}
	for _, option := range options {
		option(q)
	}
	return q
}

func stateIndex(own, opponent game.Move) int {
	return own.Index()*2 + opponent.Index()
}

func (q *QLearning) PlayMove(opponent History) game.Move {
	own, ok := lastMove(&q.Record)
	if !ok {
		return game.Cooperate
	}
	theirs, ok := lastMove(opponent)
	if !ok {
		return game.Cooperate
	}
	state := stateIndex(own, theirs)
	q.learn(state)

	var move game.Move
	if q.rand.Float64() < q.epsilon {
		move = game.Moves[q.rand.Intn(len(game.Moves))]
	} else {
		move = q.greedy(state)
	}
	q.pending = &transition{state: state, action: move}
	return move
}

// greedy returns the action with the largest Q-value, preferring cooperation on ties.
func (q *QLearning) greedy(state int) game.Move {
	if q.table.At(state, game.Defect.Index()) > q.table.At(state, game.Cooperate.Index()) {
		return game.Defect
	}
	return game.Cooperate
}

// learn completes the pending transition now that its successor state is known.
func (q *QLearning) learn(next int) {
	q.complete(max(q.table.At(next, 0), q.table.At(next, 1)))
}

// Finish learns from the last round of a game, which has no successor state. Call it
// after the final Update.
func (q *QLearning) Finish() {
	q.complete(0)
}

// complete applies the reward recorded by the last Update to the pending transition.
func (q *QLearning) complete(future float64) {
	pending := q.pending
	q.pending = nil
	if pending == nil || q.alpha == 0 {
		return
	}
	rewards := q.Rewards()
	reward := float64(rewards[len(rewards)-1])
	col := pending.action.Index()

	old := q.table.At(pending.state, col)
	q.table.Set(pending.state, col, old+q.alpha*(reward+q.gamma*future-old))
}

// Table returns a copy of the current Q-table.
func (q *QLearning) Table() *mat.Dense {
	return mat.DenseCopyOf(q.table)
}

// SaveQTable writes the Q-table to an npz archive as a (2, 2, 2) array indexed by
// [own][opponent][action].
func (q *QLearning) SaveQTable(path string) error {
	var cube [2][2][numActions]float64
	for _, own := range game.Moves {
		for _, opponent := range game.Moves {
			for _, action := range game.Moves {
				cube[own.Index()][opponent.Index()][action.Index()] = q.table.At(stateIndex(own, opponent), action.Index())
			}
		}
	}
	err := npz.Write(path, map[string]interface{}{QTableKey: &cube})
	if err != nil {
		return fmt.Errorf("failed to save q-table: %w", err)
	}
	log.Info().Msgf("saved q-table to %s", path)
	return nil
}

// LoadQTable reads a Q-table from an npz archive. Both (2, 2, 2) and (4, 2) arrays load
// since they share the same flat layout.
func LoadQTable(path string) (*mat.Dense, error) {
	r, err := npz.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open q-table: %w", err)
	}
	defer r.Close()

	var data []float64
	if err := r.Read(QTableKey, &data); err != nil {
		return nil, fmt.Errorf("failed to read q-table: %w", err)
	}
	if len(data) != numStates*numActions {
		return nil, fmt.Errorf("q-table in %s has %d values, want %d", path, len(data), numStates*numActions)
	}
	return mat.NewDense(numStates, numActions, data), nil
}
