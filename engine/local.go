package engine

import (
	"iter"

	"ipd/agent"
	"ipd/game"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

type Option func(e *Engine)

// WithRand draws the game length from r.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) {
		if r != nil {
			e.rand = r
		}
	}
}

// WithSeed draws the game length from a source seeded with seed.
func WithSeed(seed uint64) Option {
	return func(e *Engine) {
		e.rand = rand.New(rand.NewSource(seed))
	}
}

// WithTotalMoves fixes the game length instead of drawing it.
func WithTotalMoves(totalMoves int) Option {
	return func(e *Engine) {
		if totalMoves > 0 {
			e.totalMoves = totalMoves
		}
	}
}

// Engine plays one game between two local agents. Rounds are produced lazily and only
// once: the engine is a cursor over shared game and agent state.
type Engine struct {
	Game       *game.Game
	Agents     [2]agent.Agent
	rand       *rand.Rand
	totalMoves int
	played     []Round
}

func New(agent1, agent2 agent.Agent, options ...Option) *Engine {
	if agent1 == nil || agent2 == nil {
		panic("need two agents")
	}
	e := &Engine{
		Agents: [2]agent.Agent{agent1, agent2},
	}
	for _, option := range options {
		option(e)
	}

	if e.totalMoves > 0 {
		e.Game = game.NewGameWithLength(e.totalMoves)
	} else {
		if e.rand == nil {
			e.rand = rand.New(rand.NewSource(rand.Uint64()))
		}
		e.Game = game.NewGame(e.rand)
	}
	e.played = make([]Round, 0, e.Game.TotalMoves)

	log.Debug().Msgf("new game with %d moves", e.Game.TotalMoves)
	return e
}

// Next plays the next round. It returns false once every round has been played.
func (e *Engine) Next() (Round, bool) {
	if e.Game.Over() {
		return Round{}, false
	}
	a1, a2 := e.Agents[0], e.Agents[1]

	// Both agents decide on the history before this round
	move1 := game.MustValid(a1.PlayMove(a2))
	move2 := game.MustValid(a2.PlayMove(a1))

	reward1, reward2 := e.Game.PlayMove(move1, move2)

	a1.Update(move1, reward1)
	a2.Update(move2, reward2)

	round := Round{
		Index:   e.Game.Round(),
		Moves:   [2]game.Move{move1, move2},
		Rewards: [2]int{reward1, reward2},
	}
	e.played = append(e.played, round)

	log.Debug().Msgf("round %d: %v/%v -> %d/%d", round.Index, move1, move2, reward1, reward2)
	return round, true
}

// Rounds returns the remaining rounds as a sequence. Ranging over it advances the game;
// a second traversal resumes where the first stopped and yields nothing once the game
// is over.
func (e *Engine) Rounds() iter.Seq[Round] {
	return func(yield func(Round) bool) {
		for {
			round, ok := e.Next()
			if !ok || !yield(round) {
				return
			}
		}
	}
}

// Run plays all remaining rounds and returns the result of the whole game.
func (e *Engine) Run() Result {
	for range e.Rounds() {
	}

	result := Result{
		Scores:     [2]int{e.Game.Score1, e.Game.Score2},
		TotalMoves: e.Game.TotalMoves,
		Rounds:     e.played,
	}
	log.Info().Msgf("game over after %d moves with scores %d-%d", result.TotalMoves, result.Scores[0], result.Scores[1])
	return result
}
