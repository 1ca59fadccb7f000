package gamemaster

import (
	"fmt"
	"io"

	"ipd/agent"
	"ipd/communication"
	"ipd/engine"
	"ipd/game"
	"ipd/meta"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

var (
	ErrHandshake   = errors.New("handshake failed")
	ErrIllegalMove = errors.New("illegal move")
)

type Option func(r *Referee)

func WithRand(rnd *rand.Rand) Option {
	return func(r *Referee) {
		if rnd != nil {
			r.rand = rnd
		}
	}
}

func WithSeed(seed uint64) Option {
	return func(r *Referee) {
		r.rand = rand.New(rand.NewSource(seed))
	}
}

func WithTotalMoves(totalMoves int) Option {
	return func(r *Referee) {
		if totalMoves > 0 {
			r.totalMoves = totalMoves
		}
	}
}

// Referee is the authoritative side of the line protocol. It owns the game, plays a
// local agent against a remote player and reports each round back to the remote.
// In the results the local agent is player 1 and the remote is player 2.
type Referee struct {
	Local        agent.Agent
	Remote       *agent.Record
	Communicator communication.Communicator
	Game         *game.Game
	rand         *rand.Rand
	totalMoves   int
}

// NewReferee initializes a new Referee and draws the game length.
func NewReferee(local agent.Agent, comm communication.Communicator, options ...Option) *Referee {
	r := &Referee{
		Local:        local,
		Remote:       agent.NewRecord(),
		Communicator: comm,
	}
	for _, option := range options {
		option(r)
	}
	if r.totalMoves > 0 {
		r.Game = game.NewGameWithLength(r.totalMoves)
	} else {
		if r.rand == nil {
			r.rand = rand.New(rand.NewSource(rand.Uint64()))
		}
		r.Game = game.NewGame(r.rand)
	}
	return r
}

// RunGame plays the whole game. It does not close the channel; the remote sees the end
// of the game when the caller does.
func (r *Referee) RunGame() (engine.Result, error) {
	if err := r.InitializeGame(); err != nil {
		return engine.Result{}, err
	}
	log.Info().Msgf("starting game with %d moves", r.Game.TotalMoves)

	rounds := make([]engine.Round, 0, r.Game.TotalMoves)
	for !r.Game.Over() {
		round, err := r.playRound()
		if err != nil {
			return engine.Result{}, err
		}
		rounds = append(rounds, round)
	}

	result := engine.Result{
		Scores:     [2]int{r.Game.Score1, r.Game.Score2},
		TotalMoves: r.Game.TotalMoves,
		Rounds:     rounds,
	}
	log.Info().Msgf("game over after %d moves with scores %d-%d", result.TotalMoves, result.Scores[0], result.Scores[1])
	return result, nil
}

// InitializeGame performs the INIT/OK handshake.
func (r *Referee) InitializeGame() error {
	if err := r.Communicator.Send(meta.INIT); err != nil {
		return err
	}
	line, err := r.receive()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrHandshake, err)
	}
	if line != meta.OK {
		return errors.Wrapf(ErrHandshake, "expected %s, got %q", meta.OK, line)
	}
	return nil
}

func (r *Referee) playRound() (engine.Round, error) {
	if err := r.Communicator.Send(r.announcement()); err != nil {
		return engine.Round{}, err
	}

	line, err := r.receive()
	if err != nil {
		return engine.Round{}, fmt.Errorf("round %d: %w", r.Game.Round()+1, err)
	}
	remoteMove, err := game.ParseMove(line)
	if err != nil {
		return engine.Round{}, errors.Wrapf(ErrIllegalMove, "round %d: %v", r.Game.Round()+1, err)
	}

	// The remote move is not in the shadow record yet, so the local agent cannot see it
	localMove := game.MustValid(r.Local.PlayMove(r.Remote))

	localReward, remoteReward := r.Game.PlayMove(localMove, remoteMove)
	r.Local.Update(localMove, localReward)
	r.Remote.Update(remoteMove, remoteReward)

	round := engine.Round{
		Index:   r.Game.Round(),
		Moves:   [2]game.Move{localMove, remoteMove},
		Rewards: [2]int{localReward, remoteReward},
	}
	log.Debug().Msgf("round %d: %v/%v -> %d/%d", round.Index, localMove, remoteMove, localReward, remoteReward)
	return round, nil
}

// announcement is START for the first round, then the previous round from the remote's
// point of view.
func (r *Referee) announcement() string {
	last := r.Game.Round() - 1
	if last < 0 {
		return meta.START
	}
	return communication.Update{
		Move:           r.Game.Moves2[last],
		Reward:         r.Game.Rewards2[last],
		OpponentMove:   r.Game.Moves1[last],
		OpponentReward: r.Game.Rewards1[last],
	}.String()
}

func (r *Referee) receive() (string, error) {
	line, err := r.Communicator.Receive()
	if err == io.EOF {
		return "", fmt.Errorf("remote closed the channel: %w", io.ErrUnexpectedEOF)
	}
	return line, err
}
