package player

import (
	"fmt"
	"io"

	"ipd/agent"
	"ipd/communication"
	"ipd/game"
	"ipd/meta"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// State is the position of a player in the protocol.
type State int

const (
	AwaitingInit State = iota
	Ready
	AwaitingUpdate
	Deciding
	Terminal
)

func (s State) String() string {
	switch s {
	case AwaitingInit:
		return "AWAITING_INIT"
	case Ready:
		return "READY"
	case AwaitingUpdate:
		return "AWAITING_UPDATE"
	case Deciding:
		return "DECIDING"
	case Terminal:
		return "TERMINAL"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var (
	ErrHandshake = errors.New("handshake failed")
	// ErrMalformedUpdate is returned for round lines that are neither START nor a valid update.
	ErrMalformedUpdate = communication.ErrMalformed
)

// Player drives a local agent against a remote judge. The judge is the only source of
// truth: both the agent's own history and the shadow opponent are updated from its
// messages, never computed locally.
type Player struct {
	Agent        agent.Agent
	Opponent     *agent.Record
	Communicator communication.Communicator
	state        State
	rounds       int
}

// NewPlayer creates a new Player instance.
func NewPlayer(a agent.Agent, comm communication.Communicator) *Player {
	return &Player{
		Agent:        a,
		Opponent:     agent.NewRecord(),
		Communicator: comm,
		state:        AwaitingInit,
	}
}

func (p *Player) State() State {
	return p.state
}

// Rounds returns the number of decisions sent so far.
func (p *Player) Rounds() int {
	return p.rounds
}

// Play runs the session until the judge closes the channel. Any framing error is fatal
// and ends the session. End of input after the handshake means the judge closed the
// session and returns nil; end of input during the handshake is an ErrHandshake.
func (p *Player) Play() error {
	err := p.play()
	p.state = Terminal
	return err
}

func (p *Player) play() error {
	if err := p.handshake(); err != nil {
		return err
	}

	for {
		p.state = AwaitingUpdate
		line, err := p.Communicator.Receive()
		if err == io.EOF {
			log.Info().Msgf("channel closed after %d rounds with score %d", p.rounds, p.Agent.Score())
			return nil
		}
		if err != nil {
			return err
		}

		if err := p.SyncGameState(line); err != nil {
			return err
		}

		p.state = Deciding
		move := p.TakeTurn()
		if err := p.Communicator.Send(move.String()); err != nil {
			return err
		}
		p.rounds++
	}
}

func (p *Player) handshake() error {
	line, err := p.Communicator.Receive()
	if err == io.EOF {
		return fmt.Errorf("%w: %w", ErrHandshake, io.ErrUnexpectedEOF)
	}
	if err != nil {
		return err
	}
	if line != meta.INIT {
		return errors.Wrapf(ErrHandshake, "expected %s, got %q", meta.INIT, line)
	}
	if err := p.Communicator.Send(meta.OK); err != nil {
		return err
	}
	p.state = Ready
	log.Debug().Msg("handshake complete")
	return nil
}

// SyncGameState applies a round line to the local records. START carries no history.
func (p *Player) SyncGameState(line string) error {
	if line == meta.START {
		return nil
	}
	update, err := communication.ParseUpdate(line)
	if err != nil {
		return err
	}
	p.Agent.Update(update.Move, update.Reward)
	p.Opponent.Update(update.OpponentMove, update.OpponentReward)
	return nil
}

// TakeTurn asks the agent for its next move against the shadow opponent.
func (p *Player) TakeTurn() game.Move {
	return game.MustValid(p.Agent.PlayMove(p.Opponent))
}
