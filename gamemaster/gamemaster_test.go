package gamemaster

import (
	"io"
	"testing"

	"ipd/agent"
	"ipd/communication"
	"ipd/engine"
	"ipd/game"
	"ipd/player"

	"github.com/stretchr/testify/require"
)

type scripted struct {
	incoming []string
	sent     []string
}

func (s *scripted) Receive() (string, error) {
	if len(s.incoming) == 0 {
		return "", io.EOF
	}
	line := s.incoming[0]
	s.incoming = s.incoming[1:]
	return line, nil
}

func (s *scripted) Send(line string) error {
	s.sent = append(s.sent, line)
	return nil
}

func TestRefereeRunGame(t *testing.T) {
	t.Run("announcing rounds from the remote's point of view", func(t *testing.T) {
		comm := &scripted{incoming: []string{"OK", "D", "C", "D"}}
		ref := NewReferee(agent.NewTitForTat(), comm, WithTotalMoves(3))

		result, err := ref.RunGame()
		require.NoError(t, err)
		require.Equal(t, []string{"INIT", "START", "D 5 C 0", "C 0 D 5"}, comm.sent,
			"Final round should not be announced")
		require.Equal(t, [2]int{5, 10}, result.Scores)
		require.Equal(t, 3, result.TotalMoves)
		require.Equal(t, engine.Round{
			Index:   2,
			Moves:   [2]game.Move{game.Defect, game.Cooperate},
			Rewards: [2]int{5, 0},
		}, result.Rounds[1])
		require.Equal(t, []game.Move{game.Defect, game.Cooperate, game.Defect}, ref.Remote.Moves())
	})

	t.Run("rejecting a bad acknowledgement", func(t *testing.T) {
		comm := &scripted{incoming: []string{"NOPE"}}
		_, err := NewReferee(agent.NewAllC(), comm, WithTotalMoves(3)).RunGame()
		require.ErrorIs(t, err, ErrHandshake)
		require.Equal(t, []string{"INIT"}, comm.sent)
	})

	t.Run("remote closing during the handshake", func(t *testing.T) {
		comm := &scripted{}
		_, err := NewReferee(agent.NewAllC(), comm, WithTotalMoves(3)).RunGame()
		require.ErrorIs(t, err, ErrHandshake)
		require.ErrorIs(t, err, io.ErrUnexpectedEOF, "Cause should stay matchable")
		require.NotContains(t, err.Error(), "round")
	})

	t.Run("rejecting an illegal move", func(t *testing.T) {
		comm := &scripted{incoming: []string{"OK", "C", "X"}}
		ref := NewReferee(agent.NewAllC(), comm, WithTotalMoves(3))
		_, err := ref.RunGame()
		require.ErrorIs(t, err, ErrIllegalMove)
		require.Equal(t, 1, ref.Game.Round(), "Only the legal round should be played")
	})

	t.Run("remote closing early", func(t *testing.T) {
		comm := &scripted{incoming: []string{"OK", "C"}}
		_, err := NewReferee(agent.NewAllC(), comm, WithTotalMoves(3)).RunGame()
		require.ErrorIs(t, err, io.ErrUnexpectedEOF)
		require.NotErrorIs(t, err, ErrHandshake)
		require.Contains(t, err.Error(), "round 2")
	})
}

// connect joins a referee and a player with in-memory pipes and runs the player on its
// own goroutine.
func connect(t *testing.T, local, remote agent.Agent, options ...Option) (engine.Result, *player.Player) {
	toPlayer, fromReferee := io.Pipe()
	toReferee, fromPlayer := io.Pipe()

	p := player.NewPlayer(remote, communication.NewLineCommunicator(toPlayer, fromPlayer))
	done := make(chan error, 1)
	go func() {
		done <- p.Play()
		fromPlayer.Close()
	}()

	ref := NewReferee(local, communication.NewLineCommunicator(toReferee, fromReferee), options...)
	result, err := ref.RunGame()
	require.NoError(t, err)
	fromReferee.Close()

	require.NoError(t, <-done, "Player should end cleanly when the channel closes")
	return result, p
}

func TestRefereeWithPlayer(t *testing.T) {
	t.Run("all cooperate over three moves", func(t *testing.T) {
		remote := agent.NewAllC()
		result, p := connect(t, agent.NewAllC(), remote, WithTotalMoves(3))

		require.Equal(t, [2]int{9, 9}, result.Scores)
		require.Len(t, result.Rounds, 3)
		require.Equal(t, 3, p.Rounds())
		require.Equal(t, player.Terminal, p.State())
		// The player only learns about rounds the referee announced
		require.Equal(t, 6, remote.Score())
		require.Equal(t, 6, p.Opponent.Score())
	})

	t.Run("matching a local engine run", func(t *testing.T) {
		result, _ := connect(t, agent.NewTitForTat(), agent.NewReverseTitForTat(), WithSeed(11))

		local := engine.New(agent.NewTitForTat(), agent.NewReverseTitForTat(), engine.WithSeed(11)).Run()
		require.Equal(t, local.TotalMoves, result.TotalMoves, "Same seed should draw the same length")
		require.Equal(t, local.Rounds, result.Rounds, "Remote play should match local play")
		require.Equal(t, local.Scores, result.Scores)
	})
}
