package agent

import (
	"fmt"
	"io"

	"ipd/game"

	"github.com/yaricom/goNEAT/v2/neat/genetics"
	"github.com/yaricom/goNEAT/v2/neat/network"
)

// Neat plays the decision of an evolved NEAT network. The network senses the previous
// moves of both players (0 cooperate, 1 defect) and defects when its output exceeds 0.5.
type Neat struct {
	Record
	net *network.Network
}

// NewNeatFromGenome builds the agent from a plain-text goNEAT genome.
func NewNeatFromGenome(r io.Reader) (*Neat, error) {
	genome, err := genetics.ReadGenome(r, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to read genome: %w", err)
	}
	net, err := genome.Genesis(1)
	if err != nil {
		return nil, fmt.Errorf("failed to build network from genome: %w", err)
	}
	return &Neat{net: net}, nil
}

func sense(h History) float64 {
	last, ok := lastMove(h)
	if !ok {
		return 0
	}
	return float64(last.Index())
}

func (a *Neat) PlayMove(opponent History) game.Move {
	if err := a.net.LoadSensors([]float64{sense(&a.Record), sense(opponent)}); err != nil {
		panic(fmt.Sprintf("failed to load network sensors: %v", err))
	}
	if _, err := a.net.Activate(); err != nil {
		panic(fmt.Sprintf("failed to activate network: %v", err))
	}
	outputs := a.net.ReadOutputs()

	// Based on what the network says, play
	if outputs[0] > 0.5 {
		return game.Defect
	}
	return game.Cooperate
}
