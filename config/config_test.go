package config

import (
	"os"
	"path/filepath"
	"testing"

	"ipd/agent"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

func write(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "tournament.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	require.Len(t, cfg.Agents, len(agent.Names()))
	require.Equal(t, 5, cfg.Games)
}

func TestLoad(t *testing.T) {
	t.Run("reading a tournament file", func(t *testing.T) {
		path := write(t, `
seed: 9
games: 3
total_moves: 20
agents:
  - strategy: tft
  - name: grim-ish
    strategy: alld
`)
		cfg, err := Load(path)
		require.NoError(t, err)
		require.Equal(t, uint64(9), cfg.Seed)
		require.Equal(t, 3, cfg.Games)
		require.Equal(t, 20, cfg.TotalMoves)
		require.Equal(t, []AgentConfig{
			{Name: "tft", Strategy: "tft"},
			{Name: "grim-ish", Strategy: "alld"},
		}, cfg.Agents)

		entrants, err := cfg.Entrants()
		require.NoError(t, err)
		require.Len(t, entrants, 2)
		require.IsType(t, &agent.AllD{}, entrants[1].New(nil))
	})

	t.Run("keeping defaults for missing fields", func(t *testing.T) {
		cfg, err := Load(write(t, "seed: 3\n"))
		require.NoError(t, err)
		require.Equal(t, 5, cfg.Games)
		require.Equal(t, Default().Agents, cfg.Agents)
	})

	t.Run("rejecting invalid files", func(t *testing.T) {
		for name, content := range map[string]string{
			"unknown field":    "rounds: 3\n",
			"no games":         "games: 0\n",
			"unknown strategy": "agents: [{strategy: tft}, {strategy: grudger}]\n",
			"duplicate names":  "agents: [{strategy: tft}, {strategy: tft}]\n",
			"single agent":     "agents: [{strategy: tft}]\n",
			"neat sans genome": "agents: [{strategy: tft}, {strategy: neat}]\n",
			"bad epsilon":      "agents: [{strategy: tft}, {strategy: qlearning, epsilon: 2}]\n",
			"not yaml":         "agents: [\n",
		} {
			_, err := Load(write(t, content))
			require.Error(t, err, "Config with %s should be rejected", name)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})
}

func TestQLearningFactory(t *testing.T) {
	table := mat.NewDense(4, 2, []float64{0, 1, 0, 1, 0, 1, 0, 1})
	path := filepath.Join(t.TempDir(), "q.npz")
	require.NoError(t, agent.NewQLearning(nil, agent.WithQTable(table)).SaveQTable(path))

	factory, err := AgentConfig{Name: "q", Strategy: "qlearning", QTable: path}.Factory()
	require.NoError(t, err)

	q := factory(rand.New(rand.NewSource(1))).(*agent.QLearning)
	require.True(t, mat.Equal(table, q.Table()), "Factory should start from the saved table")

	_, err = AgentConfig{Name: "q", Strategy: "qlearning", QTable: "missing.npz"}.Factory()
	require.Error(t, err)
}

func TestNeatFactory(t *testing.T) {
	genome := "node 1 0 1 1\nnode 2 0 1 1\nnode 3 0 0 2\ngene 1 2 3 5.0 false 1 0 true\n"

	t.Run("building a fresh agent per game", func(t *testing.T) {
		path := write(t, genome)
		factory, err := AgentConfig{Name: "net", Strategy: NeatStrategy, Genome: path}.Factory()
		require.NoError(t, err)

		first, second := factory(nil), factory(nil)
		require.IsType(t, &agent.Neat{}, first)
		first.Update(first.PlayMove(agent.NewRecord()), 3)
		require.Empty(t, second.Moves(), "Agents should not share history")
	})

	t.Run("failing early on a broken genome", func(t *testing.T) {
		_, err := AgentConfig{Name: "net", Strategy: NeatStrategy, Genome: write(t, "garbage\n")}.Factory()
		require.Error(t, err)
	})

	t.Run("missing genome file", func(t *testing.T) {
		_, err := AgentConfig{Name: "net", Strategy: NeatStrategy, Genome: filepath.Join(t.TempDir(), "none")}.Factory()
		require.Error(t, err)
	})
}
