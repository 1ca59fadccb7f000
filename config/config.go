package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"ipd/agent"
	"ipd/experiments"
	"ipd/utils"

	"golang.org/x/exp/rand"
	"gopkg.in/yaml.v3"
)

// NeatStrategy is configured from a genome file rather than the registry.
const NeatStrategy = "neat"

// AgentConfig describes one tournament entrant.
type AgentConfig struct {
	Name     string  `yaml:"name"`
	Strategy string  `yaml:"strategy"`
	QTable   string  `yaml:"qtable,omitempty"`  // qlearning only
	Epsilon  float64 `yaml:"epsilon,omitempty"` // qlearning only
	Genome   string  `yaml:"genome,omitempty"`  // neat only
}

type Config struct {
	Seed       uint64        `yaml:"seed"`
	Games      int           `yaml:"games"`                 // Per matchup
	TotalMoves int           `yaml:"total_moves,omitempty"` // 0 draws the length of each game
	SelfPlay   bool          `yaml:"self_play"`
	Agents     []AgentConfig `yaml:"agents"`
}

// Default pits every registered strategy against every other.
func Default() Config {
	cfg := Config{
		Seed:  1,
		Games: 5,
	}
	for _, name := range agent.Names() {
		cfg.Agents = append(cfg.Agents, AgentConfig{Name: name, Strategy: name})
	}
	return cfg
}

// Load reads a YAML file over the defaults. Agents listed in the file replace the
// default lineup.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	cfg.Agents = nil
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if len(cfg.Agents) == 0 {
		cfg.Agents = Default().Agents
	}
	for i := range cfg.Agents {
		if cfg.Agents[i].Name == "" {
			cfg.Agents[i].Name = cfg.Agents[i].Strategy
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Games <= 0 {
		return errors.New("games must be positive")
	}
	if c.TotalMoves < 0 {
		return errors.New("total_moves must not be negative")
	}
	if len(c.Agents) < 2 {
		return errors.New("need at least two agents")
	}
	names := make([]string, 0, len(c.Agents))
	for _, a := range c.Agents {
		if utils.FindIndex(names, a.Name) >= 0 {
			return fmt.Errorf("duplicate agent name %q", a.Name)
		}
		names = append(names, a.Name)
		if err := a.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (a AgentConfig) Validate() error {
	if a.Epsilon < 0 || a.Epsilon > 1 {
		return fmt.Errorf("agent %q: epsilon must be in [0, 1]", a.Name)
	}
	if a.Strategy == NeatStrategy {
		if a.Genome == "" {
			return fmt.Errorf("agent %q: neat strategy needs a genome file", a.Name)
		}
		return nil
	}
	if _, err := agent.Lookup(a.Strategy); err != nil {
		return fmt.Errorf("agent %q: %w", a.Name, err)
	}
	return nil
}

// Factory builds the agent factory, loading any model files once up front.
func (a AgentConfig) Factory() (agent.Factory, error) {
	switch {
	case a.Strategy == NeatStrategy:
		genome, err := os.ReadFile(a.Genome)
		if err != nil {
			return nil, fmt.Errorf("failed to read genome for %q: %w", a.Name, err)
		}
		// Fail early on a broken genome
		if _, err := agent.NewNeatFromGenome(bytes.NewReader(genome)); err != nil {
			return nil, err
		}
		return func(*rand.Rand) agent.Agent {
			neat, err := agent.NewNeatFromGenome(bytes.NewReader(genome))
			if err != nil {
				panic(err)
			}
			return neat
		}, nil

	case a.Strategy == "qlearning" && (a.QTable != "" || a.Epsilon > 0):
		options := []agent.QOption{agent.WithEpsilon(a.Epsilon)}
		if a.QTable != "" {
			table, err := agent.LoadQTable(a.QTable)
			if err != nil {
				return nil, err
			}
			options = append(options, agent.WithQTable(table))
		}
		return func(r *rand.Rand) agent.Agent {
			return agent.NewQLearning(r, options...)
		}, nil

	default:
		return agent.Lookup(a.Strategy)
	}
}

// Entrants turns the configured agents into tournament entrants.
func (c Config) Entrants() ([]experiments.Entrant, error) {
	entrants := make([]experiments.Entrant, 0, len(c.Agents))
	for _, a := range c.Agents {
		factory, err := a.Factory()
		if err != nil {
			return nil, err
		}
		entrants = append(entrants, experiments.Entrant{Name: a.Name, New: factory})
	}
	return entrants, nil
}
