package agent

import (
	"errors"
	"fmt"
	"sort"

	"golang.org/x/exp/rand"
)

var ErrUnknownStrategy = errors.New("unknown strategy")

// Factory creates a fresh agent. Random strategies draw from r.
type Factory func(r *rand.Rand) Agent

var strategies = map[string]Factory{
	"allc":        func(*rand.Rand) Agent { return NewAllC() },
	"alld":        func(*rand.Rand) Agent { return NewAllD() },
	"tft":         func(*rand.Rand) Agent { return NewTitForTat() },
	"reverse-tft": func(*rand.Rand) Agent { return NewReverseTitForTat() },
	"random":      func(r *rand.Rand) Agent { return NewRandom(r) },
	"random-defect": func(r *rand.Rand) Agent {
		return NewRandomDefect(r, 0.1)
	},
	"often-random-defect": func(r *rand.Rand) Agent {
		return NewRandomDefect(r, 1.0/3)
	},
	"qlearning": func(r *rand.Rand) Agent { return NewQLearning(r) },
}

// Lookup returns the factory for a named rule-based strategy.
func Lookup(name string) (Factory, error) {
	factory, ok := strategies[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
	return factory, nil
}

// New creates a named strategy.
func New(name string, r *rand.Rand) (Agent, error) {
	factory, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	return factory(r), nil
}

// Names returns the registered strategy names in sorted order.
func Names() []string {
	names := make([]string, 0, len(strategies))
	for name := range strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
