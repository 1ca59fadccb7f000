package experiments

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"ipd/agent"
	"ipd/engine"
	"ipd/experiments/metrics"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

// Entrant is a named strategy taking part in a tournament. Each game gets a fresh agent.
type Entrant struct {
	Name string
	New  agent.Factory
}

type Option func(t *Tournament)

// WithSelfPlay also pairs every entrant with a copy of itself.
func WithSelfPlay() Option {
	return func(t *Tournament) {
		t.selfPlay = true
	}
}

// WithTotalMoves fixes the length of every game instead of drawing it.
func WithTotalMoves(totalMoves int) Option {
	return func(t *Tournament) {
		if totalMoves > 0 {
			t.totalMoves = totalMoves
		}
	}
}

func WithMetrics() Option {
	return func(t *Tournament) {
		t.metrics = metrics.NewCollector()
	}
}

// Tournament plays a round robin between its entrants. Results only live in memory.
type Tournament struct {
	entrants   []Entrant
	games      int // Per matchup
	seed       uint64
	selfPlay   bool
	totalMoves int
	metrics    metrics.Collector
}

func NewTournament(entrants []Entrant, games int, seed uint64, options ...Option) *Tournament {
	if len(entrants) < 2 {
		panic("need at least two entrants")
	}
	if games <= 0 {
		panic("need at least one game per matchup")
	}
	t := &Tournament{ // Default values
		entrants: entrants,
		games:    games,
		seed:     seed,
		metrics:  metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(t)
	}
	return t
}

// Standing is an entrant's aggregate over all its games.
type Standing struct {
	Name   string
	Score  int
	Moves  int
	Games  int
	Wins   int
	Draws  int
	Losses int
}

// PerMove is the average reward per round played.
func (s Standing) PerMove() float64 {
	if s.Moves == 0 {
		return 0
	}
	return float64(s.Score) / float64(s.Moves)
}

// Standings are ordered by total score, ties broken by name.
type Standings []Standing

func (t *Tournament) matchUps() [][2]int {
	matchUps := [][2]int{}
	for i := range t.entrants {
		if t.selfPlay {
			matchUps = append(matchUps, [2]int{i, i})
		}
		for j := i + 1; j < len(t.entrants); j++ {
			matchUps = append(matchUps, [2]int{i, j})
		}
	}
	return matchUps
}

// Run plays every matchup and returns the standings and, with WithMetrics, one metric
// per game.
func (t *Tournament) Run() (Standings, []metrics.MatchMetric) {
	r := rand.New(rand.NewSource(t.seed))
	standings := make([]Standing, len(t.entrants))
	for i, e := range t.entrants {
		standings[i].Name = e.Name
	}
	matchMetrics := []metrics.MatchMetric{}

	matchUps := t.matchUps()
	log.Info().Msgf("starting tournament with %d entrants and %d matchups...", len(t.entrants), len(matchUps))

	count := 0
	for mi, matchUp := range matchUps {
		e1, e2 := t.entrants[matchUp[0]], t.entrants[matchUp[1]]
		log.Info().Msgf("starting matchup %d of %d between %s and %s...", mi+1, len(matchUps), e1.Name, e2.Name)

		for i := 0; i < t.games; i++ {
			count++
			a1 := e1.New(rand.New(rand.NewSource(r.Uint64())))
			a2 := e2.New(rand.New(rand.NewSource(r.Uint64())))
			options := []engine.Option{engine.WithRand(r)}
			if t.totalMoves > 0 {
				options = append(options, engine.WithTotalMoves(t.totalMoves))
			}

			t.metrics.Start(count, e1.Name, e2.Name)
			e := engine.New(a1, a2, options...)
			for round := range e.Rounds() {
				t.metrics.AddRound(round)
			}
			result := e.Run()
			if metric := t.metrics.Complete(); metric.TotalMoves > 0 {
				matchMetrics = append(matchMetrics, metric)
			}

			record(&standings[matchUp[0]], result, 0)
			if matchUp[0] != matchUp[1] {
				record(&standings[matchUp[1]], result, 1)
			}
		}
		log.Info().Msgf("completed matchup %d of %d", mi+1, len(matchUps))
	}

	sort.SliceStable(standings, func(i, j int) bool {
		if standings[i].Score != standings[j].Score {
			return standings[i].Score > standings[j].Score
		}
		return standings[i].Name < standings[j].Name
	})
	log.Info().Msgf("completed tournament after %d games", count)
	return standings, matchMetrics
}

// record adds one game to a standing from the point of view of player index p.
func record(s *Standing, result engine.Result, p int) {
	s.Games++
	s.Score += result.Scores[p]
	s.Moves += result.TotalMoves
	switch result.Winner() {
	case 0:
		s.Draws++
	case p + 1:
		s.Wins++
	default:
		s.Losses++
	}
}

// Render prints the standings as a table.
func (s Standings) Render(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Rank", "Strategy", "Score", "Per move", "Games", "W", "D", "L"})
	for i, standing := range s {
		table.Append([]string{
			strconv.Itoa(i + 1),
			standing.Name,
			strconv.Itoa(standing.Score),
			fmt.Sprintf("%.3f", standing.PerMove()),
			strconv.Itoa(standing.Games),
			strconv.Itoa(standing.Wins),
			strconv.Itoa(standing.Draws),
			strconv.Itoa(standing.Losses),
		})
	}
	table.Render()
}
