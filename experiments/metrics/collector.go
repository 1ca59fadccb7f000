package metrics

import (
	"time"

	"ipd/engine"
	"ipd/game"
)

// MatchMetric summarises one finished match.
type MatchMetric struct {
	Game         int
	Agent1       string
	Agent2       string
	TotalMoves   int
	Score1       int
	Score2       int
	Cooperation1 float64 // Share of rounds player 1 cooperated
	Cooperation2 float64
	StartTime    time.Time
	EndTime      time.Time
	Duration     time.Duration
}

type Collector interface {
	Start(game int, agent1, agent2 string)
	AddRound(round engine.Round)
	Complete() MatchMetric
}

type collector struct {
	metric       MatchMetric
	cooperations [2]int
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start(game int, agent1, agent2 string) {
	m.metric = MatchMetric{
		Game:      game,
		Agent1:    agent1,
		Agent2:    agent2,
		StartTime: time.Now(),
	}
	m.cooperations = [2]int{}
}

func (m *collector) AddRound(round engine.Round) {
	m.metric.TotalMoves++
	m.metric.Score1 += round.Rewards[0]
	m.metric.Score2 += round.Rewards[1]
	for i, move := range round.Moves {
		if move == game.Cooperate {
			m.cooperations[i]++
		}
	}
}

func (m *collector) Complete() MatchMetric {
	metric := m.metric
	metric.EndTime = time.Now()
	metric.Duration = metric.EndTime.Sub(metric.StartTime)
	if metric.TotalMoves > 0 {
		metric.Cooperation1 = float64(m.cooperations[0]) / float64(metric.TotalMoves)
		metric.Cooperation2 = float64(m.cooperations[1]) / float64(metric.TotalMoves)
	}
	return metric
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(game int, agent1, agent2 string) {}
func (m *dummyCollector) AddRound(round engine.Round)           {}
func (m *dummyCollector) Complete() MatchMetric                 { return MatchMetric{} }
