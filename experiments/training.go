package experiments

import (
	"ipd/agent"
	"ipd/engine"
	"ipd/game"
	"ipd/utils"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

// TrainQLearning plays episodes games of a Q-learning agent against fresh opponents.
// Every game starts from an empty history and the table learned so far, and the last
// round of each game is learned without a successor state. totalMoves of 0 draws the
// length of each game.
func TrainQLearning(opponent agent.Factory, episodes, totalMoves int, r *rand.Rand, options ...agent.QOption) *agent.QLearning {
	if episodes <= 0 {
		panic("need at least one episode")
	}

	var q *agent.QLearning
	scores := make([]int, 0, episodes)
	cooperated, moves := 0, 0
	for i := 0; i < episodes; i++ {
		if q == nil {
			q = agent.NewQLearning(r, options...)
		} else {
			q = agent.NewQLearning(r, append(options, agent.WithQTable(q.Table()))...)
		}

		result := engine.New(q, opponent(r), engine.WithRand(r), engine.WithTotalMoves(totalMoves)).Run()
		q.Finish()

		scores = append(scores, result.Scores[0])
		cooperated += utils.Count(q.Moves(), game.Cooperate)
		moves += result.TotalMoves
		if (i+1)%100 == 0 || i+1 == episodes {
			log.Info().Msgf("episode %d of %d, average score %.1f, cooperation %.2f",
				i+1, episodes, float64(utils.Sum(scores))/float64(len(scores)), float64(cooperated)/float64(moves))
		}
	}
	return q
}
