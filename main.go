package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"ipd/agent"
	"ipd/communication"
	"ipd/config"
	"ipd/engine"
	"ipd/experiments"
	"ipd/experiments/metrics"
	"ipd/gamemaster"
	"ipd/player"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"gopkg.in/urfave/cli.v1"
)

var (
	verbosityFlag = cli.StringFlag{
		Name:  "verbosity",
		Value: "info",
		Usage: "Log level (trace, debug, info, warn, error)",
	}
	logJSONFlag = cli.BoolFlag{
		Name:  "log-json",
		Usage: "Log JSON lines instead of console output",
	}
	seedFlag = cli.Uint64Flag{
		Name:  "seed",
		Usage: "Random seed (0 picks one)",
	}
	movesFlag = cli.IntFlag{
		Name:  "moves",
		Usage: "Fix the number of rounds instead of drawing it",
	}
	strategyFlag = cli.StringFlag{
		Name:  "strategy",
		Value: "tft",
		Usage: fmt.Sprintf("Strategy to play (%s, %s)", strings.Join(agent.Names(), ", "), config.NeatStrategy),
	}
	qtableFlag = cli.StringFlag{
		Name:  "qtable",
		Usage: "Q-table (.npz) for the qlearning strategy",
	}
	epsilonFlag = cli.Float64Flag{
		Name:  "epsilon",
		Usage: "Exploration rate for the qlearning strategy",
	}
	genomeFlag = cli.StringFlag{
		Name:  "genome",
		Usage: "Genome file for the neat strategy",
	}
)

func main() {
	app := cli.NewApp()
	app.Name = "ipd"
	app.Usage = "Iterated prisoner's dilemma simulator and protocol runner"
	app.Flags = []cli.Flag{verbosityFlag, logJSONFlag}
	app.Before = setupLogging
	app.Commands = []cli.Command{
		{
			Name:   "match",
			Usage:  "Play one game between two strategies",
			Action: runMatch,
			Flags: []cli.Flag{
				cli.StringFlag{Name: "p1", Value: "tft", Usage: "Strategy of player 1"},
				cli.StringFlag{Name: "p2", Value: "alld", Usage: "Strategy of player 2"},
				seedFlag,
				movesFlag,
				cli.StringFlag{Name: "out", Usage: "Directory for the match transcript"},
			},
		},
		{
			Name:   "tournament",
			Usage:  "Play a round robin and print the standings",
			Action: runTournament,
			Flags: []cli.Flag{
				cli.StringFlag{Name: "config", Usage: "YAML tournament configuration"},
				cli.IntFlag{Name: "games", Usage: "Games per matchup"},
				seedFlag,
				movesFlag,
			},
		},
		{
			Name:   "play",
			Usage:  "Play a strategy over stdin/stdout against a judge",
			Action: runPlay,
			Flags:  []cli.Flag{strategyFlag, qtableFlag, epsilonFlag, genomeFlag, seedFlag},
		},
		{
			Name:      "referee",
			Usage:     "Judge a game between a strategy and a child process",
			ArgsUsage: "<command> [args...]",
			Action:    runReferee,
			Flags:     []cli.Flag{strategyFlag, qtableFlag, epsilonFlag, genomeFlag, seedFlag, movesFlag},
		},
		{
			Name:   "train",
			Usage:  "Train a Q-learning agent against a strategy",
			Action: runTrain,
			Flags: []cli.Flag{
				cli.StringFlag{Name: "opponent", Value: "tft", Usage: "Strategy to train against"},
				cli.IntFlag{Name: "episodes", Value: 1000, Usage: "Number of training games"},
				cli.StringFlag{Name: "out", Value: "q_table.npz", Usage: "Where to save the Q-table"},
				cli.Float64Flag{Name: "epsilon", Value: 0.1, Usage: "Exploration rate"},
				cli.Float64Flag{Name: "alpha", Value: 0.1, Usage: "Learning rate"},
				cli.Float64Flag{Name: "gamma", Value: 0.9, Usage: "Discount factor"},
				qtableFlag,
				seedFlag,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("ipd failed")
	}
}

// setupLogging writes logs to stderr; stdout carries protocol messages in play mode.
func setupLogging(ctx *cli.Context) error {
	level, err := zerolog.ParseLevel(ctx.GlobalString(verbosityFlag.Name))
	if err != nil {
		return fmt.Errorf("invalid verbosity: %w", err)
	}
	zerolog.SetGlobalLevel(level)

	if ctx.GlobalBool(logJSONFlag.Name) {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	return nil
}

func newRand(ctx *cli.Context) *rand.Rand {
	seed := ctx.Uint64(seedFlag.Name)
	if seed == 0 {
		seed = rand.Uint64()
	}
	log.Debug().Msgf("using seed %d", seed)
	return rand.New(rand.NewSource(seed))
}

func newAgent(ctx *cli.Context, r *rand.Rand) (agent.Agent, error) {
	cfg := config.AgentConfig{
		Name:     ctx.String(strategyFlag.Name),
		Strategy: ctx.String(strategyFlag.Name),
		QTable:   ctx.String(qtableFlag.Name),
		Epsilon:  ctx.Float64(epsilonFlag.Name),
		Genome:   ctx.String(genomeFlag.Name),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	factory, err := cfg.Factory()
	if err != nil {
		return nil, err
	}
	return factory(r), nil
}

func runMatch(ctx *cli.Context) error {
	r := newRand(ctx)
	name1, name2 := ctx.String("p1"), ctx.String("p2")
	a1, err := agent.New(name1, r)
	if err != nil {
		return err
	}
	a2, err := agent.New(name2, r)
	if err != nil {
		return err
	}

	collector := metrics.NewCollector()
	collector.Start(1, name1, name2)
	e := engine.New(a1, a2, engine.WithRand(r), engine.WithTotalMoves(ctx.Int(movesFlag.Name)))
	for round := range e.Rounds() {
		collector.AddRound(round)
	}
	result := e.Run()
	metric := collector.Complete()

	fmt.Printf("%s vs %s: %d-%d after %d moves (cooperation %.2f/%.2f)\n",
		name1, name2, result.Scores[0], result.Scores[1], result.TotalMoves, metric.Cooperation1, metric.Cooperation2)

	if out := ctx.String("out"); out != "" {
		writer, err := metrics.NewWriter(out)
		if err != nil {
			return err
		}
		if err := writer.WriteRounds(result.Rounds); err != nil {
			return err
		}
		if err := writer.WriteMatchMetrics([]metrics.MatchMetric{metric}); err != nil {
			return err
		}
		log.Info().Msgf("stored match transcript in %s", writer.Dir())
	}
	return nil
}

func runTournament(ctx *cli.Context) error {
	cfg := config.Default()
	if path := ctx.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if ctx.IsSet("games") {
		cfg.Games = ctx.Int("games")
	}
	if ctx.IsSet(seedFlag.Name) {
		cfg.Seed = ctx.Uint64(seedFlag.Name)
	}
	if ctx.IsSet(movesFlag.Name) {
		cfg.TotalMoves = ctx.Int(movesFlag.Name)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	entrants, err := cfg.Entrants()
	if err != nil {
		return err
	}
	options := []experiments.Option{experiments.WithTotalMoves(cfg.TotalMoves)}
	if cfg.SelfPlay {
		options = append(options, experiments.WithSelfPlay())
	}

	standings, _ := experiments.NewTournament(entrants, cfg.Games, cfg.Seed, options...).Run()
	standings.Render(os.Stdout)
	return nil
}

func runPlay(ctx *cli.Context) error {
	a, err := newAgent(ctx, newRand(ctx))
	if err != nil {
		return err
	}
	p := player.NewPlayer(a, communication.NewLineCommunicator(os.Stdin, os.Stdout))
	return p.Play()
}

func runReferee(ctx *cli.Context) error {
	if ctx.NArg() == 0 {
		return fmt.Errorf("missing command to referee")
	}
	r := newRand(ctx)
	local, err := newAgent(ctx, r)
	if err != nil {
		return err
	}

	cmd := exec.Command(ctx.Args().First(), ctx.Args().Tail()...)
	cmd.Stderr = os.Stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("failed to open remote stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to open remote stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start remote: %w", err)
	}

	ref := gamemaster.NewReferee(local, communication.NewLineCommunicator(stdout, stdin),
		gamemaster.WithRand(r), gamemaster.WithTotalMoves(ctx.Int(movesFlag.Name)))
	result, err := ref.RunGame()
	stdin.Close()
	waitErr := cmd.Wait()
	if err != nil {
		return err
	}
	if waitErr != nil {
		log.Warn().Err(waitErr).Msg("remote exited with an error")
	}

	fmt.Printf("%s vs remote: %d-%d after %d moves\n",
		ctx.String(strategyFlag.Name), result.Scores[0], result.Scores[1], result.TotalMoves)
	return nil
}

func runTrain(ctx *cli.Context) error {
	r := newRand(ctx)
	opponent, err := agent.Lookup(ctx.String("opponent"))
	if err != nil {
		return err
	}
	episodes := ctx.Int("episodes")
	if episodes <= 0 {
		return fmt.Errorf("episodes must be positive")
	}

	options := []agent.QOption{
		agent.WithEpsilon(ctx.Float64("epsilon")),
		agent.WithLearningRate(ctx.Float64("alpha")),
		agent.WithDiscount(ctx.Float64("gamma")),
	}
	if path := ctx.String(qtableFlag.Name); path != "" {
		table, err := agent.LoadQTable(path)
		if err != nil {
			return err
		}
		options = append(options, agent.WithQTable(table))
	}

	q := experiments.TrainQLearning(opponent, episodes, 0, r, options...)
	return q.SaveQTable(ctx.String("out"))
}
