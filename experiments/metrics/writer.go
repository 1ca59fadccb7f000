package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"ipd/engine"
)

type Writer struct {
	baseDir string
}

// NewWriter creates baseDir if needed. An empty baseDir uses a timestamped folder under
// "matches".
func NewWriter(baseDir string) (*Writer, error) {
	if baseDir == "" {
		timestamp := time.Now().UTC().Format("20060102T150405Z")
		baseDir = filepath.Join("matches", timestamp)
	}
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

func (w *Writer) Dir() string {
	return w.baseDir
}

// WriteRounds writes a match transcript to rounds.csv.
func (w *Writer) WriteRounds(rounds []engine.Round) error {
	path := filepath.Join(w.baseDir, "rounds.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create rounds file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)

	header := []string{"round", "move1", "move2", "reward1", "reward2"}
	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write rounds header: %w", err)
	}

	for _, round := range rounds {
		row := []string{
			strconv.Itoa(round.Index),
			round.Moves[0].String(),
			round.Moves[1].String(),
			strconv.Itoa(round.Rewards[0]),
			strconv.Itoa(round.Rewards[1]),
		}
		err = writer.Write(row)
		if err != nil {
			return fmt.Errorf("failed to write round row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteMatchMetrics writes match summaries to matches.csv.
func (w *Writer) WriteMatchMetrics(metrics []MatchMetric) error {
	path := filepath.Join(w.baseDir, "matches.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create matches file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)

	header := []string{"game", "agent1", "agent2", "total_moves", "score1", "score2", "cooperation1", "cooperation2", "start_time", "duration"}
	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write matches header: %w", err)
	}

	for _, m := range metrics {
		row := []string{
			strconv.Itoa(m.Game),
			m.Agent1,
			m.Agent2,
			strconv.Itoa(m.TotalMoves),
			strconv.Itoa(m.Score1),
			strconv.Itoa(m.Score2),
			strconv.FormatFloat(m.Cooperation1, 'f', 4, 64),
			strconv.FormatFloat(m.Cooperation2, 'f', 4, 64),
			m.StartTime.Format(time.RFC3339),
			m.Duration.String(),
		}
		err = writer.Write(row)
		if err != nil {
			return fmt.Errorf("failed to write match row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
