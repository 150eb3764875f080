package sim

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/richard-senior/seasonsim/internal/logger"
)

// ExportTrajectoryCSV writes a settled season back out in the input row
// schema, so a simulated season can be fed straight back into the loader
func ExportTrajectoryCSV(traj *SeasonTrajectory, path string) error {
	if traj == nil || len(traj.Outcomes) == 0 {
		return fmt.Errorf("nothing to export")
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file %s: %w", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	w.Comma = ';'

	if err := w.Write([]string{"Day", "Date", "Time", "Home Team", "Result", "Away Team"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, o := range traj.Outcomes {
		row := []string{
			o.Date.Format("Mon"),
			o.Date.Format("2006-01-02"),
			"",
			o.HomeTeam,
			fmt.Sprintf("%d:%d", o.HomeGoals, o.AwayGoals),
			o.AwayTeam,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush export file: %w", err)
	}

	logger.Info("Exported", len(traj.Outcomes), "results to", path)
	return nil
}

// ExportForecastCSV writes the aggregated forecast as a comma separated
// table, one row per team, best first
func ExportForecastCSV(f *Forecast, path string) error {
	if f == nil || len(f.Teams) == 0 {
		return fmt.Errorf("nothing to export")
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file %s: %w", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	header := []string{
		"Team", "MeanPts", "StdPts", "MinPts", "MaxPts",
		"CI90Low", "CI90High", "CI95Low", "CI95High",
		"MeanElo", "StdElo", "MeanGD", "BiggestWin", "BiggestLoss",
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, tf := range f.Teams {
		row := []string{
			tf.Team,
			formatFloat(tf.MeanPoints),
			formatFloat(tf.StdPoints),
			formatFloat(tf.MinPoints),
			formatFloat(tf.MaxPoints),
			formatFloat(tf.CI90Low),
			formatFloat(tf.CI90High),
			formatFloat(tf.CI95Low),
			formatFloat(tf.CI95High),
			formatFloat(tf.MeanRating),
			formatFloat(tf.StdRating),
			formatFloat(tf.MeanGoalDiff),
			formatExtreme(tf.BiggestWin),
			formatExtreme(tf.BiggestLoss),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush export file: %w", err)
	}

	logger.Info("Exported forecast for", len(f.Teams), "teams to", path)
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
