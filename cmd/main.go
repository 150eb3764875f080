package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/richard-senior/seasonsim/internal/logger"
	"github.com/richard-senior/seasonsim/pkg/sim"
	"github.com/richard-senior/seasonsim/pkg/util"
)

func main() {
	var (
		filePath   = flag.String("file", "", "path to a semicolon delimited schedule file")
		schedURL   = flag.String("url", "", "URL of an HTML schedule page to scrape")
		season     = flag.String("season", "", "season to simulate, e.g. 2025")
		mode       = flag.String("mode", "forecast", "forecast, expected or single")
		runs       = flag.Int("runs", 0, "number of Monte Carlo runs (0 for the configured default)")
		seed       = flag.Int64("seed", 0, "base random seed (0 seeds from the clock)")
		kFactor    = flag.Float64("k", 0, "rating K factor override (0 for the configured default)")
		configPath = flag.String("config", "", "path to a YAML configuration file")
		dbPath     = flag.String("db", "", "database path override")
		exportPath = flag.String("export", "", "write results to this CSV file")
		teamName   = flag.String("team", "", "show detail for one team (fuzzy matched)")
		save       = flag.Bool("save", false, "persist fixtures and forecast to the database")
		verbose    = flag.Bool("verbose", false, "enable debug logging")
	)
	flag.Parse()

	logger.SetShowDateTime(false)
	logger.SetLogOutput('c')
	if *verbose {
		logger.SetLevel(logger.DEBUG)
	}

	if *configPath != "" {
		if _, err := sim.LoadConfig(*configPath); err != nil {
			logger.Fatal("Failed to load configuration:", err)
		}
	}
	if *kFactor > 0 {
		sim.Config.KFactor = *kFactor
	}
	if *dbPath != "" {
		sim.Config.DatabasePath = *dbPath
	}
	if err := sim.ValidateConfig(sim.Config); err != nil {
		logger.Fatal("Invalid configuration:", err)
	}

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	fs, err := loadFixtures(*filePath, *schedURL, *season)
	if err != nil {
		logger.Fatal("Failed to load fixtures:", err)
	}
	logger.Info("Season", fs.Season, "teams", len(fs.Teams),
		"played", fs.PlayedCount(), "remaining", fs.UnplayedCount())

	if *save {
		if err := sim.InitDatabase(); err != nil {
			logger.Fatal("Failed to initialize database:", err)
		}
		defer sim.CloseDatabase()
		if err := sim.SaveFixtures(fs); err != nil {
			logger.Error("Failed to persist fixtures:", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch *mode {
	case "single":
		runSingle(fs, *seed, *exportPath)
	case "expected":
		runExpected(fs, *seed)
	case "forecast":
		runForecast(ctx, fs, *runs, *seed, *teamName, *exportPath, *save)
	default:
		logger.Fatal("Unknown mode:", *mode)
	}
}

// loadFixtures resolves the fixture source: explicit file, scraped URL,
// or previously stored fixtures for the season
func loadFixtures(filePath, schedURL, season string) (*sim.FixtureSet, error) {
	switch {
	case filePath != "":
		return sim.LoadFixtures(filePath, season)
	case schedURL != "":
		return sim.GetDatasourceInstance().FetchFixtures(schedURL, season)
	case season != "":
		if err := sim.InitDatabase(); err != nil {
			return nil, err
		}
		return sim.LoadStoredFixtures(season)
	default:
		return nil, fmt.Errorf("need -file, -url or -season")
	}
}

func runSingle(fs *sim.FixtureSet, seed int64, exportPath string) {
	rng := rand.New(rand.NewSource(seed))
	traj, err := sim.NewSeasonSimulator(nil).Simulate(fs, rng)
	if err != nil {
		logger.Fatal("Simulation failed:", err)
	}

	table := sim.BuildTable(traj)
	fmt.Print(table.String())

	if exportPath != "" {
		if err := sim.ExportTrajectoryCSV(traj, exportPath); err != nil {
			logger.Error("Export failed:", err)
		}
	}
}

func runExpected(fs *sim.FixtureSet, seed int64) {
	rng := rand.New(rand.NewSource(seed))
	expectations, err := sim.NewExpectedPointsEstimator(nil).Estimate(fs, rng)
	if err != nil {
		logger.Fatal("Estimation failed:", err)
	}

	fmt.Printf("%-3s %-22s %8s %8s %4s %4s %8s\n",
		"#", "Team", "ExpPts", "Banked", "P", "R", "Elo")
	for i, e := range expectations {
		fmt.Printf("%-3d %-22s %8.2f %8.1f %4d %4d %8.1f\n",
			i+1, e.Team, e.ExpectedPoints, e.PlayedPoints, e.Played, e.Remaining, e.Rating)
	}
}

func runForecast(ctx context.Context, fs *sim.FixtureSet, runs int, seed int64, teamName, exportPath string, save bool) {
	forecast, err := sim.NewAggregator(nil).Run(ctx, fs, runs, seed)
	if err != nil {
		logger.Fatal("Aggregation failed:", err)
	}

	printForecast(forecast)

	if teamName != "" {
		if tf := findTeam(forecast, teamName); tf != nil {
			printTeamDetail(tf)
		} else {
			logger.Warn("No team matching", teamName)
		}
	}

	if save {
		if err := sim.SaveForecast(forecast); err != nil {
			logger.Error("Failed to persist forecast:", err)
		}
	}
	if exportPath != "" {
		if err := sim.ExportForecastCSV(forecast, exportPath); err != nil {
			logger.Error("Export failed:", err)
		}
	}
}

func printForecast(f *sim.Forecast) {
	fmt.Printf("Season %s forecast over %d runs (seed %d)\n\n", f.Season, f.Runs, f.Seed)
	fmt.Printf("%-3s %-22s %7s %6s %5s %5s %7s %6s %6s %13s %13s\n",
		"#", "Team", "MeanPts", "Std", "Min", "Max", "Elo", "StdE", "GD", "90% CI", "95% CI")
	for i, tf := range f.Teams {
		fmt.Printf("%-3d %-22s %7.1f %6.1f %5.0f %5.0f %7.1f %6.1f %+6.1f %5.1f - %5.1f %5.1f - %5.1f\n",
			i+1, tf.Team, tf.MeanPoints, tf.StdPoints, tf.MinPoints, tf.MaxPoints,
			tf.MeanRating, tf.StdRating, tf.MeanGoalDiff,
			tf.CI90Low, tf.CI90High, tf.CI95Low, tf.CI95High)
	}
}

func printTeamDetail(tf *sim.TeamForecast) {
	fmt.Printf("\n%s\n", tf.Team)
	fmt.Printf("  points  %.1f +/- %.1f (min %.0f, max %.0f)\n",
		tf.MeanPoints, tf.StdPoints, tf.MinPoints, tf.MaxPoints)
	fmt.Printf("  rating  %.1f +/- %.1f\n", tf.MeanRating, tf.StdRating)
	fmt.Printf("  90%% CI  %.1f - %.1f\n", tf.CI90Low, tf.CI90High)
	fmt.Printf("  95%% CI  %.1f - %.1f\n", tf.CI95Low, tf.CI95High)
	if tf.BiggestWin != nil {
		fmt.Printf("  biggest win   %s v %s on %s (run %d)\n",
			tf.BiggestWin.Score, tf.BiggestWin.Opponent,
			tf.BiggestWin.Date.Format("2006-01-02"), tf.BiggestWin.Run)
	}
	if tf.BiggestLoss != nil {
		fmt.Printf("  biggest loss  %s v %s on %s (run %d)\n",
			tf.BiggestLoss.Score, tf.BiggestLoss.Opponent,
			tf.BiggestLoss.Date.Format("2006-01-02"), tf.BiggestLoss.Run)
	}
	if tf.BiggestRatingGain != nil {
		fmt.Printf("  best rating swing   %+.1f v %s (run %d)\n",
			tf.BiggestRatingGain.Delta, tf.BiggestRatingGain.Opponent, tf.BiggestRatingGain.Run)
	}
	if tf.BiggestRatingLoss != nil {
		fmt.Printf("  worst rating swing  %+.1f v %s (run %d)\n",
			tf.BiggestRatingLoss.Delta, tf.BiggestRatingLoss.Opponent, tf.BiggestRatingLoss.Run)
	}
}

// findTeam resolves a possibly misspelled team name against the forecast
func findTeam(f *sim.Forecast, name string) *sim.TeamForecast {
	if tf := f.Team(name); tf != nil {
		return tf
	}

	var best *sim.TeamForecast
	bestScore := 0.0
	for _, tf := range f.Teams {
		if util.IsFuzzyMatch(name, tf.Team) {
			if score := util.FuzzyMatchScore(name, tf.Team); score > bestScore {
				best = tf
				bestScore = score
			}
		}
	}
	return best
}
