package sim

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/richard-senior/seasonsim/internal/logger"
)

// ExtremeResult records the single most extreme match a team produced
// across every run, with enough provenance to locate it
type ExtremeResult struct {
	Opponent string
	Date     time.Time
	Score    string
	Run      int
	GoalDiff int
	Delta    float64
}

// TeamForecast is the aggregated outlook for one team over every run
type TeamForecast struct {
	Team string

	MeanPoints float64
	StdPoints  float64
	MinPoints  float64
	MaxPoints  float64

	// Empirical confidence intervals on final points
	CI90Low  float64
	CI90High float64
	CI95Low  float64
	CI95High float64

	MeanRating   float64
	StdRating    float64
	MeanGoalDiff float64

	BiggestWin        *ExtremeResult
	BiggestLoss       *ExtremeResult
	BiggestRatingGain *ExtremeResult
	BiggestRatingLoss *ExtremeResult
}

// Forecast is the complete output of a multi-run aggregation
type Forecast struct {
	Season string
	Runs   int
	Seed   int64
	Teams  []*TeamForecast
}

// Team returns the named team's forecast, or nil
func (f *Forecast) Team(name string) *TeamForecast {
	for _, t := range f.Teams {
		if t.Team == name {
			return t
		}
	}
	return nil
}

// teamRun is one team's totals from a single run
type teamRun struct {
	points   float64
	goalDiff int
	rating   float64
}

// runResult carries everything the aggregator needs from one trajectory,
// reduced inside the worker so full trajectories never cross the channel
type runResult struct {
	run      int
	teams    map[string]teamRun
	extremes map[string]teamExtremes
}

type teamExtremes struct {
	biggestWin        *ExtremeResult
	biggestLoss       *ExtremeResult
	biggestRatingGain *ExtremeResult
	biggestRatingLoss *ExtremeResult
}

// Aggregator runs many independent season simulations and summarizes the
// spread of outcomes per team
type Aggregator struct {
	cfg     *SimConfig
	workers int
}

// NewAggregator creates an aggregator over the given configuration
// (nil for the global config)
func NewAggregator(cfg *SimConfig) *Aggregator {
	return &Aggregator{cfg: configOrDefault(cfg), workers: runtime.NumCPU()}
}

// Run performs `runs` independent season simulations and aggregates them.
// Each run gets its own deterministic rng derived from the base seed, so
// results are reproducible regardless of worker scheduling. Cancellation
// is honoured between runs, never mid-run.
func (ag *Aggregator) Run(ctx context.Context, fs *FixtureSet, runs int, seed int64) (*Forecast, error) {
	if runs <= 0 {
		runs = ag.cfg.DefaultRuns
	}
	if fs == nil || len(fs.Fixtures) == 0 {
		return nil, fmt.Errorf("no fixtures to aggregate")
	}

	// Sort once up front so workers never mutate the shared slice
	fs.SortByDate()

	logger.Info("Aggregating", runs, "season runs across", ag.workers, "workers")

	jobs := make(chan int)
	results := make(chan *runResult, ag.workers)
	var wg sync.WaitGroup
	var workerErr error
	var errOnce sync.Once

	for w := 0; w < ag.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sim := NewSeasonSimulator(ag.cfg)
			for run := range jobs {
				rng := rand.New(rand.NewSource(seed + int64(run)))
				traj, err := sim.Simulate(fs, rng)
				if err != nil {
					errOnce.Do(func() { workerErr = err })
					continue
				}
				results <- reduceRun(run, traj)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for run := 0; run < runs; run++ {
			select {
			case <-ctx.Done():
				return
			case jobs <- run:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	// Per-team sample vectors across all completed runs
	points := make(map[string][]float64)
	ratings := make(map[string][]float64)
	goalDiffs := make(map[string][]float64)
	extremes := make(map[string]teamExtremes)
	completed := 0

	for res := range results {
		completed++
		for team, tr := range res.teams {
			points[team] = append(points[team], tr.points)
			ratings[team] = append(ratings[team], tr.rating)
			goalDiffs[team] = append(goalDiffs[team], float64(tr.goalDiff))
		}
		for team, te := range res.extremes {
			extremes[team] = mergeExtremes(extremes[team], te)
		}
	}

	if workerErr != nil {
		return nil, workerErr
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("aggregation cancelled after %d of %d runs: %w", completed, runs, err)
	}
	if completed == 0 {
		return nil, fmt.Errorf("no runs completed")
	}

	forecast := &Forecast{Season: fs.Season, Runs: completed, Seed: seed}
	for team, pts := range points {
		sort.Float64s(pts)
		tf := &TeamForecast{
			Team:         team,
			MeanPoints:   mean(pts),
			StdPoints:    stddev(pts),
			MinPoints:    pts[0],
			MaxPoints:    pts[len(pts)-1],
			CI90Low:      percentile(pts, 5),
			CI90High:     percentile(pts, 95),
			CI95Low:      percentile(pts, 2.5),
			CI95High:     percentile(pts, 97.5),
			MeanRating:   mean(ratings[team]),
			StdRating:    stddev(ratings[team]),
			MeanGoalDiff: mean(goalDiffs[team]),
		}
		te := extremes[team]
		tf.BiggestWin = te.biggestWin
		tf.BiggestLoss = te.biggestLoss
		tf.BiggestRatingGain = te.biggestRatingGain
		tf.BiggestRatingLoss = te.biggestRatingLoss
		forecast.Teams = append(forecast.Teams, tf)
	}

	sort.SliceStable(forecast.Teams, func(i, j int) bool {
		a, b := forecast.Teams[i], forecast.Teams[j]
		if a.MeanPoints != b.MeanPoints {
			return a.MeanPoints > b.MeanPoints
		}
		if a.MeanGoalDiff != b.MeanGoalDiff {
			return a.MeanGoalDiff > b.MeanGoalDiff
		}
		if a.MeanRating != b.MeanRating {
			return a.MeanRating > b.MeanRating
		}
		return a.Team < b.Team
	})

	logger.Info("Aggregation complete:", completed, "runs,", len(forecast.Teams), "teams")
	return forecast, nil
}

// reduceRun folds a trajectory into per-team totals and extreme candidates
func reduceRun(run int, traj *SeasonTrajectory) *runResult {
	res := &runResult{
		run:      run,
		teams:    make(map[string]teamRun),
		extremes: make(map[string]teamExtremes),
	}

	for _, o := range traj.Outcomes {
		for _, side := range []struct {
			team   string
			points float64
			delta  float64
		}{
			{o.HomeTeam, o.HomePoints, o.HomeDelta},
			{o.AwayTeam, o.AwayPoints, o.AwayDelta},
		} {
			tr := res.teams[side.team]
			tr.points += side.points
			tr.goalDiff += o.GoalDiff(side.team)
			res.teams[side.team] = tr

			res.extremes[side.team] = observeExtreme(res.extremes[side.team], &ExtremeResult{
				Opponent: o.Opponent(side.team),
				Date:     o.Date,
				Score:    o.Score(side.team),
				Run:      run,
				GoalDiff: o.GoalDiff(side.team),
				Delta:    side.delta,
			})
		}
	}

	for team, tr := range res.teams {
		tr.rating = traj.FinalRatings[team]
		res.teams[team] = tr
	}
	return res
}

// observeExtreme updates a team's extreme set with one more match
func observeExtreme(te teamExtremes, e *ExtremeResult) teamExtremes {
	if e.GoalDiff > 0 && (te.biggestWin == nil || e.GoalDiff > te.biggestWin.GoalDiff) {
		te.biggestWin = e
	}
	if e.GoalDiff < 0 && (te.biggestLoss == nil || e.GoalDiff < te.biggestLoss.GoalDiff) {
		te.biggestLoss = e
	}
	if e.Delta > 0 && (te.biggestRatingGain == nil || e.Delta > te.biggestRatingGain.Delta) {
		te.biggestRatingGain = e
	}
	if e.Delta < 0 && (te.biggestRatingLoss == nil || e.Delta < te.biggestRatingLoss.Delta) {
		te.biggestRatingLoss = e
	}
	return te
}

// mergeExtremes folds one run's extremes into the global set
func mergeExtremes(global, run teamExtremes) teamExtremes {
	for _, e := range []*ExtremeResult{run.biggestWin, run.biggestLoss, run.biggestRatingGain, run.biggestRatingLoss} {
		if e != nil {
			global = observeExtreme(global, e)
		}
	}
	return global
}

/////////////////////////////////////////////////////////////////////////
////// Sample statistics
/////////////////////////////////////////////////////////////////////////

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func stddev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	sum := 0.0
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)))
}

// percentile returns the p-th percentile of a sorted sample using linear
// interpolation between the two nearest ranks
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
