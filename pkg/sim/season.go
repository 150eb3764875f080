package sim

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/richard-senior/seasonsim/internal/logger"
)

// MatchOutcome is one settled fixture inside a trajectory: the scoreline,
// the points awarded, and the rating state at match time
type MatchOutcome struct {
	Date     time.Time
	HomeTeam string
	AwayTeam string

	HomeGoals int
	AwayGoals int

	// Points are float64 because expected-points mode awards fractions
	HomePoints float64
	AwayPoints float64

	// Ratings immediately before this match was settled
	HomeRating float64
	AwayRating float64

	// Rating deltas from this match, equal magnitude and opposite sign
	HomeDelta float64
	AwayDelta float64

	// Simulated distinguishes a drawn result from a historical one
	Simulated bool
}

// GoalDiff returns the goal difference from the named team's perspective
func (o *MatchOutcome) GoalDiff(team string) int {
	if team == o.HomeTeam {
		return o.HomeGoals - o.AwayGoals
	}
	return o.AwayGoals - o.HomeGoals
}

// Opponent returns the other side of the match
func (o *MatchOutcome) Opponent(team string) string {
	if team == o.HomeTeam {
		return o.AwayTeam
	}
	return o.HomeTeam
}

// Score renders the outcome from the named team's perspective
func (o *MatchOutcome) Score(team string) string {
	if team == o.HomeTeam {
		return fmt.Sprintf("%d:%d", o.HomeGoals, o.AwayGoals)
	}
	return fmt.Sprintf("%d:%d", o.AwayGoals, o.HomeGoals)
}

// SeasonTrajectory is one complete pass through a season's fixtures,
// every fixture settled exactly once, in date order
type SeasonTrajectory struct {
	Season       string
	Outcomes     []*MatchOutcome
	FinalRatings map[string]float64
}

// SeasonSimulator walks a season's fixtures once, copying actual results
// where they exist and simulating the rest
type SeasonSimulator struct {
	cfg   *SimConfig
	goals *GoalModel
}

// NewSeasonSimulator creates a simulator over the given configuration
// (nil for the global config)
func NewSeasonSimulator(cfg *SimConfig) *SeasonSimulator {
	cfg = configOrDefault(cfg)
	return &SeasonSimulator{cfg: cfg, goals: NewGoalModel(cfg)}
}

// Simulate produces one season trajectory. The rating map is rebuilt from
// the fixture set's start ratings, so repeated calls are independent.
func (ss *SeasonSimulator) Simulate(fs *FixtureSet, rng *rand.Rand) (*SeasonTrajectory, error) {
	if fs == nil || len(fs.Fixtures) == 0 {
		return nil, fmt.Errorf("no fixtures to simulate")
	}

	// Fixtures must be visited chronologically: the momentum and
	// head-to-head bonuses read "results so far"
	fs.SortByDate()

	engine := NewRatingEngine(fs.InitialRatings(ss.cfg), ss.cfg)
	h2h := headToHeadWins(fs)
	forms := make(formHistory)
	points := make(map[string]float64, len(fs.Teams))
	for _, team := range fs.Teams {
		points[team] = 0
	}

	traj := &SeasonTrajectory{
		Season:   fs.Season,
		Outcomes: make([]*MatchOutcome, 0, len(fs.Fixtures)),
	}

	for _, f := range fs.Fixtures {
		var outcome *MatchOutcome
		if f.Played() {
			outcome = ss.settleActual(f, engine)
		} else {
			outcome = ss.settleSimulated(f, engine, h2h, forms, points, rng)
		}

		forms.record(f.HomeTeam, outcome.HomeGoals, outcome.AwayGoals)
		forms.record(f.AwayTeam, outcome.AwayGoals, outcome.HomeGoals)
		points[f.HomeTeam] += outcome.HomePoints
		points[f.AwayTeam] += outcome.AwayPoints

		traj.Outcomes = append(traj.Outcomes, outcome)
	}

	if len(traj.Outcomes) != len(fs.Fixtures) {
		return nil, fmt.Errorf("trajectory covered %d of %d fixtures", len(traj.Outcomes), len(fs.Fixtures))
	}

	traj.FinalRatings = engine.Snapshot()
	return traj, nil
}

// settleActual copies a historical result verbatim and updates ratings from it
func (ss *SeasonSimulator) settleActual(f *Fixture, engine *RatingEngine) *MatchOutcome {
	homePoints, awayPoints := PointsFor(f.HomeGoals, f.AwayGoals)

	outcome := &MatchOutcome{
		Date:       f.Date,
		HomeTeam:   f.HomeTeam,
		AwayTeam:   f.AwayTeam,
		HomeGoals:  f.HomeGoals,
		AwayGoals:  f.AwayGoals,
		HomePoints: homePoints,
		AwayPoints: awayPoints,
		HomeRating: engine.Rating(f.HomeTeam),
		AwayRating: engine.Rating(f.AwayTeam),
		Simulated:  false,
	}

	outcome.HomeDelta, outcome.AwayDelta = engine.ApplyResult(
		f.HomeTeam, f.AwayTeam, ResultValue(f.HomeGoals, f.AwayGoals))
	return outcome
}

// settleSimulated draws a scoreline for an unplayed fixture and updates
// ratings from the drawn result
func (ss *SeasonSimulator) settleSimulated(f *Fixture, engine *RatingEngine, h2h map[h2hKey]int, forms formHistory, points map[string]float64, rng *rand.Rand) *MatchOutcome {
	homeRating := engine.Rating(f.HomeTeam)
	awayRating := engine.Rating(f.AwayTeam)

	homeForm := forms.stats(f.HomeTeam, ss.cfg)
	awayForm := forms.stats(f.AwayTeam, ss.cfg)

	muHome := ss.goals.ExpectedGoals(homeRating, awayRating, homeForm, awayForm, ss.cfg.HomeAdvantage)
	muAway := ss.goals.ExpectedGoals(awayRating, homeRating, awayForm, homeForm, 0)

	muHome += rng.NormFloat64() * ss.cfg.FormNoiseStd
	muAway += rng.NormFloat64() * ss.cfg.FormNoiseStd

	if h2h[h2hKey{f.HomeTeam, f.AwayTeam}] > 0 {
		muHome += ss.cfg.HeadToHeadBonus
	}
	if h2h[h2hKey{f.AwayTeam, f.HomeTeam}] > 0 {
		muAway += ss.cfg.HeadToHeadBonus
	}

	// Momentum is recomputed before every simulated fixture because the
	// standings evolve as the trajectory fills in
	muHome += ss.momentumBonus(f.HomeTeam, points)
	muAway += ss.momentumBonus(f.AwayTeam, points)

	if muHome < ss.cfg.MuLooseFloor {
		muHome = ss.cfg.MuLooseFloor
	}
	if muAway < ss.cfg.MuLooseFloor {
		muAway = ss.cfg.MuLooseFloor
	}

	homeGoals, awayGoals := DrawScore(muHome, muAway, rng)
	homePoints, awayPoints := PointsFor(homeGoals, awayGoals)

	outcome := &MatchOutcome{
		Date:       f.Date,
		HomeTeam:   f.HomeTeam,
		AwayTeam:   f.AwayTeam,
		HomeGoals:  homeGoals,
		AwayGoals:  awayGoals,
		HomePoints: homePoints,
		AwayPoints: awayPoints,
		HomeRating: homeRating,
		AwayRating: awayRating,
		Simulated:  true,
	}

	outcome.HomeDelta, outcome.AwayDelta = engine.ApplyResult(
		f.HomeTeam, f.AwayTeam, ResultValue(homeGoals, awayGoals))
	return outcome
}

// momentumBonus applies when the team leads the table by at least the
// configured margin over every other team
func (ss *SeasonSimulator) momentumBonus(team string, points map[string]float64) float64 {
	own, ok := points[team]
	if !ok {
		return 0
	}

	bestOther := 0.0
	haveOther := false
	for t, p := range points {
		if t == team {
			continue
		}
		if !haveOther || p > bestOther {
			bestOther = p
			haveOther = true
		}
	}
	if !haveOther {
		return 0
	}

	if own-bestOther >= ss.cfg.MomentumMargin {
		return ss.cfg.MomentumBonus
	}
	return 0
}

// h2hKey is (winner, loser)
type h2hKey struct {
	Winner string
	Loser  string
}

// headToHeadWins builds the winner/loser map from played fixtures only,
// once, before any simulation begins
func headToHeadWins(fs *FixtureSet) map[h2hKey]int {
	wins := make(map[h2hKey]int)
	for _, f := range fs.Fixtures {
		if !f.Played() {
			continue
		}
		if f.HomeGoals > f.AwayGoals {
			wins[h2hKey{f.HomeTeam, f.AwayTeam}]++
		} else if f.AwayGoals > f.HomeGoals {
			wins[h2hKey{f.AwayTeam, f.HomeTeam}]++
		}
	}
	logger.Debug("Head-to-head pairs with a prior winner:", len(wins))
	return wins
}
