package sim

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/richard-senior/seasonsim/internal/logger"
)

// MatchOdds are the estimated outcome probabilities for a single fixture
type MatchOdds struct {
	HomeWin float64
	Draw    float64
	AwayWin float64
}

// SimulateMatchOdds estimates win/draw/loss probabilities for one fixture
// by drawing `trials` independent Poisson scorelines
func SimulateMatchOdds(muHome, muAway float64, trials int, rng *rand.Rand) MatchOdds {
	if trials <= 0 {
		trials = Config.InnerTrials
	}
	var homeWins, draws, awayWins int
	for i := 0; i < trials; i++ {
		hg, ag := DrawScore(muHome, muAway, rng)
		switch {
		case hg > ag:
			homeWins++
		case hg < ag:
			awayWins++
		default:
			draws++
		}
	}
	n := float64(trials)
	return MatchOdds{
		HomeWin: float64(homeWins) / n,
		Draw:    float64(draws) / n,
		AwayWin: float64(awayWins) / n,
	}
}

// ExpectedPoints converts odds into the expected league points for each side
func (o MatchOdds) ExpectedPoints() (home, away float64) {
	return 3*o.HomeWin + o.Draw, 3*o.AwayWin + o.Draw
}

// TeamExpectation is one team's expected-points outlook: points already
// banked plus the probability-weighted points of the remaining fixtures
type TeamExpectation struct {
	Team           string
	ExpectedPoints float64
	PlayedPoints   float64
	Rating         float64
	Played         int
	Remaining      int
}

// ExpectedPointsEstimator projects final points without committing to any
// particular scoreline: each remaining fixture contributes fractional
// points weighted by its outcome probabilities
type ExpectedPointsEstimator struct {
	cfg   *SimConfig
	goals *GoalModel
}

// NewExpectedPointsEstimator creates an estimator over the given
// configuration (nil for the global config)
func NewExpectedPointsEstimator(cfg *SimConfig) *ExpectedPointsEstimator {
	cfg = configOrDefault(cfg)
	return &ExpectedPointsEstimator{cfg: cfg, goals: NewGoalModel(cfg)}
}

// Estimate walks the season chronologically. Played fixtures contribute
// actual points and ordinary rating updates. Unplayed fixtures contribute
// expected points and a fractional rating update, and never feed back into
// rolling form, so the projection stays anchored to real results.
// A fully played season therefore reduces to the plain points tally.
func (ep *ExpectedPointsEstimator) Estimate(fs *FixtureSet, rng *rand.Rand) ([]*TeamExpectation, error) {
	if fs == nil || len(fs.Fixtures) == 0 {
		return nil, fmt.Errorf("no fixtures to estimate")
	}
	fs.SortByDate()

	engine := NewRatingEngine(fs.InitialRatings(ep.cfg), ep.cfg)
	h2h := headToHeadWins(fs)
	forms := make(formHistory)

	exp := make(map[string]*TeamExpectation, len(fs.Teams))
	teamExp := func(team string) *TeamExpectation {
		if e, ok := exp[team]; ok {
			return e
		}
		e := &TeamExpectation{Team: team}
		exp[team] = e
		return e
	}

	for _, f := range fs.Fixtures {
		home := teamExp(f.HomeTeam)
		away := teamExp(f.AwayTeam)

		if f.Played() {
			hp, ap := PointsFor(f.HomeGoals, f.AwayGoals)
			home.ExpectedPoints += hp
			home.PlayedPoints += hp
			away.ExpectedPoints += ap
			away.PlayedPoints += ap
			home.Played++
			away.Played++
			engine.ApplyResult(f.HomeTeam, f.AwayTeam, ResultValue(f.HomeGoals, f.AwayGoals))
			forms.record(f.HomeTeam, f.HomeGoals, f.AwayGoals)
			forms.record(f.AwayTeam, f.AwayGoals, f.HomeGoals)
			continue
		}

		homeRating := engine.Rating(f.HomeTeam)
		awayRating := engine.Rating(f.AwayTeam)
		homeForm := forms.stats(f.HomeTeam, ep.cfg)
		awayForm := forms.stats(f.AwayTeam, ep.cfg)

		// No home advantage and no noise here: the projection should be
		// a neutral expectation, not one sampled future
		muHome := ep.goals.ExpectedGoals(homeRating, awayRating, homeForm, awayForm, 0)
		muAway := ep.goals.ExpectedGoals(awayRating, homeRating, awayForm, homeForm, 0)

		if h2h[h2hKey{f.HomeTeam, f.AwayTeam}] > 0 {
			muHome += ep.cfg.HeadToHeadBonus
		}
		if h2h[h2hKey{f.AwayTeam, f.HomeTeam}] > 0 {
			muAway += ep.cfg.HeadToHeadBonus
		}
		if muHome < ep.cfg.MuLooseFloor {
			muHome = ep.cfg.MuLooseFloor
		}
		if muAway < ep.cfg.MuLooseFloor {
			muAway = ep.cfg.MuLooseFloor
		}

		odds := SimulateMatchOdds(muHome, muAway, ep.cfg.InnerTrials, rng)
		hp, ap := odds.ExpectedPoints()
		home.ExpectedPoints += hp
		away.ExpectedPoints += ap
		home.Remaining++
		away.Remaining++

		// Fractional rating update: the 'actual' term is the probability
		// weighted result rather than a settled one
		engine.ApplyResult(f.HomeTeam, f.AwayTeam, odds.HomeWin+0.5*odds.Draw)
	}

	out := make([]*TeamExpectation, 0, len(exp))
	for team, e := range exp {
		e.Rating = engine.Rating(team)
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.ExpectedPoints != b.ExpectedPoints {
			return a.ExpectedPoints > b.ExpectedPoints
		}
		if a.Rating != b.Rating {
			return a.Rating > b.Rating
		}
		return a.Team < b.Team
	})

	logger.Info("Expected points estimated for", len(out), "teams,",
		fs.PlayedCount(), "played,", fs.UnplayedCount(), "remaining")
	return out, nil
}
