package sim

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulateMatchOddsSumToOne(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	odds := SimulateMatchOdds(1.4, 1.1, 2000, rng)
	assert.InDelta(t, 1.0, odds.HomeWin+odds.Draw+odds.AwayWin, 1e-9)
}

func TestSimulateMatchOddsFavourHigherMu(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	odds := SimulateMatchOdds(2.6, 0.8, 5000, rng)
	assert.Greater(t, odds.HomeWin, odds.AwayWin)
}

func TestMatchOddsExpectedPoints(t *testing.T) {
	odds := MatchOdds{HomeWin: 0.5, Draw: 0.3, AwayWin: 0.2}
	home, away := odds.ExpectedPoints()
	assert.InDelta(t, 1.8, home, 1e-9)
	assert.InDelta(t, 0.9, away, 1e-9)
}

func TestEstimateFullyPlayedSeasonIsPlainTally(t *testing.T) {
	fs := ParseFixtures(miniSeasonRows(), "2025")
	require.Zero(t, fs.UnplayedCount())

	expectations, err := NewExpectedPointsEstimator(nil).Estimate(fs, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	require.Len(t, expectations, 3)

	byTeam := make(map[string]*TeamExpectation)
	for _, e := range expectations {
		byTeam[e.Team] = e
	}

	assert.InDelta(t, 6, byTeam["A"].ExpectedPoints, 1e-9)
	assert.InDelta(t, 1, byTeam["B"].ExpectedPoints, 1e-9)
	assert.InDelta(t, 1, byTeam["C"].ExpectedPoints, 1e-9)

	for team, e := range byTeam {
		assert.InDelta(t, e.PlayedPoints, e.ExpectedPoints, 1e-9,
			"%s: with nothing left to play, expectation equals the tally", team)
		assert.Zero(t, e.Remaining)
	}

	// Best expectation first
	assert.Equal(t, "A", expectations[0].Team)
}

func TestEstimatePartialSeasonAddsFractions(t *testing.T) {
	rows := [][]string{
		{"Sat", "2025-08-02", "", "A", "3:0", "B"},
		{"Sat", "2025-08-09", "", "B", "-:-", "C"},
		{"Sat", "2025-08-16", "", "C", "-:-", "A"},
	}
	fs := ParseFixtures(rows, "2025")

	expectations, err := NewExpectedPointsEstimator(nil).Estimate(fs, rand.New(rand.NewSource(17)))
	require.NoError(t, err)

	byTeam := make(map[string]*TeamExpectation)
	total := 0.0
	for _, e := range expectations {
		byTeam[e.Team] = e
		total += e.ExpectedPoints
	}

	a := byTeam["A"]
	require.NotNil(t, a)
	assert.InDelta(t, 3, a.PlayedPoints, 1e-9)
	assert.Greater(t, a.ExpectedPoints, 3.0, "a remaining fixture adds something")
	assert.Equal(t, 1, a.Played)
	assert.Equal(t, 1, a.Remaining)

	// Each fixture distributes between 2 (certain draw) and 3 points of
	// expectation, so the league total is bounded
	assert.GreaterOrEqual(t, total, 2.0*3)
	assert.LessOrEqual(t, total, 3.0*3)
}

func TestEstimateFavoursStrongerTeam(t *testing.T) {
	fs := ParseFixtures(strongWeakRows(), "2025")

	expectations, err := NewExpectedPointsEstimator(nil).Estimate(fs, rand.New(rand.NewSource(21)))
	require.NoError(t, err)

	byTeam := make(map[string]*TeamExpectation)
	for _, e := range expectations {
		byTeam[e.Team] = e
	}
	assert.Greater(t, byTeam["A"].ExpectedPoints, byTeam["B"].ExpectedPoints)
	assert.Equal(t, "A", expectations[0].Team)
}

func TestEstimateEmptySetFails(t *testing.T) {
	_, err := NewExpectedPointsEstimator(nil).Estimate(&FixtureSet{}, rand.New(rand.NewSource(1)))
	assert.Error(t, err)
}
