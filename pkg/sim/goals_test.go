package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormHistoryDefaultsWhenEmpty(t *testing.T) {
	forms := make(formHistory)
	stats := forms.stats("Unseen", nil)

	assert.InDelta(t, Config.DefaultAvgGoals, stats.AvgGoalsFor, 1e-9)
	assert.InDelta(t, Config.DefaultAvgGoals, stats.AvgGoalsAgainst, 1e-9)
	assert.Zero(t, stats.Matches)
}

func TestFormHistoryRollingWindow(t *testing.T) {
	forms := make(formHistory)
	// Ten heavy defeats followed by FormWindow wins: only the wins count
	for i := 0; i < 10; i++ {
		forms.record("A", 0, 5)
	}
	for i := 0; i < Config.FormWindow; i++ {
		forms.record("A", 2, 0)
	}

	stats := forms.stats("A", nil)
	assert.Equal(t, Config.FormWindow, stats.Matches)
	assert.InDelta(t, 2.0, stats.AvgGoalsFor, 1e-9)
	assert.InDelta(t, 0.0, stats.AvgGoalsAgainst, 1e-9)
}

func TestExpectedGoalsWithinBounds(t *testing.T) {
	gm := NewGoalModel(nil)
	neutral := FormStats{AvgGoalsFor: 1.5, AvgGoalsAgainst: 1.5, Matches: 5}

	// Sweep pathological inputs: the result must stay clamped
	for _, tc := range []struct {
		attackRating, defendRating float64
		attack, defend             FormStats
	}{
		{1500, 1500, neutral, neutral},
		{3000, 1000, FormStats{AvgGoalsFor: 9, AvgGoalsAgainst: 0, Matches: 5}, FormStats{AvgGoalsFor: 0, AvgGoalsAgainst: 9, Matches: 5}},
		{1000, 3000, FormStats{AvgGoalsFor: 0, AvgGoalsAgainst: 9, Matches: 5}, FormStats{AvgGoalsFor: 9, AvgGoalsAgainst: 0, Matches: 5}},
	} {
		mu := gm.ExpectedGoals(tc.attackRating, tc.defendRating, tc.attack, tc.defend, 0)
		assert.GreaterOrEqual(t, mu, Config.MuFloor)
		assert.LessOrEqual(t, mu, Config.MuCap)
	}
}

func TestExpectedGoalsFavoursStrongerSide(t *testing.T) {
	gm := NewGoalModel(nil)
	neutral := FormStats{AvgGoalsFor: 1.5, AvgGoalsAgainst: 1.5, Matches: 5}

	strong := gm.ExpectedGoals(1600, 1400, neutral, neutral, 0)
	weak := gm.ExpectedGoals(1400, 1600, neutral, neutral, 0)
	assert.Greater(t, strong, weak)
}

func TestExpectedGoalsHomeAdvantage(t *testing.T) {
	gm := NewGoalModel(nil)
	neutral := FormStats{AvgGoalsFor: 1.5, AvgGoalsAgainst: 1.5, Matches: 5}

	away := gm.ExpectedGoals(1500, 1500, neutral, neutral, 0)
	home := gm.ExpectedGoals(1500, 1500, neutral, neutral, Config.HomeAdvantage)
	assert.InDelta(t, Config.HomeAdvantage, home-away, 1e-9)
}

func TestExpectedGoalsScoringFormRaisesMu(t *testing.T) {
	gm := NewGoalModel(nil)
	neutral := FormStats{AvgGoalsFor: 1.5, AvgGoalsAgainst: 1.5, Matches: 5}
	hot := FormStats{AvgGoalsFor: 2.8, AvgGoalsAgainst: 1.5, Matches: 5}

	base := gm.ExpectedGoals(1500, 1500, neutral, neutral, 0)
	hotMu := gm.ExpectedGoals(1500, 1500, hot, neutral, 0)
	assert.Greater(t, hotMu, base)
}
