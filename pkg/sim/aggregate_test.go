package sim

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// strongWeakRows builds a half-played double round robin where A has won
// every played match and B has lost every one, so their ratings diverge
// before the simulated half begins
func strongWeakRows() [][]string {
	teams := []string{"A", "B", "C", "D"}
	var rows [][]string
	day := 0
	addRound := func(result func(home, away string) string) {
		for _, home := range teams {
			for _, away := range teams {
				if home == away {
					continue
				}
				day++
				date := fmt.Sprintf("2025-%02d-%02d", 1+day/28, 1+day%28)
				rows = append(rows, []string{"", date, "", home, result(home, away), away})
			}
		}
	}

	// First half: A wins everything, B loses everything, C/D draw
	addRound(func(home, away string) string {
		switch {
		case home == "A":
			return "3:0"
		case away == "A":
			return "0:3"
		case home == "B":
			return "0:2"
		case away == "B":
			return "2:0"
		default:
			return "1:1"
		}
	})
	// Second half unplayed
	addRound(func(home, away string) string { return "-:-" })
	return rows
}

func TestAggregatorOrdersStrongTeamFirst(t *testing.T) {
	fs := ParseFixtures(strongWeakRows(), "2025")
	require.Equal(t, fs.PlayedCount(), fs.UnplayedCount())

	forecast, err := NewAggregator(nil).Run(context.Background(), fs, 200, 12345)
	require.NoError(t, err)
	require.Len(t, forecast.Teams, 4)
	assert.Equal(t, 200, forecast.Runs)

	a := forecast.Team("A")
	b := forecast.Team("B")
	require.NotNil(t, a)
	require.NotNil(t, b)

	assert.Greater(t, a.MeanPoints, b.MeanPoints,
		"the dominant team must project more points than the hopeless one")
	assert.Greater(t, a.MeanRating, b.MeanRating)
	assert.Equal(t, "A", forecast.Teams[0].Team)
}

func TestAggregatorConfidenceIntervalOrdering(t *testing.T) {
	fs := ParseFixtures(strongWeakRows(), "2025")

	forecast, err := NewAggregator(nil).Run(context.Background(), fs, 150, 9)
	require.NoError(t, err)

	for _, tf := range forecast.Teams {
		assert.LessOrEqual(t, tf.MinPoints, tf.CI95Low, "%s", tf.Team)
		assert.LessOrEqual(t, tf.CI95Low, tf.CI90Low, "%s", tf.Team)
		assert.LessOrEqual(t, tf.CI90Low, tf.MeanPoints, "%s", tf.Team)
		assert.LessOrEqual(t, tf.MeanPoints, tf.CI90High, "%s", tf.Team)
		assert.LessOrEqual(t, tf.CI90High, tf.CI95High, "%s", tf.Team)
		assert.LessOrEqual(t, tf.CI95High, tf.MaxPoints, "%s", tf.Team)
	}
}

func TestAggregatorSeedReproducibility(t *testing.T) {
	fs := ParseFixtures(strongWeakRows(), "2025")
	ag := NewAggregator(nil)

	f1, err := ag.Run(context.Background(), fs, 50, 4242)
	require.NoError(t, err)
	f2, err := ag.Run(context.Background(), fs, 50, 4242)
	require.NoError(t, err)

	for _, tf1 := range f1.Teams {
		tf2 := f2.Team(tf1.Team)
		require.NotNil(t, tf2)
		// Per-run rngs are derived from the base seed, so the sample sets
		// are identical; only the float summation order can differ
		assert.InDelta(t, tf1.MeanPoints, tf2.MeanPoints, 1e-6)
		assert.InDelta(t, tf1.MinPoints, tf2.MinPoints, 1e-9)
		assert.InDelta(t, tf1.MaxPoints, tf2.MaxPoints, 1e-9)
	}
}

func TestAggregatorExtremesCarryProvenance(t *testing.T) {
	fs := ParseFixtures(strongWeakRows(), "2025")

	forecast, err := NewAggregator(nil).Run(context.Background(), fs, 60, 31)
	require.NoError(t, err)

	a := forecast.Team("A")
	require.NotNil(t, a)
	require.NotNil(t, a.BiggestWin, "A won real matches, so a biggest win must exist")
	assert.Positive(t, a.BiggestWin.GoalDiff)
	assert.NotEmpty(t, a.BiggestWin.Opponent)
	assert.NotEmpty(t, a.BiggestWin.Score)
	assert.False(t, a.BiggestWin.Date.IsZero())
	assert.GreaterOrEqual(t, a.BiggestWin.Run, 0)
	assert.Less(t, a.BiggestWin.Run, 60)
}

func TestAggregatorCancelledContext(t *testing.T) {
	fs := ParseFixtures(strongWeakRows(), "2025")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewAggregator(nil).Run(ctx, fs, 100, 1)
	assert.Error(t, err)
}

func TestAggregatorEmptyFixtures(t *testing.T) {
	_, err := NewAggregator(nil).Run(context.Background(), &FixtureSet{}, 10, 1)
	assert.Error(t, err)
}

func TestPercentileInterpolation(t *testing.T) {
	sorted := []float64{10, 20, 30, 40, 50}

	assert.InDelta(t, 10, percentile(sorted, 0), 1e-9)
	assert.InDelta(t, 50, percentile(sorted, 100), 1e-9)
	assert.InDelta(t, 30, percentile(sorted, 50), 1e-9)
	assert.InDelta(t, 12, percentile(sorted, 5), 1e-9)
	assert.InDelta(t, 48, percentile(sorted, 95), 1e-9)
}

func TestSampleStatistics(t *testing.T) {
	xs := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	assert.InDelta(t, 5.0, mean(xs), 1e-9)
	assert.InDelta(t, 2.0, stddev(xs), 1e-9)
	assert.Zero(t, stddev([]float64{3}))
	assert.Zero(t, mean(nil))
}
