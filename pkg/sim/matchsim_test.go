package sim

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoissonSampleDeterministicForSeed(t *testing.T) {
	a := rand.New(rand.NewSource(42))
	b := rand.New(rand.NewSource(42))

	for i := 0; i < 1000; i++ {
		assert.Equal(t, PoissonSample(1.7, a), PoissonSample(1.7, b))
	}
}

func TestPoissonSampleNonNegative(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, lambda := range []float64{0, 0.1, 1.5, 4.0, 50.0} {
		for i := 0; i < 500; i++ {
			assert.GreaterOrEqual(t, PoissonSample(lambda, rng), 0)
		}
	}
}

func TestPoissonSampleMeanTracksLambda(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	for _, lambda := range []float64{0.8, 1.5, 2.5, 45.0} {
		const n = 20000
		sum := 0
		for i := 0; i < n; i++ {
			sum += PoissonSample(lambda, rng)
		}
		m := float64(sum) / n
		assert.InDelta(t, lambda, m, lambda*0.1+0.1, "lambda %v", lambda)
	}
}

func TestPoissonSampleZeroLambda(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	assert.Equal(t, 0, PoissonSample(0, rng))
	assert.Equal(t, 0, PoissonSample(-1, rng))
}

func TestPointsForSumInvariant(t *testing.T) {
	for hg := 0; hg <= 5; hg++ {
		for ag := 0; ag <= 5; ag++ {
			hp, ap := PointsFor(hg, ag)
			if hg == ag {
				assert.InDelta(t, 2.0, hp+ap, 1e-9, "draws distribute 2 points")
			} else {
				assert.InDelta(t, 3.0, hp+ap, 1e-9, "decisive results distribute 3 points")
			}
		}
	}
}

func TestResultValue(t *testing.T) {
	assert.Equal(t, ResultWin, ResultValue(3, 1))
	assert.Equal(t, ResultDraw, ResultValue(2, 2))
	assert.Equal(t, ResultLoss, ResultValue(0, 4))
}

func TestDrawScoreHigherMuScoresMore(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	const n = 10000
	var homeTotal, awayTotal int
	for i := 0; i < n; i++ {
		hg, ag := DrawScore(2.5, 0.8, rng)
		homeTotal += hg
		awayTotal += ag
	}
	assert.Greater(t, homeTotal, awayTotal)
}
