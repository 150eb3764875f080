package sim

import (
	"math"
	"math/rand"
)

// PoissonSample draws a single value from a Poisson distribution.
// Knuth's algorithm for small lambda, normal approximation above the
// configured threshold. Deterministic for a seeded rng.
func PoissonSample(lambda float64, rng *rand.Rand) int {
	if lambda <= 0 {
		return 0
	}

	if lambda < Config.PoissonNormalThreshold {
		l := math.Exp(-lambda)
		k := 0
		p := 1.0
		for p > l {
			k++
			p *= rng.Float64()
		}
		return k - 1
	}

	n := int(math.Round(lambda + math.Sqrt(lambda)*rng.NormFloat64()))
	if n < 0 {
		return 0
	}
	return n
}

// DrawScore samples an independent Poisson scoreline for one match
func DrawScore(muHome, muAway float64, rng *rand.Rand) (homeGoals, awayGoals int) {
	return PoissonSample(muHome, rng), PoissonSample(muAway, rng)
}

// PointsFor awards league points for a scoreline: 3 for a win, 1 each for
// a draw, 0 for a loss. The two values always sum to 3 (decisive) or 2 (draw).
func PointsFor(homeGoals, awayGoals int) (homePoints, awayPoints float64) {
	switch {
	case homeGoals > awayGoals:
		return 3, 0
	case homeGoals < awayGoals:
		return 0, 3
	default:
		return 1, 1
	}
}

// ResultValue maps a scoreline to the rating-update actual term for the
// side that scored goalsFor
func ResultValue(goalsFor, goalsAgainst int) float64 {
	switch {
	case goalsFor > goalsAgainst:
		return ResultWin
	case goalsFor < goalsAgainst:
		return ResultLoss
	default:
		return ResultDraw
	}
}
