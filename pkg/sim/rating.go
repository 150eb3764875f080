package sim

import "math"

// Result values used as the 'actual' term of a rating update.
// Expected-points mode substitutes a fractional probability instead.
const (
	ResultWin  = 1.0
	ResultDraw = 0.5
	ResultLoss = 0.0
)

// ExpectedScore returns the probability-like expectation of team A beating
// team B given their ratings. The exponent is clamped to avoid overflow on
// pathological rating gaps.
func ExpectedScore(ratingA, ratingB float64) float64 {
	diff := (ratingB - ratingA) / 400
	if diff > 100 {
		diff = 100
	} else if diff < -100 {
		diff = -100
	}
	return 1 / (1 + math.Pow(10, diff))
}

// UpdateRating moves a rating toward the observed result, weighted by surprise
func UpdateRating(rating, expected, actual, k float64) float64 {
	return rating + k*(actual-expected)
}

// RatingEngine owns the per-team rating state for one simulation run.
// Each Monte Carlo trial gets its own engine; state is never shared
// between independent runs.
type RatingEngine struct {
	k       float64
	ratings map[string]float64
}

// NewRatingEngine creates an engine over an initial rating map.
// The map is copied, the caller's map is never mutated.
func NewRatingEngine(initial map[string]float64, cfg *SimConfig) *RatingEngine {
	cfg = configOrDefault(cfg)
	ratings := make(map[string]float64, len(initial))
	for team, r := range initial {
		ratings[team] = r
	}
	return &RatingEngine{k: cfg.KFactor, ratings: ratings}
}

// Rating returns the current rating for a team, registering it at the
// start rating if it has never been seen
func (re *RatingEngine) Rating(team string) float64 {
	if r, ok := re.ratings[team]; ok {
		return r
	}
	re.ratings[team] = Config.StartRating
	return re.ratings[team]
}

// ApplyResult updates both teams' ratings for one match. actualHome is the
// home side's result value (1/0.5/0 or a fractional expectation); the away
// side receives the complement. Returns the two deltas, which are equal in
// magnitude and opposite in sign.
func (re *RatingEngine) ApplyResult(home, away string, actualHome float64) (deltaHome, deltaAway float64) {
	rh := re.Rating(home)
	ra := re.Rating(away)

	expectedHome := ExpectedScore(rh, ra)
	expectedAway := ExpectedScore(ra, rh)

	newHome := UpdateRating(rh, expectedHome, actualHome, re.k)
	newAway := UpdateRating(ra, expectedAway, 1-actualHome, re.k)

	re.ratings[home] = newHome
	re.ratings[away] = newAway
	return newHome - rh, newAway - ra
}

// Snapshot returns a copy of the current rating map
func (re *RatingEngine) Snapshot() map[string]float64 {
	out := make(map[string]float64, len(re.ratings))
	for team, r := range re.ratings {
		out[team] = r
	}
	return out
}
