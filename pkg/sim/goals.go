package sim

// FormStats carries a team's rolling scoring form: average goals scored and
// conceded over its recent completed matches
type FormStats struct {
	AvgGoalsFor     float64
	AvgGoalsAgainst float64
	Matches         int
}

// formHistory accumulates per-team (scored, conceded) pairs as a trajectory
// progresses, so form reflects simulated results as well as historical ones
type formHistory map[string][][2]int

func (h formHistory) record(team string, scored, conceded int) {
	h[team] = append(h[team], [2]int{scored, conceded})
}

// stats returns the rolling form over the team's last `window` matches.
// Teams with no completed matches get the configured neutral default.
func (h formHistory) stats(team string, cfg *SimConfig) FormStats {
	cfg = configOrDefault(cfg)
	games := h[team]
	if len(games) == 0 {
		return FormStats{
			AvgGoalsFor:     cfg.DefaultAvgGoals,
			AvgGoalsAgainst: cfg.DefaultAvgGoals,
		}
	}
	if len(games) > cfg.FormWindow {
		games = games[len(games)-cfg.FormWindow:]
	}

	var gf, ga int
	for _, g := range games {
		gf += g[0]
		ga += g[1]
	}
	n := float64(len(games))
	return FormStats{
		AvgGoalsFor:     float64(gf) / n,
		AvgGoalsAgainst: float64(ga) / n,
		Matches:         len(games),
	}
}

// GoalModel converts ratings and rolling form into an expected goal count
// (the Poisson rate) for one side of a match
type GoalModel struct {
	cfg *SimConfig
}

// NewGoalModel creates a model over the given configuration (nil for global)
func NewGoalModel(cfg *SimConfig) *GoalModel {
	return &GoalModel{cfg: configOrDefault(cfg)}
}

// ExpectedGoals returns the base expected goal count for the attacking team
// against the defending team, clamped to [MuFloor, MuCap]. Additive bonuses
// (noise, head-to-head, momentum) are applied by the caller on top, under
// the looser floor.
func (gm *GoalModel) ExpectedGoals(attackRating, defendRating float64, attack, defend FormStats, homeAdvantage float64) float64 {
	atk := clamp(attack.AvgGoalsFor, gm.cfg.FormFloor, gm.cfg.FormCeil)
	defOpp := clamp(defend.AvgGoalsAgainst, gm.cfg.FormFloor, gm.cfg.FormCeil)

	eloEffect := gm.cfg.EloEffectScale * (attackRating - defendRating) / 100
	base := (atk*1.15)/(0.85*defOpp+0.7) + 0.15

	mu := base + eloEffect + homeAdvantage
	return clamp(mu, gm.cfg.MuFloor, gm.cfg.MuCap)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
