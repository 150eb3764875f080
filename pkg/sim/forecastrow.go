package sim

import (
	"fmt"
	"sort"
	"time"
)

// Compile-time check to ensure ForecastRow implements Persistable interface
var _ Persistable = (*ForecastRow)(nil)

// ForecastRow is one team's aggregated forecast flattened for storage.
// The primary key is (season, team) so re-running a forecast for a season
// replaces the previous one.
type ForecastRow struct {
	Season string `json:"season" column:"season" dbtype:"TEXT" primary:"true" index:"true"`
	Team   string `json:"team" column:"team" dbtype:"TEXT" primary:"true" index:"true"`

	Runs      int       `json:"runs" column:"runs" dbtype:"INTEGER"`
	Seed      int64     `json:"seed" column:"seed" dbtype:"INTEGER"`
	CreatedAt time.Time `json:"createdAt" column:"created_at" dbtype:"DATETIME"`

	MeanPoints float64 `json:"meanPoints" column:"mean_points" dbtype:"REAL"`
	StdPoints  float64 `json:"stdPoints" column:"std_points" dbtype:"REAL"`
	MinPoints  float64 `json:"minPoints" column:"min_points" dbtype:"REAL"`
	MaxPoints  float64 `json:"maxPoints" column:"max_points" dbtype:"REAL"`

	CI90Low  float64 `json:"ci90Low" column:"ci90_low" dbtype:"REAL"`
	CI90High float64 `json:"ci90High" column:"ci90_high" dbtype:"REAL"`
	CI95Low  float64 `json:"ci95Low" column:"ci95_low" dbtype:"REAL"`
	CI95High float64 `json:"ci95High" column:"ci95_high" dbtype:"REAL"`

	MeanRating   float64 `json:"meanRating" column:"mean_rating" dbtype:"REAL"`
	StdRating    float64 `json:"stdRating" column:"std_rating" dbtype:"REAL"`
	MeanGoalDiff float64 `json:"meanGoalDiff" column:"mean_goal_diff" dbtype:"REAL"`

	// Extremes flattened to display strings, e.g. "5:0 v Foo (run 12)"
	BiggestWin  string `json:"biggestWin" column:"biggest_win" dbtype:"TEXT"`
	BiggestLoss string `json:"biggestLoss" column:"biggest_loss" dbtype:"TEXT"`
}

func (r *ForecastRow) GetTableName() string {
	return "forecasts"
}

func (r *ForecastRow) GetPrimaryKey() map[string]any {
	return map[string]any{"season": r.Season, "team": r.Team}
}

func (r *ForecastRow) BeforeSave() error {
	if r.Season == "" || r.Team == "" {
		return fmt.Errorf("forecast row missing season or team")
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	return nil
}

// formatExtreme renders an extreme match for storage and display
func formatExtreme(e *ExtremeResult) string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s v %s on %s (run %d)",
		e.Score, e.Opponent, e.Date.Format("2006-01-02"), e.Run)
}

// SaveForecast flattens and persists every team's forecast in one transaction
func SaveForecast(f *Forecast) error {
	if f == nil || len(f.Teams) == 0 {
		return fmt.Errorf("nothing to save")
	}

	rows := make([]Persistable, 0, len(f.Teams))
	now := time.Now().UTC()
	for _, tf := range f.Teams {
		rows = append(rows, &ForecastRow{
			Season:       f.Season,
			Team:         tf.Team,
			Runs:         f.Runs,
			Seed:         f.Seed,
			CreatedAt:    now,
			MeanPoints:   tf.MeanPoints,
			StdPoints:    tf.StdPoints,
			MinPoints:    tf.MinPoints,
			MaxPoints:    tf.MaxPoints,
			CI90Low:      tf.CI90Low,
			CI90High:     tf.CI90High,
			CI95Low:      tf.CI95Low,
			CI95High:     tf.CI95High,
			MeanRating:   tf.MeanRating,
			StdRating:    tf.StdRating,
			MeanGoalDiff: tf.MeanGoalDiff,
			BiggestWin:   formatExtreme(tf.BiggestWin),
			BiggestLoss:  formatExtreme(tf.BiggestLoss),
		})
	}
	return BulkSave(rows)
}

// LoadForecastRows returns the stored forecast for a season, best first
func LoadForecastRows(season string) ([]*ForecastRow, error) {
	results, err := FindWhere(&ForecastRow{}, "season = ? ORDER BY mean_points DESC", season)
	if err != nil {
		return nil, err
	}

	rows := make([]*ForecastRow, 0, len(results))
	for _, r := range results {
		row, ok := r.(*ForecastRow)
		if !ok {
			return nil, fmt.Errorf("unexpected row type %T", r)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// SaveFixtures persists a fixture set in one transaction
func SaveFixtures(fs *FixtureSet) error {
	if fs == nil || len(fs.Fixtures) == 0 {
		return fmt.Errorf("nothing to save")
	}
	rows := make([]Persistable, 0, len(fs.Fixtures))
	for _, f := range fs.Fixtures {
		rows = append(rows, f)
	}
	return BulkSave(rows)
}

// LoadStoredFixtures rebuilds a FixtureSet from previously saved fixtures
func LoadStoredFixtures(season string) (*FixtureSet, error) {
	results, err := FindWhere(&Fixture{}, "season = ? ORDER BY date", season)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no stored fixtures for season %s", season)
	}

	fs := &FixtureSet{Season: season}
	teamSet := make(map[string]bool)
	for _, r := range results {
		f, ok := r.(*Fixture)
		if !ok {
			return nil, fmt.Errorf("unexpected row type %T", r)
		}
		fs.Fixtures = append(fs.Fixtures, f)
		teamSet[f.HomeTeam] = true
		teamSet[f.AwayTeam] = true
	}
	for team := range teamSet {
		fs.Teams = append(fs.Teams, team)
	}
	sort.Strings(fs.Teams)
	fs.SortByDate()
	return fs, nil
}
