package sim

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/richard-senior/seasonsim/internal/logger"
)

// Compile-time check to ensure Fixture implements Persistable interface
var _ Persistable = (*Fixture)(nil)

// Fixture represents a scheduled match, with or without a known result,
// annotated for database persistence
type Fixture struct {
	ID       string    `json:"id" column:"id" dbtype:"TEXT" primary:"true" index:"true"`
	Date     time.Time `json:"date" column:"date" dbtype:"DATETIME" index:"true"`
	Season   string    `json:"season" column:"season" dbtype:"TEXT" index:"true"`
	HomeTeam string    `json:"homeTeam" column:"home_team" dbtype:"TEXT NOT NULL" index:"true"`
	AwayTeam string    `json:"awayTeam" column:"away_team" dbtype:"TEXT NOT NULL" index:"true"`

	// Goals are -1 until the fixture has been played
	HomeGoals int `json:"homeGoals" column:"home_goals" dbtype:"INTEGER DEFAULT -1"`
	AwayGoals int `json:"awayGoals" column:"away_goals" dbtype:"INTEGER DEFAULT -1"`
}

// NewFixture creates a Fixture with sentinel goal values
func NewFixture() *Fixture {
	return &Fixture{HomeGoals: -1, AwayGoals: -1}
}

// Played reports whether the fixture has a known result
func (f *Fixture) Played() bool {
	return f.HomeGoals >= 0 && f.AwayGoals >= 0
}

// ScoreStr renders the result field the way the input schema does
func (f *Fixture) ScoreStr() string {
	if !f.Played() {
		return "-:-"
	}
	return fmt.Sprintf("%d:%d", f.HomeGoals, f.AwayGoals)
}

func (f *Fixture) GetTableName() string {
	return "fixtures"
}

func (f *Fixture) GetPrimaryKey() map[string]any {
	return map[string]any{"id": f.ID}
}

// BeforeSave validates the fixture and derives its primary key if missing
func (f *Fixture) BeforeSave() error {
	if f.HomeTeam == "" || f.AwayTeam == "" {
		return fmt.Errorf("fixture missing team names")
	}
	if f.ID == "" {
		f.deriveID()
	}
	return nil
}

// deriveID builds a stable primary key from the identifying fields
func (f *Fixture) deriveID() {
	f.ID = fmt.Sprintf("%s-%s-%s-%s",
		f.Season,
		f.Date.Format("20060102"),
		slug(f.HomeTeam),
		slug(f.AwayTeam))
}

func slug(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	return strings.ReplaceAll(s, " ", "_")
}

/////////////////////////////////////////////////////////////////////////
////// Row parsing
/////////////////////////////////////////////////////////////////////////

// Input schema, fields in order: Day;Date;Time;Home Team;Result;Away Team
// The result field is either "H:A" (two integers) or "-:-" for a fixture
// that has not been played yet
const (
	colDate   = 1
	colHome   = 3
	colResult = 4
	colAway   = 5
)

// ParseFixtureRow converts a single raw row into a Fixture.
// Malformed rows return an error; the caller decides whether to drop them.
func ParseFixtureRow(row []string) (*Fixture, error) {
	if len(row) < 6 {
		return nil, fmt.Errorf("expected at least 6 fields, got %d", len(row))
	}
	if strings.EqualFold(strings.TrimSpace(row[0]), "day") {
		return nil, fmt.Errorf("header row")
	}

	date, err := parseMatchDate(row[colDate])
	if err != nil {
		return nil, fmt.Errorf("bad date %q: %w", row[colDate], err)
	}

	home := strings.TrimSpace(row[colHome])
	away := strings.TrimSpace(row[colAway])
	if home == "" || away == "" {
		return nil, fmt.Errorf("missing team name")
	}

	f := NewFixture()
	f.Date = date
	f.Season = strconv.Itoa(date.Year())
	f.HomeTeam = home
	f.AwayTeam = away

	result := strings.TrimSpace(row[colResult])
	if result != "-:-" {
		hg, ag, err := parseScore(result)
		if err != nil {
			return nil, fmt.Errorf("bad result %q: %w", result, err)
		}
		f.HomeGoals = hg
		f.AwayGoals = ag
	}

	f.deriveID()
	return f, nil
}

// parseScore extracts the two goal counts from "H:A"
func parseScore(s string) (int, int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected H:A")
	}
	hg, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, err
	}
	ag, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, err
	}
	if hg < 0 || ag < 0 {
		return 0, 0, fmt.Errorf("negative goals")
	}
	return hg, ag, nil
}

// parseMatchDate accepts ISO YYYY-MM-DD and M/D/YY dates, either of which
// may carry a leading day-of-week label ("Sat 2025-08-02")
func parseMatchDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)

	// Strip a leading day name if present
	if fields := strings.Fields(s); len(fields) == 2 {
		s = fields[1]
	}

	for _, layout := range []string{"2006-01-02", "1/2/06"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format")
}

/////////////////////////////////////////////////////////////////////////
////// FixtureSet
/////////////////////////////////////////////////////////////////////////

// FixtureSet holds one season's fixtures in chronological order plus the
// teams they reference and a diagnostic count of dropped input rows
type FixtureSet struct {
	Season   string
	Fixtures []*Fixture
	Teams    []string
	Dropped  int
}

// ParseFixtures converts raw rows into a FixtureSet for the given season.
// Rows that fail to parse are dropped and counted, never fatal; rows for
// other seasons are excluded without counting. Fixtures are sorted by date.
func ParseFixtures(rows [][]string, season string) *FixtureSet {
	fs := &FixtureSet{Season: season}
	teamSet := make(map[string]bool)

	for _, row := range rows {
		f, err := ParseFixtureRow(row)
		if err != nil {
			logger.Debug("Dropping row:", err)
			fs.Dropped++
			continue
		}
		if season != "" && f.Season != season {
			continue
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

	if fs.Dropped > 0 {
		logger.Warn("Dropped unparseable rows:", fs.Dropped)
	}
	return fs
}

// SortByDate orders fixtures chronologically. The simulator depends on
// this ordering: momentum and head-to-head bonuses read "results so far".
// A no-op on already sorted sets, so concurrent readers of a sorted set
// are safe.
func (fs *FixtureSet) SortByDate() {
	if fs.sortedByDate() {
		return
	}
	sort.SliceStable(fs.Fixtures, func(i, j int) bool {
		return fs.Fixtures[i].Date.Before(fs.Fixtures[j].Date)
	})
}

func (fs *FixtureSet) sortedByDate() bool {
	for i := 1; i < len(fs.Fixtures); i++ {
		if fs.Fixtures[i].Date.Before(fs.Fixtures[i-1].Date) {
			return false
		}
	}
	return true
}

// PlayedCount returns how many fixtures already have results
func (fs *FixtureSet) PlayedCount() int {
	n := 0
	for _, f := range fs.Fixtures {
		if f.Played() {
			n++
		}
	}
	return n
}

// UnplayedCount returns how many fixtures still need simulating
func (fs *FixtureSet) UnplayedCount() int {
	return len(fs.Fixtures) - fs.PlayedCount()
}

// InitialRatings returns a fresh rating map with every referenced team at
// the configured start rating
func (fs *FixtureSet) InitialRatings(cfg *SimConfig) map[string]float64 {
	cfg = configOrDefault(cfg)
	ratings := make(map[string]float64, len(fs.Teams))
	for _, team := range fs.Teams {
		ratings[team] = cfg.StartRating
	}
	return ratings
}

// LoadFixtures reads a semicolon-delimited schedule file and parses the
// rows for the given season
func LoadFixtures(path, season string) (*FixtureSet, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open schedule file %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read schedule file %s: %w", path, err)
	}

	fs := ParseFixtures(rows, season)
	logger.Info("Loaded fixtures", len(fs.Fixtures), "for season", season, "teams", len(fs.Teams))
	return fs, nil
}
