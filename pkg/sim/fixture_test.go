package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFixtureRowPlayed(t *testing.T) {
	row := []string{"Sat", "2025-08-02", "15:00", "Harriers", "2:1", "Rovers"}
	f, err := ParseFixtureRow(row)
	require.NoError(t, err)

	assert.Equal(t, "Harriers", f.HomeTeam)
	assert.Equal(t, "Rovers", f.AwayTeam)
	assert.Equal(t, 2, f.HomeGoals)
	assert.Equal(t, 1, f.AwayGoals)
	assert.Equal(t, "2025", f.Season)
	assert.True(t, f.Played())
	assert.Equal(t, "2:1", f.ScoreStr())
	assert.NotEmpty(t, f.ID)
}

func TestParseFixtureRowUnplayed(t *testing.T) {
	row := []string{"Sun", "2025-11-23", "", "Harriers", "-:-", "Wanderers"}
	f, err := ParseFixtureRow(row)
	require.NoError(t, err)

	assert.False(t, f.Played())
	assert.Equal(t, -1, f.HomeGoals)
	assert.Equal(t, -1, f.AwayGoals)
	assert.Equal(t, "-:-", f.ScoreStr())
}

func TestParseFixtureRowSlashDates(t *testing.T) {
	// Short dates, with and without a leading day name
	for _, date := range []string{"8/2/25", "Sat 8/2/25"} {
		f, err := ParseFixtureRow([]string{"", date, "", "A", "0:0", "B"})
		require.NoError(t, err, "date %q should parse", date)
		assert.Equal(t, "2025", f.Season)
		assert.Equal(t, 2, f.Date.Day())
		assert.Equal(t, 8, int(f.Date.Month()))
	}
}

func TestParseFixtureRowDayPrefixedISODate(t *testing.T) {
	f, err := ParseFixtureRow([]string{"", "Sat 2025-08-02", "", "A", "1:1", "B"})
	require.NoError(t, err)
	assert.Equal(t, "2025", f.Season)
}

func TestParseFixtureRowRejectsGarbage(t *testing.T) {
	bad := [][]string{
		{"Sat", "2025-08-02", "15:00"},                         // too few fields
		{"Day", "Date", "Time", "Home Team", "Result", "Away"}, // header
		{"Sat", "not-a-date", "", "A", "1:0", "B"},
		{"Sat", "2025-08-02", "", "", "1:0", "B"},    // missing home team
		{"Sat", "2025-08-02", "", "A", "1:0", ""},    // missing away team
		{"Sat", "2025-08-02", "", "A", "one:no", "B"},
		{"Sat", "2025-08-02", "", "A", "3-1", "B"},   // wrong separator
		{"Sat", "2025-08-02", "", "A", "-2:1", "B"},  // negative goals
	}
	for _, row := range bad {
		_, err := ParseFixtureRow(row)
		assert.Error(t, err, "row %v should be rejected", row)
	}
}

func TestParseFixturesDropsBadRowsAndCounts(t *testing.T) {
	rows := [][]string{
		{"Day", "Date", "Time", "Home Team", "Result", "Away Team"},
		{"Sat", "2025-08-02", "15:00", "A", "2:0", "B"},
		{"Sat", "bogus", "15:00", "C", "1:1", "D"},
		{"Sun", "2025-08-03", "15:00", "C", "-:-", "D"},
	}
	fs := ParseFixtures(rows, "2025")

	assert.Len(t, fs.Fixtures, 2)
	assert.Equal(t, 2, fs.Dropped, "the header and the bad date count as dropped")
	assert.Equal(t, []string{"A", "B", "C", "D"}, fs.Teams)
	assert.Equal(t, 1, fs.PlayedCount())
	assert.Equal(t, 1, fs.UnplayedCount())
}

func TestParseFixturesSeasonFilterIsNotADrop(t *testing.T) {
	rows := [][]string{
		{"Sat", "2024-08-03", "", "A", "1:0", "B"},
		{"Sat", "2025-08-02", "", "A", "2:0", "B"},
	}
	fs := ParseFixtures(rows, "2025")

	assert.Len(t, fs.Fixtures, 1)
	assert.Zero(t, fs.Dropped, "rows from other seasons are excluded, not dropped")
}

func TestParseFixturesSortsByDate(t *testing.T) {
	rows := [][]string{
		{"Sun", "2025-09-14", "", "A", "0:0", "C"},
		{"Sat", "2025-08-02", "", "A", "1:0", "B"},
		{"Sat", "2025-08-30", "", "B", "2:2", "C"},
	}
	fs := ParseFixtures(rows, "2025")

	require.Len(t, fs.Fixtures, 3)
	for i := 1; i < len(fs.Fixtures); i++ {
		assert.False(t, fs.Fixtures[i].Date.Before(fs.Fixtures[i-1].Date),
			"fixtures must be chronological")
	}
}

func TestInitialRatingsCoversAllTeams(t *testing.T) {
	rows := [][]string{
		{"Sat", "2025-08-02", "", "A", "1:0", "B"},
		{"Sat", "2025-08-09", "", "C", "-:-", "A"},
	}
	fs := ParseFixtures(rows, "2025")
	ratings := fs.InitialRatings(nil)

	require.Len(t, ratings, 3)
	for team, r := range ratings {
		assert.InDelta(t, Config.StartRating, r, 1e-9, "team %s", team)
	}
}

func TestFixtureIDIsStable(t *testing.T) {
	row := []string{"Sat", "2025-08-02", "15:00", "Forest Green", "2:1", "York City"}
	f1, err := ParseFixtureRow(row)
	require.NoError(t, err)
	f2, err := ParseFixtureRow(row)
	require.NoError(t, err)

	assert.Equal(t, f1.ID, f2.ID)
	assert.Equal(t, "2025-20250802-forest_green-york_city", f1.ID)
}
