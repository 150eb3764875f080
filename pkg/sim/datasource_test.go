package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scheduleHTML = `
<html><body>
<h1>Fixtures</h1>
<table>
  <tr><th>Day</th><th>Date</th><th>Time</th><th>Home Team</th><th>Result</th><th>Away Team</th></tr>
  <tr><td>Sat</td><td>2025-08-02</td><td>15:00</td><td>Harriers</td><td>2:1</td><td>Rovers</td></tr>
  <tr><td colspan="6">Matchday 2</td></tr>
  <tr><td>Sat</td><td>2025-08-09</td><td>15:00</td><td>Rovers</td><td>-:-</td><td>Wanderers</td></tr>
</table>
</body></html>`

func TestExtractScheduleRows(t *testing.T) {
	rows, err := ExtractScheduleRows([]byte(scheduleHTML))
	require.NoError(t, err)

	// Header and two fixture rows survive; the separator row is too short
	require.Len(t, rows, 3)
	assert.Equal(t, "Harriers", rows[1][colHome])
	assert.Equal(t, "2:1", rows[1][colResult])
	assert.Equal(t, "Rovers", rows[2][colHome])
}

func TestExtractedRowsFeedTheParser(t *testing.T) {
	rows, err := ExtractScheduleRows([]byte(scheduleHTML))
	require.NoError(t, err)

	fs := ParseFixtures(rows, "2025")
	assert.Len(t, fs.Fixtures, 2)
	assert.Equal(t, 1, fs.PlayedCount())
	assert.Equal(t, 1, fs.UnplayedCount())
	assert.Equal(t, 1, fs.Dropped, "the header row is dropped")
}

func TestExtractScheduleRowsEmptyDocument(t *testing.T) {
	rows, err := ExtractScheduleRows([]byte("<html><body><p>nothing here</p></body></html>"))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestCacheKeyIsFilesystemSafe(t *testing.T) {
	ds := &Datasource{CachePath: t.TempDir()}

	key := ds.cacheKey("https://www.example.com/schedule?season=2025", "2025")
	assert.Equal(t, "schedule-www-example-com-2025.html", key)

	key = ds.cacheKey("not a url", "")
	assert.NotContains(t, key, "/")
	assert.Contains(t, key, "all")
}
