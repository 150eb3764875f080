package sim

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/richard-senior/seasonsim/internal/logger"
	"github.com/richard-senior/seasonsim/pkg/transport"
)

// Datasource fetches published schedule pages and converts them into the
// semicolon row schema the parser understands. Fetched pages are cached
// on disk so repeated simulations of the same season never re-download.
type Datasource struct {
	CachePath string
}

var (
	datasourceInstance *Datasource
	datasourceOnce     sync.Once
)

// GetDatasourceInstance returns the singleton instance of Datasource
func GetDatasourceInstance() *Datasource {
	datasourceOnce.Do(func() {
		datasourceInstance = &Datasource{CachePath: Config.CachePath}
	})
	return datasourceInstance
}

// FetchFixtures downloads a schedule page, extracts its fixture rows and
// parses them for the given season
func (ds *Datasource) FetchFixtures(scheduleURL, season string) (*FixtureSet, error) {
	html, err := ds.getCached(scheduleURL, season)
	if err != nil {
		return nil, err
	}

	rows, err := ExtractScheduleRows(html)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no fixture rows found at %s", scheduleURL)
	}

	fs := ParseFixtures(rows, season)
	if len(fs.Fixtures) == 0 {
		return nil, fmt.Errorf("no usable fixtures for season %s at %s", season, scheduleURL)
	}
	logger.Info("Fetched", len(fs.Fixtures), "fixtures from", scheduleURL)
	return fs, nil
}

// getCached returns the page body from the cache directory, fetching and
// caching it on a miss
func (ds *Datasource) getCached(scheduleURL, season string) ([]byte, error) {
	if err := os.MkdirAll(ds.CachePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	cacheFile := filepath.Join(ds.CachePath, ds.cacheKey(scheduleURL, season))
	if data, err := os.ReadFile(cacheFile); err == nil {
		logger.Debug("Schedule loaded from cache:", cacheFile)
		return data, nil
	}

	logger.Info("Schedule not in cache, fetching:", scheduleURL)
	data, err := transport.GetHtml(scheduleURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schedule: %w", err)
	}

	if err := os.WriteFile(cacheFile, data, 0644); err != nil {
		logger.Warn("Failed to write cache file", cacheFile, err)
	}
	return data, nil
}

// cacheKey derives a filesystem-safe cache filename from the URL and season
func (ds *Datasource) cacheKey(scheduleURL, season string) string {
	host := "schedule"
	if u, err := url.Parse(scheduleURL); err == nil && u.Host != "" {
		host = u.Host
	}
	host = strings.ReplaceAll(host, ".", "-")
	if season == "" {
		season = "all"
	}
	return fmt.Sprintf("schedule-%s-%s.html", host, season)
}

// ExtractScheduleRows pulls fixture rows out of an HTML schedule page.
// Any table row whose cells line up with the six column schema is taken;
// shorter rows (headers, separators, round labels) are ignored.
func ExtractScheduleRows(html []byte) ([][]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(html)))
	if err != nil {
		return nil, fmt.Errorf("error parsing HTML: %w", err)
	}

	var rows [][]string
	doc.Find("table tr").Each(func(i int, tr *goquery.Selection) {
		var cells []string
		tr.Find("td, th").Each(func(j int, cell *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(cell.Text()))
		})
		if len(cells) >= 6 {
			rows = append(rows, cells)
		}
	})

	logger.Debug("Extracted candidate rows from HTML:", len(rows))
	return rows, nil
}
