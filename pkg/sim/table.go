package sim

import (
	"fmt"
	"sort"
	"strings"
)

// TableRow is one team's line in a league standings table built from a
// single trajectory
type TableRow struct {
	Position     int
	Team         string
	Played       int
	Won          int
	Drawn        int
	Lost         int
	GoalsFor     int
	GoalsAgainst int
	GoalDiff     int
	Points       float64
	Rating       float64
}

// StandingsTable is the league table for one completed trajectory
type StandingsTable struct {
	Season string
	Rows   []*TableRow
}

// BuildTable folds a trajectory's outcomes into a standings table,
// ordered by points, then goal difference, then final rating
func BuildTable(traj *SeasonTrajectory) *StandingsTable {
	rows := make(map[string]*TableRow)
	rowFor := func(team string) *TableRow {
		if r, ok := rows[team]; ok {
			return r
		}
		r := &TableRow{Team: team}
		rows[team] = r
		return r
	}

	for _, o := range traj.Outcomes {
		home := rowFor(o.HomeTeam)
		away := rowFor(o.AwayTeam)

		home.Played++
		away.Played++
		home.GoalsFor += o.HomeGoals
		home.GoalsAgainst += o.AwayGoals
		away.GoalsFor += o.AwayGoals
		away.GoalsAgainst += o.HomeGoals
		home.Points += o.HomePoints
		away.Points += o.AwayPoints

		switch {
		case o.HomeGoals > o.AwayGoals:
			home.Won++
			away.Lost++
		case o.HomeGoals < o.AwayGoals:
			away.Won++
			home.Lost++
		default:
			home.Drawn++
			away.Drawn++
		}
	}

	table := &StandingsTable{Season: traj.Season}
	for team, r := range rows {
		r.GoalDiff = r.GoalsFor - r.GoalsAgainst
		if traj.FinalRatings != nil {
			r.Rating = traj.FinalRatings[team]
		}
		table.Rows = append(table.Rows, r)
	}

	sort.SliceStable(table.Rows, func(i, j int) bool {
		a, b := table.Rows[i], table.Rows[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GoalDiff != b.GoalDiff {
			return a.GoalDiff > b.GoalDiff
		}
		if a.Rating != b.Rating {
			return a.Rating > b.Rating
		}
		return a.Team < b.Team
	})
	for i, r := range table.Rows {
		r.Position = i + 1
	}
	return table
}

// Row returns the named team's row, or nil if the team is not in the table
func (t *StandingsTable) Row(team string) *TableRow {
	for _, r := range t.Rows {
		if r.Team == team {
			return r
		}
	}
	return nil
}

// String renders the table in a fixed-width terminal layout
func (t *StandingsTable) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-3s %-22s %3s %3s %3s %3s %4s %4s %5s %7s %7s\n",
		"#", "Team", "P", "W", "D", "L", "GF", "GA", "GD", "Pts", "Elo")
	for _, r := range t.Rows {
		fmt.Fprintf(&b, "%-3d %-22s %3d %3d %3d %3d %4d %4d %+5d %7.1f %7.1f\n",
			r.Position, r.Team, r.Played, r.Won, r.Drawn, r.Lost,
			r.GoalsFor, r.GoalsAgainst, r.GoalDiff, r.Points, r.Rating)
	}
	return b.String()
}
