// Package stats holds the date arithmetic and result shapes behind the
// practice statistics. Queries live in the db package; everything here is
// pure so it can be tested without a database.
package stats

import (
	"sort"
	"time"
)

// NoFavorite is reported as the favourite instrument of a user with no
// sessions.
const NoFavorite = "None"

// Default look-back windows, in days.
const (
	DefaultCalendarDays     = 365
	DefaultByInstrumentDays = 30
)

// Summary is the headline statistics block.
type Summary struct {
	TotalHours         float64 `json:"total_hours"`
	TotalSessions      int64   `json:"total_sessions"`
	WeekHours          float64 `json:"week_hours"`
	CurrentStreak      int     `json:"current_streak"`
	FavoriteInstrument string  `json:"favorite_instrument"`
}

// CalendarDay is one non-empty day of the practice heatmap.
type CalendarDay struct {
	Date            string  `json:"date"`
	DurationMinutes float64 `json:"duration_minutes"`
	SessionCount    int64   `json:"session_count"`
}

// InstrumentTotal is the practice time spent on one instrument.
type InstrumentTotal struct {
	Instrument    string  `json:"instrument"`
	DurationHours float64 `json:"duration_hours"`
	SessionCount  int64   `json:"session_count"`
}

// InstrumentCount is a session count per instrument.
type InstrumentCount struct {
	Instrument string
	Count      int64
}

// Day truncates t to midnight in its own location.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// WeekStart returns the start of the calendar week (Monday) for the given time
func WeekStart(t time.Time) time.Time {
	weekday := t.Weekday()
	daysFromMonday := int(weekday - time.Monday)
	if weekday == time.Sunday {
		daysFromMonday = 6
	}
	return Day(t.AddDate(0, 0, -daysFromMonday))
}

// WeekRange returns the Monday and Sunday of the week containing t.
func WeekRange(t time.Time) (start, end time.Time) {
	start = WeekStart(t)
	return start, start.AddDate(0, 0, 6)
}

// Window returns the inclusive date range [today - days, today].
func Window(today time.Time, days int) (start, end time.Time) {
	end = Day(today)
	return end.AddDate(0, 0, -days), end
}

// Streak counts consecutive practice days ending at the most recent practice
// date. The streak is broken (0) when that date is older than yesterday.
// dates may be unsorted and contain duplicates.
func Streak(dates []time.Time, today time.Time) int {
	if len(dates) == 0 {
		return 0
	}

	seen := make(map[string]bool, len(dates))
	var days []time.Time
	for _, d := range dates {
		day := Day(d)
		key := day.Format(time.DateOnly)
		if seen[key] {
			continue
		}
		seen[key] = true
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })

	yesterday := Day(today).AddDate(0, 0, -1)
	if days[0].Before(yesterday) {
		return 0
	}

	streak := 0
	expected := days[0]
	for _, day := range days {
		if !sameDay(day, expected) {
			break
		}
		streak++
		expected = expected.AddDate(0, 0, -1)
	}
	return streak
}

// Favorite picks the instrument with the most sessions, breaking ties
// alphabetically.
func Favorite(counts []InstrumentCount) string {
	best := InstrumentCount{Instrument: NoFavorite}
	for _, c := range counts {
		if c.Count <= 0 {
			continue
		}
		if best.Count == 0 || c.Count > best.Count || (c.Count == best.Count && c.Instrument < best.Instrument) {
			best = c
		}
	}
	return best.Instrument
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
