package db

import (
	"context"
	"fmt"
	"time"

	"github.com/balkashynov/shed/internal/apperr"
	"github.com/balkashynov/shed/internal/models"
	"github.com/balkashynov/shed/internal/stats"
)

type durationTotals struct {
	Total    int64
	Sessions int64
}

type dayTotals struct {
	SessionDate string
	Total       int64
	Sessions    int64
}

type instrumentTotals struct {
	Instrument string
	Total      int64
	Sessions   int64
}

// Summary computes the caller's headline statistics
func (s *Store) Summary(ctx context.Context, c Caller) (stats.Summary, error) {
	if err := c.validate(); err != nil {
		return stats.Summary{}, err
	}

	today := s.Now()
	var summary stats.Summary

	var all durationTotals
	err := own(s.db.WithContext(ctx).Model(&models.Session{}), c).
		Select("COALESCE(SUM(duration), 0) AS total, COUNT(*) AS sessions").
		Scan(&all).Error
	if err != nil {
		return stats.Summary{}, fmt.Errorf("total practice time: %w", err)
	}
	summary.TotalHours = time.Duration(all.Total).Hours()
	summary.TotalSessions = all.Sessions

	weekStart, weekEnd := stats.WeekRange(today)
	var week durationTotals
	err = own(s.db.WithContext(ctx).Model(&models.Session{}), c).
		Where("session_date BETWEEN ? AND ?", models.FormatDate(weekStart), models.FormatDate(weekEnd)).
		Select("COALESCE(SUM(duration), 0) AS total, COUNT(*) AS sessions").
		Scan(&week).Error
	if err != nil {
		return stats.Summary{}, fmt.Errorf("week practice time: %w", err)
	}
	summary.WeekHours = time.Duration(week.Total).Hours()

	streak, err := s.currentStreak(ctx, c, today)
	if err != nil {
		return stats.Summary{}, err
	}
	summary.CurrentStreak = streak

	var counts []stats.InstrumentCount
	err = own(s.db.WithContext(ctx).Model(&models.Session{}), c).
		Select("instrument, COUNT(*) AS count").
		Group("instrument").
		Scan(&counts).Error
	if err != nil {
		return stats.Summary{}, fmt.Errorf("favorite instrument: %w", err)
	}
	summary.FavoriteInstrument = stats.Favorite(counts)

	return summary, nil
}

// currentStreak walks the caller's distinct practice dates
func (s *Store) currentStreak(ctx context.Context, c Caller, today time.Time) (int, error) {
	var raw []string
	err := own(s.db.WithContext(ctx).Model(&models.Session{}), c).
		Distinct().
		Order("session_date DESC").
		Pluck("session_date", &raw).Error
	if err != nil {
		return 0, fmt.Errorf("practice dates: %w", err)
	}

	dates := make([]time.Time, 0, len(raw))
	for _, d := range raw {
		date, err := time.ParseInLocation(models.DateLayout, d, s.loc)
		if err != nil {
			return 0, fmt.Errorf("practice dates: bad stored date %q: %w", d, err)
		}
		dates = append(dates, date)
	}
	return stats.Streak(dates, today), nil
}

// Calendar returns per-day practice totals for the last days days, oldest
// first. Days without practice are omitted.
func (s *Store) Calendar(ctx context.Context, c Caller, days int) ([]stats.CalendarDay, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	if days < 0 {
		return nil, apperr.Validation("days must not be negative")
	}

	start, end := stats.Window(s.Now(), days)

	var rows []dayTotals
	err := own(s.db.WithContext(ctx).Model(&models.Session{}), c).
		Where("session_date BETWEEN ? AND ?", models.FormatDate(start), models.FormatDate(end)).
		Select("session_date, COALESCE(SUM(duration), 0) AS total, COUNT(*) AS sessions").
		Group("session_date").
		Order("session_date ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("practice calendar: %w", err)
	}

	calendar := make([]stats.CalendarDay, 0, len(rows))
	for _, row := range rows {
		calendar = append(calendar, stats.CalendarDay{
			Date:            row.SessionDate,
			DurationMinutes: time.Duration(row.Total).Minutes(),
			SessionCount:    row.Sessions,
		})
	}
	return calendar, nil
}

// ByInstrument returns practice totals per instrument for the last days
// days, longest first
func (s *Store) ByInstrument(ctx context.Context, c Caller, days int) ([]stats.InstrumentTotal, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	if days < 0 {
		return nil, apperr.Validation("days must not be negative")
	}

	start, end := stats.Window(s.Now(), days)

	var rows []instrumentTotals
	err := own(s.db.WithContext(ctx).Model(&models.Session{}), c).
		Where("session_date BETWEEN ? AND ?", models.FormatDate(start), models.FormatDate(end)).
		Select("instrument, COALESCE(SUM(duration), 0) AS total, COUNT(*) AS sessions").
		Group("instrument").
		Order("total DESC, instrument ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("practice by instrument: %w", err)
	}

	totals := make([]stats.InstrumentTotal, 0, len(rows))
	for _, row := range rows {
		totals = append(totals, stats.InstrumentTotal{
			Instrument:    row.Instrument,
			DurationHours: time.Duration(row.Total).Hours(),
			SessionCount:  row.Sessions,
		})
	}
	return totals, nil
}
