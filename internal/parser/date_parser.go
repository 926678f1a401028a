package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

var (
	dayMonthYearRegex = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	daysAgoRegex      = regexp.MustCompile(`^(\d+)\s*(d|day|days)(\s+ago)?$`)
)

// ParseSessionDate parses the date a session took place on, relative to now.
// Supported formats:
// - "today", "yesterday"
// - X days ago (e.g., "3 days ago", "2d")
// - dd/mm/yyyy (e.g., "15/12/2024")
// - anything dateparse understands, e.g. "2024-12-15" or "Dec 15 2024"
// Future dates are rejected.
func ParseSessionDate(input string, now time.Time) (time.Time, error) {
	raw := strings.TrimSpace(input)
	input = strings.ToLower(raw)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var date time.Time
	var err error
	switch input {
	case "", "today":
		return today, nil
	case "yesterday":
		return today.AddDate(0, 0, -1), nil
	}

	if date, err = parseDaysAgo(input, today); err != nil {
		if date, err = parseDayMonthYear(input, now.Location()); err != nil {
			date, err = dateparse.ParseIn(raw, now.Location())
			if err != nil {
				return time.Time{}, fmt.Errorf("invalid date %q. Use: today, yesterday, X days ago, dd/mm/yyyy or yyyy-mm-dd", raw)
			}
			date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, now.Location())
		}
	}

	if date.After(today) {
		return time.Time{}, fmt.Errorf("date %s is in the future", date.Format("02/01/2006"))
	}
	return date, nil
}

// parseDaysAgo parses "3 days ago", "3 days", "3d"
func parseDaysAgo(input string, today time.Time) (time.Time, error) {
	matches := daysAgoRegex.FindStringSubmatch(input)
	if matches == nil {
		return time.Time{}, fmt.Errorf("invalid relative date")
	}

	amount, err := strconv.Atoi(matches[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid number")
	}
	if amount > 3650 {
		return time.Time{}, fmt.Errorf("days must be at most 3650")
	}
	return today.AddDate(0, 0, -amount), nil
}

// parseDayMonthYear parses dd/mm/yyyy format
func parseDayMonthYear(input string, loc *time.Location) (time.Time, error) {
	matches := dayMonthYearRegex.FindStringSubmatch(input)
	if len(matches) != 4 {
		return time.Time{}, fmt.Errorf("invalid date format")
	}

	day, _ := strconv.Atoi(matches[1])
	month, _ := strconv.Atoi(matches[2])
	year, _ := strconv.Atoi(matches[3])

	if day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("day must be between 1 and 31")
	}
	if month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("month must be between 1 and 12")
	}

	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)

	// Check if date is valid (handles leap years, etc.)
	if date.Day() != day || date.Month() != time.Month(month) || date.Year() != year {
		return time.Time{}, fmt.Errorf("invalid date")
	}

	return date, nil
}

// FormatSessionDate formats a session date for display
func FormatSessionDate(date string, now time.Time) string {
	d, err := time.ParseInLocation("2006-01-02", date, now.Location())
	if err != nil {
		return date
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	daysDiff := int(today.Sub(d).Hours() / 24)

	switch {
	case daysDiff == 0:
		return "today"
	case daysDiff == 1:
		return "yesterday"
	case daysDiff > 1 && daysDiff <= 7:
		return fmt.Sprintf("%s (%d days ago)", d.Format("Mon 02/01"), daysDiff)
	default:
		return d.Format("02/01/2006")
	}
}
