package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var clockRegex = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::(\d{2}))?$`)

// ParseDuration parses a practice duration.
// Supported formats:
// - Go durations (e.g., "1h30m", "45m", "90s")
// - bare minutes (e.g., "45")
// - clock notation hh:mm or hh:mm:ss (e.g., "1:30", "00:45:00")
func ParseDuration(input string) (time.Duration, error) {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return 0, fmt.Errorf("duration is required")
	}

	var d time.Duration
	if mins, err := strconv.Atoi(input); err == nil {
		d = time.Duration(mins) * time.Minute
	} else if matches := clockRegex.FindStringSubmatch(input); matches != nil {
		hours, _ := strconv.Atoi(matches[1])
		minutes, _ := strconv.Atoi(matches[2])
		seconds := 0
		if matches[3] != "" {
			seconds, _ = strconv.Atoi(matches[3])
		}
		if minutes > 59 || seconds > 59 {
			return 0, fmt.Errorf("invalid clock duration %q", input)
		}
		d = time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute + time.Duration(seconds)*time.Second
	} else {
		parsed, err := time.ParseDuration(input)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q. Use: 1h30m, 45m, 45 or 1:30", input)
		}
		d = parsed
	}

	if d < 0 {
		return 0, fmt.Errorf("duration cannot be negative")
	}
	if d > 24*time.Hour {
		return 0, fmt.Errorf("duration must be at most 24h")
	}
	return d, nil
}

// IsDuration reports whether token looks like a duration in a log line.
// Bare numbers are excluded there so they stay part of the description.
func IsDuration(token string) bool {
	if _, err := strconv.Atoi(token); err == nil {
		return false
	}
	_, err := ParseDuration(token)
	return err == nil
}
