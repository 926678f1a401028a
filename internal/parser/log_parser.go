package parser

import (
	"regexp"
	"strings"
	"time"
)

var (
	instrumentRegex = regexp.MustCompile(`@([a-zA-Z0-9_-]+)`)
	tagRegex        = regexp.MustCompile(`#([a-zA-Z0-9_,-]+)`)
	dateRegex       = regexp.MustCompile(`date:(\d+\s+days?\s+ago|[^\s]+)`)
)

// ParsedSession represents a practice session parsed from a log line
type ParsedSession struct {
	Description string
	Instrument  string
	Tags        []string
	Duration    time.Duration
	HasDuration bool
	Date        time.Time
	Errors      []string
}

// ParseLogLine extracts metadata from a log line using natural syntax
// Syntax: "scales in C @guitar #technique,warmup 45m date:yesterday"
func ParseLogLine(input string, now time.Time) ParsedSession {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	result := ParsedSession{
		Tags:   []string{},
		Errors: []string{},
		Date:   today,
	}

	// Extract date (date:yesterday, date:15/12/2024, date:3d)
	if dateMatches := dateRegex.FindStringSubmatch(input); len(dateMatches) > 1 {
		date, err := ParseSessionDate(dateMatches[1], now)
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
		} else {
			result.Date = date
		}
		input = dateRegex.ReplaceAllString(input, "")
	}

	// Extract tags (#tag1,tag2 or #tag1 #tag2)
	for _, match := range tagRegex.FindAllStringSubmatch(input, -1) {
		for _, tag := range strings.Split(match[1], ",") {
			tag = strings.TrimSpace(tag)
			if tag != "" {
				result.Tags = append(result.Tags, tag)
			}
		}
	}
	input = tagRegex.ReplaceAllString(input, "")

	// Extract instrument (@guitar)
	if instrumentMatches := instrumentRegex.FindStringSubmatch(input); len(instrumentMatches) > 1 {
		result.Instrument = strings.ToLower(instrumentMatches[1])
		input = instrumentRegex.ReplaceAllString(input, "")
	}

	// Extract the first duration-looking word (45m, 1h30m, 1:15)
	var words []string
	for _, word := range strings.Fields(input) {
		if !result.HasDuration && IsDuration(word) {
			d, _ := ParseDuration(word)
			result.Duration = d
			result.HasDuration = true
			continue
		}
		words = append(words, word)
	}

	result.Description = strings.Join(words, " ")

	return result
}
