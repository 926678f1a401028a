package commands

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/balkashynov/shed/internal/apperr"
	"github.com/balkashynov/shed/internal/models"
	"github.com/balkashynov/shed/internal/parser"
	"github.com/balkashynov/shed/internal/timer"
	"github.com/balkashynov/shed/internal/tui"
)

// parseSessionRef parses a session number as shown by the CLI ("#3" or "3")
func parseSessionRef(arg string) (uint, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(arg), "#")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, apperr.Validation("invalid session number '%s'", arg)
	}
	return uint(id), nil
}

func tagNames(tags []models.Tag) string {
	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		names = append(names, "#"+tag.Name)
	}
	return strings.Join(names, " ")
}

// tagIDs finds or creates the named tags and returns their IDs
func (a *app) tagIDs(ctx context.Context, names []string) ([]uint, error) {
	if len(names) == 0 {
		return nil, nil
	}
	tags, err := a.store.FindOrCreateTags(ctx, a.caller(), names)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(tags))
	for _, tag := range tags {
		ids = append(ids, tag.ID)
	}
	return ids, nil
}

// printSession writes the full details of a session
func printSession(w io.Writer, s *models.Session, now time.Time) {
	fmt.Fprintf(w, "Session #%d: %s\n", s.DisplayID, s.Instrument)
	if s.Description != "" {
		fmt.Fprintf(w, "  Description: %s\n", s.Description)
	}
	fmt.Fprintf(w, "  Date: %s\n", parser.FormatSessionDate(s.SessionDate, now))

	switch timer.StateOf(s) {
	case timer.Running:
		fmt.Fprintf(w, "  Timer: running, %s so far\n", tui.FormatDuration(timer.Elapsed(s, now)))
	case timer.Paused:
		fmt.Fprintf(w, "  Timer: paused, %s so far\n", tui.FormatDuration(timer.Elapsed(s, now)))
	default:
		fmt.Fprintf(w, "  Duration: %s\n", tui.FormatDuration(s.Duration))
	}

	if len(s.Tags) > 0 {
		fmt.Fprintf(w, "  Tags: %s\n", tagNames(s.Tags))
	}
	if s.Goals != "" {
		fmt.Fprintf(w, "  Goals: %s\n", s.Goals)
	}
	if s.SkillLevel != "" {
		fmt.Fprintf(w, "  Level: %s\n", s.SkillLevel)
	}
}

// parseDateFlag parses a date flag value the way session dates are parsed
func parseDateFlag(flag, value string, now time.Time) (time.Time, error) {
	d, err := parser.ParseSessionDate(value, now)
	if err != nil {
		return time.Time{}, apperr.Validation("--%s: %v", flag, err)
	}
	return d, nil
}
