package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/balkashynov/shed/internal/apperr"
	"github.com/balkashynov/shed/internal/db"
	"github.com/balkashynov/shed/internal/models"
	"github.com/balkashynov/shed/internal/timer"
	"github.com/balkashynov/shed/internal/tui"
)

func newListCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List practice sessions",
		Long:    "List practice sessions, newest first, with optional filters for instrument, tag and date range",
		Args:    cobra.NoArgs,
		RunE: a.withDB(func(cmd *cobra.Command, args []string) error {
			q, err := a.sessionQuery(cmd)
			if err != nil {
				return err
			}

			sessions, err := a.store.ListSessions(cmd.Context(), a.caller(), q)
			if err != nil {
				return err
			}

			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return renderSessionsJSON(cmd.OutOrStdout(), sessions, a.store.Now())
			}
			if len(sessions) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No sessions found. Use 'shed log' or 'shed start' to record your first one.")
				return nil
			}
			all, _ := cmd.Flags().GetBool("all")
			renderSessionTable(cmd.OutOrStdout(), sessions, a.store.Now(), all)
			return nil
		}),
	}

	addQueryFlags(cmd)
	return cmd
}

func addQueryFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("instrument", "i", "", "Filter by instrument")
	cmd.Flags().String("tag", "", "Filter by tag name")
	cmd.Flags().String("from", "", "Only sessions on or after this date")
	cmd.Flags().String("to", "", "Only sessions on or before this date")
	cmd.Flags().IntP("limit", "n", 20, "Limit number of results (0 for all)")
	cmd.Flags().Bool("all", false, "Admins: include every user's sessions")
	cmd.Flags().Bool("json", false, "Output as JSON")
}

// sessionQuery builds a store query from the shared list flags
func (a *app) sessionQuery(cmd *cobra.Command) (db.SessionQuery, error) {
	now := a.store.Now()
	instrument, _ := cmd.Flags().GetString("instrument")
	limit, _ := cmd.Flags().GetInt("limit")
	q := db.SessionQuery{Instrument: instrument, Limit: limit}

	if all, _ := cmd.Flags().GetBool("all"); !all {
		q.User = a.caller().UserID
	}

	for flag, dst := range map[string]*string{"from": &q.From, "to": &q.To} {
		v, _ := cmd.Flags().GetString(flag)
		if v == "" {
			continue
		}
		d, err := parseDateFlag(flag, v, now)
		if err != nil {
			return db.SessionQuery{}, err
		}
		*dst = models.FormatDate(d)
	}

	if name, _ := cmd.Flags().GetString("tag"); name != "" {
		tag, err := a.findTag(cmd.Context(), name)
		if err != nil {
			return db.SessionQuery{}, err
		}
		q.TagID = tag.ID
	}
	return q, nil
}

// renderSessionTable prints sessions as a bordered table
func renderSessionTable(w io.Writer, sessions []models.Session, now time.Time, withUser bool) {
	headers := []string{"#", "DATE", "INSTRUMENT", "DURATION", "DESCRIPTION", "TAGS"}
	if withUser {
		headers = append(headers, "USER")
	}

	rows := make([][]string, 0, len(sessions))
	for i := range sessions {
		s := &sessions[i]
		duration := tui.FormatDuration(s.Duration)
		switch timer.StateOf(s) {
		case timer.Running:
			duration = "▶ " + tui.ClockText(timer.Elapsed(s, now))
		case timer.Paused:
			duration = "⏸ " + tui.ClockText(timer.Elapsed(s, now))
		}

		row := []string{
			fmt.Sprintf("%d", s.DisplayID),
			s.SessionDate,
			s.Instrument,
			duration,
			truncate(s.Description, 38),
			truncate(tagNames(s.Tags), 24),
		}
		if withUser {
			row = append(row, s.UserID)
		}
		rows = append(rows, row)
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(tui.ColorAccentBright)).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(tui.ColorBorder))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...)

	fmt.Fprintln(w, t.Render())
}

type jsonSession struct {
	ID              uint      `json:"id"`
	User            string    `json:"user"`
	Date            string    `json:"date"`
	Instrument      string    `json:"instrument"`
	Description     string    `json:"description,omitempty"`
	DurationSeconds int64     `json:"duration_seconds"`
	InProgress      bool      `json:"in_progress"`
	IsPaused        bool      `json:"is_paused"`
	Goals           string    `json:"goals,omitempty"`
	SkillLevel      string    `json:"skill_level,omitempty"`
	Tags            []string  `json:"tags"`
	CreatedAt       time.Time `json:"created_at"`
}

// renderSessionsJSON outputs sessions as indented JSON
func renderSessionsJSON(w io.Writer, sessions []models.Session, now time.Time) error {
	out := make([]jsonSession, 0, len(sessions))
	for i := range sessions {
		s := &sessions[i]
		tags := make([]string, 0, len(s.Tags))
		for _, tag := range s.Tags {
			tags = append(tags, tag.Name)
		}
		out = append(out, jsonSession{
			ID:              s.DisplayID,
			User:            s.UserID,
			Date:            s.SessionDate,
			Instrument:      s.Instrument,
			Description:     s.Description,
			DurationSeconds: int64(timer.Elapsed(s, now) / time.Second),
			InProgress:      s.InProgress,
			IsPaused:        s.IsPaused,
			Goals:           s.Goals,
			SkillLevel:      s.SkillLevel,
			Tags:            tags,
			CreatedAt:       s.CreatedAt,
		})
	}

	return writeJSON(w, out)
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-3]) + "..."
}

// findTag looks up one of the caller's tags by name or numeric ID
func (a *app) findTag(ctx context.Context, ref string) (*models.Tag, error) {
	tags, err := a.store.ListTags(ctx, db.Caller{UserID: a.caller().UserID})
	if err != nil {
		return nil, err
	}
	name := trimTagRef(ref)
	for i := range tags {
		if tags[i].Name == name || fmt.Sprint(tags[i].ID) == name {
			return &tags[i], nil
		}
	}
	return nil, apperr.NotFound("tag '%s' not found", ref)
}
