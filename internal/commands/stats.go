package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/balkashynov/shed/internal/apperr"
	"github.com/balkashynov/shed/internal/stats"
	"github.com/balkashynov/shed/internal/tui"
)

func newStatsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show your practice summary",
		Long:  "Show total hours, session count, this week's hours, your current streak and favourite instrument",
		Args:  cobra.NoArgs,
		RunE: a.withDB(func(cmd *cobra.Command, args []string) error {
			summary, err := a.store.Summary(cmd.Context(), a.caller())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return writeJSON(out, summary)
			}
			renderSummary(out, summary)
			return nil
		}),
	}

	cmd.Flags().Bool("json", false, "Output as JSON")
	return cmd
}

func renderSummary(w io.Writer, s stats.Summary) {
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(tui.ColorSecondaryText)).Width(20)
	valueStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(tui.ColorPrimaryText))
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(tui.ColorAccentBright))

	streak := fmt.Sprintf("%d days", s.CurrentStreak)
	if s.CurrentStreak == 1 {
		streak = "1 day"
	}
	if s.CurrentStreak > 0 {
		streak += " 🔥"
	}

	rows := [][2]string{
		{"Total practice", fmt.Sprintf("%.1f hours", s.TotalHours)},
		{"Sessions", fmt.Sprintf("%d", s.TotalSessions)},
		{"This week", fmt.Sprintf("%.1f hours", s.WeekHours)},
		{"Current streak", streak},
		{"Favourite", s.FavoriteInstrument},
	}

	fmt.Fprintln(w, titleStyle.Render("Practice summary"))
	for _, row := range rows {
		fmt.Fprintln(w, labelStyle.Render(row[0])+valueStyle.Render(row[1]))
	}
}

func newCalendarCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "calendar",
		Aliases: []string{"cal"},
		Short:   "Show a practice heatmap",
		Long:    "Show a GitHub-style heatmap of daily practice time over the last --days days",
		Args:    cobra.NoArgs,
		RunE: a.withDB(func(cmd *cobra.Command, args []string) error {
			days, _ := cmd.Flags().GetInt("days")
			if days < 0 {
				return apperr.Validation("--days must not be negative")
			}

			calendar, err := a.store.Calendar(cmd.Context(), a.caller(), days)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return writeJSON(out, calendar)
			}

			var minutes float64
			for _, d := range calendar {
				minutes += d.DurationMinutes
			}
			fmt.Fprintln(out, tui.RenderHeatmap(calendar, a.store.Now(), days))
			fmt.Fprintf(out, "%d practice days, %.1f hours in the last %d days\n", len(calendar), minutes/60, days)
			return nil
		}),
	}

	cmd.Flags().Int("days", stats.DefaultCalendarDays, "Number of days to look back")
	cmd.Flags().Bool("json", false, "Output as JSON")
	return cmd
}

func newInstrumentsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "instruments",
		Short: "Show practice time per instrument",
		Args:  cobra.NoArgs,
		RunE: a.withDB(func(cmd *cobra.Command, args []string) error {
			days, _ := cmd.Flags().GetInt("days")
			if days < 0 {
				return apperr.Validation("--days must not be negative")
			}

			totals, err := a.store.ByInstrument(cmd.Context(), a.caller(), days)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return writeJSON(out, totals)
			}
			if len(totals) == 0 {
				fmt.Fprintf(out, "No practice in the last %d days.\n", days)
				return nil
			}
			fmt.Fprintln(out, tui.RenderInstrumentBars(totals, 60))
			return nil
		}),
	}

	cmd.Flags().Int("days", stats.DefaultByInstrumentDays, "Number of days to look back")
	cmd.Flags().Bool("json", false, "Output as JSON")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
