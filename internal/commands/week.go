package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/balkashynov/shed/internal/db"
	"github.com/balkashynov/shed/internal/models"
	"github.com/balkashynov/shed/internal/stats"
	"github.com/balkashynov/shed/internal/timer"
	"github.com/balkashynov/shed/internal/tui"
)

var weekdayNames = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

func newWeekCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "week",
		Short: "Show this week's practice per instrument and day",
		Long: `Show a weekly sheet of practice hours grouped by instrument and day.

Covers the calendar week (Monday to Sunday) containing today, or the week
containing --date.

Example output:
  Instrument   Mon  Tue  Wed  Thu  Fri  Sat  Sun  Total
  guitar       1.5  0.8    -    -    -    -    -    2.3
  piano          -  0.5  1.0    -    -    -    -    1.5
  Total        1.5  1.3  1.0    0    0    0    0    3.8`,
		Args: cobra.NoArgs,
		RunE: a.withDB(func(cmd *cobra.Command, args []string) error {
			day := a.store.Now()
			if v, _ := cmd.Flags().GetString("date"); v != "" {
				d, err := parseDateFlag("date", v, day)
				if err != nil {
					return err
				}
				day = d
			}
			weekStart, weekEnd := stats.WeekRange(day)

			sessions, err := a.store.ListSessions(cmd.Context(), a.caller(), db.SessionQuery{
				User: a.caller().UserID,
				From: models.FormatDate(weekStart),
				To:   models.FormatDate(weekEnd),
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(sessions) == 0 {
				fmt.Fprintln(out, "No practice logged this week.")
				return nil
			}

			sheet := buildWeekSheet(sessions, a.store.Location(), a.store.Now())
			renderWeekSheet(out, sheet, weekStart)
			return nil
		}),
	}

	cmd.Flags().String("date", "", "Any day inside the week to show")
	return cmd
}

// weekSheet holds hours per instrument, indexed Monday first
type weekSheet struct {
	instruments []string
	hours       map[string]*[7]float64
}

func buildWeekSheet(sessions []models.Session, loc *time.Location, now time.Time) weekSheet {
	sheet := weekSheet{hours: make(map[string]*[7]float64)}
	for i := range sessions {
		s := &sessions[i]
		date, err := s.Date(loc)
		if err != nil {
			continue
		}
		row, ok := sheet.hours[s.Instrument]
		if !ok {
			row = &[7]float64{}
			sheet.hours[s.Instrument] = row
			sheet.instruments = append(sheet.instruments, s.Instrument)
		}
		// Monday is index 0
		idx := (int(date.Weekday()) + 6) % 7
		row[idx] += timer.Elapsed(s, now).Hours()
	}
	sort.Strings(sheet.instruments)
	return sheet
}

func renderWeekSheet(w io.Writer, sheet weekSheet, weekStart time.Time) {
	headers := append([]string{"INSTRUMENT"}, weekdayNames[:]...)
	headers = append(headers, "TOTAL")

	var dayTotals [7]float64
	var grandTotal float64
	rows := make([][]string, 0, len(sheet.instruments)+1)
	for _, instrument := range sheet.instruments {
		hours := sheet.hours[instrument]
		row := []string{instrument}
		var total float64
		for i, h := range hours {
			row = append(row, formatHours(h, "-"))
			dayTotals[i] += h
			total += h
		}
		grandTotal += total
		rows = append(rows, append(row, formatHours(total, "0")))
	}

	totalRow := []string{"Total"}
	for _, h := range dayTotals {
		totalRow = append(totalRow, formatHours(h, "0"))
	}
	rows = append(rows, append(totalRow, formatHours(grandTotal, "0")))

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(tui.ColorAccentBright)).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	numberStyle := cellStyle.Align(lipgloss.Right)
	totalStyle := numberStyle.Bold(true)
	last := len(rows) - 1

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(tui.ColorBorder))).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row == last:
				return totalStyle
			case col == 0:
				return cellStyle
			default:
				return numberStyle
			}
		}).
		Headers(headers...).
		Rows(rows...)

	fmt.Fprintln(w, t.Render())
	fmt.Fprintf(w, "\nWeek of %s to %s\n",
		weekStart.Format("Jan 2"),
		weekStart.AddDate(0, 0, 6).Format("Jan 2, 2006"))
}

func formatHours(h float64, zero string) string {
	if h <= 0 {
		return zero
	}
	return fmt.Sprintf("%.1f", h)
}
