package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/balkashynov/shed/internal/models"
	"github.com/balkashynov/shed/internal/stats"
)

const heatCell = "■"

// heatLevel buckets a day's practice minutes into a heatColors index.
func heatLevel(minutes float64) int {
	switch {
	case minutes <= 0:
		return 0
	case minutes < 30:
		return 1
	case minutes < 60:
		return 2
	case minutes < 120:
		return 3
	default:
		return 4
	}
}

// RenderHeatmap draws the calendar as a week-per-column grid ending at
// today, Monday on top. days is the sparse output of the calendar query.
func RenderHeatmap(days []stats.CalendarDay, today time.Time, span int) string {
	minutes := make(map[string]float64, len(days))
	for _, d := range days {
		minutes[d.Date] = d.DurationMinutes
	}

	end := stats.Day(today)
	start := stats.WeekStart(end.AddDate(0, 0, -span))
	weeks := int(end.Sub(start).Hours()/24)/7 + 1

	var b strings.Builder

	// Month labels above the first week of each month
	header := make([]rune, weeks*2)
	for i := range header {
		header[i] = ' '
	}
	lastMonth := time.Month(0)
	for w := 0; w < weeks; w++ {
		monday := start.AddDate(0, 0, w*7)
		if monday.Month() != lastMonth {
			lastMonth = monday.Month()
			label := []rune(monday.Format("Jan"))
			if w*2+len(label) <= len(header) {
				copy(header[w*2:], label)
			}
		}
	}
	b.WriteString("    " + strings.TrimRight(string(header), " ") + "\n")

	labels := []string{"Mon", "", "Wed", "", "Fri", "", "Sun"}
	for row := 0; row < 7; row++ {
		b.WriteString(fmt.Sprintf("%-4s", labels[row]))
		for w := 0; w < weeks; w++ {
			day := start.AddDate(0, 0, w*7+row)
			if day.After(end) {
				break
			}
			shade := heatColors[heatLevel(minutes[models.FormatDate(day)])]
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(shade)).Render(heatCell))
			b.WriteString(" ")
		}
		b.WriteString("\n")
	}

	b.WriteString("\n    Less ")
	for _, shade := range heatColors {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(shade)).Render(heatCell))
		b.WriteString(" ")
	}
	b.WriteString("More\n")

	return b.String()
}

// RenderInstrumentBars draws one horizontal bar per instrument, scaled to
// the longest.
func RenderInstrumentBars(totals []stats.InstrumentTotal, width int) string {
	if len(totals) == 0 {
		return ""
	}

	nameWidth := 0
	longest := 0.0
	for _, t := range totals {
		nameWidth = max(nameWidth, lipgloss.Width(t.Instrument))
		longest = math.Max(longest, t.DurationHours)
	}
	barWidth := max(width-nameWidth-22, 10)

	barStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright))
	nameStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPrimaryText)).Bold(true)
	infoStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText))

	var b strings.Builder
	for _, t := range totals {
		n := 0
		if longest > 0 {
			n = int(math.Round(t.DurationHours / longest * float64(barWidth)))
		}
		if n == 0 && t.DurationHours > 0 {
			n = 1
		}

		name := t.Instrument + strings.Repeat(" ", nameWidth-lipgloss.Width(t.Instrument))
		b.WriteString(nameStyle.Render(name))
		b.WriteString("  ")
		b.WriteString(barStyle.Render(strings.Repeat("█", n)))
		b.WriteString(infoStyle.Render(fmt.Sprintf(" %.1fh · %d sessions", t.DurationHours, t.SessionCount)))
		b.WriteString("\n")
	}
	return b.String()
}
