// Package tui renders shed's terminal screens: the live practice timer, the
// calendar heatmap and the per-instrument bar chart.
package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hako/durafmt"

	"github.com/balkashynov/shed/internal/db"
	"github.com/balkashynov/shed/internal/models"
)

var logoLines = []string{
	"███████╗██╗  ██╗███████╗██████╗ ",
	"██╔════╝██║  ██║██╔════╝██╔══██╗",
	"███████╗███████║█████╗  ██║  ██║",
	"╚════██║██╔══██║██╔══╝  ██║  ██║",
	"███████║██║  ██║███████╗██████╔╝",
	"╚══════╝╚═╝  ╚═╝╚══════╝╚═════╝ ",
}

// Logo returns the ASCII banner.
func Logo() string {
	return strings.Join(logoLines, "\n") + "\n"
}

// FormatDuration renders d for humans, e.g. "1 hour 5 minutes" or "42 seconds".
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d <= 0 {
		return "0 seconds"
	}
	return durafmt.Parse(d).LimitFirstN(2).String()
}

// RunTimerTUI runs the timer screen for a started session and reports the
// outcome to out
func RunTimerTUI(store TimerStore, caller db.Caller, session *models.Session, out io.Writer) error {
	p := tea.NewProgram(NewTimerModel(store, caller, session), tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	m, ok := finalModel.(TimerModel)
	if !ok {
		return fmt.Errorf("unexpected timer model %T", finalModel)
	}

	s := m.Session()
	if m.Stopped() {
		fmt.Fprintf(out, "⏹️  Stopped session #%d: %s\n", s.DisplayID, s.Instrument)
		fmt.Fprintf(out, "📊 Practised: %s\n", FormatDuration(s.Duration))
		return nil
	}

	state := "running"
	if s.IsPaused {
		state = "paused"
	}
	fmt.Fprintf(out, "\n💡 Timer is still %s for session #%d: %s\n", state, s.DisplayID, s.Instrument)
	fmt.Fprintf(out, "   Use 'shed status' to check it or 'shed stop' to stop it.\n")
	return m.Err()
}
