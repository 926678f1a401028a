package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/balkashynov/shed/internal/db"
	"github.com/balkashynov/shed/internal/models"
	"github.com/balkashynov/shed/internal/timer"
)

// TimerStore is the part of the store the timer screen drives.
type TimerStore interface {
	PauseTimer(ctx context.Context, c db.Caller, id uint) (*models.Session, error)
	ResumeTimer(ctx context.Context, c db.Caller, id uint) (*models.Session, error)
	StopTimer(ctx context.Context, c db.Caller, id uint) (*models.Session, error)
	Now() time.Time
}

type timerKeymap struct {
	toggle key.Binding
	stop   key.Binding
	exit   key.Binding
}

var defaultTimerKeys = timerKeymap{
	toggle: key.NewBinding(
		key.WithKeys("p", " "),
		key.WithHelp("p/space", "pause/resume"),
	),
	stop: key.NewBinding(
		key.WithKeys("s", "S"),
		key.WithHelp("s", "stop & save"),
	),
	exit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q/esc", "exit (keep running)"),
	),
}

// TimerModel represents the TUI model for a running practice timer
type TimerModel struct {
	width  int
	height int

	store   TimerStore
	caller  db.Caller
	session *models.Session
	help    help.Model
	keys    timerKeymap

	// Timer state
	elapsed time.Duration

	// Animation state
	frame int

	// UI state
	stopped bool // S pressed and the store confirmed the stop
	exiting bool // ESC/Q pressed, timer keeps running
	busy    bool // a store call is in flight
	err     error
}

// timerTickMsg is sent every second to update the clock
type timerTickMsg struct{}

// animationTickMsg is sent for faster animations
type animationTickMsg struct{}

// sessionMsg carries the session returned by a store transition.
type sessionMsg struct {
	session *models.Session
	stopped bool
}

type errMsg struct{ err error }

// NewTimerModel creates a new timer TUI model
func NewTimerModel(store TimerStore, caller db.Caller, session *models.Session) TimerModel {
	return TimerModel{
		store:   store,
		caller:  caller,
		session: session,
		help:    help.New(),
		keys:    defaultTimerKeys,
		elapsed: timer.Elapsed(session, store.Now()),
	}
}

// Session returns the latest known state of the session.
func (m TimerModel) Session() *models.Session { return m.session }

// Stopped reports whether the user stopped the timer.
func (m TimerModel) Stopped() bool { return m.stopped }

// Err returns the last store error, if any.
func (m TimerModel) Err() error { return m.err }

func tickTimer() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return timerTickMsg{} })
}

func tickAnimation() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(time.Time) tea.Msg { return animationTickMsg{} })
}

// Init initializes the timer model
func (m TimerModel) Init() tea.Cmd {
	return tea.Batch(tickTimer(), tickAnimation())
}

func (m TimerModel) transition(apply func(context.Context, db.Caller, uint) (*models.Session, error), stopping bool) tea.Cmd {
	id := m.session.ID
	return func() tea.Msg {
		session, err := apply(context.Background(), m.caller, id)
		if err != nil {
			return errMsg{err}
		}
		return sessionMsg{session: session, stopped: stopping}
	}
}

// Update handles messages
func (m TimerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case timerTickMsg:
		m.elapsed = timer.Elapsed(m.session, m.store.Now())
		if m.stopped || m.exiting {
			return m, nil
		}
		return m, tickTimer()

	case animationTickMsg:
		// A paused clock does not animate.
		if !m.session.IsPaused {
			m.frame = (m.frame + 1) % 4
		}
		if m.stopped || m.exiting {
			return m, nil
		}
		return m, tickAnimation()

	case sessionMsg:
		m.busy = false
		m.err = nil
		m.session = msg.session
		m.elapsed = timer.Elapsed(m.session, m.store.Now())
		if msg.stopped {
			m.stopped = true
			return m, tea.Quit
		}
		return m, nil

	case errMsg:
		m.busy = false
		m.err = msg.err
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.exit):
			m.exiting = true
			return m, tea.Quit
		case m.busy:
			return m, nil
		case key.Matches(msg, m.keys.stop):
			m.busy = true
			return m, m.transition(m.store.StopTimer, true)
		case key.Matches(msg, m.keys.toggle):
			m.busy = true
			if m.session.IsPaused {
				return m, m.transition(m.store.ResumeTimer, false)
			}
			return m, m.transition(m.store.PauseTimer, false)
		}
	}

	return m, nil
}

// View renders the timer TUI
func (m TimerModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	helpBar := m.renderHelpBar()

	// Available height for content (total minus help bar and gap)
	contentHeight := m.height - lipgloss.Height(helpBar) - 1

	// Narrow view: just the clock, full width
	if m.width < 90 {
		return lipgloss.JoinVertical(
			lipgloss.Left,
			m.renderTimerPanel(m.width, contentHeight),
			helpBar,
		)
	}

	leftWidth := m.width / 2
	rightWidth := m.width - leftWidth - 2

	content := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderTimerPanel(leftWidth, contentHeight),
		"  ",
		m.renderDetailsPanel(rightWidth, contentHeight),
	)

	return lipgloss.JoinVertical(lipgloss.Left, content, helpBar)
}

func centered(width int) lipgloss.Style {
	return lipgloss.NewStyle().Align(lipgloss.Center).Width(width)
}

// renderTimerPanel renders the left clock panel
func (m TimerModel) renderTimerPanel(width, height int) string {
	var components []string

	headerText := "PRACTISING"
	headerColor := ColorAccentBright
	if m.session.IsPaused {
		headerText = "PAUSED"
		headerColor = ColorWarning
	}
	notes := []string{"♩", "♪", "♫", "♬"}
	note := notes[m.frame]
	components = append(components, centered(width).
		Foreground(lipgloss.Color(headerColor)).
		Bold(true).
		Render(fmt.Sprintf("%s  %s  %s", note, headerText, note)))

	components = append(components, centered(width).
		Foreground(lipgloss.Color(ColorAccentMain)).
		Bold(true).
		Render(fmt.Sprintf("#%d", m.session.DisplayID)))

	components = append(components, centered(width).
		Foreground(lipgloss.Color(ColorPrimaryText)).
		Bold(true).
		Render(truncate(m.session.Instrument, width-4)))

	if m.session.Description != "" {
		components = append(components, centered(width).
			Foreground(lipgloss.Color(ColorSecondaryText)).
			Render(truncate(m.session.Description, width-4)))
	}

	clockColor := ColorAccentBright
	if m.session.IsPaused {
		clockColor = ColorDisabledText
	}
	var clock []string
	for _, line := range strings.Split(renderBigClock(m.elapsed, clockColor), "\n") {
		clock = append(clock, centered(width).Render(line))
	}
	components = append(components, strings.Join(clock, "\n"))

	info := "Not started"
	if m.session.StartedAt != nil {
		info = fmt.Sprintf("Started at %s", m.session.StartedAt.In(m.store.Now().Location()).Format("15:04:05"))
	}
	if m.session.PausedDuration > 0 {
		info += fmt.Sprintf(" · paused %s", FormatDuration(m.session.PausedDuration))
	}
	components = append(components, centered(width).
		Foreground(lipgloss.Color(ColorSecondaryText)).
		Italic(true).
		Render(info))

	if m.err != nil {
		components = append(components, centered(width).
			Foreground(lipgloss.Color(ColorError)).
			Render("Error: "+m.err.Error()))
	}

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(strings.Join(components, "\n\n"))
}

var bigDigits = map[rune][5]string{
	'0': {" ███ ", "█   █", "█   █", "█   █", " ███ "},
	'1': {"  █  ", " ██  ", "  █  ", "  █  ", "█████"},
	'2': {" ███ ", "█   █", "   █ ", "  █  ", "█████"},
	'3': {" ███ ", "█   █", "  ██ ", "█   █", " ███ "},
	'4': {"█   █", "█   █", "█████", "    █", "    █"},
	'5': {"█████", "█    ", "████ ", "    █", "████ "},
	'6': {" ███ ", "█    ", "████ ", "█   █", " ███ "},
	'7': {"█████", "    █", "   █ ", "  █  ", " █   "},
	'8': {" ███ ", "█   █", " ███ ", "█   █", " ███ "},
	'9': {" ███ ", "█   █", " ████", "    █", " ███ "},
	':': {"     ", "  █  ", "     ", "  █  ", "     "},
}

// ClockText formats d as mm:ss, or hh:mm:ss from one hour on.
func ClockText(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// renderBigClock renders d in five-row block digits
func renderBigClock(d time.Duration, color string) string {
	var lines [5]strings.Builder
	for _, char := range ClockText(d) {
		art, ok := bigDigits[char]
		if !ok {
			continue
		}
		for i := range art {
			lines[i].WriteString(art[i])
			lines[i].WriteString(" ")
		}
	}

	style := lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true)
	rows := make([]string, len(lines))
	for i := range lines {
		rows[i] = style.Render(lines[i].String())
	}
	return strings.Join(rows, "\n")
}

// renderDetailsPanel renders the right panel with the session details
func (m TimerModel) renderDetailsPanel(width, height int) string {
	s := m.session
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(centered(width - 8).
		Foreground(lipgloss.Color(ColorAccentMain)).
		Bold(true).
		Render(strings.Join(logoLines, "\n")))
	b.WriteString("\n\n")

	b.WriteString(centered(width - 8).
		Foreground(lipgloss.Color(ColorBorder)).
		Render(strings.Repeat("─", max(min(width-12, 40), 0))))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorPrimaryText)).
		Align(lipgloss.Center).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorAccentMain)).
		Width(width - 12).
		Padding(0, 1).
		Render(s.Instrument))
	b.WriteString("\n\n")

	var tags []string
	for _, tag := range s.Tags {
		tags = append(tags, "#"+tag.Name)
	}

	details := []struct {
		label string
		value string
		color string
	}{
		{"📅 Date", s.SessionDate, ColorSecondaryText},
		{"🏷️  Tags", strings.Join(tags, " "), ColorAccentBright},
		{"🎯 Goals", s.Goals, ColorPrimaryText},
		{"📈 Level", s.SkillLevel, ColorAccentBright},
	}
	for _, d := range details {
		value, color := d.value, d.color
		if value == "" {
			value, color = "none", ColorDisabledText
		}
		line := fmt.Sprintf("%s: %s", d.label, lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(value))
		b.WriteString(centered(width - 8).Render(line))
		b.WriteString("\n")
	}

	return lipgloss.NewStyle().Width(width).Height(height).Render(b.String())
}

// renderHelpBar renders the key help at the bottom
func (m TimerModel) renderHelpBar() string {
	return centered(m.width).Render(m.help.ShortHelpView([]key.Binding{
		m.keys.toggle,
		m.keys.stop,
		m.keys.exit,
	}))
}

func truncate(s string, width int) string {
	if width <= 3 || lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	if len(runes) > width-3 {
		runes = runes[:width-3]
	}
	return string(runes) + "..."
}
