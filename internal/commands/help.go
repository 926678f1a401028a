package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/balkashynov/shed/internal/tui"
)

func newHelpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "help [command]",
		Short: "Show comprehensive help for shed",
		Long:  `Display detailed help for all shed commands and flags, or cobra's help for one command.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) > 0 {
				if target, _, err := cmd.Root().Find(args); err == nil && target != cmd.Root() {
					_ = target.Help()
					return
				}
			}
			showCustomHelp(cmd.OutOrStdout())
		},
	}
}

type helpSection struct {
	title    string
	commands []helpCommand
}

type helpCommand struct {
	name        string
	description string
	examples    []string
	flags       []helpFlag
}

type helpFlag struct {
	name        string
	description string
}

var helpSections = []helpSection{
	{
		title: "TIMER",
		commands: []helpCommand{
			{
				name:        "start <instrument> [description]",
				description: "Start a live practice timer",
				flags: []helpFlag{
					{"-t, --tags", "Comma-separated tags"},
					{"--goals", "What you want to get out of the session"},
					{"--skill", "beginner|intermediate|advanced"},
					{"--no-ui", "Skip the interactive timer"},
				},
				examples: []string{`shed start guitar "alternate picking" -t technique`},
			},
			{name: "pause", description: "Pause the running timer"},
			{name: "resume", description: "Resume the paused timer"},
			{name: "stop", description: "Stop the timer and save the session"},
			{name: "status", description: "Show the active timer"},
		},
	},
	{
		title: "SESSIONS",
		commands: []helpCommand{
			{
				name:        "log <description>",
				description: "Log a finished session with smart parsing",
				flags: []helpFlag{
					{"-i, --instrument", "Instrument"},
					{"-d, --duration", "45m, 1h30m, 45 or 1:30"},
					{"--date", "today, yesterday, 3 days ago, dd/mm/yyyy"},
					{"-t, --tags", "Comma-separated tags"},
					{"--goals", "Session goals"},
					{"--skill", "beginner|intermediate|advanced"},
				},
				examples: []string{`shed log "scales in C @piano #technique 45m date:yesterday"`},
			},
			{
				name:        "ls",
				description: "List sessions, newest first",
				flags: []helpFlag{
					{"-i, --instrument", "Filter by instrument"},
					{"--tag", "Filter by tag"},
					{"--from, --to", "Date range"},
					{"-n, --limit", "Limit results (0 for all)"},
					{"--all", "Admins: every user's sessions"},
					{"--json", "JSON output"},
				},
			},
			{name: "show <session>", description: "Show one session"},
			{name: "edit <session>", description: "Change fields of a session (same flags as log)"},
			{name: "rm <session>", description: "Delete a session"},
			{name: "search <query>", description: "Ranked search over instrument, description and goals"},
		},
	},
	{
		title: "TAGS",
		commands: []helpCommand{
			{name: "tag add <name>", description: "Create a tag", flags: []helpFlag{{"-c, --color", "#RRGGBB or #RGB"}}},
			{name: "tag ls", description: "List tags"},
			{name: "tag edit <tag>", description: "Rename or recolour a tag", flags: []helpFlag{{"--name", "New name"}, {"-c, --color", "New colour"}}},
			{name: "tag rm <tag>", description: "Delete a tag"},
		},
	},
	{
		title: "STATS",
		commands: []helpCommand{
			{name: "stats", description: "Totals, weekly hours, streak and favourite instrument"},
			{name: "calendar", description: "Practice heatmap", flags: []helpFlag{{"--days", "Look-back window (default 365)"}}},
			{name: "instruments", description: "Hours per instrument", flags: []helpFlag{{"--days", "Look-back window (default 30)"}}},
			{name: "week", description: "Hours per instrument and weekday for this week"},
		},
	},
	{
		title: "OTHER",
		commands: []helpCommand{
			{name: "serve", description: "Serve the HTTP API", flags: []helpFlag{{"--addr", "Listen address"}}},
			{name: "version", description: "Show version information"},
			{name: "help", description: "Show this help"},
		},
	},
}

func showCustomHelp(w io.Writer) {
	logoStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(tui.ColorAccentMain)).Bold(true)
	titleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(tui.ColorAccentBright)).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(tui.ColorSecondaryText))

	var b strings.Builder
	b.WriteString("\n" + logoStyle.Render(tui.Logo()) + "\n\n")
	b.WriteString("shed - practice tracker for musicians\n")

	for _, section := range helpSections {
		b.WriteString("\n" + titleStyle.Render(section.title+":") + "\n\n")
		for _, c := range section.commands {
			fmt.Fprintf(&b, "  %-34s %s\n", c.name, c.description)
			for _, f := range c.flags {
				fmt.Fprintf(&b, "    %-32s %s\n", f.name, dimStyle.Render(f.description))
			}
			for _, ex := range c.examples {
				fmt.Fprintf(&b, "\n    Example:\n      %s\n\n", ex)
			}
		}
	}

	b.WriteString("\nSessions are addressed by their number, e.g. 'shed show 3' or 'shed show #3'.\n")
	b.WriteString("Settings come from SHED_* environment variables (SHED_USER, SHED_DB_PATH, SHED_TIMEZONE, ...).\n\n")
	fmt.Fprint(w, b.String())
}
