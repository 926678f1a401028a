package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/balkashynov/shed/internal/apperr"
	"github.com/balkashynov/shed/internal/db"
	"github.com/balkashynov/shed/internal/models"
	"github.com/balkashynov/shed/internal/timer"
	"github.com/balkashynov/shed/internal/tui"
)

func newStartCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start <instrument> [description]",
		Short: "Start a practice timer",
		Long: `Start a practice timer. Opens the interactive timer by default, use --no-ui for a plain start.

Examples:
  shed start guitar "scales in C"         # Start with the interactive timer
  shed start piano -t hanon,warmup --no-ui # Start in the background`,
		Args: cobra.MinimumNArgs(1),
		RunE: a.withDB(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			tags, _ := cmd.Flags().GetStringSlice("tags")
			goals, _ := cmd.Flags().GetString("goals")
			skill, _ := cmd.Flags().GetString("skill")

			tagIDs, err := a.tagIDs(ctx, tags)
			if err != nil {
				return err
			}

			session, err := a.store.StartTimer(ctx, a.caller(), db.StartTimerRequest{
				Instrument:  strings.ToLower(args[0]),
				Description: strings.Join(args[1:], " "),
				Goals:       goals,
				SkillLevel:  skill,
				TagIDs:      tagIDs,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if noUI, _ := cmd.Flags().GetBool("no-ui"); noUI {
				fmt.Fprintf(out, "⏱️  Started session #%d: %s\n", session.DisplayID, session.Instrument)
				fmt.Fprintf(out, "Started at: %s\n", session.StartedAt.In(a.cfg.Location()).Format("15:04:05"))
				return nil
			}
			return tui.RunTimerTUI(a.store, a.caller(), session, out)
		}),
	}

	cmd.Flags().Bool("no-ui", false, "Start timer without interactive UI")
	cmd.Flags().StringSliceP("tags", "t", nil, "Comma-separated tags (created if missing)")
	cmd.Flags().String("goals", "", "What you want to get out of this session")
	cmd.Flags().String("skill", "", "Skill level: beginner, intermediate or advanced")
	return cmd
}

// activeSession returns the caller's running or paused session
func (a *app) activeSession(cmd *cobra.Command) (*models.Session, error) {
	active, err := a.store.ActiveTimer(cmd.Context(), a.caller())
	if err != nil {
		return nil, err
	}
	if !active.Active {
		return nil, apperr.InvalidState("no practice timer is running. Use 'shed start <instrument>' to begin")
	}
	return active.Session, nil
}

func newPauseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "pause",
		Short: "Pause the running timer",
		Args:  cobra.NoArgs,
		RunE: a.withDB(func(cmd *cobra.Command, args []string) error {
			active, err := a.activeSession(cmd)
			if err != nil {
				return err
			}
			session, err := a.store.PauseTimer(cmd.Context(), a.caller(), active.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "⏸️  Paused session #%d: %s (%s practised)\n",
				session.DisplayID, session.Instrument, tui.FormatDuration(timer.Elapsed(session, a.store.Now())))
			return nil
		}),
	}
}

func newResumeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Resume the paused timer",
		Args:  cobra.NoArgs,
		RunE: a.withDB(func(cmd *cobra.Command, args []string) error {
			active, err := a.activeSession(cmd)
			if err != nil {
				return err
			}
			session, err := a.store.ResumeTimer(cmd.Context(), a.caller(), active.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "▶️  Resumed session #%d: %s\n", session.DisplayID, session.Instrument)
			return nil
		}),
	}
}

func newStopCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the timer and save the session",
		Args:  cobra.NoArgs,
		RunE: a.withDB(func(cmd *cobra.Command, args []string) error {
			active, err := a.activeSession(cmd)
			if err != nil {
				return err
			}
			session, err := a.store.StopTimer(cmd.Context(), a.caller(), active.ID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "⏹️  Stopped session #%d: %s\n", session.DisplayID, session.Instrument)
			fmt.Fprintf(out, "Practised: %s\n", tui.FormatDuration(session.Duration))
			if session.PausedDuration > 0 {
				fmt.Fprintf(out, "Paused: %s\n", tui.FormatDuration(session.PausedDuration))
			}
			return nil
		}),
	}
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current timer",
		Args:  cobra.NoArgs,
		RunE: a.withDB(func(cmd *cobra.Command, args []string) error {
			active, err := a.store.ActiveTimer(cmd.Context(), a.caller())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !active.Active {
				fmt.Fprintln(out, "No practice timer running")
				return nil
			}

			s := active.Session
			now := a.store.Now()
			state := "⏱️  Practising"
			if s.IsPaused {
				state = "⏸️  Paused"
			}
			fmt.Fprintf(out, "%s: session #%d: %s\n", state, s.DisplayID, s.Instrument)
			fmt.Fprintf(out, "Started at: %s\n", s.StartedAt.In(now.Location()).Format("15:04:05"))
			fmt.Fprintf(out, "Elapsed: %s (%s)\n", tui.ClockText(timer.Elapsed(s, now)), tui.FormatDuration(timer.Elapsed(s, now)))
			return nil
		}),
	}
}
