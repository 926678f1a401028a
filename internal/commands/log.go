package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/balkashynov/shed/internal/apperr"
	"github.com/balkashynov/shed/internal/db"
	"github.com/balkashynov/shed/internal/models"
	"github.com/balkashynov/shed/internal/parser"
)

func newLogCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log <description>",
		Short: "Log a practice session after the fact",
		Long: `Log a finished practice session.

Smart parsing syntax:
  @instrument  - Instrument (required here or via --instrument)
  #tag1,tag2   - Tags (comma-separated or individual)
  45m, 1h30m   - Duration (Go duration, bare minutes or hh:mm)
  date:...     - Date (today, yesterday, 3 days ago, dd/mm/yyyy, yyyy-mm-dd)

Example:
  shed log "scales in C @guitar #technique,warmup 45m date:yesterday"

Flags take precedence over parsed values.`,
		Args: cobra.ArbitraryArgs,
		RunE: a.withDB(func(cmd *cobra.Command, args []string) error {
			now := a.store.Now()
			parsed := parser.ParseLogLine(strings.Join(args, " "), now)
			if len(parsed.Errors) > 0 {
				return apperr.Validation("%s", strings.Join(parsed.Errors, ", "))
			}

			// Override with explicit flags (flags take precedence)
			instrument := parsed.Instrument
			if v, _ := cmd.Flags().GetString("instrument"); v != "" {
				instrument = strings.ToLower(v)
			}
			duration, hasDuration := parsed.Duration, parsed.HasDuration
			if v, _ := cmd.Flags().GetString("duration"); v != "" {
				d, err := parser.ParseDuration(v)
				if err != nil {
					return apperr.Validation("%v", err)
				}
				duration, hasDuration = d, true
			}
			day := parsed.Date
			if v, _ := cmd.Flags().GetString("date"); v != "" {
				d, err := parser.ParseSessionDate(v, now)
				if err != nil {
					return apperr.Validation("%v", err)
				}
				day = d
			}
			tags := parsed.Tags
			if v, _ := cmd.Flags().GetStringSlice("tags"); len(v) > 0 {
				tags = append(tags, v...)
			}

			if instrument == "" {
				return apperr.Validation("instrument is required: add @instrument or --instrument")
			}
			if !hasDuration {
				return apperr.Validation("duration is required, e.g. 45m or 1h30m")
			}

			tagIDs, err := a.tagIDs(cmd.Context(), tags)
			if err != nil {
				return err
			}

			goals, _ := cmd.Flags().GetString("goals")
			skill, _ := cmd.Flags().GetString("skill")
			session, err := a.store.CreateSession(cmd.Context(), a.caller(), db.CreateSessionRequest{
				Instrument:  instrument,
				Description: parsed.Description,
				SessionDate: models.FormatDate(day),
				Duration:    duration,
				Goals:       goals,
				SkillLevel:  skill,
				TagIDs:      tagIDs,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✅ Logged session #%d\n", session.DisplayID)
			printSession(cmd.OutOrStdout(), session, now)
			return nil
		}),
	}

	cmd.Flags().StringP("instrument", "i", "", "Instrument")
	cmd.Flags().StringP("duration", "d", "", "Duration: 45m, 1h30m, 45 (minutes) or 1:30")
	cmd.Flags().String("date", "", "Date: today, yesterday, 3 days ago, dd/mm/yyyy or yyyy-mm-dd")
	cmd.Flags().StringSliceP("tags", "t", nil, "Comma-separated tags (created if missing)")
	cmd.Flags().String("goals", "", "Session goals")
	cmd.Flags().String("skill", "", "Skill level: beginner, intermediate or advanced")
	return cmd
}
