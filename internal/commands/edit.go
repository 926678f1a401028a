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

func newEditCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <session>",
		Short: "Edit a practice session",
		Long: `Edit an existing practice session. Only the flags you pass are changed.

Usage:
  shed edit 42 --duration 1h15m
  shed edit 42 --tags scales,arpeggios   - Replace the session's tags
  shed edit 42 --tags ""                 - Remove all tags`,
		Args: cobra.ExactArgs(1),
		RunE: a.withDB(func(cmd *cobra.Command, args []string) error {
			ref, err := parseSessionRef(args[0])
			if err != nil {
				return err
			}
			session, err := a.store.SessionByDisplayID(cmd.Context(), a.caller(), ref)
			if err != nil {
				return err
			}

			now := a.store.Now()
			var req db.UpdateSessionRequest
			flags := cmd.Flags()

			if flags.Changed("instrument") {
				v, _ := flags.GetString("instrument")
				v = strings.ToLower(v)
				req.Instrument = &v
			}
			if flags.Changed("description") {
				v, _ := flags.GetString("description")
				req.Description = &v
			}
			if flags.Changed("goals") {
				v, _ := flags.GetString("goals")
				req.Goals = &v
			}
			if flags.Changed("skill") {
				v, _ := flags.GetString("skill")
				req.SkillLevel = &v
			}
			if flags.Changed("date") {
				v, _ := flags.GetString("date")
				d, err := parser.ParseSessionDate(v, now)
				if err != nil {
					return apperr.Validation("%v", err)
				}
				date := models.FormatDate(d)
				req.SessionDate = &date
			}
			if flags.Changed("duration") {
				v, _ := flags.GetString("duration")
				d, err := parser.ParseDuration(v)
				if err != nil {
					return apperr.Validation("%v", err)
				}
				req.Duration = &d
			}
			if flags.Changed("tags") {
				names, _ := flags.GetStringSlice("tags")
				ids, err := a.tagIDs(cmd.Context(), names)
				if err != nil {
					return err
				}
				if ids == nil {
					ids = []uint{}
				}
				req.TagIDs = &ids
			}

			if req == (db.UpdateSessionRequest{}) {
				return apperr.Validation("nothing to change; pass at least one flag")
			}

			updated, err := a.store.UpdateSession(cmd.Context(), a.caller(), session.ID, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✏️  Updated session #%d\n", updated.DisplayID)
			printSession(cmd.OutOrStdout(), updated, now)
			return nil
		}),
	}

	cmd.Flags().StringP("instrument", "i", "", "Instrument")
	cmd.Flags().String("description", "", "Description")
	cmd.Flags().StringP("duration", "d", "", "Duration: 45m, 1h30m, 45 (minutes) or 1:30")
	cmd.Flags().String("date", "", "Date: today, yesterday, 3 days ago, dd/mm/yyyy or yyyy-mm-dd")
	cmd.Flags().StringSliceP("tags", "t", nil, "Replace tags (comma-separated, created if missing)")
	cmd.Flags().String("goals", "", "Session goals")
	cmd.Flags().String("skill", "", "Skill level: beginner, intermediate or advanced")
	return cmd
}
