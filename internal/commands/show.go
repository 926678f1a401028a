package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <session>",
		Short: "Show a practice session",
		Args:  cobra.ExactArgs(1),
		RunE: a.withDB(func(cmd *cobra.Command, args []string) error {
			ref, err := parseSessionRef(args[0])
			if err != nil {
				return err
			}
			session, err := a.store.SessionByDisplayID(cmd.Context(), a.caller(), ref)
			if err != nil {
				return err
			}
			printSession(cmd.OutOrStdout(), session, a.store.Now())
			return nil
		}),
	}
}

func newRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <session>",
		Aliases: []string{"delete"},
		Short:   "Delete a practice session",
		Long: `Delete a practice session. Its number is not reused.

Usage:
  shed rm 42    - Delete session #42`,
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
			if err := a.store.DeleteSession(cmd.Context(), a.caller(), session.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "🗑️  Deleted session #%d: %s\n", session.DisplayID, session.Instrument)
			return nil
		}),
	}
}
