package commands

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/balkashynov/shed/internal/apperr"
	"github.com/balkashynov/shed/internal/db"
)

func trimTagRef(ref string) string {
	return strings.TrimPrefix(strings.TrimSpace(ref), "#")
}

func newTagCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Manage tags",
		Long: `Manage the tags you attach to sessions. Tags can also be created on the fly
with #hashtags in 'shed log' or --tags on 'shed start'.`,
	}

	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a tag",
		Args:  cobra.ExactArgs(1),
		RunE: a.withDB(func(cmd *cobra.Command, args []string) error {
			color, _ := cmd.Flags().GetString("color")
			tag, err := a.store.CreateTag(cmd.Context(), a.caller(), db.CreateTagRequest{Name: args[0], Color: color})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "🏷️  Created tag #%s (%s)\n", tag.Name, tag.Color)
			return nil
		}),
	}
	add.Flags().StringP("color", "c", "", "Colour as #RRGGBB or #RGB")

	list := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List tags",
		Args:    cobra.NoArgs,
		RunE: a.withDB(func(cmd *cobra.Command, args []string) error {
			tags, err := a.store.ListTags(cmd.Context(), db.Caller{UserID: a.caller().UserID})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(tags) == 0 {
				fmt.Fprintln(out, "No tags yet. Use 'shed tag add <name>' to create one.")
				return nil
			}
			for _, tag := range tags {
				swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(tag.Color)).Render("●")
				fmt.Fprintf(out, "%s %-4d #%s %s\n", swatch, tag.ID, tag.Name, tag.Color)
			}
			return nil
		}),
	}

	edit := &cobra.Command{
		Use:   "edit <tag>",
		Short: "Rename or recolour a tag",
		Args:  cobra.ExactArgs(1),
		RunE: a.withDB(func(cmd *cobra.Command, args []string) error {
			tag, err := a.findTag(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			var req db.UpdateTagRequest
			if cmd.Flags().Changed("name") {
				v, _ := cmd.Flags().GetString("name")
				req.Name = &v
			}
			if cmd.Flags().Changed("color") {
				v, _ := cmd.Flags().GetString("color")
				req.Color = &v
			}
			if req.Name == nil && req.Color == nil {
				return apperr.Validation("nothing to change; pass --name or --color")
			}

			updated, err := a.store.UpdateTag(cmd.Context(), a.caller(), tag.ID, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✏️  Updated tag #%s (%s)\n", updated.Name, updated.Color)
			return nil
		}),
	}
	edit.Flags().String("name", "", "New name")
	edit.Flags().StringP("color", "c", "", "New colour as #RRGGBB or #RGB")

	remove := &cobra.Command{
		Use:     "rm <tag>",
		Aliases: []string{"delete"},
		Short:   "Delete a tag; sessions keep everything else",
		Args:    cobra.ExactArgs(1),
		RunE: a.withDB(func(cmd *cobra.Command, args []string) error {
			tag, err := a.findTag(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := a.store.DeleteTag(cmd.Context(), a.caller(), tag.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "🗑️  Deleted tag #%s\n", tag.Name)
			return nil
		}),
	}

	cmd.AddCommand(add, list, edit, remove)
	return cmd
}
