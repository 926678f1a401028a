package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/balkashynov/shed/internal/models"
)

// Match ranks, best first
const (
	matchExact = iota
	matchPrefix
	matchSuffix
	matchContains
)

func newSearchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search sessions by instrument, description or goals",
		Long: `Search sessions with ranked matching:
- Exact match (highest priority)
- Prefix match
- Suffix match
- Contains match (lowest priority)

Search is case insensitive. The ls filters apply too.`,
		Args: cobra.MinimumNArgs(1),
		RunE: a.withDB(func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")

			q, err := a.sessionQuery(cmd)
			if err != nil {
				return err
			}
			q.Search = query

			sessions, err := a.store.ListSessions(cmd.Context(), a.caller(), q)
			if err != nil {
				return err
			}
			rankSessions(sessions, query)

			out := cmd.OutOrStdout()
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return renderSessionsJSON(out, sessions, a.store.Now())
			}

			fmt.Fprintf(out, "Search results for '%s' (%d found):\n", query, len(sessions))
			if len(sessions) == 0 {
				fmt.Fprintln(out, "No sessions found matching your search.")
				return nil
			}
			all, _ := cmd.Flags().GetBool("all")
			renderSessionTable(out, sessions, a.store.Now(), all)
			return nil
		}),
	}

	addQueryFlags(cmd)
	return cmd
}

// rankSessions orders sessions by how well they match query, keeping the
// newest-first order within a rank
func rankSessions(sessions []models.Session, query string) {
	query = strings.ToLower(query)
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessionRank(&sessions[i], query) < sessionRank(&sessions[j], query)
	})
}

func sessionRank(s *models.Session, query string) int {
	best := matchContains
	for _, field := range []string{s.Instrument, s.Description, s.Goals} {
		field = strings.ToLower(field)
		switch {
		case field == query:
			return matchExact
		case strings.HasPrefix(field, query):
			best = min(best, matchPrefix)
		case strings.HasSuffix(field, query):
			best = min(best, matchSuffix)
		}
	}
	return best
}
