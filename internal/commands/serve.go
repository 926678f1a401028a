package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/balkashynov/shed/internal/api"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the practice API over HTTP",
		Long: `Serve the sessions, timer, tags and statistics API over HTTP.

Requests are attributed to the user named in the X-Auth-User,
X-Forwarded-User or Remote-User header, so run it behind an
authenticating proxy. Users listed in SHED_ADMINS see everyone's data.`,
		Args: cobra.NoArgs,
		RunE: a.withDB(func(cmd *cobra.Command, args []string) error {
			addr := a.cfg.Addr
			if v, _ := cmd.Flags().GetString("addr"); v != "" {
				addr = v
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			server := api.NewServer(a.store, a.cfg.Admins, a.log)
			return server.ListenAndServe(ctx, addr)
		}),
	}

	cmd.Flags().String("addr", "", "Listen address (default $SHED_ADDR or 127.0.0.1:8080)")
	return cmd
}
