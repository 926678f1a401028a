package commands

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/balkashynov/shed/internal/config"
	"github.com/balkashynov/shed/internal/db"
	"github.com/balkashynov/shed/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// app is the state shared by commands while one runs.
type app struct {
	cfg   *config.Config
	log   *slog.Logger
	store *db.Store
}

// caller is the CLI user, with admin rights when listed in SHED_ADMINS.
func (a *app) caller() db.Caller {
	return db.Caller{UserID: a.cfg.User, Admin: a.cfg.IsAdmin(a.cfg.User)}
}

// withDB wraps a command function to load settings and open the database
// first
func (a *app) withDB(fn func(*cobra.Command, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		log, logCloser, err := logging.New(cfg)
		if err != nil {
			return err
		}
		defer logCloser.Close()

		store, err := db.Open(cfg.DBPath,
			db.WithLocation(cfg.Location()),
			db.WithLogger(log),
			db.WithSQLLog(cfg.SQLLog),
		)
		if err != nil {
			return err
		}
		defer store.Close()

		a.cfg, a.log, a.store = cfg, log, store
		defer func() { a.store = nil }()

		log.Debug("command", "name", cmd.CommandPath(), "user", cfg.User, "db", cfg.DBPath)
		return fn(cmd, args)
	}
}

// SetVersion sets the version information
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// NewRootCmd builds the shed command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "shed",
		Short: "A practice tracker for musicians",
		Long: `shed tracks your instrument practice from the terminal.
Time sessions live, log them after the fact, tag them, and see your streaks,
weekly hours and practice calendar.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newStartCmd(a),
		newPauseCmd(a),
		newResumeCmd(a),
		newStopCmd(a),
		newStatusCmd(a),
		newLogCmd(a),
		newListCmd(a),
		newShowCmd(a),
		newEditCmd(a),
		newRemoveCmd(a),
		newSearchCmd(a),
		newTagCmd(a),
		newStatsCmd(a),
		newCalendarCmd(a),
		newInstrumentsCmd(a),
		newWeekCmd(a),
		newServeCmd(a),
		newVersionCmd(),
	)
	rootCmd.SetHelpCommand(newHelpCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

// Run executes the command tree with args, writing to out. It is Execute
// without the process globals.
func Run(args []string, out io.Writer) error {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(out)
	cmd.SetErr(out)
	return cmd.Execute()
}
