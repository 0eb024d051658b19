package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/bookvault-cli/bookvault/internal/common"
	"github.com/bookvault-cli/bookvault/internal/config"
	"github.com/bookvault-cli/bookvault/internal/logging"
)

// Execute builds the command tree and runs it. The context should be
// cancelled on SIGINT/SIGTERM so an open catalog is still closed through the
// normal path.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

// NewRootCommand creates the bookvault root command. Running it without a
// subcommand starts the interactive session.
func NewRootCommand() *cobra.Command {
	cmd, _ := newRootCommand()
	return cmd
}

// newRootCommand also returns the App so tests can inspect the resolved
// configuration.
func newRootCommand() (*cobra.Command, *App) {
	a := NewApp()

	var defaults config.Config
	defaults.LoadDefaults()
	var (
		configPath string
		dbPath     string
		keyMode    string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "bookvault",
		Short: "Encrypted personal book catalog",
		Long: `bookvault keeps a personal book catalog in a single encrypted
database file. Records never touch the disk in plaintext; the file is
unreadable without the passphrase it was created with.

Run without a subcommand for an interactive session, or use the
subcommands for scripting. The passphrase is prompted for once per run,
or taken from the ` + passphraseEnv + ` environment variable.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}
			// Flags beat the config file, but only when actually set.
			flags := cmd.Root().PersistentFlags()
			if flags.Changed("db") {
				cfg.DBPath = dbPath
			}
			if flags.Changed("key-mode") {
				cfg.KeyMode = keyMode
			}
			if flags.Changed("verbose") {
				cfg.Verbose = verbose
			}

			a.config = cfg
			a.log = newSessionLogger(cfg.Verbose)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Session(cmd.Context())
		},
	}

	cmd.PersistentFlags().StringVarP(&dbPath, "db", "d", defaults.DBPath, "path to the catalog file")
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a JSON config file")
	cmd.PersistentFlags().StringVar(&keyMode, "key-mode", defaults.KeyMode, "key mode: passphrase or raw")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(
		newAddCommand(a),
		newListCommand(a),
		newEditCommand(a),
		newReadCommand(a),
		newDeleteCommand(a),
		newInfoCommand(a),
		newCheckCommand(a),
		newExportCommand(a),
		newVersionCommand(),
	)
	return cmd, a
}

// newSessionLogger builds the process logger: slog text on stderr, Debug
// level with --verbose, and a session id attached to every record.
func newSessionLogger(verbose bool) logging.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})

	var log logging.Logger = logging.NewSlogLogger(slog.New(handler))
	if id, err := common.MakeRandHexString(8); err == nil {
		log = log.With("session_id", id)
	}
	return log
}
