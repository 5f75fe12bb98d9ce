package cli

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/statetrace/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	Database string

	// LogLevel is the level used when --verbose is not set.
	LogLevel slog.Level

	// Logger is set up before any subcommand runs.
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{config.FormatText, config.FormatJSON}

// NewRootCommand creates the root command for the statetrace CLI.
// cfg supplies the flag defaults.
func NewRootCommand(cfg config.Config) *cobra.Command {
	opts := &RootOptions{LogLevel: cfg.LogLevel}

	cmd := &cobra.Command{
		Use:   "statetrace",
		Short: "statetrace - workflow history inspector",
		Long: `Reconstruct state execution traces from workflow histories.

Histories are imported into a local SQLite store (or read straight from a
file) and replayed into an ordered trace of state wait/execute phases, each
linked to the decision that caused it.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.ValidateFormat(opts.Format); err != nil {
				return WrapExitError(ExitCommandError, "invalid flags", err)
			}
			opts.Logger = newLogger(cmd.ErrOrStderr(), opts)
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", cfg.Format, "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", cfg.DBPath, "path to SQLite history store")

	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewTraceCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))

	return cmd
}

// newLogger builds the diagnostic logger. Verbose forces debug level.
func newLogger(w io.Writer, opts *RootOptions) *slog.Logger {
	level := opts.LogLevel
	if opts.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// logger returns opts.Logger, or a discarding logger when a subcommand runs
// without its root.
func (opts *RootOptions) logger() *slog.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (opts *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}

func (opts *RootOptions) jsonOutput() bool {
	return opts.Format == config.FormatJSON
}

// requireDatabase rejects an empty --db.
func (opts *RootOptions) requireDatabase() error {
	if opts.Database == "" {
		return NewExitError(ExitCommandError, "no database: pass --db or set STATETRACE_DB")
	}
	return nil
}
