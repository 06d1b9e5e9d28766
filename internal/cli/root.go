package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roach88/gqlcheck/internal/config"
)

// RootOptions holds global flags and the resolved configuration shared by
// all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigFile string
	LogLevel   string

	// Config and Logger are set before any subcommand runs.
	Config *config.Config
	Logger *slog.Logger

	v *viper.Viper
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{config.FormatText, config.FormatJSON}

// NewRootCommand creates the root command for the gqlcheck CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{v: config.New()}

	cmd := &cobra.Command{
		Use:   "gqlcheck",
		Short: "Verify GQL engine query results",
		Long: `gqlcheck checks the JSON a GQL engine returns for a query against the
columns and values you expect, and runs suites of such checks with golden
snapshots and run history.

Configuration is read from flags, GQLCHECK_* environment variables and
gqlcheck.yaml in the working directory (or --config), in that order.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	pf := cmd.PersistentFlags()
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	pf.StringVar(&opts.Format, "format", config.FormatText, "output format (json|text)")
	pf.StringVar(&opts.ConfigFile, "config", "", "config file (default ./gqlcheck.yaml)")
	pf.StringVar(&opts.LogLevel, "log-level", "warn", "log level (debug|info|warn|error)")

	_ = opts.v.BindPFlag(config.KeyFormat, pf.Lookup("format"))
	_ = opts.v.BindPFlag(config.KeyLogLevel, pf.Lookup("log-level"))

	cmd.AddCommand(NewVerifyCommand(opts))
	cmd.AddCommand(NewInspectCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}

// Execute runs the command tree with args. Negative numbers given to
// verify are read as expected values rather than shorthand flags.
func Execute(ctx context.Context, root *cobra.Command, args []string) error {
	root.SetArgs(verifyValueArgs(root, args))
	return root.ExecuteContext(ctx)
}

// load resolves the configuration and builds the logger.
func (o *RootOptions) load(cmd *cobra.Command) error {
	cfg, err := config.Load(o.v, o.ConfigFile)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	o.Config = cfg
	o.Format = cfg.Format

	level := cfg.Level()
	if o.Verbose && level > slog.LevelInfo {
		level = slog.LevelInfo
	}
	o.Logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	if cfg.File != "" {
		o.Logger.Debug("loaded config", "file", cfg.File)
	}
	return nil
}

// logger returns the configured logger, or one that discards everything
// when the root pre-run has not happened.
func (o *RootOptions) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o.Logger
}

// settings returns the resolved configuration, falling back to defaults.
func (o *RootOptions) settings() *config.Config {
	if o.Config != nil {
		return o.Config
	}
	return config.Defaults()
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}
