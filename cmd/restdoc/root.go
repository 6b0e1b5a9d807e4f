package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"restdoc/internal/config"
	"restdoc/internal/slogutil"
	"restdoc/internal/version"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	verbose    int
	quiet      bool
	configPath string
	format     string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "restdoc",
		Short: "restdoc - OpenAPI documents from Java REST sources",
		Long: `restdoc scans Spring MVC and JAX-RS resource classes in Java source trees,
correlates them with their Javadoc and writes one OpenAPI 3 document per
configured API.`,
		Version:       version.Info(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetVersionTemplate("restdoc version {{.Version}}\n")

	pf := cmd.PersistentFlags()
	pf.CountVarP(&opts.verbose, "verbose", "v", "Increase console log verbosity (-v info, -vv debug)")
	pf.BoolVarP(&opts.quiet, "quiet", "q", false, "Silence console logging")
	pf.StringVar(&opts.configPath, "config", "", "Configuration file (default: ./restdoc.{toml,yaml,json})")
	pf.StringVar(&opts.format, "format", string(FormatHuman), "Output format (human, json)")

	cmd.AddCommand(
		newGenerateCmd(opts),
		newConfigCmd(opts),
		newDocsCmd(opts),
		newVersionCmd(opts),
	)
	return cmd
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	return config.LoadConfig(o.configPath, ".")
}

// consoleLevel picks the console log level. Flags win over the configured level.
func (o *rootOptions) consoleLevel(cfg *config.Config) slog.Level {
	if o.verbose > 0 || o.quiet || cfg == nil {
		return slogutil.LevelFromVerbosity(o.verbose, o.quiet)
	}
	return slogutil.LevelFromString(cfg.Logging.Level)
}

// setupLogging builds the run's logger. A log file that cannot be opened is
// reported and skipped.
func (o *rootOptions) setupLogging(cmd *cobra.Command, cfg *config.Config) *slogutil.Logging {
	opts := slogutil.Options{
		Console: cmd.ErrOrStderr(),
		Level:   o.consoleLevel(cfg),
	}
	if cfg != nil {
		opts.File = cfg.Logging.File
		opts.MaxSize = cfg.Logging.MaxSize
		opts.MaxBackups = cfg.Logging.MaxBackups
	}
	logging, err := slogutil.Setup(opts)
	if err != nil {
		logging.Logger.Warn("Cannot open log file, logging to the console only", "file", opts.File, "error", err)
	}
	return logging
}
