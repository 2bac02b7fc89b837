// Package cli implements the blockfetch command-line interface.
package cli

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/blockfetch/blockfetch/internal/config"
	"github.com/blockfetch/blockfetch/internal/logging"
)

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // required for zerolog context integration

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// NewRootCmd creates the root cobra command for the blockfetch CLI and
// wires up configuration loading, logging and subcommands.
func NewRootCmd(ver string) *cobra.Command {
	var logCloser func() error

	cmd := &cobra.Command{
		Use:     "blockfetch",
		Short:   "Fetch and aggregate ad-blocking blocklists",
		Long:    "blockfetch downloads blocklists from remote URLs and local files,\naggregates them into a blocked-host set, and answers block queries against it.",
		Version: ver,
		Example: rootCmdExample,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			if configPath != "" {
				cfg, err := config.Load(configPath)
				if err != nil {
					return err
				}
				config.SetGlobalConfig(cfg)
			}

			closer, err := setupLogging(cmd)
			if err != nil {
				return err
			}
			logCloser = closer
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if logCloser != nil {
				return logCloser()
			}
			return nil
		},
	}

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().String("config", "", "path to config file (default ~/.blockfetch/config.yaml)")
	cmd.AddCommand(newUpdateCmd(), newCheckCmd(), newSourcesCmd())

	return cmd
}

// setupLogging configures the package logger from config and CLI flags and
// attaches it to the command context.
func setupLogging(cmd *cobra.Command) (func() error, error) {
	loggingCfg := config.GetGlobalConfig().Logging

	logCfg := logging.Config{
		Level:  loggingCfg.Level,
		Format: loggingCfg.Format,
		File:   loggingCfg.File,
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		logCfg.Level = "debug"
		logCfg.Format = "console"
	}
	// Piped stderr gets machine-readable lines unless a format was
	// configured explicitly.
	if loggingCfg.Format == "" && !isTerminal(os.Stderr) {
		logCfg.Format = "json"
	}

	log, closer, err := logging.New(logCfg)
	if err != nil {
		return nil, err
	}
	logger = logging.ComponentLogger(log, "cli")
	cmd.SetContext(logger.WithContext(cmd.Context()))

	logger.Debug().Str("command", cmd.Name()).Msg("command started")
	return closer, nil
}

const rootCmdExample = `  # Fetch all configured blocklists and compile the blocked-host set
  blockfetch update

  # Fetch a one-off list of sources instead of the configured ones
  blockfetch update https://example.com/ads.txt /var/lib/lists/

  # Check whether a URL would be blocked
  blockfetch check https://ads.example.com/banner.png

  # Show the configured sources
  blockfetch sources`
