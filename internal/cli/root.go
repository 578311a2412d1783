// Package cli wires the cobra command tree: the dashboard (default), one-shot
// refresh, cached-data inspection, and cache maintenance.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sentinelmon/sentinel/internal/config"
	"github.com/sentinelmon/sentinel/internal/logging"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// app carries state built in the root PersistentPreRunE and shared by every
// subcommand.
type app struct {
	cfg       *config.Config
	logger    zerolog.Logger
	logCloser io.Closer
}

// NewRootCmd creates the root cobra command. Running it with no subcommand
// starts the interactive dashboard.
func NewRootCmd(version string) *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:     "sentinel",
		Short:   "Sovereign debt and fiscal dominance monitor",
		Long:    "Sentinel: a terminal dashboard tracking sovereign debt risk from cached FRED, Yahoo Finance, and local fiscal data.",
		Version: version,
		Example: rootCmdExample,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			a.teardown()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runDashboard(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("config", config.DefaultPath(), "path to the YAML config file")
	cmd.PersistentFlags().Bool("debug", false, "enable debug logging to stderr")

	cmd.AddCommand(
		newDashboardCmd(a),
		newRefreshCmd(a),
		newShowCmd(a),
		newCacheCmd(a),
	)

	return cmd
}

const rootCmdExample = `  # Start the interactive dashboard
  sentinel

  # Run one refresh tick and print the results without the TUI
  sentinel refresh

  # Inspect what is cached, and how stale it is
  sentinel show

  # Cache maintenance
  sentinel cache stats
  sentinel cache clear`

// setup loads config and builds the logger for this invocation.
func (a *app) setup(cmd *cobra.Command) error {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	logCfg := logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, File: cfg.Log.File}

	debug, _ := cmd.Flags().GetBool("debug")
	if debug {
		logCfg.Level = "debug"
		logCfg.Format = "console"
		logCfg.File = ""
	}

	// The dashboard owns the terminal, so its log lines go to a file.
	if !debug && logCfg.File == "" && commandUsesTUI(cmd) {
		logCfg.File = filepath.Join(filepath.Dir(cfg.Database.Path), "sentinel.log")
	}

	logger, closer, err := logging.New(logCfg)
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}

	a.cfg = cfg
	a.logger = logger
	a.logCloser = closer
	cmd.SetContext(logger.WithContext(cmd.Context()))

	cliLogger := logging.ComponentLogger(logger, "cli")
	cliLogger.Debug().
		Str("command", cmd.Name()).
		Str("config", cfgPath).
		Msg("command started")
	return nil
}

func (a *app) teardown() {
	if a.logCloser != nil {
		_ = a.logCloser.Close()
	}
}

// commandUsesTUI reports whether cmd will take over the terminal.
func commandUsesTUI(cmd *cobra.Command) bool {
	return cmd.Name() == "sentinel" || cmd.Name() == "dashboard"
}
