// Package cmd defines and implements the CLI commands for the
// sequoia-crawler executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sequoia-oss-api/sequoia-crawler/internal/config"
	"github.com/sequoia-oss-api/sequoia-crawler/internal/logging"

	"go.uber.org/zap"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sequoia-crawler",
		Short: "Builds a static JSON API from the Sequoia company directory",
		Long: `sequoia-crawler discovers company profile pages through the site's
sitemap, extracts structured records from them, reconciles the records
with the paginated directory listing, validates the batch, and emits a
static JSON API as a directory tree.`,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path (optional)")

	cmd.AddCommand(newBuildCmd())
	cmd.AddCommand(newValidateCmd())
	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads configuration and builds the run logger shared by the
// subcommands.
func setup() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logger, nil
}
