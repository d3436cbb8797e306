package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sequoia-oss-api/sequoia-crawler/internal/postbuild"
)

// newValidateCmd creates the 'validate' subcommand: a standalone
// pass/fail check of a built output tree, run before it replaces a
// previously published one.
func newValidateCmd() *cobra.Command {
	var minCompanies int
	cmd := &cobra.Command{
		Use:   "validate <build-dir>",
		Short: "Sanity-check a built output tree before publishing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck
			if !cmd.Flags().Changed("min-companies") {
				minCompanies = cfg.Build.MinCompanies
			}
			return runValidate(args[0], minCompanies, logger)
		},
	}
	cmd.Flags().IntVar(&minCompanies, "min-companies", postbuild.MinCompanies,
		"minimum record count required to pass")
	return cmd
}

func runValidate(buildDir string, minCompanies int, logger *zap.Logger) error {
	info, err := os.Stat(buildDir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("build directory does not exist: %s", buildDir)
	}
	defects := postbuild.Validate(buildDir, minCompanies)
	if len(defects) > 0 {
		for _, d := range defects {
			logger.Error("defect", zap.String("detail", d))
		}
		return fmt.Errorf("post-build validation failed with %d defects", len(defects))
	}
	logger.Info("post-build validation passed", zap.String("dir", buildDir))
	return nil
}
