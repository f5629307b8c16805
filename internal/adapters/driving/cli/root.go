// Package cli provides the geoaudit command line interface.
package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/geotech-hub/geoaudit/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	flagVerbose bool
	flagConfig  string
	flagEnvFile string
)

var rootCmd = &cobra.Command{
	Use:   "geoaudit",
	Short: "Engineering audit of geotechnical tender documents",
	Long: `geoaudit reads tender documents (PDF, Excel, plain text), checks that they
describe geotechnical or foundation work, extracts the project parameters,
and produces a risk assessment, a summary and clarifying questions.

Settings come from ~/.geoaudit/config.toml, a .env file and GEOAUDIT_*
environment variables, in increasing order of precedence.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadEnvironment,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default ~/.geoaudit/config.toml)")
	rootCmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", ".env", "dotenv file loaded before reading settings")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadEnvironment loads the dotenv file without overriding variables that are
// already set. A missing file is not an error.
func loadEnvironment(_ *cobra.Command, _ []string) error {
	if flagVerbose {
		logger.SetVerbose(true)
	}
	if flagEnvFile == "" {
		return nil
	}
	if err := godotenv.Load(flagEnvFile); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", flagEnvFile, err)
	}
	logger.Debug("Loaded environment from %s", flagEnvFile)
	return nil
}
