// Package cli provides the cdr-client command line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/cdr-client/internal/adapters/driven/config/file"
	"github.com/custodia-labs/cdr-client/internal/core/ports/driven"
	"github.com/custodia-labs/cdr-client/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	configPath string
	verbose    bool
)

// openConfigStore loads the configuration named by --config.
// Tests replace it to inject an in-memory store.
var openConfigStore = func(path string) (driven.ConfigStore, error) {
	return file.NewConfigStore(path)
}

var rootCmd = &cobra.Command{
	Use:   "cdr-client",
	Short: "Push documents from local folders to the document-exchange API",
	Long: `cdr-client watches the source folders of its configured connectors and
uploads every new document to the document-exchange API. Uploaded files are
archived or deleted; rejected files are moved aside with a description of
the failure.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"configuration file (default ~/.cdr-client/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
