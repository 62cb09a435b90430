// Package cli provides the semsync command line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/semsync/internal/logger"
)

var (
	cfgPath     string
	verboseFlag bool
	version     = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "semsync",
	Short: "Incremental semantic indexing over documents and logs",
	Long: `semsync keeps a semantic index in sync with PDF documents, JSON log
files and windowed log streams, and answers questions over the indexed
corpus. Each run re-indexes only what changed since the last run.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "",
		"path to config file (default ~/.semsync/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false,
		"enable verbose logging")
}

// Execute runs the CLI with the given build version.
func Execute(v string) error {
	version = v
	return rootCmd.Execute()
}
