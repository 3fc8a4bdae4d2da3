// Package cli implements the storysift command line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/storysift/storysift-cli/internal/core/ports/driven"
	"github.com/storysift/storysift-cli/internal/core/ports/driving"
	"github.com/storysift/storysift-cli/internal/logger"
)

// Wired at startup by Execute.
var (
	version      = "dev"
	extractor    driving.Extractor
	historyStore driven.RunHistoryStore
	configStore  driven.ConfigStore
)

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "storysift",
	Short: "Mine narrative text from game asset files",
	Long: `StorySift recovers dialogue, scenario and other narrative text from
game asset directories: serialized containers, resource bundles,
sidecar streams and managed assemblies.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose logging to stderr")
}

// Execute wires the services into the command tree and runs it.
func Execute(v string, ext driving.Extractor, history driven.RunHistoryStore, config driven.ConfigStore) error {
	version = v
	extractor = ext
	historyStore = history
	configStore = config
	return rootCmd.Execute()
}
