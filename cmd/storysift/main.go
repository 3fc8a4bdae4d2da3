// Command storysift mines narrative text from game asset directories.
package main

import (
	"fmt"
	"os"

	"github.com/storysift/storysift-cli/internal/adapters/driven/config/file"
	"github.com/storysift/storysift-cli/internal/adapters/driven/storage/sqlite"
	"github.com/storysift/storysift-cli/internal/adapters/driving/cli"
	"github.com/storysift/storysift-cli/internal/core/services"
	"github.com/storysift/storysift-cli/internal/extract"
)

// version is set at build time via
// -ldflags "-X main.version=1.2.3".
var version = "dev"

func main() {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "storysift: %v\n", err)
		os.Exit(1)
	}

	historyStore, err := sqlite.NewStore("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "storysift: %v\n", err)
		os.Exit(1)
	}
	defer historyStore.Close()

	extractor := services.NewExtractionService(extract.NewEngine(), historyStore)

	if err := cli.Execute(version, extractor, historyStore, configStore); err != nil {
		os.Exit(1)
	}
}
