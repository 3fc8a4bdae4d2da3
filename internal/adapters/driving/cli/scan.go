package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/storysift/storysift-cli/internal/catalog"
	"github.com/storysift/storysift-cli/internal/core/domain"
)

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "List the recognised asset files under a directory",
	Long: `Walks the directory, classifies the recognised asset files and
shows the catalog tree with sidecar links, without extracting any
text.`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	root, err := catalog.Scan(args[0])
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	cmd.Printf("Runtime version: %s\n", catalog.DetectRuntimeVersion(args[0]))
	printCatalog(cmd, root, 0)

	counts := make(map[domain.FileKind]int)
	for _, f := range root.Files() {
		counts[f.Kind]++
	}
	cmd.Println()
	for kind, n := range counts {
		cmd.Printf("%s: %d\n", kind, n)
	}
	return nil
}

func printCatalog(cmd *cobra.Command, entry *domain.CatalogEntry, depth int) {
	indent := strings.Repeat("  ", depth)
	if entry.IsDir {
		cmd.Printf("%s%s/\n", indent, entry.Name)
		for _, child := range entry.Children {
			printCatalog(cmd, child, depth+1)
		}
		return
	}

	cmd.Printf("%s%s [%s, %d bytes]", indent, entry.Name, entry.Kind, entry.Size)
	if entry.LinkedStream != nil {
		cmd.Printf(" -> %s", entry.LinkedStream.Name)
	}
	cmd.Println()
}
