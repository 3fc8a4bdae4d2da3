package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/storysift/storysift-cli/internal/core/domain"
)

var (
	extractJSON        bool
	extractKeywords    []string
	extractExclude     []string
	extractMinLength   int
	extractMaxLength   int
	extractParallelism int
	extractTimeout     time.Duration
	extractCJK         bool
	extractKey         string
	extractNoDecrypt   bool
	extractNoSidecars  bool
)

var extractCmd = &cobra.Command{
	Use:   "extract [path]",
	Short: "Extract narrative text from a game directory or file",
	Long: `Scans the given root directory (or single file), selects the
recognised asset files and recovers human-readable text fragments
from them. Results are printed as text or JSON.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().BoolVar(&extractJSON, "json", false, "output the full outcome as JSON")
	extractCmd.Flags().StringSliceVarP(&extractKeywords, "keyword", "k", nil, "keep only fragments containing a keyword (repeatable)")
	extractCmd.Flags().StringSliceVar(&extractExclude, "exclude", nil, "skip files whose name contains a pattern (repeatable)")
	extractCmd.Flags().IntVar(&extractMinLength, "min-length", 0, "minimum fragment length in characters")
	extractCmd.Flags().IntVar(&extractMaxLength, "max-length", 0, "maximum fragment length in characters")
	extractCmd.Flags().IntVarP(&extractParallelism, "parallelism", "p", 0, "maximum concurrent file tasks")
	extractCmd.Flags().DurationVar(&extractTimeout, "file-timeout", 0, "per-file processing timeout")
	extractCmd.Flags().BoolVar(&extractCJK, "cjk", false, "prioritise CJK text (enables the Shift-JIS pass)")
	extractCmd.Flags().StringVar(&extractKey, "key", "", "decryption key for encrypted payloads")
	extractCmd.Flags().BoolVar(&extractNoDecrypt, "no-decrypt", false, "skip the encryption heuristics")
	extractCmd.Flags().BoolVar(&extractNoSidecars, "no-sidecars", false, "skip linked resource streams")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	if extractor == nil {
		return errors.New("extractor not configured")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyExtractFlags(cmd, &cfg)

	onProgress := func(u domain.ProgressUpdate) {
		fmt.Fprintf(cmd.ErrOrStderr(), "processed %d/%d files, %d fragments (%s)\n",
			u.ProcessedFiles, u.TotalFiles, u.FragmentsSoFar, u.CurrentFile)
	}
	if extractJSON {
		onProgress = nil
	}

	outcome, err := extractor.Run(cmd.Context(), args[0], cfg, onProgress)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	if extractJSON {
		return outputOutcomeJSON(cmd, outcome)
	}
	return outputOutcomeText(cmd, outcome)
}

// loadConfig returns the persisted configuration, or the defaults when
// no store is wired or nothing is saved yet.
func loadConfig() (domain.ExtractionConfig, error) {
	if configStore == nil {
		return domain.DefaultExtractionConfig(), nil
	}
	cfg, err := configStore.Load()
	if err != nil {
		return cfg, fmt.Errorf("loading configuration: %w", err)
	}
	return cfg, nil
}

// applyExtractFlags overrides loaded configuration with flags the user
// actually set.
func applyExtractFlags(cmd *cobra.Command, cfg *domain.ExtractionConfig) {
	flags := cmd.Flags()
	if flags.Changed("keyword") {
		cfg.Keywords = extractKeywords
	}
	if flags.Changed("exclude") {
		cfg.ExcludeFilePatterns = extractExclude
	}
	if flags.Changed("min-length") {
		cfg.MinTextLength = extractMinLength
	}
	if flags.Changed("max-length") {
		cfg.MaxTextLength = extractMaxLength
	}
	if flags.Changed("parallelism") {
		cfg.MaxParallelism = extractParallelism
		cfg.UseParallelProcessing = extractParallelism > 1
	}
	if flags.Changed("file-timeout") {
		cfg.PerFileTimeout = extractTimeout
	}
	if flags.Changed("cjk") {
		cfg.PrioritizeCJKText = extractCJK
	}
	if flags.Changed("key") {
		cfg.DecryptionKey = []byte(extractKey)
	}
	if extractNoDecrypt {
		cfg.AttemptDecryption = false
	}
	if extractNoSidecars {
		cfg.ProcessSidecarStreams = false
	}
}

func outputOutcomeJSON(cmd *cobra.Command, outcome *domain.ExtractionOutcome) error {
	data, err := json.MarshalIndent(outcome, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal outcome: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputOutcomeText(cmd *cobra.Command, outcome *domain.ExtractionOutcome) error {
	cmd.Printf("Run %s over %s\n", outcome.RunID, outcome.SourcePath)
	cmd.Printf("Runtime version: %s\n", outcome.DetectedRuntimeVersion)
	cmd.Printf("Processed %d files in %s\n",
		outcome.ProcessedFileCount, outcome.EndTime.Sub(outcome.StartTime).Round(time.Millisecond))
	cmd.Println()

	for i := range outcome.Fragments {
		f := &outcome.Fragments[i]
		cmd.Printf("[%s %s] %s", f.Provenance, f.EncodingLabel, f.AssetName)
		if f.FieldLabel != "" {
			cmd.Printf(" (%s)", f.FieldLabel)
		}
		cmd.Printf(": %s\n", f.Content)
	}

	cmd.Println()
	cmd.Printf("%d fragments", len(outcome.Fragments))
	for prov, n := range outcome.StatsByProvenance {
		cmd.Printf(", %s=%d", prov, n)
	}
	cmd.Println()

	for _, w := range outcome.Warnings {
		cmd.Printf("warning: %s\n", w)
	}
	if len(outcome.Errors) > 0 {
		cmd.Printf("%d files failed:\n", len(outcome.Errors))
		for _, e := range outcome.Errors {
			cmd.Printf("  %s: %s\n", e.File, e.Message)
		}
	}
	return nil
}
