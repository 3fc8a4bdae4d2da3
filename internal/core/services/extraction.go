package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/storysift/storysift-cli/internal/catalog"
	"github.com/storysift/storysift-cli/internal/core/domain"
	"github.com/storysift/storysift-cli/internal/core/ports/driven"
	"github.com/storysift/storysift-cli/internal/core/ports/driving"
	"github.com/storysift/storysift-cli/internal/encryption"
	"github.com/storysift/storysift-cli/internal/extract"
	"github.com/storysift/storysift-cli/internal/logger"
	"github.com/storysift/storysift-cli/internal/parsers"
	"github.com/storysift/storysift-cli/internal/parsers/assembly"
	"github.com/storysift/storysift-cli/internal/parsers/container"
	"github.com/storysift/storysift-cli/internal/parsers/textlike"
)

// Ensure ExtractionService implements the interface.
var _ driving.Extractor = (*ExtractionService)(nil)

const (
	// progressInterval is the completion-count cadence for the progress
	// callback. The callback never fires per file.
	progressInterval = 10

	// hardFileSizeLimit rejects a single file outright before reading
	// it. Hitting the limit forces a synchronous memory reclaim and is
	// recorded as a resource-exhaustion error for that file.
	hardFileSizeLimit = 2 << 30

	// softHeapWatermark triggers a background reclaim pass between
	// files. Crossing it is not an error.
	softHeapWatermark = 1 << 30

	// streamHeaderSniffLen is how much of an oversized file is read up
	// front to delimit its payload. Covers the widest container header.
	streamHeaderSniffLen = 64
)

// streamReadThreshold is the size above which a file is read through a
// fixed chunk-sized buffer instead of being buffered whole. Variable so
// tests can lower it.
var streamReadThreshold int64 = 64 << 20

// readFile and openFile are swapped in tests to instrument worker I/O.
var (
	readFile = os.ReadFile
	openFile = func(path string) (io.ReadSeekCloser, error) { return os.Open(path) }
)

// ExtractionService orchestrates one extraction run: version probe,
// catalog scan, then a bounded worker pool over the flattened file
// list with per-file fault isolation.
type ExtractionService struct {
	engine  *extract.Engine
	history driven.RunHistoryStore

	mu    sync.RWMutex
	state driving.RunState

	// reclaimGate throttles the soft-watermark heap check so ReadMemStats
	// does not run between every pair of files.
	reclaimGate *rate.Limiter
}

// NewExtractionService creates the orchestrator. The history store is
// optional (can be nil); runs are then not persisted.
func NewExtractionService(engine *extract.Engine, history driven.RunHistoryStore) *ExtractionService {
	return &ExtractionService{
		engine:      engine,
		history:     history,
		state:       driving.StateIdle,
		reclaimGate: rate.NewLimiter(rate.Every(2*time.Second), 1),
	}
}

// State reports the current run state.
func (s *ExtractionService) State() driving.RunState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *ExtractionService) setState(st driving.RunState) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// Run executes one extraction pass over a root directory or a single
// file. Only an invalid path fails the run; every per-file failure is
// recorded in the outcome and the batch continues. A cancelled run
// finalises with the fragments collected so far plus a warning.
func (s *ExtractionService) Run(ctx context.Context, path string, cfg domain.ExtractionConfig, onProgress driving.ProgressFunc) (*domain.ExtractionOutcome, error) {
	cfg.Normalise()
	outcome := domain.NewExtractionOutcome(path)

	info, err := os.Stat(path)
	if err != nil {
		s.setState(driving.StateFailed)
		outcome.Finalise()
		return outcome, fmt.Errorf("%w: %s: %v", domain.ErrInvalidRoot, path, err)
	}

	s.setState(driving.StateScanning)
	logger.Section("Extraction Run")
	logger.Info("Run %s over %s", outcome.RunID, path)

	rootDir := path
	if !info.IsDir() {
		rootDir = filepath.Dir(path)
	}
	outcome.DetectedRuntimeVersion = catalog.DetectRuntimeVersion(rootDir)

	files, err := s.collectFiles(path, info.IsDir(), cfg)
	if err != nil {
		s.setState(driving.StateFailed)
		outcome.Finalise()
		return outcome, err
	}
	logger.Info("Selected %d files", len(files))

	s.setState(driving.StateExtracting)
	collector := &runCollector{outcome: outcome}
	s.runPool(ctx, files, cfg, collector, onProgress, !info.IsDir())

	s.setState(driving.StateFinalising)
	cancelled := ctx.Err() != nil
	if cancelled {
		collector.addWarning("run cancelled before completion; results are partial")
	}
	outcome.ProcessedFileCount = int(collector.processed.Load())
	// Success reflects completed control flow, not per-file failures.
	outcome.Success = true
	outcome.Finalise()

	s.persistRun(outcome, collector)

	if cancelled {
		s.setState(driving.StateCancelled)
	} else {
		s.setState(driving.StateCompleted)
	}
	logger.Info("Run %s finished: %d files, %d fragments, %d errors",
		outcome.RunID, outcome.ProcessedFileCount, len(outcome.Fragments), len(outcome.Errors))
	return outcome, nil
}

// collectFiles flattens the catalog (or wraps the explicitly named
// single file) and applies the skip rules: zero-length files, excluded
// name patterns, disabled source kinds, and sidecar streams that a
// container already links.
func (s *ExtractionService) collectFiles(path string, isDir bool, cfg domain.ExtractionConfig) ([]*domain.CatalogEntry, error) {
	var all []*domain.CatalogEntry
	if isDir {
		root, err := catalog.Scan(path)
		if err != nil {
			return nil, err
		}
		all = root.Files()
	} else {
		fi, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidRoot, path, err)
		}
		all = []*domain.CatalogEntry{{
			Path: path,
			Name: filepath.Base(path),
			Kind: catalog.Classify(path),
			Size: fi.Size(),
		}}
	}

	linked := make(map[string]struct{})
	for _, f := range all {
		if f.LinkedStream != nil {
			linked[f.LinkedStream.Path] = struct{}{}
		}
	}

	files := make([]*domain.CatalogEntry, 0, len(all))
	for _, f := range all {
		switch {
		case f.Size == 0:
			continue
		case matchesExcludePattern(f.Name, cfg.ExcludeFilePatterns):
			logger.Debug("excluded by pattern: %s", f.Path)
			continue
		case f.Kind == domain.KindProgramAssembly && !cfg.ExtractAssemblyStrings:
			continue
		case f.Kind == domain.KindResourceStream:
			if !cfg.ProcessSidecarStreams {
				continue
			}
			// Linked streams ride along with their container.
			if _, ok := linked[f.Path]; ok {
				continue
			}
		}
		files = append(files, f)
	}
	return files, nil
}

func matchesExcludePattern(name string, patterns []string) bool {
	lower := strings.ToLower(name)
	for _, p := range patterns {
		if p != "" && strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

// runPool fans the file list out to a bounded set of workers.
// Cancellation is observed at the feed loop; in-flight files run to
// their own completion or timeout.
func (s *ExtractionService) runPool(ctx context.Context, files []*domain.CatalogEntry, cfg domain.ExtractionConfig, out *runCollector, onProgress driving.ProgressFunc, explicitSingle bool) {
	workers := 1
	if cfg.UseParallelProcessing {
		workers = cfg.MaxParallelism
	}
	if workers > len(files) && len(files) > 0 {
		workers = len(files)
	}

	total := len(files)
	jobs := make(chan *domain.CatalogEntry)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for entry := range jobs {
				s.processFile(ctx, entry, cfg, out, explicitSingle)
				done := int(out.processed.Add(1))
				if onProgress != nil && (done%progressInterval == 0 || done == total) {
					onProgress(domain.ProgressUpdate{
						TotalFiles:       total,
						ProcessedFiles:   done,
						CurrentFile:      entry.Path,
						CurrentOperation: "extracting",
						FragmentsSoFar:   out.fragmentCount(),
					})
				}
				s.maybeReclaim()
			}
		}()
	}

feed:
	for _, f := range files {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break feed
		case jobs <- f:
		}
	}
	close(jobs)
	wg.Wait()
}

// processFile handles one file and its linked sidecar. The sidecar is
// extracted no matter how the main file fared, and each side carries
// its own panic isolation, so neither can take the other down.
func (s *ExtractionService) processFile(ctx context.Context, entry *domain.CatalogEntry, cfg domain.ExtractionConfig, out *runCollector, explicitSingle bool) {
	fctx := ctx
	if cfg.PerFileTimeout > 0 {
		var cancel context.CancelFunc
		fctx, cancel = context.WithTimeout(ctx, cfg.PerFileTimeout)
		defer cancel()
	}

	s.processMainFile(fctx, entry, cfg, out, explicitSingle)

	if cfg.ProcessSidecarStreams && entry.LinkedStream != nil {
		s.processSidecar(fctx, entry.LinkedStream, cfg, out)
	}
}

// processMainFile handles the entry itself end to end. Any panic is
// converted to a per-file error; the batch never dies with one file.
func (s *ExtractionService) processMainFile(fctx context.Context, entry *domain.CatalogEntry, cfg domain.ExtractionConfig, out *runCollector, explicitSingle bool) {
	defer func() {
		if r := recover(); r != nil {
			out.addError(entry.Path, fmt.Sprintf("panic while processing: %v", r))
		}
	}()

	if entry.Size > hardFileSizeLimit {
		// Forced synchronous reclaim, then record and move on.
		debug.FreeOSMemory()
		out.addError(entry.Path, fmt.Sprintf("%v: file size %d exceeds limit", domain.ErrResourceExhausted, entry.Size))
		return
	}

	if entry.Size > streamReadThreshold {
		s.processFileStreaming(fctx, entry, cfg, out)
		return
	}

	data, err := readFile(entry.Path)
	if err != nil {
		out.addError(entry.Path, fmt.Sprintf("read failed: %v", err))
		return
	}

	parser, err := parsers.ForKind(entry.Kind)
	if err != nil {
		if explicitSingle && errors.Is(err, domain.ErrUnsupportedFormat) {
			// An explicitly named file is never skipped silently; scan it
			// as an unframed binary.
			parser = textlike.New(domain.ProvenanceRawBinary)
		} else {
			logger.Debug("skipping %s: %v", entry.Path, err)
			return
		}
	}

	units, err := parser.Parse(fctx, entry.Path, data)
	if err != nil {
		out.addError(entry.Path, fmt.Sprintf("%s parse failed: %v", parser.Name(), err))
		return
	}

	for _, unit := range units {
		if fctx.Err() != nil {
			s.recordDeadline(fctx, entry.Path, out)
			return
		}
		out.addFragments(s.extractUnit(fctx, unit, entry, cfg))
	}
}

// processFileStreaming scans an oversized file without buffering it
// whole: the header prefix is sniffed to delimit the payload, then the
// rest is read through one reused chunk-sized buffer. The decryption
// heuristics and structured-record pass need the whole payload
// resident, so streamed files are scanned as plain bytes only.
func (s *ExtractionService) processFileStreaming(fctx context.Context, entry *domain.CatalogEntry, cfg domain.ExtractionConfig, out *runCollector) {
	f, err := openFile(entry.Path)
	if err != nil {
		out.addError(entry.Path, fmt.Sprintf("read failed: %v", err))
		return
	}
	defer f.Close()

	header := make([]byte, streamHeaderSniffLen)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.ErrUnexpectedEOF {
		out.addError(entry.Path, fmt.Sprintf("read failed: %v", err))
		return
	}
	prov, payloadStart := streamLayout(entry.Kind, header[:n])
	if !s.plainScanEnabled(prov, cfg) {
		return
	}
	if _, err := f.Seek(payloadStart, io.SeekStart); err != nil {
		out.addError(entry.Path, fmt.Sprintf("read failed: %v", err))
		return
	}

	logger.Debug("streaming %s from offset %d", entry.Path, payloadStart)
	frags, err := s.engine.ExtractReader(fctx, f, entry.Path, cfg, int(payloadStart))
	unit := domain.ExtractionUnit{SourceID: entry.Path, Name: entry.Name, ChunkIndex: -1, Provenance: prov}
	out.addFragments(s.stampFragments(frags, unit, entry, cfg))
	if err != nil {
		if fctx.Err() != nil {
			s.recordDeadline(fctx, entry.Path, out)
		} else {
			out.addError(entry.Path, fmt.Sprintf("read failed: %v", err))
		}
	}
}

// streamLayout mirrors the per-kind parsers over a sniffed header
// prefix: the provenance the payload carries and the offset it starts
// at.
func streamLayout(kind domain.FileKind, header []byte) (domain.Provenance, int64) {
	switch kind {
	case domain.KindSerializedContainer, domain.KindBootstrapDescriptor:
		info := catalog.ValidateContainerHeader(header)
		if !info.IsValid {
			return domain.ProvenanceRawBinary, 0
		}
		if info.DataOffset > 0 {
			return domain.ProvenanceContainerText, info.DataOffset
		}
		return domain.ProvenanceContainerText, 0
	case domain.KindResourceBundle:
		if catalog.IsBundleHeader(header) {
			return domain.ProvenanceContainerText, container.SignatureLength
		}
		return domain.ProvenanceRawBinary, 0
	case domain.KindProgramAssembly:
		if assembly.HasImageSignature(header) {
			return domain.ProvenanceAssemblyLiteral, 0
		}
		return domain.ProvenanceRawBinary, 0
	case domain.KindResourceStream:
		return domain.ProvenanceResourceStream, 0
	default:
		return domain.ProvenanceRawBinary, 0
	}
}

// recordDeadline distinguishes a per-file timeout (a recorded error)
// from run-level cancellation (not an error).
func (s *ExtractionService) recordDeadline(fctx context.Context, path string, out *runCollector) {
	if errors.Is(fctx.Err(), context.DeadlineExceeded) {
		out.addError(path, "per-file timeout exceeded; file abandoned")
	}
}

// processSidecar reads and extracts a linked resource stream as plain
// text. It carries its own panic isolation so a sidecar failure never
// reaches the worker.
func (s *ExtractionService) processSidecar(ctx context.Context, stream *domain.CatalogEntry, cfg domain.ExtractionConfig, out *runCollector) {
	defer func() {
		if r := recover(); r != nil {
			out.addError(stream.Path, fmt.Sprintf("panic while processing sidecar: %v", r))
		}
	}()
	if ctx.Err() != nil {
		return
	}
	data, err := readFile(stream.Path)
	if err != nil {
		out.addError(stream.Path, fmt.Sprintf("sidecar read failed: %v", err))
		return
	}
	parser := textlike.New(domain.ProvenanceResourceStream)
	units, err := parser.Parse(ctx, stream.Path, data)
	if err != nil {
		out.addError(stream.Path, fmt.Sprintf("sidecar parse failed: %v", err))
		return
	}
	for _, unit := range units {
		out.addFragments(s.extractUnit(ctx, unit, stream, cfg))
	}
}

// extractUnit runs the decryption heuristics and the extraction engine
// over one unit and stamps attribution onto the recovered fragments.
func (s *ExtractionService) extractUnit(ctx context.Context, unit domain.ExtractionUnit, entry *domain.CatalogEntry, cfg domain.ExtractionConfig) []domain.DecodedTextFragment {
	if unit.Provenance == domain.ProvenanceRawBinary && !cfg.ExtractRawBinaryFallback {
		return nil
	}

	data := unit.Data
	if cfg.AttemptDecryption && unit.PossiblyEncrypted && len(data) > 0 {
		if verdict := encryption.Detect(data); verdict.IsEncrypted {
			plain, err := encryption.Decrypt(data, verdict.Kind, cfg.DecryptionKey)
			if err == nil {
				logger.Debug("decrypted %s payload of %s", verdict.Kind, unit.SourceID)
				data = plain
			} else {
				// Treat the original bytes as already-plaintext candidates.
				logger.Debug("decrypt of %s failed, scanning raw bytes: %v", unit.SourceID, err)
			}
		}
	}

	var frags []domain.DecodedTextFragment
	if s.plainScanEnabled(unit.Provenance, cfg) {
		frags = s.engine.Extract(ctx, data, unit.SourceID, cfg)
	}
	if cfg.ExtractStructuredRecords && unit.Provenance != domain.ProvenanceAssemblyLiteral {
		frags = append(frags, s.engine.FindSerializedStringArrays(data, unit.SourceID, cfg)...)
	}

	return s.stampFragments(frags, unit, entry, cfg)
}

// stampFragments applies asset attribution and the keyword filter to
// engine output.
func (s *ExtractionService) stampFragments(frags []domain.DecodedTextFragment, unit domain.ExtractionUnit, entry *domain.CatalogEntry, cfg domain.ExtractionConfig) []domain.DecodedTextFragment {
	kept := frags[:0]
	for _, f := range frags {
		f.AssetName = unit.Name
		f.AssetType = entry.Kind.String()
		if f.Provenance == "" {
			f.Provenance = unit.Provenance
		}
		if !matchesKeywords(f.Content, cfg.Keywords) {
			continue
		}
		kept = append(kept, f)
	}
	return kept
}

// plainScanEnabled maps a unit's provenance to its config toggle.
func (s *ExtractionService) plainScanEnabled(p domain.Provenance, cfg domain.ExtractionConfig) bool {
	switch p {
	case domain.ProvenanceAssemblyLiteral:
		return cfg.ExtractAssemblyStrings
	case domain.ProvenanceRawBinary:
		return cfg.ExtractRawBinaryFallback
	default:
		return cfg.ExtractPlainText
	}
}

func matchesKeywords(content string, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	lower := strings.ToLower(content)
	for _, kw := range keywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// maybeReclaim runs the throttled soft-watermark check between files.
// Crossing the watermark triggers a background reclaim pass, never an
// error.
func (s *ExtractionService) maybeReclaim() {
	if !s.reclaimGate.Allow() {
		return
	}
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	if m.HeapInuse > softHeapWatermark {
		logger.Debug("heap in use %d exceeds watermark, requesting reclaim", m.HeapInuse)
		go debug.FreeOSMemory()
	}
}

// persistRun writes the run summary best-effort. The run context may
// already be cancelled, so persistence gets its own short deadline.
func (s *ExtractionService) persistRun(outcome *domain.ExtractionOutcome, out *runCollector) {
	if s.history == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.history.SaveRun(ctx, outcome.Summary()); err != nil {
		out.addWarning(fmt.Sprintf("run history not saved: %v", err))
	}
}

// runCollector is the only state shared between file tasks: append-only
// fragment and error lists behind one mutex, plus the atomic processed
// counter.
type runCollector struct {
	mu        sync.Mutex
	outcome   *domain.ExtractionOutcome
	processed atomic.Int64
}

func (c *runCollector) addFragments(frags []domain.DecodedTextFragment) {
	if len(frags) == 0 {
		return
	}
	c.mu.Lock()
	c.outcome.Fragments = append(c.outcome.Fragments, frags...)
	c.mu.Unlock()
}

func (c *runCollector) addError(file, message string) {
	c.mu.Lock()
	c.outcome.Errors = append(c.outcome.Errors, domain.ExtractionError{
		File:      file,
		Message:   message,
		Timestamp: time.Now(),
	})
	c.mu.Unlock()
}

func (c *runCollector) addWarning(message string) {
	c.mu.Lock()
	c.outcome.Warnings = append(c.outcome.Warnings, message)
	c.mu.Unlock()
}

func (c *runCollector) fragmentCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.outcome.Fragments)
}
