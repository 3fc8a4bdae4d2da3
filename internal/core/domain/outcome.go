package domain

import (
	"time"

	"github.com/google/uuid"
)

// ExtractionError is a per-file failure recorded in the outcome.
type ExtractionError struct {
	// File is the path of the file that failed.
	File string `json:"file"`

	// Message is the failure description.
	Message string `json:"message"`

	// Timestamp is when the failure was recorded.
	Timestamp time.Time `json:"timestamp"`
}

// ProgressUpdate is delivered to the optional progress callback at a
// throttled cadence, never per file.
type ProgressUpdate struct {
	// TotalFiles is the number of files selected for extraction.
	TotalFiles int

	// ProcessedFiles is the number of files completed so far.
	ProcessedFiles int

	// CurrentFile is the path of a recently completed file.
	CurrentFile string

	// CurrentOperation labels the pipeline phase.
	CurrentOperation string

	// FragmentsSoFar is the running fragment count.
	FragmentsSoFar int
}

// RunSummary is the persisted record of one completed run.
type RunSummary struct {
	// RunID is the unique run identifier.
	RunID string

	// SourcePath is the scanned root or file.
	SourcePath string

	// RuntimeVersion is the detected engine runtime version.
	RuntimeVersion string

	// Success mirrors the outcome's success flag.
	Success bool

	// FileCount is the number of files processed.
	FileCount int

	// FragmentCount is the number of fragments recovered.
	FragmentCount int

	// ErrorCount is the number of per-file errors.
	ErrorCount int

	// StartTime and EndTime bound the run.
	StartTime time.Time
	EndTime   time.Time
}

// ExtractionOutcome is the aggregate result of one run. It is created
// once, mutated incrementally by the orchestrator, and finalised
// exactly once before being handed to the external consumer. It is the
// sole contract with result serializers and presentation layers.
type ExtractionOutcome struct {
	// RunID is the unique run identifier.
	RunID string `json:"runId"`

	// Success reports whether the pipeline completed its control flow.
	// Individual file errors do not clear it.
	Success bool `json:"success"`

	// SourcePath is the scanned root or file.
	SourcePath string `json:"sourcePath"`

	// DetectedRuntimeVersion is the engine runtime version, or
	// RuntimeVersionUnknown.
	DetectedRuntimeVersion string `json:"detectedRuntimeVersion"`

	// Fragments holds every recovered fragment with provenance.
	Fragments []DecodedTextFragment `json:"fragments"`

	// ProcessedFileCount is the number of files processed.
	ProcessedFileCount int `json:"processedFileCount"`

	// Errors lists per-file failures.
	Errors []ExtractionError `json:"errors"`

	// Warnings lists non-fatal run-level conditions (e.g. cancellation).
	Warnings []string `json:"warnings"`

	// StartTime and EndTime bound the run.
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`

	// StatsByProvenance counts fragments per extraction path.
	StatsByProvenance map[Provenance]int `json:"statisticsByProvenance"`

	// DecodedByteCount totals the byte length of all fragments.
	DecodedByteCount int64 `json:"decodedByteCount"`

	finalised bool
}

// NewExtractionOutcome creates an outcome for the given source path
// with the start time stamped.
func NewExtractionOutcome(sourcePath string) *ExtractionOutcome {
	return &ExtractionOutcome{
		RunID:                  uuid.New().String(),
		SourcePath:             sourcePath,
		DetectedRuntimeVersion: RuntimeVersionUnknown,
		StartTime:              time.Now(),
		StatsByProvenance:      make(map[Provenance]int),
	}
}

// Finalise stamps the end time and computes the per-provenance
// counters and decoded byte total. Safe to call more than once; only
// the first call has effect.
func (o *ExtractionOutcome) Finalise() {
	if o.finalised {
		return
	}
	o.finalised = true
	o.EndTime = time.Now()

	if o.StatsByProvenance == nil {
		o.StatsByProvenance = make(map[Provenance]int)
	}
	o.DecodedByteCount = 0
	for i := range o.Fragments {
		o.StatsByProvenance[o.Fragments[i].Provenance]++
		o.DecodedByteCount += int64(len(o.Fragments[i].Content))
	}
}

// Finalised reports whether Finalise has run.
func (o *ExtractionOutcome) Finalised() bool {
	return o.finalised
}

// Summary derives the persistable run record from a finalised outcome.
func (o *ExtractionOutcome) Summary() RunSummary {
	return RunSummary{
		RunID:          o.RunID,
		SourcePath:     o.SourcePath,
		RuntimeVersion: o.DetectedRuntimeVersion,
		Success:        o.Success,
		FileCount:      o.ProcessedFileCount,
		FragmentCount:  len(o.Fragments),
		ErrorCount:     len(o.Errors),
		StartTime:      o.StartTime,
		EndTime:        o.EndTime,
	}
}
