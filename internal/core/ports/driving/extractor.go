package driving

import (
	"context"

	"github.com/storysift/storysift-cli/internal/core/domain"
)

// RunState is the orchestrator's position in its state machine.
type RunState string

// Run states.
const (
	// StateIdle means no run is active.
	StateIdle RunState = "idle"

	// StateScanning means the catalog walk is in progress.
	StateScanning RunState = "scanning"

	// StateExtracting means files are being processed.
	StateExtracting RunState = "extracting"

	// StateFinalising means counters are being computed.
	StateFinalising RunState = "finalising"

	// StateCompleted means the run finished normally.
	StateCompleted RunState = "completed"

	// StateCancelled means the run was stopped cooperatively.
	StateCancelled RunState = "cancelled"

	// StateFailed means the run aborted (invalid root).
	StateFailed RunState = "failed"
)

// ProgressFunc receives throttled progress updates. It must be cheap;
// it is called from the orchestrator's control flow.
type ProgressFunc func(domain.ProgressUpdate)

// Extractor runs the extraction pipeline over a root directory or a
// single file.
type Extractor interface {
	// Run executes one extraction pass. Cancellation via ctx is
	// cooperative: a cancelled run returns a finalised partial outcome
	// with a warning and a nil error. Only an invalid path returns a
	// non-nil error (wrapping domain.ErrInvalidRoot).
	Run(ctx context.Context, path string, cfg domain.ExtractionConfig, onProgress ProgressFunc) (*domain.ExtractionOutcome, error)

	// State reports the current run state.
	State() RunState
}
