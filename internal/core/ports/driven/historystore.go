package driven

import (
	"context"

	"github.com/storysift/storysift-cli/internal/core/domain"
)

// RunHistoryStore persists completed run summaries. The orchestrator
// writes to it best-effort: a store failure is a run warning, never an
// error.
type RunHistoryStore interface {
	// SaveRun persists one run summary.
	SaveRun(ctx context.Context, summary domain.RunSummary) error

	// RecentRuns returns up to limit summaries, newest first.
	RecentRuns(ctx context.Context, limit int) ([]domain.RunSummary, error)

	// Close releases the underlying storage.
	Close() error
}
