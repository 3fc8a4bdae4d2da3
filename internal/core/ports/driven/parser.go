package driven

import (
	"context"

	"github.com/storysift/storysift-cli/internal/core/domain"
)

// SourceParser turns one classified file's bytes into extraction
// units. The parser set is closed: one parser per file kind, selected
// once by the classifier. Parsers never extract text themselves; they
// delimit payload regions and flag the ones worth running the
// encryption heuristics over.
type SourceParser interface {
	// Name identifies the parser for diagnostics.
	Name() string

	// Parse splits the file's bytes into extraction units. A file
	// yielding no text-bearing regions returns an empty slice, not an
	// error; errors are reserved for malformed input the parser cannot
	// delimit at all. A context that is already done is returned as its
	// error before any work.
	Parse(ctx context.Context, path string, data []byte) ([]domain.ExtractionUnit, error)
}
