// Package textlike parses files that carry text payloads with no
// framing of their own, such as sidecar resource streams.
package textlike

import (
	"context"
	"path/filepath"

	"github.com/storysift/storysift-cli/internal/core/domain"
	"github.com/storysift/storysift-cli/internal/core/ports/driven"
)

// Parser passes the file through as a single unit.
type Parser struct {
	provenance domain.Provenance
}

var _ driven.SourceParser = (*Parser)(nil)

// New returns a pass-through parser stamping units with the given
// provenance.
func New(provenance domain.Provenance) *Parser {
	return &Parser{provenance: provenance}
}

// Name identifies the parser for diagnostics.
func (p *Parser) Name() string { return "textlike" }

// Parse wraps the whole buffer in one unit.
func (p *Parser) Parse(ctx context.Context, path string, data []byte) ([]domain.ExtractionUnit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	return []domain.ExtractionUnit{{
		SourceID:   path,
		Name:       filepath.Base(path),
		ChunkIndex: -1,
		Data:       data,
		Provenance: p.provenance,
	}}, nil
}
