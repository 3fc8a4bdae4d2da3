// Package assembly parses compiled managed assemblies for embedded
// string literals. No metadata tables are walked: managed string heaps
// store literals as UTF-16, so the whole image is handed to the
// extraction engine's UTF-16 pass.
package assembly

import (
	"context"
	"path/filepath"

	"github.com/storysift/storysift-cli/internal/core/domain"
	"github.com/storysift/storysift-cli/internal/core/ports/driven"
)

// dosMagic is the two-byte executable image signature.
var dosMagic = []byte{'M', 'Z'}

// HasImageSignature reports whether the buffer starts with the
// executable image signature.
func HasImageSignature(data []byte) bool {
	return len(data) >= len(dosMagic) && data[0] == dosMagic[0] && data[1] == dosMagic[1]
}

// Parser handles program assemblies.
type Parser struct{}

var _ driven.SourceParser = (*Parser)(nil)

// New returns the assembly parser.
func New() *Parser {
	return &Parser{}
}

// Name identifies the parser for diagnostics.
func (p *Parser) Name() string { return "assembly" }

// Parse emits the whole image as one assembly-literal unit when the
// executable signature is present, and degrades to a raw-binary unit
// otherwise.
func (p *Parser) Parse(ctx context.Context, path string, data []byte) ([]domain.ExtractionUnit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}

	prov := domain.ProvenanceAssemblyLiteral
	if !HasImageSignature(data) {
		prov = domain.ProvenanceRawBinary
	}
	return []domain.ExtractionUnit{{
		SourceID:   path,
		Name:       filepath.Base(path),
		ChunkIndex: -1,
		Data:       data,
		Provenance: prov,
	}}, nil
}
