// Package container parses serialized containers and resource
// bundles. Both are treated as opaque payload carriers: the header is
// checked for validity, the payload region is delimited, and nothing
// deeper is parsed.
package container

import (
	"context"
	"path/filepath"

	"github.com/storysift/storysift-cli/internal/catalog"
	"github.com/storysift/storysift-cli/internal/core/domain"
	"github.com/storysift/storysift-cli/internal/core/ports/driven"
	"github.com/storysift/storysift-cli/internal/logger"
)

// Parser handles serialized containers (and, with bundle=true, the
// signature-prefixed bundle variant).
type Parser struct {
	bundle bool
}

var _ driven.SourceParser = (*Parser)(nil)

// New returns the serialized-container parser.
func New() *Parser {
	return &Parser{}
}

// NewBundle returns the resource-bundle parser. Bundles are accepted
// on signature alone; compressed block payloads are not decompressed.
func NewBundle() *Parser {
	return &Parser{bundle: true}
}

// Name identifies the parser for diagnostics.
func (p *Parser) Name() string {
	if p.bundle {
		return "bundle"
	}
	return "container"
}

// Parse delimits the container payload. A file whose header does not
// validate degrades to a single raw-binary unit flagged for the
// encryption heuristics, since a scrambled header is exactly what an
// encrypted container looks like.
func (p *Parser) Parse(ctx context.Context, path string, data []byte) ([]domain.ExtractionUnit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := filepath.Base(path)
	if len(data) == 0 {
		return nil, nil
	}

	if p.bundle {
		if !catalog.IsBundleHeader(data) {
			return fallbackUnit(path, name, data), nil
		}
		return []domain.ExtractionUnit{{
			SourceID:   path,
			Name:       name,
			ChunkIndex: -1,
			Data:       data[SignatureLength:],
			Provenance: domain.ProvenanceContainerText,
		}}, nil
	}

	info := catalog.ValidateContainerHeader(data)
	if !info.IsValid {
		logger.Debug("container header invalid for %s, falling back to raw scan", path)
		return fallbackUnit(path, name, data), nil
	}

	payload := data
	if info.DataOffset > 0 && info.DataOffset < int64(len(data)) {
		payload = data[info.DataOffset:]
	}
	return []domain.ExtractionUnit{{
		SourceID:          path,
		Name:              name,
		ChunkIndex:        -1,
		Data:              payload,
		Provenance:        domain.ProvenanceContainerText,
		PossiblyEncrypted: true,
	}}, nil
}

// SignatureLength is the fixed signature field width at the
// start of a bundle.
const SignatureLength = 8

func fallbackUnit(path, name string, data []byte) []domain.ExtractionUnit {
	return []domain.ExtractionUnit{{
		SourceID:          path,
		Name:              name,
		ChunkIndex:        -1,
		Data:              data,
		Provenance:        domain.ProvenanceRawBinary,
		PossiblyEncrypted: true,
	}}
}
