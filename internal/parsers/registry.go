package parsers

import (
	"fmt"

	"github.com/storysift/storysift-cli/internal/core/domain"
	"github.com/storysift/storysift-cli/internal/core/ports/driven"
	"github.com/storysift/storysift-cli/internal/parsers/assembly"
	"github.com/storysift/storysift-cli/internal/parsers/container"
	"github.com/storysift/storysift-cli/internal/parsers/textlike"
)

// byKind is the closed parser set, built once at process start.
var byKind = map[domain.FileKind]driven.SourceParser{
	domain.KindSerializedContainer: container.New(),
	domain.KindBootstrapDescriptor: container.New(),
	domain.KindResourceBundle:      container.NewBundle(),
	domain.KindProgramAssembly:     assembly.New(),
	domain.KindResourceStream:      textlike.New(domain.ProvenanceResourceStream),
}

// ForKind selects the parser for a classified file kind. Kinds outside
// the closed set return ErrUnsupportedFormat; callers skip those files
// silently.
func ForKind(kind domain.FileKind) (driven.SourceParser, error) {
	p, ok := byKind[kind]
	if !ok {
		return nil, fmt.Errorf("%w: no parser for kind %s", domain.ErrUnsupportedFormat, kind)
	}
	return p, nil
}
