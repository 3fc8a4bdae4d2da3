package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storysift/storysift-cli/internal/core/domain"
)

func TestForKind(t *testing.T) {
	t.Run("every parseable kind resolves", func(t *testing.T) {
		kinds := []domain.FileKind{
			domain.KindSerializedContainer,
			domain.KindBootstrapDescriptor,
			domain.KindResourceBundle,
			domain.KindProgramAssembly,
			domain.KindResourceStream,
		}
		for _, kind := range kinds {
			p, err := ForKind(kind)
			require.NoError(t, err, "kind %s", kind)
			assert.NotEmpty(t, p.Name())
		}
	})

	t.Run("unparseable kinds report unsupported format", func(t *testing.T) {
		for _, kind := range []domain.FileKind{domain.KindOther, domain.KindDirectory} {
			_, err := ForKind(kind)
			assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
		}
	})
}
