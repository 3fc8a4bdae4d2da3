package textlike

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storysift/storysift-cli/internal/core/domain"
)

func TestTextlikeParse(t *testing.T) {
	parser := New(domain.ProvenanceResourceStream)

	t.Run("wraps the buffer in one stamped unit", func(t *testing.T) {
		units, err := parser.Parse(context.Background(), "/game/sharedassets0.resS", []byte("narration"))

		require.NoError(t, err)
		require.Len(t, units, 1)
		assert.Equal(t, "sharedassets0.resS", units[0].Name)
		assert.Equal(t, domain.ProvenanceResourceStream, units[0].Provenance)
		assert.Equal(t, []byte("narration"), units[0].Data)
	})

	t.Run("empty file yields no units", func(t *testing.T) {
		units, err := parser.Parse(context.Background(), "/game/sharedassets0.resS", nil)

		require.NoError(t, err)
		assert.Empty(t, units)
	})
}
