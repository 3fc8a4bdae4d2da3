package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultExtractionConfig(t *testing.T) {
	cfg := DefaultExtractionConfig()

	assert.True(t, cfg.ExtractPlainText)
	assert.True(t, cfg.ExtractStructuredRecords)
	assert.True(t, cfg.ProcessSidecarStreams)
	assert.True(t, cfg.AttemptDecryption)
	assert.Equal(t, DefaultMinTextLength, cfg.MinTextLength)
	assert.Equal(t, DefaultMaxTextLength, cfg.MaxTextLength)
	assert.Equal(t, DefaultMaxParallelism, cfg.MaxParallelism)
	assert.Equal(t, DefaultStreamingChunkSize, cfg.StreamingChunkSizeBytes)
	assert.Empty(t, cfg.Keywords)
	assert.Nil(t, cfg.DecryptionKey)
}

func TestExtractionConfig_Normalise(t *testing.T) {
	t.Run("clamps zero values to defaults", func(t *testing.T) {
		var cfg ExtractionConfig
		cfg.Normalise()

		assert.Equal(t, DefaultMinTextLength, cfg.MinTextLength)
		assert.Equal(t, DefaultMaxTextLength, cfg.MaxTextLength)
		assert.Equal(t, DefaultMaxParallelism, cfg.MaxParallelism)
		assert.Equal(t, DefaultMaxFragmentsPerBuffer, cfg.MaxFragmentsPerBuffer)
		assert.Equal(t, DefaultMaxChunksPerSource, cfg.MaxChunksPerSource)
	})

	t.Run("max below min is reset", func(t *testing.T) {
		cfg := DefaultExtractionConfig()
		cfg.MinTextLength = 50
		cfg.MaxTextLength = 10
		cfg.Normalise()

		assert.Equal(t, 50, cfg.MinTextLength)
		assert.Equal(t, DefaultMaxTextLength, cfg.MaxTextLength)
	})

	t.Run("negative timeout is reset", func(t *testing.T) {
		cfg := DefaultExtractionConfig()
		cfg.PerFileTimeout = -time.Second
		cfg.Normalise()

		assert.Equal(t, DefaultPerFileTimeout, cfg.PerFileTimeout)
	})

	t.Run("valid values pass through unchanged", func(t *testing.T) {
		cfg := DefaultExtractionConfig()
		cfg.MaxParallelism = 2
		cfg.MinTextLength = 5
		cfg.Normalise()

		assert.Equal(t, 2, cfg.MaxParallelism)
		assert.Equal(t, 5, cfg.MinTextLength)
	})
}
