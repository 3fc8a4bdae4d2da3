package domain

import "time"

// Default configuration bounds.
const (
	// DefaultMinTextLength is the minimum accepted fragment length in
	// characters.
	DefaultMinTextLength = 2

	// DefaultMaxTextLength is the maximum accepted fragment length in
	// characters; longer runs are truncated.
	DefaultMaxTextLength = 10000

	// DefaultMaxParallelism bounds the worker pool. Deliberately small:
	// unconstrained parallelism over many large binary files starves the
	// whole process.
	DefaultMaxParallelism = 3

	// DefaultStreamingChunkSize is the chunk size for oversized sources.
	DefaultStreamingChunkSize = 8 * 1024 * 1024

	// DefaultMaxFragmentsPerBuffer caps fragments recovered from a
	// single buffer; the scan stops early once reached.
	DefaultMaxFragmentsPerBuffer = 10000

	// DefaultMaxChunksPerSource caps streamed chunks per source so one
	// pathological file cannot starve the batch.
	DefaultMaxChunksPerSource = 512

	// DefaultPerFileTimeout bounds the processing of one file. A file
	// that times out is abandoned, not retried.
	DefaultPerFileTimeout = 2 * time.Minute
)

// ExtractionConfig holds every recognised extraction option. A zero
// value is not usable; construct via DefaultExtractionConfig or call
// Normalise before use.
type ExtractionConfig struct {
	// ExtractPlainText enables the plain text scan over container,
	// bundle and stream payloads.
	ExtractPlainText bool `toml:"extract_plain_text"`

	// ExtractStructuredRecords enables the length-prefixed string-array
	// record scan.
	ExtractStructuredRecords bool `toml:"extract_structured_records"`

	// ExtractAssemblyStrings enables literal mining from managed
	// assemblies.
	ExtractAssemblyStrings bool `toml:"extract_assembly_strings"`

	// ExtractRawBinaryFallback enables the raw scan over payloads whose
	// header validation failed.
	ExtractRawBinaryFallback bool `toml:"extract_raw_binary_fallback"`

	// ProcessSidecarStreams enables extraction from linked resource
	// streams.
	ProcessSidecarStreams bool `toml:"process_sidecar_streams"`

	// AttemptDecryption runs the encryption heuristics over flagged
	// payloads before extraction.
	AttemptDecryption bool `toml:"attempt_decryption"`

	// Keywords, when non-empty, keeps only fragments containing at
	// least one keyword (case-insensitive).
	Keywords []string `toml:"keywords"`

	// ExcludeFilePatterns skips files whose base name contains any of
	// these substrings (case-insensitive).
	ExcludeFilePatterns []string `toml:"exclude_file_patterns"`

	// MinTextLength is the minimum fragment length in characters.
	MinTextLength int `toml:"min_text_length"`

	// MaxTextLength is the maximum fragment length in characters.
	MaxTextLength int `toml:"max_text_length"`

	// UseParallelProcessing enables the bounded worker pool.
	UseParallelProcessing bool `toml:"use_parallel_processing"`

	// MaxParallelism bounds concurrent file tasks.
	MaxParallelism int `toml:"max_parallelism"`

	// PerFileTimeout bounds one file's processing. Zero disables it.
	PerFileTimeout time.Duration `toml:"per_file_timeout"`

	// UseStreaming splits oversized sources into independent chunks.
	UseStreaming bool `toml:"use_streaming"`

	// StreamingChunkSizeBytes is both the streaming threshold and the
	// chunk size.
	StreamingChunkSizeBytes int `toml:"streaming_chunk_size_bytes"`

	// MaxFragmentsPerBuffer caps fragments per buffer.
	MaxFragmentsPerBuffer int `toml:"max_fragments_per_buffer"`

	// MaxChunksPerSource caps streamed chunks per source.
	MaxChunksPerSource int `toml:"max_chunks_per_source"`

	// PrioritizeCJKText enables the Shift-JIS pass and ranks fragments
	// containing CJK script first.
	PrioritizeCJKText bool `toml:"prioritize_cjk_text"`

	// DecryptionKey is the optional externally supplied key.
	DecryptionKey []byte `toml:"-"`
}

// DefaultExtractionConfig returns the recommended configuration.
func DefaultExtractionConfig() ExtractionConfig {
	return ExtractionConfig{
		ExtractPlainText:         true,
		ExtractStructuredRecords: true,
		ExtractAssemblyStrings:   true,
		ExtractRawBinaryFallback: true,
		ProcessSidecarStreams:    true,
		AttemptDecryption:        true,
		MinTextLength:            DefaultMinTextLength,
		MaxTextLength:            DefaultMaxTextLength,
		UseParallelProcessing:    true,
		MaxParallelism:           DefaultMaxParallelism,
		PerFileTimeout:           DefaultPerFileTimeout,
		UseStreaming:             true,
		StreamingChunkSizeBytes:  DefaultStreamingChunkSize,
		MaxFragmentsPerBuffer:    DefaultMaxFragmentsPerBuffer,
		MaxChunksPerSource:       DefaultMaxChunksPerSource,
		PrioritizeCJKText:        false,
	}
}

// Normalise clamps nonsense values back into usable ranges. It never
// rejects a configuration; the only fatal configuration error is a
// missing root path, which the orchestrator checks.
func (c *ExtractionConfig) Normalise() {
	if c.MinTextLength < 1 {
		c.MinTextLength = DefaultMinTextLength
	}
	if c.MaxTextLength < c.MinTextLength {
		c.MaxTextLength = DefaultMaxTextLength
	}
	if c.MaxParallelism < 1 {
		c.MaxParallelism = DefaultMaxParallelism
	}
	if c.StreamingChunkSizeBytes < 64*1024 {
		c.StreamingChunkSizeBytes = DefaultStreamingChunkSize
	}
	if c.MaxFragmentsPerBuffer < 1 {
		c.MaxFragmentsPerBuffer = DefaultMaxFragmentsPerBuffer
	}
	if c.MaxChunksPerSource < 1 {
		c.MaxChunksPerSource = DefaultMaxChunksPerSource
	}
	if c.PerFileTimeout < 0 {
		c.PerFileTimeout = DefaultPerFileTimeout
	}
}
