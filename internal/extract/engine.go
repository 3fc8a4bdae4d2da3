package extract

import (
	"context"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/storysift/storysift-cli/internal/core/domain"
	"github.com/storysift/storysift-cli/internal/logger"
)

// Engine recovers text fragments from arbitrary byte buffers. It is
// stateless and safe for concurrent use.
type Engine struct{}

// NewEngine creates an extraction engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Extract recovers text fragments from data. Buffers larger than the
// streaming threshold are split into fixed-size chunks processed
// independently, each under the per-buffer fragment cap and all under
// the global chunk ceiling. Cancellation is observed at every chunk
// boundary; a cancelled extraction returns the fragments recovered so
// far.
//
// Returned fragments carry content, codec label and byte position;
// provenance and asset attribution are the caller's to stamp.
func (e *Engine) Extract(ctx context.Context, data []byte, sourceID string, cfg domain.ExtractionConfig) []domain.DecodedTextFragment {
	if len(data) == 0 {
		return nil
	}

	if cfg.UseStreaming && len(data) > cfg.StreamingChunkSizeBytes {
		return e.extractChunked(ctx, data, sourceID, cfg)
	}
	return e.extractBuffer(data, sourceID, cfg, 0)
}

// ExtractReader recovers text fragments from r without ever holding
// the whole source in memory: one chunk-sized buffer is reused across
// reads. Chunks are independent, as in Extract, and the context is
// checked before each read. A context error abandons the rest of the
// stream and is returned alongside the fragments recovered so far.
func (e *Engine) ExtractReader(ctx context.Context, r io.Reader, sourceID string, cfg domain.ExtractionConfig, baseOffset int) ([]domain.DecodedTextFragment, error) {
	buf := make([]byte, cfg.StreamingChunkSizeBytes)
	var frags []domain.DecodedTextFragment

	base := baseOffset
	for chunks := 0; ; chunks++ {
		if err := ctx.Err(); err != nil {
			return finishChunked(frags, cfg), err
		}
		if chunks >= cfg.MaxChunksPerSource {
			logger.Warn("chunk ceiling reached for %s after %d chunks", sourceID, chunks)
			break
		}
		n, err := io.ReadFull(r, buf)
		if n > 0 {
			chunkID := fmt.Sprintf("%s#chunk%d", sourceID, chunks)
			frags = append(frags, e.extractBuffer(buf[:n], chunkID, cfg, base)...)
			base += n
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			return finishChunked(frags, cfg), err
		}
	}
	return finishChunked(frags, cfg), nil
}

// extractChunked processes an oversized buffer chunk by chunk. Chunks
// are independent: a run crossing a chunk boundary is recovered as two
// fragments, an accepted trade against unbounded memory.
func (e *Engine) extractChunked(ctx context.Context, data []byte, sourceID string, cfg domain.ExtractionConfig) []domain.DecodedTextFragment {
	chunkSize := cfg.StreamingChunkSizeBytes
	var frags []domain.DecodedTextFragment

	chunks := 0
	for base := 0; base < len(data); base += chunkSize {
		if ctx.Err() != nil {
			break
		}
		if chunks >= cfg.MaxChunksPerSource {
			logger.Warn("chunk ceiling reached for %s after %d chunks", sourceID, chunks)
			break
		}
		end := base + chunkSize
		if end > len(data) {
			end = len(data)
		}
		chunkID := fmt.Sprintf("%s#chunk%d", sourceID, chunks)
		frags = append(frags, e.extractBuffer(data[base:end], chunkID, cfg, base)...)
		chunks++
	}
	return finishChunked(frags, cfg)
}

// finishChunked applies the cross-chunk postprocessing shared by the
// buffered and reader paths.
func finishChunked(frags []domain.DecodedTextFragment, cfg domain.ExtractionConfig) []domain.DecodedTextFragment {
	frags = dedupeFragments(frags)
	if cfg.PrioritizeCJKText {
		sortCJKFirst(frags)
	}
	return frags
}

// extractBuffer runs the fast path and the sliding-window scans over
// one buffer. baseOffset shifts reported byte offsets for chunked
// sources.
func (e *Engine) extractBuffer(data []byte, sourceID string, cfg domain.ExtractionConfig, baseOffset int) []domain.DecodedTextFragment {
	budget := cfg.MaxFragmentsPerBuffer
	var runs []run

	if text, label, ok := decodeWhole(data); ok {
		// Fast path: the whole buffer is already text. Structured data
		// (JSON, XML, YAML) is returned intact rather than fragmented.
		if isStructuredText(text) && isValidText(text, cfg.MinTextLength) {
			return []domain.DecodedTextFragment{{
				SourceFile:    sourceID,
				Content:       truncateRunes(text, cfg.MaxTextLength),
				EncodingLabel: label,
				ByteOffset:    baseOffset,
				ByteLength:    len(data),
				Metadata:      map[string]any{"structured": true},
			}}
		}
		// Unstructured but wholly valid under one codec: scan only that
		// codec's windows. Running the other codecs over a text buffer
		// manufactures fragments out of coincidental byte alignment.
		runs = codecRuns(data, label, &budget)
	} else {
		runs = scanUTF8Runs(data, &budget)
		if budget > 0 {
			runs = append(runs, scanUTF16Runs(data, false, &budget)...)
		}
		if budget > 0 {
			runs = append(runs, scanUTF16Runs(data, true, &budget)...)
		}
		if budget > 0 && cfg.PrioritizeCJKText {
			runs = append(runs, scanShiftJISRuns(data, &budget)...)
		}
	}

	frags := make([]domain.DecodedTextFragment, 0, len(runs))
	for _, r := range runs {
		if !isValidText(r.text, cfg.MinTextLength) {
			continue
		}
		// Shift-JIS acceptance additionally requires CJK content,
		// distinguishing genuine Japanese text from coincidental byte
		// alignment.
		if r.label == labelShiftJIS && !containsCJK(r.text) {
			continue
		}
		frags = append(frags, domain.DecodedTextFragment{
			SourceFile:    sourceID,
			Content:       truncateRunes(r.text, cfg.MaxTextLength),
			EncodingLabel: r.label,
			ByteOffset:    baseOffset + r.offset,
			ByteLength:    r.length,
		})
	}

	frags = dedupeFragments(frags)
	if cfg.PrioritizeCJKText {
		sortCJKFirst(frags)
	}
	if len(frags) > cfg.MaxFragmentsPerBuffer {
		frags = frags[:cfg.MaxFragmentsPerBuffer]
	}
	return frags
}

// codecRuns window-scans a buffer known to be wholly valid under one
// codec.
func codecRuns(data []byte, label string, budget *int) []run {
	switch label {
	case labelUTF8:
		return scanUTF8Runs(data, budget)
	case labelUTF16LE, labelUTF16BE:
		runs := scanUTF16Runs(data[2:], label == labelUTF16BE, budget)
		for i := range runs {
			runs[i].offset += 2 // account for the BOM
		}
		return runs
	case labelShiftJIS:
		return scanShiftJISRuns(data, budget)
	default:
		// UTF-32 with BOM: split the decoded text on control runes.
		text, _, ok := decodeWhole(data)
		if !ok {
			return nil
		}
		return splitTextRuns(text, label, budget)
	}
}

// splitTextRuns breaks already-decoded text into runs at control
// characters. Byte offsets are not meaningful for re-encoded text and
// are reported as zero.
func splitTextRuns(text, label string, budget *int) []run {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return unicode.IsControl(r) && r != '\t' && r != '\n' && r != '\r'
	})
	var runs []run
	for _, f := range fields {
		if *budget <= 0 {
			break
		}
		runs = append(runs, run{text: f, label: label, length: len(f)})
		*budget--
	}
	return runs
}
