package extract

import (
	"bytes"
	"encoding/binary"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/storysift/storysift-cli/internal/core/domain"
)

// Structured-record scan limits.
const (
	// maxArrayElements is the exclusive upper bound on a plausible
	// element count.
	maxArrayElements = 1000

	// maxElementLength is the sanity cap on one string element.
	maxElementLength = 4096

	// labelSearchWindow is how far back from an accepted array the
	// label search looks.
	labelSearchWindow = 200
)

// narrativeKeywords is the curated bilingual label vocabulary, checked
// before falling back to the identifier pattern.
var narrativeKeywords = []string{
	"dialogue", "dialog", "message", "conversation", "scenario",
	"caption", "subtitle", "speaker", "narration", "story", "script",
	"text",
	"セリフ", "台詞", "会話", "メッセージ", "シナリオ", "字幕", "名前", "物語",
}

// identifierPattern matches camel-case identifiers with a
// narrative-suggestive suffix.
var identifierPattern = regexp.MustCompile(
	`[A-Za-z][A-Za-z0-9_]*(?:Text|Texts|Message|Messages|Dialogue|Dialog|Line|Lines|Caption|Captions|Name|Names|Script|Story)`)

// recordElement is one parsed string element of a candidate array.
type recordElement struct {
	text   string
	offset int
	length int
}

// FindSerializedStringArrays scans every byte offset for length-prefixed
// string-array records: a little-endian element count followed by that
// many (length, UTF-8 bytes) pairs, each element padded to a 4-byte
// boundary. An array is accepted only if it parses completely, yields
// at least two dialogue-like strings, and at least half of the declared
// elements decode validly.
//
// The scan deliberately advances one byte at a time; worst case O(n).
// Chunked processing upstream bounds the total cost.
func (e *Engine) FindSerializedStringArrays(data []byte, sourceID string, cfg domain.ExtractionConfig) []domain.DecodedTextFragment {
	var frags []domain.DecodedTextFragment

	for off := 0; off+4 <= len(data); off++ {
		count := int(int32(binary.LittleEndian.Uint32(data[off:])))
		if count <= 0 || count >= maxArrayElements {
			continue
		}

		elems, end, ok := parseStringArray(data, off+4, count)
		if !ok {
			continue
		}

		valid := elems[:0]
		for _, el := range elems {
			if isValidText(el.text, cfg.MinTextLength) && containsLetter(el.text) {
				valid = append(valid, el)
			}
		}
		if len(valid) < 2 || len(valid)*2 < count {
			continue
		}

		label := findFieldLabel(data, off)
		for _, el := range valid {
			frags = append(frags, domain.DecodedTextFragment{
				SourceFile:    sourceID,
				Content:       truncateRunes(el.text, cfg.MaxTextLength),
				Provenance:    domain.ProvenanceStructuredRecord,
				EncodingLabel: labelUTF8,
				ByteOffset:    el.offset,
				ByteLength:    el.length,
				FieldLabel:    label,
			})
			if len(frags) >= cfg.MaxFragmentsPerBuffer {
				return frags
			}
		}

		// Resume after the consumed array rather than re-matching its
		// interior.
		off = end - 1
	}

	return frags
}

// parseStringArray consumes count length-prefixed strings starting at
// pos. It aborts at the first invalid length or truncation.
func parseStringArray(data []byte, pos, count int) ([]recordElement, int, bool) {
	elems := make([]recordElement, 0, count)
	for k := 0; k < count; k++ {
		if pos+4 > len(data) {
			return nil, 0, false
		}
		l := int(int32(binary.LittleEndian.Uint32(data[pos:])))
		if l < 0 || l > maxElementLength {
			return nil, 0, false
		}
		pos += 4
		if pos+l > len(data) {
			return nil, 0, false
		}
		raw := data[pos : pos+l]
		if utf8.Valid(raw) {
			elems = append(elems, recordElement{text: string(raw), offset: pos, length: l})
		}
		pos += l
		pos = (pos + 3) &^ 3
	}
	return elems, pos, true
}

// findFieldLabel searches the bytes immediately preceding an accepted
// array for a labeling token: first the curated keyword vocabulary,
// then the identifier pattern.
func findFieldLabel(data []byte, arrayOffset int) string {
	lo := arrayOffset - labelSearchWindow
	if lo < 0 {
		lo = 0
	}
	window := data[lo:arrayOffset]
	lowered := bytes.ToLower(window)

	for _, kw := range narrativeKeywords {
		needle := []byte(strings.ToLower(kw))
		if bytes.Contains(lowered, needle) {
			return kw
		}
	}

	if m := identifierPattern.Find(asciiWindow(window)); m != nil {
		return string(m)
	}
	return ""
}

// asciiWindow blanks non-printable bytes so the identifier regex
// cannot match across binary garbage.
func asciiWindow(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		if c >= 0x20 && c <= 0x7E {
			out[i] = c
		} else {
			out[i] = ' '
		}
	}
	return out
}
