package extract

import (
	"bytes"
	"encoding/binary"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// Codec labels attached to fragments.
const (
	labelUTF8     = "utf-8"
	labelUTF16LE  = "utf-16le"
	labelUTF16BE  = "utf-16be"
	labelUTF32LE  = "utf-32le"
	labelUTF32BE  = "utf-32be"
	labelShiftJIS = "shift-jis"
)

// decodeWhole attempts to decode the entire buffer as text. Encoding
// is chosen by BOM sniffing first, then a strict UTF-8 validation,
// then a Shift-JIS decode that is accepted only when the result
// contains CJK characters.
func decodeWhole(b []byte) (text, label string, ok bool) {
	switch {
	case len(b) >= 4 && bytes.HasPrefix(b, []byte{0xFF, 0xFE, 0x00, 0x00}):
		return decodeUTF32(b[4:], false), labelUTF32LE, true
	case len(b) >= 4 && bytes.HasPrefix(b, []byte{0x00, 0x00, 0xFE, 0xFF}):
		return decodeUTF32(b[4:], true), labelUTF32BE, true
	case bytes.HasPrefix(b, []byte{0xEF, 0xBB, 0xBF}):
		rest := b[3:]
		if utf8.Valid(rest) {
			return string(rest), labelUTF8, true
		}
		return "", "", false
	case bytes.HasPrefix(b, []byte{0xFF, 0xFE}):
		return decodeUTF16(b[2:], false), labelUTF16LE, true
	case bytes.HasPrefix(b, []byte{0xFE, 0xFF}):
		return decodeUTF16(b[2:], true), labelUTF16BE, true
	}

	if utf8.Valid(b) {
		return string(b), labelUTF8, true
	}

	if decoded, err := decodeShiftJIS(b); err == nil && containsCJK(decoded) {
		return decoded, labelShiftJIS, true
	}

	return "", "", false
}

// decodeUTF16 decodes 2-byte code units in the given byte order.
// A trailing odd byte is ignored.
func decodeUTF16(b []byte, bigEndian bool) string {
	units := make([]uint16, 0, len(b)/2)
	for i := 0; i+1 < len(b); i += 2 {
		if bigEndian {
			units = append(units, binary.BigEndian.Uint16(b[i:]))
		} else {
			units = append(units, binary.LittleEndian.Uint16(b[i:]))
		}
	}
	return string(utf16.Decode(units))
}

// decodeUTF32 decodes 4-byte code units in the given byte order.
func decodeUTF32(b []byte, bigEndian bool) string {
	var sb []rune
	for i := 0; i+3 < len(b); i += 4 {
		var u uint32
		if bigEndian {
			u = binary.BigEndian.Uint32(b[i:])
		} else {
			u = binary.LittleEndian.Uint32(b[i:])
		}
		if u > 0x10FFFF {
			u = 0xFFFD
		}
		sb = append(sb, rune(u))
	}
	return string(sb)
}

// decodeShiftJIS decodes the buffer as Shift-JIS.
func decodeShiftJIS(b []byte) (string, error) {
	out, _, err := transform.Bytes(japanese.ShiftJIS.NewDecoder(), b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// isCJKRune reports whether r falls in the CJK symbol, kana, unified
// ideograph, Hangul or fullwidth-forms ranges.
func isCJKRune(r rune) bool {
	switch {
	case r >= 0x3000 && r <= 0x30FF: // CJK symbols, hiragana, katakana
		return true
	case r >= 0x4E00 && r <= 0x9FFF: // unified ideographs
		return true
	case r >= 0xAC00 && r <= 0xD7AF: // hangul syllables
		return true
	case r >= 0xFF00 && r <= 0xFFEF: // halfwidth and fullwidth forms
		return true
	default:
		return false
	}
}

// containsCJK reports whether any rune of s is CJK.
func containsCJK(s string) bool {
	for _, r := range s {
		if isCJKRune(r) {
			return true
		}
	}
	return false
}

// isStructuredText reports whether decoded whole-buffer text looks
// like structured data (JSON, XML, YAML document marker). Such buffers
// are kept whole instead of being fragmented.
func isStructuredText(s string) bool {
	trimmed := trimLeadingSpace(s)
	if trimmed == "" {
		return false
	}
	switch trimmed[0] {
	case '{', '[', '<':
		return true
	}
	return len(trimmed) >= 3 && trimmed[:3] == "---"
}

// trimLeadingSpace trims leading ASCII whitespace without allocating
// for the common already-trimmed case.
func trimLeadingSpace(s string) string {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r') {
		i++
	}
	return s[i:]
}
