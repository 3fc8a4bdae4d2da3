package extract

import (
	"encoding/binary"
	"unicode/utf8"
)

// run is a maximal span of bytes classified printable under one codec.
type run struct {
	text   string
	label  string
	offset int
	length int
}

// isPrintableByte accepts ASCII-printable bytes plus tab, LF and CR.
func isPrintableByte(c byte) bool {
	return (c >= 0x20 && c <= 0x7E) || c == '\t' || c == '\n' || c == '\r'
}

// scanUTF8Runs finds maximal runs of bytes that are ASCII-printable or
// part of valid multi-byte UTF-8 sequences. budget bounds how many
// runs may still be emitted; the scan stops early at zero.
func scanUTF8Runs(data []byte, budget *int) []run {
	var runs []run
	start := -1

	flush := func(end int) bool {
		if start < 0 {
			return true
		}
		runs = append(runs, run{
			text:   string(data[start:end]),
			label:  labelUTF8,
			offset: start,
			length: end - start,
		})
		start = -1
		*budget--
		return *budget > 0
	}

	i := 0
	for i < len(data) {
		c := data[i]
		if isPrintableByte(c) {
			if start < 0 {
				start = i
			}
			i++
			continue
		}
		if c >= 0x80 {
			r, size := utf8.DecodeRune(data[i:])
			if r != utf8.RuneError && size > 1 {
				if start < 0 {
					start = i
				}
				i += size
				continue
			}
		}
		if !flush(i) {
			return runs
		}
		i++
	}
	flush(len(data))
	return runs
}

// isPrintableUnit accepts UTF-16 code units that are ASCII-printable,
// tab/LF/CR, or in the CJK kana/ideograph/fullwidth/Hangul ranges.
func isPrintableUnit(u uint16) bool {
	if (u >= 0x20 && u <= 0x7E) || u == '\t' || u == '\n' || u == '\r' {
		return true
	}
	return isCJKRune(rune(u))
}

// scanUTF16Runs finds maximal runs of printable 2-byte code units in
// the given byte order.
func scanUTF16Runs(data []byte, bigEndian bool, budget *int) []run {
	label := labelUTF16LE
	if bigEndian {
		label = labelUTF16BE
	}

	var runs []run
	var units []uint16
	start := -1

	flush := func(end int) bool {
		if start < 0 {
			return true
		}
		runs = append(runs, run{
			text:   decodeUnits(units),
			label:  label,
			offset: start,
			length: end - start,
		})
		units = units[:0]
		start = -1
		*budget--
		return *budget > 0
	}

	for i := 0; i+1 < len(data); i += 2 {
		var u uint16
		if bigEndian {
			u = binary.BigEndian.Uint16(data[i:])
		} else {
			u = binary.LittleEndian.Uint16(data[i:])
		}
		if isPrintableUnit(u) {
			if start < 0 {
				start = i
			}
			units = append(units, u)
			continue
		}
		if !flush(i) {
			return runs
		}
	}
	flush(len(data) &^ 1)
	return runs
}

// decodeUnits copies the accumulated units into a string. The slice is
// reused between runs, so the copy is required.
func decodeUnits(units []uint16) string {
	out := make([]rune, 0, len(units))
	for _, u := range units {
		out = append(out, rune(u))
	}
	return string(out)
}

// Shift-JIS byte classes.
func isShiftJISLead(c byte) bool {
	return (c >= 0x81 && c <= 0x9F) || (c >= 0xE0 && c <= 0xEF)
}

func isShiftJISTrail(c byte) bool {
	return c >= 0x40 && c <= 0xFC && c != 0x7F
}

func isHalfWidthKana(c byte) bool {
	return c >= 0xA1 && c <= 0xDF
}

// scanShiftJISRuns finds maximal runs of bytes acceptable as Shift-JIS
// text: ASCII printable, control whitespace, valid lead+trail pairs,
// or half-width kana. Runs that fail to decode are dropped.
func scanShiftJISRuns(data []byte, budget *int) []run {
	var runs []run
	start := -1

	flush := func(end int) bool {
		if start < 0 {
			return true
		}
		s := start
		start = -1
		decoded, err := decodeShiftJIS(data[s:end])
		if err != nil {
			return true
		}
		runs = append(runs, run{
			text:   decoded,
			label:  labelShiftJIS,
			offset: s,
			length: end - s,
		})
		*budget--
		return *budget > 0
	}

	i := 0
	for i < len(data) {
		c := data[i]
		switch {
		case isPrintableByte(c):
			if start < 0 {
				start = i
			}
			i++
		case isShiftJISLead(c) && i+1 < len(data) && isShiftJISTrail(data[i+1]):
			if start < 0 {
				start = i
			}
			i += 2
		case isHalfWidthKana(c):
			if start < 0 {
				start = i
			}
			i++
		default:
			if !flush(i) {
				return runs
			}
			i++
		}
	}
	flush(len(data))
	return runs
}
