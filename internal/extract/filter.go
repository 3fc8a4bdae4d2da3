package extract

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/storysift/storysift-cli/internal/core/domain"
)

// maxControlRatio is the accepted share of control characters (outside
// tab/LF/CR) before a run is rejected as binary noise.
const maxControlRatio = 0.10

// isValidText applies the fragment validity filter: non-empty after
// trimming, no NUL, limited control characters, not all digits or
// whitespace, and at least minLen characters.
func isValidText(s string, minLen int) bool {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return false
	}
	if strings.ContainsRune(s, 0) {
		return false
	}

	total := 0
	control := 0
	allDigitOrSpace := true
	for _, r := range s {
		total++
		if unicode.IsControl(r) && r != '\t' && r != '\n' && r != '\r' {
			control++
		}
		if !unicode.IsDigit(r) && !unicode.IsSpace(r) {
			allDigitOrSpace = false
		}
	}
	if total == 0 {
		return false
	}
	if float64(control)/float64(total) > maxControlRatio {
		return false
	}
	if allDigitOrSpace {
		return false
	}

	return utf8.RuneCountInString(trimmed) >= minLen
}

// containsLetter reports whether s has at least one Unicode letter.
func containsLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// truncateRunes cuts s at max characters.
func truncateRunes(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}

// dedupeFragments drops fragments whose trimmed content has appeared
// before. First occurrence wins; discovery order is preserved.
func dedupeFragments(frags []domain.DecodedTextFragment) []domain.DecodedTextFragment {
	seen := make(map[string]struct{}, len(frags))
	out := frags[:0]
	for _, f := range frags {
		key := strings.TrimSpace(f.Content)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, f)
	}
	return out
}

// sortCJKFirst ranks fragments containing CJK script first, longer
// content first within each group. The sort is stable so discovery
// order breaks ties.
func sortCJKFirst(frags []domain.DecodedTextFragment) {
	sort.SliceStable(frags, func(i, j int) bool {
		ci, cj := containsCJK(frags[i].Content), containsCJK(frags[j].Content)
		if ci != cj {
			return ci
		}
		return utf8.RuneCountInString(frags[i].Content) > utf8.RuneCountInString(frags[j].Content)
	})
}
