package filter

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// fuzzyContains reports whether some run of text is within tolerance edits
// of pattern. Windows between len(pattern)-tolerance and
// len(pattern)+tolerance runes are compared, so a larger tolerance only
// ever adds candidates and raises the threshold.
func fuzzyContains(text, pattern string, tolerance int) bool {
	if tolerance <= 0 {
		return strings.Contains(text, pattern)
	}

	p := []rune(pattern)
	if len(p) <= tolerance {
		return true
	}
	if strings.Contains(text, pattern) {
		return true
	}

	t := []rune(text)
	minLen := len(p) - tolerance
	if len(t) < minLen {
		return false
	}
	maxLen := len(p) + tolerance
	if maxLen > len(t) {
		maxLen = len(t)
	}
	for size := minLen; size <= maxLen; size++ {
		for i := 0; i+size <= len(t); i++ {
			if levenshtein.ComputeDistance(string(t[i:i+size]), pattern) <= tolerance {
				return true
			}
		}
	}
	return false
}
