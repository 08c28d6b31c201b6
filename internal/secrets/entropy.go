package secrets

import (
	"math"
	"strings"
)

// ShannonEntropy calculates the Shannon entropy of a string. Higher
// entropy indicates more randomness, which is characteristic of
// real credentials as opposed to placeholder values.
func ShannonEntropy(s string) float64 {
	if len(s) == 0 {
		return 0
	}

	freq := make(map[rune]int)
	for _, r := range s {
		freq[r]++
	}

	length := float64(len(s))
	var entropy float64
	for _, count := range freq {
		p := float64(count) / length
		entropy -= p * math.Log2(p)
	}
	return entropy
}

// IsProbablySecret combines entropy and placeholder heuristics to
// decide whether a matched string is worth redacting.
func IsProbablySecret(s string, minEntropy float64) bool {
	if len(s) < 8 {
		return false
	}
	if ShannonEntropy(s) < minEntropy {
		return false
	}
	return !isLikelyPlaceholder(s)
}

var placeholderFragments = []string{
	"example",
	"placeholder",
	"your_",
	"xxx",
	"changeme",
	"password",
	"secret",
	"dummy",
	"sample",
	"test123",
	"abc123",
	"foobar",
	"<your",
	"${",
	"{{",
	"replace",
	"insert",
}

func isLikelyPlaceholder(s string) bool {
	lower := strings.ToLower(s)
	for _, frag := range placeholderFragments {
		if strings.Contains(lower, frag) {
			return true
		}
	}
	return false
}
