// Package textnorm provides the text normalization used by every matching
// component so that keyword, product and FAQ comparisons agree on a single
// canonical form.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize lowercases the input, strips diacritics (NFD decomposition
// followed by removal of combining marks), replaces punctuation and symbols
// with spaces and collapses whitespace. It is a pure function and idempotent:
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = stripMarks(norm.NFD.String(s))

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			b.WriteRune(' ')
			continue
		}
		b.WriteRune(r)
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// Words returns the normalized whole words of s.
func Words(s string) []string {
	n := Normalize(s)
	if n == "" {
		return nil
	}
	return strings.Split(n, " ")
}

// ContainsWord reports whether the normalized form of s contains word as a
// standalone word (or word sequence) rather than as a substring of a longer
// word. Both arguments are normalized before comparison.
func ContainsWord(s, word string) bool {
	w := Normalize(word)
	if w == "" {
		return false
	}
	return strings.Contains(" "+Normalize(s)+" ", " "+w+" ")
}

// Stem reduces a normalized Portuguese word to a crude singular form so that
// "portoes" and "portao", or "produtos" and "produto", compare equal. It only
// handles the regular plural endings; it is not a linguistic stemmer.
func Stem(w string) string {
	switch {
	case len(w) > 3 && strings.HasSuffix(w, "oes"):
		return w[:len(w)-3] + "ao"
	case len(w) > 3 && strings.HasSuffix(w, "aes"):
		return w[:len(w)-3] + "ao"
	case len(w) > 4 && strings.HasSuffix(w, "ais"):
		return w[:len(w)-2] + "l"
	case len(w) > 3 && strings.HasSuffix(w, "ns"):
		return w[:len(w)-2] + "m"
	case len(w) > 3 && strings.HasSuffix(w, "s"):
		return w[:len(w)-1]
	default:
		return w
	}
}

// stripMarks removes Unicode combining marks from an NFD-decomposed string.
func stripMarks(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
