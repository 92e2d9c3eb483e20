package matching

import (
	"regexp"
	"strings"
	"unicode"
)

// numericPrefixPattern matches labels like "0515-Johnson Home" or "801 North".
var numericPrefixPattern = regexp.MustCompile(`^(\d{3,4})[\s-]`)

// numericTokenPattern matches standalone field/site codes inside a query.
var numericTokenPattern = regexp.MustCompile(`^\d{2,6}$`)

// Normalize canonicalizes a display label for comparison: punctuation and
// dashes become spaces, whitespace collapses to single spaces, everything
// lowercased. Idempotent.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Squish is Normalize with all whitespace removed ("0515 johnson" → "0515johnson").
func Squish(s string) string {
	return strings.ReplaceAll(Normalize(s), " ", "")
}

// Tokens splits the normalized form on spaces, discarding empty tokens.
func Tokens(s string) []string {
	return strings.Fields(Normalize(s))
}

// NumericPrefix extracts a 3-4 digit prefix from a label, returning both the
// zero-padded form and its integer form ("0515" and "515"). ok is false when
// the label carries no such prefix.
func NumericPrefix(label string) (padded string, integer string, ok bool) {
	m := numericPrefixPattern.FindStringSubmatch(strings.TrimSpace(label))
	if m == nil {
		return "", "", false
	}
	padded = m[1]
	integer = strings.TrimLeft(padded, "0")
	if integer == "" {
		integer = "0"
	}
	return padded, integer, true
}

// IsNumericToken reports whether tok is a 2-6 digit code eligible for the
// numeric score boost.
func IsNumericToken(tok string) bool {
	return numericTokenPattern.MatchString(tok)
}
