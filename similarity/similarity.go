// Package similarity pins the Ratcliff/Obershelp ratio used to refine
// a bucket of approximate matches down to the single best title
// (spec.md §4.4 step 6, §9 "pin a reference implementation"). It is a
// thin, deliberately-fixed wrapper over go-difflib's SequenceMatcher,
// which is itself the canonical Go port of the difflib.SequenceMatcher
// the original Python matcher calls directly.
package similarity

import (
	"unicode/utf8"

	"github.com/pmezard/go-difflib/difflib"
)

// IsJunk reports whether a rune (passed as a one-rune string, matching
// difflib's per-element callback shape) should be ignored when scoring
// similarity. The default, matching spec.md §4.4, treats "-" as junk.
type IsJunk func(elem string) bool

// DefaultJunk is the spec-mandated junk predicate: it marks "-" as
// junk. As in difflib, the predicate applies to the second sequence
// only (b, the query in Ratio(title, query)), so a junk hyphen there
// never starts a matching block; it still counts toward the combined
// length the ratio divides by, and hyphens in a are ordinary runes.
func DefaultJunk(elem string) bool { return elem == "-" }

func runes(s string) []string {
	out := make([]string, 0, utf8.RuneCountInString(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// Ratio returns the Ratcliff/Obershelp similarity ratio between a and
// b, in [0, 1], using DefaultJunk.
func Ratio(a, b string) float64 {
	return RatioWithJunk(a, b, DefaultJunk)
}

// RatioWithJunk is Ratio with a caller-supplied junk predicate.
func RatioWithJunk(a, b string, isJunk IsJunk) float64 {
	m := difflib.NewMatcherWithJunk(runes(a), runes(b), false, isJunk)
	return m.Ratio()
}
