// Package field defines the term-bag shape a title is matched against:
// an ordered list of fields, each field a small set of interchangeable
// alternatives, where an alternative is either a token or the skip
// sentinel.
package field

import (
	"strings"

	"github.com/juju/errors"
)

// Alt is one alternative within a Field: either a concrete token or the
// skip sentinel. It is a tagged variant rather than an ambient nil/null,
// per the design note that skip must be representable explicitly.
type Alt struct {
	token string
	skip  bool
}

// Token returns a token alternative. The token must be a non-empty
// lowercase string containing no "/".
func Token(s string) Alt { return Alt{token: s} }

// Skip returns the skip alternative: this field may be omitted entirely
// when an expanded key is built from it.
func Skip() Alt { return Alt{skip: true} }

// IsSkip reports whether a is the skip sentinel.
func (a Alt) IsSkip() bool { return a.skip }

// Token returns the token text and whether a actually holds one.
func (a Alt) Token() (string, bool) {
	if a.skip {
		return "", false
	}
	return a.token, true
}

func (a Alt) String() string {
	if a.skip {
		return "<skip>"
	}
	return a.token
}

// Field is a non-empty set of alternatives for one positional slot. At
// most one alternative in a Field may be the skip sentinel; order among
// alternatives carries no meaning.
type Field []Alt

// HasSkip reports whether the field includes the skip alternative.
func (f Field) HasSkip() bool {
	for _, a := range f {
		if a.IsSkip() {
			return true
		}
	}
	return false
}

// FieldList is the ordered sequence of fields for one title. Field order
// is significant.
type FieldList []Field

// Validate checks the structural invariants from spec.md §3: fields are
// non-empty, tokens are non-empty lowercase strings with no "/", and at
// most one skip appears per field.
func (fl FieldList) Validate() error {
	for i, f := range fl {
		if len(f) == 0 {
			return errors.NotValidf("field %d: empty field", i)
		}
		skips := 0
		for j, a := range f {
			if a.IsSkip() {
				skips++
				continue
			}
			tok := a.token
			if tok == "" {
				return errors.NotValidf("field %d alt %d: empty token", i, j)
			}
			if strings.Contains(tok, "/") {
				return errors.NotValidf("field %d alt %d: token %q contains reserved separator \"/\"", i, j, tok)
			}
			if tok != strings.ToLower(tok) {
				return errors.NotValidf("field %d alt %d: token %q is not lowercase", i, j, tok)
			}
		}
		if skips > 1 {
			return errors.NotValidf("field %d: more than one skip alternative", i)
		}
	}
	return nil
}

// Tokens returns every non-skip token appearing anywhere in the field
// list, in field/alternative order, with duplicates retained (callers
// that want a set should use it to build one, e.g. the prefix term
// set in package match).
func (fl FieldList) Tokens() []string {
	var out []string
	for _, f := range fl {
		for _, a := range f {
			if tok, ok := a.Token(); ok {
				out = append(out, tok)
			}
		}
	}
	return out
}
