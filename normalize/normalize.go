// Package normalize implements the term-bag normalizer of spec.md
// §4.1: MAC rewriting, Unicode-aware case folding, order-preserving
// dedupe, and filtering against the prefix term set.
package normalize

import (
	"golang.org/x/text/cases"

	"github.com/go-productmatch/productmatch/macvendor"
)

// Normalizer turns raw terms (from a uname banner, a DHCP
// fingerprint, a user agent, ...) into the lowercased, deduplicated,
// trie-eligible term list the query engine permutes over.
type Normalizer struct {
	// MACLookup rewrites MAC-shaped terms into vendor tokens. Nil
	// means MAC terms are left as ordinary tokens (and will simply
	// fail the PrefixTerms filter, per spec.md §4.5).
	MACLookup macvendor.Lookup

	// PrefixTerms is the flat set of every non-skip token appearing
	// across all fields of all loaded titles (spec.md §3 "Prefix
	// term set"). A normalized term survives only if it is a member.
	PrefixTerms map[string]struct{}

	caser cases.Caser
}

// New returns a Normalizer that filters against prefixTerms (already
// lowercase) and optionally rewrites MAC-shaped terms via lookup.
func New(prefixTerms map[string]struct{}, lookup macvendor.Lookup) *Normalizer {
	return &Normalizer{
		MACLookup:   lookup,
		PrefixTerms: prefixTerms,
		caser:       cases.Fold(cases.Compact),
	}
}

// Normalize applies the four rules of spec.md §4.1, in order, to the
// given raw terms and returns the resulting ordered, deduplicated,
// filtered term list. An empty input (or one that normalizes to
// empty) returns nil, short-circuiting before any trie work —
// matching spec.md's "Failure" clause.
func (n *Normalizer) Normalize(terms ...string) []string {
	if len(terms) == 0 {
		return nil
	}

	rewritten := n.rewriteMAC(terms)

	seen := make(map[string]struct{}, len(rewritten))
	var out []string
	for _, t := range rewritten {
		folded := n.caser.String(t)
		if _, dup := seen[folded]; dup {
			continue
		}
		seen[folded] = struct{}{}
		if _, ok := n.PrefixTerms[folded]; !ok {
			continue
		}
		out = append(out, folded)
	}
	return out
}

func (n *Normalizer) rewriteMAC(terms []string) []string {
	if n.MACLookup == nil {
		return terms
	}
	var out []string
	for _, t := range terms {
		if !macvendor.IsMAC(t) {
			out = append(out, t)
			continue
		}
		vendor, err := n.MACLookup.Lookup(t)
		if err != nil {
			// Lookup-shim failure: recovered locally, keep the raw term.
			out = append(out, t)
			continue
		}
		out = append(out, macvendor.SplitVendor(vendor)...)
	}
	return out
}
