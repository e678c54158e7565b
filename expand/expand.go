// Package expand turns a title's field list into the set of expanded
// trie keys it should be indexed under: the Cartesian product of its
// fields' alternatives, collapsed to full/long/short prefixes.
package expand

import (
	"strings"

	"github.com/go-productmatch/productmatch/field"
)

// Keys enumerates every expanded key a title's field list should be
// inserted under: for each combination in the Cartesian product of
// fields, the full key (all non-skip tokens), the short key (first
// two), and — if longKeys is true — the long key (first three).
// Duplicate keys across combinations are collapsed.
func Keys(fl field.FieldList, longKeys bool) []string {
	if len(fl) == 0 {
		return nil
	}

	seen := make(map[string]struct{})
	var out []string
	add := func(tokens []string, n int) {
		if n <= 0 || len(tokens) == 0 {
			return
		}
		if n > len(tokens) {
			n = len(tokens)
		}
		key := strings.Join(tokens[:n], "/")
		if key == "" {
			return
		}
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}

	combo := make([]field.Alt, len(fl))
	var product func(i int)
	product = func(i int) {
		if i == len(fl) {
			tokens := make([]string, 0, len(combo))
			for _, a := range combo {
				if tok, ok := a.Token(); ok {
					tokens = append(tokens, tok)
				}
			}
			add(tokens, len(tokens))
			if longKeys {
				add(tokens, 3)
			}
			add(tokens, 2)
			return
		}
		for _, alt := range fl[i] {
			combo[i] = alt
			product(i + 1)
		}
	}
	product(0)

	return out
}
