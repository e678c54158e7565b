// Package match implements the Query Engine of spec.md §4.4: the
// component that ties the trie index, key expander, normalizer, and
// similarity ratio together into a single search(terms...) → titles
// operation.
package match

import (
	"sort"
	"strings"
	"sync"

	"github.com/juju/errors"

	"github.com/go-productmatch/productmatch/expand"
	"github.com/go-productmatch/productmatch/field"
	"github.com/go-productmatch/productmatch/macvendor"
	"github.com/go-productmatch/productmatch/normalize"
	"github.com/go-productmatch/productmatch/similarity"
	"github.com/go-productmatch/productmatch/trie"
)

// ScoringStrategy selects one of the two bucket-scoring formulas
// spec.md §4.4 documents.
type ScoringStrategy int

const (
	// Distance scores a candidate key by how close its depth is to
	// the query permutation's depth, approaching the exact-match
	// bucket 99 as the two converge. This is the matcher-tier default.
	Distance ScoringStrategy = iota
	// Simple scores a candidate key by its own depth alone: deeper
	// matches always outrank shallower ones. This is the small/legacy
	// tier variant.
	Simple
)

// exactBucket is the score bucket exact matches (and, for the
// Distance strategy, depth-identical approximations) occupy.
const exactBucket = 99

// defaultMaxQueryTerms bounds full permutation enumeration. Beyond
// this many normalized terms, factorial blowup makes exhaustive
// permutation infeasible, so Search falls back to a small fixed set
// of orderings (see permutationsOrCap).
const defaultMaxQueryTerms = 8

// Engine owns a built trie index plus the collaborators needed to
// normalize and score a query against it. The zero value is not
// usable; build one with New.
type Engine struct {
	data      map[string]field.FieldList
	longKeys  bool
	scoring   ScoringStrategy
	maxTerms  int
	macLookup macvendor.Lookup
	eager     bool

	buildOnce sync.Once
	buildErr  error

	trie       *trie.StringTrie
	normalizer *normalize.Normalizer
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithLongKeys enables indexing the first-three-token "long key" in
// addition to the full and short keys expand.Keys already produces.
// spec.md §9 documents this as present in one source variant and
// absent in the other; here it is a constructor option rather than a
// second engine type.
func WithLongKeys(enabled bool) Option {
	return func(e *Engine) { e.longKeys = enabled }
}

// WithScoring selects the bucket-scoring formula. The default is
// Distance.
func WithScoring(s ScoringStrategy) Option {
	return func(e *Engine) { e.scoring = s }
}

// WithMaxQueryTerms bounds full permutation enumeration (default 8).
// See permutationsOrCap.
func WithMaxQueryTerms(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxTerms = n
		}
	}
}

// WithMACLookup installs a MAC-vendor shim (spec.md §4.5). Nil (the
// default) leaves MAC-shaped terms as ordinary tokens.
func WithMACLookup(lookup macvendor.Lookup) Option {
	return func(e *Engine) { e.macLookup = lookup }
}

// WithEagerLoad builds the trie immediately instead of on first
// Search. Build errors are then surfaced by New's second return value
// rather than deferred to Search. The actual build happens after every
// Option has been applied (see New), so WithEagerLoad's position in
// the opts list relative to options like WithMACLookup doesn't matter.
func WithEagerLoad(eager bool) Option {
	return func(e *Engine) { e.eager = eager }
}

// New returns an Engine over data (a title -> field.FieldList map,
// typically produced by package grok). By default the engine builds
// lazily on the first Search call; pass WithEagerLoad(true) to build
// immediately and surface any error here instead.
func New(data map[string]field.FieldList, opts ...Option) (*Engine, error) {
	e := &Engine{
		data:     data,
		scoring:  Distance,
		maxTerms: defaultMaxQueryTerms,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.eager {
		e.buildOnce.Do(func() { e.buildErr = e.build() })
		if e.buildErr != nil {
			return nil, e.buildErr
		}
	}
	return e, nil
}

// build constructs the prefix term set, normalizer, and trie index
// from e.data. It is idempotent via e.buildOnce and is the engine's
// UNBUILT -> BUILT transition (spec.md §4.4 "State machine").
func (e *Engine) build() error {
	prefixTerms := make(map[string]struct{})
	t := trie.New()

	for title, fl := range e.data {
		if err := fl.Validate(); err != nil {
			return errors.Annotatef(err, "match: building engine: title %q", title)
		}
		for _, tok := range fl.Tokens() {
			prefixTerms[tok] = struct{}{}
		}
		for _, key := range expand.Keys(fl, e.longKeys) {
			t.Insert(key, title)
		}
	}

	e.trie = t
	e.normalizer = normalize.New(prefixTerms, e.macLookup)
	return nil
}

// ensureBuilt triggers the lazy UNBUILT -> BUILT transition on first
// use. A build failure here means the engine was constructed from a
// malformed field-list map (a programmer error, since package grok's
// loaders already validate on load) — spec.md §4.4 calls construction
// failures fatal, so ensureBuilt panics rather than threading an error
// through Search's no-error signature.
func (e *Engine) ensureBuilt() {
	e.buildOnce.Do(func() { e.buildErr = e.build() })
	if e.buildErr != nil {
		panic(e.buildErr)
	}
}

// SearchOption configures a single Search call.
type SearchOption func(*searchConfig)

type searchConfig struct {
	bestOnly           bool
	strictEqualKeyOnly bool
}

// BestOnly toggles the similarity-based refinement to a single
// title (spec.md §4.4 step 6). Default true.
func BestOnly(enabled bool) SearchOption {
	return func(c *searchConfig) { c.bestOnly = enabled }
}

// StrictEqualKeyOnly restricts Search to exact trie hits: the first
// permutation whose joined key is present in the trie returns
// immediately, and permutations with no exact hit contribute nothing.
// Default false.
func StrictEqualKeyOnly(enabled bool) SearchOption {
	return func(c *searchConfig) { c.strictEqualKeyOnly = enabled }
}

// Search implements spec.md §4.4's full algorithm: normalize, permute,
// score into buckets, pick the highest-scoring bucket, and optionally
// refine it down to a single best title by Ratcliff/Obershelp
// similarity. It never errors: unknown or filtered terms simply yield
// an empty result.
func (e *Engine) Search(terms []string, opts ...SearchOption) trie.TitleSet {
	e.ensureBuilt()

	cfg := searchConfig{bestOnly: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	normalized := e.normalizer.Normalize(terms...)
	if len(normalized) == 0 {
		return trie.NewTitleSet()
	}

	buckets := make(map[int]trie.TitleSet)
	for _, perm := range permutationsOrCap(normalized, e.maxTerms) {
		pk := strings.Join(perm, "/")
		pkDepth := strings.Count(pk, "/")

		if titles, ok := e.trie.Get(pk); ok {
			if cfg.strictEqualKeyOnly {
				return titles.Clone()
			}
			mergeBucket(buckets, exactBucket, titles)
			continue
		}
		if cfg.strictEqualKeyOnly {
			continue
		}

		if e.trie.HasSubtrie(pk) {
			for _, k := range e.trie.KeysUnder(pk) {
				titles, ok := e.trie.Get(k)
				if !ok {
					continue
				}
				mergeBucket(buckets, e.score(k, pkDepth), titles)
			}
			continue
		}
		for _, hit := range e.trie.PrefixesOf(pk) {
			mergeBucket(buckets, e.score(hit.Key, pkDepth), hit.Titles)
		}
	}

	best := bestBucket(buckets)
	if len(best) == 0 {
		return trie.NewTitleSet()
	}
	if !cfg.bestOnly {
		return best.Clone()
	}

	return refineBySimilarity(best, strings.Join(normalized, " "))
}

// score applies e.scoring to key k (scored against a query permutation
// of depth pkDepth), per spec.md §4.4's "Scoring" section.
func (e *Engine) score(k string, pkDepth int) int {
	kDepth := strings.Count(k, "/")
	switch e.scoring {
	case Simple:
		return kDepth + 1
	default: // Distance
		d := kDepth - pkDepth
		if d < 0 {
			d = -d
		}
		return exactBucket - d
	}
}

func mergeBucket(buckets map[int]trie.TitleSet, score int, titles trie.TitleSet) {
	existing, ok := buckets[score]
	if !ok {
		buckets[score] = titles.Clone()
		return
	}
	existing.Union(titles)
}

// bestBucket returns the titles in the highest-scoring bucket, or nil
// if buckets is empty. Ties cannot occur across buckets by
// construction (each score is its own map key), matching spec.md
// §4.4's edge case note.
func bestBucket(buckets map[int]trie.TitleSet) trie.TitleSet {
	if len(buckets) == 0 {
		return nil
	}
	bestScore := 0
	first := true
	for score := range buckets {
		if first || score > bestScore {
			bestScore = score
			first = false
		}
	}
	return buckets[bestScore]
}

// refineBySimilarity implements spec.md §4.4 step 6: keep the titles
// whose Ratcliff/Obershelp ratio against query is maximal, then return
// the length-then-lexicographically-smallest survivor as a singleton
// set. match_string_trie.py sorts alphabetically and then — stably —
// by length, so length is the primary key and lex order only breaks
// ties within a length.
func refineBySimilarity(candidates trie.TitleSet, query string) trie.TitleSet {
	titles := candidates.Slice()
	if len(titles) == 1 {
		return trie.NewTitleSet(titles[0])
	}

	bestRatio := -1.0
	var survivors []string
	for _, t := range titles {
		r := similarity.Ratio(t, query)
		switch {
		case r > bestRatio:
			bestRatio = r
			survivors = survivors[:0]
			survivors = append(survivors, t)
		case r == bestRatio:
			survivors = append(survivors, t)
		}
	}

	sort.Slice(survivors, func(i, j int) bool {
		if len(survivors[i]) != len(survivors[j]) {
			return len(survivors[i]) < len(survivors[j])
		}
		return survivors[i] < survivors[j]
	})

	return trie.NewTitleSet(survivors[0])
}

// permutationsOrCap returns every permutation of terms, in
// lexicographic order of the terms' original positions, unless terms
// exceeds maxTerms — in which case factorial blowup makes exhaustive
// enumeration infeasible and Search instead tries a small fixed set of
// orderings: the terms as given, reversed, and lexicographically
// sorted.
func permutationsOrCap(terms []string, maxTerms int) [][]string {
	if len(terms) > maxTerms {
		identity := append([]string(nil), terms...)
		reversed := append([]string(nil), terms...)
		for i, j := 0, len(reversed)-1; i < j; i, j = i+1, j-1 {
			reversed[i], reversed[j] = reversed[j], reversed[i]
		}
		sorted := append([]string(nil), terms...)
		sort.Strings(sorted)
		return [][]string{identity, reversed, sorted}
	}
	return permutations(terms)
}

// permutations enumerates every ordering of items via backtracking,
// choosing at each position from the remaining items in their
// original relative order — the same enumeration order as Python's
// itertools.permutations.
func permutations(items []string) [][]string {
	n := len(items)
	if n == 0 {
		return nil
	}
	used := make([]bool, n)
	path := make([]string, 0, n)
	var out [][]string
	var rec func()
	rec = func() {
		if len(path) == n {
			cp := make([]string, n)
			copy(cp, path)
			out = append(out, cp)
			return
		}
		for i := 0; i < n; i++ {
			if used[i] {
				continue
			}
			used[i] = true
			path = append(path, items[i])
			rec()
			path = path[:len(path)-1]
			used[i] = false
		}
	}
	rec()
	return out
}
