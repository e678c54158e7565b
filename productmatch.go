// Package productmatch resolves loose bags of identification terms —
// the tokens pulled from a uname banner, a DHCP fingerprint, a user
// agent — against a CPE-derived catalog of product titles.
//
// Basic usage:
//
//	data, err := grok.LoadGrokkedFile("operating_systems.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	engine, err := productmatch.Build(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	titles := engine.Search([]string{"canonical", "ubuntu", "linux", "14", "04", "1"})
//	fmt.Println(titles.Slice())
//
// Loading from a YAML-configured engine:
//
//	opts, err := config.Load("productmatch.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	engine, err := productmatch.BuildWithOptions(data, opts)
package productmatch

import (
	"github.com/go-productmatch/productmatch/config"
	"github.com/go-productmatch/productmatch/field"
	"github.com/go-productmatch/productmatch/macvendor"
	"github.com/go-productmatch/productmatch/match"
	"github.com/go-productmatch/productmatch/trie"
)

// Engine is the query engine: a built trie index plus the
// collaborators needed to normalize and score a query against it.
type Engine = match.Engine

// Option configures an Engine at construction time.
type Option = match.Option

// SearchOption configures a single Search call.
type SearchOption = match.SearchOption

// TitleSet is a set of matched title strings.
type TitleSet = trie.TitleSet

// ScoringStrategy selects one of the two bucket-scoring formulas.
type ScoringStrategy = match.ScoringStrategy

const (
	Distance = match.Distance
	Simple   = match.Simple
)

// Re-exported SearchOption and Option constructors, so callers need
// only import this package for the common path.
var (
	BestOnly           = match.BestOnly
	StrictEqualKeyOnly = match.StrictEqualKeyOnly
	WithLongKeys       = match.WithLongKeys
	WithScoring        = match.WithScoring
	WithMaxQueryTerms  = match.WithMaxQueryTerms
	WithMACLookup      = match.WithMACLookup
	WithEagerLoad      = match.WithEagerLoad
)

// Build returns a new Engine over data (typically produced by package
// grok), built lazily on first Search unless opts include
// WithEagerLoad(true), in which case it is built here.
func Build(data map[string]field.FieldList, opts ...Option) (*Engine, error) {
	return match.New(data, opts...)
}

// BuildWithOptions returns a new Engine over data, configured from a
// config.Options value (typically loaded via config.Load). A nil
// MAC-vendor lookup is installed unless opts.MACVendor.Enabled.
func BuildWithOptions(data map[string]field.FieldList, opts *config.Options) (*Engine, error) {
	if opts == nil {
		opts = config.Default()
	}

	scoring := Distance
	if opts.ScoringVariant == "simple" {
		scoring = Simple
	}

	engineOpts := []Option{
		WithLongKeys(opts.LongKeys),
		WithScoring(scoring),
	}
	if opts.MaxQueryTerms > 0 {
		engineOpts = append(engineOpts, WithMaxQueryTerms(opts.MaxQueryTerms))
	}
	if opts.MACVendor.Enabled {
		engineOpts = append(engineOpts, WithMACLookup(macvendor.NewHTTPLookup(opts.MACVendor.URL)))
	}
	// Applied last: WithEagerLoad only flips a flag on Engine, and New
	// defers the actual build until every Option (including
	// WithMACLookup above) has been applied, so this ordering is
	// belt-and-suspenders rather than load-bearing.
	engineOpts = append(engineOpts, WithEagerLoad(opts.EagerLoad))

	return Build(data, engineOpts...)
}

// Search is a package-level convenience: build a throwaway Engine over
// data and run a single query against it. Callers issuing more than
// one query should build an Engine once with Build and reuse it —
// Search rebuilds the trie on every call.
func Search(data map[string]field.FieldList, terms []string, opts ...SearchOption) (TitleSet, error) {
	e, err := Build(data)
	if err != nil {
		return nil, err
	}
	return e.Search(terms, opts...), nil
}
