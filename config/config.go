// Package config loads the engine's YAML-configurable options: scoring
// variant, eager/lazy construction, the permutation cap, and the
// optional collaborators (MAC-vendor shim, NVD fetcher).
package config

import (
	"os"

	"github.com/juju/errors"
	"gopkg.in/yaml.v2"
)

// Options configures a match.Engine and its ambient collaborators.
// It is the YAML shape consumed by Load.
type Options struct {
	// EagerLoad, if true, builds the trie at construction instead of
	// on first query (spec.md §9 "Lazy construction").
	EagerLoad bool `yaml:"eager_load"`

	// ScoringVariant selects the bucket-scoring formula: "simple" or
	// "distance" (spec.md §4.4 "Scoring"). Empty means "distance".
	ScoringVariant string `yaml:"scoring_variant"`

	// LongKeys enables the first-three-token long key in addition to
	// the full and short keys (spec.md §9 "Long key presence").
	LongKeys bool `yaml:"long_keys"`

	// MaxQueryTerms bounds full permutation enumeration before Search
	// falls back to the identity/reverse/sorted heuristic (spec.md §9
	// "Permutation explosion"). Zero means the package default.
	MaxQueryTerms int `yaml:"max_query_terms"`

	// MACVendor configures the optional MAC-address-to-vendor shim
	// (spec.md §4.5).
	MACVendor MACVendorOptions `yaml:"mac_vendor"`

	// Fetcher configures the out-of-core-scope NVD CPE fetcher.
	Fetcher FetcherOptions `yaml:"fetcher"`
}

// MACVendorOptions configures the HTTP-backed MAC vendor lookup.
type MACVendorOptions struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
}

// FetcherOptions holds NVD fetcher settings that mirror fields of
// fetch.Params. Nothing in this module copies them into a fetch.Fetch
// call.
type FetcherOptions struct {
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	PauseSeconds   int    `yaml:"pause_seconds"`
	MaxRetries     int    `yaml:"max_retries"`
	ResultsPerPage int    `yaml:"results_per_page"`
}

// Default returns the matcher's default options: lazy load, distance
// scoring, no long keys, an 8-term permutation cap, no MAC vendor
// shim, and conservative fetcher pacing.
func Default() *Options {
	return &Options{
		EagerLoad:      false,
		ScoringVariant: "distance",
		LongKeys:       false,
		MaxQueryTerms:  8,
		Fetcher: FetcherOptions{
			BaseURL:        "https://services.nvd.nist.gov/rest/json/cpes/2.0",
			PauseSeconds:   6,
			MaxRetries:     3,
			ResultsPerPage: 10000,
		},
	}
}

// Load reads Options from a YAML file at path, applying Default()
// first so a partial file only overrides the fields it sets.
func Load(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Annotatef(err, "config: reading %q", path)
	}
	opts := Default()
	if err := yaml.Unmarshal(data, opts); err != nil {
		return nil, errors.Annotatef(err, "config: parsing %q", path)
	}
	return opts, nil
}
