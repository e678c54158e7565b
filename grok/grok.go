// Package grok implements the Loader collaborator of spec.md §4.6: it
// consumes the grokked CPE file shape (title -> list of alternative
// lists, with JSON null as the skip sentinel) and produces the
// title -> field.FieldList map package match builds its trie from.
//
// It also implements the upstream grokking step itself (CPE URI ->
// field list, via package cpe) since spec.md documents that shape as
// an input format (§6) even though building it from raw NVD CPE pages
// is explicitly out of core scope.
package grok

import (
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/juju/errors"
	"github.com/rs/zerolog/log"

	"github.com/go-productmatch/productmatch/cpe"
	"github.com/go-productmatch/productmatch/field"
)

// rawEntry is one title's field list as it appears in a grokked JSON
// file: a list of fields, each field a list of strings, with JSON
// null standing in for the skip sentinel.
type rawEntry = [][]*string

// CPEEntry is one row of the NVD-shaped input the grokker consumes:
// a CPE name plus its display title.
type CPEEntry struct {
	CPEName string `json:"cpe_name"`
	Title   string `json:"title"`
}

// LoadGrokked reads a grokked CPE file (title -> field-list-of-lists,
// JSON null = skip) from r and returns the title -> field.FieldList
// map. This is the direct Go analog of grokker.py's on-disk output
// format.
func LoadGrokked(r io.Reader) (map[string]field.FieldList, error) {
	var raw map[string]rawEntry
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, errors.Annotate(err, "grok: decoding grokked file")
	}

	out := make(map[string]field.FieldList, len(raw))
	for title, entry := range raw {
		fl := make(field.FieldList, 0, len(entry))
		for _, altList := range entry {
			f := make(field.Field, 0, len(altList))
			for _, alt := range altList {
				if alt == nil {
					f = append(f, field.Skip())
				} else {
					f = append(f, field.Token(*alt))
				}
			}
			fl = append(fl, f)
		}
		if err := fl.Validate(); err != nil {
			return nil, errors.Annotatef(err, "grok: title %q", title)
		}
		out[title] = fl
	}
	return out, nil
}

// LoadGrokkedFile opens path and calls LoadGrokked on its contents.
func LoadGrokkedFile(path string) (map[string]field.FieldList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer f.Close()
	return LoadGrokked(f)
}

// LoadSynonyms reads an optional synonyms file (canonical_token ->
// []synonym). A missing or malformed file is not fatal: grokker.py
// logs and continues without synonyms, and this does the same.
func LoadSynonyms(path string) map[string][]string {
	f, err := os.Open(path)
	if err != nil {
		log.Info().Str("path", path).Msg("synonym file does not exist or cannot be read, continuing without it")
		return nil
	}
	defer f.Close()

	var synonyms map[string][]string
	if err := json.NewDecoder(f).Decode(&synonyms); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("synonym file does not have the correct format")
		return nil
	}
	return synonyms
}

// GrokCPEEntries transforms a list of (cpe_name, title) rows — the
// shape the NVD fetcher produces — into the title -> field.FieldList
// map, applying synonyms and the given CPE part. Entries with an empty
// name, or a name that is not a cpe:2.3 name of the given part, are
// skipped silently; entries whose parsed field list fails validation
// are skipped with a warning. Neither aborts the whole load, since a
// single bad upstream row shouldn't sink a dataset of hundreds of
// thousands of entries.
func GrokCPEEntries(entries []CPEEntry, synonyms map[string][]string, part cpe.Part) map[string]field.FieldList {
	result := make(map[string]field.FieldList, len(entries))
	for _, e := range entries {
		if e.CPEName == "" {
			continue
		}
		fl, err := cpe.ParseName(e.CPEName, synonyms, part)
		if err != nil {
			log.Warn().Err(err).Str("cpe_name", e.CPEName).Msg("skipping unparseable CPE name")
			continue
		}
		if fl == nil {
			continue
		}
		result[e.Title] = fl
	}
	return result
}
