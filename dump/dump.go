// Package dump writes a title -> field.FieldList map back out in the
// grokked JSON shape package grok reads, for debugging and for
// persisting a freshly grokked dataset (spec.md §6's debug-dump
// interface).
package dump

import (
	"io"

	"github.com/goccy/go-json"
	"github.com/juju/errors"

	"github.com/go-productmatch/productmatch/field"
)

// WriteJSON writes data to w as pretty-printed, sorted-key JSON, with
// the skip sentinel rendered as JSON null — the mirror image of
// grok.LoadGrokked. Grounded on grokker.py's
// json.dumps(result, indent=4, sort_keys=True).
func WriteJSON(w io.Writer, data map[string]field.FieldList) error {
	raw := make(map[string][][]*string, len(data))
	for title, fl := range data {
		entry := make([][]*string, 0, len(fl))
		for _, f := range fl {
			alts := make([]*string, 0, len(f))
			for _, a := range f {
				if a.IsSkip() {
					alts = append(alts, nil)
					continue
				}
				tok, _ := a.Token()
				alts = append(alts, &tok)
			}
			entry = append(entry, alts)
		}
		raw[title] = entry
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	if err := enc.Encode(raw); err != nil {
		return errors.Annotate(err, "dump: encoding")
	}
	return nil
}
