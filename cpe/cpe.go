// Package cpe turns Common Platform Enumeration URIs
// (cpe:2.3:{part}:{vendor}:{product}:{version}:...) into the
// field.FieldList shape package match indexes. It is deliberately
// simple: spec.md treats this parsing as an out-of-scope collaborator
// with "no hard algorithmic content" of its own.
package cpe

import (
	"regexp"
	"strings"

	"github.com/juju/errors"

	"github.com/go-productmatch/productmatch/field"
)

// Part is the CPE "part" code: the kind of product a CPE name
// describes.
type Part int

const (
	Application Part = iota
	Hardware
	OperatingSystem
)

var partCodes = [...]string{"a", "h", "o"}
var partNames = [...]string{"application", "hardware", "operating_system"}

// Code returns the single-letter CPE part code ("a", "h", or "o").
func (p Part) Code() string {
	if int(p) < 0 || int(p) >= len(partCodes) {
		return ""
	}
	return partCodes[p]
}

func (p Part) String() string {
	if int(p) < 0 || int(p) >= len(partNames) {
		return "unknown"
	}
	return partNames[p]
}

// specialChars splits a CPE name's body on the same characters the
// original grokker used to break a dotted/parenthesized version
// string into individual tokens.
var specialChars = regexp.MustCompile(`[_,:.)(\\]`)

// ErrNotCPE names the "not a cpe:2.3 URI" condition. ParseName does
// not return it: for such input it returns a nil FieldList and a nil
// error.
var ErrNotCPE = errors.New("cpe: not a cpe:2.3 name")

// ParseName transforms a cpe:2.3 name into a field.FieldList: one
// field per component after the part prefix, splitting on
// specialChars (_ , : . ( ) and backslash; "-" is not a separator), with
// "*"/"-"/empty components dropped, everything lowercased, the
// vendor (first) field widened with an extra skip alternative, and
// synonyms (if any) injected as extra alternatives per component.
//
// Grounded on grokker.py's transform_cpe_name: split on CPE's special
// characters, drop placeholder components, lowercase, and mark the
// vendor field skippable since most identification strings arrive
// without a vendor name.
func ParseName(cpeName string, synonyms map[string][]string, part Part) (field.FieldList, error) {
	if cpeName == "" || !strings.Contains(cpeName, "cpe:2.3:") {
		return nil, nil
	}

	prefix := "cpe:2.3:" + part.Code() + ":"
	if !strings.HasPrefix(cpeName, prefix) {
		return nil, nil
	}
	body := strings.TrimPrefix(cpeName, prefix)

	raw := specialChars.Split(body, -1)
	var components []string
	for _, c := range raw {
		if c == "" || c == "*" || c == "-" {
			continue
		}
		components = append(components, strings.ToLower(c))
	}

	fl := make(field.FieldList, 0, len(components))
	for i, comp := range components {
		alts := []field.Alt{field.Token(comp)}
		if i == 0 {
			// Assume this is the vendor. Most identification strings
			// arrive without one, so the field must be skippable.
			alts = append(alts, field.Skip())
		}
		for _, syn := range synonyms[comp] {
			syn = strings.ToLower(syn)
			if syn == "" {
				alts = append(alts, field.Skip())
				continue
			}
			alts = append(alts, field.Token(syn))
		}
		fl = append(fl, field.Field(alts))
	}

	if err := fl.Validate(); err != nil {
		return nil, errors.Annotatef(err, "cpe: parsing %q", cpeName)
	}
	return fl, nil
}

// ExpandSynonyms performs fixed-point (transitive) closure over a
// synonym map: if "ubuntu" -> ["ubuntu linux"] and "ubuntu linux" ->
// ["ubuntu-linux"], the result includes "ubuntu-linux" as a synonym
// of "ubuntu" too. spec.md §9 flags the original as non-transitive by
// a TODO ("re-run this to add synonyms of synonyms"); this resolves
// that open question by actually doing so, bounded to maxPasses to
// guard against a cyclic map.
func ExpandSynonyms(synonyms map[string][]string, maxPasses int) map[string][]string {
	out := make(map[string][]string, len(synonyms))
	for k, v := range synonyms {
		cp := make([]string, len(v))
		copy(cp, v)
		out[k] = cp
	}

	for pass := 0; pass < maxPasses; pass++ {
		changed := false
		for term, syns := range out {
			seen := make(map[string]struct{}, len(syns))
			for _, s := range syns {
				seen[s] = struct{}{}
			}
			var additions []string
			for _, s := range syns {
				for _, transitive := range out[s] {
					if transitive == term {
						continue
					}
					if _, ok := seen[transitive]; ok {
						continue
					}
					seen[transitive] = struct{}{}
					additions = append(additions, transitive)
				}
			}
			if len(additions) > 0 {
				out[term] = append(out[term], additions...)
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return out
}
