// Package macvendor provides the pluggable MAC-address-to-vendor shim
// described in spec.md §4.5: an optional collaborator that rewrites a
// MAC-shaped term into vendor tokens before normalization. It contains
// no algorithmic content of its own — the interesting engineering
// lives in package match.
package macvendor

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// macRegex matches a 12-hex-digit MAC address, either colon-separated
// in pairs or bare, per spec.md §4.1.
var macRegex = regexp.MustCompile(`^([0-9a-fA-F]{2}:){5}[0-9a-fA-F]{2}$|^[0-9a-fA-F]{12}$`)

// specialChars splits a vendor string into terms, per spec.md §4.1's
// replacement rule: split on "[_,:.)(\]".
var specialChars = regexp.MustCompile(`[_,:.)(\\]`)

// IsMAC reports whether term is shaped like a MAC address.
func IsMAC(term string) bool { return macRegex.MatchString(term) }

// Lookup resolves a MAC address to its vendor name. A failed lookup
// must return an error; callers fall back to the original term.
type Lookup interface {
	Lookup(mac string) (vendor string, err error)
}

// SplitVendor splits a vendor string on CPE-style special characters,
// the same rule cpe.ParseName applies to CPE names, trims surrounding
// whitespace from each part, and drops empty parts, so a rewritten
// MAC term feeds the normalizer the same shape as any other term.
func SplitVendor(vendor string) []string {
	parts := specialChars.Split(vendor, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// HTTPLookup is a Lookup backed by an IEEE OUI vendor table, fetched
// once over HTTP and cached in memory for the process lifetime —
// mirroring MacLookup.update_vendors() in the original implementation.
type HTTPLookup struct {
	URL    string
	Client *http.Client

	mu      sync.RWMutex
	loaded  bool
	vendors map[string]string // first 6 hex digits (no separators), lowercase -> vendor
}

// NewHTTPLookup returns an HTTPLookup that fetches its OUI table from
// url on first use. If url is empty, a well-known IEEE OUI CSV mirror
// is used.
func NewHTTPLookup(url string) *HTTPLookup {
	if url == "" {
		url = "https://standards-oui.ieee.org/oui/oui.csv"
	}
	return &HTTPLookup{URL: url, Client: &http.Client{Timeout: 30 * time.Second}}
}

// Update forces a (re)fetch of the vendor table. Lookup calls this
// lazily on first use; callers that want eager loading (matching the
// original's construction-time update_vendors() call) may call it
// directly.
func (h *HTTPLookup) Update(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
	if err != nil {
		return err
	}
	resp, err := h.Client.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("url", h.URL).Msg("mac vendor table fetch failed")
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode > 399 {
		return fmt.Errorf("macvendor: fetch %s: status %d", h.URL, resp.StatusCode)
	}

	vendors := make(map[string]string)
	r := csv.NewReader(bufio.NewReader(resp.Body))
	r.FieldsPerRecord = -1
	// Header row: Registry,Assignment,Organization Name,Organization Address
	if _, err := r.Read(); err != nil {
		return err
	}
	for {
		rec, err := r.Read()
		if err != nil {
			break
		}
		if len(rec) < 3 {
			continue
		}
		prefix := strings.ToLower(strings.TrimSpace(rec[1]))
		if prefix == "" {
			continue
		}
		vendors[prefix] = strings.TrimSpace(rec[2])
	}

	h.mu.Lock()
	h.vendors = vendors
	h.loaded = true
	h.mu.Unlock()

	log.Info().Int("vendors", len(vendors)).Msg("mac vendor table loaded")
	return nil
}

// Lookup resolves mac (any MAC-shaped term, with or without colons) to
// its registered vendor name.
func (h *HTTPLookup) Lookup(mac string) (string, error) {
	if !h.loaded {
		if err := h.Update(context.Background()); err != nil {
			return "", err
		}
	}

	key := strings.ToLower(strings.ReplaceAll(mac, ":", ""))
	if len(key) < 6 {
		return "", fmt.Errorf("macvendor: %q too short to resolve", mac)
	}

	h.mu.RLock()
	vendor, ok := h.vendors[key[:6]]
	h.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("macvendor: no vendor registered for prefix %q", key[:6])
	}
	return vendor, nil
}

// NopLookup always fails, matching the "absent, MAC-shaped terms are
// treated as ordinary tokens" behavior spec.md §4.5 describes for a
// host that configures no shim at all.
type NopLookup struct{}

func (NopLookup) Lookup(mac string) (string, error) {
	return "", fmt.Errorf("macvendor: no lookup configured for %q", mac)
}
