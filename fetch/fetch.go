// Package fetch implements the out-of-core-scope NVD CPE fetcher
// spec.md §6 documents only as an upstream collaborator: paginated
// retrieval of CPE match strings from the NVD API, with bounded retry,
// a mandatory inter-page pause, and deprecated/cutoff/keyword
// filtering. Nothing in package match exercises this; it exists so a
// host application has somewhere to get a grokked dataset from.
package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/juju/errors"
	"github.com/rs/zerolog/log"

	"github.com/go-productmatch/productmatch/cpe"
	"github.com/go-productmatch/productmatch/grok"
)

// ErrTooManyFailures is returned when Fetch exhausts its retry budget
// without a successful page, mirroring fetcher.py's FetchError.
var ErrTooManyFailures = errors.New("fetch: too many failures reaching the NVD endpoint")

// Params configures a single Fetch call.
type Params struct {
	BaseURL         string
	APIKey          string
	Part            cpe.Part
	Vendor          string
	Cutoff          time.Time
	ExcludeKeywords []string
	ResultsPerPage  int
	MaxRetries      int
	Pause           time.Duration
}

// withDefaults fills in the zero-valued fields of p with fetcher.py's
// defaults.
func (p Params) withDefaults() Params {
	if p.BaseURL == "" {
		p.BaseURL = "https://services.nvd.nist.gov/rest/json/cpes/2.0"
	}
	if p.ResultsPerPage <= 0 {
		p.ResultsPerPage = 100
	}
	if p.MaxRetries <= 0 {
		p.MaxRetries = 5
	}
	if p.Pause <= 0 {
		p.Pause = 6 * time.Second
	}
	if len(p.ExcludeKeywords) == 0 {
		p.ExcludeKeywords = []string{"firmware"}
	}
	return p
}

type nvdResponse struct {
	ResultsPerPage int `json:"resultsPerPage"`
	Products       []struct {
		CPE struct {
			CPEName      string `json:"cpeName"`
			Deprecated   bool   `json:"deprecated"`
			LastModified string `json:"lastModified"`
			Titles       []struct {
				Title string `json:"title"`
				Lang  string `json:"lang"`
			} `json:"titles"`
		} `json:"cpe"`
	} `json:"products"`
}

// Fetch retrieves CPE entries from the NVD API, paginating until the
// API reports no more results. It drops entries that are deprecated
// and last modified at or before p.Cutoff, and entries whose CPE name
// contains any of p.ExcludeKeywords; every other entry is kept. Each
// page gets at most p.MaxRetries attempts in all (the count resets
// after a successful page), and Fetch sleeps p.Pause after every
// failed attempt and every page with results, per NVD's documented
// rate limit.
//
// Grounded on fetcher.py's fetch_from_nvd_api/parse_response.
func Fetch(ctx context.Context, client *http.Client, p Params) ([]grok.CPEEntry, error) {
	if client == nil {
		client = http.DefaultClient
	}
	p = p.withDefaults()

	var entries []grok.CPEEntry
	startIndex := 0
	tries := p.MaxRetries

	for tries > 0 {
		query := url.Values{
			"cpeMatchString": {cpeMatchString(p)},
			"resultsPerPage": {fmt.Sprintf("%d", p.ResultsPerPage)},
			"startIndex":     {fmt.Sprintf("%d", startIndex)},
		}
		reqURL := p.BaseURL + "?" + query.Encode()

		page, done, err := fetchPage(ctx, client, reqURL, p)
		if err != nil {
			log.Warn().Err(err).Str("url", reqURL).Msg("nvd fetch page failed")
			tries--
			time.Sleep(p.Pause)
			continue
		}
		if done {
			log.Info().Msg("nvd fetch: no more products left")
			break
		}

		entries = append(entries, page...)
		startIndex += p.ResultsPerPage
		tries = p.MaxRetries
		time.Sleep(p.Pause)
	}

	if tries <= 0 {
		return nil, errors.Trace(ErrTooManyFailures)
	}
	return entries, nil
}

func cpeMatchString(p Params) string {
	s := "cpe:2.3:" + p.Part.Code()
	if p.Vendor != "" {
		s += ":" + p.Vendor
	}
	return s
}

// fetchPage performs one page request. done is true when the API
// reports there's nothing left to page through.
func fetchPage(ctx context.Context, client *http.Client, reqURL string, p Params) (page []grok.CPEEntry, done bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, false, errors.Trace(err)
	}
	if p.APIKey != "" {
		req.Header.Set("apiKey", p.APIKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, false, errors.Trace(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode > 399 {
		return nil, false, fmt.Errorf("fetch: status %d", resp.StatusCode)
	}

	var decoded nvdResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, false, errors.Annotate(err, "fetch: decoding nvd response")
	}
	if decoded.ResultsPerPage <= 0 {
		return nil, true, nil
	}

	cutoff := p.Cutoff.Format("2006-01-02T15:04:05.000")
	for _, product := range decoded.Products {
		c := product.CPE
		if c.Deprecated && c.LastModified <= cutoff {
			continue
		}
		if containsAny(c.CPEName, p.ExcludeKeywords) {
			continue
		}
		title := ""
		if len(c.Titles) > 0 {
			title = c.Titles[0].Title
		}
		page = append(page, grok.CPEEntry{CPEName: c.CPEName, Title: title})
	}
	return page, false, nil
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
