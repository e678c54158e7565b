package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-productmatch/productmatch/cpe"
)

func TestFetchPaginatesUntilDone(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Write([]byte(`{
				"resultsPerPage": 1,
				"products": [{"cpe": {
					"cpeName": "cpe:2.3:o:canonical:ubuntu_linux:14.04:*:*:*:*:*:*:*",
					"deprecated": false,
					"lastModified": "2020-01-01T00:00:00.000",
					"titles": [{"title": "Canonical Ubuntu Linux 14.04", "lang": "en"}]
				}}]
			}`))
			return
		}
		w.Write([]byte(`{"resultsPerPage": 0, "products": []}`))
	}))
	defer srv.Close()

	got, err := Fetch(context.Background(), srv.Client(), Params{
		BaseURL:        srv.URL,
		Part:           cpe.OperatingSystem,
		ResultsPerPage: 1,
		MaxRetries:     3,
		Pause:          time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(got) != 1 || got[0].Title != "Canonical Ubuntu Linux 14.04" {
		t.Errorf("Fetch() = %#v, want one Canonical Ubuntu Linux 14.04 entry", got)
	}
	if calls != 2 {
		t.Errorf("server called %d times, want 2 (one page, one terminator)", calls)
	}
}

func TestFetchFiltersDeprecatedAndExcluded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("startIndex") != "0" {
			w.Write([]byte(`{"resultsPerPage": 0, "products": []}`))
			return
		}
		w.Write([]byte(`{
			"resultsPerPage": 3,
			"products": [
				{"cpe": {"cpeName": "cpe:2.3:o:vendor:deprecated_os:1.0:*:*:*:*:*:*:*", "deprecated": true, "lastModified": "2000-01-01T00:00:00.000", "titles": [{"title": "Deprecated OS"}]}},
				{"cpe": {"cpeName": "cpe:2.3:o:vendor:some_firmware:1.0:*:*:*:*:*:*:*", "deprecated": false, "lastModified": "2020-01-01T00:00:00.000", "titles": [{"title": "Some Firmware"}]}},
				{"cpe": {"cpeName": "cpe:2.3:o:vendor:good_os:1.0:*:*:*:*:*:*:*", "deprecated": false, "lastModified": "2020-01-01T00:00:00.000", "titles": [{"title": "Good OS"}]}}
			]
		}`))
	}))
	defer srv.Close()

	got, err := Fetch(context.Background(), srv.Client(), Params{
		BaseURL:         srv.URL,
		Part:            cpe.OperatingSystem,
		ResultsPerPage:  3,
		MaxRetries:      3,
		Pause:           time.Millisecond,
		ExcludeKeywords: []string{"firmware"},
		Cutoff:          time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(got) != 1 || got[0].Title != "Good OS" {
		t.Errorf("Fetch() = %#v, want only Good OS", got)
	}
}

func TestFetchTooManyFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := Fetch(context.Background(), srv.Client(), Params{
		BaseURL:    srv.URL,
		Part:       cpe.OperatingSystem,
		MaxRetries: 2,
		Pause:      time.Millisecond,
	})
	if err == nil {
		t.Error("Fetch() error = nil, want error after exhausting retries")
	}
}
