package grok

import (
	"strings"
	"testing"

	"github.com/go-productmatch/productmatch/cpe"
	"github.com/go-productmatch/productmatch/field"
)

func TestLoadGrokked(t *testing.T) {
	const data = `{
		"Canonical Ubuntu Linux 14.04.1": [["canonical", null], ["ubuntu"], ["14"], ["04"], ["1"]]
	}`
	got, err := LoadGrokked(strings.NewReader(data))
	if err != nil {
		t.Fatalf("LoadGrokked() error = %v", err)
	}
	fl, ok := got["Canonical Ubuntu Linux 14.04.1"]
	if !ok {
		t.Fatal("missing expected title")
	}
	if len(fl) != 5 {
		t.Fatalf("field count = %d, want 5", len(fl))
	}
	if !fl[0].HasSkip() {
		t.Error("vendor field should carry the skip sentinel")
	}
}

func TestLoadGrokkedInvalidToken(t *testing.T) {
	const data = `{"Bad": [["cisco/ios"]]}`
	if _, err := LoadGrokked(strings.NewReader(data)); err == nil {
		t.Error("expected error for token containing reserved separator")
	}
}

func TestLoadSynonymsMissingFile(t *testing.T) {
	if got := LoadSynonyms("/nonexistent/path/synonyms.json"); got != nil {
		t.Errorf("LoadSynonyms(missing) = %v, want nil", got)
	}
}

func TestGrokCPEEntries(t *testing.T) {
	entries := []CPEEntry{
		{CPEName: "cpe:2.3:o:canonical:ubuntu_linux:14.04.1:*:*:*:*:*:*:*", Title: "Canonical Ubuntu Linux 14.04.1"},
		{CPEName: "not-a-cpe", Title: "garbage"},
		{CPEName: "", Title: "empty"},
	}
	got := GrokCPEEntries(entries, nil, cpe.OperatingSystem)
	if _, ok := got["garbage"]; ok {
		t.Error("GrokCPEEntries() should skip unparseable entries")
	}
	if _, ok := got["empty"]; ok {
		t.Error("GrokCPEEntries() should skip empty CPE names")
	}
	fl, ok := got["Canonical Ubuntu Linux 14.04.1"]
	if !ok {
		t.Fatal("GrokCPEEntries() missing expected entry")
	}
	want := field.FieldList{
		{field.Token("canonical"), field.Skip()},
		{field.Token("ubuntu")},
		{field.Token("linux")},
		{field.Token("14")},
		{field.Token("04")},
		{field.Token("1")},
	}
	if len(fl) != len(want) {
		t.Fatalf("field list = %#v, want %#v", fl, want)
	}
}
