package cpe

import (
	"reflect"
	"testing"

	"github.com/go-productmatch/productmatch/field"
)

func tok(s string) field.Alt { return field.Token(s) }

func TestParseNameEmpty(t *testing.T) {
	fl, err := ParseName("", nil, OperatingSystem)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fl != nil {
		t.Errorf("ParseName(\"\") = %v, want nil", fl)
	}
}

func TestParseNameMalformed(t *testing.T) {
	for _, in := range []string{"windows", "cpe:2.2:o:microsoft"} {
		fl, err := ParseName(in, nil, OperatingSystem)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", in, err)
		}
		if fl != nil {
			t.Errorf("ParseName(%q) = %v, want nil", in, fl)
		}
	}
}

func TestParseNameGood(t *testing.T) {
	fl, err := ParseName("cpe:2.3:o:redhat:enterprise_linux_desktop:6.0:*:*:*:*:*:*:*", nil, OperatingSystem)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := field.FieldList{
		{tok("redhat"), field.Skip()},
		{tok("enterprise")},
		{tok("linux")},
		{tok("desktop")},
		{tok("6")},
		{tok("0")},
	}
	if !reflect.DeepEqual(fl, want) {
		t.Errorf("ParseName() = %#v, want %#v", fl, want)
	}
}

func TestParseNameCiscoParens(t *testing.T) {
	fl, err := ParseName(`cpe:2.3:o:cisco:ios:12.0\(20\)st2:*:*:*:*:*:*:*`, nil, OperatingSystem)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := field.FieldList{
		{tok("cisco"), field.Skip()},
		{tok("ios")},
		{tok("12")},
		{tok("0")},
		{tok("20")},
		{tok("st2")},
	}
	if !reflect.DeepEqual(fl, want) {
		t.Errorf("ParseName() = %#v, want %#v", fl, want)
	}
}

func TestParseNameWithSynonyms(t *testing.T) {
	synonyms := map[string][]string{"ubuntu": {"ubuntu linux"}}
	fl, err := ParseName("cpe:2.3:o:canonical:ubuntu:14.04:*:*:*:*:*:*:*", synonyms, OperatingSystem)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fl) < 2 {
		t.Fatalf("unexpected field count: %#v", fl)
	}
	found := false
	for _, a := range fl[1] {
		if s, ok := a.Token(); ok && s == "ubuntu linux" {
			found = true
		}
	}
	if !found {
		t.Errorf("ParseName() product field missing synonym: %#v", fl[1])
	}
}

func TestExpandSynonymsTransitive(t *testing.T) {
	synonyms := map[string][]string{
		"ubuntu":       {"ubuntu linux"},
		"ubuntu linux": {"ubuntu-linux"},
	}
	got := ExpandSynonyms(synonyms, 5)
	want := map[string]bool{"ubuntu linux": false, "ubuntu-linux": false}
	for _, s := range got["ubuntu"] {
		if _, ok := want[s]; ok {
			want[s] = true
		}
	}
	for k, found := range want {
		if !found {
			t.Errorf("ExpandSynonyms() missing transitive synonym %q for \"ubuntu\": got %v", k, got["ubuntu"])
		}
	}
}
