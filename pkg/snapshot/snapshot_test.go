package snapshot

import (
	"strings"
	"testing"

	"github.com/dkillam05/farmvista-copilot-sub001/pkg/matching"
)

func testSnapshot(version string) *Snapshot {
	return New(version, map[string]Collection{
		"fields": {
			"f-1": Fields{"name": "0515-Johnson Home", "status": "active"},
			"f-2": Fields{"name": "0801-North Forty", "display_name": "North Forty", "status": "active"},
		},
		"towers": {
			"t-1": Fields{"name": "Grain Leg Tower", "status": "active"},
		},
		"bins": {},
	})
}

func TestNewVersionFallback(t *testing.T) {
	snap := New("", nil)
	if !strings.HasPrefix(snap.Version, "ts-") {
		t.Errorf("fallback version = %q, want ts- prefix", snap.Version)
	}
	if snap.Collections == nil {
		t.Error("nil collections not defaulted")
	}

	snap = New("2026-03-01T06:00:00Z", nil)
	if snap.Version != "2026-03-01T06:00:00Z" {
		t.Errorf("explicit version overridden: %q", snap.Version)
	}
}

func TestBuildIndex(t *testing.T) {
	numeric := matching.NumericPrefixed{"fields": true}
	idx := BuildIndex(testSnapshot("v7"), numeric)

	if idx.Version != "v7" {
		t.Errorf("Version = %q, want v7", idx.Version)
	}
	if idx.Len() != 3 {
		t.Errorf("Len = %d, want 3", idx.Len())
	}

	fields, ok := idx.Collection("fields")
	if !ok || len(fields) != 2 {
		t.Fatalf("fields collection = (%d, %v)", len(fields), ok)
	}

	var johnson *matching.Record
	for _, r := range fields {
		if r.ID == "f-1" {
			johnson = r
		}
	}
	if johnson == nil {
		t.Fatal("f-1 missing from index")
	}
	if johnson.Label() != "0515-Johnson Home" {
		t.Errorf("Label = %q", johnson.Label())
	}
	found := false
	for _, a := range johnson.Aliases {
		if a == "515" {
			found = true
		}
	}
	if !found {
		t.Errorf("numeric-prefixed collection should alias the integer code, got %v", johnson.Aliases)
	}
}

func TestBuildIndexUsesSecondaryLabels(t *testing.T) {
	idx := BuildIndex(testSnapshot("v1"), nil)
	fields, _ := idx.Collection("fields")
	for _, r := range fields {
		if r.ID != "f-2" {
			continue
		}
		if len(r.Labels) < 2 {
			t.Errorf("display_name not captured as a label: %v", r.Labels)
		}
	}
}

func TestBuildIndexEmptyCollection(t *testing.T) {
	idx := BuildIndex(testSnapshot("v1"), nil)
	bins, ok := idx.Collection("bins")
	if !ok || len(bins) != 0 {
		t.Errorf("empty collection should exist and be empty: (%v, %v)", bins, ok)
	}
}
