package matching

import "testing"

func TestBuildAliases(t *testing.T) {
	t.Run("numeric prefixed label", func(t *testing.T) {
		got := BuildAliases("0515-Johnson Home", "fields", true)
		for _, want := range []string{
			"0515 johnson home", // normalized
			"0515johnsonhome",   // squished
			"johnson", "home",   // tokens
			"0515", "515", // padded and integer code forms
		} {
			if !got[want] {
				t.Errorf("alias set missing %q: %v", want, got)
			}
		}
	})

	t.Run("bare code label in a numeric collection", func(t *testing.T) {
		got := BuildAliases("0801", "fields", true)
		if !got["0801"] || !got["801"] {
			t.Errorf("bare code should alias both padded and integer forms: %v", got)
		}
	})

	t.Run("non numeric collection skips code forms", func(t *testing.T) {
		got := BuildAliases("North Tower", "towers", false)
		if !got["north tower"] || !got["northtower"] || !got["north"] || !got["tower"] {
			t.Errorf("basic aliases missing: %v", got)
		}
		if !got["nt"] {
			t.Errorf("acronym missing: %v", got)
		}
	})

	t.Run("empty label", func(t *testing.T) {
		if got := BuildAliases("   ", "fields", true); len(got) != 0 {
			t.Errorf("expected empty set, got %v", got)
		}
	})
}

func TestNewRecord(t *testing.T) {
	rec := NewRecord("f-1", "fields", "Active",
		[]string{"0515-Johnson Home", "0515-Johnson Home", "Johnson Home"},
		NumericPrefixed{"fields": true})

	if rec.Label() != "0515-Johnson Home" {
		t.Errorf("Label = %q, want first label", rec.Label())
	}
	if len(rec.Labels) != 3 { // two distinct labels plus the id fallback
		t.Errorf("Labels = %v, want deduplicated with id appended", rec.Labels)
	}
	if !rec.Active() {
		t.Error("record with Active status should be active")
	}

	for i := 1; i < len(rec.Aliases); i++ {
		if rec.Aliases[i-1] >= rec.Aliases[i] {
			t.Fatalf("aliases not sorted: %v", rec.Aliases)
		}
	}
}

func TestRecordActive(t *testing.T) {
	for status, want := range map[string]bool{
		"": true, "active": true, "Active": true,
		"inactive": false, "retired": false,
	} {
		rec := NewRecord("x", "fields", status, []string{"X Field"}, nil)
		if got := rec.Active(); got != want {
			t.Errorf("Active with status %q = %v, want %v", status, got, want)
		}
	}
}

func TestRecordLabelFallsBackToID(t *testing.T) {
	rec := NewRecord("bin-9", "bins", "", nil, nil)
	if rec.Label() != "bin-9" {
		t.Errorf("Label = %q, want raw id", rec.Label())
	}
}
