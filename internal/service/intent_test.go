package service

import "testing"

func TestParseTarget(t *testing.T) {
	tests := []struct {
		name           string
		message        string
		wantCollection string
		wantQuery      string
	}{
		{"defaults to fields", "0515 Johnson Home", CollectionFields, "0515 johnson home"},
		{"field keyword stripped", "show me field 0801", CollectionFields, "0801"},
		{"acreage filler stripped", "how many acres is the Johnson Home field", CollectionFields, "johnson home"},
		{"tower keyword", "what's the frequency of the north tower", CollectionTowers, "north"},
		{"antenna synonym", "antenna at the shop", CollectionTowers, "shop"},
		{"bin keyword", "how much grain is in bin 4", CollectionBins, "4"},
		{"farm keyword", "tell me about the Sunrise farm", CollectionFarms, "sunrise"},
		{"all filler falls back to raw text", "show me the", CollectionFields, "show me the"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			collection, query := parseTarget(tt.message)
			if collection != tt.wantCollection || query != tt.wantQuery {
				t.Errorf("parseTarget(%q) = (%q, %q), want (%q, %q)",
					tt.message, collection, query, tt.wantCollection, tt.wantQuery)
			}
		})
	}
}

func TestSingular(t *testing.T) {
	for collection, want := range map[string]string{
		CollectionFields: "field",
		CollectionFarms:  "farm",
		CollectionTowers: "tower",
		CollectionBins:   "bin",
		"combines":       "combine",
	} {
		if got := singular(collection); got != want {
			t.Errorf("singular(%q) = %q, want %q", collection, got, want)
		}
	}
}
