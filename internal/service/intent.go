package service

import (
	"strings"

	"github.com/dkillam05/farmvista-copilot-sub001/pkg/matching"
)

// Collection names used across the service.
const (
	CollectionFields = "fields"
	CollectionFarms  = "farms"
	CollectionTowers = "towers"
	CollectionBins   = "bins"
)

var collectionKeywords = map[string]string{
	"tower": CollectionTowers, "towers": CollectionTowers,
	"antenna": CollectionTowers, "repeater": CollectionTowers,
	"bin": CollectionBins, "bins": CollectionBins,
	"grain": CollectionBins, "bushels": CollectionBins,
	"farm": CollectionFarms, "farms": CollectionFarms,
	"field": CollectionFields, "fields": CollectionFields,
}

// Leading filler stripped off a chat message before resolution. These are
// command words, not entity evidence.
var fillerTokens = map[string]bool{
	"show": true, "me": true, "the": true, "a": true, "an": true,
	"what": true, "whats": true, "s": true, "is": true, "are": true, "about": true,
	"at": true,
	"tell": true, "how": true, "many": true, "much": true, "for": true,
	"of": true, "on": true, "in": true, "acres": true, "acreage": true,
	"frequency": true, "freq": true, "status": true, "info": true,
	"lookup": true, "look": true, "up": true, "find": true, "get": true,
	"include": true, "please": true,
}

// parseTarget guesses the target collection from keywords and strips command
// filler, leaving the entity reference itself. Defaults to fields, the
// collection users mean when they name nothing.
func parseTarget(message string) (collection, query string) {
	collection = CollectionFields

	toks := matching.Tokens(message)
	kept := make([]string, 0, len(toks))
	for _, t := range toks {
		if c, ok := collectionKeywords[t]; ok {
			collection = c
			continue
		}
		if fillerTokens[t] {
			continue
		}
		kept = append(kept, t)
	}

	query = strings.Join(kept, " ")
	if query == "" {
		// Nothing left after stripping; fall back to the raw text so the
		// resolver sees something rather than a MissingQuery.
		query = strings.TrimSpace(message)
	}
	return collection, query
}

// singular maps a collection name to the word used in prompts and questions.
func singular(collection string) string {
	switch collection {
	case CollectionFields:
		return "field"
	case CollectionFarms:
		return "farm"
	case CollectionTowers:
		return "tower"
	case CollectionBins:
		return "bin"
	}
	return strings.TrimSuffix(collection, "s")
}
