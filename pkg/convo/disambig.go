package convo

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dkillam05/farmvista-copilot-sub001/pkg/matching"
)

// PickOutcome is the result class of interpreting an utterance against a
// pending candidate list.
type PickOutcome string

const (
	// PickResolved means exactly one candidate was selected.
	PickResolved PickOutcome = "RESOLVED"
	// PickRetry means the utterance matched zero or several candidates; the
	// pending state is kept and the same question re-asked.
	PickRetry PickOutcome = "RETRY"
	// PickCancelled means the user explicitly abandoned the pick.
	PickCancelled PickOutcome = "CANCELLED"
)

// PickResult carries the selected candidate (for PickResolved) or the question
// to re-emit (for PickRetry).
type PickResult struct {
	Outcome   PickOutcome
	Candidate *Candidate
	Question  string
}

var ordinalWords = map[string]int{
	"first": 1, "second": 2, "third": 3, "fourth": 4, "fifth": 5,
	"sixth": 6, "seventh": 7, "eighth": 8, "ninth": 9, "tenth": 10,
}

var cancelPhrases = map[string]bool{
	"cancel": true, "never mind": true, "nevermind": true,
	"forget it": true, "skip it": true, "none of those": true, "none": true,
}

// InterpretPick maps an utterance to at most one candidate of a pending
// disambiguation, trying in order: an ordinal word or a standalone/leading
// 1-based integer within range; an exact case-insensitive label; a substring
// match in either direction that hits exactly one candidate. Anything else
// keeps the pending state and re-asks. An ambiguous follow-up never silently
// drops the user's place.
func InterpretPick(p *Pending, utterance string) *PickResult {
	norm := matching.Normalize(utterance)
	if norm == "" {
		return &PickResult{Outcome: PickRetry, Question: ClarifyQuestion(p)}
	}
	if cancelPhrases[norm] {
		return &PickResult{Outcome: PickCancelled}
	}

	if idx, ok := ordinalIndex(norm); ok && idx >= 1 && idx <= len(p.Candidates) {
		return resolved(&p.Candidates[idx-1])
	}

	for i := range p.Candidates {
		if strings.EqualFold(strings.TrimSpace(utterance), p.Candidates[i].Name) {
			return resolved(&p.Candidates[i])
		}
	}

	var hit *Candidate
	var hits int
	for i := range p.Candidates {
		cn := matching.Normalize(p.Candidates[i].Name)
		if cn == "" {
			continue
		}
		if strings.Contains(cn, norm) || strings.Contains(norm, cn) {
			hit = &p.Candidates[i]
			hits++
		}
	}
	if hits == 1 {
		return resolved(hit)
	}

	return &PickResult{Outcome: PickRetry, Question: ClarifyQuestion(p)}
}

func resolved(c *Candidate) *PickResult {
	return &PickResult{Outcome: PickResolved, Candidate: c}
}

// ordinalIndex recognizes "second", "2", or a leading "2 please".
func ordinalIndex(norm string) (int, bool) {
	fields := strings.Fields(norm)
	if len(fields) == 0 {
		return 0, false
	}
	if n, ok := ordinalWords[fields[0]]; ok {
		return n, true
	}
	// "the second one"
	if len(fields) >= 2 && fields[0] == "the" {
		if n, ok := ordinalWords[fields[1]]; ok {
			return n, true
		}
	}
	if n, err := strconv.Atoi(fields[0]); err == nil {
		return n, true
	}
	// "number 2", "option 3"
	if len(fields) == 2 && (fields[0] == "number" || fields[0] == "option") {
		if n, err := strconv.Atoi(fields[1]); err == nil {
			return n, true
		}
	}
	return 0, false
}

// ClarifyQuestion formats the pending candidate list as the clarifying
// question shown to the user.
func ClarifyQuestion(p *Pending) string {
	var b strings.Builder
	b.WriteString("Which one did you mean? Reply with 1, 2, 3… or type the name.\n")
	for i, c := range p.Candidates {
		fmt.Fprintf(&b, "%d. %s\n", i+1, c.Name)
	}
	return strings.TrimRight(b.String(), "\n")
}

// NewPending builds the disambiguation payload from resolver candidates.
func NewPending(kind, collection, query, originalText string, candidates []matching.Match) *Pending {
	p := &Pending{
		Kind:         kind,
		Collection:   collection,
		Query:        query,
		OriginalText: originalText,
		CreatedAt:    time.Now().UTC(),
	}
	for _, m := range candidates {
		p.Candidates = append(p.Candidates, Candidate{ID: m.ID, Name: m.Label, Score: m.Score})
	}
	return p
}
