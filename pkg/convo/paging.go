package convo

import (
	"regexp"
	"strconv"

	"github.com/dkillam05/farmvista-copilot-sub001/pkg/matching"
)

// Page size clamp applied to every continuation.
const (
	MinPageSize = 10
	MaxPageSize = 80
)

// The paging vocabulary is closed: these are commands, not entity references,
// so they are matched by fixed phrase, never by the fuzzy scorer.
var morePhrases = map[string]bool{
	"more": true, "next": true, "show more": true, "more please": true,
	"continue": true, "keep going": true,
}

var allPhrases = map[string]bool{
	"all": true, "show all": true, "list all": true, "everything": true,
	"rest": true, "the rest": true, "remaining": true, "show the rest": true,
	"the other": true, "the others": true,
}

var nMorePattern = regexp.MustCompile(`^(\d{1,3}) more$`)

// PagingIntent classifies a paging command.
type PagingIntent struct {
	More  bool
	All   bool
	Count int // for "20 more"; 0 means use the continuation's page size
}

// ParsePagingIntent recognizes the closed command vocabulary. ok is false for
// anything that is not a paging command.
func ParsePagingIntent(utterance string) (PagingIntent, bool) {
	norm := matching.Normalize(utterance)
	if morePhrases[norm] {
		return PagingIntent{More: true}, true
	}
	if allPhrases[norm] {
		return PagingIntent{All: true}, true
	}
	if m := nMorePattern.FindStringSubmatch(norm); m != nil {
		n, _ := strconv.Atoi(m[1])
		if n > 0 {
			return PagingIntent{More: true, Count: n}, true
		}
	}
	return PagingIntent{}, false
}

// NewContinuation materializes a full line set once, with the page size
// clamped to [MinPageSize, MaxPageSize] and the offset already advanced past
// whatever the caller has shown.
func NewContinuation(title string, lines []string, shown, pageSize int) *Continuation {
	pageSize = clampPageSize(pageSize)
	if shown < 0 {
		shown = 0
	}
	if shown > len(lines) {
		shown = len(lines)
	}
	return &Continuation{Kind: "page", Title: title, Lines: lines, Offset: shown, PageSize: pageSize}
}

// Advance returns the next slice per the intent and moves the cursor. done is
// true when the cursor reached the end, in which case the caller must clear
// the continuation rather than retain it.
func (c *Continuation) Advance(intent PagingIntent) (lines []string, done bool) {
	if c.Offset >= len(c.Lines) {
		return nil, true
	}
	end := len(c.Lines)
	if !intent.All {
		step := c.PageSize
		if intent.Count > 0 {
			step = clampPageSize(intent.Count)
		}
		if c.Offset+step < end {
			end = c.Offset + step
		}
	}
	lines = c.Lines[c.Offset:end]
	c.Offset = end
	return lines, c.Offset >= len(c.Lines)
}

// Remaining reports how many lines are left past the cursor.
func (c *Continuation) Remaining() int {
	if c.Offset >= len(c.Lines) {
		return 0
	}
	return len(c.Lines) - c.Offset
}

func clampPageSize(n int) int {
	if n < MinPageSize {
		return MinPageSize
	}
	if n > MaxPageSize {
		return MaxPageSize
	}
	return n
}
