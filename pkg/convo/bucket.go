package convo

import "time"

// ListItem is one row of the last list shown to the user.
type ListItem struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Selection is the last single entity the thread settled on.
type Selection struct {
	ID         string `json:"id"`
	Collection string `json:"collection"`
	Label      string `json:"label"`
}

// Candidate is one disambiguation option.
type Candidate struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Pending is an unanswered clarifying question. Consumed on the next
// successful pick or superseded by a newer one; expires with the bucket.
type Pending struct {
	Kind         string      `json:"kind"`
	Collection   string      `json:"collection"`
	Query        string      `json:"query"`
	Candidates   []Candidate `json:"candidates"`
	OriginalText string      `json:"original_text"`
	CreatedAt    time.Time   `json:"created_at"`
}

// Continuation is saved pagination state: the entire materialized line set
// plus a cursor. Invariant: 0 <= Offset <= len(Lines); at the end the
// continuation is cleared rather than retained.
type Continuation struct {
	Kind     string   `json:"kind"` // always "page"
	Title    string   `json:"title"`
	Lines    []string `json:"lines"`
	Offset   int      `json:"offset"`
	PageSize int      `json:"page_size"`
}

// Bucket is the per-thread conversation memory root. Created on first touch,
// refreshed whole on every write, evicted when UpdatedAt ages past the TTL.
type Bucket struct {
	LastList      []ListItem    `json:"last_list,omitempty"`
	LastSelection *Selection    `json:"last_selection,omitempty"`
	Pending       *Pending      `json:"pending,omitempty"`
	Continuation  *Continuation `json:"continuation,omitempty"`
	UpdatedAt     time.Time     `json:"updated_at"`
}
