package matching

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Outcome classifies a resolution attempt.
type Outcome string

const (
	// OutcomeMatch means the top candidate cleared the confidence policy.
	OutcomeMatch Outcome = "MATCH"
	// OutcomeClarify means a ranked "did you mean" list should be shown.
	OutcomeClarify Outcome = "CLARIFY"
	// OutcomeEscalate means deterministic scoring was too weak to even ask a
	// useful question; the candidate list may be handed to the LLM collaborator.
	OutcomeEscalate Outcome = "ESCALATE"
	// OutcomeNone means nothing scored above zero.
	OutcomeNone Outcome = "NONE"
)

// Match is one scored candidate. Never persisted beyond the response and the
// pending disambiguation payload.
type Match struct {
	ID           string  `json:"id"`
	Collection   string  `json:"collection"`
	Score        float64 `json:"score"`
	Label        string  `json:"label"`
	MatchedAlias string  `json:"matched_alias,omitempty"`
}

// Result is the full outcome of one resolver call.
type Result struct {
	Outcome    Outcome
	Match      *Match // set only when Outcome == OutcomeMatch
	Candidates []Match
}

// Policy holds the confidence constants. The shape of the rule is load-bearing:
// accept on a high score outright, or on a medium score with a clear lead over
// the runner-up; otherwise ask.
type Policy struct {
	HighThreshold   float64
	MediumThreshold float64
	MinMargin       float64
	ClarifyFloor    float64 // below this the list is too weak to ask about
	MaxCandidates   int
}

// DefaultPolicy matches the production deployment values.
func DefaultPolicy() Policy {
	return Policy{
		HighThreshold:   0.90,
		MediumThreshold: 0.83,
		MinMargin:       0.07,
		ClarifyFloor:    0.40,
		MaxCandidates:   15,
	}
}

// Options tunes a single resolver call.
type Options struct {
	IncludeInactive bool
	Limit           int // caps the candidate list; 0 means policy default
}

// Index is the immutable alias index for one snapshot version. Built once,
// never mutated; rebuilds replace the whole value.
type Index struct {
	Version     string
	collections map[string][]*Record
}

// NewIndex builds an index from pre-built records grouped however the caller
// likes; records are bucketed by their Collection field.
func NewIndex(version string, records []*Record) *Index {
	idx := &Index{Version: version, collections: make(map[string][]*Record)}
	for _, r := range records {
		idx.collections[r.Collection] = append(idx.collections[r.Collection], r)
	}
	return idx
}

// EnsureCollection registers a collection name even when it has no records,
// so lookups can tell "known but empty" from "unknown".
func (i *Index) EnsureCollection(name string) {
	if _, ok := i.collections[name]; !ok {
		i.collections[name] = nil
	}
}

// Collection returns the records for a collection, tolerating empty ones.
func (i *Index) Collection(name string) ([]*Record, bool) {
	recs, ok := i.collections[name]
	return recs, ok
}

// Collections lists the known collection names.
func (i *Index) Collections() []string {
	names := make([]string, 0, len(i.collections))
	for n := range i.collections {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Len reports the total record count across collections.
func (i *Index) Len() int {
	var n int
	for _, recs := range i.collections {
		n += len(recs)
	}
	return n
}

// CandidateSource is the index-assisted pull: instead of scanning a full
// in-memory collection, the backing store is asked for a bounded set of rows
// matching broadened patterns derived from the query.
type CandidateSource interface {
	PullCandidates(ctx context.Context, collection string, patterns []string, limit int) ([]*Record, error)
}

// IndexProvider hands the resolver the current alias index. Implementations
// own the build-or-reuse caching per snapshot version.
type IndexProvider interface {
	Index(ctx context.Context) (*Index, error)
}

// Resolver orchestrates normalization and scoring over a candidate pool and
// applies the confidence policy. Deterministic and side-effect free.
type Resolver struct {
	provider IndexProvider
	source   CandidateSource // optional; enables ResolveLive
	policy   Policy
}

func NewResolver(provider IndexProvider, source CandidateSource, policy Policy) *Resolver {
	return &Resolver{provider: provider, source: source, policy: policy}
}

// Resolve matches query against the in-memory alias index for collection.
func (r *Resolver) Resolve(ctx context.Context, query, collection string, opts Options) (*Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrMissingQuery
	}
	idx, err := r.provider.Index(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}
	pool, ok := idx.Collection(collection)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCollection, collection)
	}
	return r.rank(query, pool, opts), nil
}

// ResolveLive matches query against a bounded candidate pull from the backing
// store, for collections queried live rather than held in memory. Patterns are
// the raw query plus its first two tokens concatenated, broadened by the store
// into ILIKE terms.
func (r *Resolver) ResolveLive(ctx context.Context, query, collection string, opts Options) (*Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrMissingQuery
	}
	if r.source == nil {
		return nil, fmt.Errorf("%w: no candidate source configured", ErrIndexUnavailable)
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = r.policy.MaxCandidates * 4
	}
	pool, err := r.source.PullCandidates(ctx, collection, PullPatterns(query), limit)
	if err != nil {
		return nil, fmt.Errorf("candidate pull: %w", err)
	}
	return r.rank(query, pool, opts), nil
}

// PullPatterns derives the broadened search terms for the index-assisted mode:
// the normalized query and, when it has more than one token, the first two
// tokens squished together (catches "0515 johnson" against "0515-Johnson").
func PullPatterns(query string) []string {
	norm := Normalize(query)
	patterns := []string{norm}
	toks := strings.Fields(norm)
	if len(toks) >= 2 {
		patterns = append(patterns, toks[0]+toks[1])
	}
	return patterns
}

func (r *Resolver) rank(query string, pool []*Record, opts Options) *Result {
	scored := make([]Match, 0, len(pool))
	for _, rec := range pool {
		if !opts.IncludeInactive && !rec.Active() {
			continue
		}
		best, alias := r.bestAlias(query, rec)
		if best <= 0 {
			continue
		}
		scored = append(scored, Match{
			ID:           rec.ID,
			Collection:   rec.Collection,
			Score:        best,
			Label:        rec.Label(),
			MatchedAlias: alias,
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Label < scored[j].Label
	})

	limit := opts.Limit
	if limit <= 0 || limit > r.policy.MaxCandidates {
		limit = r.policy.MaxCandidates
	}
	if len(scored) > limit {
		scored = scored[:limit]
	}

	if len(scored) == 0 {
		return &Result{Outcome: OutcomeNone, Candidates: []Match{}}
	}

	top := scored[0]
	confident := top.Score >= r.policy.HighThreshold
	if !confident && top.Score >= r.policy.MediumThreshold {
		margin := top.Score
		if len(scored) > 1 {
			margin = top.Score - scored[1].Score
		}
		confident = margin >= r.policy.MinMargin
	}
	if confident {
		return &Result{Outcome: OutcomeMatch, Match: &top, Candidates: scored}
	}
	if top.Score < r.policy.ClarifyFloor {
		return &Result{Outcome: OutcomeEscalate, Candidates: scored}
	}
	return &Result{Outcome: OutcomeClarify, Candidates: scored}
}

// bestAlias scores query against every alias and label of a record and keeps
// the best. Labels are included so records with empty alias sets still match
// on their raw identifier.
func (r *Resolver) bestAlias(query string, rec *Record) (float64, string) {
	var best float64
	var bestAlias string
	for _, a := range rec.Aliases {
		if s := Score(query, a); s > best {
			best, bestAlias = s, a
		}
	}
	for _, l := range rec.Labels {
		if s := Score(query, l); s > best {
			best, bestAlias = s, Normalize(l)
		}
	}
	return best, bestAlias
}
