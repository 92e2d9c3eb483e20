package matching

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

type staticProvider struct {
	idx *Index
	err error
}

func (p *staticProvider) Index(ctx context.Context) (*Index, error) {
	return p.idx, p.err
}

type recordingSource struct {
	patterns []string
	limit    int
	pool     []*Record
	err      error
}

func (s *recordingSource) PullCandidates(ctx context.Context, collection string, patterns []string, limit int) ([]*Record, error) {
	s.patterns = patterns
	s.limit = limit
	return s.pool, s.err
}

func fieldIndex(t *testing.T) *Index {
	t.Helper()
	numeric := NumericPrefixed{"fields": true}
	return NewIndex("v1", []*Record{
		NewRecord("f-1", "fields", "", []string{"0515-Johnson Home"}, numeric),
		NewRecord("f-2", "fields", "", []string{"0801-North Forty"}, numeric),
		NewRecord("f-3", "fields", "", []string{"0802-North Field"}, numeric),
		NewRecord("f-4", "fields", "retired", []string{"0100-Old Creek"}, numeric),
	})
}

func newTestResolver(idx *Index) *Resolver {
	return NewResolver(&staticProvider{idx: idx}, nil, DefaultPolicy())
}

func TestResolveMatch(t *testing.T) {
	r := newTestResolver(fieldIndex(t))

	res, err := r.Resolve(context.Background(), "0515 Johnson Home", "fields", Options{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Outcome != OutcomeMatch {
		t.Fatalf("Outcome = %v, want MATCH (candidates %v)", res.Outcome, res.Candidates)
	}
	if res.Match.ID != "f-1" {
		t.Errorf("Match.ID = %q, want f-1", res.Match.ID)
	}
	if res.Match.Score != 1.0 {
		t.Errorf("exact label should score 1.0, got %v", res.Match.Score)
	}
}

func TestResolveClarifyOnTypo(t *testing.T) {
	numeric := NumericPrefixed{"fields": true}
	idx := NewIndex("v1", []*Record{
		NewRecord("f-10", "fields", "", []string{"Johnson North"}, numeric),
		NewRecord("f-11", "fields", "", []string{"Johnson South"}, numeric),
	})
	r := newTestResolver(idx)

	// A typo scores each record in the middling band with no margin between
	// them, so the resolver must ask instead of guessing.
	res, err := r.Resolve(context.Background(), "jonson", "fields", Options{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Outcome != OutcomeClarify {
		t.Fatalf("Outcome = %v, want CLARIFY (candidates %v)", res.Outcome, res.Candidates)
	}
	if len(res.Candidates) != 2 {
		t.Errorf("Candidates = %d, want both close records", len(res.Candidates))
	}
	if res.Match != nil {
		t.Error("Match must be nil outside OutcomeMatch")
	}
}

func TestResolveMarginRule(t *testing.T) {
	// Two records that contain the query verbatim score identically; the
	// medium band requires a margin, so a tie cannot auto-match.
	policy := Policy{
		HighThreshold:   0.99,
		MediumThreshold: 0.85,
		MinMargin:       0.07,
		ClarifyFloor:    0.40,
		MaxCandidates:   15,
	}
	numeric := NumericPrefixed{"fields": true}
	tied := NewIndex("v1", []*Record{
		NewRecord("f-2", "fields", "", []string{"0801-North Forty"}, numeric),
		NewRecord("f-3", "fields", "", []string{"0801-North Field"}, numeric),
	})
	r := NewResolver(&staticProvider{idx: tied}, nil, policy)

	res, err := r.Resolve(context.Background(), "0801 north", "fields", Options{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Outcome != OutcomeClarify {
		t.Fatalf("tied medium scores: Outcome = %v, want CLARIFY", res.Outcome)
	}

	// With the runner-up gone the same score clears the margin requirement.
	solo := NewIndex("v1", []*Record{
		NewRecord("f-2", "fields", "", []string{"0801-North Forty"}, numeric),
	})
	r = NewResolver(&staticProvider{idx: solo}, nil, policy)
	res, err = r.Resolve(context.Background(), "0801 north", "fields", Options{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Outcome != OutcomeMatch {
		t.Fatalf("sole medium score: Outcome = %v, want MATCH", res.Outcome)
	}
}

func TestResolveEscalateOnWeakCandidates(t *testing.T) {
	numeric := NumericPrefixed{"fields": true}
	idx := NewIndex("v1", []*Record{
		NewRecord("f-20", "fields", "", []string{"Johnson North"}, numeric),
	})
	r := newTestResolver(idx)

	// Shares a couple of characters, so it scores above zero but far below
	// the clarify floor.
	res, err := r.Resolve(context.Background(), "jx", "fields", Options{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Outcome != OutcomeEscalate {
		t.Fatalf("Outcome = %v (candidates %v), want ESCALATE", res.Outcome, res.Candidates)
	}
	if len(res.Candidates) == 0 {
		t.Error("escalation still needs the weak candidate list")
	}
}

func TestResolveNone(t *testing.T) {
	r := newTestResolver(fieldIndex(t))

	res, err := r.Resolve(context.Background(), "zzzz", "fields", Options{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Outcome != OutcomeNone {
		t.Fatalf("Outcome = %v, want NONE", res.Outcome)
	}
	if len(res.Candidates) != 0 {
		t.Errorf("Candidates = %v, want empty", res.Candidates)
	}
}

func TestResolveInactiveFiltering(t *testing.T) {
	numeric := NumericPrefixed{"fields": true}
	idx := NewIndex("v1", []*Record{
		NewRecord("f-4", "fields", "retired", []string{"0100-Old Creek"}, numeric),
	})
	r := newTestResolver(idx)

	res, err := r.Resolve(context.Background(), "0100 Old Creek", "fields", Options{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Outcome != OutcomeNone {
		t.Fatalf("retired record leaked: %v", res.Outcome)
	}

	res, err = r.Resolve(context.Background(), "0100 Old Creek", "fields", Options{IncludeInactive: true})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Outcome != OutcomeMatch || res.Match.ID != "f-4" {
		t.Fatalf("IncludeInactive should surface the retired record, got %v", res.Outcome)
	}
}

func TestResolveErrors(t *testing.T) {
	r := newTestResolver(fieldIndex(t))

	if _, err := r.Resolve(context.Background(), "   ", "fields", Options{}); !errors.Is(err, ErrMissingQuery) {
		t.Errorf("blank query: err = %v, want ErrMissingQuery", err)
	}
	if _, err := r.Resolve(context.Background(), "x", "tractors", Options{}); !errors.Is(err, ErrUnknownCollection) {
		t.Errorf("unknown collection: err = %v, want ErrUnknownCollection", err)
	}

	broken := NewResolver(&staticProvider{err: errors.New("db down")}, nil, DefaultPolicy())
	if _, err := broken.Resolve(context.Background(), "x", "fields", Options{}); !errors.Is(err, ErrIndexUnavailable) {
		t.Errorf("provider failure: err = %v, want ErrIndexUnavailable", err)
	}
}

func TestResolveLive(t *testing.T) {
	numeric := NumericPrefixed{"fields": true}
	src := &recordingSource{pool: []*Record{
		NewRecord("f-1", "fields", "", []string{"0515-Johnson Home"}, numeric),
	}}
	r := NewResolver(&staticProvider{}, src, DefaultPolicy())

	res, err := r.ResolveLive(context.Background(), "0515 Johnson", "fields", Options{})
	if err != nil {
		t.Fatalf("ResolveLive: %v", err)
	}
	if res.Outcome != OutcomeMatch {
		t.Fatalf("Outcome = %v, want MATCH", res.Outcome)
	}
	wantPatterns := []string{"0515 johnson", "0515johnson"}
	if !reflect.DeepEqual(src.patterns, wantPatterns) {
		t.Errorf("patterns = %v, want %v", src.patterns, wantPatterns)
	}
	if src.limit != DefaultPolicy().MaxCandidates*4 {
		t.Errorf("limit = %d, want policy default", src.limit)
	}
}

func TestResolveLiveWithoutSource(t *testing.T) {
	r := NewResolver(&staticProvider{}, nil, DefaultPolicy())
	if _, err := r.ResolveLive(context.Background(), "x", "fields", Options{}); !errors.Is(err, ErrIndexUnavailable) {
		t.Errorf("err = %v, want ErrIndexUnavailable", err)
	}
}

func TestPullPatterns(t *testing.T) {
	if got := PullPatterns("Johnson"); !reflect.DeepEqual(got, []string{"johnson"}) {
		t.Errorf("single token: %v", got)
	}
	got := PullPatterns("0515 Johnson Home")
	want := []string{"0515 johnson home", "0515johnson"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("multi token: %v, want %v", got, want)
	}
}
