package escalate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dkillam05/farmvista-copilot-sub001/internal/pkg/logger"
	"github.com/dkillam05/farmvista-copilot-sub001/pkg/llm"
)

type scriptedProvider struct {
	response string
	err      error
	prompts  []string
}

func (p *scriptedProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	p.prompts = append(p.prompts, prompt)
	return p.response, p.err
}

func newTestEscalator(p llm.Provider) *Escalator {
	return New(p, Config{RatePerMin: 600}, logger.NewNopLogger())
}

var barnCandidates = []string{"Ackley Barn", "Barlow Barn", "Carlin Barn North"}

func TestPickRetry(t *testing.T) {
	p := &scriptedProvider{response: `{"action": "retry", "match": "Barlow Barn", "confidence": 0.85}`}
	d, err := newTestEscalator(p).Pick(context.Background(), "field", "the barlow place", barnCandidates)
	if err != nil {
		t.Fatalf("Pick: %v", err)
	}
	if d.Action != ActionRetry || d.Match != "Barlow Barn" {
		t.Errorf("decision = %+v", d)
	}
}

func TestPickClarify(t *testing.T) {
	p := &scriptedProvider{response: `prose before {"action": "clarify", "ask": "North or plain Barlow?", "options": ["Barlow Barn", "Carlin Barn North"]} prose after`}
	d, err := newTestEscalator(p).Pick(context.Background(), "field", "barn up north", barnCandidates)
	if err != nil {
		t.Fatalf("Pick: %v", err)
	}
	if d.Action != ActionClarify || len(d.Options) != 2 {
		t.Errorf("decision = %+v", d)
	}
}

func TestPickRejectsFabricatedMatch(t *testing.T) {
	p := &scriptedProvider{response: `{"action": "retry", "match": "Barlow Barn East"}`}
	_, err := newTestEscalator(p).Pick(context.Background(), "field", "barlow east", barnCandidates)
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("fabricated name: err = %v, want ErrInvalid", err)
	}
}

func TestPickRejectsFabricatedOption(t *testing.T) {
	p := &scriptedProvider{response: `{"action": "clarify", "options": ["Ackley Barn", "Made Up Barn"]}`}
	_, err := newTestEscalator(p).Pick(context.Background(), "field", "barn", barnCandidates)
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("fabricated option: err = %v, want ErrInvalid", err)
	}
}

func TestPickMalformedResponses(t *testing.T) {
	for name, response := range map[string]string{
		"no json":        "I think you mean the Barlow one.",
		"broken json":    `{"action": "retry", "match":`,
		"unknown action": `{"action": "guess", "match": "Ackley Barn"}`,
		"empty clarify":  `{"action": "clarify", "options": []}`,
	} {
		t.Run(name, func(t *testing.T) {
			p := &scriptedProvider{response: response}
			_, err := newTestEscalator(p).Pick(context.Background(), "field", "barn", barnCandidates)
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("err = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestPickProviderUnavailable(t *testing.T) {
	p := &scriptedProvider{err: errors.New("connection refused")}
	_, err := newTestEscalator(p).Pick(context.Background(), "field", "barn", barnCandidates)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestPickEmptyCandidates(t *testing.T) {
	p := &scriptedProvider{}
	d, err := newTestEscalator(p).Pick(context.Background(), "field", "barn", nil)
	if err != nil {
		t.Fatalf("Pick: %v", err)
	}
	if d.Action != ActionNoMatch {
		t.Errorf("Action = %q, want no_match", d.Action)
	}
	if len(p.prompts) != 0 {
		t.Error("provider must not be called without candidates")
	}
}

func TestPickRateLimited(t *testing.T) {
	p := &scriptedProvider{response: `{"action": "no_match"}`}
	e := New(p, Config{RatePerMin: 1}, logger.NewNopLogger())

	if _, err := e.Pick(context.Background(), "field", "barn", barnCandidates); err != nil {
		t.Fatalf("first call: %v", err)
	}
	_, err := e.Pick(context.Background(), "field", "barn", barnCandidates)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("second call: err = %v, want ErrUnavailable", err)
	}
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	p := &scriptedProvider{err: errors.New("connection refused")}
	e := New(p, Config{RatePerMin: 600, MaxFailures: 2}, logger.NewNopLogger())

	for i := 0; i < 2; i++ {
		if _, err := e.Pick(context.Background(), "field", "barn", barnCandidates); !errors.Is(err, ErrUnavailable) {
			t.Fatalf("call %d: %v", i, err)
		}
	}

	calls := len(p.prompts)
	if _, err := e.Pick(context.Background(), "field", "barn", barnCandidates); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("open circuit: %v", err)
	}
	if len(p.prompts) != calls {
		t.Error("provider called while the circuit was open")
	}
}

func TestBuildPromptCarriesCandidatesVerbatim(t *testing.T) {
	p := &scriptedProvider{response: `{"action": "no_match"}`}
	if _, err := newTestEscalator(p).Pick(context.Background(), "field", "that barn by the creek", barnCandidates); err != nil {
		t.Fatalf("Pick: %v", err)
	}
	prompt := p.prompts[0]
	for _, want := range []string{"that barn by the creek", "1. Ackley Barn", "3. Carlin Barn North", "no_match"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
