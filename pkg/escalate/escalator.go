package escalate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/dkillam05/farmvista-copilot-sub001/internal/pkg/logger"
	"github.com/dkillam05/farmvista-copilot-sub001/pkg/llm"
)

// Escalation errors per the engine taxonomy. Neither may ever cause the engine
// to fabricate a match: on any escalation failure the correct behavior is to
// fall back to no-match or re-ask.
var (
	// ErrInvalid means the collaborator returned a value outside the supplied
	// candidate set, or output we could not parse.
	ErrInvalid = errors.New("escalation returned invalid result")

	// ErrUnavailable means the collaborator could not be reached at all
	// (network, credentials, open circuit, rate limit).
	ErrUnavailable = errors.New("escalation unavailable")
)

// Decision actions.
const (
	ActionRetry   = "retry"
	ActionClarify = "clarify"
	ActionNoMatch = "no_match"
)

// Decision is the constrained contract the collaborator must answer in. Match
// and Options are only ever exact strings drawn from the supplied candidates.
type Decision struct {
	Action     string   `json:"action"`
	Match      string   `json:"match,omitempty"`
	Confidence float64  `json:"confidence,omitempty"`
	Ask        string   `json:"ask,omitempty"`
	Options    []string `json:"options,omitempty"`
}

// Escalator asks an LLM to pick from a fixed candidate list when deterministic
// resolution was inconclusive. Treated as an optional, fallible, rate-limited
// peer: every call is timeout-bound, guarded by a circuit breaker, and
// validated against the candidate set before anything reaches the user.
type Escalator struct {
	provider llm.Provider
	breaker  *gobreaker.CircuitBreaker
	limiter  *rate.Limiter
	timeout  time.Duration
	log      logger.ILogger
}

// Config tunes the guard rails around the collaborator.
type Config struct {
	Timeout     time.Duration // per-call bound; default 15s
	RatePerMin  int           // default 30
	MaxFailures uint32        // consecutive failures to trip the breaker; default 3
	OpenFor     time.Duration // how long the breaker stays open; default 30s
}

func New(provider llm.Provider, cfg Config, log logger.ILogger) *Escalator {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.RatePerMin <= 0 {
		cfg.RatePerMin = 30
	}
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 3
	}
	if cfg.OpenFor <= 0 {
		cfg.OpenFor = 30 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "escalation-llm",
		Timeout: cfg.OpenFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
	})

	return &Escalator{
		provider: provider,
		breaker:  breaker,
		limiter:  rate.NewLimiter(rate.Limit(float64(cfg.RatePerMin)/60.0), cfg.RatePerMin),
		timeout:  cfg.Timeout,
		log:      log,
	}
}

// Pick asks the collaborator to choose among candidates for the given user
// text. The returned decision is guaranteed validated: a retry names an exact
// candidate, a clarify only offers exact candidates.
func (e *Escalator) Pick(ctx context.Context, entityType, userText string, candidates []string) (*Decision, error) {
	if len(candidates) == 0 {
		return &Decision{Action: ActionNoMatch}, nil
	}
	if !e.limiter.Allow() {
		return nil, fmt.Errorf("%w: rate limit exceeded", ErrUnavailable)
	}

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	raw, err := e.breaker.Execute(func() (interface{}, error) {
		return e.provider.Generate(callCtx, buildPrompt(entityType, userText, candidates), llm.WithTemperature(0.0))
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: circuit open", ErrUnavailable)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	decision, err := parseDecision(raw.(string))
	if err != nil {
		return nil, err
	}
	if err := validate(decision, candidates); err != nil {
		e.log.Warn("escalate", "collaborator answered outside candidate set", map[string]interface{}{
			"entity_type": entityType,
			"action":      decision.Action,
			"match":       decision.Match,
		})
		return nil, err
	}
	return decision, nil
}

func buildPrompt(entityType, userText string, candidates []string) string {
	var b strings.Builder

	b.WriteString("<system>\n")
	b.WriteString("You match a user's words to ONE known " + entityType + " name, or admit you cannot.\n")
	b.WriteString("You never invent names. You only pick from the list given.\n")
	b.WriteString("</system>\n\n")

	b.WriteString("<user_text>\n")
	b.WriteString(userText)
	b.WriteString("\n</user_text>\n\n")

	b.WriteString("<candidates>\n")
	for i, c := range candidates {
		fmt.Fprintf(&b, "%d. %s\n", i+1, c)
	}
	b.WriteString("</candidates>\n\n")

	b.WriteString("<output_format>\n")
	b.WriteString("Respond with ONLY valid JSON, one of:\n")
	b.WriteString(`{"action": "retry", "match": "<exact candidate>", "confidence": 0.9}` + "\n")
	b.WriteString(`{"action": "clarify", "ask": "<short question>", "options": ["<exact candidate>", "..."]}` + "\n")
	b.WriteString(`{"action": "no_match"}` + "\n")
	b.WriteString("match and options values MUST be copied verbatim from <candidates>.\n")
	b.WriteString("</output_format>")

	return b.String()
}

func parseDecision(response string) (*Decision, error) {
	payload := extractJSON(response)
	if payload == "" {
		return nil, fmt.Errorf("%w: no JSON in response", ErrInvalid)
	}
	var d Decision
	if err := json.Unmarshal([]byte(payload), &d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	d.Action = strings.ToLower(strings.TrimSpace(d.Action))
	return &d, nil
}

// validate rejects anything not drawn verbatim from the candidate list; such a
// result is an error, never surfaced to the user as fact.
func validate(d *Decision, candidates []string) error {
	in := func(s string) bool {
		for _, c := range candidates {
			if s == c {
				return true
			}
		}
		return false
	}
	switch d.Action {
	case ActionRetry:
		if !in(d.Match) {
			return fmt.Errorf("%w: match %q not in candidate set", ErrInvalid, d.Match)
		}
	case ActionClarify:
		if len(d.Options) == 0 {
			return fmt.Errorf("%w: clarify with no options", ErrInvalid)
		}
		for _, o := range d.Options {
			if !in(o) {
				return fmt.Errorf("%w: option %q not in candidate set", ErrInvalid, o)
			}
		}
	case ActionNoMatch:
	default:
		return fmt.Errorf("%w: unknown action %q", ErrInvalid, d.Action)
	}
	return nil
}

func extractJSON(response string) string {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end == -1 || end <= start {
		return ""
	}
	return response[start : end+1]
}
