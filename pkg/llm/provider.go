package llm

import "context"

// Option sets optional generation parameters.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // override the provider default
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// Provider is the contract for any LLM backend used on the escalation path.
// Implementations must honor ctx cancellation; callers bound every call with a
// timeout and never hold conversation memory locks while one is in flight.
type Provider interface {
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}
