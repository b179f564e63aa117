// Package guardrailsdk re-exports the most common constructors so
// callers can wire an engine from a single import.
package guardrailsdk

import (
	"github.com/run-bigpig/llm-guardrails/pkg/adapters"
	"github.com/run-bigpig/llm-guardrails/pkg/guardrails"
	"github.com/run-bigpig/llm-guardrails/pkg/interfaces"
	"github.com/run-bigpig/llm-guardrails/pkg/logging"
)

// NewEngine creates a new guardrails engine with the given options
func NewEngine(options ...guardrails.Option) *guardrails.Engine {
	return guardrails.NewEngine(options...)
}

// NewEngineFromConfigFile loads a YAML configuration and builds the
// engine with its guardrails
func NewEngineFromConfigFile(filePath string, options ...guardrails.Option) (*guardrails.Engine, error) {
	config, err := guardrails.LoadEngineConfigFromFile(filePath)
	if err != nil {
		return nil, err
	}
	return guardrails.NewEngineFromConfig(config, options...)
}

// WithFailFast sets the pipeline policy for the engine
func WithFailFast(failFast bool) guardrails.Option {
	return guardrails.WithFailFast(failFast)
}

// WithEnabled sets whether the engine runs its guardrails
func WithEnabled(enabled bool) guardrails.Option {
	return guardrails.WithEnabled(enabled)
}

// WithLogger sets the logger for the engine
func WithLogger(logger logging.Logger) guardrails.Option {
	return guardrails.WithLogger(logger)
}

// WithTracer sets the tracer for the engine
func WithTracer(tracer interfaces.Tracer) guardrails.Option {
	return guardrails.WithTracer(tracer)
}

// NewLengthValidator creates a new length validator input guardrail
func NewLengthValidator(options ...guardrails.LengthOption) (*guardrails.LengthValidator, error) {
	return guardrails.NewLengthValidator(options...)
}

// NewPIIFilter creates a new PII filter output guardrail
func NewPIIFilter(options ...guardrails.PIIOption) *guardrails.PIIFilter {
	return guardrails.NewPIIFilter(options...)
}

// NewContentFilter creates a new content filter input guardrail
func NewContentFilter(blockedWords []string, options ...guardrails.ContentOption) (*guardrails.ContentFilter, error) {
	return guardrails.NewContentFilter(blockedWords, options...)
}

// NewRateLimiter creates a new rate limiter input guardrail
func NewRateLimiter(limit int64, options ...guardrails.RateLimitOption) (*guardrails.RateLimiter, error) {
	return guardrails.NewRateLimiter(limit, options...)
}

// DetectAgentInterface reports which adapter variant fits the agent
func DetectAgentInterface(agent interface{}) (adapters.Variant, error) {
	return adapters.Detect(agent)
}
