package interfaces

import "context"

// GuardrailStatus represents the outcome of a guardrail check
type GuardrailStatus string

const (
	// GuardrailPassed means the check succeeded with no objections
	GuardrailPassed GuardrailStatus = "passed"

	// GuardrailFailed means the check rejected the text
	GuardrailFailed GuardrailStatus = "failed"

	// GuardrailWarning means the check succeeded but modified or flagged the text
	GuardrailWarning GuardrailStatus = "warning"

	// GuardrailBlocked means the check rejected the text and the content must be discarded
	GuardrailBlocked GuardrailStatus = "blocked"
)

// GuardrailResult is the outcome of a single guardrail invocation.
// It is constructed once per check and never mutated afterwards.
type GuardrailResult struct {
	Status  GuardrailStatus
	Message string

	// ModifiedContent, when non-nil, is the authoritative content to
	// propagate to the next guardrail in the pipeline. When nil the
	// original text passes through unchanged.
	ModifiedContent *string

	// Metadata carries diagnostic detail (counts, detected spans, etc.)
	// without widening the result shape
	Metadata map[string]interface{}

	// Confidence is an optional score in [0, 1] for checks that have one
	Confidence *float64
}

// IsSuccess returns true if the check passed outright
func (r *GuardrailResult) IsSuccess() bool {
	return r.Status == GuardrailPassed
}

// IsFailure returns true for both failure states
func (r *GuardrailResult) IsFailure() bool {
	return r.Status == GuardrailFailed || r.Status == GuardrailBlocked
}

// Content returns the modified content if present, otherwise the fallback
func (r *GuardrailResult) Content(fallback string) string {
	if r.ModifiedContent != nil {
		return *r.ModifiedContent
	}
	return fallback
}

// Guardrail is the common surface of every check
type Guardrail interface {
	// Name returns the identity used in logs and aggregated messages
	Name() string

	// Enabled reports whether the engine should run this guardrail
	Enabled() bool

	// String returns a human-readable description for stats output
	String() string
}

// InputGuardrail validates or rewrites user input before the agent runs
type InputGuardrail interface {
	Guardrail

	// Validate checks the input text. A returned error is absorbed by the
	// engine and treated as a failed result carrying the error text.
	Validate(ctx context.Context, input string, metadata map[string]interface{}) (*GuardrailResult, error)
}

// OutputGuardrail filters or rewrites the agent's response before it
// reaches the caller
type OutputGuardrail interface {
	Guardrail

	// Filter checks the output text. The original (pre-guardrail) user
	// input is passed for context.
	Filter(ctx context.Context, output string, input string, metadata map[string]interface{}) (*GuardrailResult, error)
}
