package guardrails

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/run-bigpig/llm-guardrails/pkg/interfaces"
)

// LengthValidator is an input guardrail that enforces minimum and
// maximum input length, optionally truncating over-long text instead of
// rejecting it
type LengthValidator struct {
	name           string
	enabled        bool
	minLength      int
	maxLength      int
	truncate       bool
	truncateSuffix string
}

// LengthOption represents an option for configuring a length validator
type LengthOption func(*LengthValidator)

// WithMinLength sets the minimum allowed trimmed length
func WithMinLength(min int) LengthOption {
	return func(v *LengthValidator) {
		v.minLength = min
	}
}

// WithMaxLength sets the maximum allowed trimmed length
func WithMaxLength(max int) LengthOption {
	return func(v *LengthValidator) {
		v.maxLength = max
	}
}

// WithTruncate sets whether over-long input is truncated instead of rejected
func WithTruncate(truncate bool) LengthOption {
	return func(v *LengthValidator) {
		v.truncate = truncate
	}
}

// WithTruncateSuffix sets the suffix appended to truncated input
func WithTruncateSuffix(suffix string) LengthOption {
	return func(v *LengthValidator) {
		v.truncateSuffix = suffix
	}
}

// WithLengthValidatorName sets the guardrail's identity
func WithLengthValidatorName(name string) LengthOption {
	return func(v *LengthValidator) {
		v.name = name
	}
}

// WithLengthValidatorEnabled sets whether the guardrail runs
func WithLengthValidatorEnabled(enabled bool) LengthOption {
	return func(v *LengthValidator) {
		v.enabled = enabled
	}
}

// NewLengthValidator creates a new length validator. Invalid bound
// combinations fail here, never at check time.
func NewLengthValidator(options ...LengthOption) (*LengthValidator, error) {
	validator := &LengthValidator{
		name:           "length_validator",
		enabled:        true,
		minLength:      1,
		maxLength:      10000,
		truncate:       false,
		truncateSuffix: "...",
	}

	for _, option := range options {
		option(validator)
	}

	if validator.minLength < 0 {
		return nil, fmt.Errorf("min length must be >= 0, got %d", validator.minLength)
	}
	if validator.maxLength <= 0 {
		return nil, fmt.Errorf("max length must be > 0, got %d", validator.maxLength)
	}
	if validator.minLength > validator.maxLength {
		return nil, fmt.Errorf("min length %d must be <= max length %d", validator.minLength, validator.maxLength)
	}

	return validator, nil
}

// Name returns the guardrail's identity
func (v *LengthValidator) Name() string {
	return v.name
}

// Enabled reports whether the guardrail runs
func (v *LengthValidator) Enabled() bool {
	return v.enabled
}

// String implements fmt.Stringer
func (v *LengthValidator) String() string {
	return fmt.Sprintf("LengthValidator(name=%s, enabled=%t)", v.name, v.enabled)
}

// Validate checks the trimmed length of the input against the
// configured bounds. Lengths are character counts, not byte counts, so
// multi-byte input measures and truncates the way a user would expect.
func (v *LengthValidator) Validate(ctx context.Context, input string, metadata map[string]interface{}) (*interfaces.GuardrailResult, error) {
	textLength := utf8.RuneCountInString(strings.TrimSpace(input))

	if textLength < v.minLength {
		return &interfaces.GuardrailResult{
			Status:  interfaces.GuardrailFailed,
			Message: fmt.Sprintf("Input too short: %d chars (minimum: %d)", textLength, v.minLength),
			Metadata: map[string]interface{}{
				"original_length": textLength,
				"min_length":      v.minLength,
			},
		}, nil
	}

	if textLength > v.maxLength {
		if !v.truncate {
			return &interfaces.GuardrailResult{
				Status:  interfaces.GuardrailFailed,
				Message: fmt.Sprintf("Input too long: %d chars (maximum: %d)", textLength, v.maxLength),
				Metadata: map[string]interface{}{
					"original_length": textLength,
					"max_length":      v.maxLength,
				},
			}, nil
		}

		keep := v.maxLength - utf8.RuneCountInString(v.truncateSuffix)
		if keep <= 0 {
			// The suffix alone would blow the budget; truncation cannot
			// be performed safely.
			return &interfaces.GuardrailResult{
				Status:  interfaces.GuardrailFailed,
				Message: fmt.Sprintf("Input too long and cannot be truncated safely: %d chars", textLength),
			}, nil
		}

		// Slice on rune boundaries so truncation never produces invalid
		// UTF-8 mid-character.
		truncated := string([]rune(input)[:keep]) + v.truncateSuffix
		truncatedLength := utf8.RuneCountInString(truncated)
		return &interfaces.GuardrailResult{
			Status:          interfaces.GuardrailWarning,
			Message:         fmt.Sprintf("Input truncated: %d -> %d chars", textLength, truncatedLength),
			ModifiedContent: &truncated,
			Metadata: map[string]interface{}{
				"original_length":  textLength,
				"truncated_length": truncatedLength,
				"max_length":       v.maxLength,
				"truncated":        true,
			},
		}, nil
	}

	return &interfaces.GuardrailResult{
		Status:          interfaces.GuardrailPassed,
		Message:         fmt.Sprintf("Length validation passed: %d chars", textLength),
		ModifiedContent: &input,
		Metadata: map[string]interface{}{
			"length": textLength,
		},
	}, nil
}
