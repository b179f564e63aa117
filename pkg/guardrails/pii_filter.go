package guardrails

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/run-bigpig/llm-guardrails/pkg/interfaces"
)

// Detection is a region of text matched by a PII pattern. Offsets are
// byte offsets into the text that was scanned; spans from one pass are
// never reused against rewritten text.
type Detection struct {
	Type        string
	Description string
	Text        string
	Start       int
	End         int
}

type piiPattern struct {
	piiType     string
	description string
	regex       *regexp.Regexp
}

// PIIFilter is an output guardrail that detects personally identifiable
// information and either masks it in place or, in strict mode, blocks
// the response outright
type PIIFilter struct {
	name            string
	enabled         bool
	maskEmails      bool
	maskPhones      bool
	maskCreditCards bool
	maskSSN         bool
	matchBareSSN    bool
	replacement     string
	strictMode      bool
	patterns        []piiPattern
}

// PIIOption represents an option for configuring a PII filter
type PIIOption func(*PIIFilter)

// WithMaskEmails sets whether email addresses are detected
func WithMaskEmails(mask bool) PIIOption {
	return func(f *PIIFilter) {
		f.maskEmails = mask
	}
}

// WithMaskPhones sets whether phone numbers are detected
func WithMaskPhones(mask bool) PIIOption {
	return func(f *PIIFilter) {
		f.maskPhones = mask
	}
}

// WithMaskCreditCards sets whether credit card numbers are detected
func WithMaskCreditCards(mask bool) PIIOption {
	return func(f *PIIFilter) {
		f.maskCreditCards = mask
	}
}

// WithMaskSSN sets whether social security numbers are detected
func WithMaskSSN(mask bool) PIIOption {
	return func(f *PIIFilter) {
		f.maskSSN = mask
	}
}

// WithBareSSN also matches bare 9-digit runs as SSNs. Off by default:
// bare digit runs collide with phone numbers, zip+4 codes and other
// innocuous numbers.
func WithBareSSN(match bool) PIIOption {
	return func(f *PIIFilter) {
		f.matchBareSSN = match
	}
}

// WithReplacement sets the token that replaces each detected span
func WithReplacement(replacement string) PIIOption {
	return func(f *PIIFilter) {
		f.replacement = replacement
	}
}

// WithStrictMode blocks responses containing PII instead of masking them
func WithStrictMode(strict bool) PIIOption {
	return func(f *PIIFilter) {
		f.strictMode = strict
	}
}

// WithPIIFilterName sets the guardrail's identity
func WithPIIFilterName(name string) PIIOption {
	return func(f *PIIFilter) {
		f.name = name
	}
}

// WithPIIFilterEnabled sets whether the guardrail runs
func WithPIIFilterEnabled(enabled bool) PIIOption {
	return func(f *PIIFilter) {
		f.enabled = enabled
	}
}

// NewPIIFilter creates a new PII filter. Patterns are compiled once
// here and reused across checks.
func NewPIIFilter(options ...PIIOption) *PIIFilter {
	filter := &PIIFilter{
		name:            "pii_filter",
		enabled:         true,
		maskEmails:      true,
		maskPhones:      true,
		maskCreditCards: true,
		maskSSN:         true,
		matchBareSSN:    false,
		replacement:     "[REDACTED]",
		strictMode:      false,
	}

	for _, option := range options {
		option(filter)
	}

	filter.patterns = filter.buildPatterns()
	return filter
}

// buildPatterns assembles the ordered pattern set for the enabled PII
// types
func (f *PIIFilter) buildPatterns() []piiPattern {
	var patterns []piiPattern

	if f.maskEmails {
		patterns = append(patterns, piiPattern{
			piiType:     "email",
			description: "Email address",
			regex:       regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
		})
	}

	if f.maskPhones {
		phoneRegexes := []*regexp.Regexp{
			regexp.MustCompile(`\b\d{3}-\d{3}-\d{4}\b`),
			regexp.MustCompile(`\(\d{3}\)\s*\d{3}-\d{4}\b`),
			regexp.MustCompile(`\b\d{3}\.\d{3}\.\d{4}\b`),
			regexp.MustCompile(`\b\d{10}\b`),
		}
		for i, regex := range phoneRegexes {
			patterns = append(patterns, piiPattern{
				piiType:     "phone",
				description: fmt.Sprintf("Phone number (format %d)", i+1),
				regex:       regex,
			})
		}
	}

	if f.maskCreditCards {
		patterns = append(patterns, piiPattern{
			piiType:     "credit_card",
			description: "Credit card number",
			regex:       regexp.MustCompile(`\b\d{4}[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`),
		})
	}

	if f.maskSSN {
		patterns = append(patterns, piiPattern{
			piiType:     "ssn",
			description: "Social Security Number",
			regex:       regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
		})
		if f.matchBareSSN {
			patterns = append(patterns, piiPattern{
				piiType:     "ssn",
				description: "Social Security Number (bare digits)",
				regex:       regexp.MustCompile(`\b\d{9}\b`),
			})
		}
	}

	return patterns
}

// Name returns the guardrail's identity
func (f *PIIFilter) Name() string {
	return f.name
}

// Enabled reports whether the guardrail runs
func (f *PIIFilter) Enabled() bool {
	return f.enabled
}

// String implements fmt.Stringer
func (f *PIIFilter) String() string {
	return fmt.Sprintf("PIIFilter(name=%s, enabled=%t, strict=%t)", f.name, f.enabled, f.strictMode)
}

// detect collects every non-overlapping match of every pattern as a
// span over the current text
func (f *PIIFilter) detect(text string) []Detection {
	var detections []Detection

	for _, pattern := range f.patterns {
		for _, loc := range pattern.regex.FindAllStringIndex(text, -1) {
			detections = append(detections, Detection{
				Type:        pattern.piiType,
				Description: pattern.description,
				Text:        text[loc[0]:loc[1]],
				Start:       loc[0],
				End:         loc[1],
			})
		}
	}

	return detections
}

// mask replaces each detected span with the replacement token, working
// from the end of the string toward the start. Replacing a span changes
// the length of everything after it, so processing in reverse keeps the
// not-yet-processed offsets valid.
func (f *PIIFilter) mask(text string, detections []Detection) string {
	sorted := make([]Detection, len(detections))
	copy(sorted, detections)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start > sorted[j].Start
	})

	masked := text
	for _, d := range sorted {
		masked = masked[:d.Start] + f.replacement + masked[d.End:]
	}
	return masked
}

// Filter scans the output text for PII and masks or blocks it
func (f *PIIFilter) Filter(ctx context.Context, output string, input string, metadata map[string]interface{}) (*interfaces.GuardrailResult, error) {
	detections := f.detect(output)

	if len(detections) == 0 {
		return &interfaces.GuardrailResult{
			Status:          interfaces.GuardrailPassed,
			Message:         "No PII detected in output",
			ModifiedContent: &output,
			Metadata: map[string]interface{}{
				"pii_detected": false,
				"pii_count":    0,
			},
		}, nil
	}

	summary := make(map[string]int)
	for _, d := range detections {
		summary[d.Type]++
	}
	types := make([]string, 0, len(summary))
	for t := range summary {
		types = append(types, t)
	}
	sort.Strings(types)

	if f.strictMode {
		return &interfaces.GuardrailResult{
			Status:  interfaces.GuardrailBlocked,
			Message: fmt.Sprintf("Response blocked due to PII detection: %s", strings.Join(types, ", ")),
			Metadata: map[string]interface{}{
				"pii_detected": true,
				"pii_count":    len(detections),
				"pii_types":    types,
				"pii_summary":  summary,
				"detections":   detections,
			},
		}, nil
	}

	masked := f.mask(output, detections)
	return &interfaces.GuardrailResult{
		Status:          interfaces.GuardrailWarning,
		Message:         fmt.Sprintf("PII masked in output: %d instances of %s", len(detections), strings.Join(types, ", ")),
		ModifiedContent: &masked,
		Metadata: map[string]interface{}{
			"pii_detected": true,
			"pii_count":    len(detections),
			"pii_types":    types,
			"pii_summary":  summary,
			"detections":   detections,
			"masked":       true,
		},
	}, nil
}
