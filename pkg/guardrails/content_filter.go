package guardrails

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/run-bigpig/llm-guardrails/pkg/interfaces"
)

// ContentFilter is an input guardrail that masks or blocks a configured
// list of words. Matching is case-insensitive and whole-word, with the
// boundary applied only on edges that are word characters.
type ContentFilter struct {
	name        string
	enabled     bool
	replacement string
	blockMode   bool
	regex       *regexp.Regexp
}

// ContentOption represents an option for configuring a content filter
type ContentOption func(*ContentFilter)

// WithContentReplacement sets the token that replaces matched words
func WithContentReplacement(replacement string) ContentOption {
	return func(f *ContentFilter) {
		f.replacement = replacement
	}
}

// WithContentBlockMode blocks input containing matched words instead of
// masking them
func WithContentBlockMode(block bool) ContentOption {
	return func(f *ContentFilter) {
		f.blockMode = block
	}
}

// WithContentFilterName sets the guardrail's identity
func WithContentFilterName(name string) ContentOption {
	return func(f *ContentFilter) {
		f.name = name
	}
}

// WithContentFilterEnabled sets whether the guardrail runs
func WithContentFilterEnabled(enabled bool) ContentOption {
	return func(f *ContentFilter) {
		f.enabled = enabled
	}
}

// NewContentFilter creates a new content filter for the given word
// list. An empty list is rejected here rather than at check time.
func NewContentFilter(blockedWords []string, options ...ContentOption) (*ContentFilter, error) {
	if len(blockedWords) == 0 {
		return nil, fmt.Errorf("content filter requires at least one blocked word")
	}

	// Anchor each side only when the word's edge is a word character.
	// \b next to punctuation can never match, so a word like "c++"
	// would otherwise be undetectable.
	alternatives := make([]string, len(blockedWords))
	for i, word := range blockedWords {
		if word == "" {
			return nil, fmt.Errorf("content filter words must be non-empty")
		}
		pattern := regexp.QuoteMeta(word)
		if isWordChar(word[0]) {
			pattern = `\b` + pattern
		}
		if isWordChar(word[len(word)-1]) {
			pattern += `\b`
		}
		alternatives[i] = pattern
	}
	regex, err := regexp.Compile(`(?i)(` + strings.Join(alternatives, "|") + `)`)
	if err != nil {
		return nil, fmt.Errorf("failed to compile content filter pattern: %w", err)
	}

	filter := &ContentFilter{
		name:        "content_filter",
		enabled:     true,
		replacement: "****",
		regex:       regex,
	}

	for _, option := range options {
		option(filter)
	}

	return filter, nil
}

// isWordChar mirrors \b's ASCII word-character class
func isWordChar(c byte) bool {
	return c == '_' ||
		(c >= '0' && c <= '9') ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z')
}

// Name returns the guardrail's identity
func (f *ContentFilter) Name() string {
	return f.name
}

// Enabled reports whether the guardrail runs
func (f *ContentFilter) Enabled() bool {
	return f.enabled
}

// String implements fmt.Stringer
func (f *ContentFilter) String() string {
	return fmt.Sprintf("ContentFilter(name=%s, enabled=%t, block=%t)", f.name, f.enabled, f.blockMode)
}

// Validate masks or blocks input containing blocked words
func (f *ContentFilter) Validate(ctx context.Context, input string, metadata map[string]interface{}) (*interfaces.GuardrailResult, error) {
	matches := f.regex.FindAllString(input, -1)
	if len(matches) == 0 {
		return &interfaces.GuardrailResult{
			Status:          interfaces.GuardrailPassed,
			Message:         "No blocked content detected",
			ModifiedContent: &input,
			Metadata: map[string]interface{}{
				"blocked_words_found": 0,
			},
		}, nil
	}

	if f.blockMode {
		return &interfaces.GuardrailResult{
			Status:  interfaces.GuardrailBlocked,
			Message: fmt.Sprintf("Input contains blocked content: %d matches", len(matches)),
			Metadata: map[string]interface{}{
				"blocked_words_found": len(matches),
			},
		}, nil
	}

	masked := f.regex.ReplaceAllString(input, f.replacement)
	return &interfaces.GuardrailResult{
		Status:          interfaces.GuardrailWarning,
		Message:         fmt.Sprintf("Blocked content masked: %d matches", len(matches)),
		ModifiedContent: &masked,
		Metadata: map[string]interface{}{
			"blocked_words_found": len(matches),
			"masked":              true,
		},
	}, nil
}
