package guardrails

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/run-bigpig/llm-guardrails/pkg/interfaces"
	"github.com/run-bigpig/llm-guardrails/pkg/logging"
	"gopkg.in/yaml.v3"
)

// EngineConfig represents an engine plus its guardrail wiring loaded
// from YAML
type EngineConfig struct {
	Engine struct {
		Enabled  *bool `yaml:"enabled"`
		FailFast *bool `yaml:"fail_fast"`
		Logging  *bool `yaml:"logging"`
	} `yaml:"engine"`
	InputGuardrails  []GuardrailConfig `yaml:"input_guardrails"`
	OutputGuardrails []GuardrailConfig `yaml:"output_guardrails"`
}

// GuardrailConfig represents one guardrail entry. Type selects the
// guardrail; the remaining fields are interpreted by that type only.
type GuardrailConfig struct {
	Type    string `yaml:"type"`
	Name    string `yaml:"name,omitempty"`
	Enabled *bool  `yaml:"enabled,omitempty"`

	// length_validator
	MinLength      *int    `yaml:"min_length,omitempty"`
	MaxLength      *int    `yaml:"max_length,omitempty"`
	Truncate       *bool   `yaml:"truncate,omitempty"`
	TruncateSuffix *string `yaml:"truncate_suffix,omitempty"`

	// pii_filter
	MaskEmails      *bool   `yaml:"mask_emails,omitempty"`
	MaskPhones      *bool   `yaml:"mask_phones,omitempty"`
	MaskCreditCards *bool   `yaml:"mask_credit_cards,omitempty"`
	MaskSSN         *bool   `yaml:"mask_ssn,omitempty"`
	BareSSN         *bool   `yaml:"bare_ssn,omitempty"`
	Replacement     *string `yaml:"replacement,omitempty"`
	StrictMode      *bool   `yaml:"strict_mode,omitempty"`

	// content_filter
	BlockedWords []string `yaml:"blocked_words,omitempty"`
	BlockMode    *bool    `yaml:"block_mode,omitempty"`

	// rate_limiter
	Limit  *int64 `yaml:"limit,omitempty"`
	Window string `yaml:"window,omitempty"`
}

// LoadEngineConfigFromFile loads an engine configuration from a YAML file
func LoadEngineConfigFromFile(filePath string) (*EngineConfig, error) {
	if !isValidFilePath(filePath) {
		return nil, fmt.Errorf("invalid file path")
	}

	data, err := os.ReadFile(filePath) // #nosec G304 - Path is validated with isValidFilePath() before use
	if err != nil {
		return nil, fmt.Errorf("failed to read engine config file: %w", err)
	}

	var config EngineConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal engine config: %w", err)
	}

	return &config, nil
}

// NewEngineFromConfig builds an engine with its guardrails from a
// loaded configuration. Options passed here are applied after the
// configured ones so callers can override them (e.g. inject a logger or
// tracer).
func NewEngineFromConfig(config *EngineConfig, options ...Option) (*Engine, error) {
	var engineOptions []Option
	if config.Engine.Enabled != nil {
		engineOptions = append(engineOptions, WithEnabled(*config.Engine.Enabled))
	}
	if config.Engine.FailFast != nil {
		engineOptions = append(engineOptions, WithFailFast(*config.Engine.FailFast))
	}
	if config.Engine.Logging != nil && *config.Engine.Logging {
		engineOptions = append(engineOptions, WithLogger(logging.New()))
	}
	engineOptions = append(engineOptions, options...)

	engine := NewEngine(engineOptions...)

	for _, gc := range config.InputGuardrails {
		guardrail, err := buildInputGuardrail(gc)
		if err != nil {
			return nil, fmt.Errorf("failed to build input guardrail %q: %w", gc.Type, err)
		}
		engine.AddInputGuardrail(guardrail)
	}

	for _, gc := range config.OutputGuardrails {
		guardrail, err := buildOutputGuardrail(gc)
		if err != nil {
			return nil, fmt.Errorf("failed to build output guardrail %q: %w", gc.Type, err)
		}
		engine.AddOutputGuardrail(guardrail)
	}

	return engine, nil
}

func buildInputGuardrail(gc GuardrailConfig) (interfaces.InputGuardrail, error) {
	switch gc.Type {
	case "length_validator":
		var opts []LengthOption
		if gc.Name != "" {
			opts = append(opts, WithLengthValidatorName(gc.Name))
		}
		if gc.Enabled != nil {
			opts = append(opts, WithLengthValidatorEnabled(*gc.Enabled))
		}
		if gc.MinLength != nil {
			opts = append(opts, WithMinLength(*gc.MinLength))
		}
		if gc.MaxLength != nil {
			opts = append(opts, WithMaxLength(*gc.MaxLength))
		}
		if gc.Truncate != nil {
			opts = append(opts, WithTruncate(*gc.Truncate))
		}
		if gc.TruncateSuffix != nil {
			opts = append(opts, WithTruncateSuffix(*gc.TruncateSuffix))
		}
		return NewLengthValidator(opts...)
	case "content_filter":
		var opts []ContentOption
		if gc.Name != "" {
			opts = append(opts, WithContentFilterName(gc.Name))
		}
		if gc.Enabled != nil {
			opts = append(opts, WithContentFilterEnabled(*gc.Enabled))
		}
		if gc.Replacement != nil {
			opts = append(opts, WithContentReplacement(*gc.Replacement))
		}
		if gc.BlockMode != nil {
			opts = append(opts, WithContentBlockMode(*gc.BlockMode))
		}
		return NewContentFilter(gc.BlockedWords, opts...)
	case "rate_limiter":
		if gc.Limit == nil {
			return nil, fmt.Errorf("rate_limiter requires a limit")
		}
		var opts []RateLimitOption
		if gc.Name != "" {
			opts = append(opts, WithRateLimiterName(gc.Name))
		}
		if gc.Enabled != nil {
			opts = append(opts, WithRateLimiterEnabled(*gc.Enabled))
		}
		if gc.Window != "" {
			window, err := time.ParseDuration(gc.Window)
			if err != nil {
				return nil, fmt.Errorf("invalid rate limit window %q: %w", gc.Window, err)
			}
			opts = append(opts, WithRateLimitWindow(window))
		}
		return NewRateLimiter(*gc.Limit, opts...)
	default:
		return nil, fmt.Errorf("unknown input guardrail type %q", gc.Type)
	}
}

func buildOutputGuardrail(gc GuardrailConfig) (interfaces.OutputGuardrail, error) {
	switch gc.Type {
	case "pii_filter":
		var opts []PIIOption
		if gc.Name != "" {
			opts = append(opts, WithPIIFilterName(gc.Name))
		}
		if gc.Enabled != nil {
			opts = append(opts, WithPIIFilterEnabled(*gc.Enabled))
		}
		if gc.MaskEmails != nil {
			opts = append(opts, WithMaskEmails(*gc.MaskEmails))
		}
		if gc.MaskPhones != nil {
			opts = append(opts, WithMaskPhones(*gc.MaskPhones))
		}
		if gc.MaskCreditCards != nil {
			opts = append(opts, WithMaskCreditCards(*gc.MaskCreditCards))
		}
		if gc.MaskSSN != nil {
			opts = append(opts, WithMaskSSN(*gc.MaskSSN))
		}
		if gc.BareSSN != nil {
			opts = append(opts, WithBareSSN(*gc.BareSSN))
		}
		if gc.Replacement != nil {
			opts = append(opts, WithReplacement(*gc.Replacement))
		}
		if gc.StrictMode != nil {
			opts = append(opts, WithStrictMode(*gc.StrictMode))
		}
		return NewPIIFilter(opts...), nil
	default:
		return nil, fmt.Errorf("unknown output guardrail type %q", gc.Type)
	}
}

// isValidFilePath checks if a file path is valid and safe
func isValidFilePath(filePath string) bool {
	if filePath == "" {
		return false
	}

	cleanPath := filepath.Clean(filePath)
	if strings.Contains(cleanPath, "..") {
		return false
	}

	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return false
	}

	// Avoid paths that could disclose sensitive system state
	if strings.HasPrefix(absPath, "/proc") ||
		strings.HasPrefix(absPath, "/sys") ||
		strings.HasPrefix(absPath, "/dev") {
		return false
	}

	return true
}
