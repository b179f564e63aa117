package guardrails

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "guardrails.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadEngineConfigFromFile(t *testing.T) {
	path := writeConfigFile(t, `
engine:
  enabled: true
  fail_fast: false
input_guardrails:
  - type: length_validator
    min_length: 3
    max_length: 500
    truncate: true
  - type: content_filter
    blocked_words: ["secret"]
    block_mode: true
  - type: rate_limiter
    limit: 10
    window: 30s
output_guardrails:
  - type: pii_filter
    strict_mode: true
    replacement: "<hidden>"
`)

	config, err := LoadEngineConfigFromFile(path)
	require.NoError(t, err)

	engine, err := NewEngineFromConfig(config)
	require.NoError(t, err)

	stats := engine.Stats()
	assert.True(t, stats.Enabled)
	assert.False(t, stats.FailFast)
	assert.Equal(t, 3, stats.InputGuardrails)
	assert.Equal(t, 1, stats.OutputGuardrails)
}

func TestLoadEngineConfigInvalidPath(t *testing.T) {
	_, err := LoadEngineConfigFromFile("")
	assert.Error(t, err)

	_, err = LoadEngineConfigFromFile("../../../etc/passwd")
	assert.Error(t, err)
}

func TestNewEngineFromConfigRejectsBadBounds(t *testing.T) {
	path := writeConfigFile(t, `
input_guardrails:
  - type: length_validator
    min_length: 100
    max_length: 10
`)

	config, err := LoadEngineConfigFromFile(path)
	require.NoError(t, err)

	_, err = NewEngineFromConfig(config)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "length_validator")
}

func TestNewEngineFromConfigUnknownType(t *testing.T) {
	path := writeConfigFile(t, `
output_guardrails:
  - type: sentiment_scanner
`)

	config, err := LoadEngineConfigFromFile(path)
	require.NoError(t, err)

	_, err = NewEngineFromConfig(config)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sentiment_scanner")
}

func TestNewEngineFromConfigBadWindow(t *testing.T) {
	path := writeConfigFile(t, `
input_guardrails:
  - type: rate_limiter
    limit: 5
    window: soon
`)

	config, err := LoadEngineConfigFromFile(path)
	require.NoError(t, err)

	_, err = NewEngineFromConfig(config)
	assert.Error(t, err)
}
