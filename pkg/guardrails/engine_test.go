package guardrails

import (
	"context"
	"errors"
	"testing"

	"github.com/run-bigpig/llm-guardrails/pkg/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubGuardrail is a scriptable check usable on both pipeline sides
type stubGuardrail struct {
	name      string
	disabled  bool
	result    *interfaces.GuardrailResult
	err       error
	calls     int
	lastInput string
}

func (s *stubGuardrail) Name() string {
	return s.name
}

func (s *stubGuardrail) Enabled() bool {
	return !s.disabled
}

func (s *stubGuardrail) String() string {
	return "stub(" + s.name + ")"
}

func (s *stubGuardrail) Validate(ctx context.Context, input string, metadata map[string]interface{}) (*interfaces.GuardrailResult, error) {
	s.calls++
	s.lastInput = input
	return s.result, s.err
}

func (s *stubGuardrail) Filter(ctx context.Context, output string, input string, metadata map[string]interface{}) (*interfaces.GuardrailResult, error) {
	s.calls++
	s.lastInput = output
	return s.result, s.err
}

func passResult(msg string) *interfaces.GuardrailResult {
	return &interfaces.GuardrailResult{Status: interfaces.GuardrailPassed, Message: msg}
}

func failResult(msg string) *interfaces.GuardrailResult {
	return &interfaces.GuardrailResult{Status: interfaces.GuardrailFailed, Message: msg}
}

func TestDisabledEngineShortCircuits(t *testing.T) {
	failing := &stubGuardrail{name: "a", result: failResult("nope")}
	engine := NewEngine(WithEnabled(false)).AddInputGuardrail(failing)

	result := engine.ApplyInputGuardrails(context.Background(), "hello", nil)

	assert.Equal(t, interfaces.GuardrailPassed, result.Status)
	assert.Equal(t, "hello", result.Content(""))
	assert.Equal(t, 0, failing.calls, "no guardrail should run on a disabled engine")
}

func TestFailFastStopsAtFirstFailure(t *testing.T) {
	failing := &stubGuardrail{name: "a", result: failResult("input rejected")}
	passing := &stubGuardrail{name: "b", result: passResult("ok")}
	engine := NewEngine().AddInputGuardrail(failing).AddInputGuardrail(passing)

	result := engine.ApplyInputGuardrails(context.Background(), "hello", nil)

	assert.True(t, result.IsFailure())
	assert.Equal(t, "input rejected", result.Message, "fail-fast returns the failing result verbatim")
	assert.Equal(t, 0, passing.calls, "guardrails after the failure must never run")
}

func TestCollectAllRunsEverythingAndAggregates(t *testing.T) {
	failing := &stubGuardrail{name: "a", result: failResult("too spicy")}
	passing := &stubGuardrail{name: "b", result: passResult("fine")}
	engine := NewEngine(WithFailFast(false)).AddInputGuardrail(failing).AddInputGuardrail(passing)

	result := engine.ApplyInputGuardrails(context.Background(), "hello", nil)

	assert.Equal(t, interfaces.GuardrailFailed, result.Status)
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, passing.calls)
	assert.Contains(t, result.Message, "a: too spicy")
	assert.Contains(t, result.Message, "b: fine")
}

func TestModifiedContentComposesLeftToRight(t *testing.T) {
	first := "first"
	second := "second"
	rewriteA := &stubGuardrail{name: "a", result: &interfaces.GuardrailResult{
		Status:          interfaces.GuardrailWarning,
		Message:         "rewrote",
		ModifiedContent: &first,
	}}
	rewriteB := &stubGuardrail{name: "b", result: &interfaces.GuardrailResult{
		Status:          interfaces.GuardrailWarning,
		Message:         "rewrote again",
		ModifiedContent: &second,
	}}
	engine := NewEngine().AddInputGuardrail(rewriteA).AddInputGuardrail(rewriteB)

	result := engine.ApplyInputGuardrails(context.Background(), "original", nil)

	assert.Equal(t, "first", rewriteB.lastInput, "second guardrail must see the first one's rewrite")
	assert.Equal(t, "second", result.Content(""))
}

func TestFailedGuardrailDoesNotRewriteText(t *testing.T) {
	rewritten := "rewritten"
	failing := &stubGuardrail{name: "a", result: &interfaces.GuardrailResult{
		Status:          interfaces.GuardrailFailed,
		Message:         "rejected",
		ModifiedContent: &rewritten,
	}}
	passing := &stubGuardrail{name: "b", result: passResult("ok")}
	engine := NewEngine(WithFailFast(false)).AddInputGuardrail(failing).AddInputGuardrail(passing)

	engine.ApplyInputGuardrails(context.Background(), "original", nil)

	assert.Equal(t, "original", passing.lastInput, "a failing guardrail's rewrite must not propagate")
}

// Later guardrails overwrite earlier metadata keys on collision. This
// is defined behavior, if a surprising one; the test pins it down.
func TestMetadataMergeLaterGuardrailWins(t *testing.T) {
	a := &stubGuardrail{name: "a", result: &interfaces.GuardrailResult{
		Status:   interfaces.GuardrailPassed,
		Message:  "ok",
		Metadata: map[string]interface{}{"shared": "from-a", "only_a": 1},
	}}
	b := &stubGuardrail{name: "b", result: &interfaces.GuardrailResult{
		Status:   interfaces.GuardrailPassed,
		Message:  "ok",
		Metadata: map[string]interface{}{"shared": "from-b"},
	}}
	engine := NewEngine().AddInputGuardrail(a).AddInputGuardrail(b)

	result := engine.ApplyInputGuardrails(context.Background(), "hello", nil)

	assert.Equal(t, "from-b", result.Metadata["shared"])
	assert.Equal(t, 1, result.Metadata["only_a"])
}

func TestGuardrailErrorIsAbsorbedAsFailure(t *testing.T) {
	broken := &stubGuardrail{name: "broken", err: errors.New("boom")}
	engine := NewEngine().AddInputGuardrail(broken)

	result := engine.ApplyInputGuardrails(context.Background(), "hello", nil)

	require.NotNil(t, result)
	assert.Equal(t, interfaces.GuardrailFailed, result.Status)
	assert.Contains(t, result.Message, "broken")
	assert.Contains(t, result.Message, "boom")
}

func TestGuardrailErrorCollectAllContinues(t *testing.T) {
	broken := &stubGuardrail{name: "broken", err: errors.New("boom")}
	passing := &stubGuardrail{name: "b", result: passResult("fine")}
	engine := NewEngine(WithFailFast(false)).AddInputGuardrail(broken).AddInputGuardrail(passing)

	result := engine.ApplyInputGuardrails(context.Background(), "hello", nil)

	assert.Equal(t, interfaces.GuardrailFailed, result.Status)
	assert.Equal(t, 1, passing.calls)
	assert.Contains(t, result.Message, "boom")
	assert.Contains(t, result.Message, "b: fine")
}

func TestDisabledGuardrailIsSkipped(t *testing.T) {
	skipped := &stubGuardrail{name: "off", disabled: true, result: failResult("nope")}
	engine := NewEngine().AddInputGuardrail(skipped)

	result := engine.ApplyInputGuardrails(context.Background(), "hello", nil)

	assert.Equal(t, interfaces.GuardrailPassed, result.Status)
	assert.Equal(t, 0, skipped.calls)
}

func TestOutputPipelineReceivesOriginalInput(t *testing.T) {
	var seenInput string
	check := &recordingOutputGuardrail{onFilter: func(output, input string) {
		seenInput = input
	}}
	engine := NewEngine().AddOutputGuardrail(check)

	engine.ApplyOutputGuardrails(context.Background(), "response", "what was asked", nil)

	assert.Equal(t, "what was asked", seenInput)
}

type recordingOutputGuardrail struct {
	onFilter func(output, input string)
}

func (r *recordingOutputGuardrail) Name() string   { return "recorder" }
func (r *recordingOutputGuardrail) Enabled() bool  { return true }
func (r *recordingOutputGuardrail) String() string { return "recorder" }

func (r *recordingOutputGuardrail) Filter(ctx context.Context, output string, input string, metadata map[string]interface{}) (*interfaces.GuardrailResult, error) {
	r.onFilter(output, input)
	return passResult("ok"), nil
}

type stubTracer struct {
	spans []*stubSpan
}

type stubSpan struct {
	name       string
	ended      bool
	attributes map[string]interface{}
	events     []string
}

func (t *stubTracer) StartSpan(ctx context.Context, name string) (context.Context, interfaces.Span) {
	span := &stubSpan{name: name, attributes: map[string]interface{}{}}
	t.spans = append(t.spans, span)
	return ctx, span
}

func (s *stubSpan) End() { s.ended = true }

func (s *stubSpan) AddEvent(name string, attributes map[string]interface{}) {
	s.events = append(s.events, name)
}

func (s *stubSpan) SetAttribute(key string, value interface{}) {
	s.attributes[key] = value
}

func TestPipelineRecordsSpan(t *testing.T) {
	tracer := &stubTracer{}
	failing := &stubGuardrail{name: "a", result: failResult("nope")}
	engine := NewEngine(WithTracer(tracer), WithFailFast(false)).AddInputGuardrail(failing)

	engine.ApplyInputGuardrails(context.Background(), "hello", nil)

	require.Len(t, tracer.spans, 1)
	span := tracer.spans[0]
	assert.Equal(t, "guardrails.input", span.name)
	assert.True(t, span.ended)
	assert.Equal(t, 1, span.attributes["guardrails.count"])
	assert.Equal(t, "failed", span.attributes["guardrails.status"])
	assert.Contains(t, span.events, "guardrail.failed")
}

func TestStats(t *testing.T) {
	lengthValidator, err := NewLengthValidator(WithMinLength(2))
	require.NoError(t, err)

	engine := NewEngine(WithFailFast(false)).
		AddInputGuardrail(lengthValidator).
		AddOutputGuardrail(NewPIIFilter())

	stats := engine.Stats()

	assert.True(t, stats.Enabled)
	assert.False(t, stats.FailFast)
	assert.Equal(t, 1, stats.InputGuardrails)
	assert.Equal(t, 1, stats.OutputGuardrails)
	assert.Equal(t, 2, stats.TotalGuardrails)
	require.Len(t, stats.InputGuardrailsList, 1)
	assert.Contains(t, stats.InputGuardrailsList[0], "length_validator")
	require.Len(t, stats.OutputGuardrailsList, 1)
	assert.Contains(t, stats.OutputGuardrailsList[0], "pii_filter")
}
