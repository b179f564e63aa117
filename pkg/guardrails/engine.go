// Package guardrails provides the pipeline engine that runs configurable
// input and output checks around any wrapped agent.
package guardrails

import (
	"context"
	"fmt"
	"strings"

	"github.com/run-bigpig/llm-guardrails/pkg/adapters"
	"github.com/run-bigpig/llm-guardrails/pkg/interfaces"
	"github.com/run-bigpig/llm-guardrails/pkg/logging"
)

// Engine owns the ordered input and output guardrail lists and runs the
// pipelines. The lists are append-only; insertion order is execution
// order. After wiring, the engine holds no mutable state, so one engine
// may protect many agents concurrently.
type Engine struct {
	inputGuardrails  []interfaces.InputGuardrail
	outputGuardrails []interfaces.OutputGuardrail
	enabled          bool
	failFast         bool
	logger           logging.Logger
	tracer           interfaces.Tracer
}

// Option represents an option for configuring an engine
type Option func(*Engine)

// WithEnabled sets whether the engine runs its guardrails at all.
// A disabled engine passes all text through untouched.
func WithEnabled(enabled bool) Option {
	return func(e *Engine) {
		e.enabled = enabled
	}
}

// WithFailFast sets the pipeline policy: stop at the first failing
// guardrail (default) or run every guardrail and aggregate the report
func WithFailFast(failFast bool) Option {
	return func(e *Engine) {
		e.failFast = failFast
	}
}

// WithLogger sets the logger for the engine
func WithLogger(logger logging.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithTracer sets the tracer for the engine
func WithTracer(tracer interfaces.Tracer) Option {
	return func(e *Engine) {
		e.tracer = tracer
	}
}

// NewEngine creates a new guardrails engine with the given options
func NewEngine(options ...Option) *Engine {
	engine := &Engine{
		enabled:  true,
		failFast: true,
		logger:   logging.Noop(),
	}

	for _, option := range options {
		option(engine)
	}

	return engine
}

// AddInputGuardrail appends an input guardrail. Returns the engine for
// chaining.
func (e *Engine) AddInputGuardrail(guardrail interfaces.InputGuardrail) *Engine {
	e.inputGuardrails = append(e.inputGuardrails, guardrail)
	e.logger.Info(context.Background(), "Added input guardrail", map[string]interface{}{
		"guardrail": guardrail.String(),
	})
	return e
}

// AddOutputGuardrail appends an output guardrail. Returns the engine for
// chaining.
func (e *Engine) AddOutputGuardrail(guardrail interfaces.OutputGuardrail) *Engine {
	e.outputGuardrails = append(e.outputGuardrails, guardrail)
	e.logger.Info(context.Background(), "Added output guardrail", map[string]interface{}{
		"guardrail": guardrail.String(),
	})
	return e
}

// pipelineStep pairs a guardrail's identity with its check closure so
// the input and output pipelines share one runner
type pipelineStep struct {
	guardrail interfaces.Guardrail
	check     func(ctx context.Context, text string) (*interfaces.GuardrailResult, error)
}

// ApplyInputGuardrails runs every enabled input guardrail against the
// input text and returns the combined result
func (e *Engine) ApplyInputGuardrails(ctx context.Context, input string, metadata map[string]interface{}) *interfaces.GuardrailResult {
	steps := make([]pipelineStep, len(e.inputGuardrails))
	for i, guardrail := range e.inputGuardrails {
		g := guardrail
		steps[i] = pipelineStep{
			guardrail: g,
			check: func(ctx context.Context, text string) (*interfaces.GuardrailResult, error) {
				return g.Validate(ctx, text, metadata)
			},
		}
	}
	return e.runPipeline(ctx, "input", input, steps)
}

// ApplyOutputGuardrails runs every enabled output guardrail against the
// output text. The original user input is passed to each check for
// context.
func (e *Engine) ApplyOutputGuardrails(ctx context.Context, output string, input string, metadata map[string]interface{}) *interfaces.GuardrailResult {
	steps := make([]pipelineStep, len(e.outputGuardrails))
	for i, guardrail := range e.outputGuardrails {
		g := guardrail
		steps[i] = pipelineStep{
			guardrail: g,
			check: func(ctx context.Context, text string) (*interfaces.GuardrailResult, error) {
				return g.Filter(ctx, text, input, metadata)
			},
		}
	}
	return e.runPipeline(ctx, "output", output, steps)
}

// runPipeline executes guardrails in insertion order. Rewritten content
// from one guardrail becomes the input of the next, metadata merges
// with later keys winning, and failures either stop the pipeline
// (fail-fast) or are collected into the aggregated report.
func (e *Engine) runPipeline(ctx context.Context, kind string, text string, steps []pipelineStep) *interfaces.GuardrailResult {
	if !e.enabled {
		return &interfaces.GuardrailResult{
			Status:          interfaces.GuardrailPassed,
			Message:         "Guardrails engine disabled",
			ModifiedContent: &text,
		}
	}

	var span interfaces.Span
	if e.tracer != nil {
		ctx, span = e.tracer.StartSpan(ctx, "guardrails."+kind)
		span.SetAttribute("guardrails.count", len(steps))
		defer span.End()
	}

	currentText := text
	combinedMetadata := make(map[string]interface{})
	var messages []string
	hasFailures := false

	for _, step := range steps {
		if !step.guardrail.Enabled() {
			continue
		}

		name := step.guardrail.Name()
		result, err := step.check(ctx, currentText)
		if err != nil || result == nil {
			// A broken check must not crash the pipeline; absorb it
			// into the result protocol as a failure.
			if err == nil {
				err = fmt.Errorf("guardrail returned no result")
			}
			hasFailures = true
			errorMsg := fmt.Sprintf("Error in %s guardrail %s: %v", kind, name, err)
			e.logger.Error(ctx, errorMsg, nil)
			if e.failFast {
				return &interfaces.GuardrailResult{
					Status:  interfaces.GuardrailFailed,
					Message: errorMsg,
				}
			}
			messages = append(messages, errorMsg)
			continue
		}

		if result.IsFailure() {
			hasFailures = true
			e.logger.Warn(ctx, fmt.Sprintf("%s guardrail failed", kind), map[string]interface{}{
				"guardrail": name,
				"message":   result.Message,
			})
			if span != nil {
				span.AddEvent("guardrail.failed", map[string]interface{}{
					"guardrail": name,
					"status":    string(result.Status),
				})
			}
			if e.failFast {
				return result
			}
			messages = append(messages, fmt.Sprintf("%s: %s", name, result.Message))
			continue
		}

		if result.ModifiedContent != nil {
			currentText = *result.ModifiedContent
		}
		for k, v := range result.Metadata {
			combinedMetadata[k] = v
		}
		messages = append(messages, fmt.Sprintf("%s: %s", name, result.Message))
	}

	finalStatus := interfaces.GuardrailPassed
	if hasFailures {
		finalStatus = interfaces.GuardrailFailed
	}
	if span != nil {
		span.SetAttribute("guardrails.status", string(finalStatus))
	}

	finalMessage := strings.Join(messages, "; ")
	if finalMessage == "" {
		finalMessage = fmt.Sprintf("All %s guardrails passed", kind)
	}

	return &interfaces.GuardrailResult{
		Status:          finalStatus,
		Message:         finalMessage,
		ModifiedContent: &currentText,
		Metadata:        combinedMetadata,
	}
}

// WrapAgent builds an adapter for the agent (auto-detecting its shape
// when variant is empty) and returns a guarded agent bound to this
// engine
func (e *Engine) WrapAgent(agent interface{}, variant adapters.Variant, config *adapters.Config) (*GuardedAgent, error) {
	adapter, err := adapters.New(agent, variant, config)
	if err != nil {
		e.logger.Error(context.Background(), "Failed to create adapter", map[string]interface{}{
			"agent_type": fmt.Sprintf("%T", agent),
			"error":      err.Error(),
		})
		return nil, &WrapError{Err: err}
	}

	e.logger.Info(context.Background(), "Created adapter for agent", map[string]interface{}{
		"agent_type":   fmt.Sprintf("%T", agent),
		"adapter_type": fmt.Sprintf("%T", adapter),
	})

	return &GuardedAgent{adapter: adapter, engine: e}, nil
}

// Stats describes the engine's configuration for introspection and
// debugging; it is not part of the execution contract
type Stats struct {
	Enabled              bool
	FailFast             bool
	InputGuardrails      int
	OutputGuardrails     int
	TotalGuardrails      int
	InputGuardrailsList  []string
	OutputGuardrailsList []string
}

// Stats returns counts and identities of the registered guardrails
func (e *Engine) Stats() Stats {
	inputList := make([]string, len(e.inputGuardrails))
	for i, g := range e.inputGuardrails {
		inputList[i] = g.String()
	}
	outputList := make([]string, len(e.outputGuardrails))
	for i, g := range e.outputGuardrails {
		outputList[i] = g.String()
	}

	return Stats{
		Enabled:              e.enabled,
		FailFast:             e.failFast,
		InputGuardrails:      len(e.inputGuardrails),
		OutputGuardrails:     len(e.outputGuardrails),
		TotalGuardrails:      len(e.inputGuardrails) + len(e.outputGuardrails),
		InputGuardrailsList:  inputList,
		OutputGuardrailsList: outputList,
	}
}
