package guardrails

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/run-bigpig/llm-guardrails/pkg/adapters"
	"github.com/run-bigpig/llm-guardrails/pkg/multitenancy"
)

// GuardedAgent is the runtime object handed back to the caller. Each
// Chat call runs the input pipeline, invokes the agent through its
// adapter, then runs the output pipeline. The raw agent stays reachable
// through Unwrap for agent-specific extensions outside the chat path.
type GuardedAgent struct {
	adapter adapters.Adapter
	engine  *Engine
}

// Chat sends the input through the guardrails pipelines and the wrapped
// agent. It returns an *InputBlockedError or *OutputBlockedError when a
// pipeline rejects the text, and an *AgentExecutionError when the agent
// itself fails.
func (g *GuardedAgent) Chat(ctx context.Context, userInput string, extras map[string]interface{}) (string, error) {
	metadata := map[string]interface{}{
		"call_id":      uuid.NewString(),
		"adapter_type": fmt.Sprintf("%T", g.adapter),
		"agent_type":   fmt.Sprintf("%T", g.adapter.Unwrap()),
		"extras":       extras,
	}
	if orgID, err := multitenancy.GetOrgID(ctx); err == nil {
		metadata["org_id"] = orgID
	}

	inputResult := g.engine.ApplyInputGuardrails(ctx, userInput, metadata)
	if inputResult.IsFailure() {
		g.engine.logger.Error(ctx, "Input blocked by guardrails", map[string]interface{}{
			"message": inputResult.Message,
		})
		return "", &InputBlockedError{Result: inputResult}
	}

	processedInput := inputResult.Content(userInput)

	response, err := g.adapter.Chat(ctx, processedInput, extras)
	if err != nil {
		// Guardrail conditions from a nested guarded agent pass through
		// un-rewrapped.
		var inputBlocked *InputBlockedError
		var outputBlocked *OutputBlockedError
		if errors.As(err, &inputBlocked) || errors.As(err, &outputBlocked) {
			return "", err
		}
		g.engine.logger.Error(ctx, "Agent execution failed", map[string]interface{}{
			"error": err.Error(),
		})
		return "", &AgentExecutionError{Err: err}
	}

	// Output checks get the original user input for context, not the
	// input-side rewrite.
	outputResult := g.engine.ApplyOutputGuardrails(ctx, response, userInput, metadata)
	if outputResult.IsFailure() {
		g.engine.logger.Error(ctx, "Output blocked by guardrails", map[string]interface{}{
			"message": outputResult.Message,
		})
		return "", &OutputBlockedError{Result: outputResult}
	}

	return outputResult.Content(response), nil
}

// Unwrap returns the raw wrapped agent so callers can reach
// agent-specific members the chat contract does not cover
func (g *GuardedAgent) Unwrap() interface{} {
	return g.adapter.Unwrap()
}

// Adapter returns the adapter normalizing the wrapped agent
func (g *GuardedAgent) Adapter() adapters.Adapter {
	return g.adapter
}

// Stats returns the protecting engine's stats plus the wrapped agent's
// types
func (g *GuardedAgent) Stats() map[string]interface{} {
	stats := g.engine.Stats()
	return map[string]interface{}{
		"enabled":           stats.Enabled,
		"fail_fast":         stats.FailFast,
		"input_guardrails":  stats.InputGuardrails,
		"output_guardrails": stats.OutputGuardrails,
		"total_guardrails":  stats.TotalGuardrails,
		"adapter_type":      fmt.Sprintf("%T", g.adapter),
		"agent_type":        fmt.Sprintf("%T", g.adapter.Unwrap()),
	}
}

// String implements fmt.Stringer
func (g *GuardedAgent) String() string {
	stats := g.engine.Stats()
	return fmt.Sprintf("GuardedAgent(adapter=%T, agent=%T, guardrails=%d)",
		g.adapter, g.adapter.Unwrap(), stats.TotalGuardrails)
}
