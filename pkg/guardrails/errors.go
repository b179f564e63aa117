package guardrails

import (
	"fmt"

	"github.com/run-bigpig/llm-guardrails/pkg/interfaces"
)

// InputBlockedError is returned by GuardedAgent.Chat when an input
// guardrail rejected the request. The agent was never invoked.
type InputBlockedError struct {
	Result *interfaces.GuardrailResult
}

func (e *InputBlockedError) Error() string {
	return fmt.Sprintf("input blocked by guardrails: %s", e.Result.Message)
}

// OutputBlockedError is returned by GuardedAgent.Chat when an output
// guardrail rejected the agent's response
type OutputBlockedError struct {
	Result *interfaces.GuardrailResult
}

func (e *OutputBlockedError) Error() string {
	return fmt.Sprintf("output blocked by guardrails: %s", e.Result.Message)
}

// AgentExecutionError wraps a failure raised by the adapter or the
// underlying agent itself, as opposed to a guardrail decision
type AgentExecutionError struct {
	Err error
}

func (e *AgentExecutionError) Error() string {
	return fmt.Sprintf("agent execution failed: %v", e.Err)
}

func (e *AgentExecutionError) Unwrap() error {
	return e.Err
}

// WrapError is returned by Engine.WrapAgent when no adapter could be
// built for the agent
type WrapError struct {
	Err error
}

func (e *WrapError) Error() string {
	return fmt.Sprintf("unable to wrap agent: %v", e.Err)
}

func (e *WrapError) Unwrap() error {
	return e.Err
}
