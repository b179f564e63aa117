package adapters

import (
	"context"
	"fmt"
)

// langchainAdapter handles chain-framework agents that expose either
// Invoke or Run. Invoke is tried first with the text under "input";
// map results are unwrapped through "output", then "text", then
// stringified whole.
type langchainAdapter struct {
	agent  interface{}
	invoke InvokeAgent
	run    RunAgent
}

func newLangChainAdapter(agent interface{}) (*langchainAdapter, error) {
	a := &langchainAdapter{agent: agent}

	if target, ok := agent.(InvokeAgent); ok {
		a.invoke = target
	}
	if target, ok := agent.(RunAgent); ok {
		a.run = target
	}

	if a.invoke == nil && a.run == nil {
		return nil, fmt.Errorf("langchain adapter requires an agent with Invoke or Run, got %T", agent)
	}
	return a, nil
}

func (a *langchainAdapter) Chat(ctx context.Context, input string, extras map[string]interface{}) (string, error) {
	if a.invoke != nil {
		result, err := a.invoke.Invoke(ctx, map[string]interface{}{"input": input})
		if err != nil {
			return "", err
		}

		if m, ok := result.(map[string]interface{}); ok {
			if v, exists := m["output"]; exists {
				return stringify(v), nil
			}
			if v, exists := m["text"]; exists {
				return stringify(v), nil
			}
		}
		return stringify(result), nil
	}

	result, err := a.run.Run(ctx, input, nil)
	if err != nil {
		return "", err
	}
	return stringify(result), nil
}

func (a *langchainAdapter) Unwrap() interface{} {
	return a.agent
}
