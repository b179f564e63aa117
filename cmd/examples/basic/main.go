package main

import (
	"context"
	"fmt"
	"log"

	"github.com/run-bigpig/llm-guardrails/pkg/adapters"
	"github.com/run-bigpig/llm-guardrails/pkg/guardrails"
	"github.com/run-bigpig/llm-guardrails/pkg/logging"
)

// echoAgent is a stand-in agent that leaks contact details
func echoAgent(ctx context.Context, input string, extras map[string]interface{}) (string, error) {
	return fmt.Sprintf("You said %q. Reach me at support@example.com or 555-123-4567.", input), nil
}

func main() {
	lengthValidator, err := guardrails.NewLengthValidator(
		guardrails.WithMinLength(3),
		guardrails.WithMaxLength(200),
	)
	if err != nil {
		log.Fatalf("failed to create length validator: %v", err)
	}

	engine := guardrails.NewEngine(guardrails.WithLogger(logging.New())).
		AddInputGuardrail(lengthValidator).
		AddOutputGuardrail(guardrails.NewPIIFilter())

	agent, err := engine.WrapAgent(adapters.CallableAgent(echoAgent), "", nil)
	if err != nil {
		log.Fatalf("failed to wrap agent: %v", err)
	}

	ctx := context.Background()

	// Too short: blocked before the agent runs
	if _, err := agent.Chat(ctx, "Hi", nil); err != nil {
		fmt.Printf("blocked: %v\n", err)
	}

	// Normal input: the response comes back with PII masked
	response, err := agent.Chat(ctx, "What is your contact info?", nil)
	if err != nil {
		log.Fatalf("chat failed: %v", err)
	}
	fmt.Printf("response: %s\n", response)

	stats := engine.Stats()
	fmt.Printf("guardrails: %d input, %d output\n", stats.InputGuardrails, stats.OutputGuardrails)
}
