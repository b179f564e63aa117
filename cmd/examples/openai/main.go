package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/run-bigpig/llm-guardrails/pkg/adapters"
	"github.com/run-bigpig/llm-guardrails/pkg/guardrails"
	"github.com/run-bigpig/llm-guardrails/pkg/logging"
	"github.com/run-bigpig/llm-guardrails/pkg/tracing"
	openai "github.com/sashabaranov/go-openai"
)

func main() {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Fatal("OPENAI_API_KEY is not set")
	}

	// Langfuse picks up its credentials from the environment; pipeline
	// spans are recorded only when they are set.
	tracer := tracing.NewLangfuseTracer(tracing.LangfuseConfig{
		Enabled:     os.Getenv("LANGFUSE_SECRET_KEY") != "",
		Environment: "development",
	})
	defer func() {
		if err := tracer.Flush(); err != nil {
			log.Printf("failed to flush tracer: %v", err)
		}
	}()

	lengthValidator, err := guardrails.NewLengthValidator(
		guardrails.WithMaxLength(2000),
		guardrails.WithTruncate(true),
	)
	if err != nil {
		log.Fatalf("failed to create length validator: %v", err)
	}

	engine := guardrails.NewEngine(guardrails.WithLogger(logging.New()), guardrails.WithTracer(tracer)).
		AddInputGuardrail(lengthValidator).
		AddOutputGuardrail(guardrails.NewPIIFilter(guardrails.WithStrictMode(true)))

	agent, err := engine.WrapAgent(openai.NewClient(apiKey), adapters.VariantOpenAIClient, &adapters.Config{
		Model:        openai.GPT4o,
		SystemPrompt: "You are a concise assistant.",
	})
	if err != nil {
		log.Fatalf("failed to wrap agent: %v", err)
	}

	response, err := agent.Chat(context.Background(), "Summarize what a guardrail pipeline does.", map[string]interface{}{
		"temperature": 0.2,
	})
	if err != nil {
		log.Fatalf("chat failed: %v", err)
	}

	fmt.Println(response)
}
