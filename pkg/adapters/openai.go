package adapters

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// openaiAdapter drives a raw OpenAI client through the chat contract.
// Auto-detection never selects this variant; the caller declares it.
type openaiAdapter struct {
	client       *openai.Client
	model        string
	systemPrompt string
}

func newOpenAIAdapter(agent interface{}, config *Config) (*openaiAdapter, error) {
	client, ok := agent.(*openai.Client)
	if !ok {
		return nil, fmt.Errorf("openai_client adapter requires an *openai.Client, got %T", agent)
	}

	model := config.Model
	if model == "" {
		model = openai.GPT3Dot5Turbo
	}

	return &openaiAdapter{
		client:       client,
		model:        model,
		systemPrompt: config.SystemPrompt,
	}, nil
}

func (a *openaiAdapter) Chat(ctx context.Context, input string, extras map[string]interface{}) (string, error) {
	messages := []openai.ChatCompletionMessage{}

	if a.systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: a.systemPrompt,
		})
	}

	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: input,
	})

	req := openai.ChatCompletionRequest{
		Model:    a.model,
		Messages: messages,
	}

	// Forward recognized request options from extras
	if temp, ok := extras["temperature"].(float64); ok {
		req.Temperature = float32(temp)
	}
	if maxTokens, ok := extras["max_tokens"].(int); ok {
		req.MaxTokens = maxTokens
	}

	resp, err := a.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no completion choices returned")
	}

	return resp.Choices[0].Message.Content, nil
}

func (a *openaiAdapter) Unwrap() interface{} {
	return a.client
}
