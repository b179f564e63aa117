// Package adapters normalizes agents of different native shapes to a
// single chat contract so guardrails can wrap them without changes to
// the agent's own code.
package adapters

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Variant identifies an adapter type
type Variant string

const (
	// VariantChat wraps agents with a native Chat method
	VariantChat Variant = "chat"

	// VariantInvoke wraps agents with an Invoke method taking a payload map
	VariantInvoke Variant = "invoke"

	// VariantRun wraps agents with a Run method
	VariantRun Variant = "run"

	// VariantCallable wraps bare functions with the canonical chat signature
	VariantCallable Variant = "callable"

	// VariantCustom wraps agents through caller-supplied transform functions
	VariantCustom Variant = "custom"

	// VariantOpenAIClient wraps a raw OpenAI client
	VariantOpenAIClient Variant = "openai_client"

	// VariantLangChain wraps LangChain-style agents exposing Invoke or Run
	VariantLangChain Variant = "langchain"
)

// Adapter presents one invocation contract over an agent of arbitrary
// native shape. Everything not related to Chat stays reachable through
// Unwrap.
type Adapter interface {
	// Chat sends the input to the wrapped agent and returns its response
	Chat(ctx context.Context, input string, extras map[string]interface{}) (string, error)

	// Unwrap returns the raw wrapped agent
	Unwrap() interface{}
}

// ChatAgent is the framework's canonical agent shape
type ChatAgent interface {
	Chat(ctx context.Context, input string, extras map[string]interface{}) (string, error)
}

// InvokeAgent is the payload-map shape common in chain frameworks
type InvokeAgent interface {
	Invoke(ctx context.Context, payload map[string]interface{}) (interface{}, error)
}

// RunAgent is the plain run shape
type RunAgent interface {
	Run(ctx context.Context, input string, extras map[string]interface{}) (interface{}, error)
}

// CallableAgent is a bare function usable as an agent
type CallableAgent func(ctx context.Context, input string, extras map[string]interface{}) (string, error)

// Config carries adapter-specific options. Each field is interpreted
// only by the corresponding variant.
type Config struct {
	// InputKey is the payload key the invoke variant wraps the text under
	InputKey string

	// OutputKey, when set, is extracted from map results of the invoke variant
	OutputKey string

	// Method is the bound target of the custom variant
	Method func(ctx context.Context, args []interface{}, kwargs map[string]interface{}) (interface{}, error)

	// InputTransform maps (text, extras) to the custom method's arguments.
	// Defaults to ([text], {}).
	InputTransform func(input string, extras map[string]interface{}) ([]interface{}, map[string]interface{})

	// OutputTransform maps the custom method's raw result to a string.
	// Defaults to stringify.
	OutputTransform func(result interface{}) string

	// Model is the target model id for the OpenAI client variant
	Model string

	// SystemPrompt is an optional leading system message for the OpenAI
	// client variant
	SystemPrompt string
}

// Detect determines the adapter variant for an agent by capability.
// The order is deliberate: Chat is the framework's own shape so it wins,
// Invoke and Run mirror common third-party conventions, and bare
// callables are the most permissive so they are checked last. Detection
// only looks at capability presence, never at behavior; a Chat method
// with broken semantics surfaces its error at call time.
func Detect(agent interface{}) (Variant, error) {
	if agent == nil {
		return "", fmt.Errorf("cannot detect interface of nil agent")
	}

	switch agent.(type) {
	case ChatAgent:
		return VariantChat, nil
	case InvokeAgent:
		return VariantInvoke, nil
	case RunAgent:
		return VariantRun, nil
	case CallableAgent:
		return VariantCallable, nil
	case func(ctx context.Context, input string, extras map[string]interface{}) (string, error):
		return VariantCallable, nil
	}

	return "", fmt.Errorf("unable to detect agent interface for %T, exported methods: [%s]",
		agent, strings.Join(exportedMethods(agent), ", "))
}

// New creates an adapter for the agent. When variant is empty the agent
// shape is auto-detected; otherwise the caller takes responsibility for
// the variant being correct.
func New(agent interface{}, variant Variant, config *Config) (Adapter, error) {
	if variant == "" {
		detected, err := Detect(agent)
		if err != nil {
			return nil, err
		}
		variant = detected
	}

	if config == nil {
		config = &Config{}
	}

	switch variant {
	case VariantChat:
		target, ok := agent.(ChatAgent)
		if !ok {
			return nil, fmt.Errorf("agent %T does not implement the chat interface", agent)
		}
		return &chatAdapter{agent: agent, target: target}, nil
	case VariantInvoke:
		target, ok := agent.(InvokeAgent)
		if !ok {
			return nil, fmt.Errorf("agent %T does not implement the invoke interface", agent)
		}
		inputKey := config.InputKey
		if inputKey == "" {
			inputKey = "input"
		}
		return &invokeAdapter{agent: agent, target: target, inputKey: inputKey, outputKey: config.OutputKey}, nil
	case VariantRun:
		target, ok := agent.(RunAgent)
		if !ok {
			return nil, fmt.Errorf("agent %T does not implement the run interface", agent)
		}
		return &runAdapter{agent: agent, target: target}, nil
	case VariantCallable:
		return newCallableAdapter(agent)
	case VariantCustom:
		return newCustomAdapter(agent, config)
	case VariantOpenAIClient:
		return newOpenAIAdapter(agent, config)
	case VariantLangChain:
		return newLangChainAdapter(agent)
	default:
		return nil, fmt.Errorf("unsupported adapter variant %q, valid variants: %s, %s, %s, %s, %s, %s, %s",
			variant, VariantChat, VariantInvoke, VariantRun, VariantCallable,
			VariantCustom, VariantOpenAIClient, VariantLangChain)
	}
}

// chatAdapter passes the canonical contract straight through
type chatAdapter struct {
	agent  interface{}
	target ChatAgent
}

func (a *chatAdapter) Chat(ctx context.Context, input string, extras map[string]interface{}) (string, error) {
	return a.target.Chat(ctx, input, extras)
}

func (a *chatAdapter) Unwrap() interface{} {
	return a.agent
}

// invokeAdapter wraps the text under a configurable payload key, merges
// extras into the payload and extracts a configurable output key from
// map results
type invokeAdapter struct {
	agent     interface{}
	target    InvokeAgent
	inputKey  string
	outputKey string
}

func (a *invokeAdapter) Chat(ctx context.Context, input string, extras map[string]interface{}) (string, error) {
	payload := map[string]interface{}{a.inputKey: input}
	for k, v := range extras {
		payload[k] = v
	}

	result, err := a.target.Invoke(ctx, payload)
	if err != nil {
		return "", err
	}

	if a.outputKey != "" {
		if m, ok := result.(map[string]interface{}); ok {
			if v, exists := m[a.outputKey]; exists {
				return stringify(v), nil
			}
		}
	}
	return stringify(result), nil
}

func (a *invokeAdapter) Unwrap() interface{} {
	return a.agent
}

type runAdapter struct {
	agent  interface{}
	target RunAgent
}

func (a *runAdapter) Chat(ctx context.Context, input string, extras map[string]interface{}) (string, error) {
	result, err := a.target.Run(ctx, input, extras)
	if err != nil {
		return "", err
	}
	return stringify(result), nil
}

func (a *runAdapter) Unwrap() interface{} {
	return a.agent
}

type callableAdapter struct {
	agent interface{}
	fn    CallableAgent
}

func newCallableAdapter(agent interface{}) (*callableAdapter, error) {
	switch fn := agent.(type) {
	case CallableAgent:
		return &callableAdapter{agent: agent, fn: fn}, nil
	case func(ctx context.Context, input string, extras map[string]interface{}) (string, error):
		return &callableAdapter{agent: agent, fn: fn}, nil
	default:
		return nil, fmt.Errorf("agent %T is not callable with (ctx, input, extras)", agent)
	}
}

func (a *callableAdapter) Chat(ctx context.Context, input string, extras map[string]interface{}) (string, error) {
	return a.fn(ctx, input, extras)
}

func (a *callableAdapter) Unwrap() interface{} {
	return a.agent
}

// customAdapter invokes a caller-supplied bound method through injected
// input/output transform functions
type customAdapter struct {
	agent           interface{}
	method          func(ctx context.Context, args []interface{}, kwargs map[string]interface{}) (interface{}, error)
	inputTransform  func(input string, extras map[string]interface{}) ([]interface{}, map[string]interface{})
	outputTransform func(result interface{}) string
}

func newCustomAdapter(agent interface{}, config *Config) (*customAdapter, error) {
	if config.Method == nil {
		return nil, fmt.Errorf("custom adapter requires a Method in its config")
	}

	inputTransform := config.InputTransform
	if inputTransform == nil {
		inputTransform = func(input string, extras map[string]interface{}) ([]interface{}, map[string]interface{}) {
			return []interface{}{input}, map[string]interface{}{}
		}
	}

	outputTransform := config.OutputTransform
	if outputTransform == nil {
		outputTransform = stringify
	}

	return &customAdapter{
		agent:           agent,
		method:          config.Method,
		inputTransform:  inputTransform,
		outputTransform: outputTransform,
	}, nil
}

func (a *customAdapter) Chat(ctx context.Context, input string, extras map[string]interface{}) (string, error) {
	args, kwargs := a.inputTransform(input, extras)

	result, err := a.method(ctx, args, kwargs)
	if err != nil {
		return "", err
	}

	return a.outputTransform(result), nil
}

func (a *customAdapter) Unwrap() interface{} {
	return a.agent
}

func stringify(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// exportedMethods lists the exported methods of the agent's type for
// detection diagnostics
func exportedMethods(agent interface{}) []string {
	t := reflect.TypeOf(agent)
	if t == nil {
		return nil
	}

	names := make([]string, 0, t.NumMethod())
	for i := 0; i < t.NumMethod(); i++ {
		names = append(names, t.Method(i).Name)
	}
	sort.Strings(names)
	return names
}
