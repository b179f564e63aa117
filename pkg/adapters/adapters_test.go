package adapters

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatOnlyAgent struct{}

func (chatOnlyAgent) Chat(ctx context.Context, input string, extras map[string]interface{}) (string, error) {
	return "chat:" + input, nil
}

type invokeOnlyAgent struct {
	lastPayload map[string]interface{}
	result      interface{}
}

func (a *invokeOnlyAgent) Invoke(ctx context.Context, payload map[string]interface{}) (interface{}, error) {
	a.lastPayload = payload
	return a.result, nil
}

type runOnlyAgent struct{}

func (runOnlyAgent) Run(ctx context.Context, input string, extras map[string]interface{}) (interface{}, error) {
	return 42, nil
}

// chatAndInvokeAgent exposes both shapes; detection must prefer chat
type chatAndInvokeAgent struct{}

func (chatAndInvokeAgent) Chat(ctx context.Context, input string, extras map[string]interface{}) (string, error) {
	return "via chat", nil
}

func (chatAndInvokeAgent) Invoke(ctx context.Context, payload map[string]interface{}) (interface{}, error) {
	return "via invoke", nil
}

type unknownShapeAgent struct{}

func (unknownShapeAgent) SomeOtherMethod() {}

func TestDetectPrecedence(t *testing.T) {
	variant, err := Detect(chatAndInvokeAgent{})
	require.NoError(t, err)
	assert.Equal(t, VariantChat, variant, "chat must win over invoke")

	variant, err = Detect(&invokeOnlyAgent{})
	require.NoError(t, err)
	assert.Equal(t, VariantInvoke, variant)

	variant, err = Detect(runOnlyAgent{})
	require.NoError(t, err)
	assert.Equal(t, VariantRun, variant)

	variant, err = Detect(CallableAgent(func(ctx context.Context, input string, extras map[string]interface{}) (string, error) {
		return "", nil
	}))
	require.NoError(t, err)
	assert.Equal(t, VariantCallable, variant)
}

func TestDetectFailureListsMethods(t *testing.T) {
	_, err := Detect(unknownShapeAgent{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "SomeOtherMethod")
}

func TestDetectNilAgent(t *testing.T) {
	_, err := Detect(nil)
	assert.Error(t, err)
}

func TestChatAdapterPassesThrough(t *testing.T) {
	adapter, err := New(chatOnlyAgent{}, "", nil)
	require.NoError(t, err)

	response, err := adapter.Chat(context.Background(), "hello", nil)
	require.NoError(t, err)
	assert.Equal(t, "chat:hello", response)
}

func TestInvokeAdapterWrapsInputAndMergesExtras(t *testing.T) {
	agent := &invokeOnlyAgent{result: "done"}
	adapter, err := New(agent, "", nil)
	require.NoError(t, err)

	response, err := adapter.Chat(context.Background(), "hello", map[string]interface{}{"session": "s1"})
	require.NoError(t, err)

	assert.Equal(t, "done", response)
	assert.Equal(t, "hello", agent.lastPayload["input"])
	assert.Equal(t, "s1", agent.lastPayload["session"])
}

func TestInvokeAdapterExtractsOutputKey(t *testing.T) {
	agent := &invokeOnlyAgent{result: map[string]interface{}{"answer": "42", "noise": true}}
	adapter, err := New(agent, VariantInvoke, &Config{InputKey: "question", OutputKey: "answer"})
	require.NoError(t, err)

	response, err := adapter.Chat(context.Background(), "what now", nil)
	require.NoError(t, err)

	assert.Equal(t, "42", response)
	assert.Equal(t, "what now", agent.lastPayload["question"])
}

func TestInvokeAdapterStringifiesWithoutOutputKey(t *testing.T) {
	agent := &invokeOnlyAgent{result: 7}
	adapter, err := New(agent, "", nil)
	require.NoError(t, err)

	response, err := adapter.Chat(context.Background(), "hello", nil)
	require.NoError(t, err)
	assert.Equal(t, "7", response)
}

func TestRunAdapterStringifies(t *testing.T) {
	adapter, err := New(runOnlyAgent{}, "", nil)
	require.NoError(t, err)

	response, err := adapter.Chat(context.Background(), "hello", nil)
	require.NoError(t, err)
	assert.Equal(t, "42", response)
}

func TestCallableAdapter(t *testing.T) {
	fn := func(ctx context.Context, input string, extras map[string]interface{}) (string, error) {
		return "echo " + input, nil
	}
	adapter, err := New(fn, "", nil)
	require.NoError(t, err)

	response, err := adapter.Chat(context.Background(), "hi", nil)
	require.NoError(t, err)
	assert.Equal(t, "echo hi", response)
}

func TestCustomAdapterRequiresMethod(t *testing.T) {
	_, err := New(struct{}{}, VariantCustom, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Method")
}

func TestCustomAdapterTransforms(t *testing.T) {
	var gotArgs []interface{}
	var gotKwargs map[string]interface{}

	config := &Config{
		Method: func(ctx context.Context, args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
			gotArgs = args
			gotKwargs = kwargs
			return 3.14, nil
		},
		InputTransform: func(input string, extras map[string]interface{}) ([]interface{}, map[string]interface{}) {
			return []interface{}{input, "extra-arg"}, map[string]interface{}{"mode": "fast"}
		},
		OutputTransform: func(result interface{}) string {
			return fmt.Sprintf("result=%v", result)
		},
	}

	adapter, err := New(struct{}{}, VariantCustom, config)
	require.NoError(t, err)

	response, err := adapter.Chat(context.Background(), "go", nil)
	require.NoError(t, err)

	assert.Equal(t, "result=3.14", response)
	assert.Equal(t, []interface{}{"go", "extra-arg"}, gotArgs)
	assert.Equal(t, "fast", gotKwargs["mode"])
}

func TestCustomAdapterDefaultTransforms(t *testing.T) {
	config := &Config{
		Method: func(ctx context.Context, args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
			return args[0], nil
		},
	}

	adapter, err := New(struct{}{}, VariantCustom, config)
	require.NoError(t, err)

	response, err := adapter.Chat(context.Background(), "ping", nil)
	require.NoError(t, err)
	assert.Equal(t, "ping", response)
}

func TestLangChainAdapterPrefersInvoke(t *testing.T) {
	agent := &invokeOnlyAgent{result: map[string]interface{}{"output": "from output key"}}
	adapter, err := New(agent, VariantLangChain, nil)
	require.NoError(t, err)

	response, err := adapter.Chat(context.Background(), "hello", nil)
	require.NoError(t, err)

	assert.Equal(t, "from output key", response)
	assert.Equal(t, "hello", agent.lastPayload["input"])
}

func TestLangChainAdapterFallsBackToTextKey(t *testing.T) {
	agent := &invokeOnlyAgent{result: map[string]interface{}{"text": "from text key"}}
	adapter, err := New(agent, VariantLangChain, nil)
	require.NoError(t, err)

	response, err := adapter.Chat(context.Background(), "hello", nil)
	require.NoError(t, err)
	assert.Equal(t, "from text key", response)
}

func TestLangChainAdapterUsesRunWithoutInvoke(t *testing.T) {
	adapter, err := New(runOnlyAgent{}, VariantLangChain, nil)
	require.NoError(t, err)

	response, err := adapter.Chat(context.Background(), "hello", nil)
	require.NoError(t, err)
	assert.Equal(t, "42", response)
}

func TestUnknownVariantListsValidOnes(t *testing.T) {
	_, err := New(chatOnlyAgent{}, Variant("bogus"), nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "bogus")
	assert.Contains(t, err.Error(), "openai_client")
	assert.Contains(t, err.Error(), "langchain")
}

func TestExplicitVariantMismatch(t *testing.T) {
	_, err := New(chatOnlyAgent{}, VariantInvoke, nil)
	assert.Error(t, err)
}

func TestUnwrapReturnsAgent(t *testing.T) {
	agent := &invokeOnlyAgent{}
	adapter, err := New(agent, "", nil)
	require.NoError(t, err)

	assert.Same(t, agent, adapter.Unwrap())
}
