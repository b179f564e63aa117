package tracing

import (
	"context"
	"fmt"
	"time"

	"github.com/henomis/langfuse-go"
	"github.com/henomis/langfuse-go/model"
	"github.com/run-bigpig/llm-guardrails/pkg/interfaces"
	"github.com/run-bigpig/llm-guardrails/pkg/multitenancy"
)

// LangfuseTracer records guarded chat calls and guardrail decisions in
// Langfuse. It implements interfaces.Tracer so it can be injected into
// an engine with WithTracer. Configuration is explicit; nothing is read
// from global state at construction.
type LangfuseTracer struct {
	client      *langfuse.Langfuse
	enabled     bool
	environment string
}

var _ interfaces.Tracer = (*LangfuseTracer)(nil)

// LangfuseConfig contains configuration for Langfuse
type LangfuseConfig struct {
	// Enabled determines whether Langfuse tracing is enabled
	Enabled bool

	// Environment is the environment name (e.g., "production", "staging")
	Environment string
}

// NewLangfuseTracer creates a new Langfuse tracer. The client picks up
// its credentials from the standard Langfuse environment variables.
func NewLangfuseTracer(config LangfuseConfig) *LangfuseTracer {
	if !config.Enabled {
		return &LangfuseTracer{enabled: false}
	}

	return &LangfuseTracer{
		client:      langfuse.New(context.Background()),
		enabled:     true,
		environment: config.Environment,
	}
}

// StartSpan starts a new span. The span is delivered to Langfuse when
// End is called, with any added events attached as its children.
// Disabled tracers return a no-op span.
func (t *LangfuseTracer) StartSpan(ctx context.Context, name string) (context.Context, interfaces.Span) {
	if !t.enabled {
		return ctx, noopSpan{}
	}

	return ctx, &langfuseSpan{
		tracer:     t,
		ctx:        ctx,
		name:       name,
		startTime:  time.Now(),
		attributes: map[string]interface{}{},
	}
}

// langfuseSpan buffers attributes and events until End, when the span
// and its events are handed to the batching client
type langfuseSpan struct {
	tracer     *LangfuseTracer
	ctx        context.Context
	name       string
	startTime  time.Time
	attributes map[string]interface{}
	events     []*model.Event
}

func (s *langfuseSpan) SetAttribute(key string, value interface{}) {
	s.attributes[key] = value
}

func (s *langfuseSpan) AddEvent(name string, attributes map[string]interface{}) {
	s.events = append(s.events, &model.Event{
		Name:     name,
		Metadata: s.tracer.commonMetadata(s.ctx, attributes),
	})
}

// End records the span and its buffered events. Delivery is best
// effort; a tracing failure must never fail the guarded call.
func (s *langfuseSpan) End() {
	endTime := time.Now()
	span := &model.Span{
		Name:      s.name,
		StartTime: &s.startTime,
		EndTime:   &endTime,
		Metadata:  s.tracer.commonMetadata(s.ctx, s.attributes),
	}

	var id string
	created, err := s.tracer.client.Span(span, &id)
	if err != nil {
		return
	}

	for _, event := range s.events {
		event.ParentObservationID = created.ID
		var eventID string
		_, _ = s.tracer.client.Event(event, &eventID)
	}
}

// Flush drains the client's event queue. langfuse-go batches
// asynchronously, so callers must flush before exit or recent
// observations are lost.
func (t *LangfuseTracer) Flush() error {
	if !t.enabled {
		return nil
	}

	t.client.Flush(context.Background())
	return nil
}

// TraceChat records a complete guarded chat call as a generation
func (t *LangfuseTracer) TraceChat(ctx context.Context, agentType string, input string, response string, startTime time.Time, endTime time.Time, metadata map[string]interface{}) (string, error) {
	if !t.enabled {
		return "", nil
	}

	metadataM := t.commonMetadata(ctx, metadata)

	generation := &model.Generation{
		Name:      fmt.Sprintf("guarded-chat-%d", time.Now().UnixNano()),
		StartTime: &startTime,
		EndTime:   &endTime,
		Model:     agentType,
		Input: []model.M{
			{
				"input": input,
			},
		},
		Output: model.M{
			"response": response,
		},
		Metadata: metadataM,
	}

	var id string
	generationID, err := t.client.Generation(generation, &id)
	if err != nil {
		return "", fmt.Errorf("failed to create Langfuse generation: %w", err)
	}

	return generationID.ID, nil
}

// TraceGuardrail records one guardrail decision as an event. Level is
// "DEFAULT" for passes and "WARNING" for failures and rewrites.
func (t *LangfuseTracer) TraceGuardrail(ctx context.Context, guardrailName string, input interface{}, outcome interface{}, level string, metadata map[string]interface{}, parentID string) (string, error) {
	if !t.enabled {
		return "", nil
	}

	event := &model.Event{
		Name:     guardrailName,
		Input:    input,
		Output:   outcome,
		Level:    model.ObservationLevel(level),
		Metadata: t.commonMetadata(ctx, metadata),
	}
	if parentID != "" {
		event.ParentObservationID = parentID
	}

	var id string
	eventID, err := t.client.Event(event, &id)
	if err != nil {
		return "", fmt.Errorf("failed to create Langfuse event: %w", err)
	}

	return eventID.ID, nil
}

func (t *LangfuseTracer) commonMetadata(ctx context.Context, metadata map[string]interface{}) model.M {
	m := make(model.M, len(metadata)+2)
	for k, v := range metadata {
		m[k] = v
	}
	if orgID, err := multitenancy.GetOrgID(ctx); err == nil {
		m["org_id"] = orgID
	}
	m["environment"] = t.environment
	return m
}
