package observability

import (
	"context"
	"log"
	"os"
	"time"

	langfuse "github.com/henomis/langfuse-go"
	"github.com/henomis/langfuse-go/model"
	"github.com/openai/openai-go/responses"
)

// LangfuseClient traces critic calls. A disabled client hands out no-op traces.
type LangfuseClient struct {
	client  *langfuse.Langfuse
	enabled bool
}

var globalClient *LangfuseClient

// InitializeLangfuse sets up the global client.
// The SDK reads LANGFUSE_PUBLIC_KEY, LANGFUSE_SECRET_KEY and LANGFUSE_HOST itself.
func InitializeLangfuse(ctx context.Context, enabled bool) *LangfuseClient {
	if !enabled || os.Getenv("LANGFUSE_SECRET_KEY") == "" {
		log.Println("⚠️  Langfuse not configured (LANGFUSE_ENABLED=false or LANGFUSE_SECRET_KEY not set)")
		globalClient = &LangfuseClient{}
		return globalClient
	}

	globalClient = &LangfuseClient{
		client:  langfuse.New(ctx),
		enabled: true,
	}
	log.Printf("✅ Langfuse initialized (host: %s)", os.Getenv("LANGFUSE_HOST"))
	return globalClient
}

// GetClient returns the global client, disabled until InitializeLangfuse runs
func GetClient() *LangfuseClient {
	if globalClient == nil {
		return &LangfuseClient{}
	}
	return globalClient
}

// IsEnabled returns whether Langfuse is enabled
func (c *LangfuseClient) IsEnabled() bool {
	return c.enabled && c.client != nil
}

// StartTrace starts a new trace in Langfuse
func (c *LangfuseClient) StartTrace(ctx context.Context, name string, metadata map[string]interface{}) *Trace {
	if !c.IsEnabled() {
		return &Trace{ctx: ctx}
	}

	trace, err := c.client.Trace(&model.Trace{
		Name:     name,
		Metadata: metadata,
	})
	if err != nil {
		log.Printf("⚠️  Failed to create Langfuse trace: %v", err)
		return &Trace{ctx: ctx}
	}

	return &Trace{
		trace:   trace,
		enabled: true,
		ctx:     ctx,
		client:  c.client,
	}
}

// Trace represents a Langfuse trace
type Trace struct {
	trace   *model.Trace
	enabled bool
	ctx     context.Context
	client  *langfuse.Langfuse
}

// Generation opens a generation span within the trace
func (t *Trace) Generation(name string) *Generation {
	if !t.enabled {
		return &Generation{}
	}

	now := time.Now()
	gen, err := t.client.Generation(&model.Generation{
		TraceID:   t.trace.ID,
		Name:      name,
		StartTime: &now,
	}, nil)
	if err != nil {
		log.Printf("⚠️  Failed to create Langfuse generation: %v", err)
		return &Generation{}
	}

	return &Generation{
		generation: gen,
		enabled:    true,
		client:     t.client,
	}
}

// Finish flushes the trace
func (t *Trace) Finish() {
	if t.enabled && t.client != nil {
		t.client.Flush(t.ctx)
	}
}

// Generation represents a Langfuse generation span
type Generation struct {
	generation *model.Generation
	enabled    bool
	client     *langfuse.Langfuse
}

// SetLevel marks the generation, e.g. "ERROR" when the call failed
func (g *Generation) SetLevel(level string) {
	if g.enabled {
		g.generation.Level = model.ObservationLevel(level)
	}
}

// RecordResponse copies the prompt, output, usage and cost of an OpenAI response onto the generation
func (g *Generation) RecordResponse(modelName, input string, resp *responses.Response) {
	if !g.enabled || resp == nil {
		return
	}

	cost := CalculateOpenAICost(modelName, resp.Usage)
	g.generation.Model = modelName
	g.generation.Input = input
	g.generation.Output = resp.OutputText()
	g.generation.Usage = model.Usage{
		Input:     int(resp.Usage.InputTokens),
		Output:    int(resp.Usage.OutputTokens),
		Total:     int(resp.Usage.TotalTokens),
		Unit:      model.ModelUsageUnitTokens,
		TotalCost: cost,
	}
	g.generation.Metadata = map[string]interface{}{
		"model":    modelName,
		"cost_usd": FormatCost(cost),
	}
}

// Finish ends the generation and queues it for sending
func (g *Generation) Finish() {
	if !g.enabled {
		return
	}
	now := time.Now()
	g.generation.EndTime = &now
	if _, err := g.client.GenerationEnd(g.generation); err != nil {
		log.Printf("⚠️  Failed to end Langfuse generation: %v", err)
	}
}
