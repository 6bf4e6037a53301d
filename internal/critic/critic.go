// Package critic optionally rewrites the prose summary of a generation.
// A critic never sees or changes voicing data.
package critic

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"

	"github.com/Conceptual-Machines/chordsmith-api/internal/observability"
)

const (
	DefaultModel = "gpt-5-mini"

	providerNamePassthrough = "passthrough"
	providerNameOpenAI      = "openai"

	maxSummaryChars = 600
)

const instructions = `You edit short summaries of guitar, bass and keyboard chord voicings for music students.
Rewrite the summary so it reads naturally and encouragingly in at most three sentences.
Keep every chord name, fret number, note name and count exactly as given. Do not add new facts.
Reply with the rewritten summary only.`

// Critic rewrites a deterministic summary into friendlier prose
type Critic interface {
	Rewrite(ctx context.Context, prose string) (string, error)
	Name() string
}

// Passthrough returns the summary unchanged
type Passthrough struct{}

func (Passthrough) Rewrite(_ context.Context, prose string) (string, error) {
	return prose, nil
}

func (Passthrough) Name() string {
	return providerNamePassthrough
}

// OpenAICritic rewrites summaries with OpenAI's Responses API
type OpenAICritic struct {
	client *openai.Client
	model  string
}

// NewOpenAICritic creates a critic; an empty model selects DefaultModel
func NewOpenAICritic(apiKey, model string, opts ...option.RequestOption) *OpenAICritic {
	if model == "" {
		model = DefaultModel
	}
	client := openai.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	return &OpenAICritic{
		client: &client,
		model:  model,
	}
}

func (c *OpenAICritic) Name() string {
	return providerNameOpenAI
}

func (c *OpenAICritic) buildRequestParams(prose string) responses.ResponseNewParams {
	return responses.ResponseNewParams{
		Model: c.model,
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: responses.ResponseInputParam{
				responses.ResponseInputItemParamOfMessage(prose, responses.EasyInputMessageRoleUser),
			},
		},
		Instructions: openai.String(instructions),
	}
}

func (c *OpenAICritic) Rewrite(ctx context.Context, prose string) (string, error) {
	span := sentry.StartSpan(ctx, "critic.rewrite")
	span.SetTag("model", c.model)
	defer span.Finish()

	trace := observability.GetClient().StartTrace(ctx, "critic.rewrite", map[string]interface{}{"model": c.model})
	defer trace.Finish()
	gen := trace.Generation("summary-rewrite")
	defer gen.Finish()

	start := time.Now()
	resp, err := c.client.Responses.New(ctx, c.buildRequestParams(prose))
	if err != nil {
		span.Status = sentry.SpanStatusInternalError
		gen.SetLevel("ERROR")
		return "", fmt.Errorf("critic request failed: %w", err)
	}
	gen.RecordResponse(c.model, prose, resp)
	log.Printf("critic rewrite completed in %v (%s)", time.Since(start),
		observability.FormatCost(observability.CalculateOpenAICost(c.model, resp.Usage)))

	return cleanRewrite(resp.OutputText())
}

// cleanRewrite rejects empty or runaway output
func cleanRewrite(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("critic returned an empty rewrite")
	}
	if len(text) > maxSummaryChars {
		return "", fmt.Errorf("critic rewrite too long (%d chars)", len(text))
	}
	return text, nil
}

// New returns an OpenAI critic when enabled and keyed, a Passthrough otherwise
func New(enabled bool, apiKey, model string) Critic {
	if !enabled || apiKey == "" {
		return Passthrough{}
	}
	return NewOpenAICritic(apiKey, model)
}
