package refine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Anthropic API defaults.
const (
	// DefaultModel is a fast, inexpensive model; refinement is a bulk
	// cleanup task, not an analysis task.
	DefaultModel = "claude-3-5-haiku-latest"

	// DefaultMaxTokens bounds the response. Refined shipper text is short;
	// anything longer than this is the model rambling.
	DefaultMaxTokens = 256
)

// ErrNoAPIKey is returned when the Anthropic refiner is requested without
// an API key.
var ErrNoAPIKey = errors.New("anthropic refiner requires an API key (set ANTHROPIC_API_KEY)")

// refinementPrompt asks the model for a cleaned field, nothing else.
// The output feeds the deterministic standardizer, which remains the final
// authority on token form.
const refinementPrompt = "Standardize the following text by removing noise, " +
	"company suffixes, and unnecessary components. " +
	"Keep only relevant business information. " +
	"Reply with the cleaned text only:\n\n"

// AnthropicRefiner cleans text through the Anthropic Messages API.
type AnthropicRefiner struct {
	client    *anthropic.Client
	model     string
	maxTokens int64
}

// AnthropicOption configures an AnthropicRefiner.
type AnthropicOption func(*AnthropicRefiner)

// WithModel overrides the model used for refinement.
func WithModel(model string) AnthropicOption {
	return func(r *AnthropicRefiner) {
		r.model = model
	}
}

// WithMaxTokens overrides the response token bound.
func WithMaxTokens(n int64) AnthropicOption {
	return func(r *AnthropicRefiner) {
		r.maxTokens = n
	}
}

// NewAnthropicRefiner creates a refiner authenticated with apiKey.
func NewAnthropicRefiner(apiKey string, opts ...AnthropicOption) (*AnthropicRefiner, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	r := &AnthropicRefiner{
		client:    &client,
		model:     DefaultModel,
		maxTokens: DefaultMaxTokens,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Refine sends one field to the model and returns the cleaned text.
// Empty or whitespace-only input short-circuits without an API call.
func (r *AnthropicRefiner) Refine(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	response, err := r.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(r.model),
		MaxTokens: r.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(refinementPrompt + text)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API call failed: %w", err)
	}

	var out strings.Builder
	for _, block := range response.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}

	return strings.TrimSpace(out.String()), nil
}
