package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const ProviderAnthropic = "anthropic"

// Anthropic requires max_tokens on every request.
const defaultAnthropicMaxTokens = 4096

type anthropicCompleter struct {
	client anthropic.Client
}

func NewAnthropic(apiKey, baseURL string, hc *http.Client) Completer {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(hc),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &anthropicCompleter{client: anthropic.NewClient(opts...)}
}

func (c *anthropicCompleter) Complete(ctx context.Context, req Request) (*Result, error) {
	maxTokens := int64(req.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
		Temperature: anthropic.Float(clampAnthropicTemperature(req.Temperature)),
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return nil, &UpstreamError{Provider: ProviderAnthropic, StatusCode: apiErr.StatusCode, Message: apiErr.Error(), Err: err}
		}
		return nil, &UpstreamError{Provider: ProviderAnthropic, Message: err.Error(), Err: err}
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}

	in, out := int(msg.Usage.InputTokens), int(msg.Usage.OutputTokens)
	return &Result{
		Content: b.String(),
		Model:   string(msg.Model),
		Usage:   Usage{PromptTokens: in, CompletionTokens: out, TotalTokens: in + out},
	}, nil
}

// Anthropic accepts temperatures in [0, 1].
func clampAnthropicTemperature(t float64) float64 {
	if t > 1 {
		return 1
	}
	return t
}
