package llm

import (
	"context"
	"errors"
	"net/http"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const ProviderOpenAI = "openai"

type openAICompleter struct {
	client openai.Client
}

// NewOpenAI builds a chat-completions backed Completer. SDK retries are disabled.
func NewOpenAI(apiKey, baseURL string, hc *http.Client) Completer {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(hc),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &openAICompleter{client: openai.NewClient(opts...)}
}

func (c *openAICompleter) Complete(ctx context.Context, req Request) (*Result, error) {
	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(req.Model),
		Messages:    []openai.ChatCompletionMessageParamUnion{openai.UserMessage(req.Prompt)},
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(req.MaxTokens))
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return nil, &UpstreamError{Provider: ProviderOpenAI, StatusCode: apiErr.StatusCode, Message: apiErr.Message, Err: err}
		}
		return nil, &UpstreamError{Provider: ProviderOpenAI, Message: err.Error(), Err: err}
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyContent
	}

	return &Result{
		Content: resp.Choices[0].Message.Content,
		Model:   resp.Model,
		Usage: Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}, nil
}
