package llm

import (
	"context"
	"errors"

	"github.com/Yolxander/businki-sub003/internal/infra/httpclient"
)

const ProviderHTTP = "http"

type httpCompleter struct {
	client *httpclient.CompletionClient
}

// NewHTTP adapts a raw completion endpoint to Completer.
func NewHTTP(client *httpclient.CompletionClient) Completer {
	return &httpCompleter{client: client}
}

func (c *httpCompleter) Complete(ctx context.Context, req Request) (*Result, error) {
	resp, err := c.client.Complete(ctx, httpclient.CompletionRequest{
		Prompt:      req.Prompt,
		Model:       req.Model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		var se *httpclient.StatusError
		if errors.As(err, &se) {
			return nil, &UpstreamError{Provider: ProviderHTTP, StatusCode: se.StatusCode, Message: se.Body, Err: err}
		}
		return nil, &UpstreamError{Provider: ProviderHTTP, Message: err.Error(), Err: err}
	}

	res := &Result{Content: resp.Content, Model: req.Model}
	if resp.Usage != nil {
		res.Usage = Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
	}
	if resp.Cost != nil {
		res.Cost = *resp.Cost
	}
	return res, nil
}
