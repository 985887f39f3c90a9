package llm

import (
	"context"
	"errors"
	"net/http"

	"google.golang.org/genai"
)

const ProviderGemini = "gemini"

type geminiCompleter struct {
	client *genai.Client
}

func NewGemini(ctx context.Context, apiKey, baseURL string, hc *http.Client) (Completer, error) {
	cc := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: hc,
	}
	if baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, err
	}
	return &geminiCompleter{client: client}, nil
}

func (c *geminiCompleter) Complete(ctx context.Context, req Request) (*Result, error) {
	gc := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(req.Temperature)),
	}
	if req.MaxTokens > 0 {
		gc.MaxOutputTokens = int32(req.MaxTokens)
	}

	resp, err := c.client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), gc)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return nil, &UpstreamError{Provider: ProviderGemini, StatusCode: apiErr.Code, Message: apiErr.Message, Err: err}
		}
		return nil, &UpstreamError{Provider: ProviderGemini, Message: err.Error(), Err: err}
	}

	res := &Result{Content: resp.Text(), Model: resp.ModelVersion}
	if um := resp.UsageMetadata; um != nil {
		res.Usage = Usage{
			PromptTokens:     int(um.PromptTokenCount),
			CompletionTokens: int(um.CandidatesTokenCount),
			TotalTokens:      int(um.TotalTokenCount),
		}
	}
	return res, nil
}
