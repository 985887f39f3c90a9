package llm

import (
	"context"
	"errors"
	"fmt"
)

var ErrEmptyContent = errors.New("completion returned no content")

type Request struct {
	Prompt      string
	Model       string
	Temperature float64
	MaxTokens   int
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens"`
}

type Result struct {
	Content string
	Model   string
	Usage   Usage
	// Cost is a decimal USD amount, empty when unknown.
	Cost string
}

// Completer turns a prompt into generated text.
type Completer interface {
	Complete(ctx context.Context, req Request) (*Result, error)
}

// UpstreamError carries the provider's status and message for a failed call.
type UpstreamError struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: upstream status %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
