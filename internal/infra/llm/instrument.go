package llm

import (
	"context"
	"strings"
	"time"

	"github.com/Yolxander/businki-sub003/internal/pkg/tokenizer"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

type instrumented struct {
	next     Completer
	provider string
	timeout  time.Duration
	prices   PriceTable
	log      *zap.Logger
}

// Instrument bounds every call by timeout, traces and logs it, rejects empty
// content and fills in usage and cost the provider did not report.
func Instrument(next Completer, provider string, timeout time.Duration, prices PriceTable, log *zap.Logger) Completer {
	return &instrumented{next: next, provider: provider, timeout: timeout, prices: prices, log: log}
}

func (c *instrumented) Complete(ctx context.Context, req Request) (*Result, error) {
	ctx, span := otel.Tracer("llm").Start(ctx, "llm.complete")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.provider", c.provider),
		attribute.String("llm.model", req.Model),
		attribute.Int("llm.max_tokens", req.MaxTokens),
	)

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	res, err := c.next.Complete(ctx, req)
	if err == nil && strings.TrimSpace(res.Content) == "" {
		err = ErrEmptyContent
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.log.Warn("completion failed",
			zap.String("provider", c.provider),
			zap.String("model", req.Model),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return nil, err
	}

	if res.Model == "" {
		res.Model = req.Model
	}
	if res.Usage.TotalTokens == 0 {
		res.Usage.PromptTokens = tokenizer.Estimate(req.Prompt)
		res.Usage.CompletionTokens = tokenizer.Estimate(res.Content)
		res.Usage.TotalTokens = res.Usage.PromptTokens + res.Usage.CompletionTokens
	}
	if res.Cost == "" {
		res.Cost = c.prices.Cost(res.Model, res.Usage)
	}

	span.SetAttributes(attribute.Int("llm.total_tokens", res.Usage.TotalTokens))
	c.log.Info("completion finished",
		zap.String("provider", c.provider),
		zap.String("model", res.Model),
		zap.Int("total_tokens", res.Usage.TotalTokens),
		zap.Duration("elapsed", time.Since(start)))
	return res, nil
}
