package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Yolxander/businki-sub003/internal/config"
	"github.com/Yolxander/businki-sub003/internal/infra/httpclient"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// New builds the configured provider wrapped with rate limiting and instrumentation.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (Completer, error) {
	timeout := time.Duration(cfg.LLM.TimeoutSec) * time.Second
	hc := &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	var base Completer
	switch cfg.LLM.Provider {
	case config.ProviderOpenAI:
		base = NewOpenAI(cfg.LLM.APIKey, cfg.LLM.BaseURL, hc)
	case config.ProviderAnthropic:
		base = NewAnthropic(cfg.LLM.APIKey, cfg.LLM.BaseURL, hc)
	case config.ProviderGemini:
		c, err := NewGemini(ctx, cfg.LLM.APIKey, cfg.LLM.BaseURL, hc)
		if err != nil {
			return nil, fmt.Errorf("create gemini client: %w", err)
		}
		base = c
	case config.ProviderHTTP:
		base = NewHTTP(httpclient.NewCompletionClient(cfg.LLM.BaseURL, cfg.LLM.APIKey, timeout, log))
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.LLM.Provider)
	}

	log.Info("completion provider ready",
		zap.String("provider", cfg.LLM.Provider),
		zap.String("model", cfg.LLM.Model))

	limited := RateLimited(base, cfg.LLM.RequestsPerMinute)
	return Instrument(limited, cfg.LLM.Provider, timeout, NewPriceTable(cfg.LLM.Prices), log), nil
}
