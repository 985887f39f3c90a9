package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	generationCounter      metric.Int64Counter
	generationDuration     metric.Float64Histogram
	generationTokens       metric.Int64Counter
	generationErrorCounter metric.Int64Counter
)

// InitGenerationMetrics registers the completion instruments on the global meter provider.
func InitGenerationMetrics() error {
	meter := otel.Meter("businki.generation")

	var err error
	generationCounter, err = meter.Int64Counter(
		"generation.count",
		metric.WithDescription("Number of successful completions"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return err
	}

	generationDuration, err = meter.Float64Histogram(
		"generation.duration",
		metric.WithDescription("Duration of completion calls"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	generationTokens, err = meter.Int64Counter(
		"generation.tokens",
		metric.WithDescription("Tokens consumed by completions"),
		metric.WithUnit("{token}"),
	)
	if err != nil {
		return err
	}

	generationErrorCounter, err = meter.Int64Counter(
		"generation.errors",
		metric.WithDescription("Number of failed completions"),
		metric.WithUnit("{error}"),
	)
	return err
}

// RecordGenerationSuccess records a completed generation. kind is "document" or "project".
func RecordGenerationSuccess(ctx context.Context, kind, model string, durationMs float64, tokens int64) {
	attrs := metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("model", model),
		attribute.String("status", "success"),
	)
	if generationCounter != nil {
		generationCounter.Add(ctx, 1, attrs)
	}
	if generationDuration != nil {
		generationDuration.Record(ctx, durationMs, attrs)
	}
	if generationTokens != nil && tokens > 0 {
		generationTokens.Add(ctx, tokens, metric.WithAttributes(
			attribute.String("kind", kind),
			attribute.String("model", model),
		))
	}
}

// RecordGenerationError records a failed generation.
func RecordGenerationError(ctx context.Context, kind, errorType string, durationMs float64) {
	if generationErrorCounter != nil {
		generationErrorCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("kind", kind),
			attribute.String("error_type", errorType),
		))
	}
	if generationDuration != nil {
		generationDuration.Record(ctx, durationMs, metric.WithAttributes(
			attribute.String("kind", kind),
			attribute.String("status", "error"),
			attribute.String("error_type", errorType),
		))
	}
}
