package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the pipeline counters. A nil *Metrics records nothing.
type Metrics struct {
	utterances          metric.Int64Counter
	captureFailures     metric.Int64Counter
	recoveryPauses      metric.Int64Counter
	translationFailures metric.Int64Counter
	synthesisResults    metric.Int64Counter
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	var m Metrics
	var err error
	if m.utterances, err = meter.Int64Counter("tsuyaku.utterances",
		metric.WithDescription("Utterances recognized and translated")); err != nil {
		return nil, fmt.Errorf("create utterance counter: %w", err)
	}
	if m.captureFailures, err = meter.Int64Counter("tsuyaku.capture.failures",
		metric.WithDescription("Capture loop iterations that ended in an error")); err != nil {
		return nil, fmt.Errorf("create capture failure counter: %w", err)
	}
	if m.recoveryPauses, err = meter.Int64Counter("tsuyaku.capture.recovery_pauses",
		metric.WithDescription("Recovery pauses after consecutive capture errors")); err != nil {
		return nil, fmt.Errorf("create recovery counter: %w", err)
	}
	if m.translationFailures, err = meter.Int64Counter("tsuyaku.translation.failures",
		metric.WithDescription("Translations that fell back to a placeholder")); err != nil {
		return nil, fmt.Errorf("create translation failure counter: %w", err)
	}
	if m.synthesisResults, err = meter.Int64Counter("tsuyaku.synthesis.results",
		metric.WithDescription("Finished speech synthesis requests by outcome")); err != nil {
		return nil, fmt.Errorf("create synthesis counter: %w", err)
	}
	return &m, nil
}

func (m *Metrics) UtteranceProcessed(ctx context.Context, language string) {
	if m == nil {
		return
	}
	m.utterances.Add(ctx, 1, metric.WithAttributes(attribute.String("language", language)))
}

func (m *Metrics) CaptureFailed(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.captureFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

func (m *Metrics) RecoveryPaused(ctx context.Context) {
	if m == nil {
		return
	}
	m.recoveryPauses.Add(ctx, 1)
}

func (m *Metrics) TranslationFailed(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.translationFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// SynthesisFinished records a finished speak request; outcome is "ok" or an error kind.
func (m *Metrics) SynthesisFinished(ctx context.Context, vendor, outcome string) {
	if m == nil {
		return
	}
	m.synthesisResults.Add(ctx, 1, metric.WithAttributes(
		attribute.String("vendor", vendor),
		attribute.String("outcome", outcome),
	))
}
