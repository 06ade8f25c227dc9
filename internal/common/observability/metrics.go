// internal/common/observability/metrics.go
package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

type Observability struct {
	meterProvider   *metric.MeterProvider
	meter           otelmetric.Meter
	scoringCounter  otelmetric.Int64Counter
	scoringDuration otelmetric.Float64Histogram
}

func New(serviceName string) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	scoringCounter, _ := meter.Int64Counter(
		"scoring.calls",
		otelmetric.WithDescription("Number of scoring provider calls"),
	)

	scoringDuration, _ := meter.Float64Histogram(
		"scoring.duration",
		otelmetric.WithDescription("Scoring provider call duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider:   provider,
		meter:           meter,
		scoringCounter:  scoringCounter,
		scoringDuration: scoringDuration,
	}
}

func (o *Observability) RecordScoringCall(ctx context.Context, outcome string) {
	if o.scoringCounter != nil {
		o.scoringCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("outcome", outcome),
		))
	}
}

func (o *Observability) RecordScoringDuration(ctx context.Context, duration time.Duration, outcome string) {
	if o.scoringDuration != nil {
		o.scoringDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("outcome", outcome),
		))
	}
}

func (o *Observability) Shutdown() {
	if o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		o.meterProvider.Shutdown(ctx)
	}
}
