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
	mentionCounter  otelmetric.Int64Counter
	mentionDuration otelmetric.Float64Histogram
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

	mentionCounter, _ := meter.Int64Counter(
		"mentions.processed",
		otelmetric.WithDescription("Number of mentions processed"),
	)

	mentionDuration, _ := meter.Float64Histogram(
		"mentions.duration",
		otelmetric.WithDescription("Mention processing duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider:   provider,
		meter:           meter,
		mentionCounter:  mentionCounter,
		mentionDuration: mentionDuration,
	}
}

func (o *Observability) RecordMentionProcessed(ctx context.Context, status string) {
	if o.mentionCounter != nil {
		o.mentionCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("status", status),
		))
	}
}

func (o *Observability) RecordMentionDuration(ctx context.Context, duration time.Duration, status string) {
	if o.mentionDuration != nil {
		o.mentionDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("status", status),
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
