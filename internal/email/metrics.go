package email

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	sendLatency metric.Float64Histogram
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.sendLatency, err = meter.Float64Histogram(
		"email_send_latency_seconds",
		metric.WithDescription("Email delivery latency"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create email_send_latency histogram: %w", err)
	}

	return m, nil
}

func (m *Metrics) RecordSend(ctx context.Context, durationSeconds float64, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.sendLatency.Record(ctx, durationSeconds, metric.WithAttributes(
		attribute.String("status", status),
	))
}
