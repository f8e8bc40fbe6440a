package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	issuesPublishedTotal metric.Int64Counter
	publishDuration      metric.Float64Histogram
	emailsSentTotal      metric.Int64Counter
	idempotencyOutcomes  metric.Int64Counter
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.issuesPublishedTotal, err = meter.Int64Counter(
		"newsletter_issues_published_total",
		metric.WithDescription("Total number of newsletter issues published"),
		metric.WithUnit("{issue}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create newsletter_issues_published_total counter: %w", err)
	}

	m.publishDuration, err = meter.Float64Histogram(
		"newsletter_publish_duration_seconds",
		metric.WithDescription("Duration of newsletter publish operations"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create newsletter_publish_duration histogram: %w", err)
	}

	m.emailsSentTotal, err = meter.Int64Counter(
		"newsletter_emails_sent_total",
		metric.WithDescription("Total number of newsletter emails handed to the sender"),
		metric.WithUnit("{email}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create newsletter_emails_sent_total counter: %w", err)
	}

	m.idempotencyOutcomes, err = meter.Int64Counter(
		"idempotent_request_outcomes_total",
		metric.WithDescription("Outcomes of idempotent publish requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create idempotent_request_outcomes_total counter: %w", err)
	}

	return m, nil
}

func (m *Metrics) RecordIssuePublished(ctx context.Context, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.issuesPublishedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", status),
	))
}

func (m *Metrics) RecordPublishDuration(ctx context.Context, durationSeconds float64) {
	m.publishDuration.Record(ctx, durationSeconds)
}

func (m *Metrics) RecordEmailsSent(ctx context.Context, count int) {
	m.emailsSentTotal.Add(ctx, int64(count))
}

// RecordIdempotencyOutcome counts how each publish request resolved:
// "processed", "replayed", "rolled_back", or "in_flight".
func (m *Metrics) RecordIdempotencyOutcome(ctx context.Context, outcome string) {
	m.idempotencyOutcomes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
}
