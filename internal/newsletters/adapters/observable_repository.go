package adapters

import (
	"context"
	"time"

	"github.com/dejanmarkovic/herald/internal/database"
	"github.com/dejanmarkovic/herald/internal/newsletters/domain"
	"github.com/dejanmarkovic/herald/internal/newsletters/ports"
	"github.com/dejanmarkovic/herald/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type ObservableRepository struct {
	repo    ports.SubscriberRepository
	metrics *database.Metrics
}

func NewObservableRepository(repo ports.SubscriberRepository, metrics *database.Metrics) *ObservableRepository {
	return &ObservableRepository{
		repo:    repo,
		metrics: metrics,
	}
}

func (r *ObservableRepository) Insert(ctx context.Context, subscriber domain.Subscriber) error {
	ctx, span := telemetry.StartSpan(ctx, "SubscriberRepository.Insert")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("subscriber.id", subscriber.ID.String()),
		attribute.String("operation", "insert"),
	)

	start := time.Now()
	err := r.repo.Insert(ctx, subscriber)
	duration := time.Since(start).Seconds()

	r.metrics.RecordQuery(ctx, "insert_subscription", duration)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}

func (r *ObservableRepository) ConfirmByToken(ctx context.Context, token string) error {
	ctx, span := telemetry.StartSpan(ctx, "SubscriberRepository.ConfirmByToken")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("operation", "confirm_by_token"),
	)

	start := time.Now()
	err := r.repo.ConfirmByToken(ctx, token)
	duration := time.Since(start).Seconds()

	r.metrics.RecordQuery(ctx, "confirm_subscription", duration)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}

func (r *ObservableRepository) ListConfirmed(ctx context.Context) ([]ports.SubscriberRecord, error) {
	ctx, span := telemetry.StartSpan(ctx, "SubscriberRepository.ListConfirmed")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("operation", "list_confirmed"),
	)

	start := time.Now()
	records, err := r.repo.ListConfirmed(ctx)
	duration := time.Since(start).Seconds()

	r.metrics.RecordQuery(ctx, "list_confirmed_subscribers", duration)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return nil, err
	}

	telemetry.AddSpanAttributes(span, attribute.Int("result.count", len(records)))
	telemetry.SetSpanSuccess(span)
	return records, nil
}
