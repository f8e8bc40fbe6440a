package adapters

import (
	"context"
	"time"

	"github.com/dejanmarkovic/herald/internal/email"
	"github.com/dejanmarkovic/herald/internal/newsletters/domain"
	"github.com/dejanmarkovic/herald/internal/newsletters/ports"
	"github.com/dejanmarkovic/herald/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type ObservableEmailSender struct {
	sender  ports.EmailSender
	metrics *email.Metrics
}

func NewObservableEmailSender(sender ports.EmailSender, metrics *email.Metrics) *ObservableEmailSender {
	return &ObservableEmailSender{
		sender:  sender,
		metrics: metrics,
	}
}

func (s *ObservableEmailSender) SendEmail(ctx context.Context, to domain.SubscriberEmail, subject, htmlBody, textBody string) error {
	ctx, span := telemetry.StartSpan(ctx, "EmailSender.SendEmail")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("email.subject", subject),
	)

	start := time.Now()
	err := s.sender.SendEmail(ctx, to, subject, htmlBody, textBody)
	duration := time.Since(start).Seconds()

	s.metrics.RecordSend(ctx, duration, err == nil)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}
