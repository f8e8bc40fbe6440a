package ports

import (
	"context"

	"github.com/dejanmarkovic/herald/internal/newsletters/domain"
)

// EmailSender defines the contract for delivering a single newsletter email.
// Actual delivery lives behind this boundary; the application layer only
// cares that a send either happened or returned an error.
type EmailSender interface {
	SendEmail(ctx context.Context, to domain.SubscriberEmail, subject, htmlBody, textBody string) error
}
