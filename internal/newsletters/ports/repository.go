package ports

import (
	"context"
	"errors"

	"github.com/dejanmarkovic/herald/internal/newsletters/domain"
	"github.com/google/uuid"
)

// SubscriberRepository exposes persistence operations required by the application layer.
type SubscriberRepository interface {
	Insert(ctx context.Context, subscriber domain.Subscriber) error
	ConfirmByToken(ctx context.Context, token string) error
	// ListConfirmed returns raw rows; the application layer re-parses the
	// stored email so rows that have gone stale can be skipped rather than
	// failing the whole delivery.
	ListConfirmed(ctx context.Context) ([]SubscriberRecord, error)
}

// SubscriberRecord is a confirmed subscriber as read back from storage.
type SubscriberRecord struct {
	ID    uuid.UUID
	Email string
}

var (
	// ErrNotFound is returned when no subscription matches the lookup.
	ErrNotFound = errors.New("subscription not found")

	// ErrDuplicateEmail is returned when the email is already subscribed.
	ErrDuplicateEmail = errors.New("email already subscribed")
)
