package memory

import (
	"context"
	"sync"

	"github.com/dejanmarkovic/herald/internal/newsletters/domain"
	"github.com/dejanmarkovic/herald/internal/newsletters/ports"
)

// Repository keeps subscriptions in memory. Useful for tests and local dev
// before a database is wired up.
type Repository struct {
	mu          sync.RWMutex
	subscribers []domain.Subscriber
}

// NewRepository creates an empty in-memory repository.
func NewRepository() *Repository {
	return &Repository{}
}

func (r *Repository) Insert(_ context.Context, subscriber domain.Subscriber) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.subscribers {
		if existing.Email.String() == subscriber.Email.String() {
			return ports.ErrDuplicateEmail
		}
	}

	r.subscribers = append(r.subscribers, subscriber)
	return nil
}

func (r *Repository) ConfirmByToken(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.subscribers {
		if r.subscribers[i].ConfirmationToken == token {
			r.subscribers[i].Status = domain.StatusConfirmed
			return nil
		}
	}

	return ports.ErrNotFound
}

func (r *Repository) ListConfirmed(_ context.Context) ([]ports.SubscriberRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var records []ports.SubscriberRecord
	for _, subscriber := range r.subscribers {
		if subscriber.Status == domain.StatusConfirmed {
			records = append(records, ports.SubscriberRecord{
				ID:    subscriber.ID,
				Email: subscriber.Email.String(),
			})
		}
	}

	return records, nil
}
