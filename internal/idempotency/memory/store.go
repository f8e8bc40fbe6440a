package memory

import (
	"context"
	"sync"

	"github.com/dejanmarkovic/herald/internal/idempotency"
	"github.com/google/uuid"
)

type compositeKey struct {
	principalID uuid.UUID
	key         string
}

type record struct {
	completed bool
	response  idempotency.CapturedResponse
}

// Store is an in-memory implementation of the claim protocol with the same
// semantics as the Postgres adapter: exactly one of N concurrent claims for a
// key wins, losers see the saved response or ErrClaimInFlight, and a rolled
// back claim leaves the key reusable. Safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	records map[compositeKey]*record
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{records: make(map[compositeKey]*record)}
}

func (s *Store) TryProcess(_ context.Context, principalID uuid.UUID, key idempotency.Key) (idempotency.NextAction, error) {
	ck := compositeKey{principalID: principalID, key: key.String()}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.records[ck]
	if !ok {
		s.records[ck] = &record{}
		return idempotency.StartProcessing{Claim: &claim{store: s, key: ck}}, nil
	}

	if !existing.completed {
		return nil, idempotency.ErrClaimInFlight
	}

	return idempotency.ReturnSavedResponse{Response: existing.response}, nil
}

type claim struct {
	store   *Store
	key     compositeKey
	settled bool
}

func (c *claim) Finalize(_ context.Context, response idempotency.CapturedResponse) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	if c.settled {
		return idempotency.ErrClaimSettled
	}
	c.settled = true

	c.store.records[c.key] = &record{completed: true, response: response}
	return nil
}

func (c *claim) Rollback(_ context.Context) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	if c.settled {
		return idempotency.ErrClaimSettled
	}
	c.settled = true

	delete(c.store.records, c.key)
	return nil
}
