package idempotency

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrClaimInFlight means a claim for the key exists but no response has
	// been recorded yet: a concurrent request is still processing. Surfaced
	// as a server error rather than waiting on the winner.
	ErrClaimInFlight = errors.New("idempotency: claim in flight, no saved response yet")

	// ErrClaimSettled guards the single-owner contract on Claim: a claim that
	// has been finalized or rolled back rejects any further use.
	ErrClaimSettled = errors.New("idempotency: claim already settled")
)

// Store decides whether a request should be processed or replayed.
//
// Mutual exclusion across concurrent claims for one (principal, key) pair is
// delegated entirely to the backing store: of N concurrent TryProcess calls
// exactly one observes StartProcessing, the rest observe a saved response or
// ErrClaimInFlight.
type Store interface {
	TryProcess(ctx context.Context, principalID uuid.UUID, key Key) (NextAction, error)
}

// NextAction is the outcome of TryProcess: either StartProcessing or
// ReturnSavedResponse.
type NextAction interface {
	nextAction()
}

// StartProcessing means this caller won the claim. The caller exclusively owns
// the Claim and must settle it exactly once: Finalize after the side-effecting
// work succeeds, Rollback on failure.
type StartProcessing struct {
	Claim Claim
}

// ReturnSavedResponse means a previous request already completed; the recorded
// response must be returned verbatim without reprocessing.
type ReturnSavedResponse struct {
	Response CapturedResponse
}

func (StartProcessing) nextAction()     {}
func (ReturnSavedResponse) nextAction() {}

// Claim is the handle to an open claim. It is single-owner: it must not be
// shared across goroutines, and it must be settled exactly once before the
// request completes. A settled claim returns ErrClaimSettled on further use.
type Claim interface {
	// Finalize records the captured response and commits it atomically with
	// the claim, making it visible to fetch reads.
	Finalize(ctx context.Context, response CapturedResponse) error

	// Rollback discards the claim entirely; the key becomes reusable and no
	// partial effect is visible.
	Rollback(ctx context.Context) error
}
