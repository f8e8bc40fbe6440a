package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/dejanmarkovic/herald/internal/idempotency"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store implements the claim protocol on PostgreSQL. The uniqueness constraint
// on (principal_id, idempotency_key) plus transactional isolation is the only
// synchronization primitive: no in-process locking, so request handlers can
// scale out horizontally.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// TryProcess attempts to claim (principalID, key). The claim insert runs inside
// a transaction that is handed to the winner, so a crash or rollback before
// finalize leaves no trace and the key stays reusable.
func (s *Store) TryProcess(ctx context.Context, principalID uuid.UUID, key idempotency.Key) (idempotency.NextAction, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin claim transaction: %w", err)
	}

	query := `
		INSERT INTO idempotency_requests (principal_id, idempotency_key, created_at)
		VALUES ($1, $2, now())
		ON CONFLICT DO NOTHING
	`

	tag, err := tx.Exec(ctx, query, principalID, key.String())
	if err != nil {
		_ = tx.Rollback(ctx)
		return nil, fmt.Errorf("insert claim: %w", err)
	}

	if tag.RowsAffected() > 0 {
		return idempotency.StartProcessing{
			Claim: &claim{tx: tx, principalID: principalID, key: key},
		}, nil
	}

	// Lost the claim: no write happened, drop the transaction and read the
	// committed response outside of it.
	_ = tx.Rollback(ctx)

	saved, err := s.fetchCompleted(ctx, principalID, key)
	if err != nil {
		return nil, err
	}
	if saved == nil {
		return nil, idempotency.ErrClaimInFlight
	}

	return idempotency.ReturnSavedResponse{Response: *saved}, nil
}

// fetchCompleted returns the stored response only once finalize has committed.
// A missing row and a claimed-but-unfinalized row are indistinguishable here:
// both come back nil.
func (s *Store) fetchCompleted(ctx context.Context, principalID uuid.UUID, key idempotency.Key) (*idempotency.CapturedResponse, error) {
	query := `
		SELECT response_status_code, response_header_names, response_header_values, response_body
		FROM idempotency_requests
		WHERE principal_id = $1
		  AND idempotency_key = $2
		  AND response_status_code IS NOT NULL
	`

	var (
		statusCode   int
		headerNames  []string
		headerValues [][]byte
		body         []byte
	)
	err := s.pool.QueryRow(ctx, query, principalID, key.String()).Scan(
		&statusCode,
		&headerNames,
		&headerValues,
		&body,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select saved response: %w", err)
	}

	if len(headerNames) != len(headerValues) {
		return nil, fmt.Errorf("corrupt saved response: %d header names, %d values", len(headerNames), len(headerValues))
	}

	headers := make([]idempotency.HeaderPair, len(headerNames))
	for i, name := range headerNames {
		headers[i] = idempotency.HeaderPair{Name: name, Value: headerValues[i]}
	}

	return &idempotency.CapturedResponse{
		StatusCode: statusCode,
		Headers:    headers,
		Body:       body,
	}, nil
}

// claim owns the open transaction that inserted the row. Settling it twice is
// a programming error and fails with ErrClaimSettled instead of touching the
// transaction again.
type claim struct {
	tx          pgx.Tx
	principalID uuid.UUID
	key         idempotency.Key
	settled     bool
}

func (c *claim) Finalize(ctx context.Context, response idempotency.CapturedResponse) error {
	if c.settled {
		return idempotency.ErrClaimSettled
	}
	c.settled = true

	headerNames := make([]string, len(response.Headers))
	headerValues := make([][]byte, len(response.Headers))
	for i, pair := range response.Headers {
		headerNames[i] = pair.Name
		headerValues[i] = pair.Value
	}

	query := `
		UPDATE idempotency_requests
		SET response_status_code = $3,
		    response_header_names = $4,
		    response_header_values = $5,
		    response_body = $6
		WHERE principal_id = $1
		  AND idempotency_key = $2
	`

	_, err := c.tx.Exec(ctx, query,
		c.principalID,
		c.key.String(),
		response.StatusCode,
		headerNames,
		headerValues,
		response.Body,
	)
	if err != nil {
		_ = c.tx.Rollback(ctx)
		return fmt.Errorf("update saved response: %w", err)
	}

	if err := c.tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit claim: %w", err)
	}

	return nil
}

func (c *claim) Rollback(ctx context.Context) error {
	if c.settled {
		return idempotency.ErrClaimSettled
	}
	c.settled = true

	if err := c.tx.Rollback(ctx); err != nil {
		return fmt.Errorf("rollback claim: %w", err)
	}

	return nil
}
