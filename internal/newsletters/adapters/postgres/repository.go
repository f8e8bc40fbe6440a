package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/dejanmarkovic/herald/internal/newsletters/domain"
	"github.com/dejanmarkovic/herald/internal/newsletters/ports"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolation is the Postgres error code for a unique constraint breach.
const uniqueViolation = "23505"

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Insert(ctx context.Context, subscriber domain.Subscriber) error {
	query := `
		INSERT INTO subscriptions (id, email, name, status, confirmation_token, subscribed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		subscriber.ID,
		subscriber.Email.String(),
		subscriber.Name.String(),
		subscriber.Status,
		subscriber.ConfirmationToken,
		subscriber.SubscribedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ports.ErrDuplicateEmail
		}
		return fmt.Errorf("insert subscription: %w", err)
	}

	return nil
}

func (r *Repository) ConfirmByToken(ctx context.Context, token string) error {
	query := `
		UPDATE subscriptions
		SET status = $1
		WHERE confirmation_token = $2
	`

	result, err := r.pool.Exec(ctx, query, domain.StatusConfirmed, token)
	if err != nil {
		return fmt.Errorf("confirm subscription: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ports.ErrNotFound
	}

	return nil
}

func (r *Repository) ListConfirmed(ctx context.Context) ([]ports.SubscriberRecord, error) {
	query := `
		SELECT id, email
		FROM subscriptions
		WHERE status = $1
		ORDER BY subscribed_at
	`

	rows, err := r.pool.Query(ctx, query, domain.StatusConfirmed)
	if err != nil {
		return nil, fmt.Errorf("query confirmed subscribers: %w", err)
	}
	defer rows.Close()

	var records []ports.SubscriberRecord
	for rows.Next() {
		var record ports.SubscriberRecord
		if err := rows.Scan(&record.ID, &record.Email); err != nil {
			return nil, fmt.Errorf("scan subscriber: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscribers: %w", err)
	}

	return records, nil
}
