package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flicky/storefront-gateway/internal/model"
)

type CheckoutRepository interface {
	Create(ctx context.Context, session *model.CheckoutSession) error
	GetByIntentID(ctx context.Context, intentID string) (*model.CheckoutSession, error)
	MarkSucceeded(ctx context.Context, intentID string) (bool, error)
	MarkFailed(ctx context.Context, intentID, reason string) error
}

type pgCheckoutRepo struct{ pool *pgxpool.Pool }

func NewCheckoutRepository(pool *pgxpool.Pool) CheckoutRepository {
	return &pgCheckoutRepo{pool: pool}
}

func (r *pgCheckoutRepo) Create(ctx context.Context, session *model.CheckoutSession) error {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO checkout_sessions (id, user_id, intent_id, amount, status, idempotency_key, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		 RETURNING created_at, updated_at`,
		session.ID, session.UserID, session.IntentID, session.Amount, session.Status, session.IdempotencyKey,
	).Scan(&session.CreatedAt, &session.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create checkout session: %w", err)
	}
	return nil
}

func (r *pgCheckoutRepo) GetByIntentID(ctx context.Context, intentID string) (*model.CheckoutSession, error) {
	session := &model.CheckoutSession{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, intent_id, amount, status, idempotency_key, COALESCE(failure_reason, ''), created_at, updated_at
		 FROM checkout_sessions WHERE intent_id = $1`, intentID,
	).Scan(&session.ID, &session.UserID, &session.IntentID, &session.Amount, &session.Status,
		&session.IdempotencyKey, &session.FailureReason, &session.CreatedAt, &session.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get checkout session: %w", err)
	}
	return session, nil
}

// MarkSucceeded transitions the session to succeeded exactly once. The
// conditional UPDATE is the idempotency guard: of any number of concurrent
// callers (browser return and webhook), only one sees rows affected.
func (r *pgCheckoutRepo) MarkSucceeded(ctx context.Context, intentID string) (bool, error) {
	ct, err := r.pool.Exec(ctx,
		`UPDATE checkout_sessions SET status = $2, updated_at = NOW()
		 WHERE intent_id = $1 AND status IN ($3, $4)`,
		intentID, model.CheckoutStatusSucceeded, model.CheckoutStatusIntentReady, model.CheckoutStatusSubmitting,
	)
	if err != nil {
		return false, fmt.Errorf("mark checkout succeeded: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}

func (r *pgCheckoutRepo) MarkFailed(ctx context.Context, intentID, reason string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE checkout_sessions SET status = $2, failure_reason = $3, updated_at = NOW()
		 WHERE intent_id = $1 AND status <> $4`,
		intentID, model.CheckoutStatusFailed, reason, model.CheckoutStatusSucceeded,
	)
	if err != nil {
		return fmt.Errorf("mark checkout failed: %w", err)
	}
	return nil
}
