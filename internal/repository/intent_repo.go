package repository

import (
	"context"
	"database/sql"
	"errors"

	"eschool/internal/model"
)

// IntentRepository stores live checkout intents keyed by (user, course).
// Beginning a new checkout for the same course supersedes the prior intent;
// a successful confirmation clears the slot.
type IntentRepository interface {
	UpsertIntent(ctx context.Context, intent *model.CheckoutIntent) error
	// GetIntent returns (nil, nil) when no live intent exists.
	GetIntent(ctx context.Context, userID, courseID string) (*model.CheckoutIntent, error)
	DeleteIntent(ctx context.Context, userID, courseID string) error
}

type intentRepo struct {
	db *sql.DB
}

// NewIntentRepo creates a new IntentRepository.
func NewIntentRepo(db *sql.DB) IntentRepository {
	return &intentRepo{db: db}
}

// UpsertIntent writes the intent, replacing any prior unreconciled one for
// the same (user, course) pair.
func (r *intentRepo) UpsertIntent(ctx context.Context, intent *model.CheckoutIntent) error {
	query := `
		INSERT INTO checkout_intents (id, user_id, course_id, amount, fee_amount, destination_account, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, course_id) DO UPDATE
		SET id = EXCLUDED.id,
		    amount = EXCLUDED.amount,
		    fee_amount = EXCLUDED.fee_amount,
		    destination_account = EXCLUDED.destination_account,
		    status = EXCLUDED.status,
		    updated_at = NOW()
		RETURNING created_at, updated_at
	`
	return r.db.QueryRowContext(ctx, query,
		intent.ID, intent.UserID, intent.CourseID, intent.Amount, intent.FeeAmount,
		intent.DestinationAccount, intent.Status,
	).Scan(&intent.CreatedAt, &intent.UpdatedAt)
}

// GetIntent retrieves the live intent for a (user, course) pair.
func (r *intentRepo) GetIntent(ctx context.Context, userID, courseID string) (*model.CheckoutIntent, error) {
	query := `
		SELECT id, user_id, course_id, amount, fee_amount, destination_account, status, created_at, updated_at
		FROM checkout_intents
		WHERE user_id = $1 AND course_id = $2
	`
	var in model.CheckoutIntent
	err := r.db.QueryRowContext(ctx, query, userID, courseID).Scan(
		&in.ID,
		&in.UserID,
		&in.CourseID,
		&in.Amount,
		&in.FeeAmount,
		&in.DestinationAccount,
		&in.Status,
		&in.CreatedAt,
		&in.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &in, nil
}

// DeleteIntent clears the slot after reconciliation.
func (r *intentRepo) DeleteIntent(ctx context.Context, userID, courseID string) error {
	query := `DELETE FROM checkout_intents WHERE user_id = $1 AND course_id = $2`
	_, err := r.db.ExecContext(ctx, query, userID, courseID)
	return err
}
