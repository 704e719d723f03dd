package repository

import (
	"context"
	"database/sql"
	"errors"

	"eschool/internal/model"
)

// UserRepository reads user profiles maintained by the identity service.
type UserRepository interface {
	// GetUserByID returns (nil, nil) when absent.
	GetUserByID(ctx context.Context, userID string) (*model.User, error)
	// GetInstructorSummaries returns id+name summaries for the given user ids.
	GetInstructorSummaries(ctx context.Context, userIDs []string) (map[string]model.InstructorSummary, error)
}

type userRepo struct {
	db *sql.DB
}

// NewUserRepo creates a new UserRepository.
func NewUserRepo(db *sql.DB) UserRepository {
	return &userRepo{db: db}
}

// GetUserByID retrieves a user profile.
func (r *userRepo) GetUserByID(ctx context.Context, userID string) (*model.User, error) {
	query := `
		SELECT user_id, name, email, payout_account_id, created_at, updated_at
		FROM user_profiles
		WHERE user_id = $1
	`
	var u model.User
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&u.UserID,
		&u.Name,
		&u.Email,
		&u.PayoutAccountID,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// GetInstructorSummaries retrieves lightweight id+name summaries. Sensitive
// fields never leave this query.
func (r *userRepo) GetInstructorSummaries(ctx context.Context, userIDs []string) (map[string]model.InstructorSummary, error) {
	summaries := map[string]model.InstructorSummary{}
	if len(userIDs) == 0 {
		return summaries, nil
	}
	query := `SELECT user_id, name FROM user_profiles WHERE user_id = ANY($1)`
	rows, err := r.db.QueryContext(ctx, query, userIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var s model.InstructorSummary
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, err
		}
		summaries[s.ID] = s
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return summaries, nil
}
