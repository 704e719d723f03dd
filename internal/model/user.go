package model

import "time"

// User represents a user profile as supplied by the identity service.
// PayoutAccountID is the instructor's connected payment account and is the
// transfer destination for paid enrollments.
type User struct {
	UserID          string    `db:"user_id" json:"user_id"`
	Name            string    `db:"name" json:"name"`
	Email           string    `db:"email" json:"email"`
	PayoutAccountID *string   `db:"payout_account_id" json:"payout_account_id,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}
