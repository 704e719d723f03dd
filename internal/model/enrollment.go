package model

import "time"

// IntentStatus is the reconciled state of a checkout intent as reported by
// the payment processor.
type IntentStatus string

const (
	IntentPending IntentStatus = "pending"
	IntentPaid    IntentStatus = "paid"
	IntentUnknown IntentStatus = "unknown"
)

// CheckoutIntent is the stored handle of an in-progress external payment.
// Keyed by (UserID, CourseID); a new checkout for the same course supersedes
// the previous unreconciled intent.
type CheckoutIntent struct {
	ID                 string       `db:"id" json:"id"`
	UserID             string       `db:"user_id" json:"user_id"`
	CourseID           string       `db:"course_id" json:"course_id"`
	Amount             int64        `db:"amount" json:"amount"`
	FeeAmount          int64        `db:"fee_amount" json:"fee_amount"`
	DestinationAccount string       `db:"destination_account" json:"destination_account"`
	Status             IntentStatus `db:"status" json:"status"`
	CreatedAt          time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time    `db:"updated_at" json:"updated_at"`
}
