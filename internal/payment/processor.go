// Package payment is the payment-processor boundary. The core asks it to
// create a checkout intent and later to report the intent's outcome; money
// movement happens entirely on the processor side.
package payment

import (
	"context"

	"eschool/internal/model"
)

// CreateIntentParams describes one checkout intent request. Amounts are
// integer minor currency units; FeeAmount is the platform commission taken
// out of Amount.
type CreateIntentParams struct {
	UserID             string
	CourseID           string
	CourseName         string
	Amount             int64
	FeeAmount          int64
	Currency           string
	DestinationAccount string
}

// Intent is the processor-assigned handle for an in-progress payment.
// CheckoutURL is the opaque reference the payer is redirected to.
type Intent struct {
	ID          string
	CheckoutURL string
}

// Processor creates checkout intents and reports their outcomes.
type Processor interface {
	CreateIntent(ctx context.Context, p CreateIntentParams) (*Intent, error)
	GetStatus(ctx context.Context, intentID string) (model.IntentStatus, error)
}
