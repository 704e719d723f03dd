package payment

import (
	"context"
	"fmt"

	"eschool/internal/apperr"
	"eschool/internal/config"
	"eschool/internal/model"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v82"
	checkoutsession "github.com/stripe/stripe-go/v82/checkout/session"
)

// StripeProcessor implements Processor on Stripe Checkout Sessions. The
// platform fee is carried as application_fee_amount with the funds
// transferred to the instructor's connected account.
type StripeProcessor struct {
	cfg    *config.Config
	logger zerolog.Logger
}

// NewStripeProcessor initializes the Stripe key and returns the processor
// with a scoped logger.
func NewStripeProcessor(cfg *config.Config, logger zerolog.Logger) *StripeProcessor {
	stripe.Key = cfg.StripeSecretKey
	lg := logger.With().Str("service", "StripeProcessor").Logger()
	return &StripeProcessor{cfg: cfg, logger: lg}
}

// CreateIntent creates a Checkout Session for a single course purchase.
func (s *StripeProcessor) CreateIntent(ctx context.Context, p CreateIntentParams) (*Intent, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Quantity: stripe.Int64(1),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(p.Currency),
				UnitAmount: stripe.Int64(p.Amount),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(p.CourseName),
				},
			},
		}},
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			ApplicationFeeAmount: stripe.Int64(p.FeeAmount),
			TransferData: &stripe.CheckoutSessionPaymentIntentDataTransferDataParams{
				Destination: stripe.String(p.DestinationAccount),
			},
		},
		// Redirect target carries the course id so the client can confirm.
		SuccessURL: stripe.String(fmt.Sprintf("%s/%s", s.cfg.StripeSuccessURL, p.CourseID)),
		CancelURL:  stripe.String(s.cfg.StripeCancelURL),
		Metadata:   map[string]string{"user_id": p.UserID, "course_id": p.CourseID},
	}
	params.Context = ctx

	sess, err := checkoutsession.New(params)
	if err != nil {
		s.logger.Error().Err(err).Str("course_id", p.CourseID).Msg("Failed to create checkout session")
		return nil, apperr.External("create checkout session", err)
	}
	return &Intent{ID: sess.ID, CheckoutURL: sess.URL}, nil
}

// GetStatus queries the session's current payment status.
func (s *StripeProcessor) GetStatus(ctx context.Context, intentID string) (model.IntentStatus, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	sess, err := checkoutsession.Get(intentID, params)
	if err != nil {
		s.logger.Error().Err(err).Str("intent_id", intentID).Msg("Failed to fetch checkout session")
		return model.IntentUnknown, apperr.External("fetch checkout session", err)
	}
	switch sess.PaymentStatus {
	case stripe.CheckoutSessionPaymentStatusPaid, stripe.CheckoutSessionPaymentStatusNoPaymentRequired:
		return model.IntentPaid, nil
	case stripe.CheckoutSessionPaymentStatusUnpaid:
		return model.IntentPending, nil
	default:
		return model.IntentUnknown, nil
	}
}
