package service

import (
	"context"
	"math"

	"eschool/internal/apperr"
	"eschool/internal/model"
	"eschool/internal/payment"
	"eschool/internal/repository"

	"github.com/rs/zerolog"
)

// FeeAmount computes the platform commission as an integer minor-unit
// amount, rounding half-up.
func FeeAmount(price int64, rate float64) int64 {
	return int64(math.Floor(float64(price)*rate + 0.5))
}

// SettlementService orchestrates paid enrollment against the external
// payment processor and reconciles outcomes into the enrollment ledger.
type SettlementService interface {
	// BeginPaidCheckout creates a checkout intent and returns the opaque
	// reference the payer is redirected to. A new checkout supersedes any
	// prior unreconciled intent for the same course.
	BeginPaidCheckout(ctx context.Context, userID, courseID string) (string, error)
	// ConfirmCheckout reconciles the stored intent. Grants access if and only
	// if the processor reports paid; otherwise the intent slot is kept so a
	// later confirmation can still succeed. Safe to call more than once.
	ConfirmCheckout(ctx context.Context, userID, courseID string) (bool, *model.Course, error)
}

type settlementService struct {
	intents    repository.IntentRepository
	courseRepo repository.CourseRepository
	userRepo   repository.UserRepository
	ledger     EnrollmentService
	processor  payment.Processor
	currency   string
	feeRate    float64
	logger     zerolog.Logger
}

// NewSettlementService creates a new SettlementService with a scoped logger.
func NewSettlementService(
	intents repository.IntentRepository,
	courseRepo repository.CourseRepository,
	userRepo repository.UserRepository,
	ledger EnrollmentService,
	processor payment.Processor,
	currency string,
	feeRate float64,
	logger zerolog.Logger,
) SettlementService {
	return &settlementService{
		intents:    intents,
		courseRepo: courseRepo,
		userRepo:   userRepo,
		ledger:     ledger,
		processor:  processor,
		currency:   currency,
		feeRate:    feeRate,
		logger:     logger.With().Str("service", "SettlementService").Logger(),
	}
}

// BeginPaidCheckout computes the fee split and requests a checkout intent
// from the processor for the full course price.
func (s *settlementService) BeginPaidCheckout(ctx context.Context, userID, courseID string) (string, error) {
	course, err := s.courseRepo.GetCourseByID(ctx, courseID)
	if err != nil {
		return "", err
	}
	if course == nil {
		return "", apperr.New(apperr.ErrNotFound, "course not found")
	}
	if !course.Paid {
		return "", apperr.New(apperr.ErrNotPaid, "course does not require payment")
	}

	instructor, err := s.userRepo.GetUserByID(ctx, course.InstructorID)
	if err != nil {
		return "", err
	}
	if instructor == nil || instructor.PayoutAccountID == nil || *instructor.PayoutAccountID == "" {
		return "", apperr.New(apperr.ErrValidation, "instructor has no payout account")
	}

	fee := FeeAmount(course.Price, s.feeRate)
	intent, err := s.processor.CreateIntent(ctx, payment.CreateIntentParams{
		UserID:             userID,
		CourseID:           course.ID,
		CourseName:         course.Name,
		Amount:             course.Price,
		FeeAmount:          fee,
		Currency:           s.currency,
		DestinationAccount: *instructor.PayoutAccountID,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("course_id", courseID).Msg("Failed to create checkout intent")
		return "", err
	}

	if err := s.intents.UpsertIntent(ctx, &model.CheckoutIntent{
		ID:                 intent.ID,
		UserID:             userID,
		CourseID:           course.ID,
		Amount:             course.Price,
		FeeAmount:          fee,
		DestinationAccount: *instructor.PayoutAccountID,
		Status:             model.IntentPending,
	}); err != nil {
		s.logger.Error().Err(err).Str("intent_id", intent.ID).Msg("Failed to store checkout intent")
		return "", err
	}

	s.logger.Info().Str("course_id", courseID).Str("intent_id", intent.ID).
		Int64("amount", course.Price).Int64("fee_amount", fee).Msg("Checkout intent created")
	return intent.CheckoutURL, nil
}

// ConfirmCheckout reconciles the intent's processor-side outcome into the
// ledger. The set-add grant makes repeated confirmations harmless; an
// already-enrolled user short-circuits to success even after the intent slot
// was cleared.
func (s *settlementService) ConfirmCheckout(ctx context.Context, userID, courseID string) (bool, *model.Course, error) {
	enrolled, course, err := s.ledger.IsEnrolled(ctx, userID, courseID)
	if err != nil {
		return false, nil, err
	}
	if enrolled {
		return true, course, nil
	}

	intent, err := s.intents.GetIntent(ctx, userID, courseID)
	if err != nil {
		return false, nil, err
	}
	if intent == nil {
		return false, nil, apperr.New(apperr.ErrNoActiveIntent, "no checkout in progress for this course")
	}

	status, err := s.processor.GetStatus(ctx, intent.ID)
	if err != nil {
		return false, nil, err
	}
	if status != model.IntentPaid {
		// Keep the slot so a later confirmation can still succeed.
		s.logger.Info().Str("intent_id", intent.ID).Str("status", string(status)).Msg("Checkout not settled yet")
		return false, course, nil
	}

	if err := s.ledger.Grant(ctx, userID, courseID); err != nil {
		return false, nil, err
	}
	if err := s.intents.DeleteIntent(ctx, userID, courseID); err != nil {
		// Access is already granted; a leftover slot is harmless because the
		// enrolled short-circuit wins on the next call.
		s.logger.Warn().Err(err).Str("intent_id", intent.ID).Msg("Failed to clear settled intent")
	}
	s.logger.Info().Str("course_id", courseID).Str("intent_id", intent.ID).Msg("Checkout settled, access granted")
	return true, course, nil
}
