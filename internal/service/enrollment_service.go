package service

import (
	"context"

	"eschool/internal/apperr"
	"eschool/internal/model"
	"eschool/internal/pubsub"
	"eschool/internal/repository"

	"github.com/rs/zerolog"
)

// EnrollmentService is the ledger of course access. Membership is a set:
// grants are idempotent and never revoked here.
type EnrollmentService interface {
	// FreeEnroll grants access to a free course. Fails with NotFree on paid
	// courses; re-enrolling is a no-op.
	FreeEnroll(ctx context.Context, userID, courseID string) (*model.Course, error)
	// Grant adds the membership fact unconditionally (used after a settled
	// payment) and emits the enrollment event.
	Grant(ctx context.Context, userID, courseID string) error
	IsEnrolled(ctx context.Context, userID, courseID string) (bool, *model.Course, error)
	ListEnrolled(ctx context.Context, userID string) ([]model.Course, error)
}

type enrollmentService struct {
	repo        repository.EnrollmentRepository
	courseRepo  repository.CourseRepository
	publisher   pubsub.Publisher
	eventsTopic string
	logger      zerolog.Logger
}

// NewEnrollmentService creates a new EnrollmentService with a scoped logger.
func NewEnrollmentService(
	repo repository.EnrollmentRepository,
	courseRepo repository.CourseRepository,
	publisher pubsub.Publisher,
	eventsTopic string,
	logger zerolog.Logger,
) EnrollmentService {
	return &enrollmentService{
		repo:        repo,
		courseRepo:  courseRepo,
		publisher:   publisher,
		eventsTopic: eventsTopic,
		logger:      logger.With().Str("service", "EnrollmentService").Logger(),
	}
}

// FreeEnroll grants access to a free course with set semantics.
func (s *enrollmentService) FreeEnroll(ctx context.Context, userID, courseID string) (*model.Course, error) {
	course, err := s.courseRepo.GetCourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, apperr.New(apperr.ErrNotFound, "course not found")
	}
	if course.Paid {
		return nil, apperr.New(apperr.ErrNotFree, "course requires payment")
	}
	if err := s.Grant(ctx, userID, courseID); err != nil {
		return nil, err
	}
	return course, nil
}

// Grant records the membership fact and emits the enrollment event.
func (s *enrollmentService) Grant(ctx context.Context, userID, courseID string) error {
	if err := s.repo.AddEnrollment(ctx, userID, courseID); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Str("course_id", courseID).Msg("Failed to add enrollment")
		return err
	}
	if _, err := s.publisher.PublishEvent(ctx, s.eventsTopic, pubsub.Event{
		Name:     pubsub.EventEnrollmentCompleted,
		CourseID: courseID,
		UserID:   userID,
	}); err != nil {
		// Notification delivery is fire-and-forget.
		s.logger.Warn().Err(err).Str("course_id", courseID).Msg("Failed to publish enrollment.completed event")
	}
	return nil
}

// IsEnrolled reports membership together with the course payload used to
// gate content rendering.
func (s *enrollmentService) IsEnrolled(ctx context.Context, userID, courseID string) (bool, *model.Course, error) {
	course, err := s.courseRepo.GetCourseByID(ctx, courseID)
	if err != nil {
		return false, nil, err
	}
	if course == nil {
		return false, nil, apperr.New(apperr.ErrNotFound, "course not found")
	}
	enrolled, err := s.repo.IsEnrolled(ctx, userID, courseID)
	if err != nil {
		return false, nil, err
	}
	return enrolled, course, nil
}

// ListEnrolled retrieves all courses the user has access to.
func (s *enrollmentService) ListEnrolled(ctx context.Context, userID string) ([]model.Course, error) {
	ids, err := s.repo.ListCourseIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.courseRepo.ListByIDs(ctx, ids)
}
