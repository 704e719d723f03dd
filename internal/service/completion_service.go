package service

import (
	"context"

	"eschool/internal/repository"

	"github.com/rs/zerolog"
)

// CompletionService tracks per (user, course) lesson completion. It is
// deliberately lenient: no enrollment check here (the caller gates content),
// and ids of since-removed lessons are tolerated.
type CompletionService interface {
	MarkCompleted(ctx context.Context, userID, courseID, lessonID string) error
	MarkIncomplete(ctx context.Context, userID, courseID, lessonID string) error
	ListCompleted(ctx context.Context, userID, courseID string) ([]string, error)
}

type completionService struct {
	repo   repository.CompletionRepository
	logger zerolog.Logger
}

// NewCompletionService creates a new CompletionService with a scoped logger.
func NewCompletionService(repo repository.CompletionRepository, logger zerolog.Logger) CompletionService {
	return &completionService{
		repo:   repo,
		logger: logger.With().Str("service", "CompletionService").Logger(),
	}
}

// MarkCompleted records the lesson as done; repeating is a no-op.
func (s *completionService) MarkCompleted(ctx context.Context, userID, courseID, lessonID string) error {
	if err := s.repo.AddLesson(ctx, userID, courseID, lessonID); err != nil {
		s.logger.Error().Err(err).Str("course_id", courseID).Str("lesson_id", lessonID).Msg("Failed to mark lesson completed")
		return err
	}
	return nil
}

// MarkIncomplete removes the mark; absent marks are a no-op.
func (s *completionService) MarkIncomplete(ctx context.Context, userID, courseID, lessonID string) error {
	if err := s.repo.RemoveLesson(ctx, userID, courseID, lessonID); err != nil {
		s.logger.Error().Err(err).Str("course_id", courseID).Str("lesson_id", lessonID).Msg("Failed to mark lesson incomplete")
		return err
	}
	return nil
}

// ListCompleted retrieves the completion set, ordered for display.
func (s *completionService) ListCompleted(ctx context.Context, userID, courseID string) ([]string, error) {
	return s.repo.ListLessons(ctx, userID, courseID)
}
