package service

import (
	"context"
	"strings"
	"time"

	"eschool/internal/apperr"
	"eschool/internal/model"
	"eschool/internal/pubsub"
	"eschool/internal/repository"
	"eschool/internal/util"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// MinPublishLessons is the publish gate: a course needs at least this many
// lessons before it can go public.
const MinPublishLessons = 5

// DefaultCoursePrice is the price (minor currency units) applied when a
// draft does not carry one.
const DefaultCoursePrice int64 = 10000

// CourseDraft carries the caller-supplied fields for course creation.
type CourseDraft struct {
	Name        string
	Description string
	Category    string
	Price       *int64
	Paid        *bool
	Image       *model.BlobRef
}

// CoursePatch is a partial field update. Nil fields are left untouched; slug
// and instructor are never patchable.
type CoursePatch struct {
	Name        *string
	Description *string
	Category    *string
	Price       *int64
	Paid        *bool
	Image       *model.BlobRef
}

// LessonDraft carries the caller-supplied fields for a new lesson.
type LessonDraft struct {
	Title       string
	Content     string
	Video       *model.BlobRef
	FreePreview bool
}

// LessonPatch is a partial lesson field update.
type LessonPatch struct {
	Title       *string
	Content     *string
	Video       *model.BlobRef
	FreePreview *bool
}

// CanMutate reports whether the principal owns the course. Every mutating
// catalog entry point goes through this single check.
func CanMutate(principal string, course *model.Course) bool {
	return principal != "" && principal == course.InstructorID
}

// CatalogService owns the Course/Lesson aggregate: structural invariants,
// publish gating, lesson CRUD and reordering.
type CatalogService interface {
	Create(ctx context.Context, instructorID string, draft CourseDraft) (*model.Course, error)
	GetBySlug(ctx context.Context, slug string) (*model.Course, error)
	Update(ctx context.Context, slug, callerID string, patch CoursePatch) (*model.Course, error)
	AddLesson(ctx context.Context, slug, callerID string, draft LessonDraft) (*model.Course, error)
	UpdateLesson(ctx context.Context, slug, lessonID, callerID string, patch LessonPatch) (*model.Course, error)
	RemoveLesson(ctx context.Context, slug, lessonID, callerID string) (*model.Course, error)
	// Reorder replaces the lesson sequence following orderedIDs, which must be
	// an exact permutation of the current lesson id set. expectedVersion is
	// the course version the caller read; a stale one fails with Conflict.
	Reorder(ctx context.Context, slug, callerID string, orderedIDs []string, expectedVersion int64) (*model.Course, error)
	Publish(ctx context.Context, courseID, callerID string) (*model.Course, error)
	Unpublish(ctx context.Context, courseID, callerID string) (*model.Course, error)
	ListPublished(ctx context.Context) ([]model.Course, error)
	ListByInstructor(ctx context.Context, instructorID string) ([]model.Course, error)
}

type catalogService struct {
	repo        repository.CourseRepository
	userRepo    repository.UserRepository
	publisher   pubsub.Publisher
	eventsTopic string
	logger      zerolog.Logger
}

// NewCatalogService creates a new CatalogService with a scoped logger.
func NewCatalogService(
	repo repository.CourseRepository,
	userRepo repository.UserRepository,
	publisher pubsub.Publisher,
	eventsTopic string,
	logger zerolog.Logger,
) CatalogService {
	return &catalogService{
		repo:        repo,
		userRepo:    userRepo,
		publisher:   publisher,
		eventsTopic: eventsTopic,
		logger:      logger.With().Str("service", "CatalogService").Logger(),
	}
}

// Create creates an unpublished course with an empty lesson sequence.
func (s *catalogService) Create(ctx context.Context, instructorID string, draft CourseDraft) (*model.Course, error) {
	name := strings.TrimSpace(draft.Name)
	if name == "" {
		return nil, apperr.New(apperr.ErrValidation, "course name is required")
	}
	slug := util.Slugify(name)

	existing, err := s.repo.GetCourseBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.New(apperr.ErrDuplicateSlug, "a course with this name already exists")
	}

	price := DefaultCoursePrice
	if draft.Price != nil {
		price = *draft.Price
	}
	paid := true
	if draft.Paid != nil {
		paid = *draft.Paid
	}
	course := &model.Course{
		ID:           uuid.NewString(),
		Slug:         slug,
		Name:         name,
		Description:  draft.Description,
		Category:     draft.Category,
		Price:        price,
		Paid:         paid,
		Published:    false,
		InstructorID: instructorID,
		Image:        draft.Image,
		Lessons:      []model.Lesson{},
	}
	if err := s.repo.CreateCourse(ctx, course); err != nil {
		s.logger.Error().Err(err).Str("slug", slug).Msg("Failed to create course")
		return nil, err
	}
	return course, nil
}

// GetBySlug retrieves a course with its instructor summary attached.
func (s *catalogService) GetBySlug(ctx context.Context, slug string) (*model.Course, error) {
	course, err := s.repo.GetCourseBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, apperr.New(apperr.ErrNotFound, "course not found")
	}
	if err := s.attachInstructors(ctx, []*model.Course{course}); err != nil {
		return nil, err
	}
	return course, nil
}

// Update applies a partial field patch. Slug recompute on name change is
// deliberately excluded so existing references keep resolving.
func (s *catalogService) Update(ctx context.Context, slug, callerID string, patch CoursePatch) (*model.Course, error) {
	course, err := s.ownedCourseBySlug(ctx, slug, callerID)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return nil, apperr.New(apperr.ErrValidation, "course name cannot be empty")
		}
		course.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		course.Description = *patch.Description
	}
	if patch.Category != nil {
		course.Category = *patch.Category
	}
	if patch.Price != nil {
		course.Price = *patch.Price
	}
	if patch.Paid != nil {
		course.Paid = *patch.Paid
	}
	if patch.Image != nil {
		course.Image = patch.Image
	}
	if err := s.repo.UpdateCourseFields(ctx, course); err != nil {
		s.logger.Error().Err(err).Str("slug", slug).Msg("Failed to update course")
		return nil, err
	}
	return course, nil
}

// AddLesson appends a lesson to the end of the ordered sequence.
func (s *catalogService) AddLesson(ctx context.Context, slug, callerID string, draft LessonDraft) (*model.Course, error) {
	course, err := s.ownedCourseBySlug(ctx, slug, callerID)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(draft.Title)
	if title == "" {
		return nil, apperr.New(apperr.ErrValidation, "lesson title is required")
	}
	now := time.Now().UTC()
	lesson := model.Lesson{
		ID:          uuid.NewString(),
		Title:       title,
		Slug:        util.Slugify(title),
		Content:     draft.Content,
		Video:       draft.Video,
		FreePreview: draft.FreePreview,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	course.Lessons = append(course.Lessons, lesson)
	if err := s.repo.ReplaceLessons(ctx, course, course.Version); err != nil {
		s.logger.Error().Err(err).Str("slug", slug).Msg("Failed to add lesson")
		return nil, err
	}
	return course, nil
}

// UpdateLesson updates the lesson matching lessonID in place.
func (s *catalogService) UpdateLesson(ctx context.Context, slug, lessonID, callerID string, patch LessonPatch) (*model.Course, error) {
	course, err := s.ownedCourseBySlug(ctx, slug, callerID)
	if err != nil {
		return nil, err
	}
	lesson := course.LessonByID(lessonID)
	if lesson == nil {
		return nil, apperr.New(apperr.ErrNotFound, "lesson not found")
	}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, apperr.New(apperr.ErrValidation, "lesson title cannot be empty")
		}
		lesson.Title = title
		lesson.Slug = util.Slugify(title)
	}
	if patch.Content != nil {
		lesson.Content = *patch.Content
	}
	if patch.Video != nil {
		lesson.Video = patch.Video
	}
	if patch.FreePreview != nil {
		lesson.FreePreview = *patch.FreePreview
	}
	lesson.UpdatedAt = time.Now().UTC()
	if err := s.repo.ReplaceLessons(ctx, course, course.Version); err != nil {
		s.logger.Error().Err(err).Str("slug", slug).Str("lesson_id", lessonID).Msg("Failed to update lesson")
		return nil, err
	}
	return course, nil
}

// RemoveLesson removes the lesson with matching id from the sequence.
// Completion records referencing the removed lesson are left as-is.
func (s *catalogService) RemoveLesson(ctx context.Context, slug, lessonID, callerID string) (*model.Course, error) {
	course, err := s.ownedCourseBySlug(ctx, slug, callerID)
	if err != nil {
		return nil, err
	}
	kept := make([]model.Lesson, 0, len(course.Lessons))
	found := false
	for _, l := range course.Lessons {
		if l.ID == lessonID {
			found = true
			continue
		}
		kept = append(kept, l)
	}
	if !found {
		return nil, apperr.New(apperr.ErrNotFound, "lesson not found")
	}
	course.Lessons = kept
	if err := s.repo.ReplaceLessons(ctx, course, course.Version); err != nil {
		s.logger.Error().Err(err).Str("slug", slug).Str("lesson_id", lessonID).Msg("Failed to remove lesson")
		return nil, err
	}
	return course, nil
}

// Reorder replaces the lesson sequence following orderedIDs. A list that
// drops or duplicates ids is rejected outright; applying it would corrupt
// the aggregate.
func (s *catalogService) Reorder(ctx context.Context, slug, callerID string, orderedIDs []string, expectedVersion int64) (*model.Course, error) {
	course, err := s.ownedCourseBySlug(ctx, slug, callerID)
	if err != nil {
		return nil, err
	}
	if expectedVersion != course.Version {
		return nil, apperr.New(apperr.ErrConflict, "lesson sequence changed since read")
	}
	if len(orderedIDs) != len(course.Lessons) {
		return nil, apperr.New(apperr.ErrInvalidPermutation, "id list does not match lesson count")
	}
	byID := make(map[string]model.Lesson, len(course.Lessons))
	for _, l := range course.Lessons {
		byID[l.ID] = l
	}
	reordered := make([]model.Lesson, 0, len(orderedIDs))
	for _, id := range orderedIDs {
		l, ok := byID[id]
		if !ok {
			return nil, apperr.New(apperr.ErrInvalidPermutation, "unknown or duplicate lesson id: "+id)
		}
		delete(byID, id)
		reordered = append(reordered, l)
	}
	course.Lessons = reordered
	if err := s.repo.ReplaceLessons(ctx, course, expectedVersion); err != nil {
		s.logger.Error().Err(err).Str("slug", slug).Msg("Failed to reorder lessons")
		return nil, err
	}
	return course, nil
}

// Publish makes the course publicly visible once the lesson gate is met.
func (s *catalogService) Publish(ctx context.Context, courseID, callerID string) (*model.Course, error) {
	course, err := s.ownedCourseByID(ctx, courseID, callerID)
	if err != nil {
		return nil, err
	}
	if len(course.Lessons) < MinPublishLessons {
		return nil, apperr.New(apperr.ErrPublishGate, "a course needs at least 5 lessons to publish")
	}
	if err := s.repo.SetPublished(ctx, courseID, true); err != nil {
		return nil, err
	}
	course.Published = true

	if _, err := s.publisher.PublishEvent(ctx, s.eventsTopic, pubsub.Event{
		Name:       pubsub.EventCoursePublished,
		CourseID:   course.ID,
		CourseSlug: course.Slug,
	}); err != nil {
		// Notification delivery is fire-and-forget.
		s.logger.Warn().Err(err).Str("course_id", course.ID).Msg("Failed to publish course.published event")
	}
	return course, nil
}

// Unpublish hides the course again. Existing enrollments are untouched.
func (s *catalogService) Unpublish(ctx context.Context, courseID, callerID string) (*model.Course, error) {
	course, err := s.ownedCourseByID(ctx, courseID, callerID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetPublished(ctx, courseID, false); err != nil {
		return nil, err
	}
	course.Published = false
	return course, nil
}

// ListPublished retrieves all public courses with instructor summaries.
func (s *catalogService) ListPublished(ctx context.Context) ([]model.Course, error) {
	courses, err := s.repo.ListPublished(ctx)
	if err != nil {
		return nil, err
	}
	refs := make([]*model.Course, len(courses))
	for i := range courses {
		refs[i] = &courses[i]
	}
	if err := s.attachInstructors(ctx, refs); err != nil {
		return nil, err
	}
	return courses, nil
}

// ListByInstructor retrieves all courses owned by the given instructor.
func (s *catalogService) ListByInstructor(ctx context.Context, instructorID string) ([]model.Course, error) {
	return s.repo.ListByInstructor(ctx, instructorID)
}

func (s *catalogService) ownedCourseBySlug(ctx context.Context, slug, callerID string) (*model.Course, error) {
	course, err := s.repo.GetCourseBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.checkOwnership(course, callerID)
}

func (s *catalogService) ownedCourseByID(ctx context.Context, courseID, callerID string) (*model.Course, error) {
	course, err := s.repo.GetCourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	return s.checkOwnership(course, callerID)
}

func (s *catalogService) checkOwnership(course *model.Course, callerID string) (*model.Course, error) {
	if course == nil {
		return nil, apperr.New(apperr.ErrNotFound, "course not found")
	}
	if !CanMutate(callerID, course) {
		return nil, apperr.New(apperr.ErrForbidden, "caller is not the course instructor")
	}
	return course, nil
}

func (s *catalogService) attachInstructors(ctx context.Context, courses []*model.Course) error {
	ids := make([]string, 0, len(courses))
	seen := map[string]bool{}
	for _, c := range courses {
		if !seen[c.InstructorID] {
			seen[c.InstructorID] = true
			ids = append(ids, c.InstructorID)
		}
	}
	summaries, err := s.userRepo.GetInstructorSummaries(ctx, ids)
	if err != nil {
		return err
	}
	for _, c := range courses {
		if summary, ok := summaries[c.InstructorID]; ok {
			s := summary
			c.Instructor = &s
		}
	}
	return nil
}
