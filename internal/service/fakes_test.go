package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"eschool/internal/model"
	"eschool/internal/payment"
	"eschool/internal/pubsub"
)

// In-memory repository and gateway fakes shared by the service tests.

type fakeCourseRepo struct {
	mu      sync.Mutex
	courses map[string]*model.Course
}

func newFakeCourseRepo() *fakeCourseRepo {
	return &fakeCourseRepo{courses: map[string]*model.Course{}}
}

func copyCourse(c *model.Course) *model.Course {
	cp := *c
	cp.Lessons = append([]model.Lesson(nil), c.Lessons...)
	return &cp
}

func (r *fakeCourseRepo) CreateCourse(ctx context.Context, c *model.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.courses[c.ID] = copyCourse(c)
	return nil
}

func (r *fakeCourseRepo) GetCourseByID(ctx context.Context, courseID string) (*model.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.courses[courseID]
	if !ok {
		return nil, nil
	}
	return copyCourse(c), nil
}

func (r *fakeCourseRepo) GetCourseBySlug(ctx context.Context, slug string) (*model.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.courses {
		if c.Slug == slug {
			return copyCourse(c), nil
		}
	}
	return nil, nil
}

func (r *fakeCourseRepo) UpdateCourseFields(ctx context.Context, c *model.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.courses[c.ID]
	if !ok {
		return errors.New("course not found")
	}
	stored.Name = c.Name
	stored.Description = c.Description
	stored.Category = c.Category
	stored.Price = c.Price
	stored.Paid = c.Paid
	stored.Image = c.Image
	return nil
}

func (r *fakeCourseRepo) ReplaceLessons(ctx context.Context, c *model.Course, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.courses[c.ID]
	if !ok || stored.Version != expectedVersion {
		return errors.New("version conflict")
	}
	stored.Lessons = append([]model.Lesson(nil), c.Lessons...)
	stored.Version++
	c.Version = stored.Version
	return nil
}

func (r *fakeCourseRepo) SetPublished(ctx context.Context, courseID string, published bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.courses[courseID]
	if !ok {
		return errors.New("course not found")
	}
	stored.Published = published
	return nil
}

func (r *fakeCourseRepo) ListPublished(ctx context.Context) ([]model.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Course
	for _, c := range r.courses {
		if c.Published {
			out = append(out, *copyCourse(c))
		}
	}
	return out, nil
}

func (r *fakeCourseRepo) ListByInstructor(ctx context.Context, instructorID string) ([]model.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Course
	for _, c := range r.courses {
		if c.InstructorID == instructorID {
			out = append(out, *copyCourse(c))
		}
	}
	return out, nil
}

func (r *fakeCourseRepo) ListByIDs(ctx context.Context, courseIDs []string) ([]model.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Course
	for _, id := range courseIDs {
		if c, ok := r.courses[id]; ok {
			out = append(out, *copyCourse(c))
		}
	}
	return out, nil
}

type fakeUserRepo struct {
	users map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*model.User{}}
}

func (r *fakeUserRepo) GetUserByID(ctx context.Context, userID string) (*model.User, error) {
	return r.users[userID], nil
}

func (r *fakeUserRepo) GetInstructorSummaries(ctx context.Context, userIDs []string) (map[string]model.InstructorSummary, error) {
	out := map[string]model.InstructorSummary{}
	for _, id := range userIDs {
		if u, ok := r.users[id]; ok {
			out[id] = model.InstructorSummary{ID: u.UserID, Name: u.Name}
		}
	}
	return out, nil
}

type fakeEnrollmentRepo struct {
	mu      sync.Mutex
	entries map[string][]string
}

func newFakeEnrollmentRepo() *fakeEnrollmentRepo {
	return &fakeEnrollmentRepo{entries: map[string][]string{}}
}

func (r *fakeEnrollmentRepo) AddEnrollment(ctx context.Context, userID, courseID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.entries[userID] {
		if id == courseID {
			return nil
		}
	}
	r.entries[userID] = append(r.entries[userID], courseID)
	return nil
}

func (r *fakeEnrollmentRepo) IsEnrolled(ctx context.Context, userID, courseID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.entries[userID] {
		if id == courseID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeEnrollmentRepo) ListCourseIDs(ctx context.Context, userID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.entries[userID]...), nil
}

type fakeCompletionRepo struct {
	mu      sync.Mutex
	lessons map[string][]string // userID+courseID -> lesson ids
}

func newFakeCompletionRepo() *fakeCompletionRepo {
	return &fakeCompletionRepo{lessons: map[string][]string{}}
}

func (r *fakeCompletionRepo) AddLesson(ctx context.Context, userID, courseID, lessonID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := userID + "/" + courseID
	for _, id := range r.lessons[key] {
		if id == lessonID {
			return nil
		}
	}
	r.lessons[key] = append(r.lessons[key], lessonID)
	return nil
}

func (r *fakeCompletionRepo) RemoveLesson(ctx context.Context, userID, courseID, lessonID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := userID + "/" + courseID
	kept := r.lessons[key][:0]
	for _, id := range r.lessons[key] {
		if id != lessonID {
			kept = append(kept, id)
		}
	}
	r.lessons[key] = kept
	return nil
}

func (r *fakeCompletionRepo) ListLessons(ctx context.Context, userID, courseID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lessons[userID+"/"+courseID]...), nil
}

type fakeIntentRepo struct {
	mu      sync.Mutex
	intents map[string]*model.CheckoutIntent
}

func newFakeIntentRepo() *fakeIntentRepo {
	return &fakeIntentRepo{intents: map[string]*model.CheckoutIntent{}}
}

func (r *fakeIntentRepo) UpsertIntent(ctx context.Context, intent *model.CheckoutIntent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *intent
	r.intents[intent.UserID+"/"+intent.CourseID] = &cp
	return nil
}

func (r *fakeIntentRepo) GetIntent(ctx context.Context, userID, courseID string) (*model.CheckoutIntent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	intent, ok := r.intents[userID+"/"+courseID]
	if !ok {
		return nil, nil
	}
	cp := *intent
	return &cp, nil
}

func (r *fakeIntentRepo) DeleteIntent(ctx context.Context, userID, courseID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.intents, userID+"/"+courseID)
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []pubsub.Event
	err    error
}

func (p *fakePublisher) Publish(ctx context.Context, topic string, payload []byte) (string, error) {
	return "msg-1", p.err
}

func (p *fakePublisher) PublishEvent(ctx context.Context, topic string, event pubsub.Event) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return "", p.err
	}
	p.events = append(p.events, event)
	return "msg-1", nil
}

type fakeProcessor struct {
	mu       sync.Mutex
	statuses map[string]model.IntentStatus
	created  []payment.CreateIntentParams
	nextID   int
	err      error
}

func newFakeProcessor() *fakeProcessor {
	return &fakeProcessor{statuses: map[string]model.IntentStatus{}}
}

func (p *fakeProcessor) CreateIntent(ctx context.Context, params payment.CreateIntentParams) (*payment.Intent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	p.nextID++
	id := fmt.Sprintf("cs_test_%d", p.nextID)
	p.created = append(p.created, params)
	p.statuses[id] = model.IntentPending
	return &payment.Intent{ID: id, CheckoutURL: "https://checkout.example.com/" + id}, nil
}

func (p *fakeProcessor) GetStatus(ctx context.Context, intentID string) (model.IntentStatus, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return model.IntentUnknown, p.err
	}
	status, ok := p.statuses[intentID]
	if !ok {
		return model.IntentUnknown, nil
	}
	return status, nil
}

func (p *fakeProcessor) settle(intentID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.statuses[intentID] = model.IntentPaid
}

func (p *fakeProcessor) lastIntentID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return fmt.Sprintf("cs_test_%d", p.nextID)
}
