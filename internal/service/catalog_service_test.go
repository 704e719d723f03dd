package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"eschool/internal/apperr"
	"eschool/internal/model"
	"eschool/internal/pubsub"

	"github.com/rs/zerolog"
)

func newCatalogFixture() (CatalogService, *fakeCourseRepo, *fakeUserRepo, *fakePublisher) {
	repo := newFakeCourseRepo()
	users := newFakeUserRepo()
	pub := &fakePublisher{}
	svc := NewCatalogService(repo, users, pub, "events", zerolog.Nop())
	return svc, repo, users, pub
}

func TestCreateCourseDefaults(t *testing.T) {
	svc, _, _, _ := newCatalogFixture()
	course, err := svc.Create(context.Background(), "inst-1", CourseDraft{Name: "Intro to Go"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if course.Slug != "intro-to-go" {
		t.Errorf("expected slug intro-to-go, got %q", course.Slug)
	}
	if course.Price != DefaultCoursePrice {
		t.Errorf("expected default price %d, got %d", DefaultCoursePrice, course.Price)
	}
	if !course.Paid {
		t.Error("expected new course to default to paid")
	}
	if course.Published {
		t.Error("expected new course to start unpublished")
	}
	if len(course.Lessons) != 0 {
		t.Errorf("expected empty lesson sequence, got %d", len(course.Lessons))
	}
}

func TestCreateCourseDuplicateSlug(t *testing.T) {
	svc, _, _, _ := newCatalogFixture()
	if _, err := svc.Create(context.Background(), "inst-1", CourseDraft{Name: "Intro to Go"}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	_, err := svc.Create(context.Background(), "inst-2", CourseDraft{Name: "Intro to Go"})
	if !errors.Is(err, apperr.ErrDuplicateSlug) {
		t.Fatalf("expected duplicate slug error, got %v", err)
	}
}

func TestUpdateCourseKeepsSlug(t *testing.T) {
	svc, _, _, _ := newCatalogFixture()
	course, err := svc.Create(context.Background(), "inst-1", CourseDraft{Name: "Intro to Go"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	name := "Advanced Go"
	updated, err := svc.Update(context.Background(), course.Slug, "inst-1", CoursePatch{Name: &name})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Name != "Advanced Go" {
		t.Errorf("expected name updated, got %q", updated.Name)
	}
	if updated.Slug != "intro-to-go" {
		t.Errorf("expected slug unchanged, got %q", updated.Slug)
	}
}

func TestUpdateCourseForbiddenForNonOwner(t *testing.T) {
	svc, _, _, _ := newCatalogFixture()
	course, err := svc.Create(context.Background(), "inst-1", CourseDraft{Name: "Intro to Go"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	desc := "rewritten"
	_, err = svc.Update(context.Background(), course.Slug, "inst-2", CoursePatch{Description: &desc})
	if !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected forbidden error, got %v", err)
	}
}

func addLessons(t *testing.T, svc CatalogService, slug, owner string, n int) *model.Course {
	t.Helper()
	var course *model.Course
	var err error
	for i := 0; i < n; i++ {
		course, err = svc.AddLesson(context.Background(), slug, owner, LessonDraft{Title: fmt.Sprintf("Lesson %d", i+1)})
		if err != nil {
			t.Fatalf("AddLesson %d failed: %v", i+1, err)
		}
	}
	return course
}

func TestPublishGate(t *testing.T) {
	svc, _, _, pub := newCatalogFixture()
	course, err := svc.Create(context.Background(), "inst-1", CourseDraft{Name: "Intro to Go"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	addLessons(t, svc, course.Slug, "inst-1", MinPublishLessons-1)

	if _, err := svc.Publish(context.Background(), course.ID, "inst-1"); !errors.Is(err, apperr.ErrPublishGate) {
		t.Fatalf("expected publish gate error at %d lessons, got %v", MinPublishLessons-1, err)
	}

	addLessons(t, svc, course.Slug, "inst-1", 1)
	published, err := svc.Publish(context.Background(), course.ID, "inst-1")
	if err != nil {
		t.Fatalf("Publish failed at %d lessons: %v", MinPublishLessons, err)
	}
	if !published.Published {
		t.Error("expected course to be published")
	}
	if len(pub.events) != 1 || pub.events[0].Name != pubsub.EventCoursePublished {
		t.Errorf("expected one course.published event, got %v", pub.events)
	}
}

func TestUnpublishHidesFromListing(t *testing.T) {
	svc, _, _, _ := newCatalogFixture()
	course, err := svc.Create(context.Background(), "inst-1", CourseDraft{Name: "Intro to Go"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	addLessons(t, svc, course.Slug, "inst-1", MinPublishLessons)
	if _, err := svc.Publish(context.Background(), course.ID, "inst-1"); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	listed, err := svc.ListPublished(context.Background())
	if err != nil {
		t.Fatalf("ListPublished failed: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected 1 published course, got %d", len(listed))
	}
	if _, err := svc.Unpublish(context.Background(), course.ID, "inst-1"); err != nil {
		t.Fatalf("Unpublish failed: %v", err)
	}
	listed, err = svc.ListPublished(context.Background())
	if err != nil {
		t.Fatalf("ListPublished failed: %v", err)
	}
	if len(listed) != 0 {
		t.Fatalf("expected no published courses after unpublish, got %d", len(listed))
	}
}

func TestLessonAppendOrder(t *testing.T) {
	svc, _, _, _ := newCatalogFixture()
	course, err := svc.Create(context.Background(), "inst-1", CourseDraft{Name: "Intro to Go"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	course = addLessons(t, svc, course.Slug, "inst-1", 3)
	for i, want := range []string{"Lesson 1", "Lesson 2", "Lesson 3"} {
		if course.Lessons[i].Title != want {
			t.Errorf("position %d: expected %q, got %q", i, want, course.Lessons[i].Title)
		}
	}
}

func TestRemoveLesson(t *testing.T) {
	svc, _, _, _ := newCatalogFixture()
	course, err := svc.Create(context.Background(), "inst-1", CourseDraft{Name: "Intro to Go"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	course = addLessons(t, svc, course.Slug, "inst-1", 3)
	removedID := course.Lessons[1].ID
	course, err = svc.RemoveLesson(context.Background(), course.Slug, removedID, "inst-1")
	if err != nil {
		t.Fatalf("RemoveLesson failed: %v", err)
	}
	if len(course.Lessons) != 2 {
		t.Fatalf("expected 2 lessons, got %d", len(course.Lessons))
	}
	if course.LessonByID(removedID) != nil {
		t.Error("expected removed lesson to be gone")
	}
	if _, err := svc.RemoveLesson(context.Background(), course.Slug, removedID, "inst-1"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found on double remove, got %v", err)
	}
}

func TestReorderLessons(t *testing.T) {
	svc, _, _, _ := newCatalogFixture()
	course, err := svc.Create(context.Background(), "inst-1", CourseDraft{Name: "Intro to Go"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	course = addLessons(t, svc, course.Slug, "inst-1", 3)
	reversed := []string{course.Lessons[2].ID, course.Lessons[1].ID, course.Lessons[0].ID}

	reordered, err := svc.Reorder(context.Background(), course.Slug, "inst-1", reversed, course.Version)
	if err != nil {
		t.Fatalf("Reorder failed: %v", err)
	}
	for i, id := range reversed {
		if reordered.Lessons[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, reordered.Lessons[i].ID)
		}
	}
}

func TestReorderRejectsBadPermutations(t *testing.T) {
	svc, _, _, _ := newCatalogFixture()
	course, err := svc.Create(context.Background(), "inst-1", CourseDraft{Name: "Intro to Go"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	course = addLessons(t, svc, course.Slug, "inst-1", 3)
	a, b, c := course.Lessons[0].ID, course.Lessons[1].ID, course.Lessons[2].ID

	cases := []struct {
		name string
		ids  []string
	}{
		{"missing id", []string{a, b}},
		{"duplicate id", []string{a, b, b}},
		{"unknown id", []string{a, b, "nope"}},
		{"extra id", []string{a, b, c, "extra"}},
	}
	for _, tc := range cases {
		if _, err := svc.Reorder(context.Background(), course.Slug, "inst-1", tc.ids, course.Version); !errors.Is(err, apperr.ErrInvalidPermutation) {
			t.Errorf("%s: expected invalid permutation error, got %v", tc.name, err)
		}
	}
	// Rejected reorders must leave the sequence unchanged.
	got, err := svc.GetBySlug(context.Background(), course.Slug)
	if err != nil {
		t.Fatalf("GetBySlug failed: %v", err)
	}
	for i, id := range []string{a, b, c} {
		if got.Lessons[i].ID != id {
			t.Errorf("position %d changed after rejected reorder", i)
		}
	}
}

func TestReorderStaleVersionConflicts(t *testing.T) {
	svc, _, _, _ := newCatalogFixture()
	course, err := svc.Create(context.Background(), "inst-1", CourseDraft{Name: "Intro to Go"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	course = addLessons(t, svc, course.Slug, "inst-1", 2)
	staleVersion := course.Version

	// Another append bumps the version.
	course = addLessons(t, svc, course.Slug, "inst-1", 1)

	ids := []string{course.Lessons[0].ID, course.Lessons[1].ID, course.Lessons[2].ID}
	if _, err := svc.Reorder(context.Background(), course.Slug, "inst-1", ids, staleVersion); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict on stale version, got %v", err)
	}
}

func TestListPublishedAttachesInstructor(t *testing.T) {
	svc, _, users, _ := newCatalogFixture()
	users.users["inst-1"] = &model.User{UserID: "inst-1", Name: "Ada"}
	course, err := svc.Create(context.Background(), "inst-1", CourseDraft{Name: "Intro to Go"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	addLessons(t, svc, course.Slug, "inst-1", MinPublishLessons)
	if _, err := svc.Publish(context.Background(), course.ID, "inst-1"); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	listed, err := svc.ListPublished(context.Background())
	if err != nil {
		t.Fatalf("ListPublished failed: %v", err)
	}
	if len(listed) != 1 || listed[0].Instructor == nil || listed[0].Instructor.Name != "Ada" {
		t.Fatalf("expected instructor summary attached, got %+v", listed)
	}
}
