package model

import "time"

// BlobRef is an opaque reference to an asset held in object storage. Location
// is the public URL, Bucket/Key identify the object for deletion.
type BlobRef struct {
	Bucket      string `json:"bucket,omitempty"`
	Key         string `json:"key,omitempty"`
	Location    string `json:"location,omitempty"`
	ContentType string `json:"content_type,omitempty"`
}

// Lesson is a single content unit owned exclusively by a Course. Its id is
// stable across reorder; position in Course.Lessons is caller-visible.
type Lesson struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Content     string    `json:"content"`
	Video       *BlobRef  `json:"video,omitempty"`
	FreePreview bool      `json:"free_preview"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Course is the aggregate root. Version counts lesson-sequence writes and is
// the optimistic-concurrency token for structural mutations.
type Course struct {
	ID           string             `json:"id"`
	Slug         string             `json:"slug"`
	Name         string             `json:"name"`
	Description  string             `json:"description"`
	Category     string             `json:"category"`
	Price        int64              `json:"price"`
	Paid         bool               `json:"paid"`
	Published    bool               `json:"published"`
	InstructorID string             `json:"instructor_id"`
	Instructor   *InstructorSummary `json:"instructor,omitempty"`
	Image        *BlobRef           `json:"image,omitempty"`
	Lessons      []Lesson           `json:"lessons"`
	Version      int64              `json:"version"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// InstructorSummary is the only instructor shape exposed on public course
// payloads. Never carries email or payout details.
type InstructorSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// LessonByID returns the lesson with the given id, or nil.
func (c *Course) LessonByID(lessonID string) *Lesson {
	for i := range c.Lessons {
		if c.Lessons[i].ID == lessonID {
			return &c.Lessons[i]
		}
	}
	return nil
}
