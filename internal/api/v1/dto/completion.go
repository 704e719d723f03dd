package dto

// CompletionMarkDTO identifies a lesson to mark or unmark as completed.
type CompletionMarkDTO struct {
	CourseID string `json:"course_id" validate:"required"`
	LessonID string `json:"lesson_id" validate:"required"`
}

// CompletionListDTO is the completed-lesson listing for one course.
type CompletionListDTO struct {
	CourseID  string   `json:"course_id"`
	LessonIDs []string `json:"lesson_ids"`
}
