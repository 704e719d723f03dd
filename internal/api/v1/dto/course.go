package dto

// BlobRefDTO mirrors a stored-asset reference on the wire.
type BlobRefDTO struct {
	Bucket      string `json:"bucket,omitempty"`
	Key         string `json:"key,omitempty"`
	Location    string `json:"location,omitempty"`
	ContentType string `json:"content_type,omitempty"`
}

// CourseCreateDTO is the request body for course creation.
type CourseCreateDTO struct {
	Name        string      `json:"name" validate:"required,min=3,max=320"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	Price       *int64      `json:"price,omitempty" validate:"omitempty,gte=0"`
	Paid        *bool       `json:"paid,omitempty"`
	Image       *BlobRefDTO `json:"image,omitempty"`
}

// CourseUpdateDTO is the partial-update request body. Slug and instructor
// are not patchable.
type CourseUpdateDTO struct {
	Name        *string     `json:"name,omitempty" validate:"omitempty,min=3,max=320"`
	Description *string     `json:"description,omitempty"`
	Category    *string     `json:"category,omitempty"`
	Price       *int64      `json:"price,omitempty" validate:"omitempty,gte=0"`
	Paid        *bool       `json:"paid,omitempty"`
	Image       *BlobRefDTO `json:"image,omitempty"`
}

// LessonCreateDTO is the request body for appending a lesson.
type LessonCreateDTO struct {
	Title       string      `json:"title" validate:"required,min=3,max=320"`
	Content     string      `json:"content"`
	Video       *BlobRefDTO `json:"video,omitempty"`
	FreePreview bool        `json:"free_preview"`
}

// LessonUpdateDTO is the partial-update request body for a lesson.
type LessonUpdateDTO struct {
	Title       *string     `json:"title,omitempty" validate:"omitempty,min=3,max=320"`
	Content     *string     `json:"content,omitempty"`
	Video       *BlobRefDTO `json:"video,omitempty"`
	FreePreview *bool       `json:"free_preview,omitempty"`
}

// ReorderDTO is the request body for lesson reordering. LessonIDs must be a
// permutation of the course's current lesson id set; Version is the course
// version the client read before dragging.
type ReorderDTO struct {
	LessonIDs []string `json:"lesson_ids" validate:"required,min=1,dive,required"`
	Version   int64    `json:"version" validate:"gte=0"`
}
