package handler

import (
	"encoding/json"
	"net/http"

	"eschool/internal/api/v1/dto"
	"eschool/internal/middleware"
	"eschool/internal/model"
	"eschool/internal/service"

	"github.com/go-playground/validator/v10"
)

// CourseHandler handles catalog endpoints
type CourseHandler struct {
	catalog  service.CatalogService
	validate *validator.Validate
}

// NewCourseHandler creates a new CourseHandler
func NewCourseHandler(catalog service.CatalogService, validate *validator.Validate) *CourseHandler {
	return &CourseHandler{catalog: catalog, validate: validate}
}

// RegisterRoutes mounts catalog routes. authMw must chain authentication and
// the instructor role check.
func (h *CourseHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.HandleFunc("GET /courses", h.listPublished)
	mux.HandleFunc("GET /courses/{slug}", h.getCourse)

	mux.Handle("POST /courses", authMw(http.HandlerFunc(h.createCourse)))
	mux.Handle("GET /instructor/courses", authMw(http.HandlerFunc(h.listOwn)))
	mux.Handle("PUT /courses/{slug}", authMw(http.HandlerFunc(h.updateCourse)))
	mux.Handle("POST /courses/{slug}/lessons", authMw(http.HandlerFunc(h.addLesson)))
	mux.Handle("PUT /courses/{slug}/lessons/{lessonId}", authMw(http.HandlerFunc(h.updateLesson)))
	mux.Handle("DELETE /courses/{slug}/lessons/{lessonId}", authMw(http.HandlerFunc(h.removeLesson)))
	mux.Handle("POST /courses/{slug}/reorder", authMw(http.HandlerFunc(h.reorderLessons)))
	mux.Handle("POST /courses/{courseId}/publish", authMw(http.HandlerFunc(h.publishCourse)))
	mux.Handle("POST /courses/{courseId}/unpublish", authMw(http.HandlerFunc(h.unpublishCourse)))
}

// listPublished godoc
// @Summary List published courses
// @Description Retrieves all publicly visible courses with instructor summaries.
// @Tags courses
// @Produce json
// @Success 200 {array} model.Course
// @Failure 500 {string} string "Failed to list courses"
// @Router /courses [get]
func (h *CourseHandler) listPublished(w http.ResponseWriter, r *http.Request) {
	courses, err := h.catalog.ListPublished(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, courses)
}

// getCourse godoc
// @Summary Get a course
// @Description Retrieves a single course by its slug.
// @Tags courses
// @Produce json
// @Param slug path string true "Course slug"
// @Success 200 {object} model.Course
// @Failure 404 {string} string "Course not found"
// @Router /courses/{slug} [get]
func (h *CourseHandler) getCourse(w http.ResponseWriter, r *http.Request) {
	course, err := h.catalog.GetBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, course)
}

// createCourse godoc
// @Summary Create a new course
// @Description Creates an unpublished course owned by the authenticated instructor.
// @Tags courses
// @Accept json
// @Produce json
// @Param course body dto.CourseCreateDTO true "Course creation request"
// @Success 201 {object} model.Course
// @Failure 400 {string} string "Invalid JSON payload or validation failed"
// @Failure 409 {string} string "A course with this name already exists"
// @Router /courses [post]
func (h *CourseHandler) createCourse(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: principal not found in context", http.StatusUnauthorized)
		return
	}
	var req dto.CourseCreateDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}
	draft := service.CourseDraft{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Paid:        req.Paid,
		Image:       blobFromDTO(req.Image),
	}
	course, err := h.catalog.Create(r.Context(), principal.UserID, draft)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, course)
}

// listOwn godoc
// @Summary List own courses
// @Description Retrieves every course owned by the authenticated instructor, drafts included.
// @Tags courses
// @Produce json
// @Success 200 {array} model.Course
// @Router /instructor/courses [get]
func (h *CourseHandler) listOwn(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: principal not found in context", http.StatusUnauthorized)
		return
	}
	courses, err := h.catalog.ListByInstructor(r.Context(), principal.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, courses)
}

// updateCourse godoc
// @Summary Update a course
// @Description Applies a partial field update to an owned course. The slug never changes.
// @Tags courses
// @Accept json
// @Produce json
// @Param slug path string true "Course slug"
// @Param course body dto.CourseUpdateDTO true "Course update request"
// @Success 200 {object} model.Course
// @Failure 400 {string} string "Invalid JSON payload or validation failed"
// @Failure 403 {string} string "Caller is not the course instructor"
// @Failure 404 {string} string "Course not found"
// @Router /courses/{slug} [put]
func (h *CourseHandler) updateCourse(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: principal not found in context", http.StatusUnauthorized)
		return
	}
	var req dto.CourseUpdateDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}
	patch := service.CoursePatch{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Paid:        req.Paid,
		Image:       blobFromDTO(req.Image),
	}
	course, err := h.catalog.Update(r.Context(), r.PathValue("slug"), principal.UserID, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, course)
}

// addLesson godoc
// @Summary Add a lesson
// @Description Appends a lesson to the end of the course's lesson sequence.
// @Tags lessons
// @Accept json
// @Produce json
// @Param slug path string true "Course slug"
// @Param lesson body dto.LessonCreateDTO true "Lesson creation request"
// @Success 201 {object} model.Course
// @Failure 400 {string} string "Invalid JSON payload or validation failed"
// @Failure 403 {string} string "Caller is not the course instructor"
// @Failure 409 {string} string "Lesson sequence changed since read"
// @Router /courses/{slug}/lessons [post]
func (h *CourseHandler) addLesson(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: principal not found in context", http.StatusUnauthorized)
		return
	}
	var req dto.LessonCreateDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}
	draft := service.LessonDraft{
		Title:       req.Title,
		Content:     req.Content,
		Video:       blobFromDTO(req.Video),
		FreePreview: req.FreePreview,
	}
	course, err := h.catalog.AddLesson(r.Context(), r.PathValue("slug"), principal.UserID, draft)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, course)
}

// updateLesson godoc
// @Summary Update a lesson
// @Description Applies a partial field update to one lesson in the sequence.
// @Tags lessons
// @Accept json
// @Produce json
// @Param slug path string true "Course slug"
// @Param lessonId path string true "Lesson ID"
// @Param lesson body dto.LessonUpdateDTO true "Lesson update request"
// @Success 200 {object} model.Course
// @Failure 404 {string} string "Lesson not found"
// @Router /courses/{slug}/lessons/{lessonId} [put]
func (h *CourseHandler) updateLesson(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: principal not found in context", http.StatusUnauthorized)
		return
	}
	var req dto.LessonUpdateDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}
	patch := service.LessonPatch{
		Title:       req.Title,
		Content:     req.Content,
		Video:       blobFromDTO(req.Video),
		FreePreview: req.FreePreview,
	}
	course, err := h.catalog.UpdateLesson(r.Context(), r.PathValue("slug"), r.PathValue("lessonId"), principal.UserID, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, course)
}

// removeLesson godoc
// @Summary Remove a lesson
// @Description Removes one lesson from the sequence. Completion records for it are left in place.
// @Tags lessons
// @Produce json
// @Param slug path string true "Course slug"
// @Param lessonId path string true "Lesson ID"
// @Success 200 {object} model.Course
// @Failure 404 {string} string "Lesson not found"
// @Router /courses/{slug}/lessons/{lessonId} [delete]
func (h *CourseHandler) removeLesson(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: principal not found in context", http.StatusUnauthorized)
		return
	}
	course, err := h.catalog.RemoveLesson(r.Context(), r.PathValue("slug"), r.PathValue("lessonId"), principal.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, course)
}

// reorderLessons godoc
// @Summary Reorder lessons
// @Description Replaces the lesson sequence with the supplied permutation of lesson ids.
// @Tags lessons
// @Accept json
// @Produce json
// @Param slug path string true "Course slug"
// @Param order body dto.ReorderDTO true "Lesson reorder request"
// @Success 200 {object} model.Course
// @Failure 400 {string} string "Id list is not a permutation of the current lessons"
// @Failure 409 {string} string "Lesson sequence changed since read"
// @Router /courses/{slug}/reorder [post]
func (h *CourseHandler) reorderLessons(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: principal not found in context", http.StatusUnauthorized)
		return
	}
	var req dto.ReorderDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}
	course, err := h.catalog.Reorder(r.Context(), r.PathValue("slug"), principal.UserID, req.LessonIDs, req.Version)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, course)
}

// publishCourse godoc
// @Summary Publish a course
// @Description Makes the course publicly visible. Requires at least five lessons.
// @Tags courses
// @Produce json
// @Param courseId path string true "Course ID"
// @Success 200 {object} model.Course
// @Failure 422 {string} string "A course needs at least 5 lessons to publish"
// @Router /courses/{courseId}/publish [post]
func (h *CourseHandler) publishCourse(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: principal not found in context", http.StatusUnauthorized)
		return
	}
	course, err := h.catalog.Publish(r.Context(), r.PathValue("courseId"), principal.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, course)
}

// unpublishCourse godoc
// @Summary Unpublish a course
// @Description Hides the course from public listings. Existing enrollments keep access.
// @Tags courses
// @Produce json
// @Param courseId path string true "Course ID"
// @Success 200 {object} model.Course
// @Router /courses/{courseId}/unpublish [post]
func (h *CourseHandler) unpublishCourse(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: principal not found in context", http.StatusUnauthorized)
		return
	}
	course, err := h.catalog.Unpublish(r.Context(), r.PathValue("courseId"), principal.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, course)
}

func blobFromDTO(d *dto.BlobRefDTO) *model.BlobRef {
	if d == nil {
		return nil
	}
	return &model.BlobRef{
		Bucket:      d.Bucket,
		Key:         d.Key,
		Location:    d.Location,
		ContentType: d.ContentType,
	}
}
