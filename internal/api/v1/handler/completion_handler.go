package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"eschool/internal/api/v1/dto"
	"eschool/internal/middleware"
	"eschool/internal/service"

	"github.com/go-playground/validator/v10"
)

// CompletionHandler handles lesson-completion endpoints
type CompletionHandler struct {
	completion service.CompletionService
	validate   *validator.Validate
}

// NewCompletionHandler creates a new CompletionHandler
func NewCompletionHandler(completion service.CompletionService, validate *validator.Validate) *CompletionHandler {
	return &CompletionHandler{completion: completion, validate: validate}
}

// RegisterRoutes mounts completion routes behind the auth middleware.
func (h *CompletionHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("POST /completion/mark", authMw(http.HandlerFunc(h.mark)))
	mux.Handle("POST /completion/unmark", authMw(http.HandlerFunc(h.unmark)))
	mux.Handle("GET /completion/{courseId}", authMw(http.HandlerFunc(h.list)))
}

// mark godoc
// @Summary Mark a lesson completed
// @Description Records the lesson as done for the caller. Repeating is a no-op.
// @Tags completion
// @Accept json
// @Produce json
// @Param completion body dto.CompletionMarkDTO true "Completion mark request"
// @Success 200 {object} dto.CompletionListDTO
// @Failure 400 {string} string "Invalid JSON payload or validation failed"
// @Router /completion/mark [post]
func (h *CompletionHandler) mark(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.completion.MarkCompleted)
}

// unmark godoc
// @Summary Unmark a lesson
// @Description Removes the completion mark. Absent marks are a no-op.
// @Tags completion
// @Accept json
// @Produce json
// @Param completion body dto.CompletionMarkDTO true "Completion unmark request"
// @Success 200 {object} dto.CompletionListDTO
// @Failure 400 {string} string "Invalid JSON payload or validation failed"
// @Router /completion/unmark [post]
func (h *CompletionHandler) unmark(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.completion.MarkIncomplete)
}

// list godoc
// @Summary List completed lessons
// @Description Retrieves the caller's completed lesson ids for one course.
// @Tags completion
// @Produce json
// @Param courseId path string true "Course ID"
// @Success 200 {object} dto.CompletionListDTO
// @Router /completion/{courseId} [get]
func (h *CompletionHandler) list(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: principal not found in context", http.StatusUnauthorized)
		return
	}
	courseID := r.PathValue("courseId")
	lessonIDs, err := h.completion.ListCompleted(r.Context(), principal.UserID, courseID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.CompletionListDTO{CourseID: courseID, LessonIDs: lessonIDs})
}

func (h *CompletionHandler) toggle(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, userID, courseID, lessonID string) error) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: principal not found in context", http.StatusUnauthorized)
		return
	}
	var req dto.CompletionMarkDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := op(r.Context(), principal.UserID, req.CourseID, req.LessonID); err != nil {
		writeError(w, err)
		return
	}
	lessonIDs, err := h.completion.ListCompleted(r.Context(), principal.UserID, req.CourseID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.CompletionListDTO{CourseID: req.CourseID, LessonIDs: lessonIDs})
}
