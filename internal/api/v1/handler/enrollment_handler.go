package handler

import (
	"net/http"

	"eschool/internal/api/v1/dto"
	"eschool/internal/middleware"
	"eschool/internal/service"
)

// EnrollmentHandler handles enrollment and paid-checkout endpoints
type EnrollmentHandler struct {
	enrollment service.EnrollmentService
	settlement service.SettlementService
}

// NewEnrollmentHandler creates a new EnrollmentHandler
func NewEnrollmentHandler(enrollment service.EnrollmentService, settlement service.SettlementService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollment: enrollment, settlement: settlement}
}

// RegisterRoutes mounts enrollment routes behind the auth middleware.
func (h *EnrollmentHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("POST /enrollment/free/{courseId}", authMw(http.HandlerFunc(h.freeEnroll)))
	mux.Handle("GET /enrollment/check/{courseId}", authMw(http.HandlerFunc(h.checkEnrollment)))
	mux.Handle("GET /enrollment/courses", authMw(http.HandlerFunc(h.listEnrolled)))
	mux.Handle("POST /enrollment/paid/{courseId}", authMw(http.HandlerFunc(h.beginCheckout)))
	mux.Handle("POST /enrollment/confirm/{courseId}", authMw(http.HandlerFunc(h.confirmCheckout)))
}

// freeEnroll godoc
// @Summary Enroll in a free course
// @Description Grants the caller access to a free course. Repeating is a no-op.
// @Tags enrollment
// @Produce json
// @Param courseId path string true "Course ID"
// @Success 200 {object} dto.EnrollmentResponseDTO
// @Failure 400 {string} string "Course requires payment"
// @Failure 404 {string} string "Course not found"
// @Router /enrollment/free/{courseId} [post]
func (h *EnrollmentHandler) freeEnroll(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: principal not found in context", http.StatusUnauthorized)
		return
	}
	course, err := h.enrollment.FreeEnroll(r.Context(), principal.UserID, r.PathValue("courseId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.EnrollmentResponseDTO{Message: "enrolled", Course: course})
}

// checkEnrollment godoc
// @Summary Check enrollment
// @Description Reports whether the caller is enrolled in the course.
// @Tags enrollment
// @Produce json
// @Param courseId path string true "Course ID"
// @Success 200 {object} dto.EnrollmentCheckDTO
// @Failure 404 {string} string "Course not found"
// @Router /enrollment/check/{courseId} [get]
func (h *EnrollmentHandler) checkEnrollment(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: principal not found in context", http.StatusUnauthorized)
		return
	}
	enrolled, course, err := h.enrollment.IsEnrolled(r.Context(), principal.UserID, r.PathValue("courseId"))
	if err != nil {
		writeError(w, err)
		return
	}
	resp := dto.EnrollmentCheckDTO{Enrolled: enrolled}
	if enrolled {
		resp.Course = course
	}
	writeJSON(w, http.StatusOK, resp)
}

// listEnrolled godoc
// @Summary List enrolled courses
// @Description Retrieves every course the caller holds an enrollment for.
// @Tags enrollment
// @Produce json
// @Success 200 {array} model.Course
// @Router /enrollment/courses [get]
func (h *EnrollmentHandler) listEnrolled(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: principal not found in context", http.StatusUnauthorized)
		return
	}
	courses, err := h.enrollment.ListEnrolled(r.Context(), principal.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, courses)
}

// beginCheckout godoc
// @Summary Begin a paid checkout
// @Description Creates a payment intent for a paid course and returns the processor redirect URL.
// @Tags enrollment
// @Produce json
// @Param courseId path string true "Course ID"
// @Success 200 {object} dto.CheckoutSessionDTO
// @Failure 400 {string} string "Course is free or instructor has no payout account"
// @Failure 404 {string} string "Course not found"
// @Failure 502 {string} string "Payment processor unavailable"
// @Router /enrollment/paid/{courseId} [post]
func (h *EnrollmentHandler) beginCheckout(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: principal not found in context", http.StatusUnauthorized)
		return
	}
	url, err := h.settlement.BeginPaidCheckout(r.Context(), principal.UserID, r.PathValue("courseId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.CheckoutSessionDTO{CheckoutURL: url})
}

// confirmCheckout godoc
// @Summary Confirm a paid checkout
// @Description Verifies payment with the processor and grants the enrollment when settled.
// @Tags enrollment
// @Produce json
// @Param courseId path string true "Course ID"
// @Success 200 {object} dto.CheckoutConfirmDTO
// @Failure 404 {string} string "No active checkout for this course"
// @Failure 502 {string} string "Payment processor unavailable"
// @Router /enrollment/confirm/{courseId} [post]
func (h *EnrollmentHandler) confirmCheckout(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: principal not found in context", http.StatusUnauthorized)
		return
	}
	success, course, err := h.settlement.ConfirmCheckout(r.Context(), principal.UserID, r.PathValue("courseId"))
	if err != nil {
		writeError(w, err)
		return
	}
	resp := dto.CheckoutConfirmDTO{Success: success}
	if success {
		resp.Course = course
	}
	writeJSON(w, http.StatusOK, resp)
}
