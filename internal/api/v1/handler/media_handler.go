package handler

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"eschool/internal/api/v1/dto"
	"eschool/internal/model"
	"eschool/internal/storage"

	"github.com/go-playground/validator/v10"
)

// maxVideoBytes caps multipart video uploads at 1 GiB.
const maxVideoBytes = 1 << 30

var errMalformedDataURL = errors.New("not a base64 data URL")

// MediaHandler handles course-asset upload endpoints
type MediaHandler struct {
	store    storage.BlobStore
	validate *validator.Validate
}

// NewMediaHandler creates a new MediaHandler
func NewMediaHandler(store storage.BlobStore, validate *validator.Validate) *MediaHandler {
	return &MediaHandler{store: store, validate: validate}
}

// RegisterRoutes mounts media routes. authMw must chain authentication and
// the instructor role check.
func (h *MediaHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("POST /media/image", authMw(http.HandlerFunc(h.uploadImage)))
	mux.Handle("POST /media/video", authMw(http.HandlerFunc(h.uploadVideo)))
	mux.Handle("DELETE /media", authMw(http.HandlerFunc(h.removeBlob)))
}

// uploadImage godoc
// @Summary Upload a course image
// @Description Stores a data-URL encoded image and returns its blob reference.
// @Tags media
// @Accept json
// @Produce json
// @Param image body dto.ImageUploadDTO true "Image upload request"
// @Success 201 {object} model.BlobRef
// @Failure 400 {string} string "Invalid JSON payload or malformed data URL"
// @Router /media/image [post]
func (h *MediaHandler) uploadImage(w http.ResponseWriter, r *http.Request) {
	var req dto.ImageUploadDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}
	contentType, data, err := decodeDataURL(req.Image)
	if err != nil {
		http.Error(w, "Malformed data URL: "+err.Error(), http.StatusBadRequest)
		return
	}
	ref, err := h.store.Put(r.Context(), data, contentType)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ref)
}

// uploadVideo godoc
// @Summary Upload a lesson video
// @Description Stores a multipart video file and returns its blob reference.
// @Tags media
// @Accept mpfd
// @Produce json
// @Param file formData file true "Video file"
// @Success 201 {object} model.BlobRef
// @Failure 400 {string} string "Missing or unreadable multipart file"
// @Router /media/video [post]
func (h *MediaHandler) uploadVideo(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxVideoBytes); err != nil {
		http.Error(w, "Invalid multipart payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Missing multipart file: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "Failed to read multipart file: "+err.Error(), http.StatusBadRequest)
		return
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	ref, err := h.store.Put(r.Context(), data, contentType)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ref)
}

// removeBlob godoc
// @Summary Remove a stored asset
// @Description Deletes a previously uploaded image or video from storage.
// @Tags media
// @Accept json
// @Param blob body dto.RemoveBlobDTO true "Blob removal request"
// @Success 204 {string} string "No Content"
// @Failure 400 {string} string "Invalid JSON payload or validation failed"
// @Router /media [delete]
func (h *MediaHandler) removeBlob(w http.ResponseWriter, r *http.Request) {
	var req dto.RemoveBlobDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.store.Delete(r.Context(), model.BlobRef{Bucket: req.Bucket, Key: req.Key}); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decodeDataURL splits a "data:<type>;base64,<payload>" string into its
// content type and decoded bytes.
func decodeDataURL(s string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", nil, errMalformedDataURL
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, errMalformedDataURL
	}
	contentType, _, _ := strings.Cut(meta, ";")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, err
	}
	return contentType, data, nil
}
