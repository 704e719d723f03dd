package dto

// ImageUploadDTO carries a data-URL encoded image payload.
type ImageUploadDTO struct {
	Image string `json:"image" validate:"required"`
}

// RemoveBlobDTO identifies a stored asset to delete.
type RemoveBlobDTO struct {
	Bucket string `json:"bucket" validate:"required"`
	Key    string `json:"key" validate:"required"`
}
