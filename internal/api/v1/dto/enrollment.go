package dto

import "eschool/internal/model"

// EnrollmentResponseDTO is returned by the free-enrollment endpoint.
type EnrollmentResponseDTO struct {
	Message string        `json:"message"`
	Course  *model.Course `json:"course,omitempty"`
}

// EnrollmentCheckDTO reports whether the caller holds an enrollment.
type EnrollmentCheckDTO struct {
	Enrolled bool          `json:"enrolled"`
	Course   *model.Course `json:"course,omitempty"`
}

// CheckoutSessionDTO carries the processor redirect URL for a paid checkout.
type CheckoutSessionDTO struct {
	CheckoutURL string `json:"checkout_url"`
}

// CheckoutConfirmDTO is returned by the checkout-confirmation endpoint.
// Success is false while the payment is still pending.
type CheckoutConfirmDTO struct {
	Success bool          `json:"success"`
	Course  *model.Course `json:"course,omitempty"`
}
