// Package apperr defines the error kinds surfaced by the document service and
// how each kind is presented at the HTTP boundary.
package apperr

import (
	"errors"
	"net/http"
)

var (
	// ErrNotFound indicates a document, or its stored content, does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates malformed input such as an unsupported file type,
	// empty extracted text or invalid chunking parameters.
	ErrValidation = errors.New("validation failed")

	// ErrStorageUnavailable indicates the content or metadata store could not be
	// reached or timed out.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrServiceUnavailable indicates the AI gateway is unconfigured or unreachable.
	// It is reported before any generation is attempted.
	ErrServiceUnavailable = errors.New("AI service unavailable")

	// ErrGenerationFailed indicates the AI gateway was reached but returned an
	// error or unusable output.
	ErrGenerationFailed = errors.New("generation failed")
)

// Presentation is what a caller is shown for an error.
type Presentation struct {
	Status  int
	Code    string
	Message string
}

// Present maps err onto an HTTP status, a stable code and a public message.
// Infrastructure failures get a fixed message so internal error text never
// reaches the client.
func Present(err error) Presentation {
	switch {
	case err == nil:
		return Presentation{Status: http.StatusOK}
	case errors.Is(err, ErrNotFound):
		return Presentation{Status: http.StatusNotFound, Code: "not_found", Message: err.Error()}
	case errors.Is(err, ErrValidation):
		return Presentation{Status: http.StatusBadRequest, Code: "validation_error", Message: err.Error()}
	case errors.Is(err, ErrServiceUnavailable):
		return Presentation{
			Status:  http.StatusServiceUnavailable,
			Code:    "service_unavailable",
			Message: "AI service is not available. Please configure GCP_PROJECT_ID and Vertex AI credentials.",
		}
	case errors.Is(err, ErrStorageUnavailable):
		return Presentation{
			Status:  http.StatusServiceUnavailable,
			Code:    "storage_unavailable",
			Message: "Storage is temporarily unavailable. Please try again later.",
		}
	case errors.Is(err, ErrGenerationFailed):
		return Presentation{
			Status:  http.StatusBadGateway,
			Code:    "generation_failed",
			Message: "The AI model failed to produce a result. Please try again later.",
		}
	default:
		return Presentation{
			Status:  http.StatusInternalServerError,
			Code:    "internal_error",
			Message: "Internal server error.",
		}
	}
}
