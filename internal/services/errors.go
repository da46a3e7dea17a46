package services

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"mindscribe/internal/records"
)

var (
	ErrExternalTool  = errors.New("external service error")
	ErrConfiguration = errors.New("configuration error")
	ErrTimeout       = errors.New("timeout")
	ErrTransient     = errors.New("transient failure")
	ErrTranscription = errors.New("transcription failed")
	// ErrDegraded marks generation failures that were replaced by fallback
	// content. It is logged, never returned to pipeline callers.
	ErrDegraded = errors.New("generation degraded")
)

// UserFacingTranscriptionMessage is shown when a transcription attempt fails.
const UserFacingTranscriptionMessage = "Failed to transcribe audio. Please check the file and try again."

// TranscriptionError reports a failed speech-to-text call. Cause carries the
// provider's human-readable message.
type TranscriptionError struct {
	Status int
	Cause  string
	Err    error
}

func (e *TranscriptionError) Error() string {
	cause := strings.TrimSpace(e.Cause)
	if cause == "" && e.Err != nil {
		cause = e.Err.Error()
	}
	if cause == "" {
		return ErrTranscription.Error()
	}
	return fmt.Sprintf("%s: %s", ErrTranscription.Error(), cause)
}

func (e *TranscriptionError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrTranscription}
	}
	return []error{ErrTranscription, e.Err}
}

// NewTranscriptionError builds a TranscriptionError for the given HTTP status.
func NewTranscriptionError(status int, cause string, err error) *TranscriptionError {
	return &TranscriptionError{Status: status, Cause: cause, Err: err}
}

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// StatusCode maps a pipeline or store error to the HTTP status the API
// reports for it.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, records.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, records.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrTranscription), errors.Is(err, ErrExternalTool):
		return http.StatusBadGateway
	case errors.Is(err, ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, ErrConfiguration):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
