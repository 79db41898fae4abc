package errors

import (
	"errors"
	"fmt"
)

var (
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrCameraDenied      = errors.New("camera access denied")
	ErrNoActiveStream    = errors.New("no active camera stream")
	ErrNoCapturedImage   = errors.New("no captured image")
	ErrSessionBusy       = errors.New("capture session already active")
	ErrRatingOutOfRange  = errors.New("rating must be between 1 and 5")
	ErrNoLessonSelected  = errors.New("no lesson selected")
	ErrSubmitInFlight    = errors.New("submission already in progress")
	ErrPortalUnavailable = errors.New("portal unavailable")
)

// GenericFailureMessage is the fallback shown when the portal reports a
// failure without errorMessage text.
const GenericFailureMessage = "an unexpected error occurred"

// RetryableError marks transport-level failures the gateway may retry on
// read calls. Mutations never wrap errors in it.
type RetryableError struct {
	Err     error
	Message string
}

func (e RetryableError) Error() string {
	return fmt.Sprintf("retryable error: %s - %s", e.Message, e.Err.Error())
}

func (e RetryableError) Unwrap() error {
	return e.Err
}

func NewRetryableError(err error, message string) error {
	return RetryableError{
		Err:     err,
		Message: message,
	}
}

func IsRetryable(err error) bool {
	var re RetryableError
	return errors.As(err, &re)
}

// APIError carries the errorMessage field from a success:false envelope.
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return GenericFailureMessage
	}
	return e.Message
}

func NewAPIError(message string) error {
	if message == "" {
		message = GenericFailureMessage
	}
	return &APIError{Message: message}
}
