package errs

import (
	"errors"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrBookUnavailable      = errors.New("book unavailable")
	ErrDuplicateReservation = errors.New("duplicate reservation")
	ErrReservationFinished  = errors.New("already finished")
	ErrInvalidStatus        = errors.New("invalid status")
	ErrEmailExists          = errors.New("email exists")
	ErrGenreExists          = errors.New("genre name exists")
	ErrForbidden            = errors.New("forbidden")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrInvalidMetadata      = errors.New("file_stub_metadata must be valid JSON")
	ErrServiceUnavailable   = errors.New("service unavailable")
)

// ErrorResponse is the JSON error envelope used by the API surface.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func NewErrorResponse(err error) ErrorResponse {
	return ErrorResponse{Success: false, Error: err.Error()}
}
