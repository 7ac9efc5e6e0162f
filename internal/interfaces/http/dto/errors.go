package dto

import (
	"net/http"

	"github.com/wms/backend/internal/domain/shared"
)

// General error codes used by the HTTP layer itself
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "NOT_FOUND"
	// ErrCodeUnauthorized is used when tenant identification is missing
	ErrCodeUnauthorized = "UNAUTHORIZED"
)

// kindHTTPStatus maps domain error kinds to HTTP status codes. Validation
// errors are the caller's fault (400); state machine conflicts are 409; stock
// shortfalls and missing references are semantically valid but unprocessable
// requests (422).
var kindHTTPStatus = map[shared.ErrorKind]int{
	shared.KindValidation:    http.StatusBadRequest,
	shared.KindConflict:      http.StatusConflict,
	shared.KindInsufficiency: http.StatusUnprocessableEntity,
	shared.KindIntegrity:     http.StatusUnprocessableEntity,
	shared.KindInternal:      http.StatusInternalServerError,
}

// HTTPStatusForError returns the HTTP status for an error surfaced by the
// application layer. NOT_FOUND is special-cased to 404 regardless of kind.
func HTTPStatusForError(err error) int {
	if shared.IsNotFound(err) {
		return http.StatusNotFound
	}
	if status, ok := kindHTTPStatus[shared.KindOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}
