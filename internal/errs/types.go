package errs

import "strings"

// HTTPError is the main custom error type for API responses.
//
// It implements the `error` interface via Error().
// When serialized it produces the same envelope as a successful call result:
//
//	{ "success": false, "message": "..." }
//
// Fields:
//   - Code: machine-friendly error code (e.g. "BAD_REQUEST"), logged only.
//   - Message: human-friendly message sent to the client.
//   - Status: HTTP status code.
//   - cause: underlying error kept for logs (optional).
type HTTPError struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"-"`
	Status  int    `json:"-"`

	cause error
}

// Error makes *HTTPError satisfy the built-in `error` interface.
//
// It returns the client-facing Message. The cause is reachable via Unwrap.
func (e *HTTPError) Error() string {
	return e.Message
}

// Unwrap exposes the underlying cause to errors.Is / errors.As.
func (e *HTTPError) Unwrap() error {
	return e.cause
}

// Cause returns the underlying error, or nil when there is none.
func (e *HTTPError) Cause() error {
	return e.cause
}

// Is customizes how errors.Is(...) treats HTTPError.
//
// This implementation returns true if `target` is also a *HTTPError.
// It does NOT compare Code/Status/etc.
func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)

	return ok
}

// WithCause returns a *copy* of this HTTPError that wraps err.
//
// The cause is logged by the global error handler and never serialized.
func (e *HTTPError) WithCause(err error) *HTTPError {
	return &HTTPError{
		Message: e.Message,
		Code:    e.Code,
		Status:  e.Status,
		cause:   err,
	}
}

// MakeUpperCaseWithUnderscores converts a string into an UPPER_CASE_WITH_UNDERSCORES format.
//
// Example:
//
//	"Bad Request" -> "BAD_REQUEST"
//
// Used to create stable machine-readable error codes from HTTP status text.
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
