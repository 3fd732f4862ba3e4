package errs

import (
	"net/http"
)

// Client-facing messages shared by the call endpoint.
const (
	MessageMethodNotAllowed = "Method not allowed"
	MessageMisconfigured    = "Server misconfigured: missing Vapi credentials."
	MessagePublicKey        = "Invalid key: detected a public key. Use your Vapi secret key that starts with sk_ for server calls."
	MessageInvalidPhone     = "Invalid phone number format. Please include country code."
	MessageUpstreamFallback = "Failed to initiate call with VAPI"
	MessageInternal         = "Internal server error. Please try again."
)

// newHTTPError builds an HTTPError whose Code is derived from the status text.
//
// http.StatusText(401) => "Unauthorized" => "UNAUTHORIZED"
func newHTTPError(status int, message string) *HTTPError {
	return &HTTPError{
		Code:    MakeUpperCaseWithUnderscores(http.StatusText(status)),
		Message: message,
		Status:  status,
	}
}

// NewUnauthorizedError creates a 401 Unauthorized HTTPError.
func NewUnauthorizedError(message string) *HTTPError {
	return newHTTPError(http.StatusUnauthorized, message)
}

// NewBadRequestError creates a 400 Bad Request HTTPError.
func NewBadRequestError(message string) *HTTPError {
	return newHTTPError(http.StatusBadRequest, message)
}

// NewNotFoundError creates a 404 Not Found HTTPError.
func NewNotFoundError(message string) *HTTPError {
	return newHTTPError(http.StatusNotFound, message)
}

// NewMethodNotAllowedError creates a 405 Method Not Allowed HTTPError.
func NewMethodNotAllowedError() *HTTPError {
	return newHTTPError(http.StatusMethodNotAllowed, MessageMethodNotAllowed)
}

// NewMisconfiguredError creates a 500 for missing server-side credentials.
//
// Operators must fix the environment; retrying does not help.
func NewMisconfiguredError() *HTTPError {
	err := newHTTPError(http.StatusInternalServerError, MessageMisconfigured)
	err.Code = "SERVER_MISCONFIGURED"
	return err
}

// NewUpstreamError forwards a non-success status from the call-placement API.
//
// An empty message falls back to MessageUpstreamFallback. Status codes outside
// the HTTP error range are reported as 502 so the response is never a success.
func NewUpstreamError(status int, message string) *HTTPError {
	if message == "" {
		message = MessageUpstreamFallback
	}
	if status < http.StatusBadRequest || status > 599 {
		status = http.StatusBadGateway
	}

	err := newHTTPError(status, message)
	err.Code = "UPSTREAM_" + err.Code
	return err
}

// NewInternalServerError creates a 500 Internal Server Error HTTPError.
//
// Note:
//   - message is generic, not the real internal error message.
//   - attach the real error with WithCause so it reaches the logs only.
func NewInternalServerError() *HTTPError {
	return newHTTPError(http.StatusInternalServerError, MessageInternal)
}
