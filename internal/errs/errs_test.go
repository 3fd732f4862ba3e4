package errs

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPError_JSONShape(t *testing.T) {
	err := NewBadRequestError(MessageInvalidPhone).WithCause(errors.New("regexp mismatch"))

	body, marshalErr := json.Marshal(err)
	require.NoError(t, marshalErr)

	assert.JSONEq(t, `{"success":false,"message":"Invalid phone number format. Please include country code."}`, string(body))
}

func TestHTTPError_CauseIsUnwrapped(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := NewInternalServerError().WithCause(cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, cause, err.Cause())
	assert.Equal(t, MessageInternal, err.Error())
	assert.Equal(t, http.StatusInternalServerError, err.Status)
}

func TestHTTPError_IsMatchesAnyHTTPError(t *testing.T) {
	var target *HTTPError

	assert.True(t, errors.Is(NewMethodNotAllowedError(), &HTTPError{}))
	assert.True(t, errors.As(NewUnauthorizedError(MessagePublicKey), &target))
	assert.Equal(t, "UNAUTHORIZED", target.Code)
}

func TestNewUpstreamError(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		message     string
		wantStatus  int
		wantMessage string
	}{
		{"forwards status and message", http.StatusPaymentRequired, "insufficient balance", http.StatusPaymentRequired, "insufficient balance"},
		{"falls back on empty message", http.StatusBadRequest, "", http.StatusBadRequest, MessageUpstreamFallback},
		{"non-error status becomes bad gateway", http.StatusMultipleChoices, "moved", http.StatusBadGateway, "moved"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewUpstreamError(tt.status, tt.message)
			assert.Equal(t, tt.wantStatus, err.Status)
			assert.Equal(t, tt.wantMessage, err.Message)
		})
	}
}

func TestWithCauseKeepsStatusAndCode(t *testing.T) {
	base := NewMisconfiguredError()
	cause := errors.New("VAPI_ASSISTANT_ID unset")
	wrapped := base.WithCause(cause)

	assert.Equal(t, base.Status, wrapped.Status)
	assert.Equal(t, "SERVER_MISCONFIGURED", wrapped.Code)
	assert.Nil(t, base.Cause())
	assert.Equal(t, cause, wrapped.Cause())
}

func TestMakeUpperCaseWithUnderscores(t *testing.T) {
	assert.Equal(t, "METHOD_NOT_ALLOWED", MakeUpperCaseWithUnderscores("Method Not Allowed"))
}
