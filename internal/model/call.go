// Package model holds the request and response shapes of the call endpoint.
//
// Both live for a single request only; nothing here is persisted.
package model

import (
	"encoding/json"

	"github.com/deppfellow/call-relay/internal/errs"
	"github.com/deppfellow/call-relay/internal/validation"
)

// InitiateCallRequest is the body of POST /api/initiate-call.
type InitiateCallRequest struct {
	PhoneNumber string `json:"phoneNumber" validate:"required,phone"`
}

// UnmarshalJSON reads only the exact "phoneNumber" key.
//
// encoding/json would otherwise match keys case-insensitively, so
// {"PHONENUMBER": ...} or a later near-duplicate key could supply the number.
func (r *InitiateCallRequest) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	r.PhoneNumber = ""

	raw, ok := fields["phoneNumber"]
	if !ok {
		return nil
	}

	return json.Unmarshal(raw, &r.PhoneNumber)
}

// Validate runs the struct tags through the shared validator.
func (r *InitiateCallRequest) Validate() error {
	return validation.Struct(r)
}

// FailureMessage is the single message for a missing, malformed or
// badly formatted phone number.
func (r *InitiateCallRequest) FailureMessage() string {
	return errs.MessageInvalidPhone
}

// CallResult is the body of every successful call endpoint response.
//
// Failures use the same envelope through errs.HTTPError.
type CallResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	CallID  string `json:"callId,omitempty"`
}

const (
	// MessageCallInitiated is returned once the upstream accepted the call.
	MessageCallInitiated = "Call initiated successfully"

	// MessageReachable is the liveness payload of GET /api/initiate-call.
	MessageReachable = "initiate-call endpoint is reachable"
)

// NewCallInitiated builds the success result for an accepted call.
func NewCallInitiated(callID string) *CallResult {
	return &CallResult{
		Success: true,
		Message: MessageCallInitiated,
		CallID:  callID,
	}
}

// NewReachable builds the liveness payload.
func NewReachable() *CallResult {
	return &CallResult{
		Success: true,
		Message: MessageReachable,
	}
}
