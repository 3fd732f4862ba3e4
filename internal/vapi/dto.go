package vapi

import (
	"encoding/json"
	"net/http"
	"strings"
)

// CallRequest is everything needed to place one outbound call.
type CallRequest struct {
	APIKey         string
	AssistantID    string
	PhoneNumberID  string
	CustomerNumber string
}

// CallResponse is the normalized upstream reply.
//
// Message is only meaningful when OK() is false and may be empty.
type CallResponse struct {
	StatusCode int
	CallID     string
	Message    string
}

// OK reports whether the upstream accepted the call (2xx).
func (r *CallResponse) OK() bool {
	return r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices
}

const callTypeOutboundPhone = "outboundPhoneCall"

type customer struct {
	Number string `json:"number"`
}

type createCallRequest struct {
	Type          string   `json:"type"`
	PhoneNumberID string   `json:"phoneNumberId"`
	Customer      customer `json:"customer"`
	AssistantID   string   `json:"assistantId"`
}

type createCallResponse struct {
	ID      string          `json:"id"`
	Message json.RawMessage `json:"message"`
}

// message flattens the upstream "message" field.
//
// Vapi answers with a plain string for most errors and with an array of
// strings for request validation errors. Anything else yields "".
func (r createCallResponse) message() string {
	if len(r.Message) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(r.Message, &text); err == nil {
		return text
	}

	var list []string
	if err := json.Unmarshal(r.Message, &list); err == nil {
		return strings.Join(list, "; ")
	}

	return ""
}
