// Package vapi is the client for the Vapi call-placement API.
//
// It sends exactly one request per call: no retries and no client-side
// timeout, whatever the transport does on failure is returned to the caller.
package vapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// CallPlacer places one outbound phone call.
//
// A returned error means no usable upstream answer exists (transport
// failure, undecodable body). An upstream rejection is NOT an error: it is
// a CallResponse whose OK() is false.
type CallPlacer interface {
	PlaceCall(ctx context.Context, req CallRequest) (*CallResponse, error)
}

// Client talks to the Vapi REST API.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zerolog.Logger
}

// NewClient creates a Client for baseURL (e.g. https://api.vapi.ai).
//
// The transport is wrapped by New Relic so the call shows up as an external
// segment when the request context carries a transaction. httpClient and
// logger may be nil.
func NewClient(baseURL string, httpClient *http.Client, logger *zerolog.Logger) *Client {
	instrumented := &http.Client{}
	if httpClient != nil {
		*instrumented = *httpClient
	}
	instrumented.Transport = newrelic.NewRoundTripper(instrumented.Transport)

	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    instrumented,
		logger:  logger,
	}
}

// PlaceCall posts an outboundPhoneCall to /call.
func (c *Client) PlaceCall(ctx context.Context, in CallRequest) (*CallResponse, error) {
	url := fmt.Sprintf("%s/call", c.baseURL)

	payload := createCallRequest{
		Type:          callTypeOutboundPhone,
		PhoneNumberID: in.PhoneNumberID,
		Customer:      customer{Number: in.CustomerNumber},
		AssistantID:   in.AssistantID,
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "marshal vapi call request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, errors.Wrap(err, "build vapi call request")
	}
	c.setHeaders(req, in.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "vapi call request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "read vapi response (status %d)", resp.StatusCode)
	}

	var decoded createCallResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, errors.Wrapf(err, "decode vapi response (status %d)", resp.StatusCode)
	}

	result := &CallResponse{
		StatusCode: resp.StatusCode,
		CallID:     decoded.ID,
		Message:    decoded.message(),
	}

	event := c.logger.Debug()
	if !result.OK() {
		event = c.logger.Warn()
	}
	event.
		Int("vapi_status", resp.StatusCode).
		RawJSON("vapi_response", body).
		Msg("vapi response received")

	return result, nil
}

// setHeaders centralizes the mandatory headers.
func (c *Client) setHeaders(req *http.Request, apiKey string) {
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}
