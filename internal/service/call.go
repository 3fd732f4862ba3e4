package service

import (
	"context"
	"strconv"

	"github.com/deppfellow/call-relay/internal/config"
	"github.com/deppfellow/call-relay/internal/errs"
	"github.com/deppfellow/call-relay/internal/lib/metrics"
	"github.com/deppfellow/call-relay/internal/model"
	"github.com/deppfellow/call-relay/internal/server"
	"github.com/deppfellow/call-relay/internal/vapi"
	"github.com/rs/zerolog"
)

// CallService places outbound calls through a vapi.CallPlacer.
//
// The Vapi credentials are copied out of the server config at construction,
// so tests can hand in any configuration without touching the environment.
type CallService struct {
	vapi   config.VapiConfig
	placer vapi.CallPlacer
}

// NewCallService wires the call-placement client to the configured credentials.
func NewCallService(s *server.Server, placer vapi.CallPlacer) *CallService {
	return &CallService{
		vapi:   s.Config.Vapi,
		placer: placer,
	}
}

// CheckConfiguration verifies the server side preconditions of a call.
//
// Order matters and is part of the contract:
//  1. all three credentials present, else 500
//  2. secret key is not a publishable (pk_) key, else 401
func (cs *CallService) CheckConfiguration() error {
	if !cs.vapi.IsComplete() {
		return errs.NewMisconfiguredError()
	}

	if cs.vapi.HasPublicKey() {
		return errs.NewUnauthorizedError(errs.MessagePublicKey)
	}

	return nil
}

// Configuration states reported by ConfigurationStatus.
const (
	ConfigStatusConfigured         = "configured"
	ConfigStatusMissingCredentials = "missing_credentials"
	ConfigStatusPublicKey          = "public_key"
)

// ConfigurationStatus names the state CheckConfiguration would act on.
func (cs *CallService) ConfigurationStatus() string {
	switch {
	case !cs.vapi.IsComplete():
		return ConfigStatusMissingCredentials
	case cs.vapi.HasPublicKey():
		return ConfigStatusPublicKey
	default:
		return ConfigStatusConfigured
	}
}

// InitiateCall forwards one validated request to the call-placement API.
//
// The upstream call is detached from the inbound request's cancellation: a
// client hanging up does not abort a call that may already be dialing.
// Request-scoped values (logger, New Relic transaction) are kept.
//
// Returns:
//   - the success result when the upstream answered 2xx
//   - an upstream *errs.HTTPError carrying the upstream status otherwise
//   - a generic 500 *errs.HTTPError wrapping transport/decoding failures
func (cs *CallService) InitiateCall(ctx context.Context, req *model.InitiateCallRequest) (*model.CallResult, error) {
	logger := zerolog.Ctx(ctx).With().
		Str("operation", "initiate_call").
		Str("phone_number", req.PhoneNumber).
		Logger()

	logger.Info().Msg("initiating call")

	resp, err := cs.placer.PlaceCall(context.WithoutCancel(ctx), vapi.CallRequest{
		APIKey:         cs.vapi.PrivateKey,
		AssistantID:    cs.vapi.AssistantID,
		PhoneNumberID:  cs.vapi.PhoneNumberID,
		CustomerNumber: req.PhoneNumber,
	})
	if err != nil {
		metrics.RecordCallOutcome(metrics.OutcomeFailed)
		return nil, errs.NewInternalServerError().WithCause(err)
	}

	metrics.RecordUpstreamStatus(strconv.Itoa(resp.StatusCode))

	if !resp.OK() {
		metrics.RecordCallOutcome(metrics.OutcomeRejected)

		logger.Error().
			Int("vapi_status", resp.StatusCode).
			Str("vapi_message", resp.Message).
			Msg("vapi rejected call")

		return nil, errs.NewUpstreamError(resp.StatusCode, resp.Message)
	}

	metrics.RecordCallOutcome(metrics.OutcomeInitiated)

	logger.Info().
		Str("call_id", resp.CallID).
		Msg("call initiated")

	return model.NewCallInitiated(resp.CallID), nil
}
