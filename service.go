// Package recaptcha wires the siteverify (v2/v3) and enterprise
// verification flows behind a policy-driven service and an HTTP middleware.
// Applications that want the raw flow contracts should use the siteverify
// and enterprise packages directly.
package recaptcha

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/iganev/recaptcha-verify/enterprise"
	"github.com/iganev/recaptcha-verify/internal/config"
	"github.com/iganev/recaptcha-verify/internal/log"
	"github.com/iganev/recaptcha-verify/internal/policy"
	"github.com/iganev/recaptcha-verify/siteverify"
)

// ActionMetadata is the frontend-facing widget configuration for an action.
type ActionMetadata struct {
	Action     string
	SiteKey    string
	Theme      string
	Appearance string
}

// VerificationResult is the service-level judgment of a token.
//
// Only the "verified" status allows. The "transport_error", "api_error" and
// "unparseable_response" statuses indicate integration problems worth
// alerting on; "token_invalid", "action_mismatch" and "score_too_low" are
// ordinary rejections where asking the user to retry the challenge is the
// right response.
type VerificationResult struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Service verifies tokens according to the configured policy.
type Service interface {
	Verify(ctx context.Context, token, ip, expectedAction string) VerificationResult
}

type service struct {
	logger zerolog.Logger
}

// NewService builds the policy-driven verification service. It panics when
// the policy file cannot be loaded, since nothing can be verified without it.
func NewService() Service {
	store, err := policy.Current()
	if err != nil {
		panic(fmt.Sprintf("failed to load verification policy: %v", err))
	}
	if store.Provider() == "" {
		panic("verification provider missing in policy file")
	}
	return &service{logger: log.WithComponent("service")}
}

func (s *service) Verify(ctx context.Context, token, ip, expectedAction string) VerificationResult {
	store, err := policy.Current()
	if err != nil {
		return failure("policy_error", fmt.Sprintf("failed to load policy: %v", err))
	}

	pol, ok := store.PolicyFor(expectedAction)
	if !ok {
		s.logger.Warn().Str("action", expectedAction).
			Float64("min_score", pol.MinScore).
			Msg("no policy override for action, using global policy")
	}

	secret, err := config.Get(pol.SecretKey)
	if err != nil {
		return failure("config_error", fmt.Sprintf("failed to load secret %q: %v", pol.SecretKey, err))
	}

	switch store.Provider() {
	case policy.ProviderV3:
		return s.verifyV3(ctx, secret, token, ip)
	case policy.ProviderEnterprise:
		return s.verifyEnterprise(ctx, secret, pol, token, ip, expectedAction)
	default:
		return failure("policy_error", fmt.Sprintf("unknown provider %q", store.Provider()))
	}
}

func (s *service) verifyV3(ctx context.Context, secret, token, ip string) VerificationResult {
	client := siteverify.NewClient(secret)
	client.Endpoint = config.GetDefault("RECAPTCHA_SITEVERIFY_URL", siteverify.Endpoint)
	err := client.Verify(ctx, token, ip)

	var transport *siteverify.TransportError
	var invalid *siteverify.InvalidError
	switch {
	case err == nil:
		return VerificationResult{Success: true, Status: "verified", Message: "token verified"}
	case errors.As(err, &transport):
		s.logger.Warn().Err(transport.Err).Msg("siteverify unreachable")
		return failure("transport_error", fmt.Sprintf("siteverify call failed: %v", transport.Err))
	case errors.As(err, &invalid):
		if invalid.Code == "" {
			return failure("token_invalid", "token rejected, no reason given")
		}
		return failure("token_invalid", fmt.Sprintf("token rejected: %s", invalid.Code))
	default:
		return failure("verify_error", fmt.Sprintf("verify error: %v", err))
	}
}

func (s *service) verifyEnterprise(ctx context.Context, apiKey string, pol policy.Policy, token, ip, expectedAction string) VerificationResult {
	client := enterprise.NewClient(pol.ProjectID, apiKey, pol.SiteKey)
	client.BaseURL = config.GetDefault("RECAPTCHA_ENTERPRISE_URL", enterprise.DefaultBaseURL)

	params := enterprise.EventParams{Token: token, UserIPAddress: ip}
	declared, err := enterprise.ParseUserAction(expectedAction)
	if err == nil {
		params.ExpectedAction = declared
	} else if expectedAction != "" {
		s.logger.Warn().Str("action", expectedAction).
			Msg("action outside the recognized vocabulary, assessing without expected_action")
	}

	assessment, err := client.Assess(ctx, params)
	if err != nil {
		var transport *enterprise.TransportError
		var apiErr *enterprise.APIError
		var unparseable *enterprise.UnparseableResponseError
		switch {
		case errors.As(err, &transport):
			s.logger.Warn().Err(transport.Err).Msg("assessments endpoint unreachable")
			return failure("transport_error", fmt.Sprintf("assessment call failed: %v", transport.Err))
		case errors.As(err, &apiErr):
			s.logger.Error().Int("code", apiErr.Code).Str("status", apiErr.Status).
				Msg("assessments endpoint rejected the request")
			return failure("api_error", fmt.Sprintf("api error %d (%s): %s", apiErr.Code, apiErr.Status, apiErr.Message))
		case errors.As(err, &unparseable):
			s.logger.Error().Int("body_bytes", len(unparseable.Body)).
				Msg("assessments endpoint returned an unrecognized body")
			return failure("unparseable_response", unparseable.Error())
		default:
			return failure("verify_error", fmt.Sprintf("verify error: %v", err))
		}
	}

	if tokenErr := assessment.TokenError(); tokenErr != nil {
		var invalid *enterprise.InvalidTokenError
		if errors.As(tokenErr, &invalid) && invalid.Raw != "" {
			return failure("token_invalid", fmt.Sprintf("token invalid: %s", invalid.Raw))
		}
		return failure("token_invalid", "token invalid, no reason given")
	}

	if declared != "" && assessment.TokenProperties.Action != declared.String() {
		return failure("action_mismatch", fmt.Sprintf("action mismatch: expected %q, got %q",
			declared, assessment.TokenProperties.Action))
	}

	if assessment.RiskAnalysis.Score < pol.MinScore {
		return failure("score_too_low", fmt.Sprintf("score too low: %.2f < %.2f",
			assessment.RiskAnalysis.Score, pol.MinScore))
	}

	return VerificationResult{Success: true, Status: "verified", Message: "token verified"}
}

func failure(status, message string) VerificationResult {
	return VerificationResult{Success: false, Status: status, Message: message}
}

// Metadata returns the widget configuration for an action without requiring
// a Service instance.
func Metadata(action string) (ActionMetadata, error) {
	store, err := policy.Current()
	if err != nil {
		return ActionMetadata{}, err
	}
	pol, _ := store.PolicyFor(action)
	return ActionMetadata{
		Action:     action,
		SiteKey:    pol.SiteKey,
		Theme:      pol.Theme,
		Appearance: pol.Appearance,
	}, nil
}
