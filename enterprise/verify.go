package enterprise

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/iganev/recaptcha-verify/internal/log"
)

// DefaultBaseURL is the assessments API root used by default.
const DefaultBaseURL = "https://recaptchaenterprise.googleapis.com/v1"

// Client requests assessments for one project/site pair. The zero fields of
// BaseURL and HTTP fall back to the public API and a 5s-timeout client. A
// Client is immutable after construction and safe for concurrent use.
type Client struct {
	ProjectID string
	APIKey    string
	SiteKey   string
	BaseURL   string
	HTTP      *http.Client
}

func NewClient(projectID, apiKey, siteKey string) *Client {
	return &Client{
		ProjectID: projectID,
		APIKey:    apiKey,
		SiteKey:   siteKey,
		BaseURL:   DefaultBaseURL,
		HTTP:      &http.Client{Timeout: 5 * time.Second},
	}
}

// EventParams are the caller-supplied inputs to an assessment. Only Token
// is required. ExpectedAction must be a recognized UserAction when set.
type EventParams struct {
	Token          string
	ExpectedAction UserAction
	UserAgent      string
	UserIPAddress  string
}

// Outbound request keys are snake_case; the response echoes the event back
// with camelCase keys. The remote API defines both shapes this way.
type eventBody struct {
	Token          string `json:"token"`
	SiteKey        string `json:"site_key"`
	ExpectedAction string `json:"expected_action,omitempty"`
	UserAgent      string `json:"user_agent,omitempty"`
	UserIPAddress  string `json:"user_ip_address,omitempty"`
}

type assessmentRequest struct {
	Event eventBody `json:"event"`
}

// Assess posts an assessment request and decodes the reply.
//
// A non-nil error is one of: a plain error for a rejected ExpectedAction
// (nothing is sent in that case), *TransportError, *APIError, or
// *UnparseableResponseError. The HTTP status is ignored; the service
// returns the same envelope shapes across status codes.
func (c *Client) Assess(ctx context.Context, params EventParams) (*Assessment, error) {
	if params.ExpectedAction != "" && !params.ExpectedAction.IsValid() {
		return nil, fmt.Errorf("recaptcha: unrecognized expected action %q", params.ExpectedAction)
	}

	payload, err := json.Marshal(assessmentRequest{Event: eventBody{
		Token:          params.Token,
		SiteKey:        c.SiteKey,
		ExpectedAction: string(params.ExpectedAction),
		UserAgent:      params.UserAgent,
		UserIPAddress:  params.UserIPAddress,
	}})
	if err != nil {
		return nil, fmt.Errorf("recaptcha: encode assessment request: %w", err)
	}

	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	url := fmt.Sprintf("%s/projects/%s/assessments?key=%s", base, c.ProjectID, c.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	client := c.HTTP
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	assessment, err := Decode(body)
	if err != nil {
		lg := log.WithComponent("enterprise")
		lg.Debug().Err(err).Msg("assessment not decoded")
		return nil, err
	}
	return assessment, nil
}

// VerifyDetailed assesses a token and returns the full assessment.
func (c *Client) VerifyDetailed(ctx context.Context, token string, action UserAction) (*Assessment, error) {
	return c.Assess(ctx, EventParams{Token: token, ExpectedAction: action})
}

// Verify assesses a token and collapses the assessment to a plain
// judgment: nil when the token is valid, *InvalidTokenError when the
// service rejected it, or one of the Assess errors when no judgment was
// obtained.
func (c *Client) Verify(ctx context.Context, token string, action UserAction) error {
	assessment, err := c.VerifyDetailed(ctx, token, action)
	if err != nil {
		return err
	}
	return assessment.TokenError()
}

// VerifyDetailed assesses a token using a one-shot client with default
// settings.
func VerifyDetailed(ctx context.Context, projectID, apiKey, siteKey, token string, action UserAction) (*Assessment, error) {
	return NewClient(projectID, apiKey, siteKey).VerifyDetailed(ctx, token, action)
}

// Verify checks a token using a one-shot client with default settings.
func Verify(ctx context.Context, projectID, apiKey, siteKey, token string, action UserAction) error {
	return NewClient(projectID, apiKey, siteKey).Verify(ctx, token, action)
}
