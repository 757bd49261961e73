package siteverify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/iganev/recaptcha-verify/internal/log"
)

// Endpoint is the siteverify URL used by default.
const Endpoint = "https://www.google.com/recaptcha/api/siteverify"

// Response is the siteverify reply shape. Fields other than Success and
// ErrorCodes are accepted but not interpreted.
type Response struct {
	Success        bool     `json:"success"`
	ChallengeTS    string   `json:"challenge_ts,omitempty"`
	Hostname       string   `json:"hostname,omitempty"`
	APKPackageName string   `json:"apk_package_name,omitempty"`
	ErrorCodes     []string `json:"error-codes,omitempty"`
}

// Client verifies tokens with a fixed secret. The zero fields of Endpoint
// and HTTP fall back to the public siteverify URL and a 5s-timeout client.
// A Client is immutable after construction and safe for concurrent use.
type Client struct {
	Secret   string
	Endpoint string
	HTTP     *http.Client
}

func NewClient(secret string) *Client {
	return &Client{
		Secret:   secret,
		Endpoint: Endpoint,
		HTTP:     &http.Client{Timeout: 5 * time.Second},
	}
}

// Verify checks a response token with siteverify. remoteIP may be empty.
//
// A nil return means the token was accepted. Otherwise the error is a
// *TransportError when the call did not complete, or an *InvalidError
// carrying the service's reason code (possibly empty) when it did.
func (c *Client) Verify(ctx context.Context, token, remoteIP string) error {
	form := url.Values{}
	form.Set("secret", c.Secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	endpoint := c.Endpoint
	if endpoint == "" {
		endpoint = Endpoint
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBufferString(form.Encode()))
	if err != nil {
		return &TransportError{Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := c.HTTP
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}

	resp, err := client.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	// The HTTP status is deliberately ignored: classification is driven by
	// the body alone.
	var parsed Response
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		lg := log.WithComponent("v3")
		lg.Debug().Err(err).Msg("undecodable siteverify body")
		return &InvalidError{}
	}
	return Classify(&parsed)
}

// Classify maps a decoded siteverify response to a verification outcome.
//
// A true success flag wins over any error codes present. On failure only the
// first error code is considered; a missing or empty list means the service
// gave no reason.
func Classify(resp *Response) error {
	if resp.Success {
		return nil
	}
	if len(resp.ErrorCodes) == 0 {
		return &InvalidError{}
	}
	return &InvalidError{Code: Code(resp.ErrorCodes[0])}
}

// Decode classifies a raw siteverify body. An undecodable body counts as a
// rejection with no reason, matching Verify.
func Decode(body []byte) error {
	var parsed Response
	if err := json.Unmarshal(body, &parsed); err != nil {
		return &InvalidError{}
	}
	return Classify(&parsed)
}

// Verify checks a token using a one-shot client with default settings.
func Verify(ctx context.Context, secret, token, remoteIP string) error {
	return NewClient(secret).Verify(ctx, token, remoteIP)
}
