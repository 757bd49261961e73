package recaptcha

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"
)

var (
	serviceOnce sync.Once
	shared      Service
)

// FailureHandler is invoked when a request does not pass verification.
type FailureHandler func(http.ResponseWriter, *http.Request, VerificationResult)

type middlewareConfig struct {
	failureHandler FailureHandler
	service        Service
	timeout        time.Duration
}

type MiddlewareOption func(*middlewareConfig)

// WithFailureHandler overrides the default JSON 400 failure response.
func WithFailureHandler(handler FailureHandler) MiddlewareOption {
	return func(cfg *middlewareConfig) {
		if handler != nil {
			cfg.failureHandler = handler
		}
	}
}

// WithService supplies the verification service explicitly instead of the
// lazily-built shared one.
func WithService(svc Service) MiddlewareOption {
	return func(cfg *middlewareConfig) {
		if svc != nil {
			cfg.service = svc
		}
	}
}

// WithTimeout bounds the verification round trip per request.
func WithTimeout(d time.Duration) MiddlewareOption {
	return func(cfg *middlewareConfig) {
		if d > 0 {
			cfg.timeout = d
		}
	}
}

// Middleware protects a handler with token verification for the given
// declared action. The token is read from the X-Recaptcha-Token header, the
// g-recaptcha-response or token form fields, or a JSON body's token field.
func Middleware(expectedAction string, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := middlewareConfig{
		failureHandler: JSONFailureHandler(http.StatusBadRequest),
		timeout:        6 * time.Second,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			svc := cfg.service
			if svc == nil {
				serviceOnce.Do(func() {
					shared = NewService()
				})
				svc = shared
			}

			token := extractToken(r)
			if token == "" {
				cfg.failureHandler(w, r, VerificationResult{
					Success: false,
					Status:  "token_missing",
					Message: "missing recaptcha token",
				})
				return
			}

			ctx, cancel := context.WithTimeout(r.Context(), cfg.timeout)
			defer cancel()

			result := svc.Verify(ctx, token, r.RemoteAddr, expectedAction)
			if !result.Success {
				cfg.failureHandler(w, r, result)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// JSONFailureHandler writes the verification result as JSON with the given
// status code.
func JSONFailureHandler(status int) FailureHandler {
	return func(w http.ResponseWriter, _ *http.Request, result VerificationResult) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(result)
	}
}

// maxTokenBody bounds how much of a JSON body is read while looking for a
// token. Tokens are short; anything past this is not a token carrier.
const maxTokenBody = 1 << 20

func extractToken(r *http.Request) string {
	if t := r.Header.Get("X-Recaptcha-Token"); t != "" {
		return t
	}
	if err := r.ParseForm(); err == nil {
		if t := r.FormValue("g-recaptcha-response"); t != "" {
			return t
		}
		if t := r.FormValue("token"); t != "" {
			return t
		}
	}
	if r.Body == nil {
		return ""
	}
	b, _ := io.ReadAll(io.LimitReader(r.Body, maxTokenBody))
	if len(b) == 0 {
		return ""
	}
	// Put the bytes back so the wrapped handler can still read its body.
	r.Body = io.NopCloser(bytes.NewReader(b))
	var payload struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(b, &payload); err != nil {
		return ""
	}
	return payload.Token
}
