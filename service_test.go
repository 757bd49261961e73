package recaptcha_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	recaptcha "github.com/iganev/recaptcha-verify"
)

func writePolicy(t *testing.T, data string) {
	t.Helper()
	file := filepath.Join(t.TempDir(), "policy.json")
	require.NoError(t, os.WriteFile(file, []byte(data), 0o644))
	t.Setenv("RECAPTCHA_CONFIG_PROVIDER", "env")
	t.Setenv("RECAPTCHA_POLICY", file)
}

func setupV3(t *testing.T, handler http.HandlerFunc) recaptcha.Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	writePolicy(t, `{
		"provider": "v3",
		"global": {"site_key": "site", "secret_key": "V3_SECRET"},
		"actions": {"login": {}}
	}`)
	t.Setenv("V3_SECRET", "s3cret")
	t.Setenv("RECAPTCHA_SITEVERIFY_URL", srv.URL)
	return recaptcha.NewService()
}

func setupEnterprise(t *testing.T, minScore string, handler http.HandlerFunc) recaptcha.Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	writePolicy(t, `{
		"provider": "enterprise",
		"global": {"min_score": `+minScore+`, "site_key": "site", "secret_key": "ENT_API_KEY", "project_id": "proj"},
		"actions": {"login": {}}
	}`)
	t.Setenv("ENT_API_KEY", "api-key")
	t.Setenv("RECAPTCHA_ENTERPRISE_URL", srv.URL)
	return recaptcha.NewService()
}

func TestServiceV3_Verified(t *testing.T) {
	svc := setupV3(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true}`))
	})

	res := svc.Verify(context.Background(), "tok", "127.0.0.1", "login")
	assert.True(t, res.Success)
	assert.Equal(t, "verified", res.Status)
}

func TestServiceV3_TokenInvalid(t *testing.T) {
	svc := setupV3(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"error-codes":["invalid-input-response"]}`))
	})

	res := svc.Verify(context.Background(), "tok", "", "login")
	assert.False(t, res.Success)
	assert.Equal(t, "token_invalid", res.Status)
	assert.Contains(t, res.Message, "invalid-input-response")
}

func TestServiceV3_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	writePolicy(t, `{
		"provider": "v3",
		"global": {"site_key": "site", "secret_key": "V3_SECRET"},
		"actions": {"login": {}}
	}`)
	t.Setenv("V3_SECRET", "s3cret")
	t.Setenv("RECAPTCHA_SITEVERIFY_URL", srv.URL)

	res := recaptcha.NewService().Verify(context.Background(), "tok", "", "login")
	assert.Equal(t, "transport_error", res.Status)
}

func TestServiceV3_MissingSecret(t *testing.T) {
	writePolicy(t, `{
		"provider": "v3",
		"global": {"site_key": "site", "secret_key": "V3_SECRET_UNSET"},
		"actions": {"login": {}}
	}`)

	res := recaptcha.NewService().Verify(context.Background(), "tok", "", "login")
	assert.Equal(t, "config_error", res.Status)
}

func TestServiceEnterprise_Verified(t *testing.T) {
	svc := setupEnterprise(t, "0.5", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"name": "n",
			"event": {"token": "tok"},
			"riskAnalysis": {"score": 0.9, "challenge": "", "reasons": []},
			"tokenProperties": {"valid": true, "action": "login"}
		}`))
	})

	res := svc.Verify(context.Background(), "tok", "203.0.113.7", "login")
	assert.True(t, res.Success)
	assert.Equal(t, "verified", res.Status)
}

func TestServiceEnterprise_TokenInvalid(t *testing.T) {
	svc := setupEnterprise(t, "0.5", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"name": "n",
			"event": {"token": "tok"},
			"riskAnalysis": {"score": 0.1, "challenge": "", "reasons": ["AUTOMATION"]},
			"tokenProperties": {"valid": false, "invalidReason": "AUTOMATION"}
		}`))
	})

	res := svc.Verify(context.Background(), "tok", "", "login")
	assert.Equal(t, "token_invalid", res.Status)
	assert.Contains(t, res.Message, "AUTOMATION")
}

func TestServiceEnterprise_APIError(t *testing.T) {
	svc := setupEnterprise(t, "0.5", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":403,"message":"API key not valid","status":"PERMISSION_DENIED"}}`))
	})

	res := svc.Verify(context.Background(), "tok", "", "login")
	assert.Equal(t, "api_error", res.Status)
	assert.Contains(t, res.Message, "PERMISSION_DENIED")
}

func TestServiceEnterprise_UnparseableResponse(t *testing.T) {
	svc := setupEnterprise(t, "0.5", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>proxy error</html>`))
	})

	res := svc.Verify(context.Background(), "tok", "", "login")
	assert.Equal(t, "unparseable_response", res.Status)
}

func TestServiceEnterprise_ActionMismatch(t *testing.T) {
	svc := setupEnterprise(t, "0.5", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"name": "n",
			"event": {"token": "tok"},
			"riskAnalysis": {"score": 0.9, "challenge": "", "reasons": []},
			"tokenProperties": {"valid": true, "action": "checkout"}
		}`))
	})

	res := svc.Verify(context.Background(), "tok", "", "login")
	assert.Equal(t, "action_mismatch", res.Status)
}

func TestServiceEnterprise_ScoreTooLow(t *testing.T) {
	svc := setupEnterprise(t, "0.8", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"name": "n",
			"event": {"token": "tok"},
			"riskAnalysis": {"score": 0.3, "challenge": "", "reasons": []},
			"tokenProperties": {"valid": true, "action": "login"}
		}`))
	})

	res := svc.Verify(context.Background(), "tok", "", "login")
	assert.Equal(t, "score_too_low", res.Status)
}

func TestMetadata(t *testing.T) {
	writePolicy(t, `{
		"provider": "v3",
		"global": {"site_key": "site", "secret_key": "K", "theme": "dark"},
		"actions": {"login": {"site_key": "login-site"}}
	}`)

	meta, err := recaptcha.Metadata("login")
	require.NoError(t, err)
	assert.Equal(t, "login", meta.Action)
	assert.Equal(t, "login-site", meta.SiteKey)
	assert.Equal(t, "dark", meta.Theme)
}
