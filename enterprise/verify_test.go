package enterprise_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iganev/recaptcha-verify/enterprise"
)

func newTestClient(srvURL string) *enterprise.Client {
	c := enterprise.NewClient("demo-project", "api-key", "site-key")
	c.BaseURL = srvURL
	return c
}

func TestAssess_RequestShape(t *testing.T) {
	var gotPath, gotQuery, gotContentType string
	var gotBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(assessmentBody))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.Assess(context.Background(), enterprise.EventParams{
		Token:          "tok",
		ExpectedAction: enterprise.ActionLogin,
	})
	require.NoError(t, err)

	assert.Equal(t, "/projects/demo-project/assessments", gotPath)
	assert.Equal(t, "key=api-key", gotQuery)
	assert.Equal(t, "application/json", gotContentType)

	var sent map[string]map[string]any
	require.NoError(t, json.Unmarshal(gotBody, &sent))
	event := sent["event"]
	assert.Equal(t, "tok", event["token"])
	assert.Equal(t, "site-key", event["site_key"])
	assert.Equal(t, "login", event["expected_action"])
	_, present := event["user_agent"]
	assert.False(t, present, "unset optional fields stay off the wire")
}

func TestAssess_ExpectedActionOmittedWhenEmpty(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(assessmentBody))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Assess(context.Background(), enterprise.EventParams{Token: "tok"})
	require.NoError(t, err)

	var sent map[string]map[string]any
	require.NoError(t, json.Unmarshal(gotBody, &sent))
	_, present := sent["event"]["expected_action"]
	assert.False(t, present)
}

func TestAssess_RichEventFields(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(assessmentBody))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Assess(context.Background(), enterprise.EventParams{
		Token:         "tok",
		UserAgent:     "curl/8",
		UserIPAddress: "198.51.100.1",
	})
	require.NoError(t, err)

	var sent map[string]map[string]any
	require.NoError(t, json.Unmarshal(gotBody, &sent))
	assert.Equal(t, "curl/8", sent["event"]["user_agent"])
	assert.Equal(t, "198.51.100.1", sent["event"]["user_ip_address"])
}

func TestAssess_RejectsUnknownActionBeforeSending(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Assess(context.Background(), enterprise.EventParams{
		Token:          "tok",
		ExpectedAction: enterprise.UserAction("self_destruct"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "self_destruct")
	assert.False(t, called, "no request may be issued for a rejected action")
}

func TestVerify_InvalidArgumentScenario(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":400,"message":"Request contains an invalid argument.","status":"INVALID_ARGUMENT"}}`))
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).Verify(context.Background(), "tok", "")
	var apiErr *enterprise.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.Code)
	assert.Equal(t, "Request contains an invalid argument.", apiErr.Message)
	assert.Equal(t, "INVALID_ARGUMENT", apiErr.Status)
}

func TestVerify_InvalidToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"name": "n",
			"event": {"token": "tok"},
			"riskAnalysis": {"score": 0.1, "challenge": "", "reasons": ["AUTOMATION"]},
			"tokenProperties": {"valid": false, "invalidReason": "AUTOMATION"}
		}`))
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).Verify(context.Background(), "tok", "")
	var invalid *enterprise.InvalidTokenError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, enterprise.InvalidReasonAutomation, invalid.Reason)
}

func TestVerify_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	err := newTestClient(srv.URL).Verify(context.Background(), "tok", "")
	var transport *enterprise.TransportError
	require.ErrorAs(t, err, &transport)
}

func TestVerifyDetailed_ExposesRiskAnalysis(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(assessmentBody))
	}))
	defer srv.Close()

	a, err := newTestClient(srv.URL).VerifyDetailed(context.Background(), "tok", enterprise.ActionLogin)
	require.NoError(t, err)
	assert.InDelta(t, 0.9, a.RiskAnalysis.Score, 1e-9)
	assert.Equal(t, "login", a.TokenProperties.Action)
}
