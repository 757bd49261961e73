// Package enterprise verifies reCAPTCHA Enterprise tokens through the
// assessments endpoint and classifies its replies.
package enterprise

import "encoding/json"

// Event is the event descriptor echoed back inside an assessment. Inbound
// keys are camelCase; this differs from the snake_case keys of the outbound
// request body, which is how the remote API defines the two shapes.
type Event struct {
	Token          string `json:"token"`
	SiteKey        string `json:"siteKey"`
	UserAgent      string `json:"userAgent"`
	UserIPAddress  string `json:"userIpAddress"`
	ExpectedAction string `json:"expectedAction"`

	// Extra holds response fields beyond the modeled schema, untouched.
	Extra map[string]json.RawMessage `json:"-"`
}

func (e *Event) UnmarshalJSON(data []byte) error {
	type plain Event
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	p.Extra = extraFields(data, "token", "siteKey", "userAgent", "userIpAddress", "expectedAction")
	*e = Event(p)
	return nil
}

// RiskAnalysis carries the score-based judgment of an assessment.
type RiskAnalysis struct {
	Score     float64  `json:"score"`
	Challenge string   `json:"challenge"`
	Reasons   []string `json:"reasons"`

	Extra map[string]json.RawMessage `json:"-"`
}

func (r *RiskAnalysis) UnmarshalJSON(data []byte) error {
	type plain RiskAnalysis
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	p.Extra = extraFields(data, "score", "challenge", "reasons")
	*r = RiskAnalysis(p)
	return nil
}

// TokenProperties carries the validity judgment of an assessment.
// InvalidReason and Action are kept as raw strings: inbound parsing is
// lenient, so values outside the closed vocabularies never fail decoding.
type TokenProperties struct {
	Valid         bool   `json:"valid"`
	InvalidReason string `json:"invalidReason"`
	Action        string `json:"action"`

	Extra map[string]json.RawMessage `json:"-"`
}

func (t *TokenProperties) UnmarshalJSON(data []byte) error {
	type plain TokenProperties
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	p.Extra = extraFields(data, "valid", "invalidReason", "action")
	*t = TokenProperties(p)
	return nil
}

// Assessment is the assessments endpoint's judgment of a token.
type Assessment struct {
	Name            string          `json:"name"`
	Event           Event           `json:"event"`
	RiskAnalysis    RiskAnalysis    `json:"riskAnalysis"`
	TokenProperties TokenProperties `json:"tokenProperties"`

	Extra map[string]json.RawMessage `json:"-"`
}

// TokenError maps the assessment's token properties to a verification
// outcome: nil when the token is valid, otherwise an *InvalidTokenError
// carrying the parsed reason and the raw wire string.
func (a *Assessment) TokenError() error {
	if a.TokenProperties.Valid {
		return nil
	}
	if raw := a.TokenProperties.InvalidReason; raw != "" {
		reason, _ := ParseInvalidReason(raw)
		return &InvalidTokenError{Reason: reason, Raw: raw}
	}
	return &InvalidTokenError{}
}

// extraFields returns the object's members minus the named known keys, or
// nil when nothing beyond the schema arrived.
func extraFields(data []byte, known ...string) map[string]json.RawMessage {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	for _, k := range known {
		delete(raw, k)
	}
	if len(raw) == 0 {
		return nil
	}
	return raw
}
