package enterprise

import (
	"encoding/json"
	"fmt"
)

// Decode classifies a raw assessments endpoint body. Candidate schemas are
// tried in order: first the assessment shape, then the error envelope. A
// body matching neither is never coerced into either; it comes back as an
// *UnparseableResponseError carrying the body and both decode failures.
func Decode(body []byte) (*Assessment, error) {
	assessment, assessmentErr := decodeAssessment(body)
	if assessmentErr == nil {
		return assessment, nil
	}
	apiErr, envelopeErr := decodeErrorEnvelope(body)
	if envelopeErr == nil {
		return nil, apiErr
	}
	return nil, &UnparseableResponseError{
		Body:          append([]byte(nil), body...),
		AssessmentErr: assessmentErr,
		EnvelopeErr:   envelopeErr,
	}
}

// decodeAssessment requires every top-level field of the assessment schema
// to be present. Without that check an error envelope would "decode" into a
// zero-valued assessment and be misread as a verdict.
func decodeAssessment(body []byte) (*Assessment, error) {
	var raw struct {
		Name            *string         `json:"name"`
		Event           *Event          `json:"event"`
		RiskAnalysis    *RiskAnalysis   `json:"riskAnalysis"`
		TokenProperties json.RawMessage `json:"tokenProperties"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	switch {
	case raw.Name == nil:
		return nil, fmt.Errorf("missing field %q", "name")
	case raw.Event == nil:
		return nil, fmt.Errorf("missing field %q", "event")
	case raw.RiskAnalysis == nil:
		return nil, fmt.Errorf("missing field %q", "riskAnalysis")
	case raw.TokenProperties == nil:
		return nil, fmt.Errorf("missing field %q", "tokenProperties")
	}

	// The validity flag must actually be on the wire. Without this check an
	// empty tokenProperties object would turn into a rejection verdict.
	var probe struct {
		Valid *bool `json:"valid"`
	}
	if err := json.Unmarshal(raw.TokenProperties, &probe); err != nil {
		return nil, err
	}
	if probe.Valid == nil {
		return nil, fmt.Errorf("missing field %q", "tokenProperties.valid")
	}
	var props TokenProperties
	if err := json.Unmarshal(raw.TokenProperties, &props); err != nil {
		return nil, err
	}

	return &Assessment{
		Name:            *raw.Name,
		Event:           *raw.Event,
		RiskAnalysis:    *raw.RiskAnalysis,
		TokenProperties: props,
		Extra:           extraFields(body, "name", "event", "riskAnalysis", "tokenProperties"),
	}, nil
}

// decodeErrorEnvelope requires every field of the error object. An envelope
// missing them matches neither schema and must surface as unparseable, not
// as a zero-valued protocol error.
func decodeErrorEnvelope(body []byte) (*APIError, error) {
	var raw struct {
		Error *struct {
			Code    *int    `json:"code"`
			Message *string `json:"message"`
			Status  *string `json:"status"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	switch {
	case raw.Error == nil:
		return nil, fmt.Errorf("missing field %q", "error")
	case raw.Error.Code == nil:
		return nil, fmt.Errorf("missing field %q", "error.code")
	case raw.Error.Message == nil:
		return nil, fmt.Errorf("missing field %q", "error.message")
	case raw.Error.Status == nil:
		return nil, fmt.Errorf("missing field %q", "error.status")
	}
	return &APIError{
		Code:    *raw.Error.Code,
		Message: *raw.Error.Message,
		Status:  *raw.Error.Status,
	}, nil
}
