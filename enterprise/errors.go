package enterprise

import "fmt"

// TransportError wraps a failure to complete the assessments round trip.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "recaptcha: assessment request failed: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// APIError is the structured error envelope the assessments endpoint
// returns when it rejects the request itself (bad API key, malformed
// request). It indicates an integration problem, not an invalid token.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("recaptcha: api error %d (%s): %s", e.Code, e.Status, e.Message)
}

// InvalidTokenError reports that the service judged the token invalid.
//
// Raw is the invalidReason wire string exactly as received, empty when the
// field was absent. Reason is the parsed closed-set value;
// InvalidReasonUnspecified when the wire string is unrecognized or missing,
// so no reason string is ever lost even when it cannot be interpreted.
type InvalidTokenError struct {
	Reason InvalidReason
	Raw    string
}

func (e *InvalidTokenError) Error() string {
	if e.Raw == "" {
		return "recaptcha: token invalid, no reason given"
	}
	return "recaptcha: token invalid: " + e.Raw
}

// UnparseableResponseError reports a body that matched neither the
// assessment schema nor the error envelope. Body is the response exactly as
// received; both candidate decode errors are kept for diagnosis.
type UnparseableResponseError struct {
	Body          []byte
	AssessmentErr error
	EnvelopeErr   error
}

func (e *UnparseableResponseError) Error() string {
	return fmt.Sprintf("recaptcha: unparseable assessment response (as assessment: %v; as error envelope: %v)",
		e.AssessmentErr, e.EnvelopeErr)
}
