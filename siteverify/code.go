// Package siteverify verifies reCAPTCHA v2/v3 response tokens against Google's
// siteverify endpoint.
package siteverify

// Code is a reason code returned by siteverify when a token is rejected.
//
// The set of codes documented by Google is closed, but the service may add
// codes over time; a Code outside the known set is carried through verbatim
// rather than dropped, so Known reports false for it.
type Code string

const (
	CodeMissingInputSecret   Code = "missing-input-secret"
	CodeInvalidInputSecret   Code = "invalid-input-secret"
	CodeMissingInputResponse Code = "missing-input-response"
	CodeInvalidInputResponse Code = "invalid-input-response"
	CodeBadRequest           Code = "bad-request"
	CodeTimeoutOrDuplicate   Code = "timeout-or-duplicate"
)

// String returns the wire representation of the code.
func (c Code) String() string {
	return string(c)
}

// Known reports whether the code is one of the documented siteverify codes.
func (c Code) Known() bool {
	switch c {
	case CodeMissingInputSecret, CodeInvalidInputSecret,
		CodeMissingInputResponse, CodeInvalidInputResponse,
		CodeBadRequest, CodeTimeoutOrDuplicate:
		return true
	default:
		return false
	}
}

// AllCodes returns every documented siteverify reason code.
func AllCodes() []Code {
	return []Code{
		CodeMissingInputSecret,
		CodeInvalidInputSecret,
		CodeMissingInputResponse,
		CodeInvalidInputResponse,
		CodeBadRequest,
		CodeTimeoutOrDuplicate,
	}
}
