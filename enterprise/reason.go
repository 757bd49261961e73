package enterprise

// InvalidReason is the assessment endpoint's explanation for judging a
// token invalid. The zero value means the service named no recognized
// reason; InvalidTokenError.Raw keeps whatever string actually arrived.
type InvalidReason string

const (
	InvalidReasonUnspecified             InvalidReason = ""
	InvalidReasonAutomation              InvalidReason = "AUTOMATION"
	InvalidReasonUnexpectedEnvironment   InvalidReason = "UNEXPECTED_ENVIRONMENT"
	InvalidReasonTooMuchTraffic          InvalidReason = "TOO_MUCH_TRAFFIC"
	InvalidReasonUnexpectedUsagePatterns InvalidReason = "UNEXPECTED_USAGE_PATTERNS"
	InvalidReasonLowConfidenceScore      InvalidReason = "LOW_CONFIDENCE_SCORE"
	InvalidReasonMalformed               InvalidReason = "MALFORMED"
)

// String returns the wire representation of the reason.
func (r InvalidReason) String() string {
	return string(r)
}

// Known reports whether the reason is one of the documented reasons.
func (r InvalidReason) Known() bool {
	switch r {
	case InvalidReasonAutomation, InvalidReasonUnexpectedEnvironment,
		InvalidReasonTooMuchTraffic, InvalidReasonUnexpectedUsagePatterns,
		InvalidReasonLowConfidenceScore, InvalidReasonMalformed:
		return true
	default:
		return false
	}
}

// ParseInvalidReason parses a wire string into an InvalidReason. The second
// return is false for unrecognized strings, which map to
// InvalidReasonUnspecified.
func ParseInvalidReason(s string) (InvalidReason, bool) {
	r := InvalidReason(s)
	if !r.Known() {
		return InvalidReasonUnspecified, false
	}
	return r, true
}

// AllInvalidReasons returns every documented invalid reason.
func AllInvalidReasons() []InvalidReason {
	return []InvalidReason{
		InvalidReasonAutomation,
		InvalidReasonUnexpectedEnvironment,
		InvalidReasonTooMuchTraffic,
		InvalidReasonUnexpectedUsagePatterns,
		InvalidReasonLowConfidenceScore,
		InvalidReasonMalformed,
	}
}
