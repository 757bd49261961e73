package siteverify

// TransportError wraps a failure to complete the siteverify round trip
// (network, DNS, TLS, timeout, cancelled context).
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "recaptcha: siteverify request failed: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// InvalidError reports that siteverify rejected the token.
//
// Code holds the first reason code from the response. It is empty when the
// service gave no reason: a missing or empty error-codes list, or a body
// that could not be decoded at all.
type InvalidError struct {
	Code Code
}

func (e *InvalidError) Error() string {
	if e.Code == "" {
		return "recaptcha: token rejected, no reason given"
	}
	return "recaptcha: token rejected: " + string(e.Code)
}
