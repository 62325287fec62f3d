package outcome

import (
	"strconv"
	"strings"
)

// Code identifies a failure within the closed error taxonomy. Adapters may
// declare additional codes next to their mapping code.
type Code string

// Transport failures. Retrying the whole operation may succeed; nothing in the
// engine retries them automatically.
const (
	CodeConnectionTimeout Code = "connection_timeout"
	CodeConnectionRefused Code = "connection_refused"
	CodeNetworkFailure    Code = "network_failure"
	CodeCircuitOpen       Code = "circuit_open"
	CodeRateLimited       Code = "rate_limited"
)

// Protocol failures signal schema drift on the supplier side.
const (
	CodeUnrecognisedResponse Code = "unrecognised_response"
	CodeMalformedResponse    Code = "malformed_response"
)

// Domain outcomes are expected business answers rather than system failures.
const (
	CodeNotAvailable      Code = "not_available"
	CodeCheckInTooNear    Code = "check_in_too_near"
	CodeCheckInTooFar     Code = "check_in_too_far"
	CodeStayTooShort      Code = "stay_too_short"
	CodeInvalidParameters Code = "invalid_parameters"
	CodeUnknownSupplier   Code = "unknown_supplier"
	CodeNotSupported      Code = "not_supported"
)

// CodeUnexpectedError marks a failure that escaped any specific classification.
const CodeUnexpectedError Code = "unexpected_error"

// HTTPStatus returns the code used for an unexpected HTTP status from a supplier,
// e.g. "http_status_503".
func HTTPStatus(status int) Code {
	return Code("http_status_" + strconv.Itoa(status))
}

// Retryable reports whether re-invoking the operation may succeed.
func (c Code) Retryable() bool {
	switch c {
	case CodeConnectionTimeout, CodeConnectionRefused, CodeNetworkFailure, CodeCircuitOpen, CodeRateLimited:
		return true
	}
	return strings.HasPrefix(string(c), "http_status_5")
}
