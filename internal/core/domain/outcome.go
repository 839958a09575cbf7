package domain

import (
	"fmt"
	"net/http"
)

// OutcomeKind tags an upload attempt outcome.
type OutcomeKind int

// Outcome kinds.
const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeRetryable
	OutcomeTerminal
)

// String returns the string representation.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeRetryable:
		return "retryable"
	case OutcomeTerminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// Outcome is the result of one upload attempt, or of a whole retry loop.
type Outcome struct {
	Kind OutcomeKind

	// StatusCode is the HTTP status, zero when no response was received.
	StatusCode int

	// Body is the raw response body.
	Body []byte

	// Err is the transport or token error, if any.
	Err error
}

// Success builds a successful outcome.
func Success(status int, body []byte) Outcome {
	return Outcome{Kind: OutcomeSuccess, StatusCode: status, Body: body}
}

// Retryable builds a retryable failure.
func Retryable(status int, body []byte, err error) Outcome {
	return Outcome{Kind: OutcomeRetryable, StatusCode: status, Body: body, Err: err}
}

// Terminal builds a terminal failure.
func Terminal(status int, body []byte, err error) Outcome {
	return Outcome{Kind: OutcomeTerminal, StatusCode: status, Body: body, Err: err}
}

// Classify maps an HTTP status code to an outcome. Server errors and 429 are worth
// retrying; any other client error will not resolve itself.
func Classify(status int, body []byte) Outcome {
	switch {
	case status >= 200 && status <= 299:
		return Success(status, body)
	case status == http.StatusTooManyRequests, status >= 500 && status <= 599:
		return Retryable(status, body, nil)
	default:
		return Terminal(status, body, nil)
	}
}

// IsSuccess reports whether the upload succeeded.
func (o Outcome) IsSuccess() bool {
	return o.Kind == OutcomeSuccess
}

// Describe summarises a failed outcome for logs; it returns an empty string on success.
func (o Outcome) Describe() string {
	if o.Kind == OutcomeSuccess {
		return ""
	}
	if o.Err != nil {
		if o.StatusCode != 0 {
			return fmt.Sprintf("http %d: %v", o.StatusCode, o.Err)
		}
		return o.Err.Error()
	}
	return fmt.Sprintf("http %d", o.StatusCode)
}
