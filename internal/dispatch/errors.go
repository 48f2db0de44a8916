package dispatch

import (
	"errors"
	"fmt"
)

// CredentialEnv is the environment variable holding the MentorPiece API key.
const CredentialEnv = "MENTORPIECE_API_KEY"

// ErrMissingCredential is returned in auth mode when no API key was supplied.
var ErrMissingCredential = errors.New(CredentialEnv + " is not set")

// ErrInvalidPayload is returned when a 2xx response body is not the expected JSON.
var ErrInvalidPayload = errors.New("invalid JSON response body")

// Display text for the sentinel errors.
const (
	MsgMissingCredential = "Error: " + CredentialEnv + " is not set in environment"
	MsgInvalidPayload    = "Invalid JSON response from MentorPiece API"
)

// networkPrefix starts every transport and status failure message.
const networkPrefix = "Network/HTTP error when calling LLM: "

// NetworkError wraps a transport-level failure (timeout, refused, DNS, reset).
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return networkPrefix + e.Err.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// StatusError reports a non-2xx response from the endpoint.
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%sHTTP %s", networkPrefix, e.Status)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Message renders a dispatch error as the string shown to the user.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingCredential):
		return MsgMissingCredential
	case errors.Is(err, ErrInvalidPayload):
		return MsgInvalidPayload
	}
	return err.Error()
}

// outcome labels an error for metrics and logs.
func outcome(err error) string {
	var netErr *NetworkError
	var statusErr *StatusError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrMissingCredential):
		return "missing_credential"
	case errors.As(err, &netErr):
		return "network_error"
	case errors.As(err, &statusErr):
		return "status_error"
	case errors.Is(err, ErrInvalidPayload):
		return "invalid_payload"
	}
	return "error"
}
