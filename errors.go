package gradevue

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthenticationOrSession is returned by a detailed gradebook request when the
	// service gave back no gradebook. A detailed request always follows a successful
	// overview, so this means the credentials or session stopped working.
	ErrAuthenticationOrSession = errors.New("gradevue: no gradebook returned for detailed request")

	// ErrInvalidCredentials is returned by NewClient when the credential check
	// does not yield a gradebook.
	ErrInvalidCredentials = errors.New("gradevue: login error")

	// ErrUnexpectedResponse is returned when a response body is not shaped like a
	// ProcessWebServiceRequest gradebook result.
	ErrUnexpectedResponse = errors.New("gradevue: unexpected response")
)

// A MissingFieldError reports a record that lacks an attribute the mappers
// always read. It means the upstream document shape has changed.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("gradevue: missing field %q", e.Field)
}

// A MalformedScoreError reports a score string that matched a known format
// but whose numbers could not be parsed.
type MalformedScoreError struct {
	Raw string
	Err error
}

func (e *MalformedScoreError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("gradevue: malformed score %q", e.Raw)
	}

	return fmt.Sprintf("gradevue: malformed score %q: %v", e.Raw, e.Err)
}

func (e *MalformedScoreError) Unwrap() error {
	return e.Err
}

// A TransportError reports a failed request to the StudentVUE service: the
// request could not be sent, or the service answered with a non-2xx status.
type TransportError struct {
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gradevue: request failed: %v", e.Err)
	}

	return fmt.Sprintf("gradevue: unexpected status %d", e.StatusCode)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
