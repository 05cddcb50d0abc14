package connection

import (
	"fmt"

	"github.com/catchnotes/catchapi.go/pkg/constants"
)

// APIError is returned when the server answers with a non-2xx status, or when
// a delete call reports a status other than "ok".
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Status     string
	// Body is the raw response body.
	Body []byte
}

func (e *APIError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("%s %s: %s: %s", e.Method, e.Path, e.Status, e.Body)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

func (e *APIError) Unwrap() error {
	return constants.ErrAPI
}

// TransportError wraps a failure that prevented a response from being read.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() []error {
	return []error{constants.ErrTransport, e.Err}
}

// ParseError is returned when a response body is not what the caller expects.
type ParseError struct {
	What string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return "parse " + e.What
	}
	return fmt.Sprintf("parse %s: %v", e.What, e.Err)
}

func (e *ParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{constants.ErrParse}
	}
	return []error{constants.ErrParse, e.Err}
}

// LocalInputError is returned when a local file cannot be read for upload.
type LocalInputError struct {
	Path string
	Err  error
}

func (e *LocalInputError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *LocalInputError) Unwrap() []error {
	return []error{constants.ErrLocalInput, e.Err}
}
