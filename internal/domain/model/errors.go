package model

import "fmt"

// RequestError describes any non-success outcome of a remote call.
// HTTPStatus is zero for transport failures (unreachable host, malformed body).
type RequestError struct {
	Message    string
	HTTPStatus int
	RawBody    any
	RequestID  string
	Err        error
}

func (e *RequestError) Error() string {
	if e.HTTPStatus != 0 {
		return fmt.Sprintf("request failed (%d): %s", e.HTTPStatus, e.Message)
	}
	return e.Message
}

// Unwrap returns the underlying transport error, if any.
func (e *RequestError) Unwrap() error {
	return e.Err
}

// IsTransport reports whether the request never produced an HTTP response
// that could be interpreted.
func (e *RequestError) IsTransport() bool {
	return e.HTTPStatus == 0
}

// ValidationError is user input rejected before any network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
