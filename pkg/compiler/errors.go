package compiler

import (
	"fmt"
	"net/http"
)

// Error types assigned by the client when the endpoint did not provide one.
const (
	TypeError           = "error"
	TypeInvalidResponse = "invalid_response"
)

// ServerError is a well-formed error payload ({type, message}) returned by
// the compile endpoint.
type ServerError struct {
	Type    string
	Message string
	Status  int
}

func (e *ServerError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("compiler: %s: %s", e.Type, e.Message)
}

// StatusCode mirrors the HTTPError contract used by the catalog component.
func (e *ServerError) StatusCode() int {
	if e == nil || e.Status <= 0 {
		return http.StatusInternalServerError
	}
	return e.Status
}

// NetworkError reports a compile request that failed before a usable
// response was received.
type NetworkError struct {
	URL    string
	Status int
	Err    error
}

func (e *NetworkError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Status > 0 {
		return fmt.Sprintf("compiler: %s: status %d: %v", e.URL, e.Status, e.Err)
	}
	return fmt.Sprintf("compiler: %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
