package client

import (
	"errors"
	"fmt"
)

// ErrorCode represents the type of error that occurred.
type ErrorCode int

const (
	// ErrUnknown is an unknown error.
	ErrUnknown ErrorCode = iota
	// ErrRequest is returned when a request could not be built.
	ErrRequest
	// ErrTransport is returned for network failures: DNS, connection, TLS,
	// or a body that could not be read.
	ErrTransport
	// ErrDecode is returned when a response body is malformed YAML.
	ErrDecode
	// ErrStatus is returned for non-2xx responses, only when the client was
	// built with WithHTTPErrors(true).
	ErrStatus
)

func (c ErrorCode) String() string {
	switch c {
	case ErrRequest:
		return "request"
	case ErrTransport:
		return "transport"
	case ErrDecode:
		return "decode"
	case ErrStatus:
		return "status"
	default:
		return "unknown"
	}
}

// Error represents an error from a pb request.
type Error struct {
	Code    ErrorCode
	Message string
	// StatusCode and Metadata are set for ErrStatus.
	StatusCode int
	Metadata   Metadata
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ptpb: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("ptpb: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func hasCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsTransport returns true if the request never got a complete response.
func IsTransport(err error) bool {
	return hasCode(err, ErrTransport)
}

// IsDecode returns true if the response body was not valid YAML.
func IsDecode(err error) bool {
	return hasCode(err, ErrDecode)
}

// IsStatus returns true if the error reports a non-2xx status.
func IsStatus(err error) bool {
	return hasCode(err, ErrStatus)
}
