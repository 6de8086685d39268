package mailing

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a submission attempt failed.
type ErrorKind int

const (
	// KindValidation means the input was rejected before any I/O happened.
	KindValidation ErrorKind = iota
	// KindRead means the selected file could not be read or encoded.
	KindRead
	// KindTransport means the request never got a 2xx answer.
	KindTransport
	// KindDomain means the gateway answered 2xx but reported a logical failure.
	KindDomain
)

// String returns a human-readable name for the kind
func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindRead:
		return "read"
	case KindTransport:
		return "transport"
	case KindDomain:
		return "domain"
	default:
		return "unknown"
	}
}

// Error is the single error type produced by the upload pipeline.
// Message is what the user sees; Err keeps the underlying cause for logs.
type Error struct {
	Kind    ErrorKind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, op, message string, err error) *Error {
	if message == "" {
		message = defaultMessages[kind]
	}
	return &Error{Kind: kind, Op: op, Message: message, Err: err}
}

var defaultMessages = map[ErrorKind]string{
	KindValidation: "invalid input",
	KindRead:       "could not read the selected file",
	KindTransport:  "could not reach the upload service",
	KindDomain:     "the upload service rejected the mailing",
}

// ValidationError builds a KindValidation error.
func ValidationError(op, message string) *Error {
	return newError(KindValidation, op, message, nil)
}

// ReadError builds a KindRead error wrapping the I/O cause.
func ReadError(op string, err error) *Error {
	return newError(KindRead, op, "", err)
}

// TransportError builds a KindTransport error. An empty message falls back to a generic one.
func TransportError(op, message string, err error) *Error {
	return newError(KindTransport, op, message, err)
}

// DomainError builds a KindDomain error. An empty message falls back to a generic one.
func DomainError(op, message string) *Error {
	return newError(KindDomain, op, message, nil)
}

// KindOf extracts the kind of a pipeline error anywhere in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// UserMessage returns the text shown to the operator for err. It is never empty.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return "unexpected error"
}
