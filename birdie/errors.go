package birdie

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies the class of a failed gateway call.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindAuth
	KindForbidden
	KindNotFound
	KindClient
	KindServer
	KindConnection
	KindUnsupportedVersion
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindAuth:
		return "AuthError"
	case KindForbidden:
		return "Forbidden"
	case KindNotFound:
		return "NotFound"
	case KindClient:
		return "ClientError"
	case KindServer:
		return "ServerError"
	case KindConnection:
		return "ConnectionError"
	case KindUnsupportedVersion:
		return "UnsupportedVersion"
	default:
		return "UnknownError"
	}
}

// Retryable reports whether calls failing with this kind are retried within
// the session's retry budget.
func (k Kind) Retryable() bool {
	return k == KindValidation || k == KindServer || k == KindConnection
}

// Sentinel errors, one per Kind. Use errors.Is(err, birdie.ErrNotFound) to check.
var (
	ErrValidation         = &Error{Kind: KindValidation}
	ErrAuth               = &Error{Kind: KindAuth}
	ErrForbidden          = &Error{Kind: KindForbidden}
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrClient             = &Error{Kind: KindClient}
	ErrServer             = &Error{Kind: KindServer}
	ErrConnection         = &Error{Kind: KindConnection}
	ErrUnsupportedVersion = &Error{Kind: KindUnsupportedVersion}
)

// Error is a classified gateway failure.
type Error struct {
	Kind       Kind
	StatusCode int    // Zero for transport and client-side failures.
	Message    string
	Details    any // Optional server-provided details.
	Body       any // Decoded response body, if any.
	Err        error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = genericMessage(e.StatusCode)
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("birdie gateway %d (%s): %s", e.StatusCode, e.Kind, msg)
	}
	if e.Err != nil && e.Message == "" {
		return fmt.Sprintf("birdie gateway (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("birdie gateway (%s): %s", e.Kind, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error of the same Kind, which makes the package
// sentinels usable with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Classify maps a failed response status and its decoded body to an *Error.
// It has no side effects.
func Classify(status int, body any) *Error {
	e := &Error{StatusCode: status, Body: body}
	switch {
	case status == http.StatusBadRequest:
		e.Kind = KindValidation
	case status == http.StatusUnauthorized:
		e.Kind = KindAuth
	case status == http.StatusForbidden:
		e.Kind = KindForbidden
	case status == http.StatusNotFound:
		e.Kind = KindNotFound
	case status >= 500:
		e.Kind = KindServer
	default:
		e.Kind = KindClient
	}
	e.Message, e.Details = parseFault(body)
	if e.Message == "" {
		e.Message = genericMessage(status)
	}
	return e
}

func genericMessage(status int) string {
	if t := http.StatusText(status); t != "" {
		return t
	}
	return "Unknown error"
}
