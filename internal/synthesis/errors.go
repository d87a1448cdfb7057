package synthesis

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorKind string

const (
	KindAuth          ErrorKind = "auth"
	KindQuota         ErrorKind = "quota_exceeded"
	KindPermission    ErrorKind = "permission"
	KindValidation    ErrorKind = "validation"
	KindRateLimited   ErrorKind = "rate_limited"
	KindService       ErrorKind = "service"
	KindTimeout       ErrorKind = "timeout"
	KindEmptyResponse ErrorKind = "empty_response"
)

type Error struct {
	Kind    ErrorKind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Status != 0:
		return fmt.Sprintf("synthesis %s (status %d): %s", e.Kind, e.Status, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("synthesis %s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("synthesis %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of a synthesis error, or KindService for anything
// that is not a *Error.
func KindOf(err error) ErrorKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindService
}

// Classify maps an HTTP status to an error kind. Vendors disagree on what 403
// means, so the caller supplies the kind to use for it.
func Classify(status int, forbidden ErrorKind) ErrorKind {
	switch status {
	case http.StatusUnauthorized:
		return KindAuth
	case http.StatusPaymentRequired:
		return KindQuota
	case http.StatusForbidden:
		return forbidden
	case http.StatusUnprocessableEntity:
		return KindValidation
	case http.StatusTooManyRequests:
		return KindRateLimited
	}
	return KindService
}

func NewStatusError(status int, message string, forbidden ErrorKind) *Error {
	return &Error{Kind: Classify(status, forbidden), Status: status, Message: message}
}

func NewAuthError(message string) *Error {
	return &Error{Kind: KindAuth, Message: message}
}
