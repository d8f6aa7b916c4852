package promotions

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a promote-listing failure.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindInsufficientCredits
	KindPersistence
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindInsufficientCredits:
		return "insufficient_credits"
	case KindPersistence:
		return "persistence"
	}
	return "unknown"
}

// Error is the single error type returned by Service.Promote.
// Required and Available are only set for KindInsufficientCredits.
type Error struct {
	Kind      Kind
	Message   string
	Required  int
	Available int
	Err       error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Status is the HTTP status the promote-listing function answers with.
func (e *Error) Status() int {
	if e.Kind == KindUnauthorized {
		return http.StatusUnauthorized
	}
	return http.StatusBadRequest
}

func validationError(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func unauthorizedError(err error) *Error {
	return &Error{Kind: KindUnauthorized, Message: "Unauthorized", Err: err}
}

func forbiddenError() *Error {
	return &Error{Kind: KindForbidden, Message: "You can only promote your own listings"}
}

func notFoundError(what string, err error) *Error {
	return &Error{Kind: KindNotFound, Message: what + " not found", Err: err}
}

func insufficientCreditsError(required, available int) *Error {
	return &Error{
		Kind:      KindInsufficientCredits,
		Message:   fmt.Sprintf("Insufficient credits. Required: %d", required),
		Required:  required,
		Available: available,
	}
}

func persistenceError(msg string, err error) *Error {
	return &Error{Kind: KindPersistence, Message: msg, Err: err}
}

// KindOf returns the kind of a promotion error, or 0 for any other error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
