package domainerr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers that map it to a response.
type Kind string

const (
	KindValidation     Kind = "validation"
	KindBusiness       Kind = "business"
	KindNotFound       Kind = "not-found"
	KindInfrastructure Kind = "infrastructure"
)

// Error is the common shape of every domain error: a stable code, a human
// readable message and a kind.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Kind    Kind   `json:"type"`

	cause error
}

// New returns a domain error. Package level values created with New act as
// sentinels: errors.Is matches any *Error carrying the same code.
func New(kind Kind, code, message string) *Error {
	return &Error{Code: code, Message: message, Kind: kind}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Withf returns a copy of e with a formatted message.
func (e *Error) Withf(format string, args ...any) *Error {
	return &Error{Code: e.Code, Kind: e.Kind, Message: fmt.Sprintf(format, args...), cause: e.cause}
}

// Wrap returns a copy of e that carries cause.
func (e *Error) Wrap(cause error) *Error {
	return &Error{Code: e.Code, Kind: e.Kind, Message: e.Message, cause: cause}
}

// As extracts the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// KindOf reports the kind of err. Errors outside the taxonomy are
// infrastructure errors.
func KindOf(err error) Kind {
	if de, ok := As(err); ok {
		return de.Kind
	}
	return KindInfrastructure
}

// IsDomain reports whether err is a validation, business or not-found error.
func IsDomain(err error) bool {
	de, ok := As(err)
	return ok && de.Kind != KindInfrastructure
}
