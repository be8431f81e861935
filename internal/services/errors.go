package services

import "errors"

// ErrorKind classifies business-rule failures so the transport can map them.
type ErrorKind int

const (
	KindNotFound ErrorKind = iota + 1
	KindInvalidState
	KindConflict
	KindValidation
	KindInvalidCredential
	KindUnauthenticated
)

// Error is a business-rule failure. Its message is safe to return to clients.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// KindOf returns the kind of a business-rule error wrapped anywhere in err,
// or 0 when err is not one.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
