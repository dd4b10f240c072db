package services

import "errors"

type ErrorKind string

const (
	KindInvalid  ErrorKind = "invalid"
	KindNotFound ErrorKind = "not_found"
)

// Error carries a client-safe message. Anything that is not an *Error is
// treated as an internal failure by the HTTP layer.
type Error struct {
	Kind ErrorKind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func NewInvalidError(msg string) error { return &Error{Kind: KindInvalid, Msg: msg} }

func NewNotFoundError(msg string) error { return &Error{Kind: KindNotFound, Msg: msg} }

func IsInvalid(err error) bool { return kindOf(err) == KindInvalid }

func IsNotFound(err error) bool { return kindOf(err) == KindNotFound }

func kindOf(err error) ErrorKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}
