package apperror

import (
	"errors"
	"fmt"
)

// Kind is a semantic error category. Kinds are comparable sentinels and match
// through errors.Is on any *Error that carries them.
type Kind interface {
	error
	isKind()
}

type kind struct{ s string }

func (k kind) Error() string { return k.s }
func (k kind) isKind()       {}

// NewKind creates a new semantic error kind.
func NewKind(name string) Kind { return kind{s: name} }

var (
	// ErrNotFound means a referenced user, entity or community does not exist.
	ErrNotFound = NewKind("NOT_FOUND")
	// ErrValidation means a required field is missing or malformed.
	ErrValidation = NewKind("VALIDATION")
	// ErrStorage means the persistence collaborator failed.
	ErrStorage = NewKind("STORAGE")
	// ErrUnauthorized means missing or invalid credentials.
	ErrUnauthorized = NewKind("UNAUTHORIZED")
	// ErrForbidden means the caller may not act on the resource.
	ErrForbidden = NewKind("FORBIDDEN")
	// ErrConflict means the resource already exists or is busy.
	ErrConflict = NewKind("CONFLICT")
)

// Error carries a kind, an optional cause, a message and optional per-field
// details (used for validation failures).
type Error struct {
	kind    Kind
	err     error
	msg     string
	details map[string]string
}

// New builds an error of kind k with a formatted message.
func New(k Kind, msgFmt string, args ...any) *Error {
	return &Error{kind: k, msg: fmt.Sprintf(msgFmt, args...)}
}

// Wrap builds an error of kind k around cause err.
func Wrap(k Kind, err error, msgFmt string, args ...any) *Error {
	return &Error{kind: k, err: err, msg: fmt.Sprintf(msgFmt, args...)}
}

// Validation builds a validation error with field details.
func Validation(msg string, details map[string]string) *Error {
	return &Error{kind: ErrValidation, msg: msg, details: details}
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.msg != "" && e.err != nil:
		return e.msg + ": " + e.err.Error()
	case e.msg != "":
		return e.msg
	case e.err != nil:
		return e.err.Error()
	case e.kind != nil:
		return e.kind.Error()
	default:
		return "unknown error"
	}
}

func (e *Error) Unwrap() error { return e.err }

// Is matches either the kind sentinel or the wrapped cause.
func (e *Error) Is(target error) bool {
	if e == nil || target == nil {
		return e == nil && target == nil
	}
	if e.kind != nil && errors.Is(e.kind, target) {
		return true
	}
	return e.err != nil && errors.Is(e.err, target)
}

// Kind returns the semantic kind of e.
func (e *Error) Kind() Kind { return e.kind }

// Message returns the message without the cause.
func (e *Error) Message() string { return e.msg }

// Details returns per-field details, if any.
func (e *Error) Details() map[string]string { return e.details }

// KindOf returns the semantic kind anywhere in err's chain, or nil.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.kind
	}
	return nil
}
