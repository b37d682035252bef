package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failure so callers can decide whether to retry,
// surface it, or treat it as a programming fault. Classification is a
// type check here, never message sniffing.
type Kind int

const (
	KindInternal Kind = iota
	KindTransient
	KindValidation
	KindNotFound
	KindConstraint
)

func (k Kind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConstraint:
		return "constraint"
	default:
		return "internal"
	}
}

type Error struct {
	kind  Kind
	cause error
	msg   string
	trace []string
}

func New(trace, message string, err error) *Error {
	return &Error{
		kind:  KindInternal,
		cause: err,
		msg:   message,
		trace: []string{trace},
	}
}

func NewKind(kind Kind, trace, message string, err error) *Error {
	e := New(trace, message, err)
	e.kind = kind
	return e
}

func Transient(trace, message string, err error) *Error {
	return NewKind(KindTransient, trace, message, err)
}

func Validation(trace, message string, err error) *Error {
	return NewKind(KindValidation, trace, message, err)
}

func NotFound(trace, message string, err error) *Error {
	return NewKind(KindNotFound, trace, message, err)
}

func Constraint(trace, message string, err error) *Error {
	return NewKind(KindConstraint, trace, message, err)
}

// Trace appends a call-site marker to an existing *Error, or wraps a
// foreign error with one. The kind of a wrapped *Error is preserved.
func Trace(trace string, err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		e.trace = append(e.trace, trace)
		return e
	}
	return New(trace, err.Error(), err)
}

func (e *Error) Kind() Kind {
	return e.kind
}

func (e *Error) Message() string {
	if e.msg == "" && e.cause != nil {
		return e.cause.Error()
	}
	return e.msg
}

func (e *Error) Error() string {
	cause := ""
	if e.cause != nil {
		cause = e.cause.Error()
	}
	return fmt.Sprintf(`{"trace":"%s","kind":"%s","msg":"%s","error":"%s"}`,
		strings.Join(e.trace, "->"), e.kind, e.msg, cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

func kindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return KindInternal
}

func IsTransient(err error) bool {
	return kindOf(err) == KindTransient
}

func IsValidation(err error) bool {
	return kindOf(err) == KindValidation
}

func IsNotFound(err error) bool {
	return kindOf(err) == KindNotFound
}

func IsConstraint(err error) bool {
	return kindOf(err) == KindConstraint
}

// Retryable reports whether a failed storage operation is worth another
// attempt. Constraint violations, invalid input and missing rows would
// fail identically on retry, so only transient failures qualify.
func Retryable(err error) bool {
	return IsTransient(err)
}
