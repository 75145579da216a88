package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures raised by the estimation engine.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindInvalidInput
	KindInvalidArgument
	KindMissingData
	KindUpstreamFetch
	KindDomain
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindMissingData:
		return "missing_data"
	case KindUpstreamFetch:
		return "upstream_fetch"
	case KindDomain:
		return "domain"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is checks. They match any *Error of the same kind.
var (
	ErrInvalidInput    = &Error{Kind: KindInvalidInput}
	ErrInvalidArgument = &Error{Kind: KindInvalidArgument}
	ErrMissingData     = &Error{Kind: KindMissingData}
	ErrUpstreamFetch   = &Error{Kind: KindUpstreamFetch}
	ErrDomain          = &Error{Kind: KindDomain}
)

// Error is the single error type of the domain layer.
type Error struct {
	Kind ErrorKind
	Op   string // operation that failed, e.g. "historical_volatility"
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	var msg string
	switch {
	case e.Msg != "" && e.Err != nil:
		msg = e.Msg + ": " + e.Err.Error()
	case e.Msg != "":
		msg = e.Msg
	case e.Err != nil:
		msg = e.Err.Error()
	default:
		msg = e.Kind.String()
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is a sentinel of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Op == "" && t.Msg == "" && t.Err == nil
}

func newError(kind ErrorKind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func InvalidInput(op, format string, args ...any) *Error {
	return newError(KindInvalidInput, op, format, args...)
}

func InvalidArgument(op, format string, args ...any) *Error {
	return newError(KindInvalidArgument, op, format, args...)
}

func MissingData(op, format string, args ...any) *Error {
	return newError(KindMissingData, op, format, args...)
}

func DomainError(format string, args ...any) *Error {
	return newError(KindDomain, "", format, args...)
}

// UpstreamFetch wraps a fetch failure. The message is surfaced to users as is.
func UpstreamFetch(msg string, err error) *Error {
	return &Error{Kind: KindUpstreamFetch, Msg: msg, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
