package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind 错误分类，handler 层据此映射 HTTP 状态码
type Kind string

const (
	KindNotFound             Kind = "NOT_FOUND"
	KindInvalidState         Kind = "INVALID_STATE"
	KindInsufficientBalance  Kind = "INSUFFICIENT_BALANCE"
	KindAuthorizationFailure Kind = "AUTHORIZATION_FAILURE"
	KindResolutionFailure    Kind = "RESOLUTION_FAILURE"
	KindChainExecution       Kind = "CHAIN_EXECUTION_FAILURE"
)

// Error carries a taxonomy kind plus a human-readable message.
type Error struct {
	Kind Kind   `json:"code"`
	Msg  string `json:"message"`
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.err }

// Is matches on the taxonomy kind so callers can use errors.Is with the
// sentinel constructors below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error {
	return newError(KindNotFound, format, args...)
}

func InvalidState(format string, args ...any) *Error {
	return newError(KindInvalidState, format, args...)
}

func InsufficientBalance(format string, args ...any) *Error {
	return newError(KindInsufficientBalance, format, args...)
}

func AuthorizationFailure(format string, args ...any) *Error {
	return newError(KindAuthorizationFailure, format, args...)
}

func ResolutionFailure(err error, format string, args ...any) *Error {
	e := newError(KindResolutionFailure, format, args...)
	e.err = err
	return e
}

func ChainExecution(err error, format string, args ...any) *Error {
	e := newError(KindChainExecution, format, args...)
	e.err = err
	return e
}

// Kind sentinels for errors.Is checks.
var (
	ErrNotFound             = &Error{Kind: KindNotFound}
	ErrInvalidState         = &Error{Kind: KindInvalidState}
	ErrInsufficientBalance  = &Error{Kind: KindInsufficientBalance}
	ErrAuthorizationFailure = &Error{Kind: KindAuthorizationFailure}
	ErrResolutionFailure    = &Error{Kind: KindResolutionFailure}
	ErrChainExecution       = &Error{Kind: KindChainExecution}
)

// HTTPStatus maps a taxonomy error to an HTTP status code.
func HTTPStatus(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidState, KindInsufficientBalance:
		return http.StatusBadRequest
	case KindAuthorizationFailure:
		return http.StatusForbidden
	case KindResolutionFailure, KindChainExecution:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
