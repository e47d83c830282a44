package errorx

import (
	"errors"
	"fmt"
	"net/http"
)

type Code int

const (
	Internal Code = iota
	BadRequest
	Conflict
	NotFound
	Upstream
	Unauthenticated
	Forbidden
	TooManyRequests
)

type Error struct {
	Code    Code
	Message string
}

func New(code Code, format string, a ...any) Error {
	return Error{Code: code, Message: fmt.Sprintf(format, a...)}
}

func (e Error) Error() string {
	return e.Message
}

// CodeOf returns Internal for errors that are not an Error.
func CodeOf(err error) Code {
	var errx Error
	if errors.As(err, &errx) {
		return errx.Code
	}
	return Internal
}

func StatusOf(err error) int {
	switch CodeOf(err) {
	case BadRequest, Conflict, Upstream:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Unauthenticated:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case TooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
