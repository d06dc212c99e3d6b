package services

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a service failure. Endpoints map kinds to HTTP statuses in
// exactly one place; downstream logic only decides the kind.
type Kind int

const (
	KindInvalidRequest Kind = iota
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindUpstream
	KindInternal
)

type ServiceError struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *ServiceError) Unwrap() error { return e.Err }

func ErrInvalid(msg string) error {
	return &ServiceError{Kind: KindInvalidRequest, Msg: msg}
}

func ErrUnauthenticated(msg string) error {
	return &ServiceError{Kind: KindUnauthenticated, Msg: msg}
}

func ErrForbidden(msg string) error {
	return &ServiceError{Kind: KindForbidden, Msg: msg}
}

func ErrNotFound(msg string) error {
	return &ServiceError{Kind: KindNotFound, Msg: msg}
}

func ErrUpstream(msg string, err error) error {
	return &ServiceError{Kind: KindUpstream, Msg: msg, Err: err}
}

func ErrInternal(err error) error {
	return &ServiceError{Kind: KindInternal, Msg: "internal error", Err: err}
}

// HTTPStatus maps a service error to its response status. Unknown errors are
// treated as internal.
func HTTPStatus(err error) int {
	var se *ServiceError
	if !errors.As(err, &se) {
		return http.StatusInternalServerError
	}
	switch se.Kind {
	case KindInvalidRequest:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the short error string exposed to clients. Internal and
// upstream details stay in server logs.
func PublicMessage(err error) string {
	var se *ServiceError
	if !errors.As(err, &se) {
		return "internal error"
	}
	return se.Msg
}
