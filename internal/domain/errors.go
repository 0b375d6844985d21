package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrBadRequest   = errors.New("bad request")
)

// Construction failures of a store connection.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEndpoint    = errors.New("invalid endpoint")
	ErrDatabaseNotFound   = errors.New("invalid database name")
	ErrContainerNotFound  = errors.New("invalid container name")
)

// ConnectErrorKind enumerates why a store connection could not be established.
type ConnectErrorKind int

const (
	KindUnknown ConnectErrorKind = iota
	KindInvalidCredentials
	KindInvalidEndpoint
	KindDatabaseNotFound
	KindContainerNotFound
)

func (k ConnectErrorKind) String() string {
	switch k {
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindInvalidEndpoint:
		return "invalid_endpoint"
	case KindDatabaseNotFound:
		return "database_not_found"
	case KindContainerNotFound:
		return "container_not_found"
	default:
		return "unknown"
	}
}

func (k ConnectErrorKind) sentinel() error {
	switch k {
	case KindInvalidCredentials:
		return ErrInvalidCredentials
	case KindInvalidEndpoint:
		return ErrInvalidEndpoint
	case KindDatabaseNotFound:
		return ErrDatabaseNotFound
	case KindContainerNotFound:
		return ErrContainerNotFound
	default:
		return nil
	}
}

// ConnectError is returned by store constructors. errors.Is matches the
// sentinel of its Kind; the cause stays reachable through Unwrap.
type ConnectError struct {
	Kind ConnectErrorKind
	Op   string
	Err  error
}

func NewConnectError(kind ConnectErrorKind, op string, err error) *ConnectError {
	return &ConnectError{Kind: kind, Op: op, Err: err}
}

func (e *ConnectError) Error() string {
	msg := e.Kind.String()
	if s := e.Kind.sentinel(); s != nil {
		msg = s.Error()
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ConnectError) Unwrap() error { return e.Err }

func (e *ConnectError) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// KindOf reports the ConnectErrorKind carried by err, or KindUnknown.
func KindOf(err error) ConnectErrorKind {
	var ce *ConnectError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindUnknown
}
