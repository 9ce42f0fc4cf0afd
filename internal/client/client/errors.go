package client

import (
	"errors"
	"fmt"
)

// Kind classifies a failed request.
type Kind int

const (
	KindUnauthorized Kind = iota + 1
	KindInvalidCredentials
	KindInvalidInput
	KindForbidden
	KindNotFound
	KindConflict
	KindServerError
	KindUnknownStatus
	KindUnreachable
	KindClientError
)

var kindNames = map[Kind]string{
	KindUnauthorized:       "unauthorized",
	KindInvalidCredentials: "invalid_credentials",
	KindInvalidInput:       "invalid_input",
	KindForbidden:          "forbidden",
	KindNotFound:           "not_found",
	KindConflict:           "conflict",
	KindServerError:        "server_error",
	KindUnknownStatus:      "unknown_status",
	KindUnreachable:        "unreachable",
	KindClientError:        "client_error",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInput       = errors.New("invalid input")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrServerError        = errors.New("server error")
	ErrUnknownStatus      = errors.New("unexpected status")
	ErrUnreachable        = errors.New("server unreachable")
	ErrClientError        = errors.New("client error")

	// ErrLocalDataNotAvailable is returned when an offline fallback has
	// nothing stored to fall back to.
	ErrLocalDataNotAvailable = errors.New("local data unavailable")
)

var sentinels = map[Kind]error{
	KindUnauthorized:       ErrUnauthorized,
	KindInvalidCredentials: ErrInvalidCredentials,
	KindInvalidInput:       ErrInvalidInput,
	KindForbidden:          ErrForbidden,
	KindNotFound:           ErrNotFound,
	KindConflict:           ErrConflict,
	KindServerError:        ErrServerError,
	KindUnknownStatus:      ErrUnknownStatus,
	KindUnreachable:        ErrUnreachable,
	KindClientError:        ErrClientError,
}

// Error is a classified request failure.
type Error struct {
	Kind    Kind
	Status  int    // HTTP status, zero when no response was received
	Detail  string // server-provided detail, if any
	Message string // user-facing text
	Method  string
	Path    string
	Err     error // underlying transport or local cause
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e's Kind.
func (e *Error) Is(target error) bool {
	s, ok := sentinels[e.Kind]
	return ok && s == target
}

// KindOf returns the Kind of the first *Error in err's chain, or zero.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// Message returns the user-facing text for err: the classified message when
// err carries an *Error, err.Error() otherwise.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

const (
	msgUnauthorized       = "Your session has expired. Please log in again."
	msgInvalidCredentials = "Invalid email or password."
	msgInvalidInput       = "Invalid input. Please check your details."
	msgForbidden          = "You do not have permission to perform this action."
	msgNotFound           = "The requested resource was not found."
	msgConflict           = "An account with these details already exists."
	msgServerError        = "Server error. Please try again later."
	msgUnreachable        = "Cannot connect to the server. Please check your internet connection."
)

// classifyStatus maps a received non-2xx response to an Error. public tells
// whether the path was one of the public auth endpoints.
func classifyStatus(status int, detail string, public bool) *Error {
	e := &Error{Status: status, Detail: detail}
	switch {
	case status == 401 && public:
		e.Kind, e.Message = KindInvalidCredentials, orDefault(detail, msgInvalidCredentials)
	case status == 401:
		e.Kind, e.Message = KindUnauthorized, msgUnauthorized
	case status == 400:
		e.Kind, e.Message = KindInvalidInput, orDefault(detail, msgInvalidInput)
	case status == 403:
		e.Kind, e.Message = KindForbidden, msgForbidden
	case status == 404:
		e.Kind, e.Message = KindNotFound, msgNotFound
	case status == 409:
		e.Kind, e.Message = KindConflict, orDefault(detail, msgConflict)
	case status == 500:
		e.Kind, e.Message = KindServerError, msgServerError
	default:
		e.Kind, e.Message = KindUnknownStatus, orDefault(detail, fmt.Sprintf("Request failed with status %d", status))
	}
	return e
}

func unreachable(err error) *Error {
	return &Error{Kind: KindUnreachable, Message: msgUnreachable, Err: err}
}

func clientError(err error) *Error {
	return &Error{Kind: KindClientError, Message: err.Error(), Err: err}
}

// NewClientError classifies a local failure detected by a caller before any
// request was made, such as a rejected upload or an empty form.
func NewClientError(err error) *Error {
	return clientError(err)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
