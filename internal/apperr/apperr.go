// Package apperr carries the error taxonomy shared by services and the
// HTTP layer. Services create these; handlers translate them to status
// codes exactly once. Anything that is not an *Error surfaces as a
// generic internal error so raw messages never reach clients.
package apperr

import "errors"

type Kind int

const (
	KindValidation Kind = iota
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindConflict
	KindInternal
)

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(msg string) *Error     { return &Error{Kind: KindValidation, Msg: msg} }
func Authentication(msg string) *Error { return &Error{Kind: KindAuthentication, Msg: msg} }
func Authorization(msg string) *Error  { return &Error{Kind: KindAuthorization, Msg: msg} }
func NotFound(msg string) *Error       { return &Error{Kind: KindNotFound, Msg: msg} }
func Conflict(msg string) *Error       { return &Error{Kind: KindConflict, Msg: msg} }

// Internal wraps an unexpected failure. The wrapped error is for logs;
// clients only ever see a generic message.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Msg: "internal server error", Err: err}
}

// KindOf extracts the taxonomy kind from an error chain. Errors that
// do not carry a kind are treated as internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
