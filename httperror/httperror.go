// Package httperror defines the closed set of domain errors that plugin
// handlers may return across the dispatch boundary, and the translation
// of those errors into HTTP responses.
//
// Only errors constructed by this package are rendered to the client.
// Anything else that a handler returns is treated as an internal bug and
// propagates to the hosting server as a fault.
package httperror

import (
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Error is a public, user-visible error with a fixed HTTP status. The
// rendered body is "{label}: {message}".
type Error struct {
	status    int
	label     string
	msg       string
	challenge string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.label, e.msg)
}

// Status returns the HTTP status code the error translates to.
func (e *Error) Status() int {
	return e.status
}

// InvalidArgument signals a malformed or unprocessable request argument.
func InvalidArgument(msg string) *Error {
	return &Error{status: http.StatusBadRequest, label: "Invalid argument", msg: msg}
}

// NotFound signals that the requested resource does not exist.
func NotFound(msg string) *Error {
	return &Error{status: http.StatusNotFound, label: "Not found", msg: msg}
}

// Unauthenticated signals a missing or invalid credential. The challenge
// is sent in the WWW-Authenticate header of the response.
func Unauthenticated(msg, challenge string) *Error {
	return &Error{
		status:    http.StatusUnauthorized,
		label:     "Unauthenticated",
		msg:       msg,
		challenge: challenge,
	}
}

// PermissionDenied signals that the caller is known but not allowed to
// perform the operation.
func PermissionDenied(msg string) *Error {
	return &Error{status: http.StatusForbidden, label: "Permission denied", msg: msg}
}

// Translate wraps a fallible handler into an http.Handler. A nil return
// passes through untouched. A domain error from this package is rendered
// as a plain text response with its status code. Every other error is a
// bug in the handler and panics, so that the hosting server surfaces it
// as a fault instead of masking it behind a generic error page.
func Translate(h func(http.ResponseWriter, *http.Request) error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := h(w, r)
		if err == nil {
			return
		}

		var perr *Error
		if !errors.As(err, &perr) {
			panic(err)
		}

		if perr.challenge != "" {
			w.Header().Set("WWW-Authenticate", perr.challenge)
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.WriteHeader(perr.status)
		io.WriteString(w, perr.Error())
	})
}
