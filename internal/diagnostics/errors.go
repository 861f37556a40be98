// Package diagnostics defines the coded errors reported by typeprobe.
//
// Every fatal condition of a query run carries an ErrorCode so callers can
// tell a bad query apart from a broken type universe with errors.Is.
package diagnostics

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	// Query errors
	ErrQ001 ErrorCode = "Q001" // name resolution: parent, target or param type unknown
	ErrQ002 ErrorCode = "Q002" // invalid command, element type or find type token
	ErrQ003 ErrorCode = "Q003" // malformed query: missing positional argument
	ErrQ004 ErrorCode = "Q004" // group read where a single token was expected

	// Environment errors
	ErrC001 ErrorCode = "C001" // catalog could not be loaded
	ErrC002 ErrorCode = "C002" // invalid configuration
	ErrC003 ErrorCode = "C003" // result output failed
)

var errorMessages = map[ErrorCode]string{
	ErrQ001: "invalid %s class: %s",
	ErrQ002: "invalid %s token: %s",
	ErrQ003: "malformed query: %s",
	ErrQ004: "expected a single token but found group %s",
	ErrC001: "loading %s catalog: %s",
	ErrC002: "%s",
	ErrC003: "writing results: %s",
}

// Kind returns a short human name for the code.
func (c ErrorCode) Kind() string {
	switch c {
	case ErrQ001:
		return "NameResolution"
	case ErrQ002:
		return "InvalidCommandToken"
	case ErrQ003:
		return "MalformedQuery"
	case ErrQ004:
		return "TypeMismatch"
	case ErrC001:
		return "CatalogLoad"
	case ErrC002:
		return "Config"
	case ErrC003:
		return "Output"
	}
	return "Unknown"
}

// DiagnosticError is a fatal, coded failure of a query run.
type DiagnosticError struct {
	Code ErrorCode
	// Subject is the offending identifier or token, if any.
	Subject string
	Message string
	// Cause is the underlying error for environment failures.
	Cause error
}

// NewError formats the message template registered for code with args.
func NewError(code ErrorCode, subject string, args ...interface{}) *DiagnosticError {
	msg, ok := errorMessages[code]
	if !ok {
		msg = "unknown error"
	}
	return &DiagnosticError{
		Code:    code,
		Subject: subject,
		Message: fmt.Sprintf(msg, args...),
	}
}

// Wrap is NewError with an underlying cause attached.
func Wrap(code ErrorCode, subject string, cause error, args ...interface{}) *DiagnosticError {
	e := NewError(code, subject, args...)
	e.Cause = cause
	return e
}

func (e *DiagnosticError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *DiagnosticError) Unwrap() error {
	return e.Cause
}

// Is matches another DiagnosticError by code, so a bare
// &DiagnosticError{Code: ErrQ001} works as a sentinel.
func (e *DiagnosticError) Is(target error) bool {
	var other *DiagnosticError
	if !errors.As(target, &other) {
		return false
	}
	return other.Code == e.Code
}

// CodeOf extracts the diagnostic code from err, or "" if err carries none.
func CodeOf(err error) ErrorCode {
	var d *DiagnosticError
	if errors.As(err, &d) {
		return d.Code
	}
	return ""
}

// HasCode reports whether err is a DiagnosticError with the given code.
func HasCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
