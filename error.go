package coursegrab

import (
	"errors"
	"fmt"
)

// Application error codes.
const (
	EINTERNAL = "internal"
	EINVALID  = "invalid"
	ENOTFOUND = "not_found"
)

// Crawl and archive condition codes.
const (
	ENAVTIMEOUT  = "navigation_timeout"
	ETABLOST     = "tab_lost"
	ENAVMISMATCH = "navigation_mismatch"
	EFETCHFAILED = "fetch_failed"
	ETOOLARGE    = "fetch_skipped_too_large"
	EARCHIVE     = "archive_write_failed"
	ENOCOURSES   = "no_courses_found"
	ENOACTIVETAB = "no_active_tab"
)

// Error represents an application-specific error. Its message is meant to be
// shown to the user on the status line.
type Error struct {
	Code    string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("coursegrab error: code=%s message=%s", e.Code, e.Message)
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error.".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}

// Errorf is a helper function to return an Error with a given code and formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}
