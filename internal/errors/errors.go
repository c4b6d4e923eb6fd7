// Package errors provides standardized domain errors with codes for the
// chaptersplit pipeline.
//
// Usage:
//
//	// In components - return typed errors
//	if err := cutter.Cut(...); err != nil {
//	    return errors.Wrap(err, errors.CodeSegmentWrite, "cut chapter 3")
//	}
//
//	// In the pipeline - check with errors.Is
//	if errors.Is(err, errors.ErrCacheInvalid) {
//	    // treat the cache as absent, fall through to the next source
//	}
package errors

import (
	"errors"
	"fmt"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
	New    = errors.New
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the pipeline.
const (
	// CodeNotFound marks an absent input, model, or sidecar.
	CodeNotFound Code = "NOT_FOUND"
	// CodeCacheInvalid marks a malformed or unreadable chapter cache; the
	// caller treats it as absent and tries the next source.
	CodeCacheInvalid Code = "CACHE_INVALID"
	// CodeTranscription marks a failed transcription window. Fatal for the
	// current file only; the source stays untouched for retry.
	CodeTranscription Code = "TRANSCRIPTION_FAILED"
	// CodeSegmentWrite marks a failed chapter cut. Remaining chapters are
	// abandoned and archiving is skipped; already-written chapters stay.
	CodeSegmentWrite Code = "SEGMENT_WRITE_FAILED"
	// CodeValidation marks invalid configuration or invariant-violating data.
	CodeValidation Code = "VALIDATION"
	// CodeInternal marks everything else.
	CodeInternal Code = "INTERNAL"
)

// Error is a domain error with a code, message, and optional cause.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// Matches if target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{Code: e.Code, Message: e.Message, cause: err}
}

// Sentinel errors for use with errors.Is().
var (
	ErrNotFound      = &Error{Code: CodeNotFound, Message: "not found"}
	ErrCacheInvalid  = &Error{Code: CodeCacheInvalid, Message: "cache invalid"}
	ErrTranscription = &Error{Code: CodeTranscription, Message: "transcription failed"}
	ErrSegmentWrite  = &Error{Code: CodeSegmentWrite, Message: "segment write failed"}
	ErrValidation    = &Error{Code: CodeValidation, Message: "validation error"}
	ErrInternal      = &Error{Code: CodeInternal, Message: "internal error"}
)

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NotFoundf creates a not found error with formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// CacheInvalid creates a cache invalid error.
func CacheInvalid(msg string) *Error {
	return &Error{Code: CodeCacheInvalid, Message: msg}
}

// CacheInvalidf creates a cache invalid error with formatted message.
func CacheInvalidf(format string, args ...any) *Error {
	return &Error{Code: CodeCacheInvalid, Message: fmt.Sprintf(format, args...)}
}

// Transcription creates a transcription error.
func Transcription(msg string) *Error {
	return &Error{Code: CodeTranscription, Message: msg}
}

// Transcriptionf creates a transcription error with formatted message.
func Transcriptionf(format string, args ...any) *Error {
	return &Error{Code: CodeTranscription, Message: fmt.Sprintf(format, args...)}
}

// SegmentWrite creates a segment write error.
func SegmentWrite(msg string) *Error {
	return &Error{Code: CodeSegmentWrite, Message: msg}
}

// SegmentWritef creates a segment write error with formatted message.
func SegmentWritef(format string, args ...any) *Error {
	return &Error{Code: CodeSegmentWrite, Message: fmt.Sprintf(format, args...)}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// Validationf creates a validation error with formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}

// Internalf creates an internal error with formatted message.
func Internalf(format string, args ...any) *Error {
	return &Error{Code: CodeInternal, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// Wrapf wraps an error with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}
