// Package utils provides shared low-level helpers for the rest of this
// module: overflow-checked arithmetic, bounds validation, contextual error
// wrapping, and small string-decoding utilities.
package utils

import (
	"errors"
	"fmt"
	"io"
)

// ErrInvalidData classifies a format error: bad magic, a non-zero reserved
// byte, an impossible field width, or any other structural violation.
var ErrInvalidData = errors.New("invalid data")

// ErrUnsupported classifies a capability error: a recognized but
// unimplemented encoding (KRAK compression, EDGE chunk payloads).
var ErrUnsupported = errors.New("unsupported")

// ParamError represents a structured, contextual parse failure.
type ParamError struct {
	Context string
	Cause   error
}

// Error implements the error interface.
func (e *ParamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Context, e.Cause)
}

// Unwrap provides compatibility with errors.Unwrap().
func (e *ParamError) Unwrap() error {
	return e.Cause
}

// WrapError creates a contextual error naming the component/field that failed.
func WrapError(context string, cause error) error {
	if cause == nil {
		return nil
	}
	return &ParamError{
		Context: context,
		Cause:   cause,
	}
}

// InvalidDataf wraps a format violation, classified under ErrInvalidData,
// naming the offending field or offset in context.
func InvalidDataf(context, format string, args ...any) error {
	return WrapError(context, fmt.Errorf("%w: %s", ErrInvalidData, fmt.Sprintf(format, args...)))
}

// UnexpectedEOF wraps a short-read failure, classified under io.ErrUnexpectedEOF.
func UnexpectedEOF(context string) error {
	return WrapError(context, io.ErrUnexpectedEOF)
}

// Unsupportedf wraps a capability failure, classified under ErrUnsupported.
func Unsupportedf(context, format string, args ...any) error {
	return WrapError(context, fmt.Errorf("%w: %s", ErrUnsupported, fmt.Sprintf(format, args...)))
}
