package errors

import "errors"

// Error pairs a machine-readable code with an underlying error.
type Error struct {
	Code Code
	Err  error
}

// E wraps err with a code. It returns nil when err is nil.
func E(code Code, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Code)
	}
	return e.Err.Error()
}

// Unwrap exposes the underlying error for errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// CodeOf extracts the code from an error chain, defaulting to CodeUnknown.
func CodeOf(err error) Code {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	return CodeUnknown
}
