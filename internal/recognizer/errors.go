package recognizer

import (
	"errors"
	"fmt"
)

var ErrClosed = errors.New("recognizer has been freed")

type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindOperation  ErrorKind = "operation"
)

// Error is reported through the error event and, where an operation returns
// an error, returned as well.
type Error struct {
	Kind    ErrorKind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return e.Op + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func validationError(op, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: fmt.Sprintf(format, args...)}
}

func operationError(op, message string, err error) *Error {
	return &Error{Kind: KindOperation, Op: op, Message: message, Err: err}
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindValidation
}
