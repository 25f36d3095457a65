package fields

import (
	"errors"
	"fmt"
)

var (
	ErrTypeMismatch = errors.New("value kind mismatch")
	ErrUnparsable   = errors.New("value cannot be parsed")
)

// TypeMismatchError reports a value of one kind offered where another kind is
// declared.
type TypeMismatchError struct {
	Expected Kind
	Actual   Kind
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("value kind mismatch: expected %s, got %s", e.Expected, e.Actual)
}

func (e *TypeMismatchError) Unwrap() error { return ErrTypeMismatch }

func unparsable(kind Kind, s string, cause error) error {
	if cause != nil {
		return fmt.Errorf("%w: %s %q: %v", ErrUnparsable, kind, s, cause)
	}
	return fmt.Errorf("%w: %s %q", ErrUnparsable, kind, s)
}
