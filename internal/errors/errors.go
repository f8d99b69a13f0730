package errors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("validation failed")
	ErrSendFailed = errors.New("send failed")
)

// NewInternal wraps an unexpected failure. It does not match any sentinel.
func NewInternal(format string, a ...interface{}) error {
	return fmt.Errorf("INTERNAL: "+format, a...)
}

func NewNotFound(format string, a ...interface{}) error {
	return fmt.Errorf("NOT FOUND: %s: %w", fmt.Sprintf(format, a...), ErrNotFound)
}

func NewConflict(format string, a ...interface{}) error {
	return fmt.Errorf("CONFLICT: %s: %w", fmt.Sprintf(format, a...), ErrConflict)
}

func NewValidation(format string, a ...interface{}) error {
	return fmt.Errorf("INVALID: %s: %w", fmt.Sprintf(format, a...), ErrValidation)
}

func NewSendFailed(format string, a ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, a...), ErrSendFailed)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsSendFailed(err error) bool {
	return errors.Is(err, ErrSendFailed)
}

func IsInternal(err error) bool {
	return err != nil && !IsNotFound(err) && !IsConflict(err) && !IsValidation(err)
}
