package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports a referenced product, ingredient, batch, pack or template id that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation reports a caller-supplied value outside an enforced bound.
	ErrValidation = errors.New("validation error")
	// ErrInUse reports a delete blocked because other records still reference the row.
	ErrInUse = errors.New("record in use")
)

// NotFound wraps ErrNotFound with the kind and id of the missing record.
func NotFound(kind string, id int64) error {
	return fmt.Errorf("%s with id %d %w", kind, id, ErrNotFound)
}

// Validation wraps ErrValidation with a field-scoped message.
func Validation(field, msg string) error {
	return fmt.Errorf("%w: %s %s", ErrValidation, field, msg)
}

func IsNotFound(err error) bool   { return errors.Is(err, ErrNotFound) }
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }
func IsInUse(err error) bool      { return errors.Is(err, ErrInUse) }
