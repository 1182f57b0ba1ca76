package engine

import (
	"errors"
	"fmt"

	"github.com/bondhedge/hedge-engine/internal/hedge"
)

// ErrValidation is the sentinel wrapped by every ValidationError.
var ErrValidation = errors.New("engine: validation failed")

// ValidationError reports one out-of-range or missing parameter.
// Calculate joins one ValidationError per offending field.
type ValidationError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

// Unwrap lets errors.Is match ErrValidation.
func (e *ValidationError) Unwrap() error { return ErrValidation }

// FieldError is a field/reason pair extracted from a calculation error.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// FieldErrors flattens a (possibly joined) calculation error into its
// per-field parts. Both validation and invalid-input errors are reported.
func FieldErrors(err error) []FieldError {
	var out []FieldError
	var walk func(error)
	walk = func(e error) {
		if e == nil {
			return
		}
		if joined, ok := e.(interface{ Unwrap() []error }); ok {
			for _, inner := range joined.Unwrap() {
				walk(inner)
			}
			return
		}
		var ve *ValidationError
		if errors.As(e, &ve) {
			out = append(out, FieldError{Field: ve.Field, Reason: ve.Reason})
			return
		}
		var ie *hedge.InvalidInputError
		if errors.As(e, &ie) {
			out = append(out, FieldError{Field: ie.Field, Reason: ie.Reason})
		}
	}
	walk(err)
	return out
}

// IsValidation reports whether err contains at least one ValidationError.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsInvalidInput reports whether err contains a structurally impossible
// input, such as a zero lot size.
func IsInvalidInput(err error) bool {
	return errors.Is(err, hedge.ErrInvalidInput)
}
