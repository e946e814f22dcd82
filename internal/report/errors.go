package report

import (
	"errors"
	"fmt"
)

// ErrEmptyView signals that a filtered view has no rows. It is an outcome,
// not a failure: callers show the no-results notice and skip the document.
var ErrEmptyView = errors.New("no towers found matching your search")

// ValidationError reports a malformed or inverted filter parameter.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
