package platform

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedPlatform is the sentinel wrapped by every ClassificationError.
var ErrUnsupportedPlatform = errors.New("unsupported platform")

// ClassificationError reports a kernel name or machine architecture that
// is not in the resolution table.
type ClassificationError struct {
	Field     string // "operating system" or "architecture"
	Value     string // literal value as reported
	Supported []string
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("unsupported %s: %q (supported: %s)",
		e.Field, e.Value, strings.Join(e.Supported, ", "))
}

// Unwrap returns ErrUnsupportedPlatform so callers can use errors.Is.
func (e *ClassificationError) Unwrap() error {
	return ErrUnsupportedPlatform
}
