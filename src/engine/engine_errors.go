package engine

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a key has no document.
	ErrNotFound = errors.New("document not found")

	// ErrWriteVerification is returned when a renamed document cannot be read back and parsed.
	ErrWriteVerification = errors.New("failed to verify saved document")

	// ErrUnknownCollection is returned for a collection the store does not manage.
	ErrUnknownCollection = errors.New("unknown collection")

	// ErrDuplicateItem is returned when an item id already exists in a diagram collection.
	ErrDuplicateItem = errors.New("item already exists")
)

// ValidationError reports a document rejected at the write boundary.
type ValidationError struct {
	// Missing lists required fields that were absent, in RequiredDiagramFields order.
	Missing []string
	// Reason describes any other violation, such as a collection that is not an array.
	Reason string
}

func (e *ValidationError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("Missing required fields: %s", strings.Join(e.Missing, ", "))
	}
	return e.Reason
}

// CorruptDocumentError is returned when a file exists but is not a JSON object.
type CorruptDocumentError struct {
	Path string
	Err  error
}

func (e *CorruptDocumentError) Error() string {
	return fmt.Sprintf("corrupt document %s: %v", e.Path, e.Err)
}

func (e *CorruptDocumentError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is, or wraps, a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsCorrupt reports whether err is, or wraps, a *CorruptDocumentError.
func IsCorrupt(err error) bool {
	var ce *CorruptDocumentError
	return errors.As(err, &ce)
}
