package helpers

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TimestampLayout matches what the editor sends for createdAt/updatedAt (JavaScript toISOString).
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// MaxKeyLength keeps {key}.json.tmp within the 255-byte file name limit.
const MaxKeyLength = 255 - len(".json.tmp")

var (
	ErrEmptyKey   = errors.New("key must not be empty")
	ErrInvalidKey = errors.New("key contains characters that are not allowed in a file name")
)

func GenerateUUID() string {
	return uuid.New().String()
}

// FormatTimestamp renders t in UTC using TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ValidateKey checks that key can be used as a file name inside a data directory.
// Keys that are hidden files or could escape the directory are rejected.
func ValidateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if len(key) > MaxKeyLength {
		return ErrInvalidKey
	}
	if strings.HasPrefix(key, ".") || strings.ContainsAny(key, "/\\\x00") {
		return ErrInvalidKey
	}
	return nil
}
