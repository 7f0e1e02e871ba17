package helpers

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// ContentETag returns a strong HTTP entity tag for a serialized document.
func ContentETag(content []byte) string {
	sum := blake2b.Sum256(content)
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}
