// Package digest computes and verifies the cryptographic digest persisted
// with every save payload.
package digest

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// Digest computes the lowercase hex SHA-256 digest of the exact bytes that
// will be persisted (post-compaction).
func Digest(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// Verify reports whether payload matches the expected digest. It returns
// false on any mismatch, including empty or malformed expected values, and
// never fails.
func Verify(payload []byte, expected string) bool {
	actual := Digest(payload)
	if len(expected) != len(actual) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(actual), []byte(expected)) == 1
}
