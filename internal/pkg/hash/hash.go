// Package hash provides hashing utilities.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
)

// SHA256String computes the hex SHA256 hash of a string.
func SHA256String(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

// PredictionKey generates a deterministic cache key for a model and input text.
// The NUL separator keeps ("ab", "c") and ("a", "bc") apart.
func PredictionKey(model, text string) string {
	return SHA256String(model + "\x00" + text)
}
