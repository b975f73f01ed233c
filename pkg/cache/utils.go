package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Key joins parts with ':'.
func Key(parts ...string) string {
	return strings.Join(parts, ":")
}

// HashKey returns a short stable digest, used for free-text keys.
func HashKey(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:12])
}
