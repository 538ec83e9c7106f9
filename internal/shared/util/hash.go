package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashUserKey maps a user id to a fixed-width hex key. Guest ids carry a
// colon ("guest:<uuid>") and Google ids carry the raw subject, so storage
// paths use the hash instead of the id itself.
func HashUserKey(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
