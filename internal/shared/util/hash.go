package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashUserKey derives a fixed-length, filesystem- and S3-safe partition key
// from a user identity. Hashing also keeps raw identities (including
// "guest:"-prefixed ones) out of object-store paths.
func HashUserKey(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
