package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Hash returns the hex SHA-256 of data. FileCache names entry files by
// the hash of their key.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// hashKey returns "<kind>:<hash of parts>". Parts are NUL-separated so
// that ("ab", "c") and ("a", "bc") differ.
func hashKey(kind string, parts ...any) string {
	h := sha256.New()
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte{0})
		}
		fmt.Fprint(h, p)
	}
	return kind + ":" + hex.EncodeToString(h.Sum(nil))
}
