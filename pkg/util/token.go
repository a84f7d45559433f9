// Package util contains small helpers shared across the application that
// don't belong to any other package
package util

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateToken returns n random bytes, hex encoded
func GenerateToken(n int) (string, error) {
	b := make([]byte, n)

	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}
