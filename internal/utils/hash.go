package utils

import (
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

// HashToken is used for every token persisted at rest; raw values only leave
// the process in responses.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
