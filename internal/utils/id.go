package utils

import (
	"crypto/rand"
	"encoding/base64"
)

// Byte lengths for the two secrets the service mints.
const (
	APITokenLength    = 32 // bearer credentials (256-bit)
	ModifyTokenLength = 16 // per-file delete tokens
)

// GenerateSecureToken creates a cryptographically secure random token.
func GenerateSecureToken(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
