package util

import (
	"crypto/rand"
	"encoding/base64"
)

// GenerateLoginToken returns a URL-safe random token for magic-link logins.
// 32 bytes of entropy, base64url without padding.
func GenerateLoginToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
