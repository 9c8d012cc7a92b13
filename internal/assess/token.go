package assess

import (
	"crypto/rand"
	"encoding/base64"
)

// NewAccessToken returns a URL-safe random token for candidate links.
func NewAccessToken() string {
	b := make([]byte, 24)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
