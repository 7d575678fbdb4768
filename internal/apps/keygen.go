package apps

import (
	"crypto/rand"
	"encoding/base64"
)

// KeyBytes is the entropy used for application and token keys. 128 bits keeps
// the collision probability negligible, which is why no uniqueness check runs
// before inserts.
const KeyBytes = 16

// GenerateKey returns a URL-safe random key with n bytes of entropy.
// crypto/rand is safe for concurrent use; this is the only shared state of the
// whole domain core.
func GenerateKey(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
