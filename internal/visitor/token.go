package visitor

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// GenerateToken mints a cryptographically secure session token.
// 32 bytes = 256 bits of entropy; collisions are negligible at the
// scale of the daily quota.
func GenerateToken() (string, error) {

	const size = 32 // 256 bits

	b := make([]byte, size)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("visitor: failed to generate token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}
