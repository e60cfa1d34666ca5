package auth

import (
	"crypto/rand"
	"encoding/base64"

	"sentinel/internal/domain/service"
	"sentinel/internal/errors"
)

// DefaultOpaqueTokenBytes is the entropy of reset and verification tokens.
const DefaultOpaqueTokenBytes = 32

type opaqueTokenGenerator struct {
	size int
}

// NewOpaqueTokenGenerator returns a generator of 32-byte URL-safe random tokens.
func NewOpaqueTokenGenerator() service.OpaqueTokenGenerator {
	return &opaqueTokenGenerator{size: DefaultOpaqueTokenBytes}
}

// Generate returns size random bytes encoded as unpadded base64url.
func (g *opaqueTokenGenerator) Generate() (string, error) {
	buf, err := randomBytes(g.size)
	if err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func randomBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return nil, errors.Wrap(err, "read random bytes")
	}

	return buf, nil
}
