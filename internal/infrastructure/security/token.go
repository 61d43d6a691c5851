package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
)

// VerificationTokenBytes is the entropy of a verification token (256 bits).
const VerificationTokenBytes = 32

// OpaqueTokenIssuer returns base64url tokens from a CSPRNG.
type OpaqueTokenIssuer struct {
	size int
	rand io.Reader
}

func NewOpaqueTokenIssuer() *OpaqueTokenIssuer {
	return &OpaqueTokenIssuer{size: VerificationTokenBytes, rand: rand.Reader}
}

func (i *OpaqueTokenIssuer) Issue() (string, error) {
	b := make([]byte, i.size)
	if _, err := io.ReadFull(i.rand, b); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
