package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
)

const (
	// VerifierLength is the length used for every new authorization attempt.
	VerifierLength = 64
	// MinVerifierLength and MaxVerifierLength are the RFC 7636 bounds.
	MinVerifierLength = 43
	MaxVerifierLength = 128
	ChallengeMethod   = "S256"
)

const verifierAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// PKCE holds a code verifier and its derived challenge.
type PKCE struct {
	Verifier  string
	Challenge string
	Method    string
}

// NewPKCE generates a verifier of the given length (clamped to 43..128) and derives its challenge.
func NewPKCE(length int) PKCE {
	length = max(MinVerifierLength, min(length, MaxVerifierLength))
	v := GenerateVerifier(length)
	return PKCE{Verifier: v, Challenge: DeriveChallenge(v), Method: ChallengeMethod}
}

// GenerateVerifier returns length characters drawn from [A-Za-z0-9] using crypto/rand.
//
// Each random byte is reduced modulo 62, which slightly favours the first
// eight characters of the alphabet.
func GenerateVerifier(length int) string {
	if length <= 0 {
		return ""
	}

	buf := make([]byte, length)
	rand.Read(buf)

	for i, b := range buf {
		buf[i] = verifierAlphabet[int(b)%len(verifierAlphabet)]
	}
	return string(buf)
}

// DeriveChallenge returns the unpadded base64url SHA-256 digest of verifier.
func DeriveChallenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
