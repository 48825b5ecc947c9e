// Copyright (c) 2026 Taskora. All rights reserved.
// Author: duyan.pham.vn@gmail.com

package sec

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
)

// # Opaque Refresh Tokens
//
// A refresh token on the wire is "<selector>.<verifier>".
//
//   - selector: random, NOT secret. Stored in clear and indexed, so a
//     presented token resolves to exactly one session row without scanning.
//   - verifier: random, secret. Only sha256(verifier) is persisted; the
//     clear text exists solely in the client's copy of the token.
//
// Splitting the token this way keeps the database lookup O(1) while the
// stored hash stays useless to anyone who reads the session table.

const (
	// SelectorLength is the byte length of the random selector.
	SelectorLength = 12

	// VerifierLength is the byte length of the random secret verifier.
	VerifierLength = 32
)

// OpaqueToken is a freshly generated refresh-token triple.
type OpaqueToken struct {
	// Token is the full "<selector>.<verifier>" string handed to the client.
	Token string

	// Selector is the non-secret lookup key persisted in clear.
	Selector string

	// VerifierHash is the hex-encoded sha256 of the verifier, the only
	// server-side representation of the secret.
	VerifierHash string
}

// NewOpaqueToken generates a new refresh token from the system CSPRNG.
func NewOpaqueToken() (OpaqueToken, error) {
	selectorBytes := make([]byte, SelectorLength)
	if _, err := rand.Read(selectorBytes); err != nil {
		return OpaqueToken{}, fmt.Errorf("sec: failed to generate token selector: %w", err)
	}

	verifierBytes := make([]byte, VerifierLength)
	if _, err := rand.Read(verifierBytes); err != nil {
		return OpaqueToken{}, fmt.Errorf("sec: failed to generate token verifier: %w", err)
	}

	// URL-safe, no padding.
	selector := base64.RawURLEncoding.EncodeToString(selectorBytes)
	verifier := base64.RawURLEncoding.EncodeToString(verifierBytes)

	return OpaqueToken{
		Token:        selector + "." + verifier,
		Selector:     selector,
		VerifierHash: HashTokenVerifier(verifier),
	}, nil
}

// SplitToken breaks a presented refresh token into its selector and verifier.
// ok is false for anything that is not exactly "<selector>.<verifier>".
func SplitToken(token string) (selector, verifier string, ok bool) {
	selector, verifier, found := strings.Cut(token, ".")
	if !found || selector == "" || verifier == "" {
		return "", "", false
	}
	return selector, verifier, true
}

// HashTokenVerifier returns the hex-encoded sha256 digest of a verifier.
func HashTokenVerifier(verifier string) string {
	digest := sha256.Sum256([]byte(verifier))
	return hex.EncodeToString(digest[:])
}

// VerifyTokenHash compares a presented verifier against a stored hash in
// constant time.
func VerifyTokenHash(verifier, storedHash string) bool {
	presented := HashTokenVerifier(verifier)
	return subtle.ConstantTimeCompare([]byte(presented), []byte(storedHash)) == 1
}
