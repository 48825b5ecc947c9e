// Copyright (c) 2026 Taskora. All rights reserved.
// Author: duyan.pham.vn@gmail.com

package sec_test

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phamduyan/taskora/internal/platform/sec"
)

// newTestTokenService builds a TokenService around an ephemeral RSA key.
func newTestTokenService(t *testing.T) *sec.TokenService {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	return sec.NewTokenServiceFromKeys(key, "taskora.test")
}

/*
TestTokenService_GenerateAndVerify verifies the full sign/verify cycle and
the custom claim payload.
*/
func TestTokenService_GenerateAndVerify(t *testing.T) {
	service := newTestTokenService(t)

	// 1. Sign
	signed, tokenID, err := service.GenerateAccessToken("user-1", "member", "session-1", time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, signed)
	require.NotEmpty(t, tokenID)

	// 2. Verify and inspect claims
	claims, err := service.VerifyToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "member", claims.Role)
	assert.Equal(t, "session-1", claims.SessionID)
	assert.Equal(t, tokenID, claims.TokenID())
}

/*
TestTokenService_RejectsExpired verifies that an already expired token fails
verification.
*/
func TestTokenService_RejectsExpired(t *testing.T) {
	service := newTestTokenService(t)

	signed, _, err := service.GenerateAccessToken("user-1", "member", "session-1", -time.Minute)
	require.NoError(t, err)

	_, err = service.VerifyToken(signed)
	assert.Error(t, err)
}

/*
TestTokenService_RejectsForeignSignature verifies that a token signed by a
different key is rejected.
*/
func TestTokenService_RejectsForeignSignature(t *testing.T) {
	signer := newTestTokenService(t)
	verifier := newTestTokenService(t)

	signed, _, err := signer.GenerateAccessToken("user-1", "member", "session-1", time.Minute)
	require.NoError(t, err)

	_, err = verifier.VerifyToken(signed)
	assert.Error(t, err)
}

/*
TestTokenService_UniqueTokenIDs verifies every issued token carries a fresh jti.
*/
func TestTokenService_UniqueTokenIDs(t *testing.T) {
	service := newTestTokenService(t)

	_, firstID, err := service.GenerateAccessToken("user-1", "member", "session-1", time.Minute)
	require.NoError(t, err)

	_, secondID, err := service.GenerateAccessToken("user-1", "member", "session-1", time.Minute)
	require.NoError(t, err)

	assert.NotEqual(t, firstID, secondID)
}

/*
TestUserRole_AtLeast verifies the role hierarchy ordering.
*/
func TestUserRole_AtLeast(t *testing.T) {
	assert.True(t, sec.RoleAdmin.AtLeast(sec.RoleMember))
	assert.True(t, sec.RoleMember.AtLeast(sec.RoleGuest))
	assert.True(t, sec.RoleMember.AtLeast(sec.RoleMember))
	assert.False(t, sec.RoleGuest.AtLeast(sec.RoleMember))
	assert.False(t, sec.UserRole("unknown").AtLeast(sec.RoleGuest))
}
