// Copyright (c) 2026 Taskora. All rights reserved.
// Author: duyan.pham.vn@gmail.com

package sec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phamduyan/taskora/internal/platform/sec"
)

/*
TestOpaqueToken_Roundtrip verifies that a generated token splits back into
its selector and that its verifier matches the stored hash.
*/
func TestOpaqueToken_Roundtrip(t *testing.T) {
	token, err := sec.NewOpaqueToken()
	require.NoError(t, err)

	// 1. The wire format must carry both halves
	selector, verifier, ok := sec.SplitToken(token.Token)
	require.True(t, ok)
	assert.Equal(t, token.Selector, selector)

	// 2. The verifier must match the persisted hash
	assert.True(t, sec.VerifyTokenHash(verifier, token.VerifierHash))

	// 3. A different verifier must not match
	assert.False(t, sec.VerifyTokenHash(verifier+"x", token.VerifierHash))
}

/*
TestOpaqueToken_Uniqueness verifies that consecutive tokens never collide.
*/
func TestOpaqueToken_Uniqueness(t *testing.T) {
	first, err := sec.NewOpaqueToken()
	require.NoError(t, err)

	second, err := sec.NewOpaqueToken()
	require.NoError(t, err)

	assert.NotEqual(t, first.Token, second.Token)
	assert.NotEqual(t, first.Selector, second.Selector)
	assert.NotEqual(t, first.VerifierHash, second.VerifierHash)
}

/*
TestSplitToken_Malformed verifies rejection of anything that is not
"<selector>.<verifier>".
*/
func TestSplitToken_Malformed(t *testing.T) {
	cases := []string{"", "noseparator", ".verifier", "selector.", "."}

	for _, raw := range cases {
		_, _, ok := sec.SplitToken(raw)
		assert.False(t, ok, "expected %q to be rejected", raw)
	}
}

/*
TestCheckPasswordHash verifies bcrypt hashing and the dummy-hash guard.
*/
func TestCheckPasswordHash(t *testing.T) {
	hash, err := sec.HashPassword("correct horse battery staple")
	require.NoError(t, err)

	// 1. Round trip
	assert.True(t, sec.CheckPasswordHash("correct horse battery staple", hash))
	assert.False(t, sec.CheckPasswordHash("wrong password", hash))

	// 2. The timing-uniformity dummy hash must never verify a real password
	assert.False(t, sec.CheckPasswordHash("correct horse battery staple", sec.DummyPasswordHash))
}
