// Copyright (c) 2026 Taskora. All rights reserved.
// Author: duyan.pham.vn@gmail.com

package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phamduyan/taskora/internal/platform/apperr"
	"github.com/phamduyan/taskora/internal/platform/validate"
)

/*
TestValidator_PassingChain verifies that a fully valid chain returns nil.
*/
func TestValidator_PassingChain(t *testing.T) {
	v := &validate.Validator{}
	v.Required("email", "user@example.com").
		Email("email", "user@example.com").
		MinLen("password", "longenough", 8).
		OneOf("status", "pending", "pending", "completed")

	assert.NoError(t, v.Err())
	assert.False(t, v.HasErrors())
}

/*
TestValidator_CollectsAllFailures verifies that every failed rule contributes
a field detail to the single returned error.
*/
func TestValidator_CollectsAllFailures(t *testing.T) {
	v := &validate.Validator{}
	v.Required("email", "  ").
		MinLen("password", "short", 8).
		OneOf("status", "bogus", "pending", "completed")

	err := v.Err()
	require.Error(t, err)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "VALIDATION_ERROR", appError.Code)
	assert.Len(t, appError.Details, 3)
}

/*
TestValidator_UUID verifies UUID format acceptance for v4 and v7 strings.
*/
func TestValidator_UUID(t *testing.T) {

	// 1. Valid UUIDv7
	v := &validate.Validator{}
	v.UUID("id", "01923456-789a-7bcd-8ef0-123456789abc")
	assert.NoError(t, v.Err())

	// 2. Garbage input
	v = &validate.Validator{}
	v.UUID("id", "not-a-uuid")
	assert.Error(t, v.Err())
}

/*
TestValidator_Custom verifies the conditional custom rule.
*/
func TestValidator_Custom(t *testing.T) {
	v := &validate.Validator{}
	v.Custom("score", true, "Must be between 1 and 10")

	err := v.Err()
	require.Error(t, err)
	assert.Equal(t, "score", apperr.As(err).Details[0].Field)
}
