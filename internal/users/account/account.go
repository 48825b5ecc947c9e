// Copyright (c) 2026 Taskora. All rights reserved.
// Author: duyan.pham.vn@gmail.com

/*
Package account implements the self-service surface for signed-in owners.

It covers profile reads and updates, account deletion, and the per-device
session control panel built on top of the session lifecycle layer.

# Architecture

This package holds no storage code of its own: it orchestrates the
repositories and lifecycle service defined by the auth domain.
*/
package account

// # Field Identifiers

// Global field names for validation in the account domain.
const (
	FieldDisplayName = "display_name"
	FieldSessionID   = "session_id"
	FieldMessage     = "message"
)
