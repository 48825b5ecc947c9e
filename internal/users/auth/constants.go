// Copyright (c) 2026 Taskora. All rights reserved.
// Author: duyan.pham.vn@gmail.com

package auth

import "time"

// # Session Lifecycle Constraints

const (
	// DefaultAccessTokenTTL is the fallback JWT lifetime when configuration
	// does not override it. Short (15m) to minimize leaked-token impact.
	DefaultAccessTokenTTL = 15 * time.Minute

	// DefaultRefreshWindow is the fallback refresh-token validity window.
	// Each successful rotation slides the window forward from now.
	DefaultRefreshWindow = 7 * 24 * time.Hour
)

// # Revocation Reasons

// Canonical reason strings stamped onto revoked sessions and their
// revocation-log entries.
const (
	ReasonLogout         = "logout"
	ReasonRevokeOthers   = "revoke_others"
	ReasonAccountDeleted = "account_deleted"
	ReasonAdminAction    = "admin_action"
)
