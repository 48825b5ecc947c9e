// Copyright (c) 2026 Taskora. All rights reserved.
// Author: duyan.pham.vn@gmail.com

/*
Package auth implements the credential and session lifecycle layer.

It defines the core domain entities (Principal, Owner, Session) and the logic
for issuing, rotating, and revoking sessions across the Taskora platform.

# Architecture

This layer is the "Truth" of the system. Entities defined here have no external
dependencies and encapsulate all business rules related to identity and
session state.
*/
package auth

import (
	"time"

	"github.com/phamduyan/taskora/internal/platform/apperr"
	"github.com/phamduyan/taskora/internal/platform/sec"
)

// # Domain Entities

// Principal represents a registered account on the Taskora platform.
//
// Guests are NOT principals: a guest session carries a generated owner ID
// with no backing account row.
type Principal struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"` // Explicitly omitted from JSON for security.
	DisplayName  string       `json:"display_name"`
	Role         sec.UserRole `json:"role"`
	IsVerified   bool         `json:"is_verified"`
	IsSuspended  bool         `json:"is_suspended"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// IsUsable reports whether the account may hold live sessions.
//
// Soft-deleted accounts never reach this check because every repository
// lookup filters them out at the SQL level.
func (principal *Principal) IsUsable() bool {
	return !principal.IsSuspended
}

// # Owner Union

// OwnerKind discriminates the session owner union.
type OwnerKind string

const (
	OwnerKindAdmin     OwnerKind = "admin"
	OwnerKindMember    OwnerKind = "member"
	OwnerKindGuest     OwnerKind = "guest"
	OwnerKindAnonymous OwnerKind = "anonymous"
)

// Owner is a tagged union identifying who holds a session.
//
// Exactly one concrete identity (admin, member, or guest) or none at all
// (anonymous). Admin and member IDs reference users.account rows; guest IDs
// are generated per session and reference nothing.
type Owner struct {
	Kind OwnerKind `json:"kind"`
	ID   string    `json:"id,omitempty"`
}

// IsAnonymous reports whether the owner carries no identity.
func (owner Owner) IsAnonymous() bool {
	return owner.Kind == OwnerKindAnonymous
}

// IsAccountBacked reports whether the owner references a users.account row.
func (owner Owner) IsAccountBacked() bool {
	return owner.Kind == OwnerKindAdmin || owner.Kind == OwnerKindMember
}

// Validate enforces the union's exactly-one-or-none shape.
func (owner Owner) Validate() error {
	switch owner.Kind {
	case OwnerKindAdmin, OwnerKindMember, OwnerKindGuest:
		if owner.ID == "" {
			return apperr.ValidationError("Owner requires an identity")
		}
		return nil
	case OwnerKindAnonymous:
		if owner.ID != "" {
			return apperr.ValidationError("Anonymous owner must not carry an identity")
		}
		return nil
	default:
		return apperr.ValidationError("Unknown owner kind")
	}
}

// Role maps the owner kind to the access-control role embedded in tokens.
func (owner Owner) Role() sec.UserRole {
	switch owner.Kind {
	case OwnerKindAdmin:
		return sec.RoleAdmin
	case OwnerKindMember:
		return sec.RoleMember
	default:
		return sec.RoleGuest
	}
}

// # Session Entity

// Session represents one refresh-token lineage for an owner.
//
// A session row is never physically deleted by lifecycle operations. Rotation
// mutates the row in place; revocation stamps RevokedAt and the row stays as
// an audit record until the janitor purges it long after expiry.
type Session struct {
	ID            string     `json:"id"`
	OwnerKind     OwnerKind  `json:"owner_kind"`
	OwnerID       string     `json:"owner_id"`
	TokenSelector string     `json:"-"` // Non-secret lookup half of the refresh token.
	TokenHash     string     `json:"-"` // sha256 of the secret half. Omitted for security.
	AccessTokenID string     `json:"-"` // jti of the most recently issued access token.
	UserAgent     string     `json:"user_agent"`
	IPAddress     string     `json:"ip_address"`
	ExpiresAt     time.Time  `json:"expires_at"`
	RevokedAt     *time.Time `json:"revoked_at,omitempty"`
	RevokedReason string     `json:"revoked_reason,omitempty"`
	LastUsedAt    time.Time  `json:"last_used_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Owner reconstructs the owner union from the persisted columns.
func (session *Session) Owner() Owner {
	return Owner{Kind: session.OwnerKind, ID: session.OwnerID}
}

// IsRevoked reports whether the session has been explicitly invalidated.
func (session *Session) IsRevoked() bool {
	return session.RevokedAt != nil
}

// IsActive reports whether the session can still authorize a rotation.
func (session *Session) IsActive(now time.Time) bool {
	return !session.IsRevoked() && now.Before(session.ExpiresAt)
}

// # Issued Credentials

// TokenPair is the transport-ready result of a successful issue or rotation.
type TokenPair struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	ExpiredAt        time.Time `json:"expired_at"`
	RefreshableUntil time.Time `json:"refreshable_until"`
}

// IssuedSession bundles a token pair with the identity it was issued to.
type IssuedSession struct {
	SessionID string
	Owner     Owner
	Tokens    TokenPair
	Principal *Principal // nil for guest sessions
}

// RevocationReceipt is the caller-visible proof of a completed revocation.
type RevocationReceipt struct {
	SessionID string    `json:"session_id"`
	RevokedAt time.Time `json:"revoked_at"`
	RevokedBy string    `json:"revoked_by"`
	Reason    string    `json:"reason"`
}

// RevokeOthersResult summarizes a bulk sibling revocation.
type RevokeOthersResult struct {
	Success              bool     `json:"success"`
	RevokedSessionsCount int      `json:"revoked_sessions_count"`
	RevokedSessionIDs    []string `json:"revoked_session_ids"`
}

// # Field Identifiers

// Global field names for validation and identity mapping in the auth domain.
const (
	FieldEmail        = "email"
	FieldPassword     = "password"
	FieldDisplayName  = "display_name"
	FieldRefreshToken = "refresh_token"
	FieldAccessToken  = "access_token"
	FieldTokenType    = "token_type"
	FieldExpiresIn    = "expires_in"
	FieldUser         = "user"
	FieldMessage      = "message"
)
