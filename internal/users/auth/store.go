// Copyright (c) 2026 Taskora. All rights reserved.
// Author: duyan.pham.vn@gmail.com

package auth

import (
	"context"
	"time"
)

// # Principal Data Access

// PrincipalRepository defines the data access contract for registered accounts.
type PrincipalRepository interface {

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Principal: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByID(context context.Context, id string) (*Principal, error)

	/*
		FindByEmail returns the account with the given canonical email.

		Parameters:
		  - context: context.Context
		  - email: string (already normalized)

		Returns:
		  - *Principal: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByEmail(context context.Context, email string) (*Principal, error)

	/*
		Create persists a brand-new account to the storage.

		Parameters:
		  - context: context.Context
		  - principal: *Principal

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, principal *Principal) error

	/*
		Update persists changes to mutable profile fields.

		Parameters:
		  - context: context.Context
		  - principal: *Principal

		Returns:
		  - error: Persistence failures
	*/
	Update(context context.Context, principal *Principal) error

	/*
		SoftDelete marks the account as deleted without removing the row.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: Persistence failures
	*/
	SoftDelete(context context.Context, id string) error
}

// # Session Data Access

// SessionRepository defines the data access contract for refresh-token sessions.
type SessionRepository interface {

	/*
		Create persists a new session for a freshly issued token pair.

		Parameters:
		  - context: context.Context
		  - session: *Session

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, session *Session) error

	/*
		FindBySelector returns the live session matching the refresh token's
		selector half. Revoked and expired rows are filtered at the SQL level.

		Parameters:
		  - context: context.Context
		  - selector: string

		Returns:
		  - *Session: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindBySelector(context context.Context, selector string) (*Session, error)

	/*
		FindByID returns the session with the given ID regardless of its state.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Session: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByID(context context.Context, id string) (*Session, error)

	/*
		Rotate atomically swaps the session's refresh credential.

		The update is a compare-and-swap: it applies only if the stored hash
		still equals previousTokenHash and the row is neither revoked nor
		expired. A concurrent rotation that lost the race observes zero
		affected rows and receives apperr.NotFound.

		Parameters:
		  - context: context.Context
		  - session: *Session (carries the NEW selector, hash, access-token
		    ID, expiry, and client metadata)
		  - previousTokenHash: string (the hash being replaced)

		Returns:
		  - error: apperr.NotFound on a lost race, or persistence failures
	*/
	Rotate(context context.Context, session *Session, previousTokenHash string) error

	/*
		Revoke stamps the session as invalidated. Applies only to rows not
		already revoked, making repeated calls harmless.

		Parameters:
		  - context: context.Context
		  - sessionID: string
		  - reason: string
		  - revokedAt: time.Time

		Returns:
		  - error: Persistence failures
	*/
	Revoke(context context.Context, sessionID string, reason string, revokedAt time.Time) error

	/*
		RevokeOthers revokes every live session of the owner except the
		given one and returns the sessions it touched.

		Parameters:
		  - context: context.Context
		  - owner: Owner
		  - currentSessionID: string
		  - reason: string

		Returns:
		  - []*Session: The sessions that were revoked by this call
		  - error: Persistence failures
	*/
	RevokeOthers(context context.Context, owner Owner, currentSessionID string, reason string) ([]*Session, error)

	/*
		RevokeAllForOwner revokes every live session of the owner and returns
		the sessions it touched.

		Parameters:
		  - context: context.Context
		  - owner: Owner
		  - reason: string

		Returns:
		  - []*Session: The sessions that were revoked by this call
		  - error: Persistence failures
	*/
	RevokeAllForOwner(context context.Context, owner Owner, reason string) ([]*Session, error)

	/*
		ListByOwner returns the owner's sessions, live first, newest first.

		Parameters:
		  - context: context.Context
		  - owner: Owner

		Returns:
		  - []*Session: Hydrated entities
		  - error: Database retrieval failures
	*/
	ListByOwner(context context.Context, owner Owner) ([]*Session, error)

	/*
		DeleteExpired physically removes sessions whose expiry is older than
		the retention period. Lifecycle operations never delete; only this
		janitor call does.

		Parameters:
		  - context: context.Context
		  - retention: time.Duration

		Returns:
		  - int64: Number of rows purged
		  - error: Persistence failures
	*/
	DeleteExpired(context context.Context, retention time.Duration) (int64, error)
}

// # Revocation Read Model

// RevocationEntry is one append-only record of a session revocation.
type RevocationEntry struct {
	SessionID string    `json:"session_id"`
	OwnerKind OwnerKind `json:"owner_kind"`
	OwnerID   string    `json:"owner_id"`
	RevokedAt time.Time `json:"revoked_at"`
	RevokedBy string    `json:"revoked_by"`
	Reason    string    `json:"reason"`
}

// RevocationLogRepository defines the contract for the revocation read model.
type RevocationLogRepository interface {

	/*
		Upsert records a revocation keyed by session ID. Re-revoking the
		same session overwrites the existing entry rather than duplicating it.

		Parameters:
		  - context: context.Context
		  - entry: *RevocationEntry

		Returns:
		  - error: Persistence failures
	*/
	Upsert(context context.Context, entry *RevocationEntry) error

	/*
		ListByOwner returns the owner's revocation history, newest first.

		Parameters:
		  - context: context.Context
		  - owner: Owner

		Returns:
		  - []*RevocationEntry: Hydrated entries
		  - error: Database retrieval failures
	*/
	ListByOwner(context context.Context, owner Owner) ([]*RevocationEntry, error)
}

// # Volatile Data Access

// DenyList defines the contract for early access-token invalidation.
//
// Entries carry a TTL equal to the access token's remaining lifetime, so
// the denylist never grows beyond the set of tokens that could still be
// replayed.
type DenyList interface {

	/*
		Add denylists an access-token ID for the given duration.

		Parameters:
		  - context: context.Context
		  - tokenID: string (jti claim)
		  - ttl: time.Duration

		Returns:
		  - error: Persistence failures
	*/
	Add(context context.Context, tokenID string, ttl time.Duration) error

	/*
		Contains reports whether an access-token ID has been denylisted.

		Parameters:
		  - context: context.Context
		  - tokenID: string

		Returns:
		  - bool: True if the token was revoked early
		  - error: Retrieval failures
	*/
	Contains(context context.Context, tokenID string) (bool, error)
}
