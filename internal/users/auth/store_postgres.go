// Copyright (c) 2026 Taskora. All rights reserved.
// Author: duyan.pham.vn@gmail.com

// PostgreSQL implementations of the auth data access contracts.
//
// # Architecture
//
// Repositories here are strictly separated from domain logic. They implement
// domain-defined interfaces (e.g., [PrincipalRepository]) using the
// [pgxpool.Pool] connection manager.
//
// # Error Mapping
//
// Storage-specific errors (like pgx.ErrNoRows) are mapped to domain-friendly
// [apperr.AppError] types to avoid leaking storage implementation details.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/phamduyan/taskora/internal/platform/apperr"
	"github.com/phamduyan/taskora/internal/platform/dberr"
)

// # Principal Repository

// PostgresPrincipalRepository implements PrincipalRepository using pgx.
type PostgresPrincipalRepository struct {
	pool *pgxpool.Pool
}

// NewPrincipalRepository creates a new PostgreSQL implementation of PrincipalRepository.
func NewPrincipalRepository(pool *pgxpool.Pool) *PostgresPrincipalRepository {
	return &PostgresPrincipalRepository{pool: pool}
}

/*
Create persists a new account record into the users.account table.

Description: Deep-persists account metadata, ensuring timestamps are
initialized if not provided. A duplicate email surfaces as apperr.Conflict.

Parameters:
  - context: context.Context
  - principal: *Principal (Entity to persist)

Returns:
  - error: apperr.Conflict on duplicate email, or connectivity errors
*/
func (repository *PostgresPrincipalRepository) Create(context context.Context, principal *Principal) error {
	const query = `
		INSERT INTO users.account (
			id, email, passwordhash, displayname, role, isverified, issuspended, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	now := time.Now()
	if principal.CreatedAt.IsZero() {
		principal.CreatedAt = now
	}
	principal.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		principal.ID,
		principal.Email,
		principal.PasswordHash,
		principal.DisplayName,
		principal.Role,
		principal.IsVerified,
		principal.IsSuspended,
		principal.CreatedAt,
		principal.UpdatedAt,
	)

	if err != nil {
		return dberr.Wrap(err, "account")
	}

	return nil
}

/*
FindByEmail retrieves an account record by its canonical email address.

Description: Performs a lookup on the account table, filtering out
soft-deleted accounts.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *Principal: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresPrincipalRepository) FindByEmail(context context.Context, email string) (*Principal, error) {
	const query = `
		SELECT id, email, passwordhash, displayname, role, isverified, issuspended, createdat, updatedat
		FROM users.account
		WHERE email = $1 AND deletedat IS NULL`

	principal := &Principal{}
	err := repository.pool.QueryRow(context, query, email).Scan(
		&principal.ID,
		&principal.Email,
		&principal.PasswordHash,
		&principal.DisplayName,
		&principal.Role,
		&principal.IsVerified,
		&principal.IsSuspended,
		&principal.CreatedAt,
		&principal.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Account not found with this email")
		}
		return nil, fmt.Errorf("postgres_principal_repo_find_by_email_failed: %w", err)
	}

	return principal, nil
}

/*
FindByID retrieves an account record by its unique ID.

Description: Primary key resolution for accounts.

Parameters:
  - context: context.Context
  - id: string (UUIDv7)

Returns:
  - *Principal: Hydrated account entity
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresPrincipalRepository) FindByID(context context.Context, id string) (*Principal, error) {
	const query = `
		SELECT id, email, passwordhash, displayname, role, isverified, issuspended, createdat, updatedat
		FROM users.account
		WHERE id = $1 AND deletedat IS NULL`

	principal := &Principal{}
	err := repository.pool.QueryRow(context, query, id).Scan(
		&principal.ID,
		&principal.Email,
		&principal.PasswordHash,
		&principal.DisplayName,
		&principal.Role,
		&principal.IsVerified,
		&principal.IsSuspended,
		&principal.CreatedAt,
		&principal.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Account not found")
		}
		return nil, fmt.Errorf("postgres_principal_repo_find_by_id_failed: %w", err)
	}

	return principal, nil
}

/*
Update persists changes to an account's mutable profile fields.

Description: Synchronizes the in-memory account state with the database,
refreshing the updatedat timestamp.

Parameters:
  - context: context.Context
  - principal: *Principal

Returns:
  - error: Update failures
*/
func (repository *PostgresPrincipalRepository) Update(context context.Context, principal *Principal) error {
	const query = `
		UPDATE users.account
		SET displayname = $2, isverified = $3, issuspended = $4, updatedat = $5
		WHERE id = $1 AND deletedat IS NULL`

	principal.UpdatedAt = time.Now()
	_, err := repository.pool.Exec(context, query,
		principal.ID,
		principal.DisplayName,
		principal.IsVerified,
		principal.IsSuspended,
		principal.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_principal_repo_update_failed: %w", err)
	}

	return nil
}

/*
SoftDelete marks an account as deleted using its ID.

Description: Retention-friendly deletion by setting deletedat.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: Side-effect failures
*/
func (repository *PostgresPrincipalRepository) SoftDelete(context context.Context, id string) error {
	const query = "UPDATE users.account SET deletedat = $2 WHERE id = $1"
	_, err := repository.pool.Exec(context, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_principal_repo_soft_delete_failed: %w", err)
	}
	return nil
}

// # Session Repository

// PostgresSessionRepository implements the SessionRepository interface.
type PostgresSessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new PostgreSQL implementation of SessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *PostgresSessionRepository {
	return &PostgresSessionRepository{pool: pool}
}

const sessionColumns = `
	id, ownerkind, ownerid, tokenselector, tokenhash, accesstokenid,
	useragent, ipaddress, expiresat, revokedat, revokedreason,
	lastusedat, createdat, updatedat`

// scanSession hydrates one Session from a pgx row.
func scanSession(row pgx.Row) (*Session, error) {
	session := &Session{}
	err := row.Scan(
		&session.ID,
		&session.OwnerKind,
		&session.OwnerID,
		&session.TokenSelector,
		&session.TokenHash,
		&session.AccessTokenID,
		&session.UserAgent,
		&session.IPAddress,
		&session.ExpiresAt,
		&session.RevokedAt,
		&session.RevokedReason,
		&session.LastUsedAt,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return session, nil
}

/*
Create persists a new session record into the users.session table.

Description: Records a freshly issued token pair in persistent storage.

Parameters:
  - context: context.Context
  - session: *Session

Returns:
  - error: Storage failures
*/
func (repository *PostgresSessionRepository) Create(context context.Context, session *Session) error {
	const query = `
		INSERT INTO users.session (
			id, ownerkind, ownerid, tokenselector, tokenhash, accesstokenid,
			useragent, ipaddress, expiresat, revokedat, revokedreason,
			lastusedat, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	now := time.Now()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	if session.LastUsedAt.IsZero() {
		session.LastUsedAt = now
	}
	session.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		session.ID,
		session.OwnerKind,
		session.OwnerID,
		session.TokenSelector,
		session.TokenHash,
		session.AccessTokenID,
		session.UserAgent,
		session.IPAddress,
		session.ExpiresAt,
		session.RevokedAt,
		session.RevokedReason,
		session.LastUsedAt,
		session.CreatedAt,
		session.UpdatedAt,
	)

	if err != nil {
		return dberr.Wrap(err, "session")
	}

	return nil
}

/*
FindBySelector retrieves a live session by the refresh token's selector half.

Description: The selector column carries a unique index, so the lookup is a
single index probe. Revoked and expired rows never match.

Parameters:
  - context: context.Context
  - selector: string

Returns:
  - *Session: Hydrated session metadata
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresSessionRepository) FindBySelector(context context.Context, selector string) (*Session, error) {
	const query = `
		SELECT ` + sessionColumns + `
		FROM users.session
		WHERE tokenselector = $1 AND revokedat IS NULL AND expiresat > NOW()`

	session, err := scanSession(repository.pool.QueryRow(context, query, selector))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Session not found or expired")
		}
		return nil, fmt.Errorf("postgres_session_repo_find_by_selector_failed: %w", err)
	}

	return session, nil
}

/*
FindByID retrieves a session by its unique ID regardless of state.

Description: Revoked and expired rows are returned too; revocation needs to
see them to stay idempotent.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Session: Hydrated session metadata
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresSessionRepository) FindByID(context context.Context, id string) (*Session, error) {
	const query = `
		SELECT ` + sessionColumns + `
		FROM users.session
		WHERE id = $1`

	session, err := scanSession(repository.pool.QueryRow(context, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Session not found")
		}
		return nil, fmt.Errorf("postgres_session_repo_find_by_id_failed: %w", err)
	}

	return session, nil
}

/*
Rotate atomically swaps the session's refresh credential in place.

Description: Single-statement compare-and-swap. The WHERE clause re-checks
the stored hash, revocation, and expiry, so exactly one of any set of
concurrent rotations presenting the same stale secret can succeed. The
losers see zero affected rows.

Parameters:
  - context: context.Context
  - session: *Session (carries the new credential state)
  - previousTokenHash: string

Returns:
  - error: apperr.NotFound on a lost race, or execution errors
*/
func (repository *PostgresSessionRepository) Rotate(context context.Context, session *Session, previousTokenHash string) error {
	const query = `
		UPDATE users.session
		SET tokenselector = $3, tokenhash = $4, accesstokenid = $5,
		    useragent = $6, ipaddress = $7, expiresat = $8,
		    lastusedat = $9, updatedat = $9
		WHERE id = $1 AND tokenhash = $2 AND revokedat IS NULL AND expiresat > NOW()`

	now := time.Now()
	session.LastUsedAt = now
	session.UpdatedAt = now

	tag, err := repository.pool.Exec(context, query,
		session.ID,
		previousTokenHash,
		session.TokenSelector,
		session.TokenHash,
		session.AccessTokenID,
		session.UserAgent,
		session.IPAddress,
		session.ExpiresAt,
		now,
	)

	if err != nil {
		return fmt.Errorf("postgres_session_repo_rotate_failed: %w", err)
	}

	// Zero rows means the credential moved underneath us: a concurrent
	// rotation won, or the session was revoked or expired mid-flight.
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Session not found or already rotated")
	}

	return nil
}

/*
Revoke stamps a session as revoked.

Description: The revokedat guard makes re-revocation a no-op rather than an
error, preserving the original timestamp and reason.

Parameters:
  - context: context.Context
  - sessionID: string
  - reason: string
  - revokedAt: time.Time

Returns:
  - error: Revocation failures
*/
func (repository *PostgresSessionRepository) Revoke(context context.Context, sessionID string, reason string, revokedAt time.Time) error {
	const query = `
		UPDATE users.session
		SET revokedat = $2, revokedreason = $3, updatedat = $2
		WHERE id = $1 AND revokedat IS NULL`

	_, err := repository.pool.Exec(context, query, sessionID, revokedAt, reason)
	if err != nil {
		return fmt.Errorf("postgres_session_repo_revoke_failed: %w", err)
	}
	return nil
}

/*
RevokeOthers revokes all live sessions of an owner except the current one.

Description: RETURNING hands back the touched rows so the caller can
denylist their access tokens and feed the revocation log.

Parameters:
  - context: context.Context
  - owner: Owner
  - currentSessionID: string
  - reason: string

Returns:
  - []*Session: Sessions revoked by this call
  - error: Filtered revocation failures
*/
func (repository *PostgresSessionRepository) RevokeOthers(context context.Context, owner Owner, currentSessionID string, reason string) ([]*Session, error) {
	const query = `
		UPDATE users.session
		SET revokedat = $4, revokedreason = $5, updatedat = $4
		WHERE ownerkind = $1 AND ownerid = $2 AND id != $3
		  AND revokedat IS NULL AND expiresat > NOW()
		RETURNING ` + sessionColumns

	rows, err := repository.pool.Query(context, query,
		owner.Kind, owner.ID, currentSessionID, time.Now(), reason)
	if err != nil {
		return nil, fmt.Errorf("postgres_session_repo_revoke_others_failed: %w", err)
	}
	defer rows.Close()

	return collectSessions(rows)
}

/*
RevokeAllForOwner revokes every live session of an owner.

Description: Security nuking of all active sessions, used by account
deletion and administrative suspension.

Parameters:
  - context: context.Context
  - owner: Owner
  - reason: string

Returns:
  - []*Session: Sessions revoked by this call
  - error: Batch revocation failures
*/
func (repository *PostgresSessionRepository) RevokeAllForOwner(context context.Context, owner Owner, reason string) ([]*Session, error) {
	const query = `
		UPDATE users.session
		SET revokedat = $3, revokedreason = $4, updatedat = $3
		WHERE ownerkind = $1 AND ownerid = $2
		  AND revokedat IS NULL AND expiresat > NOW()
		RETURNING ` + sessionColumns

	rows, err := repository.pool.Query(context, query,
		owner.Kind, owner.ID, time.Now(), reason)
	if err != nil {
		return nil, fmt.Errorf("postgres_session_repo_revoke_all_failed: %w", err)
	}
	defer rows.Close()

	return collectSessions(rows)
}

/*
ListByOwner returns all sessions belonging to an owner, newest first.

Parameters:
  - context: context.Context
  - owner: Owner

Returns:
  - []*Session: Hydrated entities
  - error: Retrieval failures
*/
func (repository *PostgresSessionRepository) ListByOwner(context context.Context, owner Owner) ([]*Session, error) {
	const query = `
		SELECT ` + sessionColumns + `
		FROM users.session
		WHERE ownerkind = $1 AND ownerid = $2
		ORDER BY (revokedat IS NULL) DESC, createdat DESC`

	rows, err := repository.pool.Query(context, query, owner.Kind, owner.ID)
	if err != nil {
		return nil, fmt.Errorf("postgres_session_repo_list_by_owner_failed: %w", err)
	}
	defer rows.Close()

	return collectSessions(rows)
}

/*
DeleteExpired permanently removes sessions long past their expiration.

Description: Janitor task to reclaim storage. The retention period keeps
recently expired rows around as audit records.

Parameters:
  - context: context.Context
  - retention: time.Duration

Returns:
  - int64: Number of rows purged
  - error: Cleanup failures
*/
func (repository *PostgresSessionRepository) DeleteExpired(context context.Context, retention time.Duration) (int64, error) {
	const query = "DELETE FROM users.session WHERE expiresat <= $1"

	cutoff := time.Now().Add(-retention)
	tag, err := repository.pool.Exec(context, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("postgres_session_repo_delete_expired_failed: %w", err)
	}

	return tag.RowsAffected(), nil
}

// collectSessions drains a pgx row set into hydrated entities.
func collectSessions(rows pgx.Rows) ([]*Session, error) {
	sessions := []*Session{}
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres_session_repo_scan_failed: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_session_repo_rows_failed: %w", err)
	}
	return sessions, nil
}

// # Revocation Log Repository

// PostgresRevocationLogRepository implements the RevocationLogRepository interface.
type PostgresRevocationLogRepository struct {
	pool *pgxpool.Pool
}

// NewRevocationLogRepository creates a new PostgreSQL implementation of RevocationLogRepository.
func NewRevocationLogRepository(pool *pgxpool.Pool) *PostgresRevocationLogRepository {
	return &PostgresRevocationLogRepository{pool: pool}
}

/*
Upsert records a revocation keyed by session ID.

Description: ON CONFLICT keeps the log append-only from the reader's
perspective while making repeated revocations of one session collapse into
a single entry.

Parameters:
  - context: context.Context
  - entry: *RevocationEntry

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRevocationLogRepository) Upsert(context context.Context, entry *RevocationEntry) error {
	const query = `
		INSERT INTO users.session_revocation (
			sessionid, ownerkind, ownerid, revokedat, revokedby, reason
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (sessionid) DO UPDATE
		SET revokedat = EXCLUDED.revokedat,
		    revokedby = EXCLUDED.revokedby,
		    reason = EXCLUDED.reason`

	_, err := repository.pool.Exec(context, query,
		entry.SessionID,
		entry.OwnerKind,
		entry.OwnerID,
		entry.RevokedAt,
		entry.RevokedBy,
		entry.Reason,
	)

	if err != nil {
		return fmt.Errorf("postgres_revocation_log_repo_upsert_failed: %w", err)
	}

	return nil
}

/*
ListByOwner returns the owner's revocation history, newest first.

Parameters:
  - context: context.Context
  - owner: Owner

Returns:
  - []*RevocationEntry: Hydrated entries
  - error: Retrieval failures
*/
func (repository *PostgresRevocationLogRepository) ListByOwner(context context.Context, owner Owner) ([]*RevocationEntry, error) {
	const query = `
		SELECT sessionid, ownerkind, ownerid, revokedat, revokedby, reason
		FROM users.session_revocation
		WHERE ownerkind = $1 AND ownerid = $2
		ORDER BY revokedat DESC`

	rows, err := repository.pool.Query(context, query, owner.Kind, owner.ID)
	if err != nil {
		return nil, fmt.Errorf("postgres_revocation_log_repo_list_failed: %w", err)
	}
	defer rows.Close()

	entries := []*RevocationEntry{}
	for rows.Next() {
		entry := &RevocationEntry{}
		err := rows.Scan(
			&entry.SessionID,
			&entry.OwnerKind,
			&entry.OwnerID,
			&entry.RevokedAt,
			&entry.RevokedBy,
			&entry.Reason,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres_revocation_log_repo_scan_failed: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_revocation_log_repo_rows_failed: %w", err)
	}

	return entries, nil
}
