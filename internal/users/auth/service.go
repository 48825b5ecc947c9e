// Copyright (c) 2026 Taskora. All rights reserved.
// Author: duyan.pham.vn@gmail.com

/*
Service layer for the credential and session lifecycle.

It handles everything from member enrollment and secure password hashing to
refresh-token rotation and revocation across devices.

Architecture:

  - Service: Orchestrates the lifecycle (Join, Login, Guest, Rotate, Revoke).
  - Repository: Abstracted interfaces for Postgres (accounts, sessions) and
    Redis (access-token denylist).
  - Security: Bcrypt password hashes, RSA-signed JWTs, and opaque
    selector.verifier refresh tokens of which only a digest is stored.

The service guarantees that no lifecycle operation ever discloses whether an
identifier exists: bad credentials of every shape collapse into one generic
unauthorized error.
*/
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/phamduyan/taskora/internal/platform/apperr"
	"github.com/phamduyan/taskora/internal/platform/constants"
	"github.com/phamduyan/taskora/internal/platform/sec"
	"github.com/phamduyan/taskora/pkg/normalize"
	"github.com/phamduyan/taskora/pkg/uuid"
)

// # Contracts & Types

// TokenProvider defines the contract for generating signed access tokens.
type TokenProvider interface {
	// GenerateAccessToken creates a signed JWT string for the given identity.
	//
	// # Parameters
	//   - userID: The owner identity embedded in the token.
	//   - role: The access-control role of the owner.
	//   - sessionID: The session this token descends from.
	//   - timeToLive: The duration before the token expires.
	//
	// # Returns
	//   - The signed JWT string, its unique token ID (jti), or a signing err.
	GenerateAccessToken(userID, role, sessionID string, timeToLive time.Duration) (string, string, error)
}

// Config carries the injected lifetimes of issued credentials.
type Config struct {
	AccessTokenTTL time.Duration
	RefreshWindow  time.Duration
}

// Service implements the credential and session lifecycle use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, issuance,
// or rotation logic must be reviewed by the security team.
type Service struct {
	principalRepository  PrincipalRepository
	sessionRepository    SessionRepository
	revocationRepository RevocationLogRepository
	denyList             DenyList
	tokenProvider        TokenProvider
	accessTokenTTL       time.Duration
	refreshWindow        time.Duration
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(
	principalRepo PrincipalRepository,
	sessionRepo SessionRepository,
	revocationRepo RevocationLogRepository,
	denyList DenyList,
	tokenProv TokenProvider,
	config Config,
) *Service {
	if config.AccessTokenTTL <= 0 {
		config.AccessTokenTTL = DefaultAccessTokenTTL
	}
	if config.RefreshWindow <= 0 {
		config.RefreshWindow = DefaultRefreshWindow
	}

	return &Service{
		principalRepository:  principalRepo,
		sessionRepository:    sessionRepo,
		revocationRepository: revocationRepo,
		denyList:             denyList,
		tokenProvider:        tokenProv,
		accessTokenTTL:       config.AccessTokenTTL,
		refreshWindow:        config.RefreshWindow,
	}
}

// errInvalidGrant is the single client-visible error for every issuance and
// rotation failure that involves a credential. One message for unknown
// identifier, wrong password, unknown selector, stale verifier, revoked or
// expired session, and lost rotation races. Anything more specific would
// hand an attacker an oracle.
func errInvalidGrant() error {
	return apperr.Unauthorized("Invalid or expired credentials")
}

// # Enrollment Flow

// JoinInput holds the data required to enroll a new member.
type JoinInput struct {
	Email       string
	Password    string
	DisplayName string
	UserAgent   string
	IPAddress   string
}

/*
Join validates, hashes, and persists a brand new member account, then issues
its first session.

Description: Deep-enrollment of a new member. Enrollment is the one flow
allowed to disclose identifier existence (as a Conflict), because the caller
necessarily knows the email they typed.

Parameters:
  - context: context.Context
  - input: JoinInput

Returns:
  - *IssuedSession: Created account plus its first token pair
  - err: Conflict (if identity exists) or storage errors
*/
func (service *Service) Join(context context.Context, input JoinInput) (*IssuedSession, error) {

	// Canonicalize the email so visually identical identifiers collapse
	// into one account.
	email := normalize.Email(input.Email)

	// Verify email uniqueness. Return a client-safe Conflict err.
	_, err := service.principalRepository.FindByEmail(context, email)
	if err == nil {
		return nil, apperr.Conflict("Email is already registered")
	}

	// Prevent storing plain-text passwords. Default cost is used for balance
	// between security and CPU utilization during enrollment spikes.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// Construct the new Principal. Time-sortable ID to prevent PG index fragmentation.
	principal := &Principal{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hashedPassword,
		DisplayName:  normalize.DisplayName(input.DisplayName),
		Role:         sec.RoleMember,
		IsVerified:   false,
	}

	// Persist the account. A concurrent Join with the same email loses here
	// on the unique index and surfaces as Conflict.
	if err := service.principalRepository.Create(context, principal); err != nil {
		return nil, err
	}

	return service.issueSession(context, Owner{Kind: OwnerKindMember, ID: principal.ID}, principal, input.UserAgent, input.IPAddress)
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Email     string
	Password  string
	UserAgent string
	IPAddress string
}

/*
Login validates member credentials and issues a fresh session.

Description: Verifies identity with constant-time password comparison and
initializes a new session with a rotated token pair. Unknown email and wrong
password are indistinguishable to the caller, in error kind and in timing.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *IssuedSession: Transport-ready session credentials
  - err: Unauthorized, Forbidden (unusable account), or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*IssuedSession, error) {

	// Canonicalize before lookup so login accepts the same spellings Join did.
	email := normalize.Email(input.Email)

	principal, err := service.principalRepository.FindByEmail(context, email)

	// If (err != nil) the account does not exist. Burn a bcrypt comparison
	// against a fixed hash so the miss costs the same as a wrong password,
	// then fail with the generic credential error.
	if err != nil {
		sec.CheckPasswordHash(input.Password, sec.DummyPasswordHash)
		return nil, errInvalidGrant()
	}

	// Verify password hash using constant-time comparison in bcrypt to prevent timing attacks
	if !sec.CheckPasswordHash(input.Password, principal.PasswordHash) {
		return nil, errInvalidGrant()
	}

	// Account state is checked only AFTER the password verified: the caller
	// has proven they own the account, so disclosing suspension is safe.
	if !principal.IsUsable() {
		return nil, apperr.Forbidden("Account is not available for sign-in")
	}

	ownerKind := OwnerKindMember
	if principal.Role == sec.RoleAdmin {
		ownerKind = OwnerKindAdmin
	}

	return service.issueSession(context, Owner{Kind: ownerKind, ID: principal.ID}, principal, input.UserAgent, input.IPAddress)
}

// GuestInput holds the client metadata for an anonymous-flow session.
type GuestInput struct {
	UserAgent string
	IPAddress string
}

/*
Guest issues a session for the anonymous flow.

Description: Generates a fresh guest owner identity with no backing account
row and issues a guest-role token pair against it. Guests graduate to
members only through Join.

Parameters:
  - context: context.Context
  - input: GuestInput

Returns:
  - *IssuedSession: Guest session credentials (Principal is nil)
  - err: Internal failures
*/
func (service *Service) Guest(context context.Context, input GuestInput) (*IssuedSession, error) {

	// A guest owner ID exists only for the lifetime of its sessions.
	owner := Owner{Kind: OwnerKindGuest, ID: uuid.New()}

	return service.issueSession(context, owner, nil, input.UserAgent, input.IPAddress)
}

// issueSession mints a token pair and persists its session row.
//
// Shared tail of Join, Login, and Guest. The refresh token leaves this
// function exactly once; only its verifier digest is stored.
func (service *Service) issueSession(context context.Context, owner Owner, principal *Principal, userAgent, ipAddress string) (*IssuedSession, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	sessionID := uuid.New()

	// Generate short-lived Access Token bound to this session
	accessToken, tokenID, err := service.tokenProvider.GenerateAccessToken(owner.ID, string(owner.Role()), sessionID, service.accessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	// Generate the opaque selector.verifier refresh token
	refreshToken, err := sec.NewOpaqueToken()
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	// Create and persist the tracking session
	now := time.Now()
	expiresAt := now.Add(service.refreshWindow)
	session := &Session{
		ID:            sessionID,
		OwnerKind:     owner.Kind,
		OwnerID:       owner.ID,
		TokenSelector: refreshToken.Selector,
		TokenHash:     refreshToken.VerifierHash,
		AccessTokenID: tokenID,
		UserAgent:     userAgent,
		IPAddress:     ipAddress,
		ExpiresAt:     expiresAt,
		LastUsedAt:    now,
	}

	if err := service.sessionRepository.Create(context, session); err != nil {
		return nil, fmt.Errorf("auth_service_session_creation_failed: %w", err)
	}

	return &IssuedSession{
		SessionID: sessionID,
		Owner:     owner,
		Principal: principal,
		Tokens: TokenPair{
			AccessToken:      accessToken,
			RefreshToken:     refreshToken.Token,
			ExpiredAt:        now.Add(service.accessTokenTTL),
			RefreshableUntil: expiresAt,
		},
	}, nil
}

// # Rotation Flow

/*
Rotate implements the refresh-token rotation mechanism.

Description: Resolves the presented token by its selector, verifies the
secret half in constant time, and atomically swaps the session's credential
in place. The swap is a compare-and-swap on the stored digest, so when two
holders of the same stale secret race, exactly one wins; the loser receives
the same generic error as any other invalid credential.

Parameters:
  - context: context.Context
  - refreshToken: string (opaque selector.verifier)
  - userAgent: string
  - ipAddress: string

Returns:
  - *IssuedSession: New credentials on the SAME session lineage
  - err: Unauthorized (all credential failures) or storage failures
*/
func (service *Service) Rotate(context context.Context, refreshToken, userAgent, ipAddress string) (*IssuedSession, error) {

	// Split into the indexed selector and the secret verifier.
	selector, verifier, ok := sec.SplitToken(refreshToken)
	if !ok {
		return nil, errInvalidGrant()
	}

	// Indexed lookup. Revoked and expired sessions never resolve.
	session, err := service.sessionRepository.FindBySelector(context, selector)
	if err != nil {
		return nil, errInvalidGrant()
	}

	// Constant-time digest comparison of the secret half.
	if !sec.VerifyTokenHash(verifier, session.TokenHash) {
		return nil, errInvalidGrant()
	}

	// Account-backed owners must still be usable. Guests have no account to
	// check. Every failure here stays generic: a rotation caller has not
	// proven account ownership the way a password login has.
	owner := session.Owner()
	var principal *Principal
	if owner.IsAccountBacked() {
		principal, err = service.principalRepository.FindByID(context, owner.ID)
		if err != nil || !principal.IsUsable() {
			return nil, errInvalidGrant()
		}
	}

	// Mint the replacement credential pair.
	accessToken, tokenID, err := service.tokenProvider.GenerateAccessToken(owner.ID, string(owner.Role()), session.ID, service.accessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_rotate_access_token_failed: %w", err)
	}

	newRefreshToken, err := sec.NewOpaqueToken()
	if err != nil {
		return nil, fmt.Errorf("auth_service_rotate_refresh_token_failed: %w", err)
	}

	// Mutate the SAME session row: new selector, new digest, new access
	// token ID, refreshed client metadata, and a window that slides forward.
	now := time.Now()
	previousHash := session.TokenHash
	session.TokenSelector = newRefreshToken.Selector
	session.TokenHash = newRefreshToken.VerifierHash
	session.AccessTokenID = tokenID
	session.UserAgent = userAgent
	session.IPAddress = ipAddress
	session.ExpiresAt = now.Add(service.refreshWindow)

	// Compare-and-swap against the digest we verified above. A lost race
	// surfaces as NotFound from the repository and leaves as the generic
	// credential error.
	if err := service.sessionRepository.Rotate(context, session, previousHash); err != nil {
		if apperr.IsNotFound(err) {
			return nil, errInvalidGrant()
		}
		return nil, fmt.Errorf("auth_service_rotate_swap_failed: %w", err)
	}

	return &IssuedSession{
		SessionID: session.ID,
		Owner:     owner,
		Principal: principal,
		Tokens: TokenPair{
			AccessToken:      accessToken,
			RefreshToken:     newRefreshToken.Token,
			ExpiredAt:        now.Add(service.accessTokenTTL),
			RefreshableUntil: session.ExpiresAt,
		},
	}, nil
}

// # Revocation Flow

/*
Revoke permanently invalidates a session.

Description: Idempotent logout. Revoking an already-revoked session succeeds
and reports the original revocation facts. The session's most recent access
token is denylisted so it dies with the session instead of coasting to its
natural expiry.

Parameters:
  - context: context.Context
  - sessionID: string
  - revokedBy: string (owner ID of the caller)
  - reason: string (one of the canonical Reason constants)

Returns:
  - *RevocationReceipt: Proof of revocation
  - err: NotFound (unknown session) or storage failures
*/
func (service *Service) Revoke(context context.Context, sessionID, revokedBy, reason string) (*RevocationReceipt, error) {
	if reason == "" {
		reason = ReasonLogout
	}

	// A session that never existed is the one revocation failure that is
	// allowed to say so.
	session, err := service.sessionRepository.FindByID(context, sessionID)
	if err != nil {
		return nil, err
	}

	// Already revoked: succeed with the original facts.
	if session.IsRevoked() {
		return &RevocationReceipt{
			SessionID: session.ID,
			RevokedAt: *session.RevokedAt,
			RevokedBy: revokedBy,
			Reason:    session.RevokedReason,
		}, nil
	}

	now := time.Now()
	if err := service.sessionRepository.Revoke(context, session.ID, reason, now); err != nil {
		return nil, fmt.Errorf("auth_service_revoke_failed: %w", err)
	}

	service.recordRevocation(context, session, revokedBy, reason, now)

	return &RevocationReceipt{
		SessionID: session.ID,
		RevokedAt: now,
		RevokedBy: revokedBy,
		Reason:    reason,
	}, nil
}

/*
RevokeOthers revokes every live sibling session of the caller's owner.

Description: The caller's own session is always excluded, so the device
performing the sweep stays signed in. Running it twice is harmless; the
second sweep finds nothing to revoke and still succeeds.

Parameters:
  - context: context.Context
  - owner: Owner
  - currentSessionID: string

Returns:
  - *RevokeOthersResult: Count and IDs of the sessions revoked by this call
  - err: Unauthorized (anonymous owner) or storage failures
*/
func (service *Service) RevokeOthers(context context.Context, owner Owner, currentSessionID string) (*RevokeOthersResult, error) {

	// Anonymous owners hold no sessions to sweep.
	if owner.IsAnonymous() {
		return nil, apperr.Unauthorized("Authentication required")
	}
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	revoked, err := service.sessionRepository.RevokeOthers(context, owner, currentSessionID, ReasonRevokeOthers)
	if err != nil {
		return nil, fmt.Errorf("auth_service_revoke_others_failed: %w", err)
	}

	now := time.Now()
	revokedIDs := make([]string, 0, len(revoked))
	for _, session := range revoked {
		revokedIDs = append(revokedIDs, session.ID)
		service.recordRevocation(context, session, owner.ID, ReasonRevokeOthers, now)
	}

	return &RevokeOthersResult{
		Success:              true,
		RevokedSessionsCount: len(revokedIDs),
		RevokedSessionIDs:    revokedIDs,
	}, nil
}

/*
RevokeAll revokes every live session of an owner.

Description: Security nuking used by account deletion and administrative
suspension. Unlike RevokeOthers, nothing is excluded.

Parameters:
  - context: context.Context
  - owner: Owner
  - revokedBy: string
  - reason: string

Returns:
  - int: Number of sessions revoked by this call
  - err: Storage failures
*/
func (service *Service) RevokeAll(context context.Context, owner Owner, revokedBy, reason string) (int, error) {
	if reason == "" {
		reason = ReasonAdminAction
	}

	revoked, err := service.sessionRepository.RevokeAllForOwner(context, owner, reason)
	if err != nil {
		return 0, fmt.Errorf("auth_service_revoke_all_failed: %w", err)
	}

	now := time.Now()
	for _, session := range revoked {
		service.recordRevocation(context, session, revokedBy, reason, now)
	}

	return len(revoked), nil
}

// recordRevocation feeds the read model and the access-token denylist.
//
// Both effects are best-effort: the session row already carries the
// authoritative revocation stamp, and a missed denylist entry only means
// the access token lives out its short natural TTL.
func (service *Service) recordRevocation(context context.Context, session *Session, revokedBy, reason string, revokedAt time.Time) {
	_ = service.revocationRepository.Upsert(context, &RevocationEntry{
		SessionID: session.ID,
		OwnerKind: session.OwnerKind,
		OwnerID:   session.OwnerID,
		RevokedAt: revokedAt,
		RevokedBy: revokedBy,
		Reason:    reason,
	})

	if session.AccessTokenID != "" {
		_ = service.denyList.Add(context, session.AccessTokenID, service.accessTokenTTL)
	}
}

// # Session Introspection

/*
ListSessions returns the owner's sessions, live first, newest first.

Parameters:
  - context: context.Context
  - owner: Owner

Returns:
  - []*Session: Hydrated entities
  - err: Storage failures
*/
func (service *Service) ListSessions(context context.Context, owner Owner) ([]*Session, error) {
	if owner.IsAnonymous() {
		return nil, apperr.Unauthorized("Authentication required")
	}
	return service.sessionRepository.ListByOwner(context, owner)
}

/*
RevocationHistory returns the owner's revocation read model, newest first.

Parameters:
  - context: context.Context
  - owner: Owner

Returns:
  - []*RevocationEntry: Append-only revocation records
  - err: Storage failures
*/
func (service *Service) RevocationHistory(context context.Context, owner Owner) ([]*RevocationEntry, error) {
	if owner.IsAnonymous() {
		return nil, apperr.Unauthorized("Authentication required")
	}
	return service.revocationRepository.ListByOwner(context, owner)
}

// # Maintenance

/*
PurgeExpired physically removes sessions long past their expiry.

Description: Janitor entry point. Lifecycle operations never delete rows;
only this purge does, and only once the retention period has lapsed.

Parameters:
  - context: context.Context

Returns:
  - int64: Number of rows purged
  - err: Storage failures
*/
func (service *Service) PurgeExpired(context context.Context) (int64, error) {
	return service.sessionRepository.DeleteExpired(context, constants.SessionPurgeRetention)
}
