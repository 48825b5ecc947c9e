// Copyright (c) 2026 Taskora. All rights reserved.
// Author: duyan.pham.vn@gmail.com

package auth_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phamduyan/taskora/internal/platform/apperr"
	"github.com/phamduyan/taskora/internal/platform/sec"
	"github.com/phamduyan/taskora/internal/users/auth"
)

// # In-Memory Fakes

type fakePrincipalRepo struct {
	mu      sync.Mutex
	byID    map[string]*auth.Principal
	byEmail map[string]*auth.Principal
}

func newFakePrincipalRepo() *fakePrincipalRepo {
	return &fakePrincipalRepo{
		byID:    map[string]*auth.Principal{},
		byEmail: map[string]*auth.Principal{},
	}
}

func clonePrincipal(p *auth.Principal) *auth.Principal {
	c := *p
	return &c
}

func (r *fakePrincipalRepo) FindByID(_ context.Context, id string) (*auth.Principal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, apperr.NotFound("Account not found")
	}
	return clonePrincipal(p), nil
}

func (r *fakePrincipalRepo) FindByEmail(_ context.Context, email string) (*auth.Principal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byEmail[email]
	if !ok {
		return nil, apperr.NotFound("Account not found with this email")
	}
	return clonePrincipal(p), nil
}

func (r *fakePrincipalRepo) Create(_ context.Context, p *auth.Principal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byEmail[p.Email]; exists {
		return apperr.Conflict("Email is already registered")
	}
	stored := clonePrincipal(p)
	r.byID[p.ID] = stored
	r.byEmail[p.Email] = stored
	return nil
}

func (r *fakePrincipalRepo) Update(_ context.Context, p *auth.Principal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byID[p.ID]
	if !ok {
		return apperr.NotFound("Account not found")
	}
	stored.DisplayName = p.DisplayName
	stored.IsVerified = p.IsVerified
	stored.IsSuspended = p.IsSuspended
	return nil
}

func (r *fakePrincipalRepo) SoftDelete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if ok {
		delete(r.byEmail, p.Email)
		delete(r.byID, id)
	}
	return nil
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*auth.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[string]*auth.Session{}}
}

func cloneSession(s *auth.Session) *auth.Session {
	c := *s
	if s.RevokedAt != nil {
		t := *s.RevokedAt
		c.RevokedAt = &t
	}
	return &c
}

func (r *fakeSessionRepo) Create(_ context.Context, s *auth.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = cloneSession(s)
	return nil
}

func (r *fakeSessionRepo) FindBySelector(_ context.Context, selector string) (*auth.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.TokenSelector == selector && s.IsActive(time.Now()) {
			return cloneSession(s), nil
		}
	}
	return nil, apperr.NotFound("Session not found or expired")
}

func (r *fakeSessionRepo) FindByID(_ context.Context, id string) (*auth.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, apperr.NotFound("Session not found")
	}
	return cloneSession(s), nil
}

func (r *fakeSessionRepo) Rotate(_ context.Context, s *auth.Session, previousTokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.sessions[s.ID]
	if !ok || stored.TokenHash != previousTokenHash || !stored.IsActive(time.Now()) {
		return apperr.NotFound("Session not found or already rotated")
	}
	stored.TokenSelector = s.TokenSelector
	stored.TokenHash = s.TokenHash
	stored.AccessTokenID = s.AccessTokenID
	stored.UserAgent = s.UserAgent
	stored.IPAddress = s.IPAddress
	stored.ExpiresAt = s.ExpiresAt
	stored.LastUsedAt = time.Now()
	return nil
}

func (r *fakeSessionRepo) Revoke(_ context.Context, sessionID string, reason string, revokedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if ok && s.RevokedAt == nil {
		t := revokedAt
		s.RevokedAt = &t
		s.RevokedReason = reason
	}
	return nil
}

func (r *fakeSessionRepo) RevokeOthers(_ context.Context, owner auth.Owner, currentSessionID string, reason string) ([]*auth.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	revoked := []*auth.Session{}
	for _, s := range r.sessions {
		if s.OwnerKind == owner.Kind && s.OwnerID == owner.ID && s.ID != currentSessionID && s.IsActive(now) {
			t := now
			s.RevokedAt = &t
			s.RevokedReason = reason
			revoked = append(revoked, cloneSession(s))
		}
	}
	return revoked, nil
}

func (r *fakeSessionRepo) RevokeAllForOwner(_ context.Context, owner auth.Owner, reason string) ([]*auth.Session, error) {
	return r.RevokeOthers(context.Background(), owner, "", reason)
}

func (r *fakeSessionRepo) ListByOwner(_ context.Context, owner auth.Owner) ([]*auth.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*auth.Session{}
	for _, s := range r.sessions {
		if s.OwnerKind == owner.Kind && s.OwnerID == owner.ID {
			out = append(out, cloneSession(s))
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) DeleteExpired(_ context.Context, retention time.Duration) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := time.Now().Add(-retention)
	var purged int64
	for id, s := range r.sessions {
		if s.ExpiresAt.Before(cutoff) {
			delete(r.sessions, id)
			purged++
		}
	}
	return purged, nil
}

type fakeRevocationLog struct {
	mu      sync.Mutex
	entries map[string]*auth.RevocationEntry
}

func newFakeRevocationLog() *fakeRevocationLog {
	return &fakeRevocationLog{entries: map[string]*auth.RevocationEntry{}}
}

func (r *fakeRevocationLog) Upsert(_ context.Context, entry *auth.RevocationEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *entry
	r.entries[entry.SessionID] = &c
	return nil
}

func (r *fakeRevocationLog) ListByOwner(_ context.Context, owner auth.Owner) ([]*auth.RevocationEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*auth.RevocationEntry{}
	for _, e := range r.entries {
		if e.OwnerKind == owner.Kind && e.OwnerID == owner.ID {
			c := *e
			out = append(out, &c)
		}
	}
	return out, nil
}

type fakeDenyList struct {
	mu      sync.Mutex
	tokenID map[string]bool
}

func newFakeDenyList() *fakeDenyList {
	return &fakeDenyList{tokenID: map[string]bool{}}
}

func (d *fakeDenyList) Add(_ context.Context, tokenID string, _ time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tokenID[tokenID] = true
	return nil
}

func (d *fakeDenyList) Contains(_ context.Context, tokenID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tokenID[tokenID], nil
}

// fakeTokenProvider mints deterministic token strings with unique IDs.
type fakeTokenProvider struct {
	counter atomic.Int64
}

func (p *fakeTokenProvider) GenerateAccessToken(userID, role, sessionID string, _ time.Duration) (string, string, error) {
	n := p.counter.Add(1)
	return fmt.Sprintf("access.%s.%s.%d", userID, sessionID, n), fmt.Sprintf("jti-%d", n), nil
}

// # Test Harness

type harness struct {
	service    *auth.Service
	principals *fakePrincipalRepo
	sessions   *fakeSessionRepo
	log        *fakeRevocationLog
	denyList   *fakeDenyList
}

func newHarness() *harness {
	principals := newFakePrincipalRepo()
	sessions := newFakeSessionRepo()
	log := newFakeRevocationLog()
	denyList := newFakeDenyList()

	service := auth.NewService(principals, sessions, log, denyList, &fakeTokenProvider{}, auth.Config{
		AccessTokenTTL: 15 * time.Minute,
		RefreshWindow:  7 * 24 * time.Hour,
	})

	return &harness{
		service:    service,
		principals: principals,
		sessions:   sessions,
		log:        log,
		denyList:   denyList,
	}
}

func (h *harness) join(t *testing.T, email, password string) *auth.IssuedSession {
	t.Helper()
	issued, err := h.service.Join(context.Background(), auth.JoinInput{
		Email:       email,
		Password:    password,
		DisplayName: "Tester",
		UserAgent:   "go-test",
		IPAddress:   "127.0.0.1",
	})
	require.NoError(t, err)
	return issued
}

// # Enrollment

/*
TestJoin_IssuesFirstSession verifies that enrollment creates the account and
hands back a complete token pair on a persisted session.
*/
func TestJoin_IssuesFirstSession(t *testing.T) {
	h := newHarness()

	issued := h.join(t, "ana@example.com", "correct horse battery")

	require.NotNil(t, issued.Principal)
	assert.Equal(t, "ana@example.com", issued.Principal.Email)
	assert.Equal(t, sec.RoleMember, issued.Principal.Role)
	assert.NotEqual(t, "correct horse battery", issued.Principal.PasswordHash)

	assert.Equal(t, auth.OwnerKindMember, issued.Owner.Kind)
	assert.Equal(t, issued.Principal.ID, issued.Owner.ID)

	assert.NotEmpty(t, issued.Tokens.AccessToken)
	assert.NotEmpty(t, issued.Tokens.RefreshToken)
	assert.True(t, issued.Tokens.RefreshableUntil.After(issued.Tokens.ExpiredAt))

	session, err := h.sessions.FindByID(context.Background(), issued.SessionID)
	require.NoError(t, err)
	assert.NotContains(t, issued.Tokens.RefreshToken, session.TokenHash,
		"stored hash must not appear inside the issued token")
}

/*
TestJoin_DuplicateEmail verifies that enrollment with a taken email fails
with Conflict, including spellings that normalize to the same address.
*/
func TestJoin_DuplicateEmail(t *testing.T) {
	h := newHarness()
	h.join(t, "ana@example.com", "correct horse battery")

	_, err := h.service.Join(context.Background(), auth.JoinInput{
		Email:    "  ANA@Example.COM ",
		Password: "another password",
	})

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "CONFLICT", ae.Code)
}

// # Authentication

/*
TestLogin_Succeeds verifies a full login round trip with a normalized email
spelling.
*/
func TestLogin_Succeeds(t *testing.T) {
	h := newHarness()
	h.join(t, "ana@example.com", "correct horse battery")

	issued, err := h.service.Login(context.Background(), auth.LoginInput{
		Email:    "Ana@Example.com",
		Password: "correct horse battery",
	})

	require.NoError(t, err)
	assert.Equal(t, auth.OwnerKindMember, issued.Owner.Kind)
	assert.NotEmpty(t, issued.Tokens.RefreshToken)
}

/*
TestLogin_NoEnumeration verifies that an unknown email and a wrong password
are indistinguishable: same error kind, same message.
*/
func TestLogin_NoEnumeration(t *testing.T) {
	h := newHarness()
	h.join(t, "ana@example.com", "correct horse battery")

	_, unknownErr := h.service.Login(context.Background(), auth.LoginInput{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	_, wrongErr := h.service.Login(context.Background(), auth.LoginInput{
		Email:    "ana@example.com",
		Password: "not the password",
	})

	require.Error(t, unknownErr)
	require.Error(t, wrongErr)

	unknownAE := apperr.As(unknownErr)
	wrongAE := apperr.As(wrongErr)
	require.NotNil(t, unknownAE)
	require.NotNil(t, wrongAE)

	assert.Equal(t, unknownAE.Code, wrongAE.Code)
	assert.Equal(t, unknownAE.Message, wrongAE.Message)
	assert.True(t, apperr.IsUnauthorized(unknownErr))
}

/*
TestLogin_SuspendedAccount verifies the disclosure ordering: a suspended
account answers Forbidden only to a correct password, and the generic
Unauthorized to a wrong one.
*/
func TestLogin_SuspendedAccount(t *testing.T) {
	h := newHarness()
	issued := h.join(t, "ana@example.com", "correct horse battery")

	principal, err := h.principals.FindByID(context.Background(), issued.Principal.ID)
	require.NoError(t, err)
	principal.IsSuspended = true
	require.NoError(t, h.principals.Update(context.Background(), principal))

	_, correctErr := h.service.Login(context.Background(), auth.LoginInput{
		Email:    "ana@example.com",
		Password: "correct horse battery",
	})
	_, wrongErr := h.service.Login(context.Background(), auth.LoginInput{
		Email:    "ana@example.com",
		Password: "not the password",
	})

	require.Error(t, correctErr)
	assert.Equal(t, "FORBIDDEN", apperr.As(correctErr).Code)

	require.Error(t, wrongErr)
	assert.True(t, apperr.IsUnauthorized(wrongErr))
}

/*
TestGuest_IssuesAnonymousFlowSession verifies the guest flow mints a fresh
owner identity per call with no backing account.
*/
func TestGuest_IssuesAnonymousFlowSession(t *testing.T) {
	h := newHarness()

	first, err := h.service.Guest(context.Background(), auth.GuestInput{})
	require.NoError(t, err)
	second, err := h.service.Guest(context.Background(), auth.GuestInput{})
	require.NoError(t, err)

	assert.Nil(t, first.Principal)
	assert.Equal(t, auth.OwnerKindGuest, first.Owner.Kind)
	assert.NotEmpty(t, first.Owner.ID)
	assert.NotEqual(t, first.Owner.ID, second.Owner.ID)
}

// # Rotation

/*
TestRotate_InvalidatesPriorSecret verifies the core rotation property: after
a successful rotation the previous refresh token is dead, the new one works,
and both live on the same session lineage.
*/
func TestRotate_InvalidatesPriorSecret(t *testing.T) {
	h := newHarness()
	issued := h.join(t, "ana@example.com", "correct horse battery")

	rotated, err := h.service.Rotate(context.Background(), issued.Tokens.RefreshToken, "go-test", "127.0.0.1")
	require.NoError(t, err)

	assert.Equal(t, issued.SessionID, rotated.SessionID, "rotation stays on the same session")
	assert.NotEqual(t, issued.Tokens.RefreshToken, rotated.Tokens.RefreshToken)

	// The superseded secret must fail with the generic credential error.
	_, err = h.service.Rotate(context.Background(), issued.Tokens.RefreshToken, "go-test", "127.0.0.1")
	require.Error(t, err)
	assert.True(t, apperr.IsUnauthorized(err))

	// The replacement keeps working.
	_, err = h.service.Rotate(context.Background(), rotated.Tokens.RefreshToken, "go-test", "127.0.0.1")
	require.NoError(t, err)
}

/*
TestRotate_FailureModesAreUniform verifies that malformed, unknown, and
revoked credentials all collapse into one identical unauthorized error.
*/
func TestRotate_FailureModesAreUniform(t *testing.T) {
	h := newHarness()
	issued := h.join(t, "ana@example.com", "correct horse battery")

	_, err := h.service.Revoke(context.Background(), issued.SessionID, issued.Owner.ID, auth.ReasonLogout)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"malformed", "no-separator-here"},
		{"empty", ""},
		{"unknown_selector", "AAAAAAAAAAAAAAAA.BBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBB"},
		{"revoked_session", issued.Tokens.RefreshToken},
	}

	var messages []string
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.service.Rotate(context.Background(), tt.token, "go-test", "127.0.0.1")
			require.Error(t, err)
			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.True(t, apperr.IsUnauthorized(err))
			messages = append(messages, ae.Message)
		})
	}

	for i := 1; i < len(messages); i++ {
		assert.Equal(t, messages[0], messages[i], "all rotation failures share one message")
	}
}

/*
TestRotate_SuspendedOwner verifies that a session belonging to a suspended
account can no longer rotate, and fails generically.
*/
func TestRotate_SuspendedOwner(t *testing.T) {
	h := newHarness()
	issued := h.join(t, "ana@example.com", "correct horse battery")

	principal, err := h.principals.FindByID(context.Background(), issued.Principal.ID)
	require.NoError(t, err)
	principal.IsSuspended = true
	require.NoError(t, h.principals.Update(context.Background(), principal))

	_, err = h.service.Rotate(context.Background(), issued.Tokens.RefreshToken, "go-test", "127.0.0.1")
	require.Error(t, err)
	assert.True(t, apperr.IsUnauthorized(err))
}

/*
TestRotate_ConcurrentRace verifies atomicity: many goroutines presenting the
same stale secret produce at most one winner.
*/
func TestRotate_ConcurrentRace(t *testing.T) {
	h := newHarness()
	issued := h.join(t, "ana@example.com", "correct horse battery")

	const racers = 16
	var wins atomic.Int64
	var wg sync.WaitGroup

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.service.Rotate(context.Background(), issued.Tokens.RefreshToken, "go-test", "127.0.0.1")
			if err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), wins.Load(), "exactly one concurrent rotation may win")
}

// # Revocation

/*
TestRevoke_IsIdempotent verifies that revoking twice succeeds and the second
receipt reports the original revocation facts.
*/
func TestRevoke_IsIdempotent(t *testing.T) {
	h := newHarness()
	issued := h.join(t, "ana@example.com", "correct horse battery")

	first, err := h.service.Revoke(context.Background(), issued.SessionID, issued.Owner.ID, auth.ReasonLogout)
	require.NoError(t, err)
	assert.Equal(t, issued.SessionID, first.SessionID)
	assert.Equal(t, auth.ReasonLogout, first.Reason)

	second, err := h.service.Revoke(context.Background(), issued.SessionID, issued.Owner.ID, auth.ReasonAdminAction)
	require.NoError(t, err)
	assert.Equal(t, first.RevokedAt, second.RevokedAt, "original timestamp survives re-revocation")
	assert.Equal(t, auth.ReasonLogout, second.Reason, "original reason survives re-revocation")
}

/*
TestRevoke_UnknownSession verifies the one revocation failure allowed to
disclose anything: a session that never existed is NotFound.
*/
func TestRevoke_UnknownSession(t *testing.T) {
	h := newHarness()

	_, err := h.service.Revoke(context.Background(), "does-not-exist", "caller", auth.ReasonLogout)
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
}

/*
TestRevoke_DenylistsAccessToken verifies the early-revocation decision: the
session's outstanding access token ID lands on the denylist.
*/
func TestRevoke_DenylistsAccessToken(t *testing.T) {
	h := newHarness()
	issued := h.join(t, "ana@example.com", "correct horse battery")

	session, err := h.sessions.FindByID(context.Background(), issued.SessionID)
	require.NoError(t, err)

	_, err = h.service.Revoke(context.Background(), issued.SessionID, issued.Owner.ID, auth.ReasonLogout)
	require.NoError(t, err)

	denied, err := h.denyList.Contains(context.Background(), session.AccessTokenID)
	require.NoError(t, err)
	assert.True(t, denied)

	// The read model carries the matching entry.
	entries, err := h.log.ListByOwner(context.Background(), issued.Owner)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, issued.SessionID, entries[0].SessionID)
}

/*
TestRevokeOthers_ExcludesSelf verifies the sweep touches every sibling but
never the caller's own session, and that a second sweep finds nothing.
*/
func TestRevokeOthers_ExcludesSelf(t *testing.T) {
	h := newHarness()
	first := h.join(t, "ana@example.com", "correct horse battery")

	login := func() *auth.IssuedSession {
		issued, err := h.service.Login(context.Background(), auth.LoginInput{
			Email:    "ana@example.com",
			Password: "correct horse battery",
		})
		require.NoError(t, err)
		return issued
	}
	second := login()
	third := login()

	result, err := h.service.RevokeOthers(context.Background(), third.Owner, third.SessionID)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 2, result.RevokedSessionsCount)
	assert.ElementsMatch(t, []string{first.SessionID, second.SessionID}, result.RevokedSessionIDs)
	assert.NotContains(t, result.RevokedSessionIDs, third.SessionID)

	// The caller's session still rotates.
	_, err = h.service.Rotate(context.Background(), third.Tokens.RefreshToken, "go-test", "127.0.0.1")
	require.NoError(t, err)

	// Idempotent: the second sweep is empty and still succeeds.
	again, err := h.service.RevokeOthers(context.Background(), third.Owner, third.SessionID)
	require.NoError(t, err)
	assert.True(t, again.Success)
	assert.Equal(t, 0, again.RevokedSessionsCount)
}

/*
TestRevokeOthers_AnonymousOwner verifies anonymous callers are rejected.
*/
func TestRevokeOthers_AnonymousOwner(t *testing.T) {
	h := newHarness()

	_, err := h.service.RevokeOthers(context.Background(), auth.Owner{Kind: auth.OwnerKindAnonymous}, "")
	require.Error(t, err)
	assert.True(t, apperr.IsUnauthorized(err))
}

// # End-to-End Scenarios

/*
TestScenario_MemberLifecycle walks the canonical member path: join, rotate,
logout, then confirm the rotated credential is dead.
*/
func TestScenario_MemberLifecycle(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	issued := h.join(t, "ana@example.com", "correct horse battery")

	rotated, err := h.service.Rotate(ctx, issued.Tokens.RefreshToken, "go-test", "127.0.0.1")
	require.NoError(t, err)

	receipt, err := h.service.Revoke(ctx, rotated.SessionID, rotated.Owner.ID, auth.ReasonLogout)
	require.NoError(t, err)
	assert.Equal(t, rotated.SessionID, receipt.SessionID)

	_, err = h.service.Rotate(ctx, rotated.Tokens.RefreshToken, "go-test", "127.0.0.1")
	require.Error(t, err)
	assert.True(t, apperr.IsUnauthorized(err))
}

/*
TestScenario_GuestAcrossDevices walks the guest path: a guest session
rotates like any other, and RevokeOthers from a member device leaves the
guest untouched because owners never overlap.
*/
func TestScenario_GuestAcrossDevices(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	guest, err := h.service.Guest(ctx, auth.GuestInput{})
	require.NoError(t, err)

	member := h.join(t, "ana@example.com", "correct horse battery")

	_, err = h.service.RevokeOthers(ctx, member.Owner, member.SessionID)
	require.NoError(t, err)

	rotated, err := h.service.Rotate(ctx, guest.Tokens.RefreshToken, "go-test", "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, guest.Owner, rotated.Owner)
}

/*
TestPurgeExpired verifies the janitor removes only sessions past retention.
*/
func TestPurgeExpired(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	live := h.join(t, "ana@example.com", "correct horse battery")

	stale := &auth.Session{
		ID:        "stale-session",
		OwnerKind: auth.OwnerKindGuest,
		OwnerID:   "ghost",
		ExpiresAt: time.Now().Add(-60 * 24 * time.Hour),
	}
	require.NoError(t, h.sessions.Create(ctx, stale))

	purged, err := h.service.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	_, err = h.sessions.FindByID(ctx, live.SessionID)
	assert.NoError(t, err, "live session survives the purge")
}
