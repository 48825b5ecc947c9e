// Copyright (c) 2026 Taskora. All rights reserved.
// Author: duyan.pham.vn@gmail.com

package account

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phamduyan/taskora/internal/platform/apperr"
	"github.com/phamduyan/taskora/internal/platform/sec"
	"github.com/phamduyan/taskora/pkg/normalize"

	"github.com/phamduyan/taskora/internal/users/auth"
)

// # Service Layer

// Service orchestrates business logic for account self-service.
//
// It ensures that profile updates and account deletion keep the session
// security state consistent: a deleted account holds no live sessions.
type Service struct {
	principalRepository auth.PrincipalRepository
	authService         *auth.Service
	logger              *slog.Logger
}

// NewService constructs a new [Service] with its dependencies.
func NewService(
	principalRepo auth.PrincipalRepository,
	authService *auth.Service,
	logger *slog.Logger,
) *Service {
	return &Service{
		principalRepository: principalRepo,
		authService:         authService,
		logger:              logger,
	}
}

// # Profile Management

/*
GetProfile retrieves the full private identity of an account.

Parameters:
  - context: context.Context
  - principalID: string

Returns:
  - *auth.Principal: The hydrated profile
  - error: Not found or execution failures
*/
func (service *Service) GetProfile(context context.Context, principalID string) (*auth.Principal, error) {
	principal, err := service.principalRepository.FindByID(context, principalID)
	if err != nil {
		return nil, err
	}
	return principal, nil
}

// UpdateProfileInput defines the mutable subset of profile fields.
type UpdateProfileInput struct {
	DisplayName *string
}

/*
UpdateProfile applies a partial set of changes to an account's metadata.

Description: Fetches the existing state, overrides provided fields, and
synchronizes the change to persistent storage.

Parameters:
  - context: context.Context
  - principalID: string
  - input: UpdateProfileInput

Returns:
  - *auth.Principal: The updated profile
  - error: Update or storage failures
*/
func (service *Service) UpdateProfile(context context.Context, principalID string, input UpdateProfileInput) (*auth.Principal, error) {
	principal, err := service.principalRepository.FindByID(context, principalID)
	if err != nil {
		return nil, err
	}

	// Apply delta updates
	if input.DisplayName != nil {
		principal.DisplayName = normalize.DisplayName(*input.DisplayName)
	}

	// Persist changes
	if err := service.principalRepository.Update(context, principal); err != nil {
		return nil, fmt.Errorf("account_service_update_failed: %w", err)
	}

	service.logger.Info("account_profile_updated", slog.String("principal_id", principalID))

	return principal, nil
}

/*
DeleteAccount soft-deletes an account and revokes every session it owns.

Description: The account row is retained for audit (deletedat stamp); the
session sweep guarantees no credential issued to the account outlives it.

Parameters:
  - context: context.Context
  - principalID: string

Returns:
  - error: Deletion or revocation failures
*/
func (service *Service) DeleteAccount(context context.Context, principalID string) error {
	principal, err := service.principalRepository.FindByID(context, principalID)
	if err != nil {
		return err
	}

	if err := service.principalRepository.SoftDelete(context, principal.ID); err != nil {
		return fmt.Errorf("account_service_delete_failed: %w", err)
	}

	owner := auth.Owner{Kind: auth.OwnerKindMember, ID: principal.ID}
	if principal.Role == sec.RoleAdmin {
		owner.Kind = auth.OwnerKindAdmin
	}

	revoked, err := service.authService.RevokeAll(context, owner, principal.ID, auth.ReasonAccountDeleted)
	if err != nil {
		return fmt.Errorf("account_service_delete_revoke_failed: %w", err)
	}

	service.logger.Info("account_deleted",
		slog.String("principal_id", principalID),
		slog.Int("sessions_revoked", revoked),
	)

	return nil
}

// # Session Control Panel

/*
ListSessions returns the caller's sessions, live first, newest first.

Parameters:
  - context: context.Context
  - owner: auth.Owner

Returns:
  - []*auth.Session: Hydrated entities
  - error: Storage failures
*/
func (service *Service) ListSessions(context context.Context, owner auth.Owner) ([]*auth.Session, error) {
	return service.authService.ListSessions(context, owner)
}

/*
RevokeSession revokes one of the caller's sessions by ID.

Description: Ownership is enforced: revoking a session that belongs to a
different owner answers NotFound, never Forbidden, to avoid confirming the
session exists.

Parameters:
  - context: context.Context
  - owner: auth.Owner (the caller)
  - sessionID: string

Returns:
  - *auth.RevocationReceipt: Proof of revocation
  - error: NotFound or storage failures
*/
func (service *Service) RevokeSession(context context.Context, owner auth.Owner, sessionID string) (*auth.RevocationReceipt, error) {
	sessions, err := service.authService.ListSessions(context, owner)
	if err != nil {
		return nil, err
	}

	for _, session := range sessions {
		if session.ID == sessionID {
			return service.authService.Revoke(context, sessionID, owner.ID, auth.ReasonAdminAction)
		}
	}

	return nil, apperr.NotFound("Session not found")
}

/*
RevocationHistory returns the caller's revocation read model.

Parameters:
  - context: context.Context
  - owner: auth.Owner

Returns:
  - []*auth.RevocationEntry: Append-only revocation records
  - error: Storage failures
*/
func (service *Service) RevocationHistory(context context.Context, owner auth.Owner) ([]*auth.RevocationEntry, error) {
	return service.authService.RevocationHistory(context, owner)
}
