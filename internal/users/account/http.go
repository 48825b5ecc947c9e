// Copyright (c) 2026 Taskora. All rights reserved.
// Author: duyan.pham.vn@gmail.com

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/phamduyan/taskora/internal/platform/middleware"
	requestutil "github.com/phamduyan/taskora/internal/platform/request"
	"github.com/phamduyan/taskora/internal/platform/respond"
	"github.com/phamduyan/taskora/internal/platform/sec"
	"github.com/phamduyan/taskora/internal/platform/validate"

	"github.com/phamduyan/taskora/internal/users/auth"
)

// # Definitions & Constructors

// Handler implements account self-service HTTP endpoints.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// Routes returns a [chi.Router] for the authenticated /me surface.
//
// # Endpoints
//   - GET    /me                    : Current profile.
//   - PATCH  /me                    : Partial profile update.
//   - DELETE /me                    : Account deletion (revokes all sessions).
//   - GET    /me/sessions           : Session control panel.
//   - DELETE /me/sessions/{id}      : Revoke one session.
//   - GET    /me/revocations        : Revocation history.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/me", handler.getProfile)
	router.Patch("/me", handler.updateProfile)
	router.Delete("/me", handler.deleteAccount)
	router.Get("/me/sessions", handler.listSessions)
	router.Delete("/me/sessions/{sessionID}", handler.revokeSession)
	router.Get("/me/revocations", handler.revocationHistory)

	return router
}

// # Request Payloads

type updateProfileRequest struct {
	DisplayName *string `json:"display_name"`
}

// callerOwner reconstructs the owner union from verified token claims.
func callerOwner(claims *sec.AuthClaims) auth.Owner {
	switch sec.UserRole(claims.Role) {
	case sec.RoleAdmin:
		return auth.Owner{Kind: auth.OwnerKindAdmin, ID: claims.UserID}
	case sec.RoleMember:
		return auth.Owner{Kind: auth.OwnerKindMember, ID: claims.UserID}
	default:
		return auth.Owner{Kind: auth.OwnerKindGuest, ID: claims.UserID}
	}
}

/*
GetProfile returns the caller's own profile.

GET /api/v1/users/me

Response:
  - 200: Principal: The caller's profile
  - 404: ErrNotFound: Guest callers have no profile
*/
func (handler *Handler) getProfile(writer http.ResponseWriter, request *http.Request) {
	principalID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	principal, err := handler.accountService.GetProfile(request.Context(), principalID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, principal)
}

/*
UpdateProfile applies a partial update to the caller's profile.

PATCH /api/v1/users/me

Request:
  - Body: updateProfileRequest (DisplayName)

Response:
  - 200: Principal: The updated profile
  - 400: ErrInvalidJSON: Bad input
*/
func (handler *Handler) updateProfile(writer http.ResponseWriter, request *http.Request) {
	principalID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateProfileRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if input.DisplayName != nil {
		validator := &validate.Validator{}
		validator.Required(FieldDisplayName, *input.DisplayName).
			MaxLen(FieldDisplayName, *input.DisplayName, 100)
		if err := validator.Err(); err != nil {
			respond.Error(writer, request, err)
			return
		}
	}

	principal, err := handler.accountService.UpdateProfile(request.Context(), principalID, UpdateProfileInput{
		DisplayName: input.DisplayName,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, principal)
}

/*
DeleteAccount soft-deletes the caller's account and revokes all sessions.

DELETE /api/v1/users/me

Response:
  - 204: No Content: Account deleted
*/
func (handler *Handler) deleteAccount(writer http.ResponseWriter, request *http.Request) {
	principalID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.accountService.DeleteAccount(request.Context(), principalID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
ListSessions returns the caller's session control panel.

GET /api/v1/users/me/sessions

Response:
  - 200: []Session: Live sessions first, newest first
*/
func (handler *Handler) listSessions(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	sessions, err := handler.accountService.ListSessions(request.Context(), callerOwner(claims))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, sessions)
}

/*
RevokeSession revokes one of the caller's sessions by ID.

DELETE /api/v1/users/me/sessions/{sessionID}

Response:
  - 200: RevocationReceipt: Proof of revocation
  - 404: ErrNotFound: Unknown session or not owned by the caller
*/
func (handler *Handler) revokeSession(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	sessionID := requestutil.Param(request, "sessionID")
	if sessionID == "" {
		respond.Error(writer, request, validate.RequiredError(FieldSessionID, "is required"))
		return
	}

	receipt, err := handler.accountService.RevokeSession(request.Context(), callerOwner(claims), sessionID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, receipt)
}

/*
RevocationHistory returns the caller's revocation read model.

GET /api/v1/users/me/revocations

Response:
  - 200: []RevocationEntry: Newest first
*/
func (handler *Handler) revocationHistory(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	entries, err := handler.accountService.RevocationHistory(request.Context(), callerOwner(claims))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, entries)
}
