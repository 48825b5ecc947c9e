// Copyright (c) 2026 Taskora. All rights reserved.
// Author: duyan.pham.vn@gmail.com

/*
HTTP delivery layer for the credential and session lifecycle.

It implements the gateway for the session lifecycle, from enrollment to
rotation and revocation.

# Architecture

The handler acts as a thin mediation layer between the web and domain services:
  - Protocol: Standard RESTful JSON interface.
  - Security: Handles JWT orchestration and refresh token cookie injection.
  - Verification: Enforces strict input validation before passing to [Service].

This layer is strictly responsible for transport concerns (status codes,
headers, JSON).
*/
package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/phamduyan/taskora/internal/platform/apperr"
	"github.com/phamduyan/taskora/internal/platform/constants"
	"github.com/phamduyan/taskora/internal/platform/middleware"
	requestutil "github.com/phamduyan/taskora/internal/platform/request"
	"github.com/phamduyan/taskora/internal/platform/respond"
	"github.com/phamduyan/taskora/internal/platform/sec"
	"github.com/phamduyan/taskora/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements session-lifecycle HTTP endpoints.
//
// # Scope
//
// This handler manages the lifecycle entry points (Join, Login, Guest) and
// the session control surface (Refresh, Logout, Revoke-Others).
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with lifecycle-specific routes.
//
// # Endpoints
//   - POST /join    : Enrolls a member and issues the first session.
//   - POST /login   : Authenticates and issues a session.
//   - POST /guest   : Issues an anonymous-flow guest session.
//   - POST /refresh : Rotates the refresh token from the cookie.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/join", handler.join)
	router.Post("/login", handler.login)
	router.Post("/guest", handler.guest)
	router.Post("/refresh", handler.refresh)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/logout", handler.logout)
		r.Post("/revoke-others", handler.revokeOthers)
	})

	return router
}

// # Request Payloads

type joinRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// # Cookie Plumbing

// setRefreshCookie injects the rotated refresh token as a scoped HttpOnly cookie.
func setRefreshCookie(writer http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    token,
		Path:     constants.RefreshTokenCookiePath,
		Expires:  expires,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// clearRefreshCookie expires the refresh token cookie on the client.
func clearRefreshCookie(writer http.ResponseWriter) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    "",
		Path:     constants.RefreshTokenCookiePath,
		MaxAge:   -1,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// tokenPayload shapes the token half of an issue/rotate response body.
func tokenPayload(tokens TokenPair) map[string]any {
	return map[string]any{
		FieldAccessToken:   tokens.AccessToken,
		FieldTokenType:     "Bearer",
		FieldExpiresIn:     int64(time.Until(tokens.ExpiredAt) / time.Second),
		"refreshable_until": tokens.RefreshableUntil,
	}
}

/*
Join enrolls a new member account and signs it in.

POST /api/v1/auth/join

Description: Validates input, checks for identity conflicts, persists the
account, and issues the member's first session.

Request:
  - Body: joinRequest (Email, Password, DisplayName)

Response:
  - 201: Session: Access token and created profile
  - 400: ErrInvalidJSON: Bad input or validation failure
  - 409: ErrConflict: Email already registered
*/
func (handler *Handler) join(writer http.ResponseWriter, request *http.Request) {
	var input joinRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, 8).
		MaxLen(FieldDisplayName, input.DisplayName, 100)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	issued, err := handler.authService.Join(request.Context(), JoinInput{
		Email:       input.Email,
		Password:    input.Password,
		DisplayName: input.DisplayName,
		UserAgent:   request.UserAgent(),
		IPAddress:   getClientIP(request),
	})

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	setRefreshCookie(writer, issued.Tokens.RefreshToken, issued.Tokens.RefreshableUntil)

	payload := tokenPayload(issued.Tokens)
	payload[FieldUser] = issued.Principal
	respond.Created(writer, payload)
}

/*
Login authenticates a member and establishes a session.

POST /api/v1/auth/login

Description: Verifies credentials, generates a JWT access token, and injects
a secure refresh token cookie into the response. Unknown email and wrong
password produce the identical response.

Request:
  - Body: loginRequest (Email, Password)

Response:
  - 200: Session: Access token and profile
  - 401: ErrUnauthorized: Invalid credentials
  - 403: ErrForbidden: Account suspended
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email)
	validator.Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	issued, err := handler.authService.Login(request.Context(), LoginInput{
		Email:     input.Email,
		Password:  input.Password,
		UserAgent: request.UserAgent(),
		IPAddress: getClientIP(request),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	setRefreshCookie(writer, issued.Tokens.RefreshToken, issued.Tokens.RefreshableUntil)

	payload := tokenPayload(issued.Tokens)
	payload[FieldUser] = issued.Principal
	respond.OK(writer, payload)
}

/*
Guest issues an anonymous-flow session.

POST /api/v1/auth/guest

Description: Generates a guest identity with no backing account and issues a
guest-role token pair against it. No request body is required.

Response:
  - 200: Session: Guest access token and owner identity
*/
func (handler *Handler) guest(writer http.ResponseWriter, request *http.Request) {
	issued, err := handler.authService.Guest(request.Context(), GuestInput{
		UserAgent: request.UserAgent(),
		IPAddress: getClientIP(request),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	setRefreshCookie(writer, issued.Tokens.RefreshToken, issued.Tokens.RefreshableUntil)

	payload := tokenPayload(issued.Tokens)
	payload["owner"] = issued.Owner
	respond.OK(writer, payload)
}

/*
Refresh rotates the session credential from the refresh token cookie.

POST /api/v1/auth/refresh

Description: Validates the cookie token, swaps the session's credential
atomically, and returns a fresh token pair on the same session lineage.

Response:
  - 200: RefreshResponse: New access token credentials
  - 401: ErrUnauthorized: Missing, invalid, or already-rotated refresh token
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	cookie, err := request.Cookie(constants.RefreshTokenCookieName)
	if err != nil || cookie.Value == "" {
		respond.Error(writer, request, apperr.Unauthorized("Missing refresh token in cookies"))
		return
	}

	issued, err := handler.authService.Rotate(
		request.Context(),
		cookie.Value,
		request.UserAgent(),
		getClientIP(request),
	)

	if err != nil {
		// A failed rotation leaves the client holding a dead credential.
		clearRefreshCookie(writer)
		respond.Error(writer, request, err)
		return
	}

	setRefreshCookie(writer, issued.Tokens.RefreshToken, issued.Tokens.RefreshableUntil)

	respond.OK(writer, tokenPayload(issued.Tokens))
}

/*
Logout revokes the caller's current session.

POST /api/v1/auth/logout

Description: Revokes the session named by the access token's sid claim,
denylists the outstanding access token, and clears the refresh cookie.
Logging out twice succeeds.

Response:
  - 200: RevocationReceipt: Proof of revocation
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	receipt, err := handler.authService.Revoke(request.Context(), claims.SessionID, claims.UserID, ReasonLogout)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	clearRefreshCookie(writer)

	respond.OK(writer, receipt)
}

/*
RevokeOthers signs the caller out everywhere else.

POST /api/v1/auth/revoke-others

Description: Revokes every live session of the caller's owner except the one
backing this request. The device performing the sweep stays signed in.

Response:
  - 200: RevokeOthersResult: Count and IDs of revoked sessions
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) revokeOthers(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.authService.RevokeOthers(request.Context(), ownerFromClaims(claims), claims.SessionID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, result)
}

// ownerFromClaims reconstructs the owner union from verified token claims.
func ownerFromClaims(claims *sec.AuthClaims) Owner {
	switch sec.UserRole(claims.Role) {
	case sec.RoleAdmin:
		return Owner{Kind: OwnerKindAdmin, ID: claims.UserID}
	case sec.RoleMember:
		return Owner{Kind: OwnerKindMember, ID: claims.UserID}
	default:
		return Owner{Kind: OwnerKindGuest, ID: claims.UserID}
	}
}

// getClientIP tries to extract the real IP address of a user over proxy environments.
func getClientIP(request *http.Request) string {

	ip := request.Header.Get("X-Real-IP")
	if ip == "" {
		ip = request.Header.Get("X-Forwarded-For")
	}

	if ip == "" {
		ip = request.RemoteAddr
	}
	return ip
}
