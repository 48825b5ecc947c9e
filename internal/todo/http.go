// Copyright (c) 2026 Taskora. All rights reserved.
// Author: duyan.pham.vn@gmail.com

package todo

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/phamduyan/taskora/internal/platform/middleware"
	requestutil "github.com/phamduyan/taskora/internal/platform/request"
	"github.com/phamduyan/taskora/internal/platform/respond"
	"github.com/phamduyan/taskora/internal/platform/sec"
	"github.com/phamduyan/taskora/internal/platform/validate"
	"github.com/phamduyan/taskora/pkg/pagination"

	"github.com/phamduyan/taskora/internal/users/auth"
)

// # Definitions & Constructors

// Handler implements task-domain HTTP endpoints.
type Handler struct {
	todoService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{todoService: service}
}

// Routes returns a [chi.Router] configured with the task routes.
//
// # Endpoints
//   - POST   /            : Create a todo.
//   - GET    /            : List the caller's todos.
//   - GET    /{todoID}    : Fetch one todo.
//   - PATCH  /{todoID}    : Partial update.
//   - DELETE /{todoID}    : Soft delete.
//   - GET    /admin/all   : Cross-owner listing (admin only).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Post("/", handler.create)
	router.Get("/", handler.list)
	router.Get("/{todoID}", handler.get)
	router.Patch("/{todoID}", handler.update)
	router.Delete("/{todoID}", handler.remove)

	// Admin surface
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(sec.RoleAdmin))
		r.Get("/admin/all", handler.listAll)
	})

	return router
}

// # Request Payloads

type createTodoRequest struct {
	Title string     `json:"title"`
	Notes string     `json:"notes"`
	DueAt *time.Time `json:"due_at"`
}

type updateTodoRequest struct {
	Title  *string    `json:"title"`
	Notes  *string    `json:"notes"`
	Status *string    `json:"status"`
	DueAt  *time.Time `json:"due_at"`
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

// filterFromRequest parses the optional list filter from query parameters.
func filterFromRequest(request *http.Request) (TodoFilter, error) {
	filter := TodoFilter{Query: request.URL.Query().Get("q")}

	if raw := request.URL.Query().Get("status"); raw != "" {
		status := TodoStatus(raw)
		if !status.IsValid() {
			return filter, validate.RequiredError(FieldStatus, "must be one of pending, completed, archived")
		}
		filter.Status = &status
	}

	return filter, nil
}

/*
Create persists a new todo for the caller.

POST /api/v1/todos

Request:
  - Body: createTodoRequest (Title, Notes, DueAt)

Response:
  - 201: Todo: Created entity
  - 400: ErrInvalidJSON: Bad input or validation failure
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createTodoRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldTitle, input.Title).
		MaxLen(FieldTitle, input.Title, 200).
		MaxLen(FieldNotes, input.Notes, 4000)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	item, err := handler.todoService.Create(request.Context(), callerOwner(claims), CreateInput{
		Title: input.Title,
		Notes: input.Notes,
		DueAt: input.DueAt,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, item)
}

/*
List returns a filtered page of the caller's todos.

GET /api/v1/todos?status=pending&q=milk&page=1&limit=20

Response:
  - 200: []Todo with pagination metadata
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	filter, err := filterFromRequest(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	items, meta, err := handler.todoService.List(request.Context(), callerOwner(claims), filter, pagination.FromRequest(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, items, meta)
}

/*
Get returns one of the caller's todos.

GET /api/v1/todos/{todoID}

Response:
  - 200: Todo
  - 404: ErrNotFound: Absent or owned by someone else
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	item, err := handler.todoService.Get(request.Context(), callerOwner(claims), requestutil.Param(request, "todoID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, item)
}

/*
Update applies a partial update to one of the caller's todos.

PATCH /api/v1/todos/{todoID}

Request:
  - Body: updateTodoRequest (Title, Notes, Status, DueAt)

Response:
  - 200: Todo: Updated entity
  - 400: ErrInvalidJSON: Bad input
  - 404: ErrNotFound: Absent or owned by someone else
*/
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateTodoRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	serviceInput := UpdateInput{
		Title: input.Title,
		Notes: input.Notes,
		DueAt: input.DueAt,
	}
	if input.Status != nil {
		status := TodoStatus(*input.Status)
		serviceInput.Status = &status
	}

	item, err := handler.todoService.Update(request.Context(), callerOwner(claims), requestutil.Param(request, "todoID"), serviceInput)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, item)
}

/*
Remove soft-deletes one of the caller's todos.

DELETE /api/v1/todos/{todoID}

Response:
  - 204: No Content
  - 404: ErrNotFound: Absent or owned by someone else
*/
func (handler *Handler) remove(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.todoService.Delete(request.Context(), callerOwner(claims), requestutil.Param(request, "todoID")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
ListAll returns todos across all owners.

GET /api/v1/todos/admin/all

Response:
  - 200: []Todo with pagination metadata
  - 403: ErrForbidden: Caller is not an admin
*/
func (handler *Handler) listAll(writer http.ResponseWriter, request *http.Request) {
	filter, err := filterFromRequest(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	items, meta, err := handler.todoService.ListAll(request.Context(), filter, pagination.FromRequest(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, items, meta)
}
