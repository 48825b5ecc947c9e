// Copyright (c) 2026 Taskora. All rights reserved.
// Author: duyan.pham.vn@gmail.com

package todo

import (
	"context"
	"fmt"
	"time"

	"github.com/phamduyan/taskora/internal/platform/apperr"
	"github.com/phamduyan/taskora/internal/users/auth"
	"github.com/phamduyan/taskora/pkg/pagination"
	"github.com/phamduyan/taskora/pkg/uuid"
)

// # Service Layer

// Service orchestrates business logic for the task domain.
//
// Every operation takes the caller's owner union and never reaches outside
// that owner's items, except for the explicitly admin-only ListAll.
type Service struct {
	todoRepository TodoRepository
}

// NewService constructs a new [Service] with its repository dependency.
func NewService(todoRepo TodoRepository) *Service {
	return &Service{todoRepository: todoRepo}
}

// CreateInput holds the data required to create a todo.
type CreateInput struct {
	Title string
	Notes string
	DueAt *time.Time
}

/*
Create persists a new todo for the owner.

Parameters:
  - context: context.Context
  - owner: auth.Owner
  - input: CreateInput

Returns:
  - *Todo: The created entity
  - error: Validation or storage failures
*/
func (service *Service) Create(context context.Context, owner auth.Owner, input CreateInput) (*Todo, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	if owner.IsAnonymous() {
		return nil, apperr.Unauthorized("Authentication required")
	}

	item := &Todo{
		ID:        uuid.New(),
		OwnerKind: owner.Kind,
		OwnerID:   owner.ID,
		Title:     input.Title,
		Notes:     input.Notes,
		Status:    TodoStatusPending,
		DueAt:     input.DueAt,
	}

	if err := service.todoRepository.Create(context, item); err != nil {
		return nil, fmt.Errorf("todo_service_create_failed: %w", err)
	}

	return item, nil
}

/*
Get returns one of the owner's todos by ID.

Parameters:
  - context: context.Context
  - owner: auth.Owner
  - id: string

Returns:
  - *Todo: The hydrated entity
  - error: apperr.NotFound or storage failures
*/
func (service *Service) Get(context context.Context, owner auth.Owner, id string) (*Todo, error) {
	return service.todoRepository.FindByID(context, owner, id)
}

/*
List returns a filtered page of the owner's todos.

Parameters:
  - context: context.Context
  - owner: auth.Owner
  - filter: TodoFilter
  - params: pagination.Params

Returns:
  - []*Todo: The page of todos, newest first
  - pagination.Meta: Page metadata
  - error: Storage failures
*/
func (service *Service) List(context context.Context, owner auth.Owner, filter TodoFilter, params pagination.Params) ([]*Todo, pagination.Meta, error) {
	items, total, err := service.todoRepository.ListByOwner(context, owner, filter, params.Limit, params.Offset())
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("todo_service_list_failed: %w", err)
	}
	return items, pagination.NewMeta(params.Page, params.Limit, total), nil
}

/*
ListAll returns a filtered page of todos across ALL owners.

Description: Admin-only surface; the HTTP layer gates it with RequireRole.

Parameters:
  - context: context.Context
  - filter: TodoFilter
  - params: pagination.Params

Returns:
  - []*Todo: The page of todos, newest first
  - pagination.Meta: Page metadata
  - error: Storage failures
*/
func (service *Service) ListAll(context context.Context, filter TodoFilter, params pagination.Params) ([]*Todo, pagination.Meta, error) {
	items, total, err := service.todoRepository.ListAll(context, filter, params.Limit, params.Offset())
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("todo_service_list_all_failed: %w", err)
	}
	return items, pagination.NewMeta(params.Page, params.Limit, total), nil
}

// UpdateInput defines the mutable subset of todo fields.
type UpdateInput struct {
	Title  *string
	Notes  *string
	Status *TodoStatus
	DueAt  *time.Time
}

/*
Update applies a partial set of changes to one of the owner's todos.

Parameters:
  - context: context.Context
  - owner: auth.Owner
  - id: string
  - input: UpdateInput

Returns:
  - *Todo: The updated entity
  - error: apperr.NotFound, validation, or storage failures
*/
func (service *Service) Update(context context.Context, owner auth.Owner, id string, input UpdateInput) (*Todo, error) {
	item, err := service.todoRepository.FindByID(context, owner, id)
	if err != nil {
		return nil, err
	}

	// Apply delta updates
	if input.Title != nil {
		item.Title = *input.Title
	}
	if input.Notes != nil {
		item.Notes = *input.Notes
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, apperr.ValidationError("Unknown todo status")
		}
		item.Status = *input.Status
	}
	if input.DueAt != nil {
		item.DueAt = input.DueAt
	}

	// Persist changes
	if err := service.todoRepository.Update(context, item); err != nil {
		return nil, fmt.Errorf("todo_service_update_failed: %w", err)
	}

	return item, nil
}

/*
Delete soft-deletes one of the owner's todos.

Parameters:
  - context: context.Context
  - owner: auth.Owner
  - id: string

Returns:
  - error: apperr.NotFound or storage failures
*/
func (service *Service) Delete(context context.Context, owner auth.Owner, id string) error {
	// Resolve first so a miss answers NotFound instead of silently succeeding.
	if _, err := service.todoRepository.FindByID(context, owner, id); err != nil {
		return err
	}

	if err := service.todoRepository.SoftDelete(context, owner, id); err != nil {
		return fmt.Errorf("todo_service_delete_failed: %w", err)
	}

	return nil
}
