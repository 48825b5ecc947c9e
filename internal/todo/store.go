// Copyright (c) 2026 Taskora. All rights reserved.
// Author: duyan.pham.vn@gmail.com

package todo

import (
	"context"

	"github.com/phamduyan/taskora/internal/users/auth"
)

// TodoRepository defines the data access contract for the task domain.
//
// # Architecture
//
// The interface lives in the domain package because the service layer (the
// consumer) defines what it needs; the PostgreSQL implementation lives
// alongside it in store_postgres.go.
type TodoRepository interface {
	// ListByOwner returns a filtered, paginated slice of the owner's todos
	// and the total count.
	//
	// Returns:
	//   - []*Todo: The todos matching the filter, newest first.
	//   - int: Total count for pagination.
	//   - error: Database or connection errors.
	ListByOwner(ctx context.Context, owner auth.Owner, f TodoFilter, limit, offset int) ([]*Todo, int, error)

	// ListAll returns a paginated slice across ALL owners and the total
	// count. Reserved for the admin surface.
	ListAll(ctx context.Context, f TodoFilter, limit, offset int) ([]*Todo, int, error)

	// FindByID returns the todo with the given ID scoped to its owner.
	//
	// It returns apperr.NotFound if the todo is absent, soft-deleted, or
	// owned by someone else. Ownership misses are indistinguishable from
	// absence on purpose.
	FindByID(ctx context.Context, owner auth.Owner, id string) (*Todo, error)

	// Create persists a new todo to the store.
	//
	// The caller is responsible for generating and setting the ID before
	// calling this method.
	Create(ctx context.Context, t *Todo) error

	// Update persists changes to an existing todo's mutable fields, scoped
	// to its owner.
	Update(ctx context.Context, t *Todo) error

	// SoftDelete marks a todo as deleted without removing the row, scoped
	// to its owner.
	SoftDelete(ctx context.Context, owner auth.Owner, id string) error
}
