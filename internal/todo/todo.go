// Copyright (c) 2026 Taskora. All rights reserved.
// Author: duyan.pham.vn@gmail.com

// Package todo implements the task domain of the Taskora platform.
//
// Every todo is scoped to a session owner: members and admins own todos
// through their account identity, guests through their generated guest
// identity. Owners never see each other's items.
package todo

import (
	"time"

	"github.com/phamduyan/taskora/internal/users/auth"
)

// TodoStatus represents the completion state of a todo item.
type TodoStatus string

const (
	// TodoStatusPending indicates the item is still open.
	TodoStatusPending TodoStatus = "pending"
	// TodoStatusCompleted indicates the item has been finished.
	TodoStatusCompleted TodoStatus = "completed"
	// TodoStatusArchived indicates the item is kept out of the default view.
	TodoStatusArchived TodoStatus = "archived"
)

// IsValid reports whether s is a recognised [TodoStatus] value.
func (s TodoStatus) IsValid() bool {
	switch s {
	case TodoStatusPending, TodoStatusCompleted, TodoStatusArchived:
		return true
	}
	return false
}

// Todo is the central aggregate of the task domain.
type Todo struct {
	ID        string         `json:"id"`
	OwnerKind auth.OwnerKind `json:"owner_kind"`
	OwnerID   string         `json:"owner_id"`
	Title     string         `json:"title"`
	Notes     string         `json:"notes,omitempty"`
	Status    TodoStatus     `json:"status"`
	DueAt     *time.Time     `json:"due_at,omitempty"` // nil = no deadline.
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt *time.Time     `json:"-"` // nil = active; non-nil = soft-deleted.
}

// Owner reconstructs the owner union from the persisted columns.
func (t *Todo) Owner() auth.Owner {
	return auth.Owner{Kind: t.OwnerKind, ID: t.OwnerID}
}

// TodoFilter holds the parameters for a filtered todo list query.
//
// # Sorting
//
// Results are always newest first; the filter narrows, it does not reorder.
type TodoFilter struct {
	Status *TodoStatus
	Query  string // Substring match against the title.
}

// # Field Identifiers

// Global field names for validation in the todo domain.
const (
	FieldTitle  = "title"
	FieldNotes  = "notes"
	FieldStatus = "status"
	FieldTodoID = "todo_id"
)
