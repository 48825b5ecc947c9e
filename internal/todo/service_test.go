// Copyright (c) 2026 Taskora. All rights reserved.
// Author: duyan.pham.vn@gmail.com

package todo_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phamduyan/taskora/internal/platform/apperr"
	"github.com/phamduyan/taskora/internal/todo"
	"github.com/phamduyan/taskora/internal/users/auth"
	"github.com/phamduyan/taskora/pkg/pagination"
)

// # In-Memory Fake

type fakeTodoRepo struct {
	mu    sync.Mutex
	items map[string]*todo.Todo
}

func newFakeTodoRepo() *fakeTodoRepo {
	return &fakeTodoRepo{items: map[string]*todo.Todo{}}
}

func cloneTodo(t *todo.Todo) *todo.Todo {
	c := *t
	return &c
}

func matches(item *todo.Todo, f todo.TodoFilter) bool {
	if item.DeletedAt != nil {
		return false
	}
	if f.Status != nil && item.Status != *f.Status {
		return false
	}
	if f.Query != "" && !strings.Contains(strings.ToLower(item.Title), strings.ToLower(f.Query)) {
		return false
	}
	return true
}

func (r *fakeTodoRepo) collect(keep func(*todo.Todo) bool, limit, offset int) ([]*todo.Todo, int) {
	out := []*todo.Todo{}
	for _, item := range r.items {
		if keep(item) {
			out = append(out, cloneTodo(item))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	total := len(out)
	if offset >= total {
		return []*todo.Todo{}, total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return out[offset:end], total
}

func (r *fakeTodoRepo) ListByOwner(_ context.Context, owner auth.Owner, f todo.TodoFilter, limit, offset int) ([]*todo.Todo, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items, total := r.collect(func(item *todo.Todo) bool {
		return item.OwnerKind == owner.Kind && item.OwnerID == owner.ID && matches(item, f)
	}, limit, offset)
	return items, total, nil
}

func (r *fakeTodoRepo) ListAll(_ context.Context, f todo.TodoFilter, limit, offset int) ([]*todo.Todo, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items, total := r.collect(func(item *todo.Todo) bool { return matches(item, f) }, limit, offset)
	return items, total, nil
}

func (r *fakeTodoRepo) FindByID(_ context.Context, owner auth.Owner, id string) (*todo.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok || item.DeletedAt != nil || item.OwnerKind != owner.Kind || item.OwnerID != owner.ID {
		return nil, apperr.NotFound("Todo not found")
	}
	return cloneTodo(item), nil
}

func (r *fakeTodoRepo) Create(_ context.Context, item *todo.Todo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := cloneTodo(item)
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	r.items[item.ID] = stored
	return nil
}

func (r *fakeTodoRepo) Update(_ context.Context, item *todo.Todo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[item.ID]
	if ok && stored.DeletedAt == nil {
		stored.Title = item.Title
		stored.Notes = item.Notes
		stored.Status = item.Status
		stored.DueAt = item.DueAt
	}
	return nil
}

func (r *fakeTodoRepo) SoftDelete(_ context.Context, owner auth.Owner, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if ok && item.OwnerKind == owner.Kind && item.OwnerID == owner.ID {
		now := time.Now()
		item.DeletedAt = &now
	}
	return nil
}

// # Tests

var (
	ana   = auth.Owner{Kind: auth.OwnerKindMember, ID: "ana-id"}
	bruno = auth.Owner{Kind: auth.OwnerKindMember, ID: "bruno-id"}
	ghost = auth.Owner{Kind: auth.OwnerKindGuest, ID: "ghost-id"}
)

func newService() (*todo.Service, *fakeTodoRepo) {
	repo := newFakeTodoRepo()
	return todo.NewService(repo), repo
}

/*
TestCreate_ScopesToOwner verifies creation stamps the caller's owner union
onto the item, and that anonymous callers are rejected.
*/
func TestCreate_ScopesToOwner(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	item, err := service.Create(ctx, ana, todo.CreateInput{Title: "Buy milk"})
	require.NoError(t, err)
	assert.Equal(t, ana.Kind, item.OwnerKind)
	assert.Equal(t, ana.ID, item.OwnerID)
	assert.Equal(t, todo.TodoStatusPending, item.Status)

	_, err = service.Create(ctx, auth.Owner{Kind: auth.OwnerKindAnonymous}, todo.CreateInput{Title: "nope"})
	require.Error(t, err)
	assert.True(t, apperr.IsUnauthorized(err))
}

/*
TestGet_ForeignOwnerIsNotFound verifies a foreign owner's item answers
NotFound, indistinguishable from absence.
*/
func TestGet_ForeignOwnerIsNotFound(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	item, err := service.Create(ctx, ana, todo.CreateInput{Title: "Private"})
	require.NoError(t, err)

	_, err = service.Get(ctx, bruno, item.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))

	_, missingErr := service.Get(ctx, bruno, "never-existed")
	assert.Equal(t, apperr.As(err).Code, apperr.As(missingErr).Code)
}

/*
TestList_FilterAndPagination verifies the status filter and page math.
*/
func TestList_FilterAndPagination(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := service.Create(ctx, ana, todo.CreateInput{Title: "task"})
		require.NoError(t, err)
	}
	done, err := service.Create(ctx, ana, todo.CreateInput{Title: "finished task"})
	require.NoError(t, err)

	completed := todo.TodoStatusCompleted
	_, err = service.Update(ctx, ana, done.ID, todo.UpdateInput{Status: &completed})
	require.NoError(t, err)

	// Guests and other members see nothing.
	items, meta, err := service.List(ctx, ghost, todo.TodoFilter{}, pagination.Params{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, 0, meta.Total)

	// Status filter narrows to the single completed item.
	items, meta, err = service.List(ctx, ana, todo.TodoFilter{Status: &completed}, pagination.Params{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, done.ID, items[0].ID)
	assert.Equal(t, 1, meta.Total)

	// Page math: 6 items, page size 4, second page holds the remainder.
	items, meta, err = service.List(ctx, ana, todo.TodoFilter{}, pagination.Params{Page: 2, Limit: 4})
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, 6, meta.Total)
	assert.Equal(t, 2, meta.TotalPages)
}

/*
TestUpdate_RejectsUnknownStatus verifies status transitions are validated.
*/
func TestUpdate_RejectsUnknownStatus(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	item, err := service.Create(ctx, ana, todo.CreateInput{Title: "task"})
	require.NoError(t, err)

	bogus := todo.TodoStatus("bogus")
	_, err = service.Update(ctx, ana, item.ID, todo.UpdateInput{Status: &bogus})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}

/*
TestDelete_SoftDeleteHidesItem verifies a deleted item vanishes from reads
and that deleting a foreign item answers NotFound.
*/
func TestDelete_SoftDeleteHidesItem(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	item, err := service.Create(ctx, ana, todo.CreateInput{Title: "task"})
	require.NoError(t, err)

	err = service.Delete(ctx, bruno, item.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))

	require.NoError(t, service.Delete(ctx, ana, item.ID))

	_, err = service.Get(ctx, ana, item.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
}

/*
TestListAll_CrossesOwners verifies the admin listing sees every owner's items.
*/
func TestListAll_CrossesOwners(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	_, err := service.Create(ctx, ana, todo.CreateInput{Title: "member task"})
	require.NoError(t, err)
	_, err = service.Create(ctx, ghost, todo.CreateInput{Title: "guest task"})
	require.NoError(t, err)

	items, meta, err := service.ListAll(ctx, todo.TodoFilter{}, pagination.Params{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, 2, meta.Total)
}
