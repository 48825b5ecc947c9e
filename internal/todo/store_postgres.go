// Copyright (c) 2026 Taskora. All rights reserved.
// Author: duyan.pham.vn@gmail.com

// PostgreSQL implementation of the task domain repository.
//
// # Error Mapping
//
// Storage-specific errors (like pgx.ErrNoRows) are mapped to domain-friendly
// [apperr.AppError] types to avoid leaking storage implementation details.
package todo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/phamduyan/taskora/internal/platform/apperr"
	"github.com/phamduyan/taskora/internal/users/auth"
)

// PostgresTodoRepository implements the TodoRepository interface using pgx.
type PostgresTodoRepository struct {
	pool *pgxpool.Pool
}

// NewTodoRepository creates a new PostgreSQL implementation of TodoRepository.
func NewTodoRepository(pool *pgxpool.Pool) *PostgresTodoRepository {
	return &PostgresTodoRepository{pool: pool}
}

const todoColumns = `
	id, ownerkind, ownerid, title, notes, status, dueat, createdat, updatedat`

// scanTodo hydrates one Todo from a pgx row.
func scanTodo(row pgx.Row) (*Todo, error) {
	item := &Todo{}
	err := row.Scan(
		&item.ID,
		&item.OwnerKind,
		&item.OwnerID,
		&item.Title,
		&item.Notes,
		&item.Status,
		&item.DueAt,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return item, nil
}

/*
Create persists a new todo record into the core.todo table.

Parameters:
  - context: context.Context
  - item: *Todo

Returns:
  - error: Database constraint violations or connectivity errors
*/
func (repository *PostgresTodoRepository) Create(context context.Context, item *Todo) error {
	const query = `
		INSERT INTO core.todo (
			id, ownerkind, ownerid, title, notes, status, dueat, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	now := time.Now()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		item.ID,
		item.OwnerKind,
		item.OwnerID,
		item.Title,
		item.Notes,
		item.Status,
		item.DueAt,
		item.CreatedAt,
		item.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_todo_repo_create_failed: %w", err)
	}

	return nil
}

/*
FindByID retrieves a todo by ID, scoped to its owner.

Description: The owner columns are part of the WHERE clause, so a foreign
owner's item resolves to NotFound exactly like an absent one.

Parameters:
  - context: context.Context
  - owner: auth.Owner
  - id: string

Returns:
  - *Todo: Hydrated entity
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresTodoRepository) FindByID(context context.Context, owner auth.Owner, id string) (*Todo, error) {
	const query = `
		SELECT ` + todoColumns + `
		FROM core.todo
		WHERE id = $1 AND ownerkind = $2 AND ownerid = $3 AND deletedat IS NULL`

	item, err := scanTodo(repository.pool.QueryRow(context, query, id, owner.Kind, owner.ID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Todo not found")
		}
		return nil, fmt.Errorf("postgres_todo_repo_find_by_id_failed: %w", err)
	}

	return item, nil
}

/*
ListByOwner returns a filtered, paginated page of the owner's todos.

Parameters:
  - context: context.Context
  - owner: auth.Owner
  - filter: TodoFilter
  - limit, offset: int

Returns:
  - []*Todo: Newest first
  - int: Total count for pagination
  - error: Execution errors
*/
func (repository *PostgresTodoRepository) ListByOwner(context context.Context, owner auth.Owner, filter TodoFilter, limit, offset int) ([]*Todo, int, error) {
	conditions := []string{"ownerkind = $1", "ownerid = $2", "deletedat IS NULL"}
	arguments := []any{owner.Kind, owner.ID}

	conditions, arguments = appendFilter(conditions, arguments, filter)

	return repository.list(context, conditions, arguments, limit, offset)
}

/*
ListAll returns a filtered, paginated page of todos across all owners.

Description: Admin surface only; no owner scoping.

Parameters:
  - context: context.Context
  - filter: TodoFilter
  - limit, offset: int

Returns:
  - []*Todo: Newest first
  - int: Total count for pagination
  - error: Execution errors
*/
func (repository *PostgresTodoRepository) ListAll(context context.Context, filter TodoFilter, limit, offset int) ([]*Todo, int, error) {
	conditions := []string{"deletedat IS NULL"}
	arguments := []any{}

	conditions, arguments = appendFilter(conditions, arguments, filter)

	return repository.list(context, conditions, arguments, limit, offset)
}

// appendFilter grows the WHERE clause with the optional filter predicates.
func appendFilter(conditions []string, arguments []any, filter TodoFilter) ([]string, []any) {
	if filter.Status != nil {
		arguments = append(arguments, *filter.Status)
		conditions = append(conditions, "status = $"+strconv.Itoa(len(arguments)))
	}
	if filter.Query != "" {
		arguments = append(arguments, "%"+filter.Query+"%")
		conditions = append(conditions, "title ILIKE $"+strconv.Itoa(len(arguments)))
	}
	return conditions, arguments
}

// list runs the shared count-then-page query pair.
func (repository *PostgresTodoRepository) list(context context.Context, conditions []string, arguments []any, limit, offset int) ([]*Todo, int, error) {
	where := strings.Join(conditions, " AND ")

	countQuery := "SELECT COUNT(*) FROM core.todo WHERE " + where
	var total int
	if err := repository.pool.QueryRow(context, countQuery, arguments...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_todo_repo_count_failed: %w", err)
	}

	pageQuery := fmt.Sprintf(`
		SELECT %s
		FROM core.todo
		WHERE %s
		ORDER BY createdat DESC
		LIMIT $%d OFFSET $%d`, todoColumns, where, len(arguments)+1, len(arguments)+2)

	rows, err := repository.pool.Query(context, pageQuery, append(arguments, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_todo_repo_list_failed: %w", err)
	}
	defer rows.Close()

	items := []*Todo{}
	for rows.Next() {
		item, err := scanTodo(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_todo_repo_scan_failed: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_todo_repo_rows_failed: %w", err)
	}

	return items, total, nil
}

/*
Update persists changes to a todo's mutable fields, scoped to its owner.

Parameters:
  - context: context.Context
  - item: *Todo

Returns:
  - error: Update failures
*/
func (repository *PostgresTodoRepository) Update(context context.Context, item *Todo) error {
	const query = `
		UPDATE core.todo
		SET title = $4, notes = $5, status = $6, dueat = $7, updatedat = $8
		WHERE id = $1 AND ownerkind = $2 AND ownerid = $3 AND deletedat IS NULL`

	item.UpdatedAt = time.Now()
	_, err := repository.pool.Exec(context, query,
		item.ID,
		item.OwnerKind,
		item.OwnerID,
		item.Title,
		item.Notes,
		item.Status,
		item.DueAt,
		item.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_todo_repo_update_failed: %w", err)
	}

	return nil
}

/*
SoftDelete marks a todo as deleted, scoped to its owner.

Parameters:
  - context: context.Context
  - owner: auth.Owner
  - id: string

Returns:
  - error: Side-effect failures
*/
func (repository *PostgresTodoRepository) SoftDelete(context context.Context, owner auth.Owner, id string) error {
	const query = `
		UPDATE core.todo SET deletedat = $4
		WHERE id = $1 AND ownerkind = $2 AND ownerid = $3 AND deletedat IS NULL`

	_, err := repository.pool.Exec(context, query, id, owner.Kind, owner.ID, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_todo_repo_soft_delete_failed: %w", err)
	}
	return nil
}
