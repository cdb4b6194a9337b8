package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kanbanflow/workflow-engine/internal/models"
)

type DependencyRepository struct {
	db *sql.DB
}

func NewDependencyRepository(db *sql.DB) *DependencyRepository {
	return &DependencyRepository{db: db}
}

// Add inserts the (task, blocker) edge. An existing identical edge is left
// as is, so repeated adds keep exactly one row.
func (r *DependencyRepository) Add(ctx context.Context, taskID, blockerID string) (bool, error) {
	query := `
		INSERT OR IGNORE INTO task_dependencies (task_id, blocker_id, created_at)
		VALUES (?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query, taskID, blockerID, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("add dependency: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("add dependency rows affected: %w", err)
	}
	return rows > 0, nil
}

// Remove deletes the edge; removing an edge that does not exist is a no-op.
func (r *DependencyRepository) Remove(ctx context.Context, taskID, blockerID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM task_dependencies WHERE task_id = ? AND blocker_id = ?`,
		taskID, blockerID,
	)
	if err != nil {
		return false, fmt.Errorf("remove dependency: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("remove dependency rows affected: %w", err)
	}
	return rows > 0, nil
}

// HasBlockers reports whether at least one direct edge gates the task.
func (r *DependencyRepository) HasBlockers(ctx context.Context, taskID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM task_dependencies WHERE task_id = ?)`,
		taskID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check blockers: %w", err)
	}
	return exists, nil
}

func (r *DependencyRepository) ListByTask(ctx context.Context, taskID string) ([]models.Dependency, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT task_id, blocker_id, created_at
		FROM task_dependencies
		WHERE task_id = ?
		ORDER BY created_at ASC, blocker_id ASC
	`, taskID)
	if err != nil {
		return nil, fmt.Errorf("list dependencies: %w", err)
	}
	defer rows.Close()

	var deps []models.Dependency
	for rows.Next() {
		var d models.Dependency
		if err := rows.Scan(&d.TaskID, &d.BlockerID, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan dependency: %w", err)
		}
		deps = append(deps, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dependencies: %w", err)
	}
	return deps, nil
}

// Adjacency returns every edge as blocker lists keyed by task id.
func (r *DependencyRepository) Adjacency(ctx context.Context) (map[string][]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT task_id, blocker_id FROM task_dependencies`)
	if err != nil {
		return nil, fmt.Errorf("load dependency graph: %w", err)
	}
	defer rows.Close()

	graph := make(map[string][]string)
	for rows.Next() {
		var taskID, blockerID string
		if err := rows.Scan(&taskID, &blockerID); err != nil {
			return nil, fmt.Errorf("scan dependency edge: %w", err)
		}
		graph[taskID] = append(graph[taskID], blockerID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dependency edges: %w", err)
	}
	return graph, nil
}
