package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kanbanflow/workflow-engine/internal/models"
)

type TaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// MoveCommit is the write half of a transition: the destination and the
// status already derived from it.
type MoveCommit struct {
	TaskID     string
	ToColumnID string
	Status     models.TaskStatus
	Actor      string
	Force      bool
	At         time.Time
}

// Create places the task in the project's lowest-position column as
// not_started. Capacity is not enforced on creation.
func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	now := time.Now().UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create task: %w", err)
	}
	defer tx.Rollback()

	var columnID string
	err = tx.QueryRowContext(ctx, `
		SELECT c.id FROM columns c
		JOIN projects p ON p.id = c.project_id
		WHERE c.project_id = ? AND p.archived_at IS NULL
		ORDER BY c.position ASC, c.name ASC
		LIMIT 1
	`, task.ProjectID).Scan(&columnID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrNoColumns
	}
	if err != nil {
		return fmt.Errorf("find initial column: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO tasks (id, project_id, title, description, status, column_id, assignee_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		task.ID,
		task.ProjectID,
		task.Title,
		task.Description,
		models.TaskStatusNotStarted,
		columnID,
		task.AssigneeID,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE columns SET occupancy = occupancy + 1 WHERE id = ?`, columnID); err != nil {
		return fmt.Errorf("increment occupancy: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create task: %w", err)
	}

	task.ColumnID = columnID
	task.Status = models.TaskStatusNotStarted
	task.CreatedAt = now
	task.UpdatedAt = now
	return nil
}

func (r *TaskRepository) Get(ctx context.Context, id string) (*models.Task, error) {
	query := `
		SELECT id, project_id, title, description, status, column_id, assignee_id, created_at, updated_at
		FROM tasks WHERE id = ?
	`

	var t models.Task
	var assignee sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID,
		&t.ProjectID,
		&t.Title,
		&t.Description,
		&t.Status,
		&t.ColumnID,
		&assignee,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	if assignee.Valid {
		t.AssigneeID = &assignee.String
	}
	return &t, nil
}

// Delete removes the task, every dependency edge touching it, and its
// contribution to the column occupancy.
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete task: %w", err)
	}
	defer tx.Rollback()

	var columnID string
	err = tx.QueryRowContext(ctx, `SELECT column_id FROM tasks WHERE id = ?`, id).Scan(&columnID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrTaskNotFound
	}
	if err != nil {
		return fmt.Errorf("get task column: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM task_dependencies WHERE task_id = ? OR blocker_id = ?`, id, id); err != nil {
		return fmt.Errorf("delete task dependencies: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM task_transitions WHERE task_id = ?`, id); err != nil {
		return fmt.Errorf("delete task transitions: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE columns SET occupancy = occupancy - 1 WHERE id = ? AND occupancy > 0`, columnID); err != nil {
		return fmt.Errorf("decrement occupancy: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete task: %w", err)
	}
	return nil
}

// CommitMove performs the capacity check and the task write in one
// transaction. The destination counter is incremented only while it is below
// capacity (or the move is forced); a refused increment returns a
// *models.WipLimitError and leaves every row untouched.
func (r *TaskRepository) CommitMove(ctx context.Context, m MoveCommit) (fromColumnID string, err error) {
	if m.At.IsZero() {
		m.At = time.Now().UTC()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin move: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `SELECT column_id FROM tasks WHERE id = ?`, m.TaskID).Scan(&fromColumnID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", models.ErrTaskNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get task column: %w", err)
	}

	if fromColumnID != m.ToColumnID {
		result, err := tx.ExecContext(ctx, `
			UPDATE columns SET occupancy = occupancy + 1
			WHERE id = ? AND (? OR capacity IS NULL OR occupancy < capacity)
		`, m.ToColumnID, m.Force)
		if err != nil {
			return "", fmt.Errorf("increment occupancy: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return "", fmt.Errorf("increment occupancy rows affected: %w", err)
		}
		if rows == 0 {
			return "", wipLimitError(ctx, tx, m.ToColumnID)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE columns SET occupancy = occupancy - 1 WHERE id = ? AND occupancy > 0`,
			fromColumnID,
		); err != nil {
			return "", fmt.Errorf("decrement occupancy: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE tasks SET column_id = ?, status = ?, updated_at = ? WHERE id = ?`,
		m.ToColumnID, m.Status, m.At, m.TaskID,
	); err != nil {
		return "", fmt.Errorf("update task: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO task_transitions (task_id, from_column_id, to_column_id, status, actor, forced, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, m.TaskID, fromColumnID, m.ToColumnID, m.Status, m.Actor, m.Force, m.At); err != nil {
		return "", fmt.Errorf("record transition: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit move: %w", err)
	}
	return fromColumnID, nil
}

func wipLimitError(ctx context.Context, tx *sql.Tx, columnID string) error {
	var name string
	var capacity sql.NullInt64
	err := tx.QueryRowContext(ctx, `SELECT name, capacity FROM columns WHERE id = ?`, columnID).Scan(&name, &capacity)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrColumnNotFound
	}
	if err != nil {
		return fmt.Errorf("get column capacity: %w", err)
	}
	return &models.WipLimitError{
		ColumnID:   columnID,
		ColumnName: name,
		Capacity:   int(capacity.Int64),
	}
}

func (r *TaskRepository) History(ctx context.Context, taskID string) ([]models.Transition, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, task_id, from_column_id, to_column_id, status, actor, forced, created_at
		FROM task_transitions
		WHERE task_id = ?
		ORDER BY id ASC
	`, taskID)
	if err != nil {
		return nil, fmt.Errorf("get transition history: %w", err)
	}
	defer rows.Close()

	var transitions []models.Transition
	for rows.Next() {
		var t models.Transition
		var forced int
		err := rows.Scan(
			&t.ID,
			&t.TaskID,
			&t.FromColumnID,
			&t.ToColumnID,
			&t.Status,
			&t.Actor,
			&forced,
			&t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		t.Forced = forced != 0
		transitions = append(transitions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transitions: %w", err)
	}
	return transitions, nil
}
