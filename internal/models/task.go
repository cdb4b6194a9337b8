package models

import "time"

type TaskStatus string

const (
	TaskStatusNotStarted TaskStatus = "not_started"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusBlocked    TaskStatus = "blocked"
	TaskStatusCompleted  TaskStatus = "completed"
)

func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusNotStarted, TaskStatusInProgress, TaskStatusBlocked, TaskStatusCompleted:
		return true
	}
	return false
}

type Task struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"project_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      TaskStatus `json:"status"`
	ColumnID    string     `json:"column_id"`
	AssigneeID  *string    `json:"assignee_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Transition is one committed move, as recorded in the audit table.
type Transition struct {
	ID           int64      `json:"id"`
	TaskID       string     `json:"task_id"`
	FromColumnID string     `json:"from_column_id"`
	ToColumnID   string     `json:"to_column_id"`
	Status       TaskStatus `json:"status"`
	Actor        string     `json:"actor"`
	Forced       bool       `json:"forced"`
	CreatedAt    time.Time  `json:"created_at"`
}

// TransitionEvent is handed to notifiers after a move has been committed.
type TransitionEvent struct {
	TaskID       string     `json:"task_id"`
	ProjectID    string     `json:"project_id"`
	FromColumnID string     `json:"from_column_id"`
	ToColumnID   string     `json:"to_column_id"`
	ColumnName   string     `json:"column_name"`
	Status       TaskStatus `json:"status"`
	Actor        string     `json:"actor"`
	Forced       bool       `json:"forced"`
	OccurredAt   time.Time  `json:"occurred_at"`
}
