package models

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	ErrBlocked          = errors.New("task has unresolved blocking dependencies")
	ErrColumnNotFound   = errors.New("column not found")
	ErrWipLimitExceeded = errors.New("column WIP limit exceeded")
	ErrStoreUnavailable = errors.New("store unavailable")

	ErrTaskNotFound    = errors.New("task not found")
	ErrProjectNotFound = errors.New("project not found")
	ErrNoColumns       = errors.New("project has no columns")
	ErrSelfDependency  = errors.New("task cannot block itself")
	ErrDependencyCycle = errors.New("dependency would create a cycle")
	ErrInvalidArgument = errors.New("invalid argument")
)

type TransitionErrorKind string

const (
	KindBlocked          TransitionErrorKind = "blocked"
	KindColumnNotFound   TransitionErrorKind = "column_not_found"
	KindWipLimitExceeded TransitionErrorKind = "wip_limit_exceeded"
	KindStoreUnavailable TransitionErrorKind = "store_unavailable"
)

// TransitionError is the typed rejection returned by a task move.
type TransitionError struct {
	Kind       TransitionErrorKind
	TaskID     string
	ColumnID   string
	ColumnName string // set for KindWipLimitExceeded
	Capacity   int    // set for KindWipLimitExceeded
	Err        error  // underlying store error for KindStoreUnavailable
}

func (e *TransitionError) Error() string {
	switch e.Kind {
	case KindBlocked:
		return fmt.Sprintf("move task [%s]: blocked by unresolved dependencies", e.TaskID)
	case KindColumnNotFound:
		return fmt.Sprintf("move task [%s]: column %s not found", e.TaskID, e.ColumnID)
	case KindWipLimitExceeded:
		return fmt.Sprintf("move task [%s]: column %q has reached its WIP limit of %d", e.TaskID, e.ColumnName, e.Capacity)
	case KindStoreUnavailable:
		if e.Err != nil {
			return fmt.Sprintf("move task [%s]: store unavailable: %v", e.TaskID, e.Err)
		}
		return fmt.Sprintf("move task [%s]: store unavailable", e.TaskID)
	}
	return fmt.Sprintf("move task [%s] failed", e.TaskID)
}

func (e *TransitionError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match a TransitionError against the kind sentinels.
func (e *TransitionError) Is(target error) bool {
	switch target {
	case ErrBlocked:
		return e.Kind == KindBlocked
	case ErrColumnNotFound:
		return e.Kind == KindColumnNotFound
	case ErrWipLimitExceeded:
		return e.Kind == KindWipLimitExceeded
	case ErrStoreUnavailable:
		return e.Kind == KindStoreUnavailable
	}
	return false
}

// WipLimitError is returned by the store when a conditional occupancy
// increment is refused.
type WipLimitError struct {
	ColumnID   string
	ColumnName string
	Capacity   int
}

func (e *WipLimitError) Error() string {
	return fmt.Sprintf("column %q is at capacity %d", e.ColumnName, e.Capacity)
}

func (e *WipLimitError) Is(target error) bool {
	return target == ErrWipLimitExceeded
}
