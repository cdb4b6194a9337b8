package service

import (
	"context"

	"github.com/kanbanflow/workflow-engine/internal/models"
	"github.com/kanbanflow/workflow-engine/internal/repository"
)

type TaskStore interface {
	Get(ctx context.Context, id string) (*models.Task, error)
	CommitMove(ctx context.Context, m repository.MoveCommit) (string, error)
}

type ColumnRegistry interface {
	Get(ctx context.Context, id string) (*models.Column, error)
}

type DependencyStore interface {
	Add(ctx context.Context, taskID, blockerID string) (bool, error)
	Remove(ctx context.Context, taskID, blockerID string) (bool, error)
	HasBlockers(ctx context.Context, taskID string) (bool, error)
	ListByTask(ctx context.Context, taskID string) ([]models.Dependency, error)
	Adjacency(ctx context.Context) (map[string][]string, error)
}

var (
	_ TaskStore       = (*repository.TaskRepository)(nil)
	_ ColumnRegistry  = (*repository.ColumnRepository)(nil)
	_ DependencyStore = (*repository.DependencyRepository)(nil)
)
