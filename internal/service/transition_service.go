package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/kanbanflow/workflow-engine/internal/client"
	"github.com/kanbanflow/workflow-engine/internal/models"
	"github.com/kanbanflow/workflow-engine/internal/repository"
)

const notifyTimeout = 10 * time.Second

type MoveRequest struct {
	TaskID         string
	TargetColumnID string
	Actor          string
	// Force skips the capacity gate. Whether an actor may set it is the
	// caller's decision.
	Force bool
}

type TransitionService struct {
	tasks      TaskStore
	columns    ColumnRegistry
	deps       *DependencyService
	classifier *Classifier
	notifier   client.Notifier
	logger     *slog.Logger
	now        func() time.Time

	pending sync.WaitGroup
}

func NewTransitionService(
	tasks TaskStore,
	columns ColumnRegistry,
	deps *DependencyService,
	classifier *Classifier,
	notifier client.Notifier,
	logger *slog.Logger,
) *TransitionService {
	return &TransitionService{
		tasks:      tasks,
		columns:    columns,
		deps:       deps,
		classifier: classifier,
		notifier:   notifier,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// MoveTask moves a task to another column. Gates run in order and the first
// failure is returned as a *models.TransitionError without touching the task:
// unresolved dependencies (never bypassed by Force), unknown column, then
// column capacity. The capacity check and the write are one store
// transaction, so concurrent moves cannot overfill a column.
func (s *TransitionService) MoveTask(ctx context.Context, req MoveRequest) error {
	log := s.logger.With("task", req.TaskID, "column", req.TargetColumnID, "actor", req.Actor, "force", req.Force)
	log.Debug("moving task")

	blocked, err := s.deps.HasUnresolvedBlockers(ctx, req.TaskID)
	if err != nil {
		return s.storeUnavailable(log, req, err)
	}
	if blocked {
		log.Warn("move rejected: task is blocked")
		return &models.TransitionError{Kind: models.KindBlocked, TaskID: req.TaskID, ColumnID: req.TargetColumnID}
	}

	column, err := s.columns.Get(ctx, req.TargetColumnID)
	if errors.Is(err, models.ErrColumnNotFound) {
		log.Warn("move rejected: column not found")
		return &models.TransitionError{Kind: models.KindColumnNotFound, TaskID: req.TaskID, ColumnID: req.TargetColumnID}
	}
	if err != nil {
		return s.storeUnavailable(log, req, err)
	}

	task, err := s.tasks.Get(ctx, req.TaskID)
	if errors.Is(err, models.ErrTaskNotFound) {
		return fmt.Errorf("move task %s: %w", req.TaskID, err)
	}
	if err != nil {
		return s.storeUnavailable(log, req, err)
	}
	if task.ProjectID != column.ProjectID {
		log.Warn("move rejected: column belongs to another project", "task_project", task.ProjectID, "column_project", column.ProjectID)
		return &models.TransitionError{Kind: models.KindColumnNotFound, TaskID: req.TaskID, ColumnID: req.TargetColumnID}
	}

	status := s.classifier.Classify(column.Name)
	at := s.now()

	from, err := s.tasks.CommitMove(ctx, repository.MoveCommit{
		TaskID:     req.TaskID,
		ToColumnID: column.ID,
		Status:     status,
		Actor:      req.Actor,
		Force:      req.Force,
		At:         at,
	})
	if err != nil {
		var wip *models.WipLimitError
		switch {
		case errors.As(err, &wip):
			log.Warn("move rejected: WIP limit reached", "limit", wip.Capacity)
			return &models.TransitionError{
				Kind:       models.KindWipLimitExceeded,
				TaskID:     req.TaskID,
				ColumnID:   column.ID,
				ColumnName: wip.ColumnName,
				Capacity:   wip.Capacity,
				Err:        wip,
			}
		case errors.Is(err, models.ErrColumnNotFound):
			return &models.TransitionError{Kind: models.KindColumnNotFound, TaskID: req.TaskID, ColumnID: req.TargetColumnID}
		case errors.Is(err, models.ErrTaskNotFound):
			return fmt.Errorf("move task %s: %w", req.TaskID, err)
		}
		return s.storeUnavailable(log, req, err)
	}

	log.Info("task moved", "from", from, "status", status)

	s.dispatch(models.TransitionEvent{
		TaskID:       req.TaskID,
		ProjectID:    task.ProjectID,
		FromColumnID: from,
		ToColumnID:   column.ID,
		ColumnName:   column.Name,
		Status:       status,
		Actor:        req.Actor,
		Forced:       req.Force,
		OccurredAt:   at,
	})
	return nil
}

// Wait blocks until every in-flight notification has finished.
func (s *TransitionService) Wait() {
	s.pending.Wait()
}

func (s *TransitionService) dispatch(event models.TransitionEvent) {
	if s.notifier == nil {
		return
	}
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := s.notifier.Notify(ctx, event); err != nil {
			s.logger.Error("transition notification failed", "task", event.TaskID, "error", err)
		}
	}()
}

func (s *TransitionService) storeUnavailable(log *slog.Logger, req MoveRequest, err error) error {
	log.Error("move failed: store unavailable", "error", err)
	return &models.TransitionError{Kind: models.KindStoreUnavailable, TaskID: req.TaskID, ColumnID: req.TargetColumnID, Err: err}
}
