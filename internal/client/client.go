package client

import (
	"context"
	"errors"
	"log/slog"

	"github.com/kanbanflow/workflow-engine/internal/models"
)

// Notifier is told about committed transitions, typically to invalidate
// cached board views.
type Notifier interface {
	Notify(ctx context.Context, event models.TransitionEvent) error
}

type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, event models.TransitionEvent) error {
	n.logger.Info("task transitioned",
		"task", event.TaskID,
		"project", event.ProjectID,
		"from", event.FromColumnID,
		"to", event.ToColumnID,
		"status", event.Status,
		"actor", event.Actor,
		"forced", event.Forced,
	)
	return nil
}

// MultiNotifier delivers to every notifier and joins their errors.
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(ctx context.Context, event models.TransitionEvent) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
