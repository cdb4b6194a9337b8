package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kanbanflow/workflow-engine/internal/models"
)

type DependencyService struct {
	deps         DependencyStore
	tasks        TaskStore
	rejectCycles bool
	logger       *slog.Logger
}

func NewDependencyService(deps DependencyStore, tasks TaskStore, rejectCycles bool, logger *slog.Logger) *DependencyService {
	return &DependencyService{
		deps:         deps,
		tasks:        tasks,
		rejectCycles: rejectCycles,
		logger:       logger,
	}
}

// HasUnresolvedBlockers is true while any direct edge from the task exists.
// The blocker's own status is not consulted and blockers of blockers are
// irrelevant.
func (s *DependencyService) HasUnresolvedBlockers(ctx context.Context, taskID string) (bool, error) {
	return s.deps.HasBlockers(ctx, taskID)
}

func (s *DependencyService) AddEdge(ctx context.Context, taskID, blockerID string) error {
	if taskID == "" || blockerID == "" {
		return fmt.Errorf("%w: task and blocker ids are required", models.ErrInvalidArgument)
	}
	if taskID == blockerID {
		return models.ErrSelfDependency
	}

	for _, id := range []string{taskID, blockerID} {
		if _, err := s.tasks.Get(ctx, id); err != nil {
			return fmt.Errorf("get task %s: %w", id, err)
		}
	}

	if s.rejectCycles {
		graph, err := s.deps.Adjacency(ctx)
		if err != nil {
			return fmt.Errorf("load dependency graph: %w", err)
		}
		if path := findPath(graph, blockerID, taskID); path != nil {
			s.logger.Warn("rejected dependency cycle", "task", taskID, "blocker", blockerID, "path", path)
			return fmt.Errorf("%w: %v", models.ErrDependencyCycle, append([]string{taskID}, path...))
		}
	}

	added, err := s.deps.Add(ctx, taskID, blockerID)
	if err != nil {
		return err
	}
	s.logger.Debug("dependency added", "task", taskID, "blocker", blockerID, "new", added)
	return nil
}

func (s *DependencyService) RemoveEdge(ctx context.Context, taskID, blockerID string) error {
	removed, err := s.deps.Remove(ctx, taskID, blockerID)
	if err != nil {
		return err
	}
	s.logger.Debug("dependency removed", "task", taskID, "blocker", blockerID, "existed", removed)
	return nil
}

func (s *DependencyService) Blockers(ctx context.Context, taskID string) ([]models.Dependency, error) {
	return s.deps.ListByTask(ctx, taskID)
}

// findPath returns the chain of task ids from -> ... -> to following
// blocker edges, or nil when to is unreachable.
func findPath(graph map[string][]string, from, to string) []string {
	visited := make(map[string]bool)
	parent := make(map[string]string)

	var dfs func(node string) bool
	dfs = func(node string) bool {
		if node == to {
			return true
		}
		visited[node] = true
		for _, next := range graph[node] {
			if visited[next] {
				continue
			}
			parent[next] = node
			if dfs(next) {
				return true
			}
		}
		return false
	}

	if !dfs(from) {
		return nil
	}

	path := []string{to}
	for cur := to; cur != from; {
		cur = parent[cur]
		path = append(path, cur)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
