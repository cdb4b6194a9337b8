package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kanbanflow/workflow-engine/internal/models"
	"github.com/kanbanflow/workflow-engine/internal/repository"
)

// BoardDefinition describes a project board as loaded from a YAML file.
type BoardDefinition struct {
	Project string             `json:"project" yaml:"project"`
	Columns []ColumnDefinition `json:"columns" yaml:"columns"`
}

type ColumnDefinition struct {
	Name     string `json:"name" yaml:"name"`
	Capacity *int   `json:"capacity,omitempty" yaml:"capacity,omitempty"`
}

type Board struct {
	Project models.Project  `json:"project"`
	Columns []models.Column `json:"columns"`
}

type BoardService struct {
	projectRepo *repository.ProjectRepository
	columnRepo  *repository.ColumnRepository
	taskRepo    *repository.TaskRepository
	logger      *slog.Logger
}

func NewBoardService(
	projectRepo *repository.ProjectRepository,
	columnRepo *repository.ColumnRepository,
	taskRepo *repository.TaskRepository,
	logger *slog.Logger,
) *BoardService {
	return &BoardService{
		projectRepo: projectRepo,
		columnRepo:  columnRepo,
		taskRepo:    taskRepo,
		logger:      logger,
	}
}

// LoadBoard creates a project and its columns; column positions follow the
// order of the definition.
func (s *BoardService) LoadBoard(ctx context.Context, def BoardDefinition) (*Board, error) {
	if strings.TrimSpace(def.Project) == "" {
		return nil, fmt.Errorf("%w: project name is required", models.ErrInvalidArgument)
	}
	if len(def.Columns) == 0 {
		return nil, models.ErrNoColumns
	}
	for _, cd := range def.Columns {
		if strings.TrimSpace(cd.Name) == "" {
			return nil, fmt.Errorf("%w: column name is required", models.ErrInvalidArgument)
		}
		if cd.Capacity != nil && *cd.Capacity <= 0 {
			return nil, fmt.Errorf("%w: column %q capacity must be positive", models.ErrInvalidArgument, cd.Name)
		}
	}

	project := &models.Project{Name: def.Project}
	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("load board: %w", err)
	}

	board := &Board{Project: *project}
	for i, cd := range def.Columns {
		column := &models.Column{
			ProjectID: project.ID,
			Name:      cd.Name,
			Position:  i,
			Capacity:  cd.Capacity,
		}
		if err := s.columnRepo.Create(ctx, column); err != nil {
			return nil, fmt.Errorf("load board column %q: %w", cd.Name, err)
		}
		board.Columns = append(board.Columns, *column)
	}

	s.logger.Info("board loaded", "project", project.ID, "name", project.Name, "columns", len(board.Columns))
	return board, nil
}

func (s *BoardService) GetBoard(ctx context.Context, projectID string) (*Board, error) {
	project, err := s.projectRepo.Get(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("get board: %w", err)
	}
	columns, err := s.columnRepo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("get board: %w", err)
	}
	return &Board{Project: *project, Columns: columns}, nil
}

func (s *BoardService) ArchiveProject(ctx context.Context, projectID string) error {
	if err := s.projectRepo.Archive(ctx, projectID); err != nil {
		return fmt.Errorf("archive project: %w", err)
	}
	s.logger.Info("project archived", "project", projectID)
	return nil
}

func (s *BoardService) Reconcile(ctx context.Context, projectID string) (int, error) {
	fixed, err := s.columnRepo.Reconcile(ctx, projectID)
	if err != nil {
		return 0, err
	}
	if fixed > 0 {
		s.logger.Warn("occupancy counters corrected", "project", projectID, "columns", fixed)
	}
	return fixed, nil
}

func (s *BoardService) GetColumn(ctx context.Context, id string) (*models.Column, error) {
	return s.columnRepo.Get(ctx, id)
}

func (s *BoardService) CreateTask(ctx context.Context, task *models.Task) error {
	if strings.TrimSpace(task.Title) == "" {
		return fmt.Errorf("%w: title is required", models.ErrInvalidArgument)
	}
	if _, err := s.projectRepo.Get(ctx, task.ProjectID); err != nil {
		return err
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return err
	}
	s.logger.Debug("task created", "task", task.ID, "project", task.ProjectID, "column", task.ColumnID)
	return nil
}

func (s *BoardService) GetTask(ctx context.Context, id string) (*models.Task, error) {
	return s.taskRepo.Get(ctx, id)
}

func (s *BoardService) DeleteTask(ctx context.Context, id string) error {
	if err := s.taskRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Debug("task deleted", "task", id)
	return nil
}

func (s *BoardService) History(ctx context.Context, taskID string) ([]models.Transition, error) {
	return s.taskRepo.History(ctx, taskID)
}
