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

type ProjectRepository struct {
	db *sql.DB
}

func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(ctx context.Context, project *models.Project) error {
	if project.ID == "" {
		project.ID = uuid.NewString()
	}
	if project.CreatedAt.IsZero() {
		project.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO projects (id, name, created_at) VALUES (?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, project.ID, project.Name, project.CreatedAt); err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

func (r *ProjectRepository) Get(ctx context.Context, id string) (*models.Project, error) {
	query := `SELECT id, name, archived_at, created_at FROM projects WHERE id = ?`

	var p models.Project
	var archivedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Name, &archivedAt, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	if archivedAt.Valid {
		p.ArchivedAt = &archivedAt.Time
	}
	return &p, nil
}

// Archive takes a project off the live board; its columns stop resolving.
func (r *ProjectRepository) Archive(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE projects SET archived_at = ? WHERE id = ? AND archived_at IS NULL`,
		time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("archive project: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("archive project rows affected: %w", err)
	}
	if rows == 0 {
		return models.ErrProjectNotFound
	}
	return nil
}
