package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/kanbanflow/workflow-engine/internal/models"
)

type ColumnRepository struct {
	db *sql.DB
}

func NewColumnRepository(db *sql.DB) *ColumnRepository {
	return &ColumnRepository{db: db}
}

func (r *ColumnRepository) Create(ctx context.Context, column *models.Column) error {
	if column.ID == "" {
		column.ID = uuid.NewString()
	}
	if column.Capacity != nil && *column.Capacity <= 0 {
		return fmt.Errorf("%w: capacity must be positive, got %d", models.ErrInvalidArgument, *column.Capacity)
	}

	query := `
		INSERT INTO columns (id, project_id, name, position, capacity)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		column.ID,
		column.ProjectID,
		column.Name,
		column.Position,
		nullableInt(column.Capacity),
	)
	if err != nil {
		return fmt.Errorf("create column: %w", err)
	}
	column.Occupancy = 0
	return nil
}

// Get resolves a column that belongs to a live (non-archived) project.
func (r *ColumnRepository) Get(ctx context.Context, id string) (*models.Column, error) {
	query := `
		SELECT c.id, c.project_id, c.name, c.position, c.capacity, c.occupancy
		FROM columns c
		JOIN projects p ON p.id = c.project_id
		WHERE c.id = ? AND p.archived_at IS NULL
	`
	c, err := scanColumn(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrColumnNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get column: %w", err)
	}
	return c, nil
}

// Occupancy reads the live task count of a column from the store.
func (r *ColumnRepository) Occupancy(ctx context.Context, id string) (int, error) {
	var occupancy int
	err := r.db.QueryRowContext(ctx, `SELECT occupancy FROM columns WHERE id = ?`, id).Scan(&occupancy)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, models.ErrColumnNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get column occupancy: %w", err)
	}
	return occupancy, nil
}

func (r *ColumnRepository) ListByProject(ctx context.Context, projectID string) ([]models.Column, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, project_id, name, position, capacity, occupancy
		FROM columns
		WHERE project_id = ?
		ORDER BY position ASC, name ASC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list columns by project: %w", err)
	}
	defer rows.Close()

	var columns []models.Column
	for rows.Next() {
		c, err := scanColumn(rows)
		if err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		columns = append(columns, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate columns: %w", err)
	}
	return columns, nil
}

// Reconcile rewrites every counter of the project from the tasks table and
// returns the number of columns whose counter was off.
func (r *ColumnRepository) Reconcile(ctx context.Context, projectID string) (int, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE columns
		SET occupancy = (SELECT COUNT(*) FROM tasks t WHERE t.column_id = columns.id)
		WHERE project_id = ?
		  AND occupancy <> (SELECT COUNT(*) FROM tasks t WHERE t.column_id = columns.id)
	`, projectID)
	if err != nil {
		return 0, fmt.Errorf("reconcile occupancy: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reconcile occupancy rows affected: %w", err)
	}
	return int(n), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanColumn(row rowScanner) (*models.Column, error) {
	var c models.Column
	var capacity sql.NullInt64
	if err := row.Scan(&c.ID, &c.ProjectID, &c.Name, &c.Position, &capacity, &c.Occupancy); err != nil {
		return nil, err
	}
	if capacity.Valid {
		v := int(capacity.Int64)
		c.Capacity = &v
	}
	return &c, nil
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
