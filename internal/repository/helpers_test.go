package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/kanbanflow/workflow-engine/internal/models"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := InitDB(DriverModernc, filepath.Join(t.TempDir(), "test.db"), 0)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func intPtr(v int) *int { return &v }

type testBoard struct {
	project *models.Project
	columns map[string]*models.Column
}

// seedBoard creates a project with columns in the given order.
func seedBoard(t *testing.T, db *sql.DB, columns ...models.Column) *testBoard {
	t.Helper()
	ctx := context.Background()

	project := &models.Project{Name: "Website"}
	require.NoError(t, NewProjectRepository(db).Create(ctx, project))

	board := &testBoard{project: project, columns: make(map[string]*models.Column)}
	repo := NewColumnRepository(db)
	for i := range columns {
		c := columns[i]
		c.ProjectID = project.ID
		c.Position = i
		require.NoError(t, repo.Create(ctx, &c))
		board.columns[c.Name] = &c
	}
	return board
}

func seedTask(t *testing.T, db *sql.DB, projectID, title string) *models.Task {
	t.Helper()
	task := &models.Task{ProjectID: projectID, Title: title}
	require.NoError(t, NewTaskRepository(db).Create(context.Background(), task))
	return task
}
