package repository

import (
	"context"
	"testing"

	"github.com/kanbanflow/workflow-engine/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnRepository_Get(t *testing.T) {
	db := newTestDB(t)
	board := seedBoard(t, db,
		models.Column{Name: "Backlog"},
		models.Column{Name: "In Progress", Capacity: intPtr(2)},
	)
	repo := NewColumnRepository(db)
	ctx := context.Background()

	t.Run("unbounded column", func(t *testing.T) {
		c, err := repo.Get(ctx, board.columns["Backlog"].ID)
		require.NoError(t, err)
		assert.Equal(t, "Backlog", c.Name)
		assert.Nil(t, c.Capacity)
		assert.False(t, c.HasCapacity())
	})

	t.Run("bounded column", func(t *testing.T) {
		c, err := repo.Get(ctx, board.columns["In Progress"].ID)
		require.NoError(t, err)
		require.NotNil(t, c.Capacity)
		assert.Equal(t, 2, *c.Capacity)
		assert.Equal(t, 1, c.Position)
	})

	t.Run("unknown column", func(t *testing.T) {
		_, err := repo.Get(ctx, "missing")
		assert.ErrorIs(t, err, models.ErrColumnNotFound)
	})

	t.Run("archived project hides its columns", func(t *testing.T) {
		require.NoError(t, NewProjectRepository(db).Archive(ctx, board.project.ID))
		_, err := repo.Get(ctx, board.columns["Backlog"].ID)
		assert.ErrorIs(t, err, models.ErrColumnNotFound)
	})
}

func TestColumnRepository_CreateRejectsNonPositiveCapacity(t *testing.T) {
	db := newTestDB(t)
	board := seedBoard(t, db, models.Column{Name: "Backlog"})

	err := NewColumnRepository(db).Create(context.Background(), &models.Column{
		ProjectID: board.project.ID,
		Name:      "Broken",
		Capacity:  intPtr(0),
	})
	assert.ErrorIs(t, err, models.ErrInvalidArgument)
}

func TestColumnRepository_ListByProjectOrdersByPosition(t *testing.T) {
	db := newTestDB(t)
	board := seedBoard(t, db,
		models.Column{Name: "Todo"},
		models.Column{Name: "Doing"},
		models.Column{Name: "Done"},
	)

	columns, err := NewColumnRepository(db).ListByProject(context.Background(), board.project.ID)
	require.NoError(t, err)
	require.Len(t, columns, 3)
	assert.Equal(t, "Todo", columns[0].Name)
	assert.Equal(t, "Doing", columns[1].Name)
	assert.Equal(t, "Done", columns[2].Name)
}

func TestColumnRepository_OccupancyAndReconcile(t *testing.T) {
	db := newTestDB(t)
	board := seedBoard(t, db, models.Column{Name: "Backlog"}, models.Column{Name: "Done"})
	repo := NewColumnRepository(db)
	ctx := context.Background()
	backlog := board.columns["Backlog"].ID

	seedTask(t, db, board.project.ID, "one")
	seedTask(t, db, board.project.ID, "two")

	n, err := repo.Occupancy(ctx, backlog)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = db.Exec(`UPDATE columns SET occupancy = 7 WHERE id = ?`, backlog)
	require.NoError(t, err)

	fixed, err := repo.Reconcile(ctx, board.project.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, fixed)

	n, err = repo.Occupancy(ctx, backlog)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = repo.Occupancy(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrColumnNotFound)
}
