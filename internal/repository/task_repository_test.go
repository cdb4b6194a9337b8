package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/kanbanflow/workflow-engine/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskRepository_CreatePlacesTaskInFirstColumn(t *testing.T) {
	db := newTestDB(t)
	board := seedBoard(t, db,
		models.Column{Name: "Backlog"},
		models.Column{Name: "Done"},
	)
	repo := NewTaskRepository(db)
	ctx := context.Background()

	assignee := "user-7"
	task := &models.Task{ProjectID: board.project.ID, Title: "Write docs", AssigneeID: &assignee}
	require.NoError(t, repo.Create(ctx, task))

	assert.NotEmpty(t, task.ID)
	assert.Equal(t, board.columns["Backlog"].ID, task.ColumnID)
	assert.Equal(t, models.TaskStatusNotStarted, task.Status)

	got, err := repo.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Write docs", got.Title)
	assert.Equal(t, board.columns["Backlog"].ID, got.ColumnID)
	require.NotNil(t, got.AssigneeID)
	assert.Equal(t, "user-7", *got.AssigneeID)

	n, err := NewColumnRepository(db).Occupancy(ctx, board.columns["Backlog"].ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestTaskRepository_CreateWithoutColumns(t *testing.T) {
	db := newTestDB(t)
	project := &models.Project{Name: "Empty"}
	require.NoError(t, NewProjectRepository(db).Create(context.Background(), project))

	err := NewTaskRepository(db).Create(context.Background(), &models.Task{ProjectID: project.ID, Title: "x"})
	assert.ErrorIs(t, err, models.ErrNoColumns)
}

func TestTaskRepository_GetMissing(t *testing.T) {
	db := newTestDB(t)
	_, err := NewTaskRepository(db).Get(context.Background(), "nope")
	assert.ErrorIs(t, err, models.ErrTaskNotFound)
}

func TestTaskRepository_CommitMove(t *testing.T) {
	db := newTestDB(t)
	board := seedBoard(t, db,
		models.Column{Name: "Backlog"},
		models.Column{Name: "In Progress", Capacity: intPtr(1)},
	)
	repo := NewTaskRepository(db)
	columns := NewColumnRepository(db)
	ctx := context.Background()
	backlog := board.columns["Backlog"].ID
	doing := board.columns["In Progress"].ID

	first := seedTask(t, db, board.project.ID, "first")
	second := seedTask(t, db, board.project.ID, "second")

	t.Run("moves and keeps counters in step", func(t *testing.T) {
		from, err := repo.CommitMove(ctx, MoveCommit{
			TaskID:     first.ID,
			ToColumnID: doing,
			Status:     models.TaskStatusInProgress,
			Actor:      "alice",
		})
		require.NoError(t, err)
		assert.Equal(t, backlog, from)

		got, err := repo.Get(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, doing, got.ColumnID)
		assert.Equal(t, models.TaskStatusInProgress, got.Status)

		n, _ := columns.Occupancy(ctx, doing)
		assert.Equal(t, 1, n)
		n, _ = columns.Occupancy(ctx, backlog)
		assert.Equal(t, 1, n)
	})

	t.Run("refuses a full column without touching rows", func(t *testing.T) {
		before, err := repo.Get(ctx, second.ID)
		require.NoError(t, err)

		_, err = repo.CommitMove(ctx, MoveCommit{
			TaskID:     second.ID,
			ToColumnID: doing,
			Status:     models.TaskStatusInProgress,
		})
		var wip *models.WipLimitError
		require.True(t, errors.As(err, &wip))
		assert.Equal(t, "In Progress", wip.ColumnName)
		assert.Equal(t, 1, wip.Capacity)

		after, err := repo.Get(ctx, second.ID)
		require.NoError(t, err)
		assert.Equal(t, before.ColumnID, after.ColumnID)
		assert.Equal(t, before.Status, after.Status)
		assert.Equal(t, before.UpdatedAt, after.UpdatedAt)

		n, _ := columns.Occupancy(ctx, doing)
		assert.Equal(t, 1, n)
	})

	t.Run("forced move overfills", func(t *testing.T) {
		_, err := repo.CommitMove(ctx, MoveCommit{
			TaskID:     second.ID,
			ToColumnID: doing,
			Status:     models.TaskStatusInProgress,
			Force:      true,
		})
		require.NoError(t, err)

		n, _ := columns.Occupancy(ctx, doing)
		assert.Equal(t, 2, n)
		n, _ = columns.Occupancy(ctx, backlog)
		assert.Equal(t, 0, n)
	})

	t.Run("same column does not change occupancy", func(t *testing.T) {
		from, err := repo.CommitMove(ctx, MoveCommit{
			TaskID:     first.ID,
			ToColumnID: doing,
			Status:     models.TaskStatusInProgress,
		})
		require.NoError(t, err)
		assert.Equal(t, doing, from)

		n, _ := columns.Occupancy(ctx, doing)
		assert.Equal(t, 2, n)
	})

	t.Run("unknown task", func(t *testing.T) {
		_, err := repo.CommitMove(ctx, MoveCommit{TaskID: "ghost", ToColumnID: doing})
		assert.ErrorIs(t, err, models.ErrTaskNotFound)
	})

	t.Run("history records every commit", func(t *testing.T) {
		history, err := repo.History(ctx, second.ID)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, backlog, history[0].FromColumnID)
		assert.Equal(t, doing, history[0].ToColumnID)
		assert.True(t, history[0].Forced)

		history, err = repo.History(ctx, first.ID)
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.Equal(t, "alice", history[0].Actor)
	})
}

// The conditional increment is what keeps a bounded column from being
// overfilled by concurrent moves; this test fails if the check and the write
// are split.
func TestTaskRepository_CommitMoveConcurrentCapacity(t *testing.T) {
	const (
		capacity = 3
		movers   = 16
	)

	db := newTestDB(t)
	board := seedBoard(t, db,
		models.Column{Name: "Backlog"},
		models.Column{Name: "Review", Capacity: intPtr(capacity)},
	)
	repo := NewTaskRepository(db)
	review := board.columns["Review"].ID

	tasks := make([]*models.Task, movers)
	for i := range tasks {
		tasks[i] = seedTask(t, db, board.project.ID, "task")
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for _, task := range tasks {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := repo.CommitMove(context.Background(), MoveCommit{
				TaskID:     id,
				ToColumnID: review,
				Status:     models.TaskStatusInProgress,
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
			} else if errors.Is(err, models.ErrWipLimitExceeded) {
				rejected++
			}
		}(task.ID)
	}
	wg.Wait()

	assert.Equal(t, capacity, succeeded)
	assert.Equal(t, movers-capacity, rejected)

	var inColumn int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM tasks WHERE column_id = ?`, review).Scan(&inColumn))
	assert.Equal(t, capacity, inColumn)

	n, err := NewColumnRepository(db).Occupancy(context.Background(), review)
	require.NoError(t, err)
	assert.Equal(t, capacity, n)
}

func TestTaskRepository_DeleteCascades(t *testing.T) {
	db := newTestDB(t)
	board := seedBoard(t, db, models.Column{Name: "Backlog"})
	repo := NewTaskRepository(db)
	deps := NewDependencyRepository(db)
	ctx := context.Background()

	a := seedTask(t, db, board.project.ID, "a")
	b := seedTask(t, db, board.project.ID, "b")
	c := seedTask(t, db, board.project.ID, "c")

	_, err := deps.Add(ctx, a.ID, b.ID)
	require.NoError(t, err)
	_, err = deps.Add(ctx, b.ID, c.ID)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, b.ID))

	_, err = repo.Get(ctx, b.ID)
	assert.ErrorIs(t, err, models.ErrTaskNotFound)

	blocked, err := deps.HasBlockers(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, blocked, "edge to deleted blocker should be gone")

	n, err := NewColumnRepository(db).Occupancy(ctx, board.columns["Backlog"].ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.ErrorIs(t, repo.Delete(ctx, b.ID), models.ErrTaskNotFound)
}
