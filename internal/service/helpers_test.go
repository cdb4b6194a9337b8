package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/kanbanflow/workflow-engine/internal/models"
	"github.com/kanbanflow/workflow-engine/internal/repository"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func intPtr(v int) *int { return &v }

// recordingNotifier captures events and optionally fails every call.
type recordingNotifier struct {
	mu     sync.Mutex
	events []models.TransitionEvent
	err    error
}

func (n *recordingNotifier) Notify(ctx context.Context, event models.TransitionEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return n.err
}

func (n *recordingNotifier) Events() []models.TransitionEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]models.TransitionEvent, len(n.events))
	copy(out, n.events)
	return out
}

type testEnv struct {
	db          *sql.DB
	tasks       *repository.TaskRepository
	columns     *repository.ColumnRepository
	board       *BoardService
	deps        *DependencyService
	transitions *TransitionService
	notifier    *recordingNotifier
}

func newTestEnv(t *testing.T, rejectCycles bool) *testEnv {
	t.Helper()

	db, err := repository.InitDB(repository.DriverModernc, filepath.Join(t.TempDir(), "test.db"), 0)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := testLogger()
	tasks := repository.NewTaskRepository(db)
	columns := repository.NewColumnRepository(db)
	notifier := &recordingNotifier{}
	deps := NewDependencyService(repository.NewDependencyRepository(db), tasks, rejectCycles, logger)

	env := &testEnv{
		db:       db,
		tasks:    tasks,
		columns:  columns,
		board:    NewBoardService(repository.NewProjectRepository(db), columns, tasks, logger),
		deps:     deps,
		notifier: notifier,
	}
	env.transitions = NewTransitionService(tasks, columns, deps, NewClassifier(), notifier, logger)
	t.Cleanup(env.transitions.Wait)
	return env
}

func (e *testEnv) loadBoard(t *testing.T, columns ...ColumnDefinition) *Board {
	t.Helper()
	board, err := e.board.LoadBoard(context.Background(), BoardDefinition{Project: "Website", Columns: columns})
	require.NoError(t, err)
	return board
}

func (e *testEnv) createTask(t *testing.T, projectID, title string) *models.Task {
	t.Helper()
	task := &models.Task{ProjectID: projectID, Title: title}
	require.NoError(t, e.board.CreateTask(context.Background(), task))
	return task
}

func columnID(t *testing.T, b *Board, name string) string {
	t.Helper()
	for _, c := range b.Columns {
		if c.Name == name {
			return c.ID
		}
	}
	t.Fatalf("column %q not on board", name)
	return ""
}

func requireKind(t *testing.T, err error, kind models.TransitionErrorKind) *models.TransitionError {
	t.Helper()
	var te *models.TransitionError
	require.True(t, errors.As(err, &te), "expected TransitionError, got %v", err)
	require.Equal(t, kind, te.Kind)
	return te
}
