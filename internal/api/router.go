package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/kanbanflow/workflow-engine/internal/api/handlers"
	"github.com/kanbanflow/workflow-engine/internal/client"
	"github.com/kanbanflow/workflow-engine/internal/repository"
	"github.com/kanbanflow/workflow-engine/internal/service"
)

type Options struct {
	Notifier     client.Notifier
	Classifier   *service.Classifier
	RejectCycles bool
	Logger       *slog.Logger
}

type Services struct {
	Board      *service.BoardService
	Dependency *service.DependencyService
	Transition *service.TransitionService
}

func NewServices(db *sql.DB, opts Options) *Services {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	classifier := opts.Classifier
	if classifier == nil {
		classifier = service.NewClassifier()
	}

	projectRepo := repository.NewProjectRepository(db)
	columnRepo := repository.NewColumnRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	dependencyRepo := repository.NewDependencyRepository(db)

	dependencyService := service.NewDependencyService(
		dependencyRepo,
		taskRepo,
		opts.RejectCycles,
		logger.With("component", "dependencies"),
	)

	transitionService := service.NewTransitionService(
		taskRepo,
		columnRepo,
		dependencyService,
		classifier,
		opts.Notifier,
		logger.With("component", "transitions"),
	)

	boardService := service.NewBoardService(
		projectRepo,
		columnRepo,
		taskRepo,
		logger.With("component", "boards"),
	)

	return &Services{
		Board:      boardService,
		Dependency: dependencyService,
		Transition: transitionService,
	}
}

func SetupRouter(services *Services) *http.ServeMux {
	mux := http.NewServeMux()

	boardHandler := handlers.NewBoardHandler(services.Board)
	taskHandler := handlers.NewTaskHandler(services.Board, services.Transition)
	dependencyHandler := handlers.NewDependencyHandler(services.Dependency)

	mux.HandleFunc("POST /projects", boardHandler.CreateBoard)
	mux.HandleFunc("GET /projects/{id}/board", boardHandler.GetBoard)
	mux.HandleFunc("GET /columns/{id}", boardHandler.GetColumn)

	mux.HandleFunc("POST /projects/{id}/tasks", taskHandler.CreateTask)
	mux.HandleFunc("GET /tasks/{id}", taskHandler.GetTask)
	mux.HandleFunc("DELETE /tasks/{id}", taskHandler.DeleteTask)
	mux.HandleFunc("POST /tasks/{id}/move", taskHandler.MoveTask)
	mux.HandleFunc("GET /tasks/{id}/transitions", taskHandler.GetTransitions)

	mux.HandleFunc("GET /tasks/{id}/dependencies", dependencyHandler.ListDependencies)
	mux.HandleFunc("POST /tasks/{id}/dependencies", dependencyHandler.AddDependency)
	mux.HandleFunc("DELETE /tasks/{id}/dependencies/{blocker}", dependencyHandler.RemoveDependency)

	return mux
}
