package handlers

import (
	"net/http"

	"github.com/kanbanflow/workflow-engine/internal/models"
	"github.com/kanbanflow/workflow-engine/internal/service"
)

type CreateTaskRequestBody struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	AssigneeID  *string `json:"assignee_id"`
}

type MoveTaskRequestBody struct {
	ColumnID string `json:"column_id"`
	Actor    string `json:"actor"`
	Force    bool   `json:"force"`
}

type TaskHandler struct {
	boardService      *service.BoardService
	transitionService *service.TransitionService
}

func NewTaskHandler(boardService *service.BoardService, transitionService *service.TransitionService) *TaskHandler {
	return &TaskHandler{
		boardService:      boardService,
		transitionService: transitionService,
	}
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var reqBody CreateTaskRequestBody
	if err := decodeBody(r, &reqBody); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	task := &models.Task{
		ProjectID:   r.PathValue("id"),
		Title:       reqBody.Title,
		Description: reqBody.Description,
		AssigneeID:  reqBody.AssigneeID,
	}
	if err := h.boardService.CreateTask(r.Context(), task); err != nil {
		writeDomainError(w, "Error trying to create task", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"task": task,
	})
}

func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.boardService.GetTask(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, "Error trying to get task", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"task": task,
	})
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := h.boardService.DeleteTask(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, "Error trying to delete task", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) MoveTask(w http.ResponseWriter, r *http.Request) {
	var reqBody MoveTaskRequestBody
	if err := decodeBody(r, &reqBody); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if reqBody.ColumnID == "" {
		writeError(w, http.StatusBadRequest, "column_id is required")
		return
	}

	taskID := r.PathValue("id")
	err := h.transitionService.MoveTask(r.Context(), service.MoveRequest{
		TaskID:         taskID,
		TargetColumnID: reqBody.ColumnID,
		Actor:          reqBody.Actor,
		Force:          reqBody.Force,
	})
	if err != nil {
		writeDomainError(w, "Error trying to move task", err)
		return
	}

	task, err := h.boardService.GetTask(r.Context(), taskID)
	if err != nil {
		writeDomainError(w, "Task moved but could not be reloaded", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"task": task,
	})
}

func (h *TaskHandler) GetTransitions(w http.ResponseWriter, r *http.Request) {
	transitions, err := h.boardService.History(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, "Error trying to get transitions", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"transitions": transitions,
	})
}
