package handlers

import (
	"net/http"

	"github.com/kanbanflow/workflow-engine/internal/service"
)

type BoardHandler struct {
	boardService *service.BoardService
}

func NewBoardHandler(boardService *service.BoardService) *BoardHandler {
	return &BoardHandler{
		boardService: boardService,
	}
}

func (h *BoardHandler) CreateBoard(w http.ResponseWriter, r *http.Request) {
	var def service.BoardDefinition
	if err := decodeBody(r, &def); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	board, err := h.boardService.LoadBoard(r.Context(), def)
	if err != nil {
		writeDomainError(w, "Error trying to create board", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"board": board,
	})
}

func (h *BoardHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
	board, err := h.boardService.GetBoard(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, "Error trying to get board", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"board": board,
	})
}

func (h *BoardHandler) GetColumn(w http.ResponseWriter, r *http.Request) {
	column, err := h.boardService.GetColumn(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, "Error trying to get column", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"column": column,
	})
}
