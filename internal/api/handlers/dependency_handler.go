package handlers

import (
	"net/http"

	"github.com/kanbanflow/workflow-engine/internal/service"
)

type AddDependencyRequestBody struct {
	BlockerID string `json:"blocker_id"`
}

type DependencyHandler struct {
	dependencyService *service.DependencyService
}

func NewDependencyHandler(dependencyService *service.DependencyService) *DependencyHandler {
	return &DependencyHandler{
		dependencyService: dependencyService,
	}
}

func (h *DependencyHandler) ListDependencies(w http.ResponseWriter, r *http.Request) {
	deps, err := h.dependencyService.Blockers(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, "Error trying to get dependencies", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"dependencies": deps,
	})
}

func (h *DependencyHandler) AddDependency(w http.ResponseWriter, r *http.Request) {
	var reqBody AddDependencyRequestBody
	if err := decodeBody(r, &reqBody); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.dependencyService.AddEdge(r.Context(), r.PathValue("id"), reqBody.BlockerID); err != nil {
		writeDomainError(w, "Error trying to add dependency", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DependencyHandler) RemoveDependency(w http.ResponseWriter, r *http.Request) {
	if err := h.dependencyService.RemoveEdge(r.Context(), r.PathValue("id"), r.PathValue("blocker")); err != nil {
		writeDomainError(w, "Error trying to remove dependency", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
