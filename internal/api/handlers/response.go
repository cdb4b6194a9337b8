package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/kanbanflow/workflow-engine/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}

// writeDomainError maps engine and store errors to a status code and message.
func writeDomainError(w http.ResponseWriter, prefix string, err error) {
	var te *models.TransitionError
	if errors.As(err, &te) {
		body := map[string]any{
			"error": prefix + ": " + transitionMessage(te),
			"kind":  te.Kind,
		}
		if te.Kind == models.KindWipLimitExceeded {
			body["column"] = te.ColumnName
			body["limit"] = te.Capacity
		}
		writeJSON(w, transitionStatus(te.Kind), body)
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrTaskNotFound),
		errors.Is(err, models.ErrColumnNotFound),
		errors.Is(err, models.ErrProjectNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrInvalidArgument),
		errors.Is(err, models.ErrSelfDependency),
		errors.Is(err, models.ErrNoColumns):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrDependencyCycle):
		status = http.StatusConflict
	}
	writeError(w, status, prefix+": "+err.Error())
}

func transitionStatus(kind models.TransitionErrorKind) int {
	switch kind {
	case models.KindBlocked, models.KindWipLimitExceeded:
		return http.StatusConflict
	case models.KindColumnNotFound:
		return http.StatusNotFound
	case models.KindStoreUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func transitionMessage(te *models.TransitionError) string {
	switch te.Kind {
	case models.KindBlocked:
		return "task is blocked by unresolved dependencies"
	case models.KindColumnNotFound:
		return "column not found"
	case models.KindWipLimitExceeded:
		return fmt.Sprintf("column %q has reached its WIP limit of %d", te.ColumnName, te.Capacity)
	case models.KindStoreUnavailable:
		return "the move did not take effect, try again later"
	}
	return te.Error()
}

func decodeBody(r *http.Request, dst any) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return fmt.Errorf("Error trying to read the body: %w", err)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("JSON error: %w", err)
	}
	return nil
}
