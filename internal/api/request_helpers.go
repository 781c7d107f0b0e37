package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rcavanagh/taskboard-api/internal/api/shared"
	"github.com/rcavanagh/taskboard-api/internal/platform/logger"
)

// requireUserAndTaskID extracts the authenticated user's ID from the
// context and the task ID from the URL path. It writes an error response
// and returns false if either is missing or malformed.
func requireUserAndTaskID(w http.ResponseWriter, r *http.Request) (userID, taskID uuid.UUID, ok bool) {
	log := logger.FromContext(r.Context())

	userID, found := shared.UserID(r.Context())
	if !found {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
		return uuid.Nil, uuid.Nil, false
	}

	raw := chi.URLParam(r, "id")
	taskID, err := uuid.Parse(raw)
	if err != nil {
		log.Debug("invalid task id in path", "value", raw)
		shared.RespondWithError(w, r, http.StatusNotFound, "Task not found")
		return uuid.Nil, uuid.Nil, false
	}

	return userID, taskID, true
}
