package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/rcavanagh/taskboard-api/internal/api/shared"
	"github.com/rcavanagh/taskboard-api/internal/domain"
	"github.com/rcavanagh/taskboard-api/internal/service/task"
)

// dueDateLayout is the calendar-date format task payloads use.
const dueDateLayout = "2006-01-02"

// TaskHandler handles task-related API requests.
type TaskHandler struct {
	taskService *task.Service
}

// NewTaskHandler creates a new TaskHandler with the given dependencies.
func NewTaskHandler(taskService *task.Service) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// List handles GET /tasks.
// Query parameters: status, priority, due_date (each optional exact
// filters), sort (comma-separated keys, "-" prefix for descending) and
// page (1-based; ten tasks per page).
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := shared.UserID(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
		return
	}

	q := r.URL.Query()

	filter, err := task.ParseFilter(q.Get("status"), q.Get("priority"), q.Get("due_date"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	sort := task.ParseSort(q.Get("sort"))

	page := 1
	if raw := q.Get("page"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			page = parsed
		}
	}

	result, err := h.taskService.List(r.Context(), userID, filter, sort, page)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TaskListResponse{
		Data:        result.Tasks,
		Total:       result.Total,
		PerPage:     result.PerPage,
		CurrentPage: result.CurrentPage,
		LastPage:    result.LastPage,
	})
}

// Create handles POST /tasks.
// The creator is always the authenticated caller, regardless of payload.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := shared.UserID(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithValidationErrors(w, r, validationFieldErrors(err))
		return
	}

	input := task.CreateInput{
		Title:       req.Title,
		Description: req.Description,
	}

	if req.Status != "" {
		status, err := domain.ParseTaskStatus(req.Status)
		if err != nil {
			shared.RespondWithValidationErrors(w, r, map[string][]string{
				"status": {validationMessage("status", "oneof")},
			})
			return
		}
		input.Status = status
	}

	if req.Priority != "" {
		priority, err := domain.ParseTaskPriority(req.Priority)
		if err != nil {
			shared.RespondWithValidationErrors(w, r, map[string][]string{
				"priority": {validationMessage("priority", "oneof")},
			})
			return
		}
		input.Priority = priority
	}

	if req.DueDate != "" {
		due, err := time.Parse(dueDateLayout, req.DueDate)
		if err != nil {
			shared.RespondWithValidationErrors(w, r, map[string][]string{
				"due_date": {"The due_date must be a date in YYYY-MM-DD format."},
			})
			return
		}
		input.DueDate = &due
	}

	created, err := h.taskService.Create(r.Context(), userID, input)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, created)
}

// Get handles GET /tasks/{id}.
// A task the caller cannot view yields 403, not 404.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := requireUserAndTaskID(w, r)
	if !ok {
		return
	}

	found, err := h.taskService.Get(r.Context(), userID, taskID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, found)
}

// Update handles PUT /tasks/{id}.
// Applies a partial update to the whitelisted fields only.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := requireUserAndTaskID(w, r)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithValidationErrors(w, r, validationFieldErrors(err))
		return
	}

	update := domain.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
	}

	if req.Status != nil {
		status, err := domain.ParseTaskStatus(*req.Status)
		if err != nil {
			shared.RespondWithValidationErrors(w, r, map[string][]string{
				"status": {validationMessage("status", "oneof")},
			})
			return
		}
		update.Status = &status
	}

	if req.Priority != nil {
		priority, err := domain.ParseTaskPriority(*req.Priority)
		if err != nil {
			shared.RespondWithValidationErrors(w, r, map[string][]string{
				"priority": {validationMessage("priority", "oneof")},
			})
			return
		}
		update.Priority = &priority
	}

	if req.DueDate != nil {
		if *req.DueDate == "" {
			update.ClearDueDate = true
		} else {
			due, err := time.Parse(dueDateLayout, *req.DueDate)
			if err != nil {
				shared.RespondWithValidationErrors(w, r, map[string][]string{
					"due_date": {"The due_date must be a date in YYYY-MM-DD format."},
				})
				return
			}
			update.DueDate = &due
		}
	}

	updated, err := h.taskService.Update(r.Context(), userID, taskID, update)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, updated)
}

// Delete handles DELETE /tasks/{id}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := requireUserAndTaskID(w, r)
	if !ok {
		return
	}

	if err := h.taskService.Delete(r.Context(), userID, taskID); err != nil {
		h.respondError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{Message: "Deleted successfully"})
}

// Assign handles POST /tasks/{id}/assign.
// Idempotent: assigning an existing assignee succeeds without duplicating.
func (h *TaskHandler) Assign(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := requireUserAndTaskID(w, r)
	if !ok {
		return
	}

	var req AssignRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithValidationErrors(w, r, validationFieldErrors(err))
		return
	}

	targetID, err := uuid.Parse(req.UserID)
	if err != nil {
		shared.RespondWithValidationErrors(w, r, map[string][]string{
			"user_id": {validationMessage("user_id", "uuid")},
		})
		return
	}

	if err := h.taskService.Assign(r.Context(), userID, taskID, targetID); err != nil {
		h.respondError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{Message: "User assigned to task."})
}

// respondError translates a service error into the mapped status code and
// a sanitized message, with the assignment validation case carrying its
// field detail.
func (h *TaskHandler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := MapErrorToStatusCode(err)

	if status == http.StatusUnprocessableEntity {
		field := "body"
		if errorsIsAssignee(err) {
			field = "user_id"
		} else if ve, ok := asValidationError(err); ok && ve.Field != "" {
			field = ve.Field
		}
		shared.RespondWithValidationErrors(w, r, map[string][]string{
			field: {GetSafeErrorMessage(err)},
		})
		return
	}

	shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err)
}
