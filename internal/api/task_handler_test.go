package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcavanagh/taskboard-api/internal/api/shared"
	"github.com/rcavanagh/taskboard-api/internal/domain"
	"github.com/rcavanagh/taskboard-api/internal/service/task"
	"github.com/rcavanagh/taskboard-api/internal/store"
)

// stubTaskStore is an in-memory TaskStore for handler tests.
type stubTaskStore struct {
	tasks map[uuid.UUID]*domain.Task
}

func newStubTaskStore() *stubTaskStore {
	return &stubTaskStore{tasks: make(map[uuid.UUID]*domain.Task)}
}

func (s *stubTaskStore) Create(ctx context.Context, t *domain.Task) error {
	s.tasks[t.ID] = t
	return nil
}

func (s *stubTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	t, ok := s.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	copied := *t
	return &copied, nil
}

func (s *stubTaskStore) Update(ctx context.Context, t *domain.Task) error {
	if _, ok := s.tasks[t.ID]; !ok {
		return store.ErrTaskNotFound
	}
	copied := *t
	s.tasks[t.ID] = &copied
	return nil
}

func (s *stubTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.tasks[id]; !ok {
		return store.ErrTaskNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (s *stubTaskStore) AddAssignee(ctx context.Context, taskID, userID uuid.UUID) error {
	t, ok := s.tasks[taskID]
	if !ok {
		return store.ErrTaskNotFound
	}
	if !t.HasAssignee(userID) {
		t.AssigneeIDs = append(t.AssigneeIDs, userID)
	}
	return nil
}

func (s *stubTaskStore) List(ctx context.Context, userID uuid.UUID, filter store.TaskFilter, sort []store.SortKey, page int) (*store.TaskPage, error) {
	var visible []*domain.Task
	for _, t := range s.tasks {
		if t.CreatorID == userID || t.HasAssignee(userID) {
			visible = append(visible, t)
		}
	}
	return &store.TaskPage{
		Tasks:       visible,
		Total:       len(visible),
		CurrentPage: page,
		LastPage:    1,
		PerPage:     store.TasksPerPage,
	}, nil
}

func (s *stubTaskStore) WithTx(tx *sql.Tx) store.TaskStore { return s }

type taskHandlerFixture struct {
	handler *TaskHandler
	tasks   *stubTaskStore
	users   *stubUserStore
	router  *chi.Mux
}

func newTaskHandlerFixture(scope task.MutationScope) *taskHandlerFixture {
	tasks := newStubTaskStore()
	users := newStubUserStore()
	svc := task.NewService(tasks, users, task.NewAuthorizer(scope), nil)
	handler := NewTaskHandler(svc)

	router := chi.NewRouter()
	router.Get("/tasks", handler.List)
	router.Post("/tasks", handler.Create)
	router.Get("/tasks/{id}", handler.Get)
	router.Put("/tasks/{id}", handler.Update)
	router.Delete("/tasks/{id}", handler.Delete)
	router.Post("/tasks/{id}/assign", handler.Assign)

	return &taskHandlerFixture{handler: handler, tasks: tasks, users: users, router: router}
}

// do performs a request through the router as the given user, mirroring
// what the auth middleware would have put in the context.
func (f *taskHandlerFixture) do(t *testing.T, userID uuid.UUID, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != uuid.Nil {
		req = req.WithContext(context.WithValue(req.Context(), shared.UserIDContextKey, userID))
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *taskHandlerFixture) seedTask(t *testing.T, creatorID uuid.UUID, title string) *domain.Task {
	t.Helper()
	created, err := domain.NewTask(creatorID, title, "", "", "", nil)
	require.NoError(t, err)
	require.NoError(t, f.tasks.Create(context.Background(), created))
	return created
}

func (f *taskHandlerFixture) seedUser(t *testing.T) uuid.UUID {
	t.Helper()
	user, err := domain.NewUser("Collaborator", uuid.New().String()+"@example.com", "password123")
	require.NoError(t, err)
	require.NoError(t, f.users.Create(context.Background(), user))
	return user.ID
}

func TestTaskHandlerCreate(t *testing.T) {
	t.Parallel()
	userID := uuid.New()

	t.Run("success_with_defaults", func(t *testing.T) {
		f := newTaskHandlerFixture(task.ScopeCreator)

		w := f.do(t, userID, http.MethodPost, "/tasks", map[string]any{"title": "New task"})

		assert.Equal(t, http.StatusCreated, w.Code)
		var created domain.Task
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
		assert.Equal(t, "New task", created.Title)
		assert.Equal(t, userID, created.CreatorID)
		assert.Equal(t, domain.TaskStatusTodo, created.Status)
		assert.Equal(t, domain.TaskPriorityMedium, created.Priority)
	})

	t.Run("accepts_mixed_case_enums_and_due_date", func(t *testing.T) {
		f := newTaskHandlerFixture(task.ScopeCreator)

		w := f.do(t, userID, http.MethodPost, "/tasks", map[string]any{
			"title":    "Styled task",
			"status":   "In Progress",
			"priority": "HIGH",
			"due_date": "2026-09-30",
		})

		assert.Equal(t, http.StatusCreated, w.Code)
		var created domain.Task
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
		assert.Equal(t, domain.TaskStatusInProgress, created.Status)
		assert.Equal(t, domain.TaskPriorityHigh, created.Priority)
		require.NotNil(t, created.DueDate)
	})

	t.Run("missing_title", func(t *testing.T) {
		f := newTaskHandlerFixture(task.ScopeCreator)

		w := f.do(t, userID, http.MethodPost, "/tasks", map[string]any{"description": "no title"})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		resp := decodeValidationErrors(t, w)
		assert.Contains(t, resp.Errors, "title")
	})

	t.Run("invalid_enum_values", func(t *testing.T) {
		f := newTaskHandlerFixture(task.ScopeCreator)

		w := f.do(t, userID, http.MethodPost, "/tasks", map[string]any{"title": "x", "status": "blocked"})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, decodeValidationErrors(t, w).Errors, "status")

		w = f.do(t, userID, http.MethodPost, "/tasks", map[string]any{"title": "x", "priority": "urgent"})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, decodeValidationErrors(t, w).Errors, "priority")

		w = f.do(t, userID, http.MethodPost, "/tasks", map[string]any{"title": "x", "due_date": "30-09-2026"})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, decodeValidationErrors(t, w).Errors, "due_date")
	})

	t.Run("unauthenticated", func(t *testing.T) {
		f := newTaskHandlerFixture(task.ScopeCreator)

		w := f.do(t, uuid.Nil, http.MethodPost, "/tasks", map[string]any{"title": "x"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestTaskHandlerGet(t *testing.T) {
	t.Parallel()
	creatorID := uuid.New()

	t.Run("creator_sees_own_task", func(t *testing.T) {
		f := newTaskHandlerFixture(task.ScopeCreator)
		seeded := f.seedTask(t, creatorID, "Mine")

		w := f.do(t, creatorID, http.MethodGet, "/tasks/"+seeded.ID.String(), nil)

		assert.Equal(t, http.StatusOK, w.Code)
		var got domain.Task
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, seeded.ID, got.ID)
	})

	t.Run("assignee_sees_task", func(t *testing.T) {
		f := newTaskHandlerFixture(task.ScopeCreator)
		seeded := f.seedTask(t, creatorID, "Shared")
		assigneeID := uuid.New()
		require.NoError(t, f.tasks.AddAssignee(context.Background(), seeded.ID, assigneeID))

		w := f.do(t, assigneeID, http.MethodGet, "/tasks/"+seeded.ID.String(), nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("stranger_gets_forbidden", func(t *testing.T) {
		f := newTaskHandlerFixture(task.ScopeCreator)
		seeded := f.seedTask(t, creatorID, "Private")

		w := f.do(t, uuid.New(), http.MethodGet, "/tasks/"+seeded.ID.String(), nil)

		assert.Equal(t, http.StatusForbidden, w.Code)
		var resp shared.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Unauthorized", resp.Message)
	})

	t.Run("missing_task", func(t *testing.T) {
		f := newTaskHandlerFixture(task.ScopeCreator)

		w := f.do(t, creatorID, http.MethodGet, "/tasks/"+uuid.New().String(), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("malformed_task_id_reads_as_not_found", func(t *testing.T) {
		f := newTaskHandlerFixture(task.ScopeCreator)

		w := f.do(t, creatorID, http.MethodGet, "/tasks/not-a-uuid", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		var resp shared.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Task not found", resp.Message)
	})
}

func TestTaskHandlerUpdate(t *testing.T) {
	t.Parallel()
	creatorID := uuid.New()

	t.Run("partial_update", func(t *testing.T) {
		f := newTaskHandlerFixture(task.ScopeCreator)
		seeded := f.seedTask(t, creatorID, "Before")

		w := f.do(t, creatorID, http.MethodPut, "/tasks/"+seeded.ID.String(), map[string]any{
			"title":  "After",
			"status": "done",
		})

		assert.Equal(t, http.StatusOK, w.Code)
		var updated domain.Task
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
		assert.Equal(t, "After", updated.Title)
		assert.Equal(t, domain.TaskStatusDone, updated.Status)
		assert.Equal(t, creatorID, updated.CreatorID)
	})

	t.Run("empty_due_date_clears_it", func(t *testing.T) {
		f := newTaskHandlerFixture(task.ScopeCreator)
		seeded := f.seedTask(t, creatorID, "Dated")
		due := "2026-10-01"
		w := f.do(t, creatorID, http.MethodPut, "/tasks/"+seeded.ID.String(), map[string]any{"due_date": due})
		require.Equal(t, http.StatusOK, w.Code)

		w = f.do(t, creatorID, http.MethodPut, "/tasks/"+seeded.ID.String(), map[string]any{"due_date": ""})
		assert.Equal(t, http.StatusOK, w.Code)
		var updated domain.Task
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
		assert.Nil(t, updated.DueDate)
	})

	t.Run("assignee_cannot_update_under_creator_scope", func(t *testing.T) {
		f := newTaskHandlerFixture(task.ScopeCreator)
		seeded := f.seedTask(t, creatorID, "Locked")
		assigneeID := uuid.New()
		require.NoError(t, f.tasks.AddAssignee(context.Background(), seeded.ID, assigneeID))

		w := f.do(t, assigneeID, http.MethodPut, "/tasks/"+seeded.ID.String(), map[string]any{"title": "Hijacked"})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("assignee_can_update_under_collaborators_scope", func(t *testing.T) {
		f := newTaskHandlerFixture(task.ScopeCollaborators)
		seeded := f.seedTask(t, creatorID, "Shared")
		assigneeID := uuid.New()
		require.NoError(t, f.tasks.AddAssignee(context.Background(), seeded.ID, assigneeID))

		w := f.do(t, assigneeID, http.MethodPut, "/tasks/"+seeded.ID.String(), map[string]any{"title": "Collaborated"})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("invalid_status_value", func(t *testing.T) {
		f := newTaskHandlerFixture(task.ScopeCreator)
		seeded := f.seedTask(t, creatorID, "Valid")

		w := f.do(t, creatorID, http.MethodPut, "/tasks/"+seeded.ID.String(), map[string]any{"status": "blocked"})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, decodeValidationErrors(t, w).Errors, "status")
	})
}

func TestTaskHandlerDelete(t *testing.T) {
	t.Parallel()
	creatorID := uuid.New()

	t.Run("creator_deletes", func(t *testing.T) {
		f := newTaskHandlerFixture(task.ScopeCreator)
		seeded := f.seedTask(t, creatorID, "Doomed")

		w := f.do(t, creatorID, http.MethodDelete, "/tasks/"+seeded.ID.String(), nil)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp MessageResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Deleted successfully", resp.Message)

		w = f.do(t, creatorID, http.MethodGet, "/tasks/"+seeded.ID.String(), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("assignee_cannot_delete_under_creator_scope", func(t *testing.T) {
		f := newTaskHandlerFixture(task.ScopeCreator)
		seeded := f.seedTask(t, creatorID, "Kept")
		assigneeID := uuid.New()
		require.NoError(t, f.tasks.AddAssignee(context.Background(), seeded.ID, assigneeID))

		w := f.do(t, assigneeID, http.MethodDelete, "/tasks/"+seeded.ID.String(), nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestTaskHandlerAssign(t *testing.T) {
	t.Parallel()
	creatorID := uuid.New()

	t.Run("creator_assigns_existing_user", func(t *testing.T) {
		f := newTaskHandlerFixture(task.ScopeCreator)
		seeded := f.seedTask(t, creatorID, "Teamwork")
		targetID := f.seedUser(t)

		w := f.do(t, creatorID, http.MethodPost, "/tasks/"+seeded.ID.String()+"/assign",
			map[string]any{"user_id": targetID.String()})

		assert.Equal(t, http.StatusOK, w.Code)
		var resp MessageResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "User assigned to task.", resp.Message)

		stored, err := f.tasks.GetByID(context.Background(), seeded.ID)
		require.NoError(t, err)
		assert.True(t, stored.HasAssignee(targetID))
	})

	t.Run("assigning_twice_succeeds_without_duplicates", func(t *testing.T) {
		f := newTaskHandlerFixture(task.ScopeCreator)
		seeded := f.seedTask(t, creatorID, "Teamwork")
		targetID := f.seedUser(t)
		body := map[string]any{"user_id": targetID.String()}

		w := f.do(t, creatorID, http.MethodPost, "/tasks/"+seeded.ID.String()+"/assign", body)
		require.Equal(t, http.StatusOK, w.Code)
		w = f.do(t, creatorID, http.MethodPost, "/tasks/"+seeded.ID.String()+"/assign", body)
		assert.Equal(t, http.StatusOK, w.Code)

		stored, err := f.tasks.GetByID(context.Background(), seeded.ID)
		require.NoError(t, err)
		assert.Len(t, stored.AssigneeIDs, 1)
	})

	t.Run("unknown_target_user", func(t *testing.T) {
		f := newTaskHandlerFixture(task.ScopeCreator)
		seeded := f.seedTask(t, creatorID, "Teamwork")

		w := f.do(t, creatorID, http.MethodPost, "/tasks/"+seeded.ID.String()+"/assign",
			map[string]any{"user_id": uuid.New().String()})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		resp := decodeValidationErrors(t, w)
		assert.Equal(t, []string{"The selected user does not exist."}, resp.Errors["user_id"])
	})

	t.Run("malformed_target_user_id", func(t *testing.T) {
		f := newTaskHandlerFixture(task.ScopeCreator)
		seeded := f.seedTask(t, creatorID, "Teamwork")

		w := f.do(t, creatorID, http.MethodPost, "/tasks/"+seeded.ID.String()+"/assign",
			map[string]any{"user_id": "not-a-uuid"})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, decodeValidationErrors(t, w).Errors, "user_id")
	})

	t.Run("only_creator_assigns_even_for_assignees", func(t *testing.T) {
		f := newTaskHandlerFixture(task.ScopeCollaborators)
		seeded := f.seedTask(t, creatorID, "Teamwork")
		assigneeID := uuid.New()
		require.NoError(t, f.tasks.AddAssignee(context.Background(), seeded.ID, assigneeID))
		targetID := f.seedUser(t)

		w := f.do(t, assigneeID, http.MethodPost, "/tasks/"+seeded.ID.String()+"/assign",
			map[string]any{"user_id": targetID.String()})

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestTaskHandlerList(t *testing.T) {
	t.Parallel()

	t.Run("returns_paginator_shape", func(t *testing.T) {
		f := newTaskHandlerFixture(task.ScopeCreator)
		userID := uuid.New()
		f.seedTask(t, userID, "One")
		f.seedTask(t, userID, "Two")
		f.seedTask(t, uuid.New(), "Someone else's")

		w := f.do(t, userID, http.MethodGet, "/tasks", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp TaskListResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 2, resp.Total)
		assert.Len(t, resp.Data, 2)
		assert.Equal(t, store.TasksPerPage, resp.PerPage)
		assert.Equal(t, 1, resp.CurrentPage)
	})

	t.Run("invalid_filter_value", func(t *testing.T) {
		f := newTaskHandlerFixture(task.ScopeCreator)

		w := f.do(t, uuid.New(), http.MethodGet, "/tasks?status=blocked", nil)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, decodeValidationErrors(t, w).Errors, "status")
	})

	t.Run("unauthenticated", func(t *testing.T) {
		f := newTaskHandlerFixture(task.ScopeCreator)

		w := f.do(t, uuid.Nil, http.MethodGet, "/tasks", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
