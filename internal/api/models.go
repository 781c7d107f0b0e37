package api

import (
	"github.com/rcavanagh/taskboard-api/internal/domain"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Name                 string `json:"name"                  validate:"required,max=255"`
	Email                string `json:"email"                 validate:"required,email"`
	Password             string `json:"password"              validate:"required,min=6,max=72"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse defines the successful response for authentication endpoints.
type TokenResponse struct {
	Token string `json:"token"`
}

// MessageResponse is the generic acknowledgement body.
type MessageResponse struct {
	Message string `json:"message"`
}

// CreateTaskRequest defines the payload for creating a task. Status and
// priority accept any recognized casing and default when omitted; due_date
// is a YYYY-MM-DD calendar date. Any client-supplied creator is ignored.
type CreateTaskRequest struct {
	Title       string `json:"title"       validate:"required,max=255"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	DueDate     string `json:"due_date"`
}

// UpdateTaskRequest defines the payload for a partial task update. Only
// fields present in the JSON are changed; an empty-string due_date clears
// the due date (a JSON null is indistinguishable from an absent field here
// and is treated as absent).
type UpdateTaskRequest struct {
	Title       *string `json:"title"       validate:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	DueDate     *string `json:"due_date"`
}

// AssignRequest defines the payload for assigning a user to a task.
type AssignRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
}

// TaskListResponse is one page of tasks with pagination metadata,
// mirroring the classic paginator shape.
type TaskListResponse struct {
	Data        []*domain.Task `json:"data"`
	Total       int            `json:"total"`
	PerPage     int            `json:"per_page"`
	CurrentPage int            `json:"current_page"`
	LastPage    int            `json:"last_page"`
}
