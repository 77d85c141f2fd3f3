// Package platform defines the boundary to the main product backend:
// the team directory, the task/PDI/assessment read APIs, and the write RPCs
// the assistant executes confirmed actions against.
package platform

import (
	"context"
	"time"
)

// User is a member of an actor's reporting line as the directory returns it.
type User struct {
	ID       string `json:"id"`
	AuthID   string `json:"auth_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	JobTitle string `json:"job_title"`
}

// TeamSource resolves the reporting line and the assistant feature flag.
// Implemented by the product backend; the assistant never caches its answers.
type TeamSource interface {
	// AssistantEnabled reports whether the workspace has the assistant on.
	AssistantEnabled(ctx context.Context, workspaceID string) (bool, error)
	// Reports returns the users directly reporting to the given actor.
	Reports(ctx context.Context, workspaceID, actorAuthID string) ([]User, error)
	// ResolveActor maps an auth identity to the internal user id.
	ResolveActor(ctx context.Context, workspaceID, actorAuthID string) (string, error)
}

// TaskRow is the projection of a task the read API returns.
type TaskRow struct {
	ID      string     `json:"id"`
	UserID  string     `json:"user_id"`
	Title   string     `json:"title"`
	Status  string     `json:"status"` // todo, in_progress, done
	DueDate *time.Time `json:"due_date,omitempty"`
}

// PDIRow is the projection of a development plan (PDI).
type PDIRow struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Title  string `json:"title"`
	Status string `json:"status"` // draft, active, completed, archived
}

// AssessmentRow is the projection of a performance assessment.
type AssessmentRow struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Status string `json:"status"` // draft, completed
}

// TaskReader queries tasks filtered to a set of user ids.
type TaskReader interface {
	TasksByUsers(ctx context.Context, workspaceID string, userIDs []string, limit int) ([]TaskRow, error)
}

// PDIReader queries development plans filtered to a set of user ids.
type PDIReader interface {
	PlansByUsers(ctx context.Context, workspaceID string, userIDs []string, limit int) ([]PDIRow, error)
}

// AssessmentReader queries assessments filtered to a set of user ids.
type AssessmentReader interface {
	AssessmentsByUsers(ctx context.Context, workspaceID string, userIDs []string, limit int) ([]AssessmentRow, error)
}

// Readers bundles the three read APIs the snapshot builder consumes.
type Readers struct {
	Tasks       TaskReader
	PDIs        PDIReader
	Assessments AssessmentReader
}

// TaskInput carries the fields for a task creation.
type TaskInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Status      string     `json:"status"`
}

// TaskPatch carries a partial task update. Nil fields are left untouched.
type TaskPatch struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Status      *string    `json:"status,omitempty"`
}

// Notification carries the fields for a notification send.
type Notification struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Type    string `json:"type"` // info, warning, error, success
}

// Writer is the set of write RPCs confirmed actions execute against.
// All three are idempotent by the returned entity id on the backend side.
type Writer interface {
	CreateTask(ctx context.Context, workspaceID, userID string, in TaskInput) (string, error)
	UpdateTask(ctx context.Context, workspaceID, userID, taskID string, patch TaskPatch) (string, error)
	SendNotification(ctx context.Context, workspaceID, userID string, n Notification) (string, error)
}
