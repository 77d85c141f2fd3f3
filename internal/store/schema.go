package store

import (
	"encoding/json"
	"time"
)

// ActionType is the closed set of actions a proposal can carry. Every
// switch over it must be exhaustive; an unknown type is a hard error.
type ActionType string

const (
	ActionCreateTask       ActionType = "create_task"
	ActionUpdateTask       ActionType = "update_task"
	ActionSendNotification ActionType = "send_notification"
)

// Valid reports whether t is one of the known action types.
func (t ActionType) Valid() bool {
	switch t {
	case ActionCreateTask, ActionUpdateTask, ActionSendNotification:
		return true
	}
	return false
}

// Status lifecycle: pending → executing → executed. The executing state
// is a claim held while the backend write is in flight; a failed write
// releases it back to pending so the actor can retry.
const (
	StatusPending   = "pending"
	StatusExecuting = "executing"
	StatusExecuted  = "executed"
)

// PendingAction is a proposed write waiting for the actor's confirmation.
// The payload is the single source of truth for what gets executed; the
// preview exists only so callers can render the proposal without another
// lookup.
type PendingAction struct {
	ID             string          `json:"id"`
	WorkspaceID    string          `json:"workspace_id"`
	ConversationID string          `json:"conversation_id"`
	ActorUserID    string          `json:"actor_user_id"`
	TargetUserID   string          `json:"target_user_id"`
	ActionType     ActionType      `json:"action_type"`
	Payload        json.RawMessage `json:"payload"`
	Preview        string          `json:"preview"`
	Status         string          `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	ConfirmedAt    *time.Time      `json:"confirmed_at,omitempty"`
	ExecutedAt     *time.Time      `json:"executed_at,omitempty"`
	ExecutedResult string          `json:"executed_result,omitempty"`
}

// CreateTaskPayload is the payload for a create_task action.
type CreateTaskPayload struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Status      string     `json:"status"`
}

// UpdateTaskPayload is the payload for an update_task action.
// Nil fields are left untouched by the backend.
type UpdateTaskPayload struct {
	TaskID      string     `json:"task_id"`
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Status      *string    `json:"status,omitempty"`
}

// NotificationPayload is the payload for a send_notification action.
type NotificationPayload struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Type    string `json:"type"` // info, warning, error, success
}

// EncodePayload marshals a typed payload for storage.
func EncodePayload(v any) (json.RawMessage, error) {
	return json.Marshal(v)
}

// DecodePayload unmarshals the stored payload into a typed payload struct.
func (a *PendingAction) DecodePayload(v any) error {
	return json.Unmarshal(a.Payload, v)
}

// AuditEntry is one append-only audit record.
type AuditEntry struct {
	ID          int64     `json:"id"`
	ActorUserID string    `json:"actor_user_id"`
	Action      string    `json:"action"` // proposed, executed
	EntityType  string    `json:"entity_type"`
	EntityID    string    `json:"entity_id"`
	WorkspaceID string    `json:"workspace_id"`
	Metadata    string    `json:"metadata"` // JSON object
	CreatedAt   time.Time `json:"created_at"`
}

// AuditFilter holds query parameters for listing the audit log.
type AuditFilter struct {
	WorkspaceID string
	ActorUserID string
	Action      string
	Limit       int
	Offset      int
}

const Schema = `
CREATE TABLE IF NOT EXISTS pending_actions (
	id TEXT PRIMARY KEY,
	workspace_id TEXT NOT NULL,
	conversation_id TEXT NOT NULL,
	actor_user_id TEXT NOT NULL,
	target_user_id TEXT NOT NULL,
	action_type TEXT NOT NULL,
	payload TEXT NOT NULL,
	preview TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'pending',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	confirmed_at DATETIME,
	executed_at DATETIME,
	executed_result TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_pending_actions_status ON pending_actions(status);
CREATE INDEX IF NOT EXISTS idx_pending_actions_actor ON pending_actions(workspace_id, actor_user_id);
CREATE INDEX IF NOT EXISTS idx_pending_actions_conversation ON pending_actions(conversation_id);

CREATE TABLE IF NOT EXISTS audit_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	actor_user_id TEXT NOT NULL,
	action TEXT NOT NULL,
	entity_type TEXT NOT NULL,
	entity_id TEXT NOT NULL,
	workspace_id TEXT NOT NULL,
	metadata TEXT NOT NULL DEFAULT '{}',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_audit_actor ON audit_log(actor_user_id);
CREATE INDEX IF NOT EXISTS idx_audit_workspace ON audit_log(workspace_id);
CREATE INDEX IF NOT EXISTS idx_audit_created ON audit_log(created_at);
`
