// Package audit records who proposed and executed which action. The log
// is append-only and written in the same sqlite store as the actions
// themselves; a Kafka mirror can additionally stream entries to a
// central bus.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/leadmate/leadmate/internal/store"
)

const (
	ActionProposed = "proposed"
	ActionExecuted = "executed"

	entityPendingAction = "pending_action"
)

// Mirror receives a best-effort copy of every audit entry.
type Mirror interface {
	Publish(ctx context.Context, e *store.AuditEntry) error
}

// Logger writes audit entries for pending-action lifecycle events.
type Logger struct {
	store  *store.Store
	mirror Mirror
}

// NewLogger creates an audit logger. The mirror may be nil.
func NewLogger(st *store.Store, mirror Mirror) *Logger {
	return &Logger{store: st, mirror: mirror}
}

// Proposed records the creation of a pending action. The metadata carries
// enough of the proposal to reconstruct intent without re-reading the row.
func (l *Logger) Proposed(ctx context.Context, a *store.PendingAction) error {
	meta, _ := json.Marshal(map[string]string{
		"target_user_id": a.TargetUserID,
		"action_type":    string(a.ActionType),
		"preview":        a.Preview,
	})
	return l.append(ctx, &store.AuditEntry{
		ActorUserID: a.ActorUserID,
		Action:      ActionProposed,
		EntityType:  entityPendingAction,
		EntityID:    a.ID,
		WorkspaceID: a.WorkspaceID,
		Metadata:    string(meta),
	})
}

// Executed records the successful execution of a confirmed action.
func (l *Logger) Executed(ctx context.Context, a *store.PendingAction, result string) error {
	meta, _ := json.Marshal(map[string]string{
		"target_user_id": a.TargetUserID,
		"action_type":    string(a.ActionType),
		"result":         result,
	})
	return l.append(ctx, &store.AuditEntry{
		ActorUserID: a.ActorUserID,
		Action:      ActionExecuted,
		EntityType:  entityPendingAction,
		EntityID:    a.ID,
		WorkspaceID: a.WorkspaceID,
		Metadata:    string(meta),
	})
}

func (l *Logger) append(ctx context.Context, e *store.AuditEntry) error {
	if err := l.store.AppendAudit(ctx, e); err != nil {
		return fmt.Errorf("append audit: %w", err)
	}
	if l.mirror != nil {
		if err := l.mirror.Publish(ctx, e); err != nil {
			slog.Warn("audit mirror publish failed", "entry_id", e.ID, "error", err)
		}
	}
	return nil
}

// List returns audit entries matching the filter, newest first.
func (l *Logger) List(ctx context.Context, f store.AuditFilter) ([]store.AuditEntry, error) {
	return l.store.ListAudit(ctx, f)
}
