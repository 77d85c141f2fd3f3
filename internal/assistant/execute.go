package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/leadmate/leadmate/internal/platform"
	"github.com/leadmate/leadmate/internal/store"
)

// ErrActionMismatch means the pending action exists but was proposed by
// a different actor, workspace, or conversation than the one confirming.
var ErrActionMismatch = errors.New("pending action does not belong to this actor and conversation")

// ConfirmRequest identifies the pending action being confirmed and who
// is confirming it. All four fields must match the stored row.
type ConfirmRequest struct {
	ActionID       string
	WorkspaceID    string
	ActorAuthID    string
	ConversationID string
}

// ExecutePendingAction runs a confirmed proposal against the backend
// write APIs. Scope is re-resolved at execution time: authority that
// shrank since proposal time blocks the action. The row is claimed with
// a conditional pending→executing transition before the backend write is
// issued, so concurrent confirmations produce at most one write RPC; a
// failed write releases the claim and leaves the action retryable.
func (a *Assistant) ExecutePendingAction(ctx context.Context, req *ConfirmRequest) (*store.PendingAction, error) {
	action, err := a.store.GetPendingAction(ctx, req.ActionID)
	if err != nil {
		return nil, err
	}

	if action.WorkspaceID != req.WorkspaceID ||
		action.ConversationID != req.ConversationID {
		return nil, ErrActionMismatch
	}

	sc, err := a.scopes.AssertInScope(ctx, req.WorkspaceID, req.ActorAuthID, action.TargetUserID)
	if err != nil {
		return nil, err
	}
	if action.ActorUserID != sc.ActorID {
		return nil, ErrActionMismatch
	}
	if action.Status != store.StatusPending {
		return nil, store.ErrAlreadyProcessed
	}

	if err := a.store.ClaimPending(ctx, action.ID); err != nil {
		return nil, err
	}

	result, err := a.dispatch(ctx, action)
	if err != nil {
		if relErr := a.store.ReleaseClaim(ctx, action.ID); relErr != nil {
			slog.Warn("release claim after failed write",
				"action_id", action.ID, "error", relErr)
		}
		return nil, fmt.Errorf("execute %s: %w", action.ActionType, err)
	}

	if err := a.store.MarkExecuted(ctx, action.ID, result); err != nil {
		return nil, err
	}
	if err := a.audit.Executed(ctx, action, result); err != nil {
		return nil, err
	}
	slog.Info("pending action executed",
		"action_id", action.ID,
		"action_type", action.ActionType,
		"target", action.TargetUserID,
		"result", result)

	return a.store.GetPendingAction(ctx, action.ID)
}

// dispatch maps the stored payload to the backend write RPC for its
// action type. Only payload fields reach the backend; the preview is
// presentation-only.
func (a *Assistant) dispatch(ctx context.Context, action *store.PendingAction) (string, error) {
	switch action.ActionType {
	case store.ActionCreateTask:
		var p store.CreateTaskPayload
		if err := action.DecodePayload(&p); err != nil {
			return "", fmt.Errorf("decode payload: %w", err)
		}
		status := p.Status
		if status == "" {
			status = "todo"
		}
		return a.writer.CreateTask(ctx, action.WorkspaceID, action.TargetUserID, platform.TaskInput{
			Title:       p.Title,
			Description: p.Description,
			Priority:    p.Priority,
			DueDate:     p.DueDate,
			Status:      status,
		})
	case store.ActionUpdateTask:
		var p store.UpdateTaskPayload
		if err := action.DecodePayload(&p); err != nil {
			return "", fmt.Errorf("decode payload: %w", err)
		}
		return a.writer.UpdateTask(ctx, action.WorkspaceID, action.TargetUserID, p.TaskID, platform.TaskPatch{
			Title:       p.Title,
			Description: p.Description,
			Priority:    p.Priority,
			DueDate:     p.DueDate,
			Status:      p.Status,
		})
	case store.ActionSendNotification:
		var p store.NotificationPayload
		if err := action.DecodePayload(&p); err != nil {
			return "", fmt.Errorf("decode payload: %w", err)
		}
		return a.writer.SendNotification(ctx, action.WorkspaceID, action.TargetUserID, platform.Notification{
			Title:   p.Title,
			Message: p.Message,
			Type:    p.Type,
		})
	default:
		return "", fmt.Errorf("unknown action type: %q", action.ActionType)
	}
}
