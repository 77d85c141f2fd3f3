// Package assistant implements the manager assistant: it turns a
// manager's chat message into answers over their team's progress or into
// pending action proposals, and executes proposals once confirmed.
package assistant

import (
	"github.com/leadmate/leadmate/internal/audit"
	"github.com/leadmate/leadmate/internal/config"
	"github.com/leadmate/leadmate/internal/platform"
	"github.com/leadmate/leadmate/internal/progress"
	"github.com/leadmate/leadmate/internal/provider"
	"github.com/leadmate/leadmate/internal/scope"
	"github.com/leadmate/leadmate/internal/store"
)

// Assistant wires the scope resolver, the model provider, the snapshot
// builder, and the pending-action store into the two entry points:
// RunTurn and ExecutePendingAction.
type Assistant struct {
	provider  provider.Client
	scopes    *scope.Resolver
	snapshots *progress.Builder
	store     *store.Store
	audit     *audit.Logger
	writer    platform.Writer
	model     config.ModelConfig
}

// New creates an assistant.
func New(p provider.Client, scopes *scope.Resolver, snapshots *progress.Builder, st *store.Store, auditLog *audit.Logger, writer platform.Writer, model config.ModelConfig) *Assistant {
	return &Assistant{
		provider:  p,
		scopes:    scopes,
		snapshots: snapshots,
		store:     st,
		audit:     auditLog,
		writer:    writer,
		model:     model,
	}
}

// Request is one inbound chat message from a manager.
type Request struct {
	WorkspaceID    string
	ActorAuthID    string
	ConversationID string
	Message        string
}

// Response is the assistant's answer to one turn. Pending is set when
// the turn produced a proposal awaiting confirmation.
type Response struct {
	Text    string
	Pending *store.PendingAction
}
