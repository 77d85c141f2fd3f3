package assistant

import (
	"context"
	"fmt"
	"time"

	"github.com/leadmate/leadmate/internal/platform"
	"github.com/leadmate/leadmate/internal/provider"
	"github.com/leadmate/leadmate/internal/scope"
	"github.com/leadmate/leadmate/internal/store"
)

// Tool is the interface the model-facing tools implement.
type Tool interface {
	// Name returns the tool identifier used in function calls.
	Name() string
	// Description returns a human-readable description for the model.
	Description() string
	// Parameters returns the JSON Schema for tool parameters.
	Parameters() map[string]any
	// Execute runs the tool with the given parameters.
	// On error, return a user-friendly message.
	Execute(ctx context.Context, params map[string]any) (string, error)
}

// Registry manages tool registration and execution.
type Registry struct {
	order []string
	tools map[string]Tool
}

// NewRegistry creates a new tool registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool to the registry.
func (r *Registry) Register(tool Tool) {
	if _, ok := r.tools[tool.Name()]; !ok {
		r.order = append(r.order, tool.Name())
	}
	r.tools[tool.Name()] = tool
}

// Get returns a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	tool, ok := r.tools[name]
	return tool, ok
}

// Definitions returns tool definitions in the provider's wire format,
// in registration order.
func (r *Registry) Definitions() []provider.ToolDefinition {
	result := make([]provider.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		tool := r.tools[name]
		result = append(result, provider.ToolDefinition{
			Type: "function",
			Function: provider.FunctionDef{
				Name:        tool.Name(),
				Description: tool.Description(),
				Parameters:  tool.Parameters(),
			},
		})
	}
	return result
}

// Execute runs a tool by name with the given parameters.
func (r *Registry) Execute(ctx context.Context, name string, params map[string]any) (string, error) {
	tool, ok := r.tools[name]
	if !ok {
		return "", fmt.Errorf("tool not found: %s", name)
	}
	return tool.Execute(ctx, params)
}

// GetString extracts a string parameter with a default value.
func GetString(params map[string]any, key string, defaultVal string) string {
	if v, ok := params[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return defaultVal
}

// turnState carries the per-turn context the tools close over: the
// resolved scope, the conversation, and the proposals created so far.
type turnState struct {
	assistant      *Assistant
	scope          *scope.Scope
	conversationID string
	pending        []*store.PendingAction
}

func (a *Assistant) newRegistry(t *turnState) *Registry {
	r := NewRegistry()
	r.Register(&getTeamProgressTool{t})
	r.Register(&getMemberStatusTool{t})
	r.Register(&createTaskProposalTool{t})
	r.Register(&updateTaskProposalTool{t})
	r.Register(&sendNotificationProposalTool{t})
	return r
}

// requireTarget resolves the user_id parameter against the scope.
// Every tool that touches a single user goes through this check, so a
// model hallucinating an id outside the reporting line gets an error
// instead of data.
func (t *turnState) requireTarget(params map[string]any) (platform.User, error) {
	userID := GetString(params, "user_id", "")
	if userID == "" {
		return platform.User{}, fmt.Errorf("user_id is required")
	}
	if !t.scope.Contains(userID) {
		return platform.User{}, fmt.Errorf("user %s is not in your team", userID)
	}
	if u, ok := t.scope.Lookup(userID); ok {
		return u, nil
	}
	// The actor themselves: in scope but not in the reports list.
	return platform.User{ID: userID, Name: "você"}, nil
}

// propose persists a pending action, audits it, and records it on the
// turn so the orchestrator can short-circuit to a confirmation prompt.
func (t *turnState) propose(ctx context.Context, target platform.User, actionType store.ActionType, payload any, preview string) (*store.PendingAction, error) {
	raw, err := store.EncodePayload(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	action := &store.PendingAction{
		WorkspaceID:    t.scope.WorkspaceID,
		ConversationID: t.conversationID,
		ActorUserID:    t.scope.ActorID,
		TargetUserID:   target.ID,
		ActionType:     actionType,
		Payload:        raw,
		Preview:        preview,
	}
	if err := t.assistant.store.CreatePendingAction(ctx, action); err != nil {
		return nil, err
	}
	if err := t.assistant.audit.Proposed(ctx, action); err != nil {
		return nil, err
	}
	t.pending = append(t.pending, action)
	return action, nil
}

type getTeamProgressTool struct {
	t *turnState
}

func (g *getTeamProgressTool) Name() string { return "get_team_progress" }

func (g *getTeamProgressTool) Description() string {
	return "Returns an aggregated progress snapshot (tasks, PDIs, assessments) for every member of the manager's team."
}

func (g *getTeamProgressTool) Parameters() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}
}

func (g *getTeamProgressTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	snap, err := g.t.assistant.snapshots.TeamSnapshot(ctx, g.t.scope.WorkspaceID, g.t.scope.Users)
	if err != nil {
		return "", fmt.Errorf("could not load team progress: %w", err)
	}
	return snap.Summary(), nil
}

type getMemberStatusTool struct {
	t *turnState
}

func (g *getMemberStatusTool) Name() string { return "get_member_status" }

func (g *getMemberStatusTool) Description() string {
	return "Returns one team member's recent tasks, PDIs, and assessments. The user must be part of the manager's team."
}

func (g *getMemberStatusTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"user_id": map[string]any{
				"type":        "string",
				"description": "Internal id of the team member",
			},
		},
		"required": []string{"user_id"},
	}
}

func (g *getMemberStatusTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	target, err := g.t.requireTarget(params)
	if err != nil {
		return "", err
	}
	st, err := g.t.assistant.snapshots.MemberStatus(ctx, g.t.scope.WorkspaceID, target)
	if err != nil {
		return "", fmt.Errorf("could not load member status: %w", err)
	}
	return st.Summary(), nil
}

type createTaskProposalTool struct {
	t *turnState
}

func (c *createTaskProposalTool) Name() string { return "create_task_proposal" }

func (c *createTaskProposalTool) Description() string {
	return "Proposes creating a task for a team member. The task is NOT created immediately; the manager must confirm the proposal first."
}

func (c *createTaskProposalTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"user_id":     map[string]any{"type": "string", "description": "Internal id of the team member the task is for"},
			"title":       map[string]any{"type": "string", "description": "Task title"},
			"description": map[string]any{"type": "string", "description": "Optional longer description"},
			"priority":    map[string]any{"type": "string", "enum": []string{"low", "medium", "high"}},
			"due_date":    map[string]any{"type": "string", "description": "Optional due date, YYYY-MM-DD"},
		},
		"required": []string{"user_id", "title"},
	}
}

func (c *createTaskProposalTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	target, err := c.t.requireTarget(params)
	if err != nil {
		return "", err
	}
	title := GetString(params, "title", "")
	if title == "" {
		return "", fmt.Errorf("title is required")
	}
	payload := store.CreateTaskPayload{
		Title:       title,
		Description: GetString(params, "description", ""),
		Priority:    GetString(params, "priority", ""),
		Status:      "todo",
	}
	if due := GetString(params, "due_date", ""); due != "" {
		d, err := parseDate(due)
		if err != nil {
			return "", err
		}
		payload.DueDate = &d
	}
	preview := fmt.Sprintf("Criar tarefa %q para %s", title, target.Name)
	action, err := c.t.propose(ctx, target, store.ActionCreateTask, payload, preview)
	if err != nil {
		return "", err
	}
	return proposalCreatedText(action), nil
}

type updateTaskProposalTool struct {
	t *turnState
}

func (u *updateTaskProposalTool) Name() string { return "update_task_proposal" }

func (u *updateTaskProposalTool) Description() string {
	return "Proposes updating an existing task of a team member (title, status, priority, or due date). Requires confirmation by the manager."
}

func (u *updateTaskProposalTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"user_id":     map[string]any{"type": "string", "description": "Internal id of the team member who owns the task"},
			"task_id":     map[string]any{"type": "string", "description": "Id of the task to update"},
			"title":       map[string]any{"type": "string"},
			"description": map[string]any{"type": "string"},
			"priority":    map[string]any{"type": "string", "enum": []string{"low", "medium", "high"}},
			"due_date":    map[string]any{"type": "string", "description": "New due date, YYYY-MM-DD"},
			"status":      map[string]any{"type": "string", "enum": []string{"todo", "in_progress", "done"}},
		},
		"required": []string{"user_id", "task_id"},
	}
}

func (u *updateTaskProposalTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	target, err := u.t.requireTarget(params)
	if err != nil {
		return "", err
	}
	taskID := GetString(params, "task_id", "")
	if taskID == "" {
		return "", fmt.Errorf("task_id is required")
	}
	payload := store.UpdateTaskPayload{TaskID: taskID}
	changed := false
	for _, f := range []struct {
		key string
		dst **string
	}{
		{"title", &payload.Title},
		{"description", &payload.Description},
		{"priority", &payload.Priority},
		{"status", &payload.Status},
	} {
		if v := GetString(params, f.key, ""); v != "" {
			v := v
			*f.dst = &v
			changed = true
		}
	}
	if due := GetString(params, "due_date", ""); due != "" {
		d, err := parseDate(due)
		if err != nil {
			return "", err
		}
		payload.DueDate = &d
		changed = true
	}
	if !changed {
		return "", fmt.Errorf("no fields to update")
	}
	preview := fmt.Sprintf("Atualizar tarefa %s de %s", taskID, target.Name)
	action, err := u.t.propose(ctx, target, store.ActionUpdateTask, payload, preview)
	if err != nil {
		return "", err
	}
	return proposalCreatedText(action), nil
}

type sendNotificationProposalTool struct {
	t *turnState
}

func (s *sendNotificationProposalTool) Name() string { return "send_notification_proposal" }

func (s *sendNotificationProposalTool) Description() string {
	return "Proposes sending an in-app notification to a team member. Requires confirmation by the manager."
}

func (s *sendNotificationProposalTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"user_id": map[string]any{"type": "string", "description": "Internal id of the team member"},
			"title":   map[string]any{"type": "string", "description": "Notification title"},
			"message": map[string]any{"type": "string", "description": "Notification body"},
			"type":    map[string]any{"type": "string", "enum": []string{"info", "warning", "error", "success"}},
		},
		"required": []string{"user_id", "title", "message"},
	}
}

func (s *sendNotificationProposalTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	target, err := s.t.requireTarget(params)
	if err != nil {
		return "", err
	}
	title := GetString(params, "title", "")
	message := GetString(params, "message", "")
	if title == "" || message == "" {
		return "", fmt.Errorf("title and message are required")
	}
	kind := GetString(params, "type", "info")
	switch kind {
	case "info", "warning", "error", "success":
	default:
		return "", fmt.Errorf("unknown notification type: %s", kind)
	}
	payload := store.NotificationPayload{Title: title, Message: message, Type: kind}
	preview := fmt.Sprintf("Enviar notificação %q para %s", title, target.Name)
	action, err := s.t.propose(ctx, target, store.ActionSendNotification, payload, preview)
	if err != nil {
		return "", err
	}
	return proposalCreatedText(action), nil
}

func proposalCreatedText(a *store.PendingAction) string {
	return fmt.Sprintf("Proposta criada, aguardando confirmação: %s (id %s)", a.Preview, a.ID)
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if d, err := time.Parse(layout, s); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
}
