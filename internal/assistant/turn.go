package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/leadmate/leadmate/internal/provider"
	"github.com/leadmate/leadmate/internal/store"
)

// RunTurn processes one chat message end to end: scope resolution, the
// direct-intent fast path, and at most two model round-trips (tool
// selection, then answer synthesis over the tool outputs).
func (a *Assistant) RunTurn(ctx context.Context, req *Request) (*Response, error) {
	sc, err := a.scopes.Resolve(ctx, req.WorkspaceID, req.ActorAuthID)
	if err != nil {
		return nil, err
	}

	t := &turnState{assistant: a, scope: sc, conversationID: req.ConversationID}

	// Fast path: an unambiguous "create task" message never hits the model.
	if res := parseDirectIntent(req.Message, sc); res.matched {
		if res.question != "" {
			return &Response{Text: res.question}, nil
		}
		payload := store.CreateTaskPayload{Title: res.title, Status: "todo"}
		preview := fmt.Sprintf("Criar tarefa %q para %s", res.title, res.target.Name)
		action, err := t.propose(ctx, res.target, store.ActionCreateTask, payload, preview)
		if err != nil {
			return nil, err
		}
		slog.Info("direct intent matched", "action_id", action.ID, "target", action.TargetUserID)
		return &Response{Text: proposalCreatedText(action), Pending: action}, nil
	}

	registry := a.newRegistry(t)
	messages := []provider.Message{
		{Role: "system", Content: BuildSystemPrompt(sc, time.Now())},
		{Role: "user", Content: req.Message},
	}

	resp, err := a.provider.Chat(ctx, &provider.ChatRequest{
		Messages:    messages,
		Tools:       registry.Definitions(),
		Model:       a.model.Name,
		MaxTokens:   a.model.MaxTokens,
		Temperature: a.model.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("model call failed: %w", err)
	}

	if len(resp.ToolCalls) == 0 {
		// A status question answered in free text is a model mistake the
		// caller would have no way to detect; force the snapshot instead of
		// trusting numbers the model made up.
		if looksLikeStatusQuery(req.Message) {
			slog.Info("status-query fallback triggered", "conversation", req.ConversationID)
			out, err := registry.Execute(ctx, "get_team_progress", map[string]any{})
			if err != nil {
				return nil, err
			}
			return &Response{Text: out}, nil
		}
		return &Response{Text: resp.Content}, nil
	}

	messages = append(messages, provider.Message{
		Role:      "assistant",
		Content:   resp.Content,
		ToolCalls: resp.ToolCalls,
	})
	for _, tc := range resp.ToolCalls {
		out, err := registry.Execute(ctx, tc.Name, tc.Arguments)
		if err != nil {
			slog.Warn("tool execution failed", "tool", tc.Name, "error", err)
			out = "Erro: " + err.Error()
		}
		messages = append(messages, provider.Message{
			Role:       "tool",
			Content:    out,
			ToolCallID: tc.ID,
		})
	}

	// A write proposal ends the turn: the response always foregrounds the
	// pending action, whatever else the model asked for.
	if len(t.pending) > 0 {
		first := t.pending[0]
		text := proposalCreatedText(first)
		if extra := len(t.pending) - 1; extra > 0 {
			text += fmt.Sprintf("\nMais %d proposta(s) criada(s) nesta mensagem, aguardando confirmação.", extra)
		}
		return &Response{Text: text, Pending: first}, nil
	}

	final, err := a.provider.Chat(ctx, &provider.ChatRequest{
		Messages:    messages,
		Model:       a.model.Name,
		MaxTokens:   a.model.MaxTokens,
		Temperature: a.model.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("model call failed: %w", err)
	}
	return &Response{Text: final.Content}, nil
}
