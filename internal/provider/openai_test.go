package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestParseToolArguments(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want map[string]any
	}{
		{"valid", `{"user_id":"u1","title":"X"}`, map[string]any{"user_id": "u1", "title": "X"}},
		{"empty", "", map[string]any{}},
		{"whitespace", "   ", map[string]any{}},
		{"repairable trailing comma", `{"user_id":"u1",}`, map[string]any{"user_id": "u1"}},
		{"repairable single quotes", `{'user_id': 'u1'}`, map[string]any{"user_id": "u1"}},
		{"repairable truncated", `{"user_id":"u1"`, map[string]any{"user_id": "u1"}},
		{"hopeless garbage", `not json at all {{{`, map[string]any{}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := ParseToolArguments(c.raw)
			if !reflect.DeepEqual(got, c.want) {
				t.Fatalf("ParseToolArguments(%q) = %v, want %v", c.raw, got, c.want)
			}
		})
	}
}

func TestChatSendsToolsAndAuth(t *testing.T) {
	var captured map[string]any
	var authHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{
				"message":       map[string]any{"role": "assistant", "content": "ok"},
				"finish_reason": "stop",
			}},
			"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 2, "total_tokens": 12},
		})
	}))
	defer server.Close()

	client := NewOpenAIClient("test-key", server.URL, "test-model")
	resp, err := client.Chat(context.Background(), &ChatRequest{
		Messages: []Message{{Role: "user", Content: "oi"}},
		Tools: []ToolDefinition{{
			Type:     "function",
			Function: FunctionDef{Name: "get_team_progress", Parameters: map[string]any{"type": "object"}},
		}},
		MaxTokens: 100,
	})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}

	if authHeader != "Bearer test-key" {
		t.Fatalf("auth header = %q", authHeader)
	}
	if captured["model"] != "test-model" {
		t.Fatalf("model = %v", captured["model"])
	}
	if captured["tool_choice"] != "auto" {
		t.Fatalf("tool_choice = %v", captured["tool_choice"])
	}
	if _, ok := captured["tools"]; !ok {
		t.Fatal("tools missing from request")
	}
	if resp.Content != "ok" || resp.Usage.TotalTokens != 12 {
		t.Fatalf("response mismatch: %+v", resp)
	}
}

func TestChatParsesToolCallsWithMalformedArguments(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{
				"message": map[string]any{
					"role": "assistant",
					"tool_calls": []map[string]any{
						{
							"id":   "call_1",
							"type": "function",
							"function": map[string]any{
								"name":      "create_task_proposal",
								"arguments": `{"user_id":"u1","title":"X",}`,
							},
						},
						{
							"id":   "call_2",
							"type": "function",
							"function": map[string]any{
								"name":      "get_team_progress",
								"arguments": "garbage {{{",
							},
						},
					},
				},
				"finish_reason": "tool_calls",
			}},
		})
	}))
	defer server.Close()

	client := NewOpenAIClient("k", server.URL, "m")
	resp, err := client.Chat(context.Background(), &ChatRequest{
		Messages: []Message{{Role: "user", Content: "oi"}},
	})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if len(resp.ToolCalls) != 2 {
		t.Fatalf("expected 2 tool calls, got %d", len(resp.ToolCalls))
	}
	if resp.ToolCalls[0].Arguments["title"] != "X" {
		t.Fatalf("repairable arguments lost: %+v", resp.ToolCalls[0].Arguments)
	}
	if len(resp.ToolCalls[1].Arguments) != 0 {
		t.Fatalf("garbage arguments must become an empty map, got %+v", resp.ToolCalls[1].Arguments)
	}
}

func TestChatErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewOpenAIClient("k", server.URL, "m")
	if _, err := client.Chat(context.Background(), &ChatRequest{Messages: []Message{{Role: "user", Content: "oi"}}}); err == nil {
		t.Fatal("expected error for non-200 status")
	}
}
