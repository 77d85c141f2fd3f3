package platform

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestReportsAndFeatureFlag(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("auth header = %q", r.Header.Get("Authorization"))
		}
		switch r.URL.Path {
		case "/workspaces/ws1/features/team-assistant":
			json.NewEncoder(w).Encode(map[string]any{"enabled": true})
		case "/workspaces/ws1/managers/auth-mgr1/reports":
			json.NewEncoder(w).Encode(map[string]any{"users": []User{
				{ID: "u1", Name: "Maria Silva"},
			}})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	c := NewHTTPClient(server.URL, "tok")
	ctx := context.Background()

	enabled, err := c.AssistantEnabled(ctx, "ws1")
	if err != nil || !enabled {
		t.Fatalf("feature flag: enabled=%v err=%v", enabled, err)
	}

	users, err := c.Reports(ctx, "ws1", "auth-mgr1")
	if err != nil {
		t.Fatalf("reports: %v", err)
	}
	if len(users) != 1 || users[0].ID != "u1" {
		t.Fatalf("users mismatch: %+v", users)
	}
}

func TestTasksByUsersQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("user_ids") != "u1,u2" {
			t.Errorf("user_ids = %q", q.Get("user_ids"))
		}
		if q.Get("limit") != "20" {
			t.Errorf("limit = %q", q.Get("limit"))
		}
		json.NewEncoder(w).Encode(map[string]any{"tasks": []TaskRow{
			{ID: "t1", UserID: "u1", Title: "X", Status: "todo"},
		}})
	}))
	defer server.Close()

	c := NewHTTPClient(server.URL, "")
	tasks, err := c.TasksByUsers(context.Background(), "ws1", []string{"u1", "u2"}, 20)
	if err != nil {
		t.Fatalf("tasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Status != "todo" {
		t.Fatalf("tasks mismatch: %+v", tasks)
	}
}

func TestCreateTask(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if r.URL.Path != "/workspaces/ws1/users/u1/tasks" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var in TaskInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if in.Title != "Ligar para o cliente" || in.Status != "todo" {
			t.Errorf("body mismatch: %+v", in)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"id": "task-9"})
	}))
	defer server.Close()

	c := NewHTTPClient(server.URL, "")
	id, err := c.CreateTask(context.Background(), "ws1", "u1", TaskInput{Title: "Ligar para o cliente", Status: "todo"})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if id != "task-9" {
		t.Fatalf("id = %q", id)
	}
}

func TestUpdateTaskPatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("method = %s", r.Method)
		}
		var patch map[string]any
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if patch["status"] != "done" {
			t.Errorf("patch status = %v", patch["status"])
		}
		// Nil fields must not be serialized at all.
		if _, ok := patch["title"]; ok {
			t.Error("nil title leaked into patch body")
		}
		json.NewEncoder(w).Encode(map[string]any{"id": "t1"})
	}))
	defer server.Close()

	c := NewHTTPClient(server.URL, "")
	status := "done"
	id, err := c.UpdateTask(context.Background(), "ws1", "u1", "t1", TaskPatch{Status: &status})
	if err != nil {
		t.Fatalf("update task: %v", err)
	}
	if id != "t1" {
		t.Fatalf("id = %q", id)
	}
}

func TestBackendErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
	}))
	defer server.Close()

	c := NewHTTPClient(server.URL, "")
	if _, err := c.AssistantEnabled(context.Background(), "ws1"); err == nil {
		t.Fatal("expected error for non-200 status")
	}
}
