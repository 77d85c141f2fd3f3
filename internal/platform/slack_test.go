package platform

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type captureWriter struct {
	notified []Notification
	err      error
}

func (c *captureWriter) CreateTask(ctx context.Context, workspaceID, userID string, in TaskInput) (string, error) {
	return "task-1", nil
}

func (c *captureWriter) UpdateTask(ctx context.Context, workspaceID, userID, taskID string, patch TaskPatch) (string, error) {
	return taskID, nil
}

func (c *captureWriter) SendNotification(ctx context.Context, workspaceID, userID string, n Notification) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	c.notified = append(c.notified, n)
	return "notif-1", nil
}

func TestSlackNotifierMirrors(t *testing.T) {
	var payload struct {
		Text string `json:"text"`
	}
	received := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received = true
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode webhook: %v", err)
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	inner := &captureWriter{}
	s := NewSlackNotifier(inner, server.URL)

	id, err := s.SendNotification(context.Background(), "ws1", "u1", Notification{
		Title:   "Prazo amanhã",
		Message: "A tarefa vence amanhã.",
		Type:    "warning",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if id != "notif-1" {
		t.Fatalf("id = %q", id)
	}
	if len(inner.notified) != 1 {
		t.Fatal("inner writer must deliver first")
	}
	if !received {
		t.Fatal("webhook not called")
	}
	if !strings.Contains(payload.Text, "Prazo amanhã") || !strings.Contains(payload.Text, ":warning:") {
		t.Fatalf("webhook text = %q", payload.Text)
	}
}

func TestSlackNotifierMirrorFailureIsBestEffort(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no_service", http.StatusNotFound)
	}))
	defer server.Close()

	inner := &captureWriter{}
	s := NewSlackNotifier(inner, server.URL)

	if _, err := s.SendNotification(context.Background(), "ws1", "u1", Notification{Title: "T", Message: "M", Type: "info"}); err != nil {
		t.Fatalf("mirror failure must not fail the send: %v", err)
	}
	if len(inner.notified) != 1 {
		t.Fatal("inner delivery must still happen")
	}
}

func TestSlackNotifierDeliveryFailureStops(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("webhook must not be called when delivery fails")
	}))
	defer server.Close()

	inner := &captureWriter{err: context.DeadlineExceeded}
	s := NewSlackNotifier(inner, server.URL)

	if _, err := s.SendNotification(context.Background(), "ws1", "u1", Notification{Title: "T", Message: "M", Type: "info"}); err == nil {
		t.Fatal("expected delivery error")
	}
}

func TestTaskWritesPassThrough(t *testing.T) {
	inner := &captureWriter{}
	s := NewSlackNotifier(inner, "http://unused.invalid")

	id, err := s.CreateTask(context.Background(), "ws1", "u1", TaskInput{Title: "X", Status: "todo"})
	if err != nil || id != "task-1" {
		t.Fatalf("create passthrough: id=%q err=%v", id, err)
	}
}
