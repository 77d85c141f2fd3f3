package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// HTTPClient talks to the product backend's internal REST API.
// It implements TeamSource, the three readers, and Writer.
type HTTPClient struct {
	baseURL    string
	apiToken   string
	httpClient *http.Client
}

// NewHTTPClient creates a backend API client.
func NewHTTPClient(baseURL, apiToken string) *HTTPClient {
	return &HTTPClient{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		apiToken: apiToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("backend API error (status %d): %s", resp.StatusCode, string(respBody))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

// AssistantEnabled checks the workspace feature flag.
func (c *HTTPClient) AssistantEnabled(ctx context.Context, workspaceID string) (bool, error) {
	var out struct {
		Enabled bool `json:"enabled"`
	}
	path := fmt.Sprintf("/workspaces/%s/features/team-assistant", url.PathEscape(workspaceID))
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return false, err
	}
	return out.Enabled, nil
}

// Reports returns the actor's direct reports.
func (c *HTTPClient) Reports(ctx context.Context, workspaceID, actorAuthID string) ([]User, error) {
	var out struct {
		Users []User `json:"users"`
	}
	path := fmt.Sprintf("/workspaces/%s/managers/%s/reports",
		url.PathEscape(workspaceID), url.PathEscape(actorAuthID))
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Users, nil
}

// ResolveActor maps the auth identity to the internal user id.
func (c *HTTPClient) ResolveActor(ctx context.Context, workspaceID, actorAuthID string) (string, error) {
	var out struct {
		UserID string `json:"user_id"`
	}
	path := fmt.Sprintf("/workspaces/%s/identities/%s",
		url.PathEscape(workspaceID), url.PathEscape(actorAuthID))
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return "", err
	}
	return out.UserID, nil
}

func usersQuery(userIDs []string, limit int) string {
	q := url.Values{}
	q.Set("user_ids", strings.Join(userIDs, ","))
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return "?" + q.Encode()
}

// TasksByUsers returns tasks for the given users, newest first.
func (c *HTTPClient) TasksByUsers(ctx context.Context, workspaceID string, userIDs []string, limit int) ([]TaskRow, error) {
	var out struct {
		Tasks []TaskRow `json:"tasks"`
	}
	path := fmt.Sprintf("/workspaces/%s/tasks", url.PathEscape(workspaceID)) + usersQuery(userIDs, limit)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Tasks, nil
}

// PlansByUsers returns development plans for the given users.
func (c *HTTPClient) PlansByUsers(ctx context.Context, workspaceID string, userIDs []string, limit int) ([]PDIRow, error) {
	var out struct {
		Plans []PDIRow `json:"plans"`
	}
	path := fmt.Sprintf("/workspaces/%s/pdis", url.PathEscape(workspaceID)) + usersQuery(userIDs, limit)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Plans, nil
}

// AssessmentsByUsers returns assessments for the given users.
func (c *HTTPClient) AssessmentsByUsers(ctx context.Context, workspaceID string, userIDs []string, limit int) ([]AssessmentRow, error) {
	var out struct {
		Assessments []AssessmentRow `json:"assessments"`
	}
	path := fmt.Sprintf("/workspaces/%s/assessments", url.PathEscape(workspaceID)) + usersQuery(userIDs, limit)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Assessments, nil
}

// CreateTask creates a task for the target user and returns its id.
func (c *HTTPClient) CreateTask(ctx context.Context, workspaceID, userID string, in TaskInput) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	path := fmt.Sprintf("/workspaces/%s/users/%s/tasks",
		url.PathEscape(workspaceID), url.PathEscape(userID))
	if err := c.do(ctx, http.MethodPost, path, in, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// UpdateTask applies a partial update to an existing task.
func (c *HTTPClient) UpdateTask(ctx context.Context, workspaceID, userID, taskID string, patch TaskPatch) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	path := fmt.Sprintf("/workspaces/%s/users/%s/tasks/%s",
		url.PathEscape(workspaceID), url.PathEscape(userID), url.PathEscape(taskID))
	if err := c.do(ctx, http.MethodPatch, path, patch, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// SendNotification delivers an in-app notification to the target user.
func (c *HTTPClient) SendNotification(ctx context.Context, workspaceID, userID string, n Notification) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	path := fmt.Sprintf("/workspaces/%s/users/%s/notifications",
		url.PathEscape(workspaceID), url.PathEscape(userID))
	if err := c.do(ctx, http.MethodPost, path, n, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}
