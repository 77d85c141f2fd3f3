// Package store persists pending actions and the audit log in sqlite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

var (
	// ErrNotFound means no pending action exists with the given id.
	ErrNotFound = errors.New("pending action not found")
	// ErrAlreadyProcessed means the action left the pending state before
	// this caller could execute it.
	ErrAlreadyProcessed = errors.New("pending action already processed")
)

// Store wraps the sqlite database holding pending actions and audit records.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at dbPath and applies the schema.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreatePendingAction inserts a new pending action. A missing id is
// generated; a missing status defaults to pending.
func (s *Store) CreatePendingAction(ctx context.Context, a *PendingAction) error {
	if !a.ActionType.Valid() {
		return fmt.Errorf("unknown action type: %q", a.ActionType)
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Status == "" {
		a.Status = StatusPending
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pending_actions
			(id, workspace_id, conversation_id, actor_user_id, target_user_id,
			 action_type, payload, preview, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.WorkspaceID, a.ConversationID, a.ActorUserID, a.TargetUserID,
		string(a.ActionType), string(a.Payload), a.Preview, a.Status, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert pending action: %w", err)
	}
	return nil
}

// GetPendingAction returns the action with the given id.
func (s *Store) GetPendingAction(ctx context.Context, id string) (*PendingAction, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, workspace_id, conversation_id, actor_user_id, target_user_id,
		       action_type, payload, preview, status, created_at,
		       confirmed_at, executed_at, executed_result
		FROM pending_actions WHERE id = ?`, id)
	return scanPendingAction(row)
}

// ListPendingActions returns actions for the actor in the workspace,
// newest first. An empty status matches all statuses.
func (s *Store) ListPendingActions(ctx context.Context, workspaceID, actorUserID, status string, limit int) ([]*PendingAction, error) {
	query := `
		SELECT id, workspace_id, conversation_id, actor_user_id, target_user_id,
		       action_type, payload, preview, status, created_at,
		       confirmed_at, executed_at, executed_result
		FROM pending_actions
		WHERE workspace_id = ? AND actor_user_id = ?`
	args := []any{workspaceID, actorUserID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list pending actions: %w", err)
	}
	defer rows.Close()

	var actions []*PendingAction
	for rows.Next() {
		a, err := scanPendingAction(rows)
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	return actions, rows.Err()
}

// ClaimPending transitions the action from pending to executing and
// stamps confirmed_at. The update is conditioned on the row still being
// pending, so of any number of concurrent confirmations exactly one
// holds the claim; the losers observe zero affected rows and get
// ErrAlreadyProcessed. The claim must be taken before the backend write
// is issued.
func (s *Store) ClaimPending(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE pending_actions
		SET status = ?, confirmed_at = ?
		WHERE id = ? AND status = ?`,
		StatusExecuting, time.Now().UTC(), id, StatusPending)
	if err != nil {
		return fmt.Errorf("claim pending action: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("claim pending action: %w", err)
	}
	if affected == 0 {
		if _, err := s.GetPendingAction(ctx, id); errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return ErrAlreadyProcessed
	}
	return nil
}

// ReleaseClaim returns a claimed action to pending after a failed
// backend write, so the actor can confirm again.
func (s *Store) ReleaseClaim(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE pending_actions
		SET status = ?, confirmed_at = NULL
		WHERE id = ? AND status = ?`,
		StatusPending, id, StatusExecuting)
	if err != nil {
		return fmt.Errorf("release claim: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("release claim: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("release claim: action %s is not executing", id)
	}
	return nil
}

// MarkExecuted transitions a claimed action to executed and stores the
// result. Only the claim holder can reach this, so a zero-row update
// means the claim was never taken or the action is already terminal.
func (s *Store) MarkExecuted(ctx context.Context, id, result string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE pending_actions
		SET status = ?, executed_at = ?, executed_result = ?
		WHERE id = ? AND status = ?`,
		StatusExecuted, time.Now().UTC(), result, id, StatusExecuting)
	if err != nil {
		return fmt.Errorf("mark executed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark executed: %w", err)
	}
	if affected == 0 {
		if _, err := s.GetPendingAction(ctx, id); errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return ErrAlreadyProcessed
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPendingAction(row rowScanner) (*PendingAction, error) {
	var a PendingAction
	var actionType, payload string
	var confirmedAt, executedAt sql.NullTime
	err := row.Scan(&a.ID, &a.WorkspaceID, &a.ConversationID, &a.ActorUserID,
		&a.TargetUserID, &actionType, &payload, &a.Preview, &a.Status,
		&a.CreatedAt, &confirmedAt, &executedAt, &a.ExecutedResult)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan pending action: %w", err)
	}
	a.ActionType = ActionType(actionType)
	a.Payload = []byte(payload)
	if confirmedAt.Valid {
		a.ConfirmedAt = &confirmedAt.Time
	}
	if executedAt.Valid {
		a.ExecutedAt = &executedAt.Time
	}
	return &a, nil
}

// AppendAudit writes one audit record. The log is append-only; nothing
// in the codebase updates or deletes rows.
func (s *Store) AppendAudit(ctx context.Context, e *AuditEntry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if e.Metadata == "" {
		e.Metadata = "{}"
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_log
			(actor_user_id, action, entity_type, entity_id, workspace_id, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ActorUserID, e.Action, e.EntityType, e.EntityID, e.WorkspaceID, e.Metadata, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("append audit: %w", err)
	}
	e.ID, _ = res.LastInsertId()
	return nil
}

// ListAudit returns audit records matching the filter, newest first.
func (s *Store) ListAudit(ctx context.Context, f AuditFilter) ([]AuditEntry, error) {
	var conds []string
	var args []any
	if f.WorkspaceID != "" {
		conds = append(conds, "workspace_id = ?")
		args = append(args, f.WorkspaceID)
	}
	if f.ActorUserID != "" {
		conds = append(conds, "actor_user_id = ?")
		args = append(args, f.ActorUserID)
	}
	if f.Action != "" {
		conds = append(conds, "action = ?")
		args = append(args, f.Action)
	}

	query := `
		SELECT id, actor_user_id, action, entity_type, entity_id, workspace_id, metadata, created_at
		FROM audit_log`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	query += " LIMIT ?"
	args = append(args, limit)
	if f.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, f.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit: %w", err)
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var e AuditEntry
		if err := rows.Scan(&e.ID, &e.ActorUserID, &e.Action, &e.EntityType,
			&e.EntityID, &e.WorkspaceID, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
