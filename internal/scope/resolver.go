// Package scope computes the set of users an actor is authorized to query
// and propose actions for. Scope is resolved fresh on every request and
// never cached across turns.
package scope

import (
	"context"
	"errors"
	"fmt"

	"github.com/leadmate/leadmate/internal/platform"
)

var (
	// ErrFeatureDisabled means the workspace has the assistant turned off.
	ErrFeatureDisabled = errors.New("team assistant is disabled for this workspace")
	// ErrEmptyScope means the actor has no direct reports to act on.
	ErrEmptyScope = errors.New("actor has no direct reports")
	// ErrOutOfScope means a target user is not in the actor's reporting line.
	ErrOutOfScope = errors.New("target user is outside the actor's scope")
)

// Scope is the closed set of users an actor may read or act upon,
// valid for a single request.
type Scope struct {
	WorkspaceID string
	ActorAuthID string
	ActorID     string
	Users       []platform.User
}

// Contains reports whether the internal user id is in scope.
// The actor is always in their own scope.
func (s *Scope) Contains(userID string) bool {
	if userID == s.ActorID {
		return true
	}
	for _, u := range s.Users {
		if u.ID == userID {
			return true
		}
	}
	return false
}

// Lookup returns the scoped user with the given internal id.
func (s *Scope) Lookup(userID string) (platform.User, bool) {
	for _, u := range s.Users {
		if u.ID == userID {
			return u, true
		}
	}
	return platform.User{}, false
}

// UserIDs returns the internal ids of all scoped users.
func (s *Scope) UserIDs() []string {
	ids := make([]string, len(s.Users))
	for i, u := range s.Users {
		ids[i] = u.ID
	}
	return ids
}

// Resolver computes scopes from the team directory. It fails closed:
// a disabled feature flag or an empty reporting line is an error,
// never a silently empty answer.
type Resolver struct {
	source platform.TeamSource
}

// NewResolver creates a scope resolver over the given team source.
func NewResolver(source platform.TeamSource) *Resolver {
	return &Resolver{source: source}
}

// Resolve returns the actor's scope for the workspace.
func (r *Resolver) Resolve(ctx context.Context, workspaceID, actorAuthID string) (*Scope, error) {
	enabled, err := r.source.AssistantEnabled(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("check feature flag: %w", err)
	}
	if !enabled {
		return nil, ErrFeatureDisabled
	}

	actorID, err := r.source.ResolveActor(ctx, workspaceID, actorAuthID)
	if err != nil {
		return nil, fmt.Errorf("resolve actor: %w", err)
	}

	users, err := r.source.Reports(ctx, workspaceID, actorAuthID)
	if err != nil {
		return nil, fmt.Errorf("load reports: %w", err)
	}
	if len(users) == 0 {
		return nil, ErrEmptyScope
	}

	return &Scope{
		WorkspaceID: workspaceID,
		ActorAuthID: actorAuthID,
		ActorID:     actorID,
		Users:       users,
	}, nil
}

// AssertInScope re-resolves the actor's scope and verifies the target is
// still a member. Called immediately before execution to close the window
// where the actor's authority could have shrunk since proposal time.
func (r *Resolver) AssertInScope(ctx context.Context, workspaceID, actorAuthID, targetID string) (*Scope, error) {
	sc, err := r.Resolve(ctx, workspaceID, actorAuthID)
	if err != nil {
		return nil, err
	}
	if !sc.Contains(targetID) {
		return nil, ErrOutOfScope
	}
	return sc, nil
}
