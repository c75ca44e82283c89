package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chroniclehq/chronicle/internal/models"
	"github.com/chroniclehq/chronicle/internal/store"
)

// WorkspaceStore implements store.WorkspaceStore using in-memory storage.
// Data is lost on restart; intended for tests and local development.
type WorkspaceStore struct {
	mu sync.RWMutex

	workspaces map[uuid.UUID]*models.Workspace         // workspace_id -> Workspace
	members    map[uuid.UUID]map[uuid.UUID]time.Time   // workspace_id -> user_id -> joined at
	users      *UserStore                              // member roster lookups
}

// NewWorkspaceStore creates a new in-memory workspace store. The user store
// is consulted to resolve member rosters.
func NewWorkspaceStore(users *UserStore) *WorkspaceStore {
	return &WorkspaceStore{
		workspaces: make(map[uuid.UUID]*models.Workspace),
		members:    make(map[uuid.UUID]map[uuid.UUID]time.Time),
		users:      users,
	}
}

// Create creates a new workspace in memory.
func (s *WorkspaceStore) Create(ctx context.Context, workspace *models.Workspace) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *workspace
	s.workspaces[workspace.WorkspaceID] = &clone
	s.members[workspace.WorkspaceID] = make(map[uuid.UUID]time.Time)

	return nil
}

// Get retrieves a workspace by ID.
func (s *WorkspaceStore) Get(ctx context.Context, workspaceID uuid.UUID) (*models.Workspace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	workspace, exists := s.workspaces[workspaceID]
	if !exists {
		return nil, store.ErrWorkspaceNotFound
	}

	clone := *workspace
	return &clone, nil
}

// Update updates an existing workspace.
func (s *WorkspaceStore) Update(ctx context.Context, workspace *models.Workspace) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.workspaces[workspace.WorkspaceID]; !exists {
		return store.ErrWorkspaceNotFound
	}

	workspace.UpdatedAt = time.Now()

	clone := *workspace
	s.workspaces[workspace.WorkspaceID] = &clone

	return nil
}

// Delete deletes a workspace and its membership records.
func (s *WorkspaceStore) Delete(ctx context.Context, workspaceID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.workspaces[workspaceID]; !exists {
		return store.ErrWorkspaceNotFound
	}

	delete(s.workspaces, workspaceID)
	delete(s.members, workspaceID)

	return nil
}

// ListByMember returns all workspaces the user belongs to, ordered by name.
func (s *WorkspaceStore) ListByMember(ctx context.Context, userID uuid.UUID) ([]*models.Workspace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var workspaces []*models.Workspace
	for workspaceID, memberSet := range s.members {
		if _, ok := memberSet[userID]; !ok {
			continue
		}
		clone := *s.workspaces[workspaceID]
		workspaces = append(workspaces, &clone)
	}

	sort.Slice(workspaces, func(i, j int) bool {
		return workspaces[i].Name < workspaces[j].Name
	})

	return workspaces, nil
}

// AddMember adds a user to a workspace.
func (s *WorkspaceStore) AddMember(ctx context.Context, workspaceID, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	memberSet, exists := s.members[workspaceID]
	if !exists {
		return store.ErrWorkspaceNotFound
	}

	if _, ok := memberSet[userID]; ok {
		return store.ErrAlreadyMember
	}

	memberSet[userID] = time.Now()

	return nil
}

// IsMember reports whether the user belongs to the workspace.
func (s *WorkspaceStore) IsMember(ctx context.Context, workspaceID, userID uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	memberSet, exists := s.members[workspaceID]
	if !exists {
		return false, store.ErrWorkspaceNotFound
	}

	_, ok := memberSet[userID]
	return ok, nil
}

// ListMembers returns the member roster for a workspace, ordered by join time.
func (s *WorkspaceStore) ListMembers(ctx context.Context, workspaceID uuid.UUID) ([]*models.Member, error) {
	s.mu.RLock()
	memberSet, exists := s.members[workspaceID]
	if !exists {
		s.mu.RUnlock()
		return nil, store.ErrWorkspaceNotFound
	}

	type joined struct {
		userID uuid.UUID
		at     time.Time
	}
	order := make([]joined, 0, len(memberSet))
	for userID, at := range memberSet {
		order = append(order, joined{userID: userID, at: at})
	}
	s.mu.RUnlock()

	sort.Slice(order, func(i, j int) bool {
		return order[i].at.Before(order[j].at)
	})

	members := make([]*models.Member, 0, len(order))
	for _, entry := range order {
		user, err := s.users.Get(ctx, entry.userID)
		if err != nil {
			return nil, err
		}
		members = append(members, &models.Member{
			UserID:   user.UserID,
			Username: user.Username,
			Email:    user.Email,
			Role:     user.Role,
		})
	}

	return members, nil
}
