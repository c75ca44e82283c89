package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/chroniclehq/chronicle/internal/models"
	"github.com/chroniclehq/chronicle/internal/store"
)

func newTestWorkspace(t *testing.T, owner *models.User, name string) *models.Workspace {
	t.Helper()
	id, err := uuid.NewV7()
	require.NoError(t, err)
	return &models.Workspace{
		WorkspaceID: id,
		Name:        name,
		OwnerID:     owner.UserID,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}

func TestMemoryWorkspaceStore_AddMember(t *testing.T) {
	ctx := context.Background()

	t.Run("add member", func(t *testing.T) {
		users := NewUserStore()
		st := NewWorkspaceStore(users)

		owner := newTestUser(t, "owner@example.com")
		require.NoError(t, users.Create(ctx, owner))

		ws := newTestWorkspace(t, owner, "Marketing")
		require.NoError(t, st.Create(ctx, ws))
		require.NoError(t, st.AddMember(ctx, ws.WorkspaceID, owner.UserID))

		ok, err := st.IsMember(ctx, ws.WorkspaceID, owner.UserID)
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("adding the same member twice returns ErrAlreadyMember", func(t *testing.T) {
		users := NewUserStore()
		st := NewWorkspaceStore(users)

		owner := newTestUser(t, "owner@example.com")
		require.NoError(t, users.Create(ctx, owner))

		ws := newTestWorkspace(t, owner, "Marketing")
		require.NoError(t, st.Create(ctx, ws))
		require.NoError(t, st.AddMember(ctx, ws.WorkspaceID, owner.UserID))

		err := st.AddMember(ctx, ws.WorkspaceID, owner.UserID)
		require.ErrorIs(t, err, store.ErrAlreadyMember)

		members, err := st.ListMembers(ctx, ws.WorkspaceID)
		require.NoError(t, err)
		require.Len(t, members, 1)
	})

	t.Run("unknown workspace returns ErrWorkspaceNotFound", func(t *testing.T) {
		users := NewUserStore()
		st := NewWorkspaceStore(users)

		id, err := uuid.NewV7()
		require.NoError(t, err)

		err = st.AddMember(ctx, id, id)
		require.ErrorIs(t, err, store.ErrWorkspaceNotFound)
	})
}

func TestMemoryWorkspaceStore_ListByMember(t *testing.T) {
	ctx := context.Background()

	t.Run("lists only workspaces the user belongs to, ordered by name", func(t *testing.T) {
		users := NewUserStore()
		st := NewWorkspaceStore(users)

		owner := newTestUser(t, "owner@example.com")
		other := newTestUser(t, "other@example.com")
		require.NoError(t, users.Create(ctx, owner))
		require.NoError(t, users.Create(ctx, other))

		beta := newTestWorkspace(t, owner, "Beta")
		alpha := newTestWorkspace(t, owner, "Alpha")
		private := newTestWorkspace(t, other, "Private")
		for _, ws := range []*models.Workspace{beta, alpha, private} {
			require.NoError(t, st.Create(ctx, ws))
		}
		require.NoError(t, st.AddMember(ctx, beta.WorkspaceID, owner.UserID))
		require.NoError(t, st.AddMember(ctx, alpha.WorkspaceID, owner.UserID))
		require.NoError(t, st.AddMember(ctx, private.WorkspaceID, other.UserID))

		workspaces, err := st.ListByMember(ctx, owner.UserID)
		require.NoError(t, err)
		require.Len(t, workspaces, 2)
		require.Equal(t, "Alpha", workspaces[0].Name)
		require.Equal(t, "Beta", workspaces[1].Name)
	})
}

func TestMemoryWorkspaceStore_ListMembers(t *testing.T) {
	ctx := context.Background()

	t.Run("roster carries id, email and role", func(t *testing.T) {
		users := NewUserStore()
		st := NewWorkspaceStore(users)

		owner := newTestUser(t, "owner@example.com")
		owner.Role = "manager"
		require.NoError(t, users.Create(ctx, owner))

		ws := newTestWorkspace(t, owner, "Marketing")
		require.NoError(t, st.Create(ctx, ws))
		require.NoError(t, st.AddMember(ctx, ws.WorkspaceID, owner.UserID))

		members, err := st.ListMembers(ctx, ws.WorkspaceID)
		require.NoError(t, err)
		require.Len(t, members, 1)
		require.Equal(t, owner.UserID, members[0].UserID)
		require.Equal(t, "owner@example.com", members[0].Email)
		require.Equal(t, "manager", members[0].Role)
	})
}
