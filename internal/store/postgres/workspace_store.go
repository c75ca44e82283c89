package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/chroniclehq/chronicle/internal/models"
	"github.com/chroniclehq/chronicle/internal/store"
)

// WorkspaceStore implements store.WorkspaceStore using PostgreSQL.
type WorkspaceStore struct {
	pool *pgxpool.Pool
}

// NewWorkspaceStore creates a new PostgreSQL-backed workspace store.
func NewWorkspaceStore(pool *pgxpool.Pool) *WorkspaceStore {
	return &WorkspaceStore{
		pool: pool,
	}
}

// Create creates a new workspace in the database.
func (s *WorkspaceStore) Create(ctx context.Context, workspace *models.Workspace) error {
	query := `
		INSERT INTO workspaces (
			workspace_id, name, owner_id, industry, description,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)
	`

	_, err := s.pool.Exec(ctx, query,
		workspace.WorkspaceID,
		workspace.Name,
		workspace.OwnerID,
		workspace.Industry,
		workspace.Description,
		workspace.CreatedAt,
		workspace.UpdatedAt,
	)

	if err != nil {
		return mapPostgresError(err)
	}

	log.Debug().
		Str("workspace_id", workspace.WorkspaceID.String()).
		Str("name", workspace.Name).
		Msg("Created workspace")

	return nil
}

// Get retrieves a workspace by ID.
func (s *WorkspaceStore) Get(ctx context.Context, workspaceID uuid.UUID) (*models.Workspace, error) {
	query := `
		SELECT workspace_id, name, owner_id, industry, description,
			created_at, updated_at
		FROM workspaces
		WHERE workspace_id = $1
	`

	var workspace models.Workspace
	err := s.pool.QueryRow(ctx, query, workspaceID).Scan(
		&workspace.WorkspaceID,
		&workspace.Name,
		&workspace.OwnerID,
		&workspace.Industry,
		&workspace.Description,
		&workspace.CreatedAt,
		&workspace.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrWorkspaceNotFound
		}
		return nil, fmt.Errorf("failed to get workspace: %w", err)
	}

	return &workspace, nil
}

// Update updates an existing workspace.
func (s *WorkspaceStore) Update(ctx context.Context, workspace *models.Workspace) error {
	workspace.UpdatedAt = time.Now()

	query := `
		UPDATE workspaces SET
			name = $2,
			industry = $3,
			description = $4,
			updated_at = $5
		WHERE workspace_id = $1
	`

	result, err := s.pool.Exec(ctx, query,
		workspace.WorkspaceID,
		workspace.Name,
		workspace.Industry,
		workspace.Description,
		workspace.UpdatedAt,
	)

	if err != nil {
		return mapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return store.ErrWorkspaceNotFound
	}

	return nil
}

// Delete deletes a workspace by ID. Posts, sessions and membership rows
// cascade via FK constraints.
func (s *WorkspaceStore) Delete(ctx context.Context, workspaceID uuid.UUID) error {
	query := `DELETE FROM workspaces WHERE workspace_id = $1`

	result, err := s.pool.Exec(ctx, query, workspaceID)
	if err != nil {
		return mapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return store.ErrWorkspaceNotFound
	}

	log.Info().
		Str("workspace_id", workspaceID.String()).
		Msg("Deleted workspace")

	return nil
}

// ListByMember returns all workspaces the user belongs to, ordered by name.
func (s *WorkspaceStore) ListByMember(ctx context.Context, userID uuid.UUID) ([]*models.Workspace, error) {
	query := `
		SELECT w.workspace_id, w.name, w.owner_id, w.industry, w.description,
			w.created_at, w.updated_at
		FROM workspaces w
		JOIN workspace_members m ON m.workspace_id = w.workspace_id
		WHERE m.user_id = $1
		ORDER BY w.name
	`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}
	defer rows.Close()

	var workspaces []*models.Workspace
	for rows.Next() {
		var workspace models.Workspace
		err := rows.Scan(
			&workspace.WorkspaceID,
			&workspace.Name,
			&workspace.OwnerID,
			&workspace.Industry,
			&workspace.Description,
			&workspace.CreatedAt,
			&workspace.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workspace: %w", err)
		}
		workspaces = append(workspaces, &workspace)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating workspaces: %w", err)
	}

	return workspaces, nil
}

// AddMember adds a user to a workspace.
func (s *WorkspaceStore) AddMember(ctx context.Context, workspaceID, userID uuid.UUID) error {
	query := `
		INSERT INTO workspace_members (workspace_id, user_id, joined_at)
		VALUES ($1, $2, $3)
	`

	_, err := s.pool.Exec(ctx, query, workspaceID, userID, time.Now())
	if err != nil {
		return mapPostgresError(err)
	}

	log.Debug().
		Str("workspace_id", workspaceID.String()).
		Str("user_id", userID.String()).
		Msg("Added workspace member")

	return nil
}

// IsMember reports whether the user belongs to the workspace.
func (s *WorkspaceStore) IsMember(ctx context.Context, workspaceID, userID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM workspace_members
			WHERE workspace_id = $1 AND user_id = $2
		)
	`

	var ok bool
	if err := s.pool.QueryRow(ctx, query, workspaceID, userID).Scan(&ok); err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}

	return ok, nil
}

// ListMembers returns the member roster for a workspace, ordered by join time.
func (s *WorkspaceStore) ListMembers(ctx context.Context, workspaceID uuid.UUID) ([]*models.Member, error) {
	query := `
		SELECT u.user_id, u.username, u.email, u.role
		FROM users u
		JOIN workspace_members m ON m.user_id = u.user_id
		WHERE m.workspace_id = $1
		ORDER BY m.joined_at
	`

	rows, err := s.pool.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []*models.Member
	for rows.Next() {
		var member models.Member
		err := rows.Scan(
			&member.UserID,
			&member.Username,
			&member.Email,
			&member.Role,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, &member)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating members: %w", err)
	}

	return members, nil
}
