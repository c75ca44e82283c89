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

// PostStore implements store.PostStore using PostgreSQL.
type PostStore struct {
	pool *pgxpool.Pool
}

// NewPostStore creates a new PostgreSQL-backed post store.
func NewPostStore(pool *pgxpool.Pool) *PostStore {
	return &PostStore{
		pool: pool,
	}
}

const postInsert = `
	INSERT INTO posts (
		post_id, workspace_id, creator_id, assignee_id, session_id,
		description, post_text, image_prompt, video_prompt, post_type,
		schedule_time, image_path, video_path, completed, deleted,
		created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17
	)
`

func postInsertArgs(post *models.Post) []any {
	return []any{
		post.PostID,
		post.WorkspaceID,
		post.CreatorID,
		post.AssigneeID,
		post.SessionID,
		post.Description,
		post.PostText,
		post.ImagePrompt,
		post.VideoPrompt,
		post.PostType,
		post.ScheduleTime,
		post.ImagePath,
		post.VideoPath,
		post.Completed,
		post.Deleted,
		post.CreatedAt,
		post.UpdatedAt,
	}
}

// Create creates a new post in the database.
func (s *PostStore) Create(ctx context.Context, post *models.Post) error {
	_, err := s.pool.Exec(ctx, postInsert, postInsertArgs(post)...)
	if err != nil {
		return mapPostgresError(err)
	}

	log.Debug().
		Str("post_id", post.PostID.String()).
		Str("workspace_id", post.WorkspaceID.String()).
		Msg("Created post")

	return nil
}

// CreateBatch persists all posts from one generation call in a single
// transaction, so a mid-batch failure leaves no partial set.
func (s *PostStore) CreateBatch(ctx context.Context, posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback is safe to call after commit

	for _, post := range posts {
		if _, err := tx.Exec(ctx, postInsert, postInsertArgs(post)...); err != nil {
			return mapPostgresError(err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit post batch: %w", err)
	}

	log.Debug().
		Int("count", len(posts)).
		Str("workspace_id", posts[0].WorkspaceID.String()).
		Msg("Created post batch")

	return nil
}

const postSelect = `
	SELECT post_id, workspace_id, creator_id, assignee_id, session_id,
		description, post_text, image_prompt, video_prompt, post_type,
		schedule_time, image_path, video_path, completed, deleted,
		created_at, updated_at
	FROM posts
`

func scanPost(row pgx.Row) (*models.Post, error) {
	var post models.Post
	err := row.Scan(
		&post.PostID,
		&post.WorkspaceID,
		&post.CreatorID,
		&post.AssigneeID,
		&post.SessionID,
		&post.Description,
		&post.PostText,
		&post.ImagePrompt,
		&post.VideoPrompt,
		&post.PostType,
		&post.ScheduleTime,
		&post.ImagePath,
		&post.VideoPath,
		&post.Completed,
		&post.Deleted,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// Get retrieves a live post by ID.
func (s *PostStore) Get(ctx context.Context, postID uuid.UUID) (*models.Post, error) {
	query := postSelect + ` WHERE post_id = $1 AND NOT deleted`

	post, err := scanPost(s.pool.QueryRow(ctx, query, postID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	return post, nil
}

// Update updates an existing post.
func (s *PostStore) Update(ctx context.Context, post *models.Post) error {
	post.UpdatedAt = time.Now()

	query := `
		UPDATE posts SET
			assignee_id = $2,
			session_id = $3,
			description = $4,
			post_text = $5,
			image_prompt = $6,
			video_prompt = $7,
			post_type = $8,
			schedule_time = $9,
			image_path = $10,
			video_path = $11,
			completed = $12,
			updated_at = $13
		WHERE post_id = $1 AND NOT deleted
	`

	result, err := s.pool.Exec(ctx, query,
		post.PostID,
		post.AssigneeID,
		post.SessionID,
		post.Description,
		post.PostText,
		post.ImagePrompt,
		post.VideoPrompt,
		post.PostType,
		post.ScheduleTime,
		post.ImagePath,
		post.VideoPath,
		post.Completed,
		post.UpdatedAt,
	)

	if err != nil {
		return mapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return store.ErrPostNotFound
	}

	return nil
}

// Delete soft-deletes a post.
func (s *PostStore) Delete(ctx context.Context, postID uuid.UUID) error {
	query := `
		UPDATE posts SET deleted = TRUE, updated_at = $2
		WHERE post_id = $1 AND NOT deleted
	`

	result, err := s.pool.Exec(ctx, query, postID, time.Now())
	if err != nil {
		return mapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return store.ErrPostNotFound
	}

	log.Debug().
		Str("post_id", postID.String()).
		Msg("Deleted post")

	return nil
}

// ListByWorkspace returns all live posts in a workspace, ordered by
// schedule time.
func (s *PostStore) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*models.Post, error) {
	query := postSelect + ` WHERE workspace_id = $1 AND NOT deleted ORDER BY schedule_time`

	rows, err := s.pool.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posts: %w", err)
	}

	return posts, nil
}
