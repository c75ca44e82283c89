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

// PostStore implements store.PostStore using in-memory storage.
// Data is lost on restart; intended for tests and local development.
type PostStore struct {
	mu sync.RWMutex

	posts map[uuid.UUID]*models.Post // post_id -> Post
}

// NewPostStore creates a new in-memory post store.
func NewPostStore() *PostStore {
	return &PostStore{
		posts: make(map[uuid.UUID]*models.Post),
	}
}

// Create creates a new post in memory.
func (s *PostStore) Create(ctx context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *post
	s.posts[post.PostID] = &clone

	return nil
}

// CreateBatch persists all posts atomically. The single lock makes the
// batch all-or-nothing in memory.
func (s *PostStore) CreateBatch(ctx context.Context, posts []*models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, post := range posts {
		clone := *post
		s.posts[post.PostID] = &clone
	}

	return nil
}

// Get retrieves a post by ID.
func (s *PostStore) Get(ctx context.Context, postID uuid.UUID) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	post, exists := s.posts[postID]
	if !exists || post.Deleted {
		return nil, store.ErrPostNotFound
	}

	clone := *post
	return &clone, nil
}

// Update updates an existing post.
func (s *PostStore) Update(ctx context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.posts[post.PostID]; !exists {
		return store.ErrPostNotFound
	}

	post.UpdatedAt = time.Now()

	clone := *post
	s.posts[post.PostID] = &clone

	return nil
}

// Delete soft-deletes a post.
func (s *PostStore) Delete(ctx context.Context, postID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, exists := s.posts[postID]
	if !exists || post.Deleted {
		return store.ErrPostNotFound
	}

	post.Deleted = true
	post.UpdatedAt = time.Now()

	return nil
}

// ListByWorkspace returns all live posts in a workspace, ordered by
// schedule time.
func (s *PostStore) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var posts []*models.Post
	for _, post := range s.posts {
		if post.WorkspaceID != workspaceID || post.Deleted {
			continue
		}
		clone := *post
		posts = append(posts, &clone)
	}

	sort.Slice(posts, func(i, j int) bool {
		return posts[i].ScheduleTime.Before(posts[j].ScheduleTime)
	})

	return posts, nil
}
