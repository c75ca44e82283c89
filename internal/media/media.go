package media

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Store writes generated assets to a directory on local disk. Filenames
// are derived from the post ID, so regenerating an image replaces the
// previous asset in place.
type Store struct {
	dir string
}

// NewStore creates a media store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("media directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// SaveImage writes image bytes for a post and returns the stored path.
func (s *Store) SaveImage(postID uuid.UUID, data []byte) (string, error) {
	path := filepath.Join(s.dir, postID.String()+".png")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	return path, nil
}
