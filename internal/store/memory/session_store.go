package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/chroniclehq/chronicle/internal/models"
	"github.com/chroniclehq/chronicle/internal/store"
)

// SessionStore implements store.SessionStore using in-memory storage.
// Data is lost on restart; intended for tests and local development.
type SessionStore struct {
	mu sync.RWMutex

	sessions map[uuid.UUID]*models.GenerationSession // session_id -> GenerationSession
	turns    map[uuid.UUID][]*models.SessionTurn     // session_id -> turns in append order
}

// NewSessionStore creates a new in-memory generation session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[uuid.UUID]*models.GenerationSession),
		turns:    make(map[uuid.UUID][]*models.SessionTurn),
	}
}

// Create creates a new generation session in memory.
func (s *SessionStore) Create(ctx context.Context, session *models.GenerationSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *session
	s.sessions[session.SessionID] = &clone

	return nil
}

// Get retrieves a generation session by ID.
func (s *SessionStore) Get(ctx context.Context, sessionID uuid.UUID) (*models.GenerationSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, exists := s.sessions[sessionID]
	if !exists {
		return nil, store.ErrSessionNotFound
	}

	clone := *session
	return &clone, nil
}

// AppendTurn appends one prompt/response turn to a session.
func (s *SessionStore) AppendTurn(ctx context.Context, turn *models.SessionTurn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[turn.SessionID]; !exists {
		return store.ErrSessionNotFound
	}

	clone := *turn
	s.turns[turn.SessionID] = append(s.turns[turn.SessionID], &clone)

	return nil
}

// ListTurns returns a session's turns in append order.
func (s *SessionStore) ListTurns(ctx context.Context, sessionID uuid.UUID) ([]*models.SessionTurn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, exists := s.sessions[sessionID]; !exists {
		return nil, store.ErrSessionNotFound
	}

	turns := make([]*models.SessionTurn, 0, len(s.turns[sessionID]))
	for _, turn := range s.turns[sessionID] {
		clone := *turn
		turns = append(turns, &clone)
	}

	return turns, nil
}
