package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/chroniclehq/chronicle/internal/models"
	"github.com/chroniclehq/chronicle/internal/store"
)

// SessionStore implements store.SessionStore using PostgreSQL.
// Sessions are immutable once created; turns are append-only.
type SessionStore struct {
	pool *pgxpool.Pool
}

// NewSessionStore creates a new PostgreSQL-backed generation session store.
func NewSessionStore(pool *pgxpool.Pool) *SessionStore {
	return &SessionStore{
		pool: pool,
	}
}

// Create creates a new generation session in the database.
func (s *SessionStore) Create(ctx context.Context, session *models.GenerationSession) error {
	query := `
		INSERT INTO generation_sessions (
			session_id, workspace_id, creator_id, created_at
		) VALUES (
			$1, $2, $3, $4
		)
	`

	_, err := s.pool.Exec(ctx, query,
		session.SessionID,
		session.WorkspaceID,
		session.CreatorID,
		session.CreatedAt,
	)

	if err != nil {
		return mapPostgresError(err)
	}

	log.Debug().
		Str("session_id", session.SessionID.String()).
		Str("workspace_id", session.WorkspaceID.String()).
		Msg("Created generation session")

	return nil
}

// Get retrieves a generation session by ID.
func (s *SessionStore) Get(ctx context.Context, sessionID uuid.UUID) (*models.GenerationSession, error) {
	query := `
		SELECT session_id, workspace_id, creator_id, created_at
		FROM generation_sessions
		WHERE session_id = $1
	`

	var session models.GenerationSession
	err := s.pool.QueryRow(ctx, query, sessionID).Scan(
		&session.SessionID,
		&session.WorkspaceID,
		&session.CreatorID,
		&session.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return &session, nil
}

// AppendTurn appends one prompt/response turn to a session.
func (s *SessionStore) AppendTurn(ctx context.Context, turn *models.SessionTurn) error {
	query := `
		INSERT INTO session_turns (
			turn_id, session_id, prompt, response, created_at
		) VALUES (
			$1, $2, $3, $4, $5
		)
	`

	_, err := s.pool.Exec(ctx, query,
		turn.TurnID,
		turn.SessionID,
		turn.Prompt,
		turn.Response,
		turn.CreatedAt,
	)

	if err != nil {
		return mapPostgresError(err)
	}

	log.Debug().
		Str("session_id", turn.SessionID.String()).
		Msg("Appended session turn")

	return nil
}

// ListTurns returns a session's turns in creation order.
func (s *SessionStore) ListTurns(ctx context.Context, sessionID uuid.UUID) ([]*models.SessionTurn, error) {
	query := `
		SELECT turn_id, session_id, prompt, response, created_at
		FROM session_turns
		WHERE session_id = $1
		ORDER BY created_at, turn_id
	`

	rows, err := s.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list session turns: %w", err)
	}
	defer rows.Close()

	var turns []*models.SessionTurn
	for rows.Next() {
		var turn models.SessionTurn
		err := rows.Scan(
			&turn.TurnID,
			&turn.SessionID,
			&turn.Prompt,
			&turn.Response,
			&turn.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session turn: %w", err)
		}
		turns = append(turns, &turn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating session turns: %w", err)
	}

	return turns, nil
}
