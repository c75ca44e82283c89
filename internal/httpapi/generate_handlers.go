package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/chroniclehq/chronicle/internal/auth"
	"github.com/chroniclehq/chronicle/internal/genai"
	"github.com/chroniclehq/chronicle/internal/models"
	"github.com/chroniclehq/chronicle/internal/store"
	"github.com/chroniclehq/chronicle/internal/telemetry"
)

type generatePostsRequest struct {
	CustomInstructions string     `json:"custom_instructions"`
	RangeStart         string     `json:"range_start"`
	RangeEnd           string     `json:"range_end"`
	SessionID          *uuid.UUID `json:"session_id"`
}

type generatePostsResponse struct {
	SessionID uuid.UUID  `json:"session_id"`
	Posts     []postView `json:"posts"`
}

// parseDateField accepts a date or a full timestamp.
func parseDateField(value string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", value)
}

// loadOrCreateSession resolves the request's session, creating a fresh one
// when no session_id was given. A session from another workspace reads as
// not found.
func (s *Server) loadOrCreateSession(r *http.Request, workspaceID uuid.UUID, user *models.User, sessionID *uuid.UUID) (*models.GenerationSession, []*models.SessionTurn, error) {
	if sessionID != nil {
		session, err := s.cfg.Sessions.Get(r.Context(), *sessionID)
		if err != nil {
			return nil, nil, err
		}
		if session.WorkspaceID != workspaceID {
			// A session from another workspace is invisible here.
			return nil, nil, store.ErrSessionNotFound
		}
		turns, err := s.cfg.Sessions.ListTurns(r.Context(), session.SessionID)
		if err != nil {
			return nil, nil, err
		}
		return session, turns, nil
	}

	newID, err := uuid.NewV7()
	if err != nil {
		return nil, nil, err
	}
	session := &models.GenerationSession{
		SessionID:   newID,
		WorkspaceID: workspaceID,
		CreatorID:   user.UserID,
		CreatedAt:   time.Now(),
	}
	if err := s.cfg.Sessions.Create(r.Context(), session); err != nil {
		return nil, nil, err
	}
	return session, nil, nil
}

// recordTurn persists the prompt/response exchange. Recording failure does
// not fail the request, the posts are already committed.
func (s *Server) recordTurn(r *http.Request, sessionID uuid.UUID, result *genai.Result) {
	turnID, err := uuid.NewV7()
	if err == nil {
		err = s.cfg.Sessions.AppendTurn(r.Context(), &models.SessionTurn{
			TurnID:    turnID,
			SessionID: sessionID,
			Prompt:    result.Prompt,
			Response:  result.RawResponse,
			CreatedAt: time.Now(),
		})
	}
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).
			Str("session_id", sessionID.String()).
			Msg("failed to record generation turn")
	}
}

func (s *Server) handleGeneratePosts(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	workspaceID, ok := pathUUID(w, r, "workspace_id")
	if !ok {
		return
	}
	workspace, ok := s.requireWorkspaceMember(w, r, workspaceID, user)
	if !ok {
		return
	}

	var req generatePostsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	rangeStart := time.Now()
	rangeEnd := rangeStart.AddDate(0, 0, 7)
	fields := map[string]string{}
	if req.RangeStart != "" {
		ts, err := parseDateField(req.RangeStart)
		if err != nil {
			fields["range_start"] = err.Error()
		} else {
			rangeStart = ts
		}
	}
	if req.RangeEnd != "" {
		ts, err := parseDateField(req.RangeEnd)
		if err != nil {
			fields["range_end"] = err.Error()
		} else {
			rangeEnd = ts
		}
	}
	if len(fields) == 0 && !rangeEnd.After(rangeStart) {
		fields["range_end"] = "range_end must be after range_start"
	}
	if len(fields) > 0 {
		writeFieldErrors(w, fields)
		return
	}

	members, err := s.cfg.Workspaces.ListMembers(r.Context(), workspace.WorkspaceID)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	session, turns, err := s.loadOrCreateSession(r, workspaceID, user, req.SessionID)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	metrics := telemetry.GetMetrics()
	metrics.GenerationCallsTotal.Add(r.Context(), 1)
	started := time.Now()

	result, err := s.cfg.Orchestrator.Generate(r.Context(), members, turns, req.CustomInstructions, rangeStart, rangeEnd)
	metrics.GenerationDuration.Record(r.Context(), float64(time.Since(started).Milliseconds()))
	if err != nil {
		metrics.GenerationErrorsTotal.Add(r.Context(), 1)
		writeDomainError(r.Context(), w, err)
		return
	}

	posts, err := s.postsFromDrafts(session, user, workspaceID, result.Drafts)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	if err := s.cfg.Posts.CreateBatch(r.Context(), posts); err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	metrics.PostsCreatedTotal.Add(r.Context(), int64(len(posts)))

	s.recordTurn(r, session.SessionID, result)

	zerolog.Ctx(r.Context()).Info().
		Str("workspace_id", workspaceID.String()).
		Str("session_id", session.SessionID.String()).
		Int("posts", len(posts)).
		Msg("generated posts")

	writeJSON(w, http.StatusCreated, generatePostsResponse{
		SessionID: session.SessionID,
		Posts:     newPostViews(posts),
	})
}

// postsFromDrafts converts validated drafts to post records.
func (s *Server) postsFromDrafts(session *models.GenerationSession, creator *models.User, workspaceID uuid.UUID, drafts []genai.Draft) ([]*models.Post, error) {
	posts := make([]*models.Post, 0, len(drafts))
	for _, draft := range drafts {
		scheduleTime, err := draft.ScheduleTime()
		if err != nil {
			return nil, err
		}
		assigneeID, err := uuid.Parse(draft.AssigneeID)
		if err != nil {
			return nil, fmt.Errorf("%w: bad assignee id %q", genai.ErrSchemaViolation, draft.AssigneeID)
		}
		postID, err := uuid.NewV7()
		if err != nil {
			return nil, err
		}

		sessionID := session.SessionID
		posts = append(posts, &models.Post{
			PostID:       postID,
			WorkspaceID:  workspaceID,
			CreatorID:    creator.UserID,
			AssigneeID:   &assigneeID,
			SessionID:    &sessionID,
			Description:  draft.Description,
			PostText:     draft.Caption,
			ImagePrompt:  draft.ImagePrompt,
			VideoPrompt:  draft.VideoPrompt,
			PostType:     models.PostTypeImage,
			ScheduleTime: scheduleTime,
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		})
	}
	return posts, nil
}

type regenerateRequest struct {
	Prompt    string     `json:"prompt"`
	SessionID *uuid.UUID `json:"session_id"`
}

func (s *Server) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	workspaceID, ok := pathUUID(w, r, "workspace_id")
	if !ok {
		return
	}
	postID, ok := pathUUID(w, r, "post_id")
	if !ok {
		return
	}
	workspace, ok := s.requireWorkspaceMember(w, r, workspaceID, user)
	if !ok {
		return
	}
	post, ok := s.workspacePost(w, r, workspaceID, postID)
	if !ok {
		return
	}

	var req regenerateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Prompt == "" {
		writeFieldErrors(w, map[string]string{"prompt": "prompt is required"})
		return
	}

	members, err := s.cfg.Workspaces.ListMembers(r.Context(), workspace.WorkspaceID)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	var turns []*models.SessionTurn
	if req.SessionID != nil {
		session, err := s.cfg.Sessions.Get(r.Context(), *req.SessionID)
		if err != nil {
			writeDomainError(r.Context(), w, err)
			return
		}
		if session.WorkspaceID != workspaceID {
			writeDomainError(r.Context(), w, store.ErrSessionNotFound)
			return
		}
		turns, err = s.cfg.Sessions.ListTurns(r.Context(), session.SessionID)
		if err != nil {
			writeDomainError(r.Context(), w, err)
			return
		}
	}

	metrics := telemetry.GetMetrics()
	metrics.GenerationCallsTotal.Add(r.Context(), 1)
	started := time.Now()

	result, err := s.cfg.Orchestrator.Regenerate(r.Context(), members, turns, req.Prompt, post)
	metrics.GenerationDuration.Record(r.Context(), float64(time.Since(started).Milliseconds()))
	if err != nil {
		metrics.GenerationErrorsTotal.Add(r.Context(), 1)
		writeDomainError(r.Context(), w, err)
		return
	}

	draft := result.Drafts[0]
	scheduleTime, err := draft.ScheduleTime()
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	assigneeID, err := uuid.Parse(draft.AssigneeID)
	if err != nil {
		writeDomainError(r.Context(), w, fmt.Errorf("%w: bad assignee id %q", genai.ErrSchemaViolation, draft.AssigneeID))
		return
	}

	// The post keeps its identity; only the generated content changes.
	post.Description = draft.Description
	post.PostText = draft.Caption
	post.ImagePrompt = draft.ImagePrompt
	post.VideoPrompt = draft.VideoPrompt
	post.ScheduleTime = scheduleTime
	post.AssigneeID = &assigneeID
	post.UpdatedAt = time.Now()

	if err := s.cfg.Posts.Update(r.Context(), post); err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	if req.SessionID != nil {
		s.recordTurn(r, *req.SessionID, result)
	}

	writeJSON(w, http.StatusOK, newPostView(post))
}

func (s *Server) handleGenerateImage(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	workspaceID, ok := pathUUID(w, r, "workspace_id")
	if !ok {
		return
	}
	postID, ok := pathUUID(w, r, "post_id")
	if !ok {
		return
	}
	if _, ok := s.requireWorkspaceMember(w, r, workspaceID, user); !ok {
		return
	}
	post, ok := s.workspacePost(w, r, workspaceID, postID)
	if !ok {
		return
	}

	if s.cfg.Images == nil || s.cfg.Media == nil {
		writeError(w, http.StatusBadGateway, "image generation is not configured")
		return
	}
	if post.ImagePrompt == "" {
		writeFieldErrors(w, map[string]string{"image_prompt": "post has no image prompt"})
		return
	}

	data, err := s.cfg.Images.Generate(r.Context(), post.ImagePrompt)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	path, err := s.cfg.Media.SaveImage(post.PostID, data)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	post.ImagePath = path
	post.UpdatedAt = time.Now()
	if err := s.cfg.Posts.Update(r.Context(), post); err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	telemetry.GetMetrics().ImagesGeneratedTotal.Add(r.Context(), 1)

	writeJSON(w, http.StatusOK, newPostView(post))
}
