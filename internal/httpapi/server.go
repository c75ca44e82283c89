package httpapi

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/cors"

	"github.com/chroniclehq/chronicle/internal/auth"
	"github.com/chroniclehq/chronicle/internal/genai"
	chttp "github.com/chroniclehq/chronicle/internal/http"
	"github.com/chroniclehq/chronicle/internal/media"
	"github.com/chroniclehq/chronicle/internal/models"
	"github.com/chroniclehq/chronicle/internal/store"
)

// ImageGenerator produces one image for a prompt.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) ([]byte, error)
}

// Config wires the server's collaborators.
type Config struct {
	Users      store.UserStore
	Workspaces store.WorkspaceStore
	Posts      store.PostStore
	Reminders  store.ReminderStore
	Sessions   store.SessionStore

	Issuer       *auth.Issuer
	Orchestrator *genai.Orchestrator

	// Images and Media are optional; generate-image returns 502 when the
	// image service is not configured.
	Images ImageGenerator
	Media  *media.Store

	// AllowedOrigins for CORS. Empty means allow all.
	AllowedOrigins []string
}

// Server exposes the REST API.
type Server struct {
	cfg Config
}

// NewServer creates the REST server.
func NewServer(cfg Config) *Server {
	return &Server{cfg: cfg}
}

// Handler builds the routing table. Register and login are open; every
// other route sits behind the bearer-token middleware.
func (s *Server) Handler() http.Handler {
	protected := http.NewServeMux()

	protected.HandleFunc("PUT /user/update", s.handleUserUpdate)

	protected.HandleFunc("GET /workspace/{$}", s.handleWorkspaceList)
	protected.HandleFunc("POST /workspace/{$}", s.handleWorkspaceCreate)
	protected.HandleFunc("GET /workspace/{workspace_id}", s.handleWorkspaceGet)
	protected.HandleFunc("PUT /workspace/{workspace_id}", s.handleWorkspaceUpdate)
	protected.HandleFunc("DELETE /workspace/{workspace_id}", s.handleWorkspaceDelete)
	protected.HandleFunc("POST /workspace/{workspace_id}/add-member", s.handleAddMember)

	protected.HandleFunc("GET /workspace/{workspace_id}/posts/{$}", s.handlePostList)
	protected.HandleFunc("POST /workspace/{workspace_id}/posts/{$}", s.handlePostCreate)
	protected.HandleFunc("GET /workspace/{workspace_id}/posts/{post_id}", s.handlePostGet)
	protected.HandleFunc("PUT /workspace/{workspace_id}/posts/{post_id}", s.handlePostUpdate)
	protected.HandleFunc("DELETE /workspace/{workspace_id}/posts/{post_id}", s.handlePostDelete)

	protected.HandleFunc("POST /workspace/{workspace_id}/generate-posts", s.handleGeneratePosts)
	protected.HandleFunc("POST /workspace/{workspace_id}/posts/{post_id}/regenerate", s.handleRegenerate)
	protected.HandleFunc("POST /workspace/{workspace_id}/posts/{post_id}/generate-image", s.handleGenerateImage)

	protected.HandleFunc("GET /workspace/{workspace_id}/posts/{post_id}/reminders/{$}", s.handleReminderList)
	protected.HandleFunc("POST /workspace/{workspace_id}/posts/{post_id}/reminders/{$}", s.handleReminderCreate)
	protected.HandleFunc("GET /workspace/{workspace_id}/posts/{post_id}/reminders/{reminder_id}", s.handleReminderGet)
	protected.HandleFunc("PUT /workspace/{workspace_id}/posts/{post_id}/reminders/{reminder_id}", s.handleReminderUpdate)
	protected.HandleFunc("DELETE /workspace/{workspace_id}/posts/{post_id}/reminders/{reminder_id}", s.handleReminderDelete)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /user/register", s.handleRegister)
	mux.HandleFunc("POST /user/login", s.handleLogin)
	mux.Handle("/", auth.Middleware(s.cfg.Issuer, s.cfg.Users)(protected))

	handler := cors.New(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler(mux)

	return chttp.ClientIPMiddleware()(handler)
}

// pathUUID parses a UUID path segment, writing a 400 on failure.
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// requireWorkspaceMember loads the workspace and checks the caller belongs
// to it. Writes the error response itself when the check fails.
func (s *Server) requireWorkspaceMember(w http.ResponseWriter, r *http.Request, workspaceID uuid.UUID, user *models.User) (*models.Workspace, bool) {
	workspace, err := s.cfg.Workspaces.Get(r.Context(), workspaceID)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return nil, false
	}

	member, err := s.cfg.Workspaces.IsMember(r.Context(), workspaceID, user.UserID)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return nil, false
	}
	if !member {
		writeError(w, http.StatusForbidden, "not a workspace member")
		return nil, false
	}

	return workspace, true
}

// requireWorkspaceOwner is requireWorkspaceMember plus an ownership check.
func (s *Server) requireWorkspaceOwner(w http.ResponseWriter, r *http.Request, workspaceID uuid.UUID, user *models.User) (*models.Workspace, bool) {
	workspace, ok := s.requireWorkspaceMember(w, r, workspaceID, user)
	if !ok {
		return nil, false
	}
	if workspace.OwnerID != user.UserID {
		writeError(w, http.StatusForbidden, "only the workspace owner can do this")
		return nil, false
	}
	return workspace, true
}

// workspacePost loads a post and checks it belongs to the workspace from
// the URL. A post from another workspace reads as not found.
func (s *Server) workspacePost(w http.ResponseWriter, r *http.Request, workspaceID, postID uuid.UUID) (*models.Post, bool) {
	post, err := s.cfg.Posts.Get(r.Context(), postID)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return nil, false
	}
	if post.WorkspaceID != workspaceID {
		writeError(w, http.StatusNotFound, store.ErrPostNotFound.Error())
		return nil, false
	}
	return post, true
}
