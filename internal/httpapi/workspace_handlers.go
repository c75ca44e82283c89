package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/chroniclehq/chronicle/internal/auth"
	"github.com/chroniclehq/chronicle/internal/models"
	"github.com/chroniclehq/chronicle/internal/store"
)

type workspaceCreateRequest struct {
	Name        string `json:"name"`
	Industry    string `json:"industry"`
	Description string `json:"description"`
}

// createWorkspace persists a workspace and enrolls the owner as its first
// member. Shared by registration and the create endpoint.
func (s *Server) createWorkspace(r *http.Request, name, industry, description string, owner *models.User) (*models.Workspace, error) {
	workspaceID, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}

	workspace := &models.Workspace{
		WorkspaceID: workspaceID,
		Name:        name,
		OwnerID:     owner.UserID,
		Industry:    industry,
		Description: description,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := s.cfg.Workspaces.Create(r.Context(), workspace); err != nil {
		return nil, err
	}
	if err := s.cfg.Workspaces.AddMember(r.Context(), workspace.WorkspaceID, owner.UserID); err != nil {
		return nil, err
	}

	return workspace, nil
}

func (s *Server) handleWorkspaceCreate(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	var req workspaceCreateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeFieldErrors(w, map[string]string{"name": "name is required"})
		return
	}

	workspace, err := s.createWorkspace(r, req.Name, req.Industry, req.Description, user)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	members, err := s.cfg.Workspaces.ListMembers(r.Context(), workspace.WorkspaceID)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusCreated, newWorkspaceView(workspace, members))
}

func (s *Server) handleWorkspaceList(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	workspaces, err := s.cfg.Workspaces.ListByMember(r.Context(), user.UserID)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	views := make([]workspaceView, 0, len(workspaces))
	for _, workspace := range workspaces {
		members, err := s.cfg.Workspaces.ListMembers(r.Context(), workspace.WorkspaceID)
		if err != nil {
			writeDomainError(r.Context(), w, err)
			return
		}
		views = append(views, newWorkspaceView(workspace, members))
	}

	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleWorkspaceGet(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	workspaceID, ok := pathUUID(w, r, "workspace_id")
	if !ok {
		return
	}
	workspace, ok := s.requireWorkspaceMember(w, r, workspaceID, user)
	if !ok {
		return
	}

	members, err := s.cfg.Workspaces.ListMembers(r.Context(), workspace.WorkspaceID)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, newWorkspaceView(workspace, members))
}

type workspaceUpdateRequest struct {
	Name        *string `json:"name"`
	Industry    *string `json:"industry"`
	Description *string `json:"description"`
}

func (s *Server) handleWorkspaceUpdate(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	workspaceID, ok := pathUUID(w, r, "workspace_id")
	if !ok {
		return
	}
	workspace, ok := s.requireWorkspaceOwner(w, r, workspaceID, user)
	if !ok {
		return
	}

	var req workspaceUpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if req.Name != nil {
		if *req.Name == "" {
			writeFieldErrors(w, map[string]string{"name": "name cannot be empty"})
			return
		}
		workspace.Name = *req.Name
	}
	if req.Industry != nil {
		workspace.Industry = *req.Industry
	}
	if req.Description != nil {
		workspace.Description = *req.Description
	}
	workspace.UpdatedAt = time.Now()

	if err := s.cfg.Workspaces.Update(r.Context(), workspace); err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	members, err := s.cfg.Workspaces.ListMembers(r.Context(), workspace.WorkspaceID)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, newWorkspaceView(workspace, members))
}

func (s *Server) handleWorkspaceDelete(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	workspaceID, ok := pathUUID(w, r, "workspace_id")
	if !ok {
		return
	}
	if _, ok := s.requireWorkspaceOwner(w, r, workspaceID, user); !ok {
		return
	}

	if err := s.cfg.Workspaces.Delete(r.Context(), workspaceID); err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type addMemberRequest struct {
	Email string `json:"email"`
}

func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	workspaceID, ok := pathUUID(w, r, "workspace_id")
	if !ok {
		return
	}
	workspace, ok := s.requireWorkspaceOwner(w, r, workspaceID, user)
	if !ok {
		return
	}

	var req addMemberRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Email == "" {
		writeFieldErrors(w, map[string]string{"email": "email is required"})
		return
	}

	newMember, err := s.cfg.Users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			writeFieldErrors(w, map[string]string{"email": "User does not exist"})
			return
		}
		writeDomainError(r.Context(), w, err)
		return
	}

	if err := s.cfg.Workspaces.AddMember(r.Context(), workspaceID, newMember.UserID); err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	members, err := s.cfg.Workspaces.ListMembers(r.Context(), workspaceID)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, newWorkspaceView(workspace, members))
}
