package httpapi

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/chroniclehq/chronicle/internal/auth"
	"github.com/chroniclehq/chronicle/internal/models"
	"github.com/chroniclehq/chronicle/internal/telemetry"
)

type postCreateRequest struct {
	Description  string     `json:"description"`
	PostText     string     `json:"post_text"`
	ImagePrompt  string     `json:"image_prompt"`
	VideoPrompt  string     `json:"video_prompt"`
	PostType     string     `json:"post_type"`
	ScheduleTime time.Time  `json:"schedule_time"`
	AssigneeID   *uuid.UUID `json:"assignee_id"`
}

func validPostType(postType string) bool {
	return postType == models.PostTypeImage || postType == models.PostTypeVideo
}

// assigneeIsMember checks that an assignee (when set) belongs to the
// workspace roster.
func (s *Server) assigneeIsMember(r *http.Request, workspaceID uuid.UUID, assigneeID *uuid.UUID) (bool, error) {
	if assigneeID == nil {
		return true, nil
	}
	return s.cfg.Workspaces.IsMember(r.Context(), workspaceID, *assigneeID)
}

func (s *Server) handlePostCreate(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	workspaceID, ok := pathUUID(w, r, "workspace_id")
	if !ok {
		return
	}
	if _, ok := s.requireWorkspaceMember(w, r, workspaceID, user); !ok {
		return
	}

	var req postCreateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	fields := map[string]string{}
	if req.PostText == "" {
		fields["post_text"] = "post_text is required"
	}
	if req.ScheduleTime.IsZero() {
		fields["schedule_time"] = "schedule_time is required"
	}
	if req.PostType == "" {
		req.PostType = models.PostTypeImage
	} else if !validPostType(req.PostType) {
		fields["post_type"] = `post_type must be "image" or "video"`
	}
	if len(fields) > 0 {
		writeFieldErrors(w, fields)
		return
	}

	member, err := s.assigneeIsMember(r, workspaceID, req.AssigneeID)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	if !member {
		writeFieldErrors(w, map[string]string{"assignee_id": "assignee is not a workspace member"})
		return
	}

	postID, err := uuid.NewV7()
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	post := &models.Post{
		PostID:       postID,
		WorkspaceID:  workspaceID,
		CreatorID:    user.UserID,
		AssigneeID:   req.AssigneeID,
		Description:  req.Description,
		PostText:     req.PostText,
		ImagePrompt:  req.ImagePrompt,
		VideoPrompt:  req.VideoPrompt,
		PostType:     req.PostType,
		ScheduleTime: req.ScheduleTime,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := s.cfg.Posts.Create(r.Context(), post); err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	telemetry.GetMetrics().PostsCreatedTotal.Add(r.Context(), 1)

	writeJSON(w, http.StatusCreated, newPostView(post))
}

func (s *Server) handlePostList(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	workspaceID, ok := pathUUID(w, r, "workspace_id")
	if !ok {
		return
	}
	if _, ok := s.requireWorkspaceMember(w, r, workspaceID, user); !ok {
		return
	}

	posts, err := s.cfg.Posts.ListByWorkspace(r.Context(), workspaceID)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, newPostViews(posts))
}

func (s *Server) handlePostGet(w http.ResponseWriter, r *http.Request) {
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

	writeJSON(w, http.StatusOK, newPostView(post))
}

type postUpdateRequest struct {
	Description  *string    `json:"description"`
	PostText     *string    `json:"post_text"`
	ImagePrompt  *string    `json:"image_prompt"`
	VideoPrompt  *string    `json:"video_prompt"`
	PostType     *string    `json:"post_type"`
	ScheduleTime *time.Time `json:"schedule_time"`
	AssigneeID   *uuid.UUID `json:"assignee_id"`
	Completed    *bool      `json:"completed"`
}

func (s *Server) handlePostUpdate(w http.ResponseWriter, r *http.Request) {
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

	var req postUpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if req.PostType != nil && !validPostType(*req.PostType) {
		writeFieldErrors(w, map[string]string{"post_type": `post_type must be "image" or "video"`})
		return
	}

	member, err := s.assigneeIsMember(r, workspaceID, req.AssigneeID)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	if !member {
		writeFieldErrors(w, map[string]string{"assignee_id": "assignee is not a workspace member"})
		return
	}

	if req.Description != nil {
		post.Description = *req.Description
	}
	if req.PostText != nil {
		post.PostText = *req.PostText
	}
	if req.ImagePrompt != nil {
		post.ImagePrompt = *req.ImagePrompt
	}
	if req.VideoPrompt != nil {
		post.VideoPrompt = *req.VideoPrompt
	}
	if req.PostType != nil {
		post.PostType = *req.PostType
	}
	if req.ScheduleTime != nil {
		post.ScheduleTime = *req.ScheduleTime
	}
	if req.AssigneeID != nil {
		post.AssigneeID = req.AssigneeID
	}
	if req.Completed != nil {
		post.Completed = *req.Completed
	}
	post.UpdatedAt = time.Now()

	if err := s.cfg.Posts.Update(r.Context(), post); err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, newPostView(post))
}

func (s *Server) handlePostDelete(w http.ResponseWriter, r *http.Request) {
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
	if _, ok := s.workspacePost(w, r, workspaceID, postID); !ok {
		return
	}

	if err := s.cfg.Posts.Delete(r.Context(), postID); err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	telemetry.GetMetrics().PostsDeletedTotal.Add(r.Context(), 1)

	w.WriteHeader(http.StatusNoContent)
}
