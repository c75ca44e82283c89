package httpapi

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/chroniclehq/chronicle/internal/genai"
)

func TestGeneratePosts(t *testing.T) {
	t.Run("persists one post per draft and returns the session", func(t *testing.T) {
		h := newHarness(t)
		user, token := h.register(t, "ana", "ana@example.com", "designer")
		workspace := h.createWorkspace(t, token, "Team")

		h.text.replies = []string{draftsJSON(t, user.UserID, user.UserID, user.UserID)}

		var resp generatePostsResponse
		rec := h.do(t, http.MethodPost, "/workspace/"+workspace.WorkspaceID.String()+"/generate-posts", token, map[string]any{
			"custom_instructions": "focus on the launch",
		}, &resp)
		require.Equal(t, http.StatusCreated, rec.Code)

		require.NotEqual(t, uuid.Nil, resp.SessionID)
		require.Len(t, resp.Posts, 3)
		for _, post := range resp.Posts {
			require.Equal(t, workspace.WorkspaceID, post.WorkspaceID)
			require.Equal(t, user.UserID, post.CreatorID)
			require.NotNil(t, post.SessionID)
			require.Equal(t, resp.SessionID, *post.SessionID)
			require.NotNil(t, post.AssigneeID)
			require.Equal(t, user.UserID, *post.AssigneeID)
		}

		var posts []postView
		rec = h.do(t, http.MethodGet, "/workspace/"+workspace.WorkspaceID.String()+"/posts/", token, nil, &posts)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, posts, 3)
	})

	t.Run("follow-up call on the same session replays the first exchange", func(t *testing.T) {
		h := newHarness(t)
		user, token := h.register(t, "ana", "ana@example.com", "designer")
		workspace := h.createWorkspace(t, token, "Team")
		path := "/workspace/" + workspace.WorkspaceID.String() + "/generate-posts"

		h.text.replies = []string{
			draftsJSON(t, user.UserID, user.UserID, user.UserID),
			draftsJSON(t, user.UserID, user.UserID, user.UserID),
		}

		var first generatePostsResponse
		rec := h.do(t, http.MethodPost, path, token, map[string]any{
			"custom_instructions": "focus on the launch",
		}, &first)
		require.Equal(t, http.StatusCreated, rec.Code)

		var second generatePostsResponse
		rec = h.do(t, http.MethodPost, path, token, map[string]any{
			"custom_instructions": "more casual tone",
			"session_id":          first.SessionID.String(),
		}, &second)
		require.Equal(t, http.StatusCreated, rec.Code)
		require.Equal(t, first.SessionID, second.SessionID)

		// First call starts fresh; second call replays the recorded turn.
		require.Len(t, h.text.calls, 2)
		require.Empty(t, h.text.calls[0].History)
		require.Len(t, h.text.calls[1].History, 2)
		require.Equal(t, genai.RoleUser, h.text.calls[1].History[0].Role)
		require.Equal(t, h.text.calls[0].Prompt, h.text.calls[1].History[0].Text)
		require.Equal(t, h.text.replies[0], h.text.calls[1].History[1].Text)
	})

	t.Run("schema-violating reply is 502 and persists nothing", func(t *testing.T) {
		h := newHarness(t)
		_, token := h.register(t, "ana", "ana@example.com", "")
		workspace := h.createWorkspace(t, token, "Team")

		h.text.replies = []string{"not json at all"}

		rec := h.do(t, http.MethodPost, "/workspace/"+workspace.WorkspaceID.String()+"/generate-posts", token, map[string]any{}, nil)
		require.Equal(t, http.StatusBadGateway, rec.Code)

		var posts []postView
		rec = h.do(t, http.MethodGet, "/workspace/"+workspace.WorkspaceID.String()+"/posts/", token, nil, &posts)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Empty(t, posts)
	})

	t.Run("unavailable service is 502", func(t *testing.T) {
		h := newHarness(t)
		_, token := h.register(t, "ana", "ana@example.com", "")
		workspace := h.createWorkspace(t, token, "Team")

		h.text.errs = []error{genai.ErrUnavailable}

		rec := h.do(t, http.MethodPost, "/workspace/"+workspace.WorkspaceID.String()+"/generate-posts", token, map[string]any{}, nil)
		require.Equal(t, http.StatusBadGateway, rec.Code)
	})

	t.Run("bad range is a field error", func(t *testing.T) {
		h := newHarness(t)
		_, token := h.register(t, "ana", "ana@example.com", "")
		workspace := h.createWorkspace(t, token, "Team")

		rec := h.do(t, http.MethodPost, "/workspace/"+workspace.WorkspaceID.String()+"/generate-posts", token, map[string]any{
			"range_start": "2026-03-08",
			"range_end":   "2026-03-01",
		}, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Contains(t, decodeErrorBody(t, rec).Fields, "range_end")
	})

	t.Run("session from another workspace is 404", func(t *testing.T) {
		h := newHarness(t)
		user, token := h.register(t, "ana", "ana@example.com", "")
		workspaceA := h.createWorkspace(t, token, "A")
		workspaceB := h.createWorkspace(t, token, "B")

		h.text.replies = []string{draftsJSON(t, user.UserID)}

		var first generatePostsResponse
		rec := h.do(t, http.MethodPost, "/workspace/"+workspaceA.WorkspaceID.String()+"/generate-posts", token, map[string]any{}, &first)
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = h.do(t, http.MethodPost, "/workspace/"+workspaceB.WorkspaceID.String()+"/generate-posts", token, map[string]any{
			"session_id": first.SessionID.String(),
		}, nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestRegenerate(t *testing.T) {
	t.Run("overwrites the post in place", func(t *testing.T) {
		h := newHarness(t)
		user, token := h.register(t, "ana", "ana@example.com", "designer")
		workspace := h.createWorkspace(t, token, "Team")
		post := h.createPost(t, token, workspace, "the launch")

		h.text.replies = []string{draftsJSON(t, user.UserID)}

		var updated postView
		rec := h.do(t, http.MethodPost,
			"/workspace/"+workspace.WorkspaceID.String()+"/posts/"+post.PostID.String()+"/regenerate", token,
			map[string]string{"prompt": "make it punchier"}, &updated)
		require.Equal(t, http.StatusOK, rec.Code)

		require.Equal(t, post.PostID, updated.PostID)
		require.Equal(t, "caption 0", updated.PostText)
		require.Equal(t, "draft 0", updated.Description)
		require.NotEqual(t, post.PostText, updated.PostText)

		// No new post was created.
		var posts []postView
		rec = h.do(t, http.MethodGet, "/workspace/"+workspace.WorkspaceID.String()+"/posts/", token, nil, &posts)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, posts, 1)
	})

	t.Run("prompt is required", func(t *testing.T) {
		h := newHarness(t)
		_, token := h.register(t, "ana", "ana@example.com", "")
		workspace := h.createWorkspace(t, token, "Team")
		post := h.createPost(t, token, workspace, "the launch")

		rec := h.do(t, http.MethodPost,
			"/workspace/"+workspace.WorkspaceID.String()+"/posts/"+post.PostID.String()+"/regenerate", token,
			map[string]string{}, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Contains(t, decodeErrorBody(t, rec).Fields, "prompt")
	})

	t.Run("multi-draft reply is 502 and leaves the post alone", func(t *testing.T) {
		h := newHarness(t)
		user, token := h.register(t, "ana", "ana@example.com", "")
		workspace := h.createWorkspace(t, token, "Team")
		post := h.createPost(t, token, workspace, "the launch")

		h.text.replies = []string{draftsJSON(t, user.UserID, user.UserID)}

		rec := h.do(t, http.MethodPost,
			"/workspace/"+workspace.WorkspaceID.String()+"/posts/"+post.PostID.String()+"/regenerate", token,
			map[string]string{"prompt": "make it punchier"}, nil)
		require.Equal(t, http.StatusBadGateway, rec.Code)

		var current postView
		rec = h.do(t, http.MethodGet, "/workspace/"+workspace.WorkspaceID.String()+"/posts/"+post.PostID.String(), token, nil, &current)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, post.PostText, current.PostText)
	})
}

func TestGenerateImage(t *testing.T) {
	t.Run("stores the asset and records its path", func(t *testing.T) {
		h := newHarness(t)
		_, token := h.register(t, "ana", "ana@example.com", "")
		workspace := h.createWorkspace(t, token, "Team")
		post := h.createPost(t, token, workspace, "the launch")

		var updated postView
		rec := h.do(t, http.MethodPost,
			"/workspace/"+workspace.WorkspaceID.String()+"/posts/"+post.PostID.String()+"/generate-image", token,
			map[string]string{}, &updated)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, updated.ImagePath, post.PostID.String()+".png")
	})

	t.Run("post without an image prompt is rejected", func(t *testing.T) {
		h := newHarness(t)
		_, token := h.register(t, "ana", "ana@example.com", "")
		workspace := h.createWorkspace(t, token, "Team")

		var post postView
		rec := h.do(t, http.MethodPost, "/workspace/"+workspace.WorkspaceID.String()+"/posts/", token, map[string]any{
			"post_text":     "no prompt",
			"schedule_time": "2026-09-01T10:00:00Z",
		}, &post)
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = h.do(t, http.MethodPost,
			"/workspace/"+workspace.WorkspaceID.String()+"/posts/"+post.PostID.String()+"/generate-image", token,
			map[string]string{}, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("image service failure is 502", func(t *testing.T) {
		h := newHarness(t)
		_, token := h.register(t, "ana", "ana@example.com", "")
		workspace := h.createWorkspace(t, token, "Team")
		post := h.createPost(t, token, workspace, "the launch")

		h.images.err = genai.ErrUnavailable

		rec := h.do(t, http.MethodPost,
			"/workspace/"+workspace.WorkspaceID.String()+"/posts/"+post.PostID.String()+"/generate-image", token,
			map[string]string{}, nil)
		require.Equal(t, http.StatusBadGateway, rec.Code)
	})
}
