package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/chroniclehq/chronicle/internal/auth"
	"github.com/chroniclehq/chronicle/internal/genai"
	"github.com/chroniclehq/chronicle/internal/media"
	"github.com/chroniclehq/chronicle/internal/store/memory"
)

// scriptedTextClient plays back queued replies in order.
type scriptedTextClient struct {
	replies []string
	errs    []error
	calls   []genai.ChatRequest
}

func (c *scriptedTextClient) Send(ctx context.Context, req genai.ChatRequest) (string, error) {
	c.calls = append(c.calls, req)
	idx := len(c.calls) - 1
	if idx < len(c.errs) && c.errs[idx] != nil {
		return "", c.errs[idx]
	}
	if idx < len(c.replies) {
		return c.replies[idx], nil
	}
	return "", fmt.Errorf("no scripted reply for call %d", idx)
}

type fakeImageGenerator struct {
	data []byte
	err  error
}

func (f *fakeImageGenerator) Generate(ctx context.Context, prompt string) ([]byte, error) {
	return f.data, f.err
}

type harness struct {
	handler http.Handler

	users      *memory.UserStore
	workspaces *memory.WorkspaceStore
	posts      *memory.PostStore
	reminders  *memory.ReminderStore
	sessions   *memory.SessionStore

	text   *scriptedTextClient
	images *fakeImageGenerator
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	issuer, err := auth.NewIssuer([]byte("0123456789abcdef0123456789abcdef"), time.Hour)
	require.NoError(t, err)

	mediaStore, err := media.NewStore(t.TempDir())
	require.NoError(t, err)

	h := &harness{
		users:     memory.NewUserStore(),
		posts:     memory.NewPostStore(),
		reminders: memory.NewReminderStore(),
		sessions:  memory.NewSessionStore(),
		text:      &scriptedTextClient{},
		images:    &fakeImageGenerator{data: []byte("png-bytes")},
	}
	h.workspaces = memory.NewWorkspaceStore(h.users)

	server := NewServer(Config{
		Users:        h.users,
		Workspaces:   h.workspaces,
		Posts:        h.posts,
		Reminders:    h.reminders,
		Sessions:     h.sessions,
		Issuer:       issuer,
		Orchestrator: genai.NewOrchestrator(h.text),
		Images:       h.images,
		Media:        mediaStore,
	})
	h.handler = server.Handler()

	return h
}

// do performs one request against the API and decodes the JSON reply into
// out (when non-nil).
func (h *harness) do(t *testing.T, method, path, token string, body any, out any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	if out != nil && rec.Code < 300 {
		require.NoError(t, json.NewDecoder(rec.Body).Decode(out))
	}

	return rec
}

// register creates an account through the API and returns its view and
// bearer token.
func (h *harness) register(t *testing.T, username, email, role string) (userView, string) {
	t.Helper()

	var resp authResponse
	rec := h.do(t, http.MethodPost, "/user/register", "", map[string]string{
		"username": username,
		"email":    email,
		"password": "sw0rdfish!",
		"role":     role,
	}, &resp)
	require.Equal(t, http.StatusCreated, rec.Code)

	return resp.User, resp.Token
}

// createWorkspace creates a workspace through the API.
func (h *harness) createWorkspace(t *testing.T, token, name string) workspaceView {
	t.Helper()

	var view workspaceView
	rec := h.do(t, http.MethodPost, "/workspace/", token, map[string]string{"name": name}, &view)
	require.Equal(t, http.StatusCreated, rec.Code)
	return view
}

// draftsJSON builds a scripted model reply with one draft per assignee.
func draftsJSON(t *testing.T, assignees ...uuid.UUID) string {
	t.Helper()

	drafts := make([]map[string]string, 0, len(assignees))
	for i, id := range assignees {
		drafts = append(drafts, map[string]string{
			"descr":       fmt.Sprintf("draft %d", i),
			"cap":         fmt.Sprintf("caption %d", i),
			"post_time":   time.Now().Add(time.Duration(i+1) * 24 * time.Hour).UTC().Format(time.RFC3339),
			"img_prompt":  "an image prompt",
			"vid_prompt":  "a video prompt",
			"assignee_id": id.String(),
		})
	}
	encoded, err := json.Marshal(map[string]any{"response": drafts})
	require.NoError(t, err)
	return string(encoded)
}

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()

	var envelope errorEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope))
	return envelope.Error
}

func TestAuthRequired(t *testing.T) {
	h := newHarness(t)

	t.Run("protected route without a token is 401", func(t *testing.T) {
		rec := h.do(t, http.MethodGet, "/workspace/", "", nil, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token is 401", func(t *testing.T) {
		rec := h.do(t, http.MethodGet, "/workspace/", "not-a-token", nil, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token passes", func(t *testing.T) {
		_, token := h.register(t, "ana", "ana@example.com", "designer")
		rec := h.do(t, http.MethodGet, "/workspace/", token, nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)
	})
}
