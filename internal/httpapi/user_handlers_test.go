package httpapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	t.Run("creates the account with a default workspace", func(t *testing.T) {
		h := newHarness(t)

		user, token := h.register(t, "ana", "ana@example.com", "designer")
		require.NotEmpty(t, token)
		require.Equal(t, "ana", user.Username)
		require.Len(t, user.Workspaces, 1)
		require.Equal(t, "Default Workspace", user.Workspaces[0].Name)
		require.Equal(t, user.UserID, user.Workspaces[0].OwnerID)

		// The default workspace contains its owner.
		var view workspaceView
		rec := h.do(t, http.MethodGet, "/workspace/"+user.Workspaces[0].WorkspaceID.String(), token, nil, &view)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, view.Members, 1)
		require.Equal(t, user.UserID, view.Members[0].UserID)
	})

	t.Run("duplicate email is a field error", func(t *testing.T) {
		h := newHarness(t)
		h.register(t, "ana", "ana@example.com", "")

		rec := h.do(t, http.MethodPost, "/user/register", "", map[string]string{
			"username": "impostor",
			"email":    "ana@example.com",
			"password": "sw0rdfish!",
		}, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Contains(t, decodeErrorBody(t, rec).Fields, "email")
	})

	t.Run("missing fields are reported together", func(t *testing.T) {
		h := newHarness(t)

		rec := h.do(t, http.MethodPost, "/user/register", "", map[string]string{
			"email":    "not-an-email",
			"password": "short",
		}, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		fields := decodeErrorBody(t, rec).Fields
		require.Contains(t, fields, "username")
		require.Contains(t, fields, "email")
		require.Contains(t, fields, "password")
	})
}

func TestLogin(t *testing.T) {
	t.Run("returns the user and a working token", func(t *testing.T) {
		h := newHarness(t)
		h.register(t, "ana", "ana@example.com", "designer")

		var resp authResponse
		rec := h.do(t, http.MethodPost, "/user/login", "", map[string]string{
			"email":    "ana@example.com",
			"password": "sw0rdfish!",
		}, &resp)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "ana", resp.User.Username)
		require.Len(t, resp.User.Workspaces, 1)

		rec = h.do(t, http.MethodGet, "/workspace/", resp.Token, nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unknown email is a field error", func(t *testing.T) {
		h := newHarness(t)

		rec := h.do(t, http.MethodPost, "/user/login", "", map[string]string{
			"email":    "ghost@example.com",
			"password": "whatever1",
		}, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Contains(t, decodeErrorBody(t, rec).Fields, "email")
	})

	t.Run("wrong password is a field error", func(t *testing.T) {
		h := newHarness(t)
		h.register(t, "ana", "ana@example.com", "")

		rec := h.do(t, http.MethodPost, "/user/login", "", map[string]string{
			"email":    "ana@example.com",
			"password": "wrong-password",
		}, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Contains(t, decodeErrorBody(t, rec).Fields, "password")
	})
}

func TestUserUpdate(t *testing.T) {
	t.Run("updates only the provided fields", func(t *testing.T) {
		h := newHarness(t)
		_, token := h.register(t, "ana", "ana@example.com", "designer")

		var view userView
		rec := h.do(t, http.MethodPut, "/user/update", token, map[string]string{
			"device_token": "device-123",
		}, &view)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "device-123", view.DeviceToken)
		require.Equal(t, "ana", view.Username)
		require.Equal(t, "designer", view.Role)
	})

	t.Run("empty username is rejected", func(t *testing.T) {
		h := newHarness(t)
		_, token := h.register(t, "ana", "ana@example.com", "")

		rec := h.do(t, http.MethodPut, "/user/update", token, map[string]string{
			"username": "",
		}, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
