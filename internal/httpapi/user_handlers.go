package httpapi

import (
	"errors"
	"net/http"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/chroniclehq/chronicle/internal/auth"
	"github.com/chroniclehq/chronicle/internal/models"
	"github.com/chroniclehq/chronicle/internal/store"
)

const defaultWorkspaceName = "Default Workspace"

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	User  userView `json:"user"`
	Token string   `json:"token"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	fields := map[string]string{}
	if req.Username == "" {
		fields["username"] = "username is required"
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		fields["email"] = "a valid email is required"
	}
	if len(req.Password) < 8 {
		fields["password"] = "password must be at least 8 characters"
	}
	if len(fields) > 0 {
		writeFieldErrors(w, fields)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	userID, err := uuid.NewV7()
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	user := &models.User{
		UserID:       userID,
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := s.cfg.Users.Create(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			writeFieldErrors(w, map[string]string{"email": store.ErrEmailTaken.Error()})
			return
		}
		writeDomainError(r.Context(), w, err)
		return
	}

	// Every account starts with a workspace so first-run clients have
	// somewhere to put content.
	workspace, err := s.createWorkspace(r, defaultWorkspaceName, "", "", user)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	token, err := s.cfg.Issuer.Issue(user.UserID)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	zerolog.Ctx(r.Context()).Info().
		Str("user_id", user.UserID.String()).
		Msg("user registered")

	writeJSON(w, http.StatusCreated, authResponse{
		User:  newUserView(user, []*models.Workspace{workspace}),
		Token: token,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := s.cfg.Users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			writeFieldErrors(w, map[string]string{"email": "unknown email"})
			return
		}
		writeDomainError(r.Context(), w, err)
		return
	}

	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		writeFieldErrors(w, map[string]string{"password": "wrong password"})
		return
	}

	workspaces, err := s.cfg.Workspaces.ListByMember(r.Context(), user.UserID)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	token, err := s.cfg.Issuer.Issue(user.UserID)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		User:  newUserView(user, workspaces),
		Token: token,
	})
}

type userUpdateRequest struct {
	Username    *string `json:"username"`
	Role        *string `json:"role"`
	DeviceToken *string `json:"device_token"`
}

func (s *Server) handleUserUpdate(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	var req userUpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if req.Username != nil {
		if *req.Username == "" {
			writeFieldErrors(w, map[string]string{"username": "username cannot be empty"})
			return
		}
		user.Username = *req.Username
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.DeviceToken != nil {
		user.DeviceToken = *req.DeviceToken
	}
	user.UpdatedAt = time.Now()

	if err := s.cfg.Users.Update(r.Context(), user); err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	workspaces, err := s.cfg.Workspaces.ListByMember(r.Context(), user.UserID)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, newUserView(user, workspaces))
}
