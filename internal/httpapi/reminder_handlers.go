package httpapi

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/chroniclehq/chronicle/internal/auth"
	"github.com/chroniclehq/chronicle/internal/models"
	"github.com/chroniclehq/chronicle/internal/store"
)

// reminderScope bundles the path resolution shared by all reminder
// handlers: workspace membership, post-in-workspace, and for the item
// routes the reminder-belongs-to-post check.
func (s *Server) reminderScope(w http.ResponseWriter, r *http.Request, user *models.User) (*models.Post, bool) {
	workspaceID, ok := pathUUID(w, r, "workspace_id")
	if !ok {
		return nil, false
	}
	postID, ok := pathUUID(w, r, "post_id")
	if !ok {
		return nil, false
	}
	if _, ok := s.requireWorkspaceMember(w, r, workspaceID, user); !ok {
		return nil, false
	}
	return s.workspacePost(w, r, workspaceID, postID)
}

func (s *Server) postReminder(w http.ResponseWriter, r *http.Request, post *models.Post) (*models.Reminder, bool) {
	reminderID, ok := pathUUID(w, r, "reminder_id")
	if !ok {
		return nil, false
	}
	reminder, err := s.cfg.Reminders.Get(r.Context(), reminderID)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return nil, false
	}
	if reminder.PostID != post.PostID {
		writeError(w, http.StatusNotFound, store.ErrReminderNotFound.Error())
		return nil, false
	}
	return reminder, true
}

type reminderCreateRequest struct {
	ReminderTime time.Time `json:"reminder_time"`
}

func (s *Server) handleReminderCreate(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	post, ok := s.reminderScope(w, r, user)
	if !ok {
		return
	}

	var req reminderCreateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ReminderTime.IsZero() {
		writeFieldErrors(w, map[string]string{"reminder_time": "reminder_time is required"})
		return
	}

	reminderID, err := uuid.NewV7()
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	reminder := &models.Reminder{
		ReminderID:   reminderID,
		PostID:       post.PostID,
		CreatorID:    user.UserID,
		ReminderTime: req.ReminderTime,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := s.cfg.Reminders.Create(r.Context(), reminder); err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusCreated, newReminderView(reminder))
}

func (s *Server) handleReminderList(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	post, ok := s.reminderScope(w, r, user)
	if !ok {
		return
	}

	reminders, err := s.cfg.Reminders.ListByPost(r.Context(), post.PostID)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	views := make([]reminderView, 0, len(reminders))
	for _, reminder := range reminders {
		views = append(views, newReminderView(reminder))
	}

	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleReminderGet(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	post, ok := s.reminderScope(w, r, user)
	if !ok {
		return
	}
	reminder, ok := s.postReminder(w, r, post)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, newReminderView(reminder))
}

type reminderUpdateRequest struct {
	ReminderTime *time.Time `json:"reminder_time"`
	SnoozedUntil *time.Time `json:"snoozed_until"`
}

func (s *Server) handleReminderUpdate(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	post, ok := s.reminderScope(w, r, user)
	if !ok {
		return
	}
	reminder, ok := s.postReminder(w, r, post)
	if !ok {
		return
	}
	if reminder.CreatorID != user.UserID {
		writeError(w, http.StatusForbidden, "only the reminder creator can do this")
		return
	}

	var req reminderUpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if req.ReminderTime != nil {
		reminder.ReminderTime = *req.ReminderTime
		// Rescheduling re-arms a reminder that already fired.
		reminder.Notified = false
	}
	if req.SnoozedUntil != nil {
		reminder.SnoozedUntil = req.SnoozedUntil
		reminder.Notified = false
	}
	reminder.UpdatedAt = time.Now()

	if err := s.cfg.Reminders.Update(r.Context(), reminder); err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, newReminderView(reminder))
}

func (s *Server) handleReminderDelete(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	post, ok := s.reminderScope(w, r, user)
	if !ok {
		return
	}
	reminder, ok := s.postReminder(w, r, post)
	if !ok {
		return
	}
	if reminder.CreatorID != user.UserID {
		writeError(w, http.StatusForbidden, "only the reminder creator can do this")
		return
	}

	if err := s.cfg.Reminders.Delete(r.Context(), reminder.ReminderID); err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
