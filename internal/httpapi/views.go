package httpapi

import (
	"time"

	"github.com/google/uuid"

	"github.com/chroniclehq/chronicle/internal/models"
)

// The two projections below break the user<->workspace cycle: a user view
// embeds workspace summaries without member lists, a workspace view embeds
// member summaries without workspace lists.

type workspaceSummary struct {
	WorkspaceID uuid.UUID `json:"workspace_id"`
	Name        string    `json:"name"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Industry    string    `json:"industry,omitempty"`
	Description string    `json:"description,omitempty"`
}

type memberView struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Role     string    `json:"role,omitempty"`
}

type userView struct {
	UserID      uuid.UUID          `json:"user_id"`
	Username    string             `json:"username"`
	Email       string             `json:"email"`
	Role        string             `json:"role,omitempty"`
	DeviceToken string             `json:"device_token,omitempty"`
	Workspaces  []workspaceSummary `json:"workspaces"`
}

type workspaceView struct {
	WorkspaceID uuid.UUID    `json:"workspace_id"`
	Name        string       `json:"name"`
	OwnerID     uuid.UUID    `json:"owner_id"`
	Industry    string       `json:"industry,omitempty"`
	Description string       `json:"description,omitempty"`
	Members     []memberView `json:"members"`
}

type postView struct {
	PostID      uuid.UUID  `json:"post_id"`
	WorkspaceID uuid.UUID  `json:"workspace_id"`
	CreatorID   uuid.UUID  `json:"creator_id"`
	AssigneeID  *uuid.UUID `json:"assignee_id,omitempty"`
	SessionID   *uuid.UUID `json:"session_id,omitempty"`

	Description  string    `json:"description"`
	PostText     string    `json:"post_text"`
	ImagePrompt  string    `json:"image_prompt"`
	VideoPrompt  string    `json:"video_prompt"`
	PostType     string    `json:"post_type"`
	ScheduleTime time.Time `json:"schedule_time"`

	ImagePath string `json:"image_path,omitempty"`
	VideoPath string `json:"video_path,omitempty"`
	Completed bool   `json:"completed"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type reminderView struct {
	ReminderID   uuid.UUID  `json:"reminder_id"`
	PostID       uuid.UUID  `json:"post_id"`
	CreatorID    uuid.UUID  `json:"creator_id"`
	ReminderTime time.Time  `json:"reminder_time"`
	Notified     bool       `json:"notified"`
	SnoozedUntil *time.Time `json:"snoozed_until,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func newWorkspaceSummary(workspace *models.Workspace) workspaceSummary {
	return workspaceSummary{
		WorkspaceID: workspace.WorkspaceID,
		Name:        workspace.Name,
		OwnerID:     workspace.OwnerID,
		Industry:    workspace.Industry,
		Description: workspace.Description,
	}
}

func newMemberView(member *models.Member) memberView {
	return memberView{
		UserID:   member.UserID,
		Username: member.Username,
		Email:    member.Email,
		Role:     member.Role,
	}
}

func newUserView(user *models.User, workspaces []*models.Workspace) userView {
	summaries := make([]workspaceSummary, 0, len(workspaces))
	for _, workspace := range workspaces {
		summaries = append(summaries, newWorkspaceSummary(workspace))
	}
	return userView{
		UserID:      user.UserID,
		Username:    user.Username,
		Email:       user.Email,
		Role:        user.Role,
		DeviceToken: user.DeviceToken,
		Workspaces:  summaries,
	}
}

func newWorkspaceView(workspace *models.Workspace, members []*models.Member) workspaceView {
	views := make([]memberView, 0, len(members))
	for _, member := range members {
		views = append(views, newMemberView(member))
	}
	return workspaceView{
		WorkspaceID: workspace.WorkspaceID,
		Name:        workspace.Name,
		OwnerID:     workspace.OwnerID,
		Industry:    workspace.Industry,
		Description: workspace.Description,
		Members:     views,
	}
}

func newPostView(post *models.Post) postView {
	return postView{
		PostID:       post.PostID,
		WorkspaceID:  post.WorkspaceID,
		CreatorID:    post.CreatorID,
		AssigneeID:   post.AssigneeID,
		SessionID:    post.SessionID,
		Description:  post.Description,
		PostText:     post.PostText,
		ImagePrompt:  post.ImagePrompt,
		VideoPrompt:  post.VideoPrompt,
		PostType:     post.PostType,
		ScheduleTime: post.ScheduleTime,
		ImagePath:    post.ImagePath,
		VideoPath:    post.VideoPath,
		Completed:    post.Completed,
		CreatedAt:    post.CreatedAt,
		UpdatedAt:    post.UpdatedAt,
	}
}

func newPostViews(posts []*models.Post) []postView {
	views := make([]postView, 0, len(posts))
	for _, post := range posts {
		views = append(views, newPostView(post))
	}
	return views
}

func newReminderView(reminder *models.Reminder) reminderView {
	return reminderView{
		ReminderID:   reminder.ReminderID,
		PostID:       reminder.PostID,
		CreatorID:    reminder.CreatorID,
		ReminderTime: reminder.ReminderTime,
		Notified:     reminder.Notified,
		SnoozedUntil: reminder.SnoozedUntil,
		CreatedAt:    reminder.CreatedAt,
		UpdatedAt:    reminder.UpdatedAt,
	}
}
