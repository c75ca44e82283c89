package genai

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/chroniclehq/chronicle/internal/models"
)

// fakeTextClient records the last request and plays back a canned reply.
type fakeTextClient struct {
	lastRequest ChatRequest
	reply       string
	err         error
}

func (f *fakeTextClient) Send(ctx context.Context, req ChatRequest) (string, error) {
	f.lastRequest = req
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func testMembers(t *testing.T) []*models.Member {
	t.Helper()
	designerID, err := uuid.NewV7()
	require.NoError(t, err)
	writerID, err := uuid.NewV7()
	require.NoError(t, err)
	return []*models.Member{
		{UserID: designerID, Username: "dana", Email: "dana@example.com", Role: "designer"},
		{UserID: writerID, Username: "wes", Email: "wes@example.com", Role: "copywriter"},
	}
}

func draftsReply(t *testing.T, assignees ...uuid.UUID) string {
	t.Helper()
	var drafts []Draft
	for i, id := range assignees {
		drafts = append(drafts, Draft{
			Description: "launch teaser",
			Caption:     "Coming soon.",
			PostTime:    time.Now().Add(time.Duration(i+1) * 24 * time.Hour).Format(time.RFC3339),
			ImagePrompt: "a rocket on a launchpad",
			VideoPrompt: "a rocket lifting off",
			AssigneeID:  id.String(),
		})
	}
	reply, err := json.Marshal(map[string]any{"response": drafts})
	require.NoError(t, err)
	return string(reply)
}

func TestOrchestrator_Generate(t *testing.T) {
	ctx := context.Background()
	rangeStart := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	rangeEnd := rangeStart.AddDate(0, 0, 7)

	t.Run("system instruction embeds the roster and directives", func(t *testing.T) {
		members := testMembers(t)
		client := &fakeTextClient{reply: draftsReply(t, members[0].UserID)}
		o := NewOrchestrator(client)

		_, err := o.Generate(ctx, members, nil, "", rangeStart, rangeEnd)
		require.NoError(t, err)

		instruction := client.lastRequest.SystemInstruction
		require.Contains(t, instruction, members[0].UserID.String())
		require.Contains(t, instruction, "dana@example.com")
		require.Contains(t, instruction, "designer")
		require.Contains(t, instruction, "select assignee for each post based on their roles")
		require.Contains(t, instruction, "at least 3 posts")
	})

	t.Run("prompt carries instructions and the date range", func(t *testing.T) {
		members := testMembers(t)
		client := &fakeTextClient{reply: draftsReply(t, members[0].UserID)}
		o := NewOrchestrator(client)

		result, err := o.Generate(ctx, members, nil, "focus on the product launch", rangeStart, rangeEnd)
		require.NoError(t, err)

		require.Equal(t, "focus on the product launch\nGenerate social media content for date between 2026-03-01 and 2026-03-08", result.Prompt)
		require.Equal(t, result.Prompt, client.lastRequest.Prompt)
	})

	t.Run("history replays as alternating user/model turns", func(t *testing.T) {
		members := testMembers(t)
		client := &fakeTextClient{reply: draftsReply(t, members[0].UserID)}
		o := NewOrchestrator(client)

		turns := []*models.SessionTurn{
			{Prompt: "first prompt", Response: "first response"},
			{Prompt: "second prompt", Response: "second response"},
		}

		_, err := o.Generate(ctx, members, turns, "", rangeStart, rangeEnd)
		require.NoError(t, err)

		history := client.lastRequest.History
		require.Len(t, history, 4)
		require.Equal(t, Turn{Role: RoleUser, Text: "first prompt"}, history[0])
		require.Equal(t, Turn{Role: RoleModel, Text: "first response"}, history[1])
		require.Equal(t, Turn{Role: RoleUser, Text: "second prompt"}, history[2])
		require.Equal(t, Turn{Role: RoleModel, Text: "second response"}, history[3])
	})

	t.Run("draft count matches the response array", func(t *testing.T) {
		members := testMembers(t)
		client := &fakeTextClient{reply: draftsReply(t, members[0].UserID, members[1].UserID, members[0].UserID)}
		o := NewOrchestrator(client)

		result, err := o.Generate(ctx, members, nil, "", rangeStart, rangeEnd)
		require.NoError(t, err)
		require.Len(t, result.Drafts, 3)
	})

	t.Run("assignee outside the roster is a schema violation", func(t *testing.T) {
		members := testMembers(t)
		stranger, err := uuid.NewV7()
		require.NoError(t, err)
		client := &fakeTextClient{reply: draftsReply(t, stranger)}
		o := NewOrchestrator(client)

		_, err = o.Generate(ctx, members, nil, "", rangeStart, rangeEnd)
		require.ErrorIs(t, err, ErrSchemaViolation)
	})

	t.Run("non-JSON reply is a schema violation", func(t *testing.T) {
		members := testMembers(t)
		client := &fakeTextClient{reply: "sorry, I cannot do that"}
		o := NewOrchestrator(client)

		_, err := o.Generate(ctx, members, nil, "", rangeStart, rangeEnd)
		require.ErrorIs(t, err, ErrSchemaViolation)
	})

	t.Run("client error propagates without drafts", func(t *testing.T) {
		members := testMembers(t)
		client := &fakeTextClient{err: ErrUnavailable}
		o := NewOrchestrator(client)

		_, err := o.Generate(ctx, members, nil, "", rangeStart, rangeEnd)
		require.ErrorIs(t, err, ErrUnavailable)
	})
}

func TestOrchestrator_Regenerate(t *testing.T) {
	ctx := context.Background()

	newPost := func(t *testing.T, assignee uuid.UUID) *models.Post {
		postID, err := uuid.NewV7()
		require.NoError(t, err)
		return &models.Post{
			PostID:       postID,
			Description:  "old description",
			PostText:     "old caption",
			ImagePrompt:  "old image prompt",
			VideoPrompt:  "old video prompt",
			ScheduleTime: time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC),
			AssigneeID:   &assignee,
		}
	}

	t.Run("system instruction embeds the current post fields", func(t *testing.T) {
		members := testMembers(t)
		client := &fakeTextClient{reply: draftsReply(t, members[1].UserID)}
		o := NewOrchestrator(client)

		post := newPost(t, members[0].UserID)
		result, err := o.Regenerate(ctx, members, nil, "make it punchier", post)
		require.NoError(t, err)

		instruction := client.lastRequest.SystemInstruction
		require.Contains(t, instruction, "a single post in replacement")
		require.Contains(t, instruction, "old description")
		require.Contains(t, instruction, "old caption")
		require.Contains(t, instruction, members[0].UserID.String())

		require.Equal(t, "make it punchier", result.Prompt)
		require.Len(t, result.Drafts, 1)
	})

	t.Run("more than one draft is a schema violation", func(t *testing.T) {
		members := testMembers(t)
		client := &fakeTextClient{reply: draftsReply(t, members[0].UserID, members[1].UserID)}
		o := NewOrchestrator(client)

		post := newPost(t, members[0].UserID)
		_, err := o.Regenerate(ctx, members, nil, "make it punchier", post)
		require.ErrorIs(t, err, ErrSchemaViolation)
	})
}

func TestParseDrafts(t *testing.T) {
	t.Run("missing required field rejects the whole reply", func(t *testing.T) {
		_, err := ParseDrafts(`{"response":[{"descr":"d","cap":"c","post_time":"2026-03-04","img_prompt":"i","vid_prompt":"v"}]}`)
		require.ErrorIs(t, err, ErrSchemaViolation)
	})

	t.Run("missing response array is rejected", func(t *testing.T) {
		_, err := ParseDrafts(`{"posts":[]}`)
		require.ErrorIs(t, err, ErrSchemaViolation)
	})

	t.Run("empty response array is allowed", func(t *testing.T) {
		drafts, err := ParseDrafts(`{"response":[]}`)
		require.NoError(t, err)
		require.Empty(t, drafts)
	})
}

func TestDraft_ScheduleTime(t *testing.T) {
	t.Run("accepts RFC 3339", func(t *testing.T) {
		d := Draft{PostTime: "2026-03-04T12:00:00Z"}
		ts, err := d.ScheduleTime()
		require.NoError(t, err)
		require.Equal(t, 2026, ts.Year())
	})

	t.Run("accepts zone-less timestamps", func(t *testing.T) {
		d := Draft{PostTime: "2026-03-04T12:00:00"}
		_, err := d.ScheduleTime()
		require.NoError(t, err)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		d := Draft{PostTime: "next tuesday"}
		_, err := d.ScheduleTime()
		require.ErrorIs(t, err, ErrSchemaViolation)
	})
}
