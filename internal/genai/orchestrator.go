package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/chroniclehq/chronicle/internal/models"
)

// Orchestrator shapes prompts for the generative-text service, replays
// session history into each call, and validates the structured reply.
type Orchestrator struct {
	client TextClient
}

// NewOrchestrator creates a generation orchestrator backed by a text client.
func NewOrchestrator(client TextClient) *Orchestrator {
	return &Orchestrator{client: client}
}

// Result carries the validated drafts plus the exact prompt sent and the
// raw reply, so the caller can persist the turn verbatim.
type Result struct {
	Drafts      []Draft
	Prompt      string
	RawResponse string
}

// rosterEntry is the member projection embedded in the system instruction.
type rosterEntry struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func encodeRoster(members []*models.Member) string {
	roster := make([]rosterEntry, 0, len(members))
	for _, m := range members {
		roster = append(roster, rosterEntry{
			ID:    m.UserID.String(),
			Email: m.Email,
			Role:  m.Role,
		})
	}
	encoded, _ := json.Marshal(roster)
	return string(encoded)
}

// replayHistory converts stored turns into the alternating user/model
// turn list sent with each call.
func replayHistory(turns []*models.SessionTurn) []Turn {
	history := make([]Turn, 0, 2*len(turns))
	for _, turn := range turns {
		history = append(history,
			Turn{Role: RoleUser, Text: turn.Prompt},
			Turn{Role: RoleModel, Text: turn.Response},
		)
	}
	return history
}

// Generate asks for a batch of post drafts for a date range. Prior session
// turns (if any) seed the conversation, so follow-up calls refine earlier
// batches instead of starting over.
func (o *Orchestrator) Generate(ctx context.Context, members []*models.Member, turns []*models.SessionTurn, instructions string, rangeStart, rangeEnd time.Time) (*Result, error) {
	var b strings.Builder
	b.WriteString("generate the content for professional social media marketing\n")
	fmt.Fprintf(&b, "users: %s\n", encodeRoster(members))
	b.WriteString("select assignee for each post based on their roles.\n")
	b.WriteString("generate multiple posts if there are multiple events, generate at least 3 posts.\n")
	b.WriteString(draftSchemaInstruction)

	var p strings.Builder
	if instructions != "" {
		p.WriteString(instructions)
		p.WriteString("\n")
	}
	fmt.Fprintf(&p, "Generate social media content for date between %s and %s",
		rangeStart.Format(time.DateOnly), rangeEnd.Format(time.DateOnly))
	prompt := p.String()

	raw, err := o.client.Send(ctx, ChatRequest{
		SystemInstruction: b.String(),
		History:           replayHistory(turns),
		Prompt:            prompt,
	})
	if err != nil {
		return nil, err
	}

	drafts, err := ParseDrafts(raw)
	if err != nil {
		return nil, err
	}

	if err := checkAssignees(drafts, members); err != nil {
		return nil, err
	}

	return &Result{Drafts: drafts, Prompt: prompt, RawResponse: raw}, nil
}

// Regenerate asks for exactly one replacement draft for an existing post.
// The post's current field values are embedded verbatim so the model knows
// what it is replacing; the caller overwrites the post in place.
func (o *Orchestrator) Regenerate(ctx context.Context, members []*models.Member, turns []*models.SessionTurn, prompt string, post *models.Post) (*Result, error) {
	assigneeID := ""
	if post.AssigneeID != nil {
		assigneeID = post.AssigneeID.String()
	}
	current, _ := json.Marshal(Draft{
		Description: post.Description,
		Caption:     post.PostText,
		PostTime:    post.ScheduleTime.Format(time.RFC3339),
		ImagePrompt: post.ImagePrompt,
		VideoPrompt: post.VideoPrompt,
		AssigneeID:  assigneeID,
	})

	var b strings.Builder
	b.WriteString("generate the content for professional social media marketing\n")
	fmt.Fprintf(&b, "users: %s\n", encodeRoster(members))
	b.WriteString("select assignee for each post based on their roles.\n")
	fmt.Fprintf(&b, "generate a single post in replacement of the post %s\n", current)
	b.WriteString(draftSchemaInstruction)

	raw, err := o.client.Send(ctx, ChatRequest{
		SystemInstruction: b.String(),
		History:           replayHistory(turns),
		Prompt:            prompt,
	})
	if err != nil {
		return nil, err
	}

	drafts, err := ParseDrafts(raw)
	if err != nil {
		return nil, err
	}

	if len(drafts) != 1 {
		return nil, fmt.Errorf("%w: expected exactly one replacement draft, got %d", ErrSchemaViolation, len(drafts))
	}

	if err := checkAssignees(drafts, members); err != nil {
		return nil, err
	}

	return &Result{Drafts: drafts, Prompt: prompt, RawResponse: raw}, nil
}

// checkAssignees rejects drafts whose assignee is outside the workspace
// roster.
func checkAssignees(drafts []Draft, members []*models.Member) error {
	roster := make(map[string]struct{}, len(members))
	for _, m := range members {
		roster[m.UserID.String()] = struct{}{}
	}
	for i, d := range drafts {
		if _, ok := roster[d.AssigneeID]; !ok {
			return fmt.Errorf("%w: draft %d assignee %q is not a workspace member", ErrSchemaViolation, i, d.AssigneeID)
		}
	}
	return nil
}

// draftSchemaInstruction pins the reply shape. The service is also asked
// for application/json output via the generation config.
const draftSchemaInstruction = `respond with a JSON object {"response": [...]} where each item has exactly these string fields: descr, cap, post_time (ISO 8601), img_prompt, vid_prompt, assignee_id.`
