package genai

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrSchemaViolation is returned when the model reply is not valid JSON or
// is missing required draft fields. Schema violations are fatal and never
// retried.
var ErrSchemaViolation = errors.New("model response violates draft schema")

// Draft is one generated post draft. Field names follow the wire schema
// the model is instructed to produce.
type Draft struct {
	Description string `json:"descr"`
	Caption     string `json:"cap"`
	PostTime    string `json:"post_time"`
	ImagePrompt string `json:"img_prompt"`
	VideoPrompt string `json:"vid_prompt"`
	AssigneeID  string `json:"assignee_id"`
}

// ScheduleTime parses the draft's post_time. Models emit RFC 3339 or a
// zone-less ISO timestamp depending on how the range was phrased.
func (d *Draft) ScheduleTime() (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if ts, err := time.Parse(layout, d.PostTime); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unparseable post_time %q", ErrSchemaViolation, d.PostTime)
}

// rawDraft distinguishes missing fields from empty ones.
type rawDraft struct {
	Description *string `json:"descr"`
	Caption     *string `json:"cap"`
	PostTime    *string `json:"post_time"`
	ImagePrompt *string `json:"img_prompt"`
	VideoPrompt *string `json:"vid_prompt"`
	AssigneeID  *string `json:"assignee_id"`
}

type rawEnvelope struct {
	Response *[]rawDraft `json:"response"`
}

// ParseDrafts decodes a model reply of the form {"response": [draft...]}.
// Every draft must carry all six fields; missing fields are rejected, not
// defaulted.
func ParseDrafts(raw string) ([]Draft, error) {
	var envelope rawEnvelope
	if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaViolation, err)
	}

	if envelope.Response == nil {
		return nil, fmt.Errorf("%w: missing response array", ErrSchemaViolation)
	}

	drafts := make([]Draft, 0, len(*envelope.Response))
	for i, rd := range *envelope.Response {
		if rd.Description == nil || rd.Caption == nil || rd.PostTime == nil ||
			rd.ImagePrompt == nil || rd.VideoPrompt == nil || rd.AssigneeID == nil {
			return nil, fmt.Errorf("%w: draft %d is missing required fields", ErrSchemaViolation, i)
		}
		drafts = append(drafts, Draft{
			Description: *rd.Description,
			Caption:     *rd.Caption,
			PostTime:    *rd.PostTime,
			ImagePrompt: *rd.ImagePrompt,
			VideoPrompt: *rd.VideoPrompt,
			AssigneeID:  *rd.AssigneeID,
		})
	}

	return drafts, nil
}
