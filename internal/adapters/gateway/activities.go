package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/betterpursue/sproom/internal/domain/activity"
)

// ActivityInput carries the admin-editable activity fields for create and
// update calls.
type ActivityInput struct {
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Location        string    `json:"location"`
	ImageURL        string    `json:"imageUrl,omitempty"`
	Type            string    `json:"type,omitempty"`
	StartTime       time.Time `json:"startTime"`
	EndTime         time.Time `json:"endTime"`
	MaxParticipants *int      `json:"maxParticipants"`
	Status          string    `json:"status,omitempty"`
}

// ListActivities fetches the full activity list with participant counts.
// GET /activities.
func (c *Client) ListActivities(ctx context.Context) ([]activity.Activity, error) {
	data, err := c.do(ctx, call{method: http.MethodGet, path: "/activities"})
	if err != nil {
		return nil, err
	}
	var payloads []activityPayload
	if err := unmarshalList(data, "activities", &payloads); err != nil {
		return nil, fmt.Errorf("decode activity list: %w", err)
	}
	activities := make([]activity.Activity, 0, len(payloads))
	for i := range payloads {
		activities = append(activities, payloads[i].toDomain())
	}
	return activities, nil
}

// GetActivity fetches one activity with its embedded comments.
// GET /activities/:id.
func (c *Client) GetActivity(ctx context.Context, id int64) (activity.Detail, error) {
	data, err := c.do(ctx, call{method: http.MethodGet, path: "/activities/" + strconv.FormatInt(id, 10)})
	if err != nil {
		return activity.Detail{}, err
	}
	var p struct {
		activityPayload
		Comments []commentPayload `json:"comments"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return activity.Detail{}, fmt.Errorf("decode activity detail: %w", err)
	}
	detail := activity.Detail{Activity: p.toDomain()}
	for i := range p.Comments {
		detail.Comments = append(detail.Comments, p.Comments[i].toDomain())
	}
	return detail, nil
}

// CreateActivity creates an activity (admin only). POST /activities.
func (c *Client) CreateActivity(ctx context.Context, input ActivityInput) (activity.Activity, error) {
	data, err := c.do(ctx, call{method: http.MethodPost, path: "/activities", body: input, authRequired: true})
	if err != nil {
		return activity.Activity{}, err
	}
	var p activityPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return activity.Activity{}, fmt.Errorf("decode created activity: %w", err)
	}
	return p.toDomain(), nil
}

// UpdateActivity updates an activity (admin only). PUT /activities/:id.
func (c *Client) UpdateActivity(ctx context.Context, id int64, input ActivityInput) (activity.Activity, error) {
	data, err := c.do(ctx, call{
		method: http.MethodPut, path: "/activities/" + strconv.FormatInt(id, 10),
		body: input, authRequired: true,
	})
	if err != nil {
		return activity.Activity{}, err
	}
	var p activityPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return activity.Activity{}, fmt.Errorf("decode updated activity: %w", err)
	}
	return p.toDomain(), nil
}

// DeleteActivity deletes an activity (admin only). DELETE /activities/:id.
func (c *Client) DeleteActivity(ctx context.Context, id int64) error {
	_, err := c.do(ctx, call{
		method: http.MethodDelete, path: "/activities/" + strconv.FormatInt(id, 10),
		authRequired: true,
	})
	return err
}

// CreateComment posts a comment on an activity.
// POST /activities/:id/comments.
func (c *Client) CreateComment(ctx context.Context, activityID int64, content string) (activity.Comment, error) {
	body := map[string]string{"content": content}
	data, err := c.do(ctx, call{
		method: http.MethodPost, path: "/activities/" + strconv.FormatInt(activityID, 10) + "/comments",
		body: body, authRequired: true,
	})
	if err != nil {
		return activity.Comment{}, err
	}
	var p commentPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return activity.Comment{}, fmt.Errorf("decode created comment: %w", err)
	}
	return p.toDomain(), nil
}
