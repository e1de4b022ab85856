package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/betterpursue/sproom/internal/domain/registration"
)

// CreateRegistration registers the current user for an activity.
// POST /registrations. The automatic session-reset redirect is suppressed so
// the calling operation can surface a contextual message; a 400 here is the
// backend's capacity rejection.
func (c *Client) CreateRegistration(ctx context.Context, activityID int64) (registration.Registration, error) {
	body := map[string]int64{"activityId": activityID}
	data, err := c.do(ctx, call{
		method: http.MethodPost, path: "/registrations", body: body,
		authRequired: true, suppressSessionReset: true, registrationCreate: true,
	})
	if err != nil {
		return registration.Registration{}, err
	}
	var p registrationPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return registration.Registration{}, fmt.Errorf("decode created registration: %w", err)
	}
	return p.toDomain(), nil
}

// MyRegistrations fetches the current user's registrations, scoped by the
// bearer token. GET /registrations/my.
func (c *Client) MyRegistrations(ctx context.Context) ([]registration.Registration, error) {
	data, err := c.do(ctx, call{method: http.MethodGet, path: "/registrations/my", authRequired: true})
	if err != nil {
		return nil, err
	}
	return decodeRegistrationList(data)
}

// ActivityRegistrations fetches all registrations for one activity
// (admin only). GET /registrations/activity/:id.
func (c *Client) ActivityRegistrations(ctx context.Context, activityID int64) ([]registration.Registration, error) {
	data, err := c.do(ctx, call{
		method: http.MethodGet, path: "/registrations/activity/" + strconv.FormatInt(activityID, 10),
		authRequired: true,
	})
	if err != nil {
		return nil, err
	}
	return decodeRegistrationList(data)
}

// UpdateRegistrationStatus transitions a registration between PENDING and
// CONFIRMED (admin only). PUT /registrations/:id/status. Session reset is
// suppressed like the other registration mutations.
func (c *Client) UpdateRegistrationStatus(ctx context.Context, registrationID int64, status string) error {
	body := map[string]string{"status": status}
	_, err := c.do(ctx, call{
		method: http.MethodPut, path: "/registrations/" + strconv.FormatInt(registrationID, 10) + "/status",
		body: body, authRequired: true, suppressSessionReset: true,
	})
	return err
}

// DeleteRegistration cancels a registration.
// DELETE /registrations/:id/delete, session reset suppressed.
func (c *Client) DeleteRegistration(ctx context.Context, registrationID int64) error {
	_, err := c.do(ctx, call{
		method: http.MethodDelete, path: "/registrations/" + strconv.FormatInt(registrationID, 10) + "/delete",
		authRequired: true, suppressSessionReset: true,
	})
	return err
}

func decodeRegistrationList(data []byte) ([]registration.Registration, error) {
	var payloads []registrationPayload
	if err := unmarshalList(data, "registrations", &payloads); err != nil {
		return nil, fmt.Errorf("decode registration list: %w", err)
	}
	regs := make([]registration.Registration, 0, len(payloads))
	for i := range payloads {
		regs = append(regs, payloads[i].toDomain())
	}
	return regs, nil
}
