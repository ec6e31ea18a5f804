package campusapi

import (
	"context"

	"smartcampus/portal/internal/models"
)

type EventsResponse struct {
	Success    bool           `json:"success"`
	Evenements []models.Event `json:"evenements"`
	Error      string         `json:"error,omitempty"`
}

func (c *Client) UpcomingEvents(ctx context.Context) (EventsResponse, error) {
	var resp EventsResponse
	err := c.do(ctx, "/upcoming-events", RequestOptions{}, &resp)
	return resp, err
}
