package campusapi

import (
	"context"
	"fmt"
	"net/http"

	"smartcampus/portal/internal/models"
)

type UserResponse struct {
	Success bool         `json:"success"`
	User    *models.User `json:"user,omitempty"`
	Error   string       `json:"error,omitempty"`
}

func (c *Client) UserProfile(ctx context.Context, userID int) (UserResponse, error) {
	var resp UserResponse
	err := c.do(ctx, fmt.Sprintf("/users/%d", userID), RequestOptions{}, &resp)
	return resp, err
}

func (c *Client) UpdateUserProfile(ctx context.Context, userID int, update models.ProfileUpdate) (UserResponse, error) {
	var resp UserResponse
	err := c.do(ctx, fmt.Sprintf("/users/%d", userID), RequestOptions{
		Method: http.MethodPut,
		Body:   update,
	}, &resp)
	return resp, err
}
