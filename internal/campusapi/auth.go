package campusapi

import (
	"context"
	"net/http"

	"smartcampus/portal/internal/models"
)

type AuthResponse struct {
	Success bool         `json:"success"`
	User    *models.User `json:"user,omitempty"`
	Carte   *models.Card `json:"carte,omitempty"`
	Error   string       `json:"error,omitempty"`
}

type RegisterInput struct {
	Firstname string  `json:"firstname"`
	Lastname  string  `json:"lastname"`
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	ClasseID  int     `json:"classe_id"`
	FiliereID int     `json:"filiere_id"`
	Telephone *string `json:"telephone"`
}

type RegisterResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (c *Client) LoginWithCredentials(ctx context.Context, email, password string) (AuthResponse, error) {
	var resp AuthResponse
	err := c.do(ctx, "/auth/login", RequestOptions{
		Method: http.MethodPost,
		Body:   map[string]string{"email": email, "password": password},
	}, &resp)
	return resp, err
}

func (c *Client) LoginWithNFC(ctx context.Context, token string) (AuthResponse, error) {
	var resp AuthResponse
	err := c.do(ctx, "/auth/login-nfc", RequestOptions{
		Method: http.MethodPost,
		Body:   map[string]string{"token": token},
	}, &resp)
	return resp, err
}

func (c *Client) Register(ctx context.Context, input RegisterInput) (RegisterResponse, error) {
	var resp RegisterResponse
	err := c.do(ctx, "/auth/register", RequestOptions{
		Method: http.MethodPost,
		Body:   input,
	}, &resp)
	return resp, err
}
