package campusapi

import (
	"context"

	"smartcampus/portal/internal/models"
)

type ClassesResponse struct {
	Success bool            `json:"success"`
	Classes []models.Classe `json:"classes"`
	Error   string          `json:"error,omitempty"`
}

type FilieresResponse struct {
	Success  bool             `json:"success"`
	Filieres []models.Filiere `json:"filieres"`
	Error    string           `json:"error,omitempty"`
}

type MatieresResponse struct {
	Success  bool             `json:"success"`
	Matieres []models.Matiere `json:"matieres"`
	Error    string           `json:"error,omitempty"`
}

func (c *Client) Classes(ctx context.Context) (ClassesResponse, error) {
	var resp ClassesResponse
	err := c.do(ctx, "/classes", RequestOptions{}, &resp)
	return resp, err
}

func (c *Client) Filieres(ctx context.Context) (FilieresResponse, error) {
	var resp FilieresResponse
	err := c.do(ctx, "/filieres", RequestOptions{}, &resp)
	return resp, err
}

func (c *Client) Matieres(ctx context.Context) (MatieresResponse, error) {
	var resp MatieresResponse
	err := c.do(ctx, "/matieres", RequestOptions{}, &resp)
	return resp, err
}
