package service

import (
	"context"
	"strings"

	"smartcampus/portal/internal/models"
)

// ReferenceService lists backoffice reference data. Lists are fetched on
// every call and filtered locally.
type ReferenceService struct {
	api ReferenceAPI
}

func NewReferenceService(api ReferenceAPI) *ReferenceService {
	return &ReferenceService{api: api}
}

func (s *ReferenceService) Classes(ctx context.Context, search string) ([]models.Classe, error) {
	resp, err := s.api.Classes(ctx)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, rejected(resp.Error, "Impossible de charger les classes")
	}
	return filter(resp.Classes, search, func(c models.Classe) []string {
		return []string{c.Nom, c.Niveau}
	}), nil
}

func (s *ReferenceService) Filieres(ctx context.Context, search string) ([]models.Filiere, error) {
	resp, err := s.api.Filieres(ctx)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, rejected(resp.Error, "Impossible de charger les filières")
	}
	return filter(resp.Filieres, search, func(f models.Filiere) []string {
		return []string{f.Nom}
	}), nil
}

func (s *ReferenceService) Matieres(ctx context.Context, search string) ([]models.Matiere, error) {
	resp, err := s.api.Matieres(ctx)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, rejected(resp.Error, "Impossible de charger les matières")
	}
	return filter(resp.Matieres, search, func(m models.Matiere) []string {
		return []string{m.Nom, m.Code}
	}), nil
}

func filter[T any](items []T, search string, fields func(T) []string) []T {
	search = strings.ToLower(strings.TrimSpace(search))
	out := make([]T, 0, len(items))
	for _, item := range items {
		if search == "" || matches(fields(item), search) {
			out = append(out, item)
		}
	}
	return out
}

func matches(fields []string, search string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), search) {
			return true
		}
	}
	return false
}
