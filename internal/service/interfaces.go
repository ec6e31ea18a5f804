package service

import (
	"context"

	"smartcampus/portal/internal/campusapi"
	"smartcampus/portal/internal/models"
)

// Ports onto the campus API; *campusapi.Client satisfies all of them.

type AuthAPI interface {
	LoginWithCredentials(ctx context.Context, email, password string) (campusapi.AuthResponse, error)
	LoginWithNFC(ctx context.Context, token string) (campusapi.AuthResponse, error)
	Register(ctx context.Context, input campusapi.RegisterInput) (campusapi.RegisterResponse, error)
}

type EventsAPI interface {
	UpcomingEvents(ctx context.Context) (campusapi.EventsResponse, error)
}

type ProfileAPI interface {
	UserProfile(ctx context.Context, userID int) (campusapi.UserResponse, error)
	UpdateUserProfile(ctx context.Context, userID int, update models.ProfileUpdate) (campusapi.UserResponse, error)
}

type ReferenceAPI interface {
	Classes(ctx context.Context) (campusapi.ClassesResponse, error)
	Filieres(ctx context.Context) (campusapi.FilieresResponse, error)
	Matieres(ctx context.Context) (campusapi.MatieresResponse, error)
}

type CampusAPI interface {
	AuthAPI
	EventsAPI
	ProfileAPI
	ReferenceAPI
}

var _ CampusAPI = (*campusapi.Client)(nil)

// CardScanner yields the token of one NFC card; *nfc.Service satisfies it.
type CardScanner interface {
	ScanCard(ctx context.Context) (string, error)
}
