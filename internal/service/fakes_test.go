package service

import (
	"context"
	"errors"
	"io"

	"smartcampus/portal/internal/campusapi"
	"smartcampus/portal/internal/models"
)

type fakeCampus struct {
	auth      campusapi.AuthResponse
	authErr   error
	register  campusapi.RegisterResponse
	events    campusapi.EventsResponse
	eventsErr error
	user      campusapi.UserResponse
	userErr   error
	classes   campusapi.ClassesResponse
	filieres  campusapi.FilieresResponse
	matieres  campusapi.MatieresResponse

	calls      int
	lastToken  string
	lastInput  campusapi.RegisterInput
	lastUpdate models.ProfileUpdate
	lastUserID int
}

func (f *fakeCampus) LoginWithCredentials(context.Context, string, string) (campusapi.AuthResponse, error) {
	f.calls++
	return f.auth, f.authErr
}

func (f *fakeCampus) LoginWithNFC(_ context.Context, token string) (campusapi.AuthResponse, error) {
	f.calls++
	f.lastToken = token
	return f.auth, f.authErr
}

func (f *fakeCampus) Register(_ context.Context, input campusapi.RegisterInput) (campusapi.RegisterResponse, error) {
	f.calls++
	f.lastInput = input
	return f.register, f.authErr
}

func (f *fakeCampus) UpcomingEvents(context.Context) (campusapi.EventsResponse, error) {
	f.calls++
	return f.events, f.eventsErr
}

func (f *fakeCampus) UserProfile(_ context.Context, userID int) (campusapi.UserResponse, error) {
	f.calls++
	f.lastUserID = userID
	return f.user, f.userErr
}

func (f *fakeCampus) UpdateUserProfile(_ context.Context, userID int, update models.ProfileUpdate) (campusapi.UserResponse, error) {
	f.calls++
	f.lastUserID = userID
	f.lastUpdate = update
	if f.userErr != nil {
		return campusapi.UserResponse{}, f.userErr
	}
	resp := f.user
	if resp.User != nil && update.Avatar != nil {
		u := *resp.User
		u.Avatar = update.Avatar
		resp.User = &u
	}
	return resp, nil
}

func (f *fakeCampus) Classes(context.Context) (campusapi.ClassesResponse, error) {
	return f.classes, nil
}

func (f *fakeCampus) Filieres(context.Context) (campusapi.FilieresResponse, error) {
	return f.filieres, nil
}

func (f *fakeCampus) Matieres(context.Context) (campusapi.MatieresResponse, error) {
	return f.matieres, nil
}

type fakeScanner struct {
	token string
	err   error
}

func (f fakeScanner) ScanCard(context.Context) (string, error) {
	return f.token, f.err
}

type memoryAvatars struct {
	key         string
	contentType string
	data        []byte
	err         error
}

func (m *memoryAvatars) PutAvatar(_ context.Context, key string, r io.Reader, _ int64, contentType string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.key, m.contentType, m.data = key, contentType, data
	return "https://s3.campus.test/avatars/" + key, nil
}

var errNetwork = errors.New("dial tcp: connection refused")
