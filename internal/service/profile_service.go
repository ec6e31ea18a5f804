package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/rs/zerolog"

	"smartcampus/portal/internal/ids"
	"smartcampus/portal/internal/media/sniffer"
	"smartcampus/portal/internal/media/svg"
	"smartcampus/portal/internal/models"
)

var (
	ErrAvatarTooLarge    = errors.New("avatar too large")
	ErrAvatarEmpty       = errors.New("empty avatar")
	ErrAvatarUnsupported = errors.New("unsupported avatar type")
	ErrAvatarMismatch    = errors.New("avatar content type mismatch")
)

// AvatarStore is where uploaded avatars end up; *storage.ObjectStore
// satisfies it.
type AvatarStore interface {
	PutAvatar(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
}

type AvatarUpload struct {
	Data         io.Reader
	DeclaredType string
}

type ProfileService struct {
	api     ProfileAPI
	avatars AvatarStore
	maxSize int64
	log     zerolog.Logger
}

func NewProfileService(api ProfileAPI, avatars AvatarStore, maxSize int64, log zerolog.Logger) *ProfileService {
	return &ProfileService{
		api:     api,
		avatars: avatars,
		maxSize: maxSize,
		log:     log.With().Str("component", "profile").Logger(),
	}
}

func (s *ProfileService) Get(ctx context.Context, userID int) (models.User, error) {
	resp, err := s.api.UserProfile(ctx, userID)
	if err != nil {
		return models.User{}, err
	}
	if !resp.Success || resp.User == nil {
		return models.User{}, rejected(resp.Error, "Utilisateur introuvable")
	}
	return *resp.User, nil
}

func (s *ProfileService) Update(ctx context.Context, userID int, update models.ProfileUpdate) (models.User, error) {
	resp, err := s.api.UpdateUserProfile(ctx, userID, update)
	if err != nil {
		return models.User{}, err
	}
	if !resp.Success || resp.User == nil {
		return models.User{}, rejected(resp.Error, "Mise à jour du profil impossible")
	}
	return *resp.User, nil
}

// UploadAvatar checks the image, stores it and points the profile at it.
// SVG files are sanitized before they are stored.
func (s *ProfileService) UploadAvatar(ctx context.Context, userID int, upload AvatarUpload) (models.User, error) {
	if s.avatars == nil {
		return models.User{}, fmt.Errorf("avatar storage not configured")
	}

	data, err := s.readLimited(upload.Data)
	if err != nil {
		return models.User{}, err
	}

	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	kind, err := sniffer.DetectHead(head)
	if err != nil {
		return models.User{}, ErrAvatarUnsupported
	}
	if upload.DeclaredType != "" && upload.DeclaredType != "application/octet-stream" && upload.DeclaredType != kind.MIME {
		return models.User{}, fmt.Errorf("%w: declared %s, actual %s", ErrAvatarMismatch, upload.DeclaredType, kind.MIME)
	}

	if kind.Type == sniffer.TypeSVG {
		data, err = svg.Sanitize(data)
		if err != nil {
			return models.User{}, fmt.Errorf("sanitize svg: %w", err)
		}
	}

	key := path.Join("users", fmt.Sprint(userID), ids.New()+"."+kind.Ext())
	url, err := s.avatars.PutAvatar(ctx, key, bytes.NewReader(data), int64(len(data)), kind.MIME)
	if err != nil {
		return models.User{}, err
	}

	s.log.Info().Int("user_id", userID).Str("key", key).Str("type", string(kind.Type)).Msg("avatar stored")

	return s.Update(ctx, userID, models.ProfileUpdate{Avatar: &url})
}

func (s *ProfileService) readLimited(r io.Reader) ([]byte, error) {
	if r == nil {
		return nil, ErrAvatarEmpty
	}
	if s.maxSize > 0 {
		r = io.LimitReader(r, s.maxSize+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read avatar: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrAvatarEmpty
	}
	if s.maxSize > 0 && int64(len(data)) > s.maxSize {
		return nil, ErrAvatarTooLarge
	}
	return data, nil
}
