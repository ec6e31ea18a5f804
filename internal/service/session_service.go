package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"smartcampus/portal/internal/config"
	"smartcampus/portal/internal/ids"
	"smartcampus/portal/internal/models"
	"smartcampus/portal/internal/repository"
	"smartcampus/portal/internal/security"
)

// ErrSessionNotFound is returned by a SessionStore for unknown sessions.
var ErrSessionNotFound = repository.ErrSessionNotFound

// SessionStore persists gateway sessions.
type SessionStore interface {
	Create(ctx context.Context, session models.Session) error
	GetByID(ctx context.Context, id string) (models.Session, error)
	FindByRefreshHash(ctx context.Context, userID int, refreshHash []byte) (models.Session, error)
	ListByUser(ctx context.Context, userID int) ([]models.Session, error)
	CountByUser(ctx context.Context, userID int) (int, error)
	DeleteOldestSessions(ctx context.Context, userID int, keepLatest int) error
	DeleteByID(ctx context.Context, id string) error
	DeleteByDevice(ctx context.Context, userID int, deviceID string) error
	Touch(ctx context.Context, sessionID string, ip string, userAgent string) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

var _ SessionStore = (*repository.SessionRepository)(nil)

type Tokens struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	DeviceID     string       `json:"deviceId"`
	ExpiresAt    time.Time    `json:"expiresAt"`
	User         models.User  `json:"user"`
	Card         *models.Card `json:"card,omitempty"`
}

type EstablishInput struct {
	User       models.User
	Card       *models.Card
	Method     models.LoginMethod
	DeviceID   string
	DeviceName string
	IPAddress  string
	UserAgent  string
}

type RefreshInput struct {
	UserID       int
	DeviceID     string
	RefreshToken string
}

type SessionService struct {
	sessions SessionStore
	cfg      config.SecurityConfig
	log      zerolog.Logger
	now      func() time.Time
}

func NewSessionService(sessions SessionStore, cfg config.SecurityConfig, log zerolog.Logger) *SessionService {
	return &SessionService{
		sessions: sessions,
		cfg:      cfg,
		log:      log.With().Str("component", "sessions").Logger(),
		now:      time.Now,
	}
}

// Establish stores a session for a successful campus login and issues its
// tokens. A user keeps at most cfg.MaxSessions devices.
func (s *SessionService) Establish(ctx context.Context, input EstablishInput) (Tokens, error) {
	deviceID := input.DeviceID
	if deviceID == "" {
		deviceID = ids.New()
	}
	deviceName := input.DeviceName
	if deviceName == "" {
		deviceName = "Unknown Device"
	}

	refreshToken, refreshHash, err := security.GenerateRefreshToken(64)
	if err != nil {
		return Tokens{}, err
	}

	now := s.now()
	session := models.Session{
		ID:               ids.New(),
		UserID:           input.User.ID,
		DeviceID:         deviceID,
		DeviceName:       deviceName,
		Method:           input.Method,
		RefreshTokenHash: refreshHash,
		IPAddress:        input.IPAddress,
		UserAgent:        input.UserAgent,
		User:             input.User,
		Card:             input.Card,
		CreatedAt:        now,
		LastSeenAt:       now,
		ExpiresAt:        now.Add(s.cfg.RefreshTTL),
	}

	accessToken, err := s.accessToken(session, now)
	if err != nil {
		return Tokens{}, err
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return Tokens{}, fmt.Errorf("create session: %w", err)
	}

	if err := s.enforceSessionLimit(ctx, session.UserID); err != nil {
		s.log.Warn().Err(err).Int("user_id", session.UserID).Msg("enforce session limit failed")
	}

	return Tokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		DeviceID:     deviceID,
		ExpiresAt:    session.ExpiresAt,
		User:         session.User,
		Card:         session.Card,
	}, nil
}

func (s *SessionService) enforceSessionLimit(ctx context.Context, userID int) error {
	if s.cfg.MaxSessions <= 0 {
		return nil
	}
	count, err := s.sessions.CountByUser(ctx, userID)
	if err != nil {
		return err
	}
	if count <= s.cfg.MaxSessions {
		return nil
	}
	return s.sessions.DeleteOldestSessions(ctx, userID, s.cfg.MaxSessions)
}

// Refresh rotates the refresh token of a device session.
func (s *SessionService) Refresh(ctx context.Context, input RefreshInput) (Tokens, error) {
	session, err := s.sessions.FindByRefreshHash(ctx, input.UserID, security.HashRefreshToken(input.RefreshToken))
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return Tokens{}, ErrUnauthorized
		}
		return Tokens{}, err
	}
	if session.DeviceID != input.DeviceID {
		return Tokens{}, ErrDeviceMismatch
	}

	now := s.now()
	if session.ExpiresAt.Before(now) {
		_ = s.sessions.DeleteByID(ctx, session.ID)
		return Tokens{}, ErrSessionExpired
	}

	refreshToken, newHash, err := security.GenerateRefreshToken(64)
	if err != nil {
		return Tokens{}, err
	}
	session.RefreshTokenHash = newHash
	session.LastSeenAt = now
	session.ExpiresAt = now.Add(s.cfg.RefreshTTL)

	if err := s.sessions.Create(ctx, session); err != nil {
		return Tokens{}, fmt.Errorf("rotate session: %w", err)
	}

	accessToken, err := s.accessToken(session, now)
	if err != nil {
		return Tokens{}, err
	}

	return Tokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		DeviceID:     session.DeviceID,
		ExpiresAt:    session.ExpiresAt,
		User:         session.User,
		Card:         session.Card,
	}, nil
}

func (s *SessionService) Logout(ctx context.Context, userID int, deviceID string) error {
	return s.sessions.DeleteByDevice(ctx, userID, deviceID)
}

// Authenticate resolves a bearer token to its live session.
func (s *SessionService) Authenticate(ctx context.Context, accessToken string) (models.Session, *security.AccessClaims, error) {
	claims, err := security.ParseAccessToken(accessToken, s.cfg.JWTAccessSecret)
	if err != nil {
		return models.Session{}, nil, ErrUnauthorized
	}

	session, err := s.sessions.GetByID(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return models.Session{}, nil, ErrUnauthorized
		}
		return models.Session{}, nil, err
	}
	if session.UserID != claims.UserID || session.DeviceID != claims.DeviceID {
		return models.Session{}, nil, ErrDeviceMismatch
	}
	if session.ExpiresAt.Before(s.now()) {
		return models.Session{}, nil, ErrSessionExpired
	}
	return session, claims, nil
}

func (s *SessionService) Touch(ctx context.Context, sessionID, ip, userAgent string) {
	if err := s.sessions.Touch(ctx, sessionID, ip, userAgent); err != nil {
		s.log.Debug().Err(err).Str("session_id", sessionID).Msg("touch session failed")
	}
}

func (s *SessionService) Sessions(ctx context.Context, userID int) ([]models.Session, error) {
	return s.sessions.ListByUser(ctx, userID)
}

// Revoke drops another device's session. The caller's own device is refused.
func (s *SessionService) Revoke(ctx context.Context, current models.Session, deviceID string) error {
	if deviceID == current.DeviceID {
		return ErrRevokeCurrentDevice
	}
	return s.sessions.DeleteByDevice(ctx, current.UserID, deviceID)
}

func (s *SessionService) PruneExpired(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpired(ctx, s.now())
}

func (s *SessionService) accessToken(session models.Session, now time.Time) (string, error) {
	return security.GenerateAccessToken(
		s.cfg.JWTAccessSecret,
		session.UserID,
		session.ID,
		session.DeviceID,
		session.User.Role,
		s.cfg.JWTAccessTTL,
		now,
	)
}
