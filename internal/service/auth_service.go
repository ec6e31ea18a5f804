package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"smartcampus/portal/internal/models"
	"smartcampus/portal/internal/nfc"
)

const (
	msgMissingFields = "Veuillez remplir tous les champs"
	msgLoginFailed   = "Erreur de connexion"
	msgNFCFailed     = "Erreur de lecture NFC"
)

type FailureKind string

const (
	FailureNone       FailureKind = ""
	FailureValidation FailureKind = "validation"
	FailureRejected   FailureKind = "rejected"
	FailureUpstream   FailureKind = "upstream"
	FailureNFC        FailureKind = "nfc"
)

// LoginResult is what a login hands back to its caller. Failures are values,
// never errors: Error holds the message to show, Kind says where it came from.
type LoginResult struct {
	Success bool         `json:"success"`
	User    *models.User `json:"user,omitempty"`
	Card    *models.Card `json:"card,omitempty"`
	Error   string       `json:"error,omitempty"`

	Kind    FailureKind `json:"-"`
	NFCKind nfc.Kind    `json:"-"`
	Err     error       `json:"-"`
}

type SessionAPI interface {
	AuthAPI
	EventsAPI
}

type AuthService struct {
	api       SessionAPI
	scanner   CardScanner
	projector *Projector
	fallback  EventsFallbackPolicy
	log       zerolog.Logger
	now       func() time.Time
}

func NewAuthService(
	api SessionAPI,
	scanner CardScanner,
	projector *Projector,
	fallback EventsFallbackPolicy,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		api:       api,
		scanner:   scanner,
		projector: projector,
		fallback:  fallback,
		log:       log.With().Str("component", "auth").Logger(),
		now:       time.Now,
	}
}

func (s *AuthService) LoginWithCredentials(ctx context.Context, email, password string) LoginResult {
	if email == "" || password == "" {
		return LoginResult{Error: msgMissingFields, Kind: FailureValidation}
	}

	resp, err := s.api.LoginWithCredentials(ctx, email, password)
	if err != nil {
		s.log.Info().Err(err).Msg("credential login failed")
		return failed(err, msgLoginFailed, FailureUpstream)
	}
	if !resp.Success {
		return failed(rejected(resp.Error, msgLoginFailed), msgLoginFailed, FailureRejected)
	}
	return LoginResult{Success: true, User: resp.User, Card: resp.Carte}
}

// LoginWithNFC reads a card through the configured scanner and exchanges its
// token for a session.
func (s *AuthService) LoginWithNFC(ctx context.Context) LoginResult {
	if s.scanner == nil {
		return LoginResult{
			Error:   nfc.NewError(nfc.KindUnsupported, nil).Error(),
			Kind:    FailureNFC,
			NFCKind: nfc.KindUnsupported,
		}
	}

	token, err := s.scanner.ScanCard(ctx)
	if err != nil {
		result := failed(err, msgNFCFailed, FailureNFC)
		if kind, ok := nfc.KindOf(err); ok {
			result.NFCKind = kind
		}
		return result
	}

	return s.exchangeCardToken(ctx, token, msgNFCFailed)
}

// LoginWithCardToken exchanges a token read by the client device itself.
func (s *AuthService) LoginWithCardToken(ctx context.Context, token string) LoginResult {
	if token == "" {
		return LoginResult{
			Error:   nfc.NewError(nfc.KindNoToken, nil).Error(),
			Kind:    FailureValidation,
			NFCKind: nfc.KindNoToken,
		}
	}
	return s.exchangeCardToken(ctx, token, msgLoginFailed)
}

func (s *AuthService) exchangeCardToken(ctx context.Context, token, fallback string) LoginResult {
	resp, err := s.api.LoginWithNFC(ctx, token)
	if err != nil {
		s.log.Info().Err(err).Msg("card login failed")
		return failed(err, fallback, FailureUpstream)
	}
	if !resp.Success {
		return failed(rejected(resp.Error, msgLoginFailed), fallback, FailureRejected)
	}
	return LoginResult{Success: true, User: resp.User, Card: resp.Carte}
}

func failed(err error, fallback string, kind FailureKind) LoginResult {
	msg := err.Error()
	if msg == "" {
		msg = fallback
	}
	var rej *RejectedError
	if kind == FailureUpstream && errors.As(err, &rej) {
		kind = FailureRejected
	}
	return LoginResult{Error: msg, Kind: kind, Err: err}
}
