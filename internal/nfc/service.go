package nfc

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

type Availability struct {
	Available bool
	Enabled   bool
}

// Service drives single card reads on top of a Reader. A scan moves
// idle -> awaiting-tag -> token or error -> idle; nothing is retried.
type Service struct {
	reader Reader
	log    zerolog.Logger

	mu          sync.Mutex
	initialized bool
}

func NewService(reader Reader, log zerolog.Logger) *Service {
	if reader == nil {
		reader = Unavailable{}
	}
	return &Service{
		reader: reader,
		log:    log.With().Str("component", "nfc").Logger(),
	}
}

// Initialize starts the reader when NFC is supported. Failures are logged
// and reported as unsupported; a host without NFC keeps running.
func (s *Service) Initialize(ctx context.Context) bool {
	supported, err := s.reader.IsSupported(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("nfc initialisation failed")
		return false
	}
	if !supported {
		return false
	}
	if err := s.reader.Start(ctx); err != nil {
		s.log.Warn().Err(err).Msg("nfc initialisation failed")
		return false
	}

	s.mu.Lock()
	s.initialized = true
	s.mu.Unlock()
	return true
}

func (s *Service) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

func (s *Service) CheckAvailability(ctx context.Context) Availability {
	available, err := s.reader.IsSupported(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("nfc availability check failed")
		return Availability{}
	}
	if !available {
		return Availability{}
	}
	enabled, err := s.reader.IsEnabled(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("nfc availability check failed")
		return Availability{}
	}
	return Availability{Available: true, Enabled: enabled}
}

// ScanCard waits for one card and returns its token. Every error is a
// *ScanError. The outstanding read request is always released.
func (s *Service) ScanCard(ctx context.Context) (string, error) {
	defer s.CancelScanning()

	availability := s.CheckAvailability(ctx)
	if !availability.Available {
		return "", NewError(KindUnsupported, nil)
	}
	if !availability.Enabled {
		return "", NewError(KindDisabled, nil)
	}

	tag, err := s.reader.RequestTag(ctx)
	if err != nil {
		scanErr := classify(err)
		s.log.Info().Err(err).Str("kind", scanErr.Kind.String()).Msg("card read failed")
		return "", scanErr
	}

	token, ok := ExtractToken(tag)
	if !ok {
		return "", NewError(KindNoToken, nil)
	}

	s.log.Debug().Int("token_len", len(token)).Msg("card token extracted")
	return token, nil
}

func (s *Service) CancelScanning() {
	if err := s.reader.CancelRequest(); err != nil {
		s.log.Debug().Err(err).Msg("cancel nfc request failed")
	}
}

func (s *Service) Cleanup() {
	s.CancelScanning()

	s.mu.Lock()
	s.initialized = false
	s.mu.Unlock()
}
