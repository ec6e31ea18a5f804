package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

type SessionPruner interface {
	PruneExpired(ctx context.Context) (int64, error)
}

// Scheduler runs periodic housekeeping. An empty spec disables the job.
type Scheduler struct {
	cron   *cron.Cron
	pruner SessionPruner
	spec   string
	log    zerolog.Logger
}

func NewScheduler(pruner SessionPruner, spec string, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds()),
		pruner: pruner,
		spec:   spec,
		log:    log.With().Str("component", "jobs").Logger(),
	}
}

func (s *Scheduler) Start() error {
	if s.pruner == nil || s.spec == "" {
		return nil
	}

	if _, err := s.cron.AddFunc(s.spec, s.pruneSessions); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) pruneSessions() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := s.pruner.PruneExpired(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("prune expired sessions failed")
		return
	}
	if n > 0 {
		s.log.Info().Int64("deleted", n).Msg("expired sessions pruned")
	}
}
