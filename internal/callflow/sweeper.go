package callflow

import (
	"context"
	"time"

	"github.com/gravywork/assessment-backend/internal/config"
	"github.com/gravywork/assessment-backend/internal/entity"
	"github.com/gravywork/assessment-backend/internal/repository"
	"go.uber.org/zap"
)

// Sweeper expires sessions whose call died without reaching the goodbye.
// Expired sessions are terminal; their partial answers stay archived.
type Sweeper struct {
	sessions *repository.SessionStore
	cfg      config.SweeperConfig
	logger   *zap.Logger
}

func NewSweeper(sessions *repository.SessionStore, cfg config.SweeperConfig, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		sessions: sessions,
		cfg:      cfg,
		logger:   logger,
	}
}

// Run sweeps on the configured interval until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	s.logger.Info("session sweeper started",
		zap.Duration("interval", s.cfg.Interval),
		zap.Duration("session_ttl", s.cfg.SessionTTL),
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("session sweeper stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs one pass over all sessions.
func (s *Sweeper) Sweep(ctx context.Context) {
	ids, err := s.sessions.ListIDs(ctx)
	if err != nil {
		s.logger.Error("sweeper failed to list sessions", zap.Error(err))
		return
	}

	cutoff := time.Now().UTC().Add(-s.cfg.SessionTTL)
	expired := 0

	for _, id := range ids {
		session, err := s.sessions.Get(ctx, id)
		if err != nil {
			s.logger.Warn("sweeper failed to load session",
				zap.String("assessment_id", id),
				zap.Error(err),
			)
			continue
		}

		if session.Status != entity.SessionStatusInProgress || session.CreatedAt.After(cutoff) {
			continue
		}

		session.Status = entity.SessionStatusExpired
		if err := s.sessions.Save(ctx, session); err != nil {
			s.logger.Warn("sweeper failed to expire session",
				zap.String("assessment_id", id),
				zap.Error(err),
			)
			continue
		}
		expired++
	}

	if expired > 0 {
		s.logger.Info("sweeper expired stale sessions", zap.Int("expired", expired))
	}
}
