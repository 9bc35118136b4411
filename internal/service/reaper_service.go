package service

import (
	"context"
	"time"

	"doc-session-be/internal/pkg/logger"
	"doc-session-be/internal/repository/memory"
)

type IReaperService interface {
	Run(ctx context.Context)
	SweepOnce(ctx context.Context) int
}

// reaperService removes expired sessions on a fixed interval. Lazy expiry
// on the read path already hides expired sessions; the reaper reclaims
// their collections, memory and metrics.
type reaperService struct {
	sessionRepo    memory.ISessionRepository
	sessionService ISessionService
	logger         logger.ILogger
	interval       time.Duration
	now            func() time.Time
}

func NewReaperService(
	sessionRepo memory.ISessionRepository,
	sessionService ISessionService,
	log logger.ILogger,
	interval time.Duration,
) IReaperService {
	return &reaperService{
		sessionRepo:    sessionRepo,
		sessionService: sessionService,
		logger:         log,
		interval:       interval,
		now:            time.Now,
	}
}

func (s *reaperService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce reaps every expired session and reports how many it removed.
// Re-running against already-cleaned sessions is safe: cleanup treats
// absence as success.
func (s *reaperService) SweepOnce(ctx context.Context) int {
	now := s.now()
	reaped := 0
	for _, session := range s.sessionRepo.List() {
		if s.sessionService.ReapIfExpired(ctx, session, now) {
			reaped++
		}
	}

	if reaped > 0 {
		s.logger.Info("service.reaper", "expired sessions reaped", map[string]interface{}{
			"count": reaped,
		})
	}
	return reaped
}
