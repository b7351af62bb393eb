package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"readr/internal/logger"
	"readr/internal/service"
)

// Scheduler refreshes every feed on a cron schedule and once at start.
type Scheduler struct {
	refreshService service.RefreshService
	iconService    service.IconService
	schedule       string
	timeout        time.Duration
	cron           *cron.Cron

	wg         sync.WaitGroup
	mu         sync.Mutex // protects cancelFunc and stopped
	cancelFunc context.CancelFunc
	stopped    bool
}

// New validates schedule, a standard cron spec or descriptor such as
// "@every 15m". iconService may be nil.
func New(refreshService service.RefreshService, iconService service.IconService, schedule string, timeout time.Duration) (*Scheduler, error) {
	s := &Scheduler{
		refreshService: refreshService,
		iconService:    iconService,
		schedule:       schedule,
		timeout:        timeout,
		cron:           cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}
	if _, err := s.cron.AddFunc(schedule, s.refresh); err != nil {
		return nil, fmt.Errorf("parse refresh schedule %q: %w", schedule, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.refresh()
	}()
	logger.Info("scheduler started", "module", "scheduler", "action", "refresh", "resource", "feed", "result", "ok", "schedule", s.schedule, "timeout_ms", s.timeout.Milliseconds())
}

// Stop cancels the running refresh and waits for it to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	if s.cancelFunc != nil {
		s.cancelFunc()
	}
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	s.wg.Wait()
	logger.Info("scheduler stopped", "module", "scheduler", "action", "refresh", "resource", "feed", "result", "ok")
}

func (s *Scheduler) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		cancel()
		return
	}
	s.cancelFunc = cancel
	s.mu.Unlock()

	defer func() {
		cancel()
		s.mu.Lock()
		s.cancelFunc = nil
		s.mu.Unlock()
	}()

	logger.Info("scheduled feed refresh started", "module", "scheduler", "action", "refresh", "resource", "feed", "result", "ok")
	if err := s.refreshService.RefreshAll(ctx); err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadyRefreshing):
			logger.Info("scheduled refresh skipped", "module", "scheduler", "action", "refresh", "resource", "feed", "result", "skipped")
		case ctx.Err() != nil:
			logger.Warn("scheduled refresh cancelled", "module", "scheduler", "action", "refresh", "resource", "feed", "result", "cancelled")
		default:
			logger.Error("scheduled refresh failed", "module", "scheduler", "action", "refresh", "resource", "feed", "result", "failed", "error", err)
		}
		return
	}

	if s.iconService != nil {
		if err := s.iconService.BackfillIcons(ctx); err != nil && ctx.Err() == nil {
			logger.Warn("icon backfill failed", "module", "scheduler", "action", "refresh", "resource", "icon", "result", "failed", "error", err)
		}
	}
	logger.Info("scheduled feed refresh completed", "module", "scheduler", "action", "refresh", "resource", "feed", "result", "ok")
}
