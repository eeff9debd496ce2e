/*
scheduler.go - Session purge scheduler

PURPOSE:
  Periodically deletes sessions that have expired or been revoked, so the
  sessions table only holds live logins. Balances themselves are never
  scheduled: they are computed on read.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Runs once immediately on start
  - Errors are logged and retried on the next tick

CONFIGURATION:
  - Interval: How often to purge (default: 1 hour)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewSessionPurgeScheduler(store, logger)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - store/sqlite/sessions.go: PurgeSessions
*/
package api

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SessionPurger deletes dead sessions as of now.
type SessionPurger interface {
	PurgeSessions(ctx context.Context, now time.Time) (int64, error)
}

// SessionPurgeScheduler purges dead sessions on an interval.
type SessionPurgeScheduler struct {
	Store    SessionPurger
	Logger   *zap.Logger
	Interval time.Duration
	Enabled  bool
	Now      func() time.Time

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewSessionPurgeScheduler creates a new scheduler.
func NewSessionPurgeScheduler(store SessionPurger, logger *zap.Logger) *SessionPurgeScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionPurgeScheduler{
		Store:    store,
		Logger:   logger,
		Interval: time.Hour,
		Enabled:  true,
		Now:      time.Now,
	}
}

// Start begins the scheduler.
func (s *SessionPurgeScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.Enabled {
		s.Logger.Info("session purge disabled")
		return
	}
	if s.ticker != nil {
		return
	}

	s.ticker = time.NewTicker(s.Interval)
	s.stop = make(chan struct{})
	s.wg.Add(1)

	go s.run(s.ticker, s.stop)

	s.Logger.Info("session purge started", zap.Duration("interval", s.Interval))
}

// Stop stops the scheduler and waits for a running purge to finish.
func (s *SessionPurgeScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker != nil {
		s.ticker.Stop()
		close(s.stop)
		s.wg.Wait()
		s.ticker = nil
		s.Logger.Info("session purge stopped")
	}
}

func (s *SessionPurgeScheduler) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer s.wg.Done()

	// Run immediately on start
	s.purge()

	for {
		select {
		case <-ticker.C:
			s.purge()
		case <-stop:
			return
		}
	}
}

func (s *SessionPurgeScheduler) purge() {
	if _, err := s.RunNow(context.Background()); err != nil {
		s.Logger.Error("session purge failed", zap.Error(err))
	}
}

// RunNow purges immediately and returns how many sessions were removed.
func (s *SessionPurgeScheduler) RunNow(ctx context.Context) (int64, error) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	n, err := s.Store.PurgeSessions(ctx, now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.Logger.Info("sessions purged", zap.Int64("count", n))
	}
	return n, nil
}
