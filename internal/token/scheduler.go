package token

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"lead-bridge/internal/common/logging"
)

// Refresher performs the refresh-token exchange against the CRM's OAuth
// endpoint.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*Token, error)
}

// Scheduler renews the persisted token pair on a fixed period, independent
// of request traffic.
//
// Every tick unconditionally refreshes: there is no jitter, no backoff and
// no skip-if-still-valid check. A tick against an empty store attempts a
// refresh with an empty refresh token, which the CRM rejects; the failure is
// logged and nothing is written, so the store stays empty until the
// interactive authorization runs.
type Scheduler struct {
	store     Store
	refresher Refresher
	interval  time.Duration
	cron      *cron.Cron
}

// NewScheduler creates a token refresh scheduler with the given period
func NewScheduler(store Store, refresher Refresher, interval time.Duration) *Scheduler {
	return &Scheduler{
		store:     store,
		refresher: refresher,
		interval:  interval,
		cron:      cron.New(),
	}
}

// Start begins the periodic refresh. It returns immediately; ticks run on
// the cron goroutine until Stop is called.
func (s *Scheduler) Start() {
	s.cron.Schedule(cron.Every(s.interval), cron.FuncJob(s.Tick))
	s.cron.Start()

	logging.Info("Token refresh scheduler started",
		logging.Field{Key: "interval", Value: s.interval.String()})
}

// Stop halts the schedule and waits for an in-flight tick to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()

	logging.Info("Token refresh scheduler stopped")
}

// Tick performs one refresh cycle: read the current record, exchange its
// refresh token and write the replacement back. All failures on this path
// are logged and swallowed.
func (s *Scheduler) Tick() {
	ctx := context.Background()

	current, err := s.store.Read(ctx)
	if err != nil {
		logging.Warn("Failed to read token before refresh",
			logging.Field{Key: "error", Value: err.Error()})
	}

	var refreshToken string
	if current != nil {
		refreshToken = current.RefreshToken
	}

	renewed, err := s.refresher.Refresh(ctx, refreshToken)
	if err != nil {
		logging.Warn("Background token refresh failed",
			logging.Field{Key: "error", Value: err.Error()})
		return
	}

	if err := s.store.Write(ctx, renewed); err != nil {
		logging.Warn("Failed to persist refreshed token",
			logging.Field{Key: "error", Value: err.Error()})
		return
	}

	logging.Info("Token refreshed",
		logging.Field{Key: "expires_in", Value: renewed.ExpiresIn})
}
