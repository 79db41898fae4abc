package agent

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/alienorar/student-system.asianuniversity.uz/internal/config"
	"github.com/alienorar/student-system.asianuniversity.uz/internal/logger"
	"github.com/alienorar/student-system.asianuniversity.uz/internal/model"
	"github.com/alienorar/student-system.asianuniversity.uz/internal/portal"
)

// Refresher keeps a warm copy of the weekly schedule so the calendar view
// answers without a round trip. The cache is session-transient: nothing
// here survives a restart.
type Refresher struct {
	cfg    *config.Config
	client *portal.Client
	log    zerolog.Logger

	mu        sync.RWMutex
	page      model.SchedulePage
	fetchedAt time.Time
}

func NewRefresher(cfg *config.Config, client *portal.Client) *Refresher {
	return &Refresher{
		cfg:    cfg,
		client: client,
		log:    logger.Named("refresher"),
	}
}

// Start refreshes immediately, then on every tick until ctx is cancelled.
func (r *Refresher) Start(ctx context.Context) {
	r.refresh(ctx)

	ticker := time.NewTicker(r.cfg.Server.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info().Msg("Refresher stopped")
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

func (r *Refresher) refresh(ctx context.Context) {
	page, err := r.client.Schedule(ctx, model.ScheduleQuery{
		Size: 100,
		Page: 1,
		Time: model.ScheduleTimeWeek,
	})
	if err != nil {
		// Stale data stays served; the next tick tries again.
		r.log.Warn().Err(err).Msg("Schedule refresh failed")
		return
	}

	r.mu.Lock()
	r.page = page
	r.fetchedAt = time.Now()
	r.mu.Unlock()

	r.log.Debug().Int("entries", len(page.Content)).Msg("Schedule refreshed")
}

// Cached returns the last fetched page and whether one exists yet.
func (r *Refresher) Cached() (model.SchedulePage, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.page, !r.fetchedAt.IsZero()
}

// Invalidate drops the cache; the next Schedule call fetches fresh.
func (r *Refresher) Invalidate() {
	r.mu.Lock()
	r.fetchedAt = time.Time{}
	r.mu.Unlock()
}
