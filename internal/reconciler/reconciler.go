package reconciler

import (
	"context"
	"time"

	"example.com/snapgram/internal/config"
	"example.com/snapgram/internal/repository"
	"example.com/snapgram/internal/store"
	"example.com/snapgram/pkg/log"
)

// Reconciler periodically re-syncs the cached follower counts of the most
// frequently read users with the database. The in-request conditional
// increments keep the cache close to correct; this closes any residual drift.
type Reconciler struct {
	store  store.FollowStore
	repo   repository.FollowRepository
	cfg    config.ReconcilerConfig
	quit   chan struct{}
	doneCh chan struct{}
}

// New creates a new Reconciler.
func New(followStore store.FollowStore, repo repository.FollowRepository, cfg config.ReconcilerConfig) *Reconciler {
	return &Reconciler{
		store:  followStore,
		repo:   repo,
		cfg:    cfg,
		quit:   make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start launches the reconciler in a background goroutine.
func (r *Reconciler) Start(ctx context.Context) {
	go r.run(ctx)
}

// Stop signals the reconciler to stop and returns immediately.
// Call Done() to wait for it to exit.
func (r *Reconciler) Stop() {
	close(r.quit)
}

// Done returns a channel that is closed when the reconciler has fully stopped.
func (r *Reconciler) Done() <-chan struct{} {
	return r.doneCh
}

func (r *Reconciler) run(ctx context.Context) {
	defer close(r.doneCh)

	interval := r.cfg.Interval
	if interval <= 0 {
		interval = 60 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.quit:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.reconcile(ctx)
		}
	}
}

func (r *Reconciler) reconcile(ctx context.Context) {
	l := log.L()

	topN := int64(r.cfg.TopN)
	if topN <= 0 {
		topN = 100
	}

	userIDs, err := r.store.GetTopHotKeys(ctx, topN)
	if err != nil {
		l.Error().Err(err).Msg("reconciler: failed to get top hot keys")
		return
	}

	if len(userIDs) == 0 {
		return
	}

	for _, userID := range userIDs {
		count, err := r.repo.CountFollowers(ctx, userID)
		if err != nil {
			l.Error().Err(err).Str(log.FieldUserID, userID).Msg("reconciler: failed to count followers")
			continue
		}
		if err := r.store.SetFollowersCount(ctx, userID, count); err != nil {
			l.Error().Err(err).Str(log.FieldUserID, userID).Msg("reconciler: failed to refresh cached count")
		}
	}

	if err := r.store.ResetHotKeyScores(ctx); err != nil {
		l.Error().Err(err).Msg("reconciler: failed to reset hot key scores")
	}

	l.Info().Int("count", len(userIDs)).Msg("reconciler: hot-key reconciliation complete")
}
