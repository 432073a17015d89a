package watcher

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/provlabs/classifyd/internal/core/ports"
	log "github.com/sirupsen/logrus"
)

// Watcher periodically scans the attribute store and reports assets stuck in
// pending. It never mutates state: only the designated verifier may resolve a
// round, so the watcher's job ends at surfacing the backlog.
type Watcher struct {
	repoManager ports.RepoManager
	interval    time.Duration
	scheduler   *gocron.Scheduler
}

func NewWatcher(repoManager ports.RepoManager, interval time.Duration) (*Watcher, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("invalid watch interval %s", interval)
	}
	return &Watcher{
		repoManager: repoManager,
		interval:    interval,
		scheduler:   gocron.NewScheduler(time.UTC),
	}, nil
}

func (w *Watcher) Start() error {
	if _, err := w.scheduler.Every(w.interval).Do(w.reportPendingBacklog); err != nil {
		return fmt.Errorf("failed to schedule pending backlog scan: %s", err)
	}
	w.scheduler.StartAsync()
	log.WithField("interval", w.interval.String()).Debug("pending backlog watcher started")
	return nil
}

func (w *Watcher) Stop() {
	w.scheduler.Stop()
}

func (w *Watcher) reportPendingBacklog() {
	ctx := context.Background()

	pending, err := w.repoManager.ScopeAttributes().ListPending(ctx)
	if err != nil {
		log.WithError(err).Warn("pending backlog scan failed")
		return
	}
	if len(pending) == 0 {
		return
	}

	pendingByType := make(map[string]int)
	for _, attribute := range pending {
		pendingByType[attribute.AssetType]++
	}
	for assetType, count := range pendingByType {
		log.WithField("asset_type", assetType).
			WithField("pending", count).
			Info("assets awaiting verification")
	}
}
