/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package refresh keeps auto-updating smart playlists current.
package refresh

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/friendsincode/huginn_podcast/internal/cache"
	"github.com/friendsincode/huginn_podcast/internal/catalog"
	"github.com/friendsincode/huginn_podcast/internal/events"
	"github.com/friendsincode/huginn_podcast/internal/models"
	"github.com/friendsincode/huginn_podcast/internal/playlists"
	"github.com/friendsincode/huginn_podcast/internal/smartlist"
	"github.com/friendsincode/huginn_podcast/internal/telemetry"
)

// scanSpec drives the sweep that checks refresh deadlines. Each playlist's
// own RefreshSeconds decides whether a sweep actually re-evaluates it.
const scanSpec = "@every 1m"

// Worker re-evaluates auto-updating smart playlists on their refresh
// intervals and when the episode catalog changes.
type Worker struct {
	playlists *playlists.Service
	catalog   *catalog.Service
	cache     *cache.Cache
	bus       events.PubSub
	logger    zerolog.Logger
	now       func() time.Time

	cron     *cron.Cron
	lastRun  map[string]time.Time
	catalogs events.Subscriber
	done     chan struct{}
}

// NewWorker creates a refresh worker. The cache may be nil.
func NewWorker(pl *playlists.Service, cat *catalog.Service, c *cache.Cache, bus events.PubSub, logger zerolog.Logger) *Worker {
	return &Worker{
		playlists: pl,
		catalog:   cat,
		cache:     c,
		bus:       bus,
		logger:    logger.With().Str("component", "refresh").Logger(),
		now:       time.Now,
		cron:      cron.New(),
		lastRun:   map[string]time.Time{},
		done:      make(chan struct{}),
	}
}

// Start begins the periodic sweep and the catalog-change listener.
func (w *Worker) Start(ctx context.Context) error {
	if _, err := w.cron.AddFunc(scanSpec, func() {
		w.sweep(ctx, false)
	}); err != nil {
		return err
	}
	w.cron.Start()

	if w.bus != nil {
		w.catalogs = w.bus.Subscribe(events.EventCatalogChanged)
		go w.watchCatalog(ctx)
	}

	w.logger.Info().Str("schedule", scanSpec).Msg("refresh worker started")
	return nil
}

// Stop halts the sweep and waits for a running job to finish.
func (w *Worker) Stop() {
	stopCtx := w.cron.Stop()
	<-stopCtx.Done()
	close(w.done)
	if w.bus != nil && w.catalogs != nil {
		w.bus.Unsubscribe(events.EventCatalogChanged, w.catalogs)
	}
	w.logger.Info().Msg("refresh worker stopped")
}

func (w *Worker) watchCatalog(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case _, ok := <-w.catalogs:
			if !ok {
				return
			}
			// Catalog changed, every auto-update playlist is stale.
			w.sweep(ctx, true)
		}
	}
}

// sweep re-evaluates each auto-update playlist whose refresh interval has
// elapsed. With force set, intervals are ignored.
func (w *Worker) sweep(ctx context.Context, force bool) {
	smart, err := w.playlists.SmartPlaylists(ctx)
	if err != nil {
		w.logger.Error().Err(err).Msg("failed to list smart playlists")
		return
	}

	var episodes []models.Episode
	now := w.now()

	for _, pl := range smart {
		if !pl.AutoUpdate {
			continue
		}
		if !force {
			last, seen := w.lastRun[pl.ID]
			if seen && now.Sub(last) < pl.RefreshInterval() {
				continue
			}
		}

		// Load the catalog once per sweep, and only if something is due.
		if episodes == nil {
			episodes, err = w.catalog.Episodes(ctx)
			if err != nil {
				w.logger.Error().Err(err).Msg("failed to load episode catalog")
				return
			}
		}

		w.refreshOne(ctx, pl, episodes, now)
		w.lastRun[pl.ID] = now
	}
}

func (w *Worker) refreshOne(ctx context.Context, pl models.SmartPlaylist, episodes []models.Episode, now time.Time) {
	started := time.Now()
	matched := smartlist.EvaluateSmartPlaylist(pl, episodes, now)
	telemetry.ObserveEvaluation(len(matched), time.Since(started))

	ids := make([]string, len(matched))
	for i, ep := range matched {
		ids[i] = ep.ID
	}

	if w.cache != nil {
		if err := w.cache.SetEvaluation(ctx, &cache.CachedEvaluation{
			SmartPlaylistID: pl.ID,
			EpisodeIDs:      ids,
			EvaluatedAt:     now,
		}); err != nil {
			w.logger.Debug().Err(err).Str("smart_playlist_id", pl.ID).Msg("failed to cache evaluation")
		}
	}

	if w.bus != nil {
		w.bus.Publish(events.EventSmartPlaylistRefreshed, events.Payload{
			"smart_playlist_id": pl.ID,
			"episode_count":     len(ids),
		})
	}

	w.logger.Debug().
		Str("smart_playlist_id", pl.ID).
		Str("name", pl.Name).
		Int("episodes", len(ids)).
		Msg("smart playlist refreshed")
}
