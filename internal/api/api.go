/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package api exposes the playlist and catalog HTTP surface.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/friendsincode/huginn_podcast/internal/cache"
	"github.com/friendsincode/huginn_podcast/internal/catalog"
	"github.com/friendsincode/huginn_podcast/internal/playlists"
	"github.com/friendsincode/huginn_podcast/internal/templates"
	"github.com/friendsincode/huginn_podcast/internal/version"
)

// API exposes HTTP handlers.
type API struct {
	playlists *playlists.Service
	catalog   *catalog.Service
	templates *templates.Registry
	cache     *cache.Cache
	updates   *version.Checker
	logger    zerolog.Logger
	now       func() time.Time
}

// New creates the API router wrapper. The cache and update checker may be nil.
func New(pl *playlists.Service, cat *catalog.Service, reg *templates.Registry, c *cache.Cache, upd *version.Checker, logger zerolog.Logger) *API {
	return &API{
		playlists: pl,
		catalog:   cat,
		templates: reg,
		cache:     c,
		updates:   upd,
		logger:    logger.With().Str("component", "api").Logger(),
		now:       time.Now,
	}
}

// Routes mounts all API routes on the router.
func (a *API) Routes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", a.handleHealth)

		r.Route("/playlists", func(r chi.Router) {
			r.Get("/", a.handlePlaylistsList)
			r.Post("/", a.handlePlaylistsCreate)
			r.Delete("/", a.handlePlaylistsDeleteAt)

			r.Route("/{playlistID}", func(r chi.Router) {
				r.Get("/", a.handlePlaylistsGet)
				r.Put("/", a.handlePlaylistsUpdate)
				r.Delete("/", a.handlePlaylistsDelete)
				r.Post("/duplicate", a.handlePlaylistsDuplicate)
				r.Get("/duration", a.handlePlaylistsDuration)
				r.Get("/episodes", a.handlePlaylistsEpisodes)
				r.Post("/episodes", a.handlePlaylistsAddEpisodes)
				r.Delete("/episodes/{episodeID}", a.handlePlaylistsRemoveEpisode)
				r.Delete("/episodes", a.handlePlaylistsRemoveEpisodesAt)
				r.Post("/reorder", a.handlePlaylistsReorder)
			})
		})

		r.Route("/smart-playlists", func(r chi.Router) {
			r.Get("/", a.handleSmartList)
			r.Post("/", a.handleSmartCreate)
			r.Get("/groups", a.handleSmartGroups)
			r.Post("/preview", a.handleSmartPreview)
			r.Post("/from-template", a.handleSmartFromTemplate)

			r.Route("/{playlistID}", func(r chi.Router) {
				r.Get("/", a.handleSmartGet)
				r.Put("/", a.handleSmartUpdate)
				r.Delete("/", a.handleSmartDelete)
				r.Post("/duplicate", a.handleSmartDuplicate)
				r.Get("/episodes", a.handleSmartEvaluate)
				r.Get("/duration", a.handleSmartDuration)
			})
		})

		r.Route("/templates", func(r chi.Router) {
			r.Get("/", a.handleTemplatesList)
			r.Get("/grouped", a.handleTemplatesGrouped)
		})

		r.Route("/episodes", func(r chi.Router) {
			r.Get("/", a.handleEpisodesList)
			r.Get("/{episodeID}", a.handleEpisodesGet)
			r.Put("/{episodeID}", a.handleEpisodesUpdate)
		})

		r.Get("/podcasts", a.handlePodcastsList)

		r.Get("/rules/fields", a.handleRuleFields)

		r.Get("/version", a.handleVersion)
	})
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"status": "ok", "cache": "disabled"}
	if a.cache != nil && a.cache.IsAvailable() {
		resp["cache"] = "available"
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleVersion(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"version": version.Version}
	if a.updates != nil {
		info := a.updates.Info()
		resp["update_available"] = info.UpdateAvailable
		if info.UpdateAvailable {
			resp["latest_version"] = info.LatestVersion
			resp["release_url"] = info.ReleaseURL
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
