/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/friendsincode/huginn_podcast/internal/cache"
	"github.com/friendsincode/huginn_podcast/internal/models"
	"github.com/friendsincode/huginn_podcast/internal/rules"
	"github.com/friendsincode/huginn_podcast/internal/smartlist"
	"github.com/friendsincode/huginn_podcast/internal/telemetry"
)

func (a *API) handleSmartList(w http.ResponseWriter, r *http.Request) {
	list, err := a.playlists.SmartPlaylists(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *API) handleSmartGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := a.playlists.SmartGroups(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

func (a *API) handleSmartGet(w http.ResponseWriter, r *http.Request) {
	playlist, ok, err := a.playlists.SmartPlaylist(r.Context(), chi.URLParam(r, "playlistID"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "playlist_not_found")
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}

func (a *API) handleSmartCreate(w http.ResponseWriter, r *http.Request) {
	var playlist models.SmartPlaylist
	if err := json.NewDecoder(r.Body).Decode(&playlist); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	created, err := a.playlists.CreateSmart(r.Context(), playlist)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	if created == nil {
		// Empty name or invalid rules, dropped without error.
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (a *API) handleSmartUpdate(w http.ResponseWriter, r *http.Request) {
	var playlist models.SmartPlaylist
	if err := json.NewDecoder(r.Body).Decode(&playlist); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	playlist.ID = chi.URLParam(r, "playlistID")

	if err := a.playlists.UpdateSmart(r.Context(), playlist); err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	if a.cache != nil {
		if err := a.cache.InvalidateEvaluation(r.Context(), playlist.ID); err != nil {
			a.logger.Debug().Err(err).Str("id", playlist.ID).Msg("evaluation cache invalidation failed")
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleSmartDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "playlistID")
	if err := a.playlists.DeleteSmart(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	if a.cache != nil {
		if err := a.cache.InvalidateEvaluation(r.Context(), id); err != nil {
			a.logger.Debug().Err(err).Str("id", id).Msg("evaluation cache invalidation failed")
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleSmartDuplicate(w http.ResponseWriter, r *http.Request) {
	duplicate, err := a.playlists.DuplicateSmart(r.Context(), chi.URLParam(r, "playlistID"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	if duplicate == nil {
		// Unknown id or built-in, dropped without error.
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusCreated, duplicate)
}

// handleSmartEvaluate resolves a smart playlist to its current episodes.
// Cached evaluations are served when present; mutations and catalog changes
// invalidate them. ?refresh=1 forces a re-evaluation.
func (a *API) handleSmartEvaluate(w http.ResponseWriter, r *http.Request) {
	playlist, ok, err := a.playlists.SmartPlaylist(r.Context(), chi.URLParam(r, "playlistID"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "playlist_not_found")
		return
	}

	if a.cache != nil && r.URL.Query().Get("refresh") == "" {
		if eval, ok := a.cache.GetEvaluation(r.Context(), playlist.ID); ok {
			if resolve, err := a.catalog.Resolver(r.Context()); err == nil {
				episodes := make([]models.Episode, 0, len(eval.EpisodeIDs))
				for _, id := range eval.EpisodeIDs {
					if ep, ok := resolve(id); ok {
						episodes = append(episodes, ep)
					}
				}
				writeJSON(w, http.StatusOK, episodes)
				return
			}
		}
	}

	episodes, err := a.catalog.Episodes(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	started := time.Now()
	matched := smartlist.EvaluateSmartPlaylist(playlist, episodes, a.now())
	telemetry.ObserveEvaluation(len(matched), time.Since(started))

	if a.cache != nil {
		ids := make([]string, len(matched))
		for i, ep := range matched {
			ids[i] = ep.ID
		}
		if err := a.cache.SetEvaluation(r.Context(), &cache.CachedEvaluation{
			SmartPlaylistID: playlist.ID,
			EpisodeIDs:      ids,
			EvaluatedAt:     a.now(),
		}); err != nil {
			a.logger.Debug().Err(err).Str("id", playlist.ID).Msg("evaluation caching failed")
		}
	}

	writeJSON(w, http.StatusOK, matched)
}

// handleSmartDuration reports the total known duration of a smart
// playlist's current episodes.
func (a *API) handleSmartDuration(w http.ResponseWriter, r *http.Request) {
	playlist, ok, err := a.playlists.SmartPlaylist(r.Context(), chi.URLParam(r, "playlistID"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "playlist_not_found")
		return
	}

	episodes, err := a.catalog.Episodes(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	matched := smartlist.EvaluateSmartPlaylist(playlist, episodes, a.now())

	var total time.Duration
	known := false
	for _, ep := range matched {
		if ep.Duration != nil {
			total += *ep.Duration
			known = true
		}
	}

	writeJSON(w, http.StatusOK, durationResponse{
		TotalSeconds: int64(total.Seconds()),
		Known:        known,
	})
}

// handleSmartPreview evaluates an unsaved rule set against the catalog.
func (a *API) handleSmartPreview(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Rules          rules.Set      `json:"rules"`
		SortKey        models.SortKey `json:"sort_key"`
		SortDescending bool           `json:"sort_descending"`
		MaxEpisodes    int            `json:"max_episodes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if err := req.Rules.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_rules")
		return
	}

	episodes, err := a.catalog.Episodes(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	started := time.Now()
	matched := smartlist.Preview(req.Rules, req.SortKey, req.SortDescending, req.MaxEpisodes, episodes, a.now())
	telemetry.ObserveEvaluation(len(matched), time.Since(started))

	writeJSON(w, http.StatusOK, matched)
}

func (a *API) handleSmartFromTemplate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	tpl, ok := a.templates.Find(req.Name)
	if !ok {
		writeError(w, http.StatusNotFound, "template_not_found")
		return
	}

	created, err := a.playlists.CreateFromTemplate(r.Context(), tpl)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	if created == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (a *API) handleTemplatesList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.templates.All())
}

func (a *API) handleTemplatesGrouped(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.templates.Grouped())
}

// handleRuleFields describes the rule vocabulary so clients can build
// editors without hardcoding field and operator pairings.
func (a *API) handleRuleFields(w http.ResponseWriter, r *http.Request) {
	type fieldInfo struct {
		Field     rules.Field      `json:"field"`
		Operators []rules.Operator `json:"operators"`
		DefaultOp rules.Operator   `json:"default_op"`
		Default   rules.Value      `json:"default_value"`
	}

	fields := rules.Fields()
	out := make([]fieldInfo, 0, len(fields))
	for _, field := range fields {
		op, value, err := rules.DefaultFor(field)
		if err != nil {
			continue
		}
		out = append(out, fieldInfo{
			Field:     field,
			Operators: rules.LegalOperators(field),
			DefaultOp: op,
			Default:   value,
		})
	}
	writeJSON(w, http.StatusOK, out)
}
