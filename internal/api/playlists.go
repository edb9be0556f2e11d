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
)

// invalidateDuration drops a cached playlist duration after the episode
// list changed.
func (a *API) invalidateDuration(r *http.Request, playlistID string) {
	if a.cache == nil {
		return
	}
	if err := a.cache.InvalidateDuration(r.Context(), playlistID); err != nil {
		a.logger.Debug().Err(err).Str("id", playlistID).Msg("duration invalidation failed")
	}
}

func (a *API) handlePlaylistsList(w http.ResponseWriter, r *http.Request) {
	list, err := a.playlists.Manuals(r.Context())
	if err != nil {
		a.logger.Error().Err(err).Msg("list playlists failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *API) handlePlaylistsGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "playlistID")
	playlist, ok, err := a.playlists.Manual(r.Context(), id)
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

func (a *API) handlePlaylistsCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	playlist, err := a.playlists.CreateManual(r.Context(), req.Name, req.Description)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	if playlist == nil {
		// Empty name, dropped without error.
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusCreated, playlist)
}

func (a *API) handlePlaylistsUpdate(w http.ResponseWriter, r *http.Request) {
	var playlist models.ManualPlaylist
	if err := json.NewDecoder(r.Body).Decode(&playlist); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	playlist.ID = chi.URLParam(r, "playlistID")

	if err := a.playlists.UpdateManual(r.Context(), playlist); err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	a.invalidateDuration(r, playlist.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handlePlaylistsDelete(w http.ResponseWriter, r *http.Request) {
	if err := a.playlists.DeleteManual(r.Context(), chi.URLParam(r, "playlistID")); err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handlePlaylistsDeleteAt(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Offsets []int `json:"offsets"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	if err := a.playlists.DeleteManualAt(r.Context(), req.Offsets); err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handlePlaylistsDuplicate(w http.ResponseWriter, r *http.Request) {
	duplicate, err := a.playlists.DuplicateManual(r.Context(), chi.URLParam(r, "playlistID"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	if duplicate == nil {
		writeError(w, http.StatusNotFound, "playlist_not_found")
		return
	}
	writeJSON(w, http.StatusCreated, duplicate)
}

// handlePlaylistsEpisodes resolves the playlist's episode ids to full
// episodes, preserving playlist order. Ids no longer in the catalog are
// skipped.
func (a *API) handlePlaylistsEpisodes(w http.ResponseWriter, r *http.Request) {
	playlist, ok, err := a.playlists.Manual(r.Context(), chi.URLParam(r, "playlistID"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "playlist_not_found")
		return
	}

	resolve, err := a.catalog.Resolver(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	episodes := make([]models.Episode, 0, len(playlist.EpisodeIDs))
	for _, id := range playlist.EpisodeIDs {
		if ep, ok := resolve(id); ok {
			episodes = append(episodes, ep)
		}
	}
	writeJSON(w, http.StatusOK, episodes)
}

func (a *API) handlePlaylistsDuration(w http.ResponseWriter, r *http.Request) {
	playlistID := chi.URLParam(r, "playlistID")

	if a.cache != nil {
		if cached, ok := a.cache.GetDuration(r.Context(), playlistID); ok {
			writeJSON(w, http.StatusOK, durationResponse{
				TotalSeconds: int64(time.Duration(cached.Total).Seconds()),
				Known:        cached.Known,
			})
			return
		}
	}

	resolve, err := a.catalog.Resolver(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	total, known, err := a.playlists.ManualDuration(r.Context(), playlistID, resolve)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	if a.cache != nil {
		if err := a.cache.SetDuration(r.Context(), &cache.CachedDuration{
			PlaylistID: playlistID,
			Total:      int64(total),
			Known:      known,
		}); err != nil {
			a.logger.Debug().Err(err).Str("id", playlistID).Msg("duration caching failed")
		}
	}

	writeJSON(w, http.StatusOK, durationResponse{
		TotalSeconds: int64(total.Seconds()),
		Known:        known,
	})
}

// durationResponse reports an aggregate duration. Known is false when no
// episode contributed a usable duration.
type durationResponse struct {
	TotalSeconds int64 `json:"total_seconds"`
	Known        bool  `json:"known"`
}

func (a *API) handlePlaylistsAddEpisodes(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EpisodeIDs []string `json:"episode_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	playlistID := chi.URLParam(r, "playlistID")
	if err := a.playlists.AddEpisodes(r.Context(), playlistID, req.EpisodeIDs); err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	a.invalidateDuration(r, playlistID)
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handlePlaylistsRemoveEpisode(w http.ResponseWriter, r *http.Request) {
	playlistID := chi.URLParam(r, "playlistID")
	episodeID := chi.URLParam(r, "episodeID")

	if err := a.playlists.RemoveEpisode(r.Context(), playlistID, episodeID); err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	a.invalidateDuration(r, playlistID)
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handlePlaylistsRemoveEpisodesAt(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Offsets []int `json:"offsets"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	playlistID := chi.URLParam(r, "playlistID")
	if err := a.playlists.RemoveEpisodesAt(r.Context(), playlistID, req.Offsets); err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	a.invalidateDuration(r, playlistID)
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handlePlaylistsReorder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		From []int `json:"from"`
		To   int   `json:"to"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	if err := a.playlists.Reorder(r.Context(), chi.URLParam(r, "playlistID"), req.From, req.To); err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
