/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/friendsincode/huginn_podcast/internal/models"
)

func (a *API) handlePodcastsList(w http.ResponseWriter, r *http.Request) {
	podcasts, err := a.catalog.Podcasts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, podcasts)
}

func (a *API) handleEpisodesList(w http.ResponseWriter, r *http.Request) {
	episodes, err := a.catalog.Episodes(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, episodes)
}

func (a *API) handleEpisodesGet(w http.ResponseWriter, r *http.Request) {
	ep, ok, err := a.catalog.Episode(r.Context(), chi.URLParam(r, "episodeID"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "episode_not_found")
		return
	}
	writeJSON(w, http.StatusOK, ep)
}

// handleEpisodesUpdate replaces episode state (play position, flags,
// rating). Smart playlists pick the change up on their next evaluation.
func (a *API) handleEpisodesUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "episodeID")

	current, ok, err := a.catalog.Episode(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "episode_not_found")
		return
	}

	var ep models.Episode
	if err := json.NewDecoder(r.Body).Decode(&ep); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	ep.ID = id
	ep.CreatedAt = current.CreatedAt

	if err := a.catalog.SaveEpisode(r.Context(), ep); err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
