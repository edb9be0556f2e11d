/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package playlists owns every mutation over manual and smart playlists.
// Mutations delegate filtering math to the smartlist package and persistence
// to an injected Store. Failure policy follows the engine contract: invalid
// input, unknown ids, and forbidden operations are silent no-ops, and
// callers re-read the snapshot after mutating.
package playlists

import (
	"context"

	"github.com/friendsincode/huginn_podcast/internal/models"
)

// Store is the persistence collaborator holding the canonical playlist
// collections. Implementations return playlists in display order and treat
// Save as whole-entity insert-or-replace.
type Store interface {
	ManualPlaylists(ctx context.Context) ([]models.ManualPlaylist, error)
	ManualPlaylist(ctx context.Context, id string) (models.ManualPlaylist, bool, error)
	SaveManualPlaylist(ctx context.Context, p models.ManualPlaylist) error
	DeleteManualPlaylist(ctx context.Context, id string) error

	SmartPlaylists(ctx context.Context) ([]models.SmartPlaylist, error)
	SmartPlaylist(ctx context.Context, id string) (models.SmartPlaylist, bool, error)
	SaveSmartPlaylist(ctx context.Context, p models.SmartPlaylist) error
	DeleteSmartPlaylist(ctx context.Context, id string) error
}
