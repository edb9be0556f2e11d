/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package playlists

import (
	"context"

	"github.com/google/uuid"

	"github.com/friendsincode/huginn_podcast/internal/events"
	"github.com/friendsincode/huginn_podcast/internal/models"
	"github.com/friendsincode/huginn_podcast/internal/templates"
)

const defaultRefreshSeconds = 3600

// SmartPlaylistGroups partitions the smart playlists into the seeded
// built-ins and the user-created rest, each in display order.
type SmartPlaylistGroups struct {
	BuiltIn []models.SmartPlaylist `json:"built_in"`
	Custom  []models.SmartPlaylist `json:"custom"`
}

// SmartPlaylists returns the smart playlist snapshot in display order.
func (s *Service) SmartPlaylists(ctx context.Context) ([]models.SmartPlaylist, error) {
	return s.store.SmartPlaylists(ctx)
}

// SmartPlaylist returns one smart playlist by id.
func (s *Service) SmartPlaylist(ctx context.Context, id string) (models.SmartPlaylist, bool, error) {
	return s.store.SmartPlaylist(ctx, id)
}

// SmartGroups splits the smart playlists into built-in and custom groups.
func (s *Service) SmartGroups(ctx context.Context) (SmartPlaylistGroups, error) {
	playlists, err := s.store.SmartPlaylists(ctx)
	if err != nil {
		return SmartPlaylistGroups{}, err
	}

	groups := SmartPlaylistGroups{
		BuiltIn: []models.SmartPlaylist{},
		Custom:  []models.SmartPlaylist{},
	}
	for _, p := range playlists {
		if p.SystemGenerated {
			groups.BuiltIn = append(groups.BuiltIn, p)
		} else {
			groups.Custom = append(groups.Custom, p)
		}
	}
	return groups, nil
}

// CreateSmart creates a user smart playlist. Empty trimmed names and rule
// sets that fail validation are dropped without error. Callers cannot mint
// built-ins: SystemGenerated is always forced off.
func (s *Service) CreateSmart(ctx context.Context, playlist models.SmartPlaylist) (*models.SmartPlaylist, error) {
	playlist.Name = models.TrimName(playlist.Name)
	if playlist.Name == "" {
		s.logger.Debug().Msg("ignoring smart playlist create with empty name")
		return nil, nil
	}
	if err := playlist.Rules.Validate(); err != nil {
		s.logger.Debug().Err(err).Str("name", playlist.Name).Msg("ignoring smart playlist create with invalid rules")
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.store.SmartPlaylists(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	playlist.ID = uuid.NewString()
	playlist.SystemGenerated = false
	playlist.SortOrder = nextSmartSortOrder(existing)
	playlist.CreatedAt = now
	playlist.UpdatedAt = now
	applySmartDefaults(&playlist)

	if err := s.store.SaveSmartPlaylist(ctx, playlist); err != nil {
		return nil, err
	}

	s.publish(events.EventSmartPlaylistCreated, playlist.ID)
	return &playlist, nil
}

// UpdateSmart replaces a smart playlist whole-entity by id. Unknown ids,
// empty names, and invalid rule sets are no-ops. The stored entity keeps its
// identity, ordering, and built-in marker.
func (s *Service) UpdateSmart(ctx context.Context, playlist models.SmartPlaylist) error {
	playlist.Name = models.TrimName(playlist.Name)
	if playlist.Name == "" {
		return nil
	}
	if err := playlist.Rules.Validate(); err != nil {
		s.logger.Debug().Err(err).Str("id", playlist.ID).Msg("ignoring smart playlist update with invalid rules")
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok, err := s.store.SmartPlaylist(ctx, playlist.ID)
	if err != nil || !ok {
		return err
	}

	playlist.SystemGenerated = current.SystemGenerated
	playlist.SortOrder = current.SortOrder
	playlist.CreatedAt = current.CreatedAt
	playlist.UpdatedAt = s.now()
	applySmartDefaults(&playlist)

	if err := s.store.SaveSmartPlaylist(ctx, playlist); err != nil {
		return err
	}

	s.publish(events.EventSmartPlaylistUpdated, playlist.ID)
	return nil
}

// DeleteSmart removes a user smart playlist. Built-ins and absent ids are
// no-ops.
func (s *Service) DeleteSmart(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok, err := s.store.SmartPlaylist(ctx, id)
	if err != nil || !ok {
		return err
	}
	if current.SystemGenerated {
		s.logger.Debug().Str("id", id).Msg("refusing to delete built-in smart playlist")
		return nil
	}
	if err := s.store.DeleteSmartPlaylist(ctx, id); err != nil {
		return err
	}

	s.publish(events.EventSmartPlaylistDeleted, id)
	return nil
}

// DuplicateSmart copies a user smart playlist under a fresh id, named
// "<original> Copy", placed directly after the original. Built-ins and
// absent ids are dropped without error.
func (s *Service) DuplicateSmart(ctx context.Context, id string) (*models.SmartPlaylist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok, err := s.store.SmartPlaylist(ctx, id)
	if err != nil || !ok {
		return nil, err
	}
	if original.SystemGenerated {
		s.logger.Debug().Str("id", id).Msg("refusing to duplicate built-in smart playlist")
		return nil, nil
	}

	now := s.now()
	duplicate := original
	duplicate.ID = uuid.NewString()
	duplicate.Name = original.Name + " Copy"
	duplicate.Rules = original.Rules.Clone()
	duplicate.SystemGenerated = false
	duplicate.CreatedAt = now
	duplicate.UpdatedAt = now

	if err := s.insertSmartAfter(ctx, original.ID, &duplicate); err != nil {
		return nil, err
	}

	s.publish(events.EventSmartPlaylistCreated, duplicate.ID)
	return &duplicate, nil
}

// CreateFromTemplate instantiates a starter template as a user smart
// playlist with auto-update enabled.
func (s *Service) CreateFromTemplate(ctx context.Context, tpl templates.Template) (*models.SmartPlaylist, error) {
	return s.CreateSmart(ctx, models.SmartPlaylist{
		Name:           tpl.Name,
		Description:    tpl.Description,
		Rules:          tpl.Rules.Clone(),
		SortDescending: true,
		AutoUpdate:     true,
	})
}

func (s *Service) insertSmartAfter(ctx context.Context, originalID string, duplicate *models.SmartPlaylist) error {
	playlists, err := s.store.SmartPlaylists(ctx)
	if err != nil {
		return err
	}

	ordered := make([]models.SmartPlaylist, 0, len(playlists)+1)
	inserted := false
	for _, p := range playlists {
		ordered = append(ordered, p)
		if p.ID == originalID {
			ordered = append(ordered, *duplicate)
			inserted = true
		}
	}
	if !inserted {
		ordered = append(ordered, *duplicate)
	}

	for i := range ordered {
		if ordered[i].SortOrder == i && ordered[i].ID != duplicate.ID {
			continue
		}
		ordered[i].SortOrder = i
		if err := s.store.SaveSmartPlaylist(ctx, ordered[i]); err != nil {
			return err
		}
		if ordered[i].ID == duplicate.ID {
			duplicate.SortOrder = i
		}
	}
	return nil
}

func applySmartDefaults(p *models.SmartPlaylist) {
	if p.SortKey == "" {
		p.SortKey = models.SortPublishDate
		p.SortDescending = true
	}
	if p.MaxEpisodes < 0 {
		p.MaxEpisodes = 0
	}
	if p.AutoUpdate && p.RefreshSeconds <= 0 {
		p.RefreshSeconds = defaultRefreshSeconds
	}
}

func nextSmartSortOrder(playlists []models.SmartPlaylist) int {
	next := 0
	for _, p := range playlists {
		if p.SortOrder >= next {
			next = p.SortOrder + 1
		}
	}
	return next
}
