/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package playlists

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/friendsincode/huginn_podcast/internal/events"
	"github.com/friendsincode/huginn_podcast/internal/models"
	"github.com/friendsincode/huginn_podcast/internal/smartlist"
)

// Service is the playlist management surface. All mutations are serialized
// through one lock; evaluation stays in smartlist and needs no locking.
type Service struct {
	store  Store
	bus    events.Publisher
	logger zerolog.Logger
	now    func() time.Time

	mu sync.Mutex
}

// NewService creates the playlist management service.
func NewService(store Store, bus events.Publisher, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		bus:    bus,
		logger: logger.With().Str("component", "playlists").Logger(),
		now:    time.Now,
	}
}

// Manuals returns the current manual playlist snapshot in display order.
func (s *Service) Manuals(ctx context.Context) ([]models.ManualPlaylist, error) {
	return s.store.ManualPlaylists(ctx)
}

// Manual returns one manual playlist by id.
func (s *Service) Manual(ctx context.Context, id string) (models.ManualPlaylist, bool, error) {
	return s.store.ManualPlaylist(ctx, id)
}

// CreateManual creates a playlist with a trimmed name. A whitespace-only
// name is dropped without error; the nil result marks the no-op.
func (s *Service) CreateManual(ctx context.Context, name, description string) (*models.ManualPlaylist, error) {
	name = models.TrimName(name)
	if name == "" {
		s.logger.Debug().Msg("ignoring playlist create with empty name")
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.store.ManualPlaylists(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	playlist := models.ManualPlaylist{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		EpisodeIDs:  []string{},
		SortOrder:   nextSortOrder(existing),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.SaveManualPlaylist(ctx, playlist); err != nil {
		return nil, err
	}

	s.publish(events.EventPlaylistCreated, playlist.ID)
	return &playlist, nil
}

// UpdateManual replaces a playlist whole-entity by id. Unknown ids and
// empty trimmed names are no-ops. Identity and ordering fields of the stored
// entity win over the caller's copy.
func (s *Service) UpdateManual(ctx context.Context, playlist models.ManualPlaylist) error {
	playlist.Name = models.TrimName(playlist.Name)
	if playlist.Name == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok, err := s.store.ManualPlaylist(ctx, playlist.ID)
	if err != nil || !ok {
		return err
	}

	playlist.EpisodeIDs = dedupe(playlist.EpisodeIDs)
	playlist.SortOrder = current.SortOrder
	playlist.CreatedAt = current.CreatedAt
	playlist.UpdatedAt = s.now()

	if err := s.store.SaveManualPlaylist(ctx, playlist); err != nil {
		return err
	}

	s.publish(events.EventPlaylistUpdated, playlist.ID)
	return nil
}

// DeleteManual removes a playlist by id. Deleting an absent id is a no-op.
func (s *Service) DeleteManual(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok, err := s.store.ManualPlaylist(ctx, id)
	if err != nil || !ok {
		return err
	}
	if err := s.store.DeleteManualPlaylist(ctx, id); err != nil {
		return err
	}

	s.publish(events.EventPlaylistDeleted, id)
	return nil
}

// DeleteManualAt removes playlists by offsets into the current snapshot.
// Offsets resolve before any removal happens.
func (s *Service) DeleteManualAt(ctx context.Context, offsets []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	playlists, err := s.store.ManualPlaylists(ctx)
	if err != nil {
		return err
	}

	for _, offset := range uniqueSorted(offsets) {
		if offset < 0 || offset >= len(playlists) {
			continue
		}
		id := playlists[offset].ID
		if err := s.store.DeleteManualPlaylist(ctx, id); err != nil {
			return err
		}
		s.publish(events.EventPlaylistDeleted, id)
	}
	return nil
}

// DuplicateManual copies a playlist under a fresh id, named
// "<original> Copy", placed directly after the original. Unknown ids no-op.
func (s *Service) DuplicateManual(ctx context.Context, id string) (*models.ManualPlaylist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok, err := s.store.ManualPlaylist(ctx, id)
	if err != nil || !ok {
		return nil, err
	}

	now := s.now()
	duplicate := models.ManualPlaylist{
		ID:          uuid.NewString(),
		Name:        original.Name + " Copy",
		Description: original.Description,
		EpisodeIDs:  append([]string(nil), original.EpisodeIDs...),
		Continuous:  original.Continuous,
		Shuffle:     original.Shuffle,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.insertManualAfter(ctx, original.ID, &duplicate); err != nil {
		return nil, err
	}

	s.publish(events.EventPlaylistCreated, duplicate.ID)
	return &duplicate, nil
}

// AddEpisode appends an episode id if absent; re-adding is a no-op.
func (s *Service) AddEpisode(ctx context.Context, playlistID, episodeID string) error {
	return s.AddEpisodes(ctx, playlistID, []string{episodeID})
}

// AddEpisodes appends each absent id in order. Already-present ids are
// skipped independently; an empty input list is a no-op.
func (s *Service) AddEpisodes(ctx context.Context, playlistID string, episodeIDs []string) error {
	if len(episodeIDs) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	playlist, ok, err := s.store.ManualPlaylist(ctx, playlistID)
	if err != nil || !ok {
		return err
	}

	changed := false
	for _, id := range episodeIDs {
		if id == "" || playlist.ContainsEpisode(id) {
			continue
		}
		playlist.EpisodeIDs = append(playlist.EpisodeIDs, id)
		changed = true
	}
	if !changed {
		return nil
	}

	playlist.UpdatedAt = s.now()
	if err := s.store.SaveManualPlaylist(ctx, playlist); err != nil {
		return err
	}

	s.publish(events.EventPlaylistUpdated, playlist.ID)
	return nil
}

// RemoveEpisode drops an episode id; absence is a no-op.
func (s *Service) RemoveEpisode(ctx context.Context, playlistID, episodeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	playlist, ok, err := s.store.ManualPlaylist(ctx, playlistID)
	if err != nil || !ok {
		return err
	}

	kept := playlist.EpisodeIDs[:0:0]
	for _, id := range playlist.EpisodeIDs {
		if id != episodeID {
			kept = append(kept, id)
		}
	}
	if len(kept) == len(playlist.EpisodeIDs) {
		return nil
	}
	playlist.EpisodeIDs = kept

	playlist.UpdatedAt = s.now()
	if err := s.store.SaveManualPlaylist(ctx, playlist); err != nil {
		return err
	}

	s.publish(events.EventPlaylistUpdated, playlist.ID)
	return nil
}

// RemoveEpisodesAt drops episodes by offsets resolved against the playlist
// sequence at call time.
func (s *Service) RemoveEpisodesAt(ctx context.Context, playlistID string, offsets []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	playlist, ok, err := s.store.ManualPlaylist(ctx, playlistID)
	if err != nil || !ok {
		return err
	}

	drop := map[int]bool{}
	for _, offset := range offsets {
		if offset >= 0 && offset < len(playlist.EpisodeIDs) {
			drop[offset] = true
		}
	}
	if len(drop) == 0 {
		return nil
	}

	kept := make([]string, 0, len(playlist.EpisodeIDs)-len(drop))
	for i, id := range playlist.EpisodeIDs {
		if !drop[i] {
			kept = append(kept, id)
		}
	}
	playlist.EpisodeIDs = kept

	playlist.UpdatedAt = s.now()
	if err := s.store.SaveManualPlaylist(ctx, playlist); err != nil {
		return err
	}

	s.publish(events.EventPlaylistUpdated, playlist.ID)
	return nil
}

// Reorder moves the episodes at the source offsets to a single destination,
// preserving their relative order. The destination is interpreted in the
// post-removal index space, matching list-reorder UI gestures.
func (s *Service) Reorder(ctx context.Context, playlistID string, from []int, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	playlist, ok, err := s.store.ManualPlaylist(ctx, playlistID)
	if err != nil || !ok {
		return err
	}

	reordered := moveOffsets(playlist.EpisodeIDs, from, to)
	if equalIDs(reordered, playlist.EpisodeIDs) {
		return nil
	}
	playlist.EpisodeIDs = reordered

	playlist.UpdatedAt = s.now()
	if err := s.store.SaveManualPlaylist(ctx, playlist); err != nil {
		return err
	}

	s.publish(events.EventPlaylistUpdated, playlist.ID)
	return nil
}

// ManualDuration sums the known durations of a playlist's episodes through
// the supplied resolver. The boolean is false when nothing contributes a
// known duration.
func (s *Service) ManualDuration(ctx context.Context, playlistID string, resolve smartlist.Resolver) (time.Duration, bool, error) {
	playlist, ok, err := s.store.ManualPlaylist(ctx, playlistID)
	if err != nil || !ok {
		return 0, false, err
	}
	total, known := smartlist.TotalDuration(playlist.EpisodeIDs, resolve)
	return total, known, nil
}

// insertManualAfter saves the duplicate and renumbers sort orders so it sits
// directly after the original.
func (s *Service) insertManualAfter(ctx context.Context, originalID string, duplicate *models.ManualPlaylist) error {
	playlists, err := s.store.ManualPlaylists(ctx)
	if err != nil {
		return err
	}

	ordered := make([]models.ManualPlaylist, 0, len(playlists)+1)
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
		if err := s.store.SaveManualPlaylist(ctx, ordered[i]); err != nil {
			return err
		}
		if ordered[i].ID == duplicate.ID {
			duplicate.SortOrder = i
		}
	}
	return nil
}

func (s *Service) publish(eventType events.EventType, playlistID string) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(eventType, events.Payload{"playlist_id": playlistID})
}

// moveOffsets implements move-item semantics: remove the marked offsets,
// clamp the destination into the shortened sequence, then insert the moved
// run. Out-of-range and duplicate source offsets are ignored.
func moveOffsets(ids []string, from []int, to int) []string {
	marked := map[int]bool{}
	for _, offset := range from {
		if offset >= 0 && offset < len(ids) {
			marked[offset] = true
		}
	}
	if len(marked) == 0 {
		return ids
	}

	moved := make([]string, 0, len(marked))
	remaining := make([]string, 0, len(ids)-len(marked))
	for i, id := range ids {
		if marked[i] {
			moved = append(moved, id)
		} else {
			remaining = append(remaining, id)
		}
	}

	if to < 0 {
		to = 0
	}
	if to > len(remaining) {
		to = len(remaining)
	}

	out := make([]string, 0, len(ids))
	out = append(out, remaining[:to]...)
	out = append(out, moved...)
	out = append(out, remaining[to:]...)
	return out
}

func nextSortOrder(playlists []models.ManualPlaylist) int {
	next := 0
	for _, p := range playlists {
		if p.SortOrder >= next {
			next = p.SortOrder + 1
		}
	}
	return next
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func uniqueSorted(offsets []int) []int {
	seen := map[int]bool{}
	out := make([]int, 0, len(offsets))
	for _, offset := range offsets {
		if !seen[offset] {
			seen[offset] = true
			out = append(out, offset)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
