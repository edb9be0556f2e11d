/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package catalog serves the episode library that playlists draw from.
package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/friendsincode/huginn_podcast/internal/cache"
	"github.com/friendsincode/huginn_podcast/internal/events"
	"github.com/friendsincode/huginn_podcast/internal/models"
	"github.com/friendsincode/huginn_podcast/internal/smartlist"
)

// Service reads and updates the episode catalog.
type Service struct {
	db     *gorm.DB
	cache  *cache.Cache
	bus    events.Publisher
	logger zerolog.Logger
}

// NewService creates a catalog service. The cache may be nil.
func NewService(db *gorm.DB, c *cache.Cache, bus events.Publisher, logger zerolog.Logger) *Service {
	return &Service{
		db:     db,
		cache:  c,
		bus:    bus,
		logger: logger.With().Str("component", "catalog").Logger(),
	}
}

// Podcasts lists all subscribed podcasts by title.
func (s *Service) Podcasts(ctx context.Context) ([]models.Podcast, error) {
	var podcasts []models.Podcast
	if err := s.db.WithContext(ctx).Order("title ASC").Find(&podcasts).Error; err != nil {
		return nil, err
	}
	return podcasts, nil
}

// Episodes lists the full episode catalog, newest published first.
func (s *Service) Episodes(ctx context.Context) ([]models.Episode, error) {
	var episodes []models.Episode
	if err := s.db.WithContext(ctx).
		Order("published_at DESC").
		Find(&episodes).Error; err != nil {
		return nil, err
	}
	return episodes, nil
}

// Episode returns one episode by id. Absence is not an error.
func (s *Service) Episode(ctx context.Context, id string) (models.Episode, bool, error) {
	if s.cache != nil {
		if cached, ok := s.cache.GetEpisode(ctx, id); ok {
			return *cached, true, nil
		}
	}

	var ep models.Episode
	err := s.db.WithContext(ctx).First(&ep, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Episode{}, false, nil
	}
	if err != nil {
		return models.Episode{}, false, err
	}

	if s.cache != nil {
		if err := s.cache.SetEpisode(ctx, &ep); err != nil {
			s.logger.Debug().Err(err).Str("episode_id", id).Msg("episode caching failed")
		}
	}
	return ep, true, nil
}

// SaveEpisode upserts an episode and invalidates dependent caches, since
// any smart playlist may now resolve differently.
func (s *Service) SaveEpisode(ctx context.Context, ep models.Episode) error {
	ep.UpdatedAt = time.Now()
	if err := s.db.WithContext(ctx).Save(&ep).Error; err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.InvalidateEpisode(ctx, ep.ID); err != nil {
			s.logger.Debug().Err(err).Str("episode_id", ep.ID).Msg("episode cache invalidation failed")
		}
		if err := s.cache.InvalidateAllEvaluations(ctx); err != nil {
			s.logger.Debug().Err(err).Msg("evaluation cache invalidation failed")
		}
	}

	if s.bus != nil {
		s.bus.Publish(events.EventEpisodeUpdated, events.Payload{"episode_id": ep.ID})
		s.bus.Publish(events.EventCatalogChanged, events.Payload{})
	}
	return nil
}

// Resolver returns a lookup function for duration aggregation. It resolves
// against one catalog snapshot so repeated lookups stay consistent.
func (s *Service) Resolver(ctx context.Context) (smartlist.Resolver, error) {
	episodes, err := s.Episodes(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]models.Episode, len(episodes))
	for _, ep := range episodes {
		byID[ep.ID] = ep
	}

	return func(id string) (models.Episode, bool) {
		ep, ok := byID[id]
		return ep, ok
	}, nil
}
